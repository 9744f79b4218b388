package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The bundles are static assets; these tests pin the protocol contract each
// one ships with rather than executing the scripts.

var bundleFiles = []string{
	"ui/index.html",
	"ui/contact.html",
	"ui/contactlist.html",
	"ui/opportunity.html",
	"ui/opportunitylist.html",
	"ui/opportunitychart.html",
	"ui/opportunitytopgraph.html",
}

func bundle(t *testing.T, name string) string {
	t.Helper()
	data, err := fs.ReadFile(UI, name)
	require.NoError(t, err)
	return string(data)
}

func TestBundles_HandshakeCarriesAppIdentity(t *testing.T) {
	for _, name := range bundleFiles {
		content := bundle(t, name)
		assert.Contains(t, content, "'ui/initialize'", name)
		assert.Contains(t, content, "appInfo", name)
		assert.Contains(t, content, "capabilities", name)
		assert.Contains(t, content, "'Error: ' + err.message", name)
	}
}

func TestListBundles_AcceptArrayPayloads(t *testing.T) {
	for _, name := range []string{
		"ui/contactlist.html",
		"ui/opportunitylist.html",
		"ui/opportunitychart.html",
		"ui/opportunitytopgraph.html",
	} {
		content := bundle(t, name)
		assert.Contains(t, content, "Array.isArray(parsed)", name)
		// Unreadable payloads degrade to an empty result, not a dead end.
		assert.Contains(t, content, "catch (err)", name)
	}
}

func TestContactForm_CameraFlow(t *testing.T) {
	content := bundle(t, "ui/contact.html")

	// Snapshot is held for review before any upload.
	assert.Contains(t, content, "'captured'")
	assert.Contains(t, content, "Use photo")
	assert.Contains(t, content, "Discard")

	// Centered square crop of the video frame.
	assert.Contains(t, content, "Math.min(video.videoWidth, video.videoHeight)")

	// File picker fallback when the host grants no camera.
	assert.Contains(t, content, `type="file"`)
	assert.Contains(t, content, "filepick")

	// Link opening is gated on the host capability.
	assert.Contains(t, content, "hostCaps.openLinks")
	assert.Contains(t, content, "'ui/open-link'")
}

func TestClock_RefreshesOnlyOnDemand(t *testing.T) {
	content := bundle(t, "ui/index.html")
	assert.NotContains(t, content, "setInterval")
	assert.Contains(t, content, "'ui/tool-result'")
}
