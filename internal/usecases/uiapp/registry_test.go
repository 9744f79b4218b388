package uiapp

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
)

func bundleFS(t *testing.T) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, app := range Apps() {
		fsys[app.File] = &fstest.MapFile{Data: []byte("<html>" + app.Name + "</html>")}
	}
	return fsys
}

func TestNewRegistry_LoadsEveryBundle(t *testing.T) {
	registry, err := NewRegistry(bundleFS(t))
	require.NoError(t, err)

	resources := registry.Resources()
	require.Len(t, resources, len(Apps()))
	for i, app := range Apps() {
		assert.Equal(t, app.URI, resources[i].URI)
		assert.Equal(t, MimeType, resources[i].MIMEType)
	}
}

func TestNewRegistry_MissingBundleFailsStartup(t *testing.T) {
	fsys := bundleFS(t)
	delete(fsys, "ui/opportunitychart.html")

	_, err := NewRegistry(fsys)
	require.Error(t, err)

	var missing *domain.MissingBundleError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ui://get-opportunity/chart", missing.URI)
	assert.Equal(t, "ui/opportunitychart.html", missing.Path)
}

func TestRegistry_Content(t *testing.T) {
	registry, err := NewRegistry(bundleFS(t))
	require.NoError(t, err)

	contents, err := registry.Content("ui://get-contact/form")
	require.NoError(t, err)
	assert.Equal(t, "ui://get-contact/form", contents.URI)
	assert.Equal(t, MimeType, contents.MIMEType)
	assert.Equal(t, "<html>Contact Form</html>", contents.Text)
}

func TestRegistry_ContentUnknownURI(t *testing.T) {
	registry, err := NewRegistry(bundleFS(t))
	require.NoError(t, err)

	_, err = registry.Content("ui://nope")
	var notFound *domain.ResourceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ui://nope", notFound.URI)
}

func TestApps_CameraPermissionOnContactForm(t *testing.T) {
	for _, app := range Apps() {
		if app.URI == "ui://get-contact/form" {
			assert.Equal(t, []string{PermissionCamera}, app.Permissions)
			return
		}
	}
	t.Fatal("contact form app not declared")
}
