package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolUIMeta_Meta(t *testing.T) {
	t.Run("renders resource affinity", func(t *testing.T) {
		meta := ToolUIMeta{ResourceURI: "ui://get-contact/form"}.Meta()
		assert.Equal(t, map[string]interface{}{"resourceUri": "ui://get-contact/form"}, meta)
	})

	t.Run("renders app-only visibility", func(t *testing.T) {
		meta := ToolUIMeta{AppOnly: true}.Meta()
		assert.Equal(t, map[string]interface{}{"visibility": []string{"app"}}, meta)
	})

	t.Run("no affinity yields nil", func(t *testing.T) {
		assert.Nil(t, ToolUIMeta{}.Meta())
		assert.True(t, ToolUIMeta{}.IsZero())
	})
}

func TestResource_Meta(t *testing.T) {
	r := Resource{
		URI:         "ui://get-contact/form",
		Permissions: []string{"camera"},
	}
	meta := r.Meta()
	perms, ok := meta["permissions"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, perms, "camera")

	assert.Nil(t, Resource{URI: "ui://get-time/clock"}.Meta())
}
