// Package web embeds the prebuilt UI bundles served as ui:// resources.
package web

import "embed"

// UI holds the HTML app bundles under ui/.
//
//go:embed ui
var UI embed.FS
