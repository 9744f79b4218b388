// Package domain defines the core entities shared by the Dataverse MCP server:
// tool and resource descriptors, their UI affinity metadata, and sentinel errors.
package domain

// UIMetaKey is the _meta key under which UI affinity metadata travels in
// tools/list and resources/list responses.
const UIMetaKey = "io.modelcontextprotocol/ui"

// Tool describes a named operation an agent (or a rendered app) can invoke.
type Tool struct {
	Name        string
	Description string
	Parameters  []ToolParameter
	UI          ToolUIMeta
}

// ToolParameter defines a single named argument of a tool.
type ToolParameter struct {
	Name        string
	Description string
	Type        string
	Required    bool
}

// ToolUIMeta declares how a tool relates to the UI extension. At most one of
// ResourceURI and AppOnly is set: a tool either renders a ui:// resource when
// called by the agent, or is callable only from within an already-rendered app.
type ToolUIMeta struct {
	ResourceURI string
	AppOnly     bool
}

// IsZero reports whether the tool carries no UI metadata at all.
func (m ToolUIMeta) IsZero() bool {
	return m.ResourceURI == "" && !m.AppOnly
}

// Meta renders the _meta value for the tool, or nil when there is none.
func (m ToolUIMeta) Meta() map[string]interface{} {
	switch {
	case m.ResourceURI != "":
		return map[string]interface{}{"resourceUri": m.ResourceURI}
	case m.AppOnly:
		return map[string]interface{}{"visibility": []string{"app"}}
	default:
		return nil
	}
}

// Resource describes a static UI bundle addressable by a ui:// URI.
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	// Permissions lists capabilities the hosting shell must grant to the
	// rendered app, e.g. "camera".
	Permissions []string
}

// Meta renders the _meta value for the resource, or nil when there is none.
func (r Resource) Meta() map[string]interface{} {
	if len(r.Permissions) == 0 {
		return nil
	}
	perms := make(map[string]interface{}, len(r.Permissions))
	for _, p := range r.Permissions {
		perms[p] = struct{}{}
	}
	return map[string]interface{}{"permissions": perms}
}

// ResourceContents is the payload returned by a resources/read request.
type ResourceContents struct {
	URI      string
	MIMEType string
	Text     string
}
