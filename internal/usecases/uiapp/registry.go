// Package uiapp registers the prebuilt HTML apps served as ui:// resources
// and hands out their content to resource reads.
package uiapp

import (
	"io/fs"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
)

// MimeType marks a resource as an embeddable app rather than a plain page.
const MimeType = "text/html;profile=mcp-app"

// PermissionCamera lets an app request host camera access.
const PermissionCamera = "camera"

// App describes one UI bundle: its resource identity and the file backing it.
type App struct {
	URI         string
	Name        string
	Description string
	File        string
	Permissions []string
}

// Apps is the full bundle set. Every tool-referenced URI must appear here.
func Apps() []App {
	return []App{
		{
			URI:         "ui://get-time/clock",
			Name:        "Clock",
			Description: "Live clock synchronized with the server time.",
			File:        "ui/index.html",
		},
		{
			URI:         "ui://get-contact/form",
			Name:        "Contact Form",
			Description: "Interactive contact card with inline editing and photo capture.",
			File:        "ui/contact.html",
			Permissions: []string{PermissionCamera},
		},
		{
			URI:         "ui://get-contact/list",
			Name:        "Contact List",
			Description: "Scrollable contact list with avatars.",
			File:        "ui/contactlist.html",
		},
		{
			URI:         "ui://get-opportunity/form",
			Name:        "Opportunity Form",
			Description: "Interactive opportunity card with inline editing.",
			File:        "ui/opportunity.html",
		},
		{
			URI:         "ui://get-opportunity/list",
			Name:        "Opportunity List",
			Description: "Scrollable opportunity list.",
			File:        "ui/opportunitylist.html",
		},
		{
			URI:         "ui://get-opportunity/chart",
			Name:        "Opportunity Pipeline",
			Description: "Pipeline chart of opportunities by estimated close month.",
			File:        "ui/opportunitychart.html",
		},
		{
			URI:         "ui://get-opportunity/topgraph",
			Name:        "Top Opportunities",
			Description: "Bar graph of the top opportunities by estimated value.",
			File:        "ui/opportunitytopgraph.html",
		},
	}
}

// Registry serves UI bundles as resources. Bundles are read once at
// construction so a missing file fails startup instead of a later read.
type Registry struct {
	order     []string
	resources map[string]domain.Resource
	content   map[string]string
}

// NewRegistry loads every bundle from the filesystem.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	r := &Registry{
		resources: make(map[string]domain.Resource),
		content:   make(map[string]string),
	}
	for _, app := range Apps() {
		if _, exists := r.resources[app.URI]; exists {
			return nil, domain.NewDuplicateRegistrationError("resource", app.URI)
		}
		data, err := fs.ReadFile(fsys, app.File)
		if err != nil {
			return nil, domain.NewMissingBundleError(app.URI, app.File)
		}
		r.resources[app.URI] = domain.Resource{
			URI:         app.URI,
			Name:        app.Name,
			Description: app.Description,
			MIMEType:    MimeType,
			Permissions: app.Permissions,
		}
		r.content[app.URI] = string(data)
		r.order = append(r.order, app.URI)
	}
	return r, nil
}

// Resources returns all registered resources in registration order.
func (r *Registry) Resources() []domain.Resource {
	out := make([]domain.Resource, 0, len(r.order))
	for _, uri := range r.order {
		out = append(out, r.resources[uri])
	}
	return out
}

// Content returns the bundle backing a resource URI.
func (r *Registry) Content(uri string) (domain.ResourceContents, error) {
	resource, ok := r.resources[uri]
	if !ok {
		return domain.ResourceContents{}, domain.NewResourceNotFoundError(uri)
	}
	return domain.ResourceContents{
		URI:      resource.URI,
		MIMEType: resource.MIMEType,
		Text:     r.content[uri],
	}, nil
}
