package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
)

// contactFields are the writable contact columns, all plain text.
var contactFields = []string{"firstname", "lastname", "emailaddress1", "telephone1", "jobtitle"}

func (s *Service) registerContactTools(c *Catalog) error {
	recordParams := []domain.ToolParameter{
		{Name: "id", Description: "The contact record id.", Type: "string", Required: true},
		{Name: "logicalName", Description: "The entity logical name, normally contact.", Type: "string", Required: true},
	}
	fieldParams := []domain.ToolParameter{
		{Name: "firstname", Description: "First name.", Type: "string"},
		{Name: "lastname", Description: "Last name.", Type: "string"},
		{Name: "emailaddress1", Description: "Primary email address.", Type: "string"},
		{Name: "telephone1", Description: "Business phone.", Type: "string"},
		{Name: "jobtitle", Description: "Job title.", Type: "string"},
	}

	registrations := []struct {
		tool    domain.Tool
		handler Handler
	}{
		{
			tool: domain.Tool{
				Name: "ShowContact",
				Description: "Displays an interactive contact card for exactly ONE contact. " +
					"Use only when ExecuteFetch returned a single contact record. Pass that record's fields as arguments. " +
					"If ExecuteFetch returned multiple contacts, use ShowManyContacts instead.",
				Parameters: append(append([]domain.ToolParameter{}, recordParams...), fieldParams...),
				UI:         domain.ToolUIMeta{ResourceURI: ContactFormURI},
			},
			handler: s.showContact,
		},
		{
			tool: domain.Tool{
				Name: "ShowManyContacts",
				Description: "Displays a contact list for multiple contacts. " +
					"Use when ExecuteFetch returned two or more contact records. " +
					"Pass the full JSON array of contact objects from the ExecuteFetch result.",
				Parameters: []domain.ToolParameter{
					{Name: "logicalName", Description: "The entity logical name, normally contact.", Type: "string", Required: true},
					{Name: "contactsJson", Description: "A JSON array of contact objects from ExecuteFetch. Each object should have id, firstname, lastname, emailaddress1, telephone1, and jobtitle fields.", Type: "string", Required: true},
				},
				UI: domain.ToolUIMeta{ResourceURI: ContactListURI},
			},
			handler: s.showManyContacts,
		},
		{
			tool: domain.Tool{
				Name:        "UpdateContact",
				Description: "Updates a contact record in Dataverse. Only callable by the contact form UI.",
				Parameters:  append(append([]domain.ToolParameter{}, recordParams...), fieldParams...),
				UI:          domain.ToolUIMeta{AppOnly: true},
			},
			handler: s.updateContact,
		},
		{
			tool: domain.Tool{
				Name:        "UploadContactImage",
				Description: "Uploads a photo as the entity image for a contact record in Dataverse. Only callable by the contact form UI.",
				Parameters: append(append([]domain.ToolParameter{}, recordParams...),
					domain.ToolParameter{Name: "imageBase64", Description: "Base64-encoded image data (without the data:image/... prefix)", Type: "string", Required: true}),
				UI: domain.ToolUIMeta{AppOnly: true},
			},
			handler: s.uploadContactImage,
		},
		{
			tool: domain.Tool{
				Name:        "GetContactImage",
				Description: "Retrieves the entity image for a contact record from Dataverse. Only callable by app UIs.",
				Parameters:  append([]domain.ToolParameter{}, recordParams...),
				UI:          domain.ToolUIMeta{AppOnly: true},
			},
			handler: s.getContactImage,
		},
	}

	for _, r := range registrations {
		if err := c.Register(r.tool, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) showContact(ctx context.Context, args Arguments) (string, error) {
	fields := args.Strings("firstname", "lastname", "emailaddress1")
	return fmt.Sprintf("%s %s (%s)", fields["firstname"], fields["lastname"], fields["emailaddress1"]), nil
}

func (s *Service) showManyContacts(ctx context.Context, args Arguments) (string, error) {
	logicalName, _ := args.String("logicalName")
	return fmt.Sprintf("Displaying contact list (%s)", logicalName), nil
}

func (s *Service) updateContact(ctx context.Context, args Arguments) (string, error) {
	id, logicalName, err := recordIdentity("UpdateContact", args)
	if err != nil {
		return "", err
	}

	fields := args.Strings(contactFields...)
	if err := s.writer.UpdateFields(ctx, logicalName, id, fields, nil); err != nil {
		return ErrorPrefix + err.Error(), nil
	}
	return "Contact updated successfully.", nil
}

func (s *Service) uploadContactImage(ctx context.Context, args Arguments) (string, error) {
	id, logicalName, err := recordIdentity("UploadContactImage", args)
	if err != nil {
		return "", err
	}
	imageBase64, ok := args.String("imageBase64")
	if !ok {
		return "", domain.NewMissingArgumentError("UploadContactImage", "imageBase64")
	}

	if err := s.writer.UploadImage(ctx, logicalName, id, imageBase64); err != nil {
		return ErrorPrefix + err.Error(), nil
	}
	return "Contact image updated successfully.", nil
}

func (s *Service) getContactImage(ctx context.Context, args Arguments) (string, error) {
	id, logicalName, err := recordIdentity("GetContactImage", args)
	if err != nil {
		return "", err
	}

	result, fetchErr := s.writer.FetchImage(ctx, logicalName, id)
	if fetchErr != nil {
		return ErrorPrefix + fetchErr.Error(), nil
	}
	out, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return ErrorPrefix + marshalErr.Error(), nil
	}
	return string(out), nil
}

// recordIdentity extracts the id and logicalName pair shared by the
// record-scoped tools.
func recordIdentity(tool string, args Arguments) (id, logicalName string, err error) {
	id, ok := args.String("id")
	if !ok {
		return "", "", domain.NewMissingArgumentError(tool, "id")
	}
	logicalName, ok = args.String("logicalName")
	if !ok {
		return "", "", domain.NewMissingArgumentError(tool, "logicalName")
	}
	return id, logicalName, nil
}
