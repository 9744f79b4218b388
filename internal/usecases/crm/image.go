package crm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
)

// imageAttribute is the entity image column on image-enabled entities.
const imageAttribute = "entityimage"

// ImageResult is the outcome of an entity image fetch. When HasImage is
// false the other fields are omitted entirely.
type ImageResult struct {
	HasImage bool   `json:"hasImage"`
	Base64   string `json:"base64,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// UploadImage decodes a base64 payload (already stripped of any data: URI
// prefix by the sender) and stores it as the record's entity image.
func (w *Writer) UploadImage(ctx context.Context, logicalName, id, imageBase64 string) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", id, err)
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return fmt.Errorf("invalid base64 image payload: %w", err)
	}

	entity := dataverse.NewEntity(logicalName, recordID)
	entity.Set(imageAttribute, data)

	if err := w.org.Update(ctx, entity); err != nil {
		w.logger.WithError(err).Error("image upload failed", logging.Fields{
			"entity": logicalName,
			"id":     id,
		})
		return err
	}
	return nil
}

// FetchImage retrieves the record's entity image. A record without an image
// yields HasImage=false, not an error. The mime type is sniffed from the
// stored bytes; image/jpeg is assumed when sniffing is inconclusive.
func (w *Writer) FetchImage(ctx context.Context, logicalName, id string) (*ImageResult, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}

	entity, err := w.org.Retrieve(ctx, logicalName, recordID, dataverse.NewColumnSet(imageAttribute))
	if err != nil {
		return nil, err
	}

	data, err := imageBytes(entity)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &ImageResult{HasImage: false}, nil
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	return &ImageResult{
		HasImage: true,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

// imageBytes reads the image attribute, which arrives as raw bytes from the
// typed service and as a base64 string from the Web API.
func imageBytes(entity *dataverse.Entity) ([]byte, error) {
	value, ok := entity.Get(imageAttribute)
	if !ok || value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("decoding stored image: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unexpected image attribute type %T", value)
	}
}
