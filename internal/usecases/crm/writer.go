// Package crm applies partial field updates and entity image operations to
// single CRM records, translating string-typed tool arguments into
// backend-typed values.
package crm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
)

// FieldType selects the coercion applied to a field's string value before it
// is written.
type FieldType int

// Supported field coercions.
const (
	FieldText FieldType = iota
	FieldMoney
	FieldDate
	FieldInt
)

// dateLayouts are tried in order when parsing date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Writer applies updates to single records through the organization service.
// One backend write per invocation, no retries.
type Writer struct {
	org    dataverse.OrganizationService
	logger *logging.Logger
}

// NewWriter creates a Writer.
func NewWriter(org dataverse.OrganizationService, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{org: org, logger: logger}
}

// UpdateFields writes the given fields to one record. Only the fields present
// in the map are written; fieldTypes selects per-field coercion, defaulting
// to plain text.
func (w *Writer) UpdateFields(ctx context.Context, logicalName, id string, fields map[string]string, fieldTypes map[string]FieldType) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", id, err)
	}

	entity := dataverse.NewEntity(logicalName, recordID)
	for name, value := range fields {
		coerced, err := coerce(name, value, fieldTypes[name])
		if err != nil {
			return err
		}
		entity.Set(name, coerced)
	}

	if err := w.org.Update(ctx, entity); err != nil {
		w.logger.WithError(err).Error("record update failed", logging.Fields{
			"entity": logicalName,
			"id":     id,
		})
		return err
	}
	return nil
}

// coerce converts a transport string into the backend-typed value for the
// field.
func coerce(name, value string, fieldType FieldType) (interface{}, error) {
	switch fieldType {
	case FieldMoney:
		amount, err := strconv.ParseFloat(stripCurrencyFormatting(value), 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid money value %q", name, value)
		}
		return dataverse.Money{Value: amount}, nil
	case FieldDate:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("field %s: invalid date value %q", name, value)
	case FieldInt:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid integer value %q", name, value)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

// stripCurrencyFormatting drops currency symbols and grouping separators,
// keeping digits, the decimal point and a leading minus. The UI strips before
// sending; this guards against display-formatted strings arriving from an
// agent.
func stripCurrencyFormatting(value string) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
