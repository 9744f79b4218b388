// Package query normalizes raw FetchXML result sets into the compact JSON
// envelope consumed by the agent and the UI apps.
package query

import (
	"encoding/json"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
)

// Record is one normalized record. The id and logicalName keys are always
// present; every other key is a backend attribute carrying either the
// backend's formatted display string or an unwrapped scalar.
type Record map[string]interface{}

// Envelope is the normalized result of a query.
type Envelope struct {
	EntityName  string   `json:"entityName"`
	Records     []Record `json:"records"`
	Count       int      `json:"count"`
	MoreRecords bool     `json:"moreRecords"`
}

// Normalize converts a raw entity collection into an Envelope. Formatted
// values win over raw values when the backend supplies both.
func Normalize(collection *dataverse.EntityCollection) Envelope {
	records := make([]Record, 0, len(collection.Entities))
	for _, entity := range collection.Entities {
		record := Record{
			"id":          entity.ID.String(),
			"logicalName": entity.LogicalName,
		}
		for name, value := range entity.Attributes {
			if formatted, ok := entity.FormattedValue(name); ok {
				record[name] = formatted
				continue
			}
			record[name] = unwrap(value)
		}
		records = append(records, record)
	}

	return Envelope{
		EntityName:  collection.EntityName,
		Records:     records,
		Count:       len(records),
		MoreRecords: collection.MoreRecords,
	}
}

// NormalizeJSON normalizes a collection and serializes the envelope.
func NormalizeJSON(collection *dataverse.EntityCollection) (string, error) {
	envelope := Normalize(collection)
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unwrap reduces a backend-typed attribute value to a plain scalar.
func unwrap(value interface{}) interface{} {
	switch v := value.(type) {
	case dataverse.OptionSetValue:
		return v.Value
	case dataverse.Money:
		return v.Value
	case dataverse.EntityReference:
		return v.ID.String()
	case dataverse.AliasedValue:
		return unwrap(v.Value)
	case nil:
		return nil
	default:
		return v
	}
}
