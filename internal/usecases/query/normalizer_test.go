package query

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
)

func TestNormalize_IdentityKeysAlwaysPresent(t *testing.T) {
	first := dataverse.NewEntity("contact", uuid.New())
	second := dataverse.NewEntity("contact", uuid.New())
	second.Set("firstname", "Grace")

	envelope := Normalize(&dataverse.EntityCollection{
		EntityName: "contact",
		Entities:   []*dataverse.Entity{first, second},
	})

	assert.Equal(t, "contact", envelope.EntityName)
	assert.Equal(t, envelope.Count, len(envelope.Records))
	for _, record := range envelope.Records {
		assert.NotEmpty(t, record["id"])
		assert.Equal(t, "contact", record["logicalName"])
	}
}

func TestNormalize_FormattedValueWins(t *testing.T) {
	entity := dataverse.NewEntity("opportunity", uuid.New())
	entity.Set("estimatedvalue", dataverse.Money{Value: 1500000})
	entity.FormattedValues["estimatedvalue"] = "$1,500,000.00"

	envelope := Normalize(&dataverse.EntityCollection{
		EntityName: "opportunity",
		Entities:   []*dataverse.Entity{entity},
	})

	assert.Equal(t, "$1,500,000.00", envelope.Records[0]["estimatedvalue"])
}

func TestNormalize_UnwrapsTypedValues(t *testing.T) {
	refID := uuid.New()

	entity := dataverse.NewEntity("opportunity", uuid.New())
	entity.Set("estimatedvalue", dataverse.Money{Value: 1234.5})
	entity.Set("statecode", dataverse.OptionSetValue{Value: 0})
	entity.Set("customerid", dataverse.EntityReference{ID: refID, LogicalName: "account"})
	entity.Set("description", nil)
	entity.Set("aliased", dataverse.AliasedValue{
		EntityLogicalName:    "account",
		AttributeLogicalName: "name",
		Value:                nil,
	})
	entity.Set("nested", dataverse.AliasedValue{
		EntityLogicalName:    "account",
		AttributeLogicalName: "revenue",
		Value:                dataverse.Money{Value: 42},
	})

	envelope := Normalize(&dataverse.EntityCollection{
		EntityName: "opportunity",
		Entities:   []*dataverse.Entity{entity},
	})
	record := envelope.Records[0]

	assert.Equal(t, 1234.5, record["estimatedvalue"])
	assert.Equal(t, 0, record["statecode"])
	assert.Equal(t, refID.String(), record["customerid"])
	assert.Nil(t, record["description"])
	assert.Nil(t, record["aliased"])
	assert.Equal(t, 42.0, record["nested"])
}

func TestNormalize_MoreRecordsFlag(t *testing.T) {
	envelope := Normalize(&dataverse.EntityCollection{
		EntityName:  "contact",
		MoreRecords: true,
	})
	assert.True(t, envelope.MoreRecords)
	assert.Equal(t, 0, envelope.Count)
	assert.NotNil(t, envelope.Records)
}

func TestNormalizeJSON(t *testing.T) {
	entity := dataverse.NewEntity("contact", uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	entity.Set("firstname", "Ada")

	out, err := NormalizeJSON(&dataverse.EntityCollection{
		EntityName: "contact",
		Entities:   []*dataverse.Entity{entity},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "contact", decoded["entityName"])
	assert.Equal(t, float64(1), decoded["count"])

	records := decoded["records"].([]interface{})
	record := records[0].(map[string]interface{})
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", record["id"])
	assert.Equal(t, "Ada", record["firstname"])
}
