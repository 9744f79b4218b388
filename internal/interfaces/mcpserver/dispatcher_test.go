package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
	"github.com/FreePeak/dataverse-mcp-server/internal/testutil"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/catalog"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/uiapp"
)

func newTestDispatcher(t *testing.T, org *testutil.FakeOrgService) *Dispatcher {
	t.Helper()

	c := catalog.New()
	require.NoError(t, catalog.NewService(org, nil).Register(c))

	fsys := fstest.MapFS{}
	for _, app := range uiapp.Apps() {
		fsys[app.File] = &fstest.MapFile{Data: []byte("<html>" + app.Name + "</html>")}
	}
	registry, err := uiapp.NewRegistry(fsys)
	require.NoError(t, err)

	return NewDispatcher("dataverse-mcp-server", "0.1.0", c, registry, nil)
}

func call(t *testing.T, d *Dispatcher, method string, params interface{}) *Response {
	t.Helper()
	req := &Request{JSONRPC: "2.0", ID: 1, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	return d.Handle(context.Background(), req)
}

func TestHandle_Initialize(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "initialize", nil)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])

	capabilities := result["capabilities"].(map[string]interface{})
	extensions := capabilities["extensions"].(map[string]interface{})
	_, ok := extensions[domain.UIMetaKey]
	assert.True(t, ok)

	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "dataverse-mcp-server", info["name"])
}

func TestHandle_InitializedNotificationIsSilent(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := d.Handle(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	assert.Nil(t, resp)
}

func TestHandle_Ping(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "ping", nil)
	require.Nil(t, resp.Error)
	assert.NotNil(t, resp.Result)
}

func TestHandle_MethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "prompts/list", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFoundCode, resp.Error.Code)
}

func TestHandle_ToolsListCarriesUIMeta(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "tools/list", nil)
	require.Nil(t, resp.Error)

	tools := resp.Result.(map[string]interface{})["tools"].([]map[string]interface{})
	require.Len(t, tools, 13)

	byName := make(map[string]map[string]interface{})
	for _, tool := range tools {
		byName[tool["name"].(string)] = tool
	}

	timeMeta := byName["GetTime"]["_meta"].(map[string]interface{})
	ui := timeMeta[domain.UIMetaKey].(map[string]interface{})
	assert.Equal(t, "ui://get-time/clock", ui["resourceUri"])

	updateMeta := byName["UpdateContact"]["_meta"].(map[string]interface{})
	ui = updateMeta[domain.UIMetaKey].(map[string]interface{})
	assert.Equal(t, []string{"app"}, ui["visibility"])

	_, hasMeta := byName["ExecuteFetch"]["_meta"]
	assert.False(t, hasMeta)

	schema := byName["ExecuteFetch"]["inputSchema"].(map[string]interface{})
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"fetchXmlRequest"}, schema["required"])
}

func TestHandle_ToolsCall(t *testing.T) {
	entity := dataverse.NewEntity("contact", uuid.New())
	entity.Set("firstname", "Ada")
	org := &testutil.FakeOrgService{
		FetchResult: &dataverse.EntityCollection{
			EntityName: "contact",
			Entities:   []*dataverse.Entity{entity},
		},
	}
	d := newTestDispatcher(t, org)

	resp := call(t, d, "tools/call", map[string]interface{}{
		"name":      "ExecuteFetch",
		"arguments": map[string]interface{}{"fetchXmlRequest": "<fetch/>"},
	})
	require.Nil(t, resp.Error)

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &decoded))
	assert.Equal(t, "contact", decoded["entityName"])
}

func TestHandle_ToolsCallUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "tools/call", map[string]interface{}{"name": "Nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParamsCode, resp.Error.Code)
}

func TestHandle_ToolsCallMissingRequiredArgument(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "tools/call", map[string]interface{}{
		"name":      "UpdateContact",
		"arguments": map[string]interface{}{"logicalName": "contact"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParamsCode, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "id")
}

func TestHandle_ResourcesList(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "resources/list", nil)
	require.Nil(t, resp.Error)

	resources := resp.Result.(map[string]interface{})["resources"].([]map[string]interface{})
	require.Len(t, resources, 7)

	var contactForm map[string]interface{}
	for _, resource := range resources {
		assert.Equal(t, uiapp.MimeType, resource["mimeType"])
		if resource["uri"] == "ui://get-contact/form" {
			contactForm = resource
		}
	}
	require.NotNil(t, contactForm)

	meta := contactForm["_meta"].(map[string]interface{})
	ui := meta[domain.UIMetaKey].(map[string]interface{})
	perms := ui["permissions"].(map[string]interface{})
	_, ok := perms["camera"]
	assert.True(t, ok)
}

func TestHandle_ResourcesRead(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "resources/read", map[string]interface{}{"uri": "ui://get-time/clock"})
	require.Nil(t, resp.Error)

	contents := resp.Result.(map[string]interface{})["contents"].([]map[string]interface{})
	require.Len(t, contents, 1)
	assert.Equal(t, "ui://get-time/clock", contents[0]["uri"])
	assert.Equal(t, uiapp.MimeType, contents[0]["mimeType"])
	assert.Contains(t, contents[0]["text"], "Clock")
}

func TestHandle_ResourcesReadUnknownURI(t *testing.T) {
	d := newTestDispatcher(t, &testutil.FakeOrgService{})

	resp := call(t, d, "resources/read", map[string]interface{}{"uri": "ui://nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, ResourceNotFoundCode, resp.Error.Code)
}

func TestHandle_FetchThenShowManyContactsFlow(t *testing.T) {
	entity := dataverse.NewEntity("contact", uuid.New())
	entity.Set("firstname", "Grace")
	org := &testutil.FakeOrgService{
		FetchResult: &dataverse.EntityCollection{
			EntityName: "contact",
			Entities:   []*dataverse.Entity{entity},
		},
	}
	d := newTestDispatcher(t, org)

	fetchResp := call(t, d, "tools/call", map[string]interface{}{
		"name":      "ExecuteFetch",
		"arguments": map[string]interface{}{"fetchXmlRequest": "<fetch/>"},
	})
	require.Nil(t, fetchResp.Error)
	fetched := fetchResp.Result.(map[string]interface{})["content"].([]map[string]interface{})[0]["text"].(string)

	showResp := call(t, d, "tools/call", map[string]interface{}{
		"name": "ShowManyContacts",
		"arguments": map[string]interface{}{
			"logicalName":  "contact",
			"contactsJson": fetched,
		},
	})
	require.Nil(t, showResp.Error)
	shown := showResp.Result.(map[string]interface{})["content"].([]map[string]interface{})[0]["text"].(string)
	assert.Equal(t, "Displaying contact list (contact)", shown)
}
