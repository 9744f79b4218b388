package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/catalog"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/uiapp"
)

// Dispatcher routes JSON-RPC methods to the catalog and registry. It holds no
// per-request state; one instance serves all transports concurrently.
type Dispatcher struct {
	name     string
	version  string
	catalog  *catalog.Catalog
	registry *uiapp.Registry
	logger   *logging.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(name, version string, c *catalog.Catalog, r *uiapp.Registry, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{name: name, version: version, catalog: c, registry: r, logger: logger}
}

// Handle processes one request. Notifications return nil.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != "2.0" {
		return newErrorResponse(req.ID, InvalidRequestCode, "unsupported jsonrpc version")
	}

	switch req.Method {
	case "initialize":
		return newResponse(req.ID, d.initializeResult())
	case "notifications/initialized":
		return nil
	case "ping":
		return newResponse(req.ID, struct{}{})
	case "tools/list":
		return newResponse(req.ID, map[string]interface{}{"tools": d.toolDescriptors()})
	case "tools/call":
		return d.callTool(ctx, req)
	case "resources/list":
		return newResponse(req.ID, map[string]interface{}{"resources": d.resourceDescriptors()})
	case "resources/read":
		return d.readResource(req)
	default:
		if req.IsNotification() {
			return nil
		}
		return newErrorResponse(req.ID, MethodNotFoundCode, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (d *Dispatcher) initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools":     struct{}{},
			"resources": struct{}{},
			"extensions": map[string]interface{}{
				domain.UIMetaKey: struct{}{},
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    d.name,
			"version": d.version,
		},
	}
}

func (d *Dispatcher) toolDescriptors() []map[string]interface{} {
	tools := d.catalog.Tools()
	out := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		descriptor := map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": inputSchema(tool),
		}
		if meta := tool.UI.Meta(); meta != nil {
			descriptor["_meta"] = map[string]interface{}{domain.UIMetaKey: meta}
		}
		out = append(out, descriptor)
	}
	return out
}

func inputSchema(tool domain.Tool) map[string]interface{} {
	properties := make(map[string]interface{}, len(tool.Parameters))
	required := []string{}
	for _, param := range tool.Parameters {
		properties[param.Name] = map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (d *Dispatcher) callTool(ctx context.Context, req *Request) *Response {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, InvalidParamsCode, "malformed tools/call params")
	}

	reg, err := d.catalog.Lookup(params.Name)
	if err != nil {
		return newErrorResponse(req.ID, InvalidParamsCode, err.Error())
	}
	for _, param := range reg.Tool.Parameters {
		if param.Required {
			if _, ok := params.Arguments[param.Name]; !ok {
				return newErrorResponse(req.ID, InvalidParamsCode,
					fmt.Sprintf("tool %s requires argument %s", params.Name, param.Name))
			}
		}
	}

	out, err := reg.Handler(ctx, catalog.Arguments(params.Arguments))
	if err != nil {
		var missing *domain.MissingArgumentError
		if errors.As(err, &missing) {
			return newErrorResponse(req.ID, InvalidParamsCode, err.Error())
		}
		d.logger.WithError(err).Error("tool invocation failed", logging.Fields{"tool": params.Name})
		return newErrorResponse(req.ID, InternalErrorCode, err.Error())
	}

	return newResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": out},
		},
	})
}

func (d *Dispatcher) resourceDescriptors() []map[string]interface{} {
	resources := d.registry.Resources()
	out := make([]map[string]interface{}, 0, len(resources))
	for _, resource := range resources {
		descriptor := map[string]interface{}{
			"uri":         resource.URI,
			"name":        resource.Name,
			"description": resource.Description,
			"mimeType":    resource.MIMEType,
		}
		if meta := resource.Meta(); meta != nil {
			descriptor["_meta"] = map[string]interface{}{domain.UIMetaKey: meta}
		}
		out = append(out, descriptor)
	}
	return out
}

func (d *Dispatcher) readResource(req *Request) *Response {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, InvalidParamsCode, "malformed resources/read params")
	}

	contents, err := d.registry.Content(params.URI)
	if err != nil {
		return newErrorResponse(req.ID, ResourceNotFoundCode, err.Error())
	}
	return newResponse(req.ID, map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      contents.URI,
				"mimeType": contents.MIMEType,
				"text":     contents.Text,
			},
		},
	})
}
