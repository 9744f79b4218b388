// Package mcpserver implements the JSON-RPC protocol surface: method
// dispatch over stdio or HTTP against the tool catalog and UI app registry.
package mcpserver

import "encoding/json"

// ProtocolVersion is the protocol revision this server speaks.
const ProtocolVersion = "2025-06-18"

// JSON-RPC 2.0 error codes.
const (
	ParseErrorCode       = -32700
	InvalidRequestCode   = -32600
	MethodNotFoundCode   = -32601
	InvalidParamsCode    = -32602
	InternalErrorCode    = -32603
	ResourceNotFoundCode = -32002
)

// Request is a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id and therefore
// expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func newResponse(id, result interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func newErrorResponse(id interface{}, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}
