// Package catalog holds the explicit registration table for every tool the
// server exposes: descriptor, handler, and UI affinity, built once at startup.
package catalog

import (
	"context"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
)

// ErrorPrefix marks a tool result that reports a failure. Failures are data:
// they are surfaced to the agent or app inline, never as protocol faults.
const ErrorPrefix = "[ERROR] "

// Arguments is the flat argument map of one tool invocation.
type Arguments map[string]interface{}

// String returns a string argument and whether it was supplied.
func (a Arguments) String(name string) (string, bool) {
	value, ok := a[name].(string)
	return value, ok
}

// Strings collects the supplied subset of the named string arguments.
func (a Arguments) Strings(names ...string) map[string]string {
	out := make(map[string]string)
	for _, name := range names {
		if value, ok := a.String(name); ok {
			out[name] = value
		}
	}
	return out
}

// Handler executes one tool invocation. Handlers report backend failures in
// the returned string (ErrorPrefix convention); the error return is reserved
// for malformed invocations.
type Handler func(ctx context.Context, args Arguments) (string, error)

// Registration pairs a tool descriptor with its handler.
type Registration struct {
	Tool    domain.Tool
	Handler Handler
}

// Catalog is the registration table. It is populated at startup and read-only
// afterwards, so lookups need no locking.
type Catalog struct {
	order []string
	tools map[string]*Registration
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{tools: make(map[string]*Registration)}
}

// Register adds a tool and its handler. Registering a name twice is a
// programming error and fails.
func (c *Catalog) Register(tool domain.Tool, handler Handler) error {
	if _, exists := c.tools[tool.Name]; exists {
		return domain.NewDuplicateRegistrationError("tool", tool.Name)
	}
	c.tools[tool.Name] = &Registration{Tool: tool, Handler: handler}
	c.order = append(c.order, tool.Name)
	return nil
}

// Tools returns all registered tools in registration order.
func (c *Catalog) Tools() []domain.Tool {
	out := make([]domain.Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name].Tool)
	}
	return out
}

// Lookup returns the registration for a tool name.
func (c *Catalog) Lookup(name string) (*Registration, error) {
	reg, ok := c.tools[name]
	if !ok {
		return nil, domain.NewToolNotFoundError(name)
	}
	return reg, nil
}

// Call dispatches one tool invocation.
func (c *Catalog) Call(ctx context.Context, name string, args Arguments) (string, error) {
	reg, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	return reg.Handler(ctx, args)
}
