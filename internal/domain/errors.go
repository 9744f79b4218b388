package domain

import "fmt"

// ToolNotFoundError indicates that a requested tool is not registered.
type ToolNotFoundError struct {
	Name string
}

// Error returns the error message.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool with name %s not found", e.Name)
}

// NewToolNotFoundError creates a new ToolNotFoundError.
func NewToolNotFoundError(name string) *ToolNotFoundError {
	return &ToolNotFoundError{Name: name}
}

// ResourceNotFoundError indicates that a requested resource is not registered.
type ResourceNotFoundError struct {
	URI string
}

// Error returns the error message.
func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource with URI %s not found", e.URI)
}

// NewResourceNotFoundError creates a new ResourceNotFoundError.
func NewResourceNotFoundError(uri string) *ResourceNotFoundError {
	return &ResourceNotFoundError{URI: uri}
}

// MissingBundleError indicates that the prebuilt HTML bundle backing a
// registered ui:// resource is absent. This is a deployment defect, not a
// runtime condition: the server refuses to start.
type MissingBundleError struct {
	URI  string
	Path string
}

// Error returns the error message.
func (e *MissingBundleError) Error() string {
	return fmt.Sprintf("UI bundle for %s not found at %s; build the web assets first", e.URI, e.Path)
}

// NewMissingBundleError creates a new MissingBundleError.
func NewMissingBundleError(uri, path string) *MissingBundleError {
	return &MissingBundleError{URI: uri, Path: path}
}

// MissingArgumentError indicates that a tool invocation omitted a required
// argument. It maps to an invalid-params protocol fault, not an error result.
type MissingArgumentError struct {
	Tool     string
	Argument string
}

// Error returns the error message.
func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("tool %s requires argument %s", e.Tool, e.Argument)
}

// NewMissingArgumentError creates a new MissingArgumentError.
func NewMissingArgumentError(tool, argument string) *MissingArgumentError {
	return &MissingArgumentError{Tool: tool, Argument: argument}
}

// DuplicateRegistrationError indicates that a tool or resource name was
// registered twice.
type DuplicateRegistrationError struct {
	Kind string
	Name string
}

// Error returns the error message.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s %s is already registered", e.Kind, e.Name)
}

// NewDuplicateRegistrationError creates a new DuplicateRegistrationError.
func NewDuplicateRegistrationError(kind, name string) *DuplicateRegistrationError {
	return &DuplicateRegistrationError{Kind: kind, Name: name}
}
