// Package dataverse provides the organization service boundary to the CRM
// backend: the typed attribute values used by query results and updates, and a
// Web API client implementation.
package dataverse

import (
	"github.com/google/uuid"
)

// Money represents a currency attribute value.
type Money struct {
	Value float64
}

// OptionSetValue represents a choice attribute value by its integer code.
type OptionSetValue struct {
	Value int
}

// EntityReference represents a lookup to another record.
type EntityReference struct {
	ID          uuid.UUID
	LogicalName string
	Name        string
}

// AliasedValue wraps a value that came through a linked entity in a join. The
// inner value may itself be any attribute value type.
type AliasedValue struct {
	EntityLogicalName    string
	AttributeLogicalName string
	Value                interface{}
}

// Entity is a single CRM record: an attribute bag keyed by schema name, plus
// the locale-aware display strings the backend supplies for some attributes.
type Entity struct {
	LogicalName     string
	ID              uuid.UUID
	Attributes      map[string]interface{}
	FormattedValues map[string]string
}

// NewEntity creates an empty entity of the given type and identity.
func NewEntity(logicalName string, id uuid.UUID) *Entity {
	return &Entity{
		LogicalName:     logicalName,
		ID:              id,
		Attributes:      make(map[string]interface{}),
		FormattedValues: make(map[string]string),
	}
}

// Set assigns an attribute value.
func (e *Entity) Set(name string, value interface{}) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]interface{})
	}
	e.Attributes[name] = value
}

// Get returns an attribute value and whether it is present.
func (e *Entity) Get(name string) (interface{}, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// FormattedValue returns the backend-supplied display string for an attribute,
// if one exists.
func (e *Entity) FormattedValue(name string) (string, bool) {
	v, ok := e.FormattedValues[name]
	return v, ok
}

// EntityCollection is one page of query results.
type EntityCollection struct {
	EntityName  string
	Entities    []*Entity
	MoreRecords bool
}

// ColumnSet names the columns to retrieve for a single record.
type ColumnSet struct {
	Columns []string
}

// NewColumnSet creates a ColumnSet from the given column names.
func NewColumnSet(columns ...string) ColumnSet {
	return ColumnSet{Columns: columns}
}

// WhoAmIResult is the identity probe result for the backend connection.
type WhoAmIResult struct {
	UserID         uuid.UUID `json:"UserId"`
	BusinessUnitID uuid.UUID `json:"BusinessUnitId"`
	OrganizationID uuid.UUID `json:"OrganizationId"`
}
