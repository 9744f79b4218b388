package dataverse

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationService is the boundary to the CRM backend. The rest of the
// server depends only on this interface; the concrete client is constructed
// once at startup and shared by all tool invocations. Implementations must be
// safe for concurrent use.
type OrganizationService interface {
	// WhoAmI executes an identity probe against the backend connection.
	WhoAmI(ctx context.Context) (*WhoAmIResult, error)

	// RetrieveMultiple executes a FetchXML query and returns one page of
	// results.
	RetrieveMultiple(ctx context.Context, fetchXML string) (*EntityCollection, error)

	// Retrieve reads a single record limited to the given columns.
	Retrieve(ctx context.Context, logicalName string, id uuid.UUID, columns ColumnSet) (*Entity, error)

	// Update applies the entity's attributes as a partial update to the
	// record identified by its LogicalName and ID. Attributes not present
	// are left untouched.
	Update(ctx context.Context, entity *Entity) error
}
