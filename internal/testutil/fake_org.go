// Package testutil provides shared test doubles.
package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
)

// FakeOrgService is an in-memory OrganizationService for tests. Behavior is
// programmable per method; calls are recorded.
type FakeOrgService struct {
	mu sync.Mutex

	WhoAmIResult *dataverse.WhoAmIResult
	WhoAmIErr    error

	FetchResult *dataverse.EntityCollection
	FetchErr    error
	FetchCalls  []string

	RetrieveResult *dataverse.Entity
	RetrieveErr    error
	RetrieveCalls  []RetrieveCall

	UpdateErr   error
	UpdateCalls []*dataverse.Entity
}

// RetrieveCall records one Retrieve invocation.
type RetrieveCall struct {
	LogicalName string
	ID          uuid.UUID
	Columns     dataverse.ColumnSet
}

var _ dataverse.OrganizationService = (*FakeOrgService)(nil)

// WhoAmI returns the programmed identity result.
func (f *FakeOrgService) WhoAmI(ctx context.Context) (*dataverse.WhoAmIResult, error) {
	if f.WhoAmIErr != nil {
		return nil, f.WhoAmIErr
	}
	if f.WhoAmIResult != nil {
		return f.WhoAmIResult, nil
	}
	return &dataverse.WhoAmIResult{}, nil
}

// RetrieveMultiple records the query and returns the programmed collection.
func (f *FakeOrgService) RetrieveMultiple(ctx context.Context, fetchXML string) (*dataverse.EntityCollection, error) {
	f.mu.Lock()
	f.FetchCalls = append(f.FetchCalls, fetchXML)
	f.mu.Unlock()

	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	if f.FetchResult != nil {
		return f.FetchResult, nil
	}
	return &dataverse.EntityCollection{}, nil
}

// Retrieve records the call and returns the programmed entity.
func (f *FakeOrgService) Retrieve(ctx context.Context, logicalName string, id uuid.UUID, columns dataverse.ColumnSet) (*dataverse.Entity, error) {
	f.mu.Lock()
	f.RetrieveCalls = append(f.RetrieveCalls, RetrieveCall{LogicalName: logicalName, ID: id, Columns: columns})
	f.mu.Unlock()

	if f.RetrieveErr != nil {
		return nil, f.RetrieveErr
	}
	if f.RetrieveResult != nil {
		return f.RetrieveResult, nil
	}
	return dataverse.NewEntity(logicalName, id), nil
}

// Update records the written entity.
func (f *FakeOrgService) Update(ctx context.Context, entity *dataverse.Entity) error {
	f.mu.Lock()
	f.UpdateCalls = append(f.UpdateCalls, entity)
	f.mu.Unlock()
	return f.UpdateErr
}

// LastUpdate returns the most recent Update call, or nil.
func (f *FakeOrgService) LastUpdate() *dataverse.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.UpdateCalls) == 0 {
		return nil
	}
	return f.UpdateCalls[len(f.UpdateCalls)-1]
}
