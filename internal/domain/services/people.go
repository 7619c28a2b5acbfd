package services

import (
	"context"
	"time"

	"roster/internal/domain/models"
)

// PeopleService is the record-level store API: whole-document reads and
// path-addressed reads and mutations.
type PeopleService interface {
	// Get returns one record
	Get(ctx context.Context, id string) (*models.Record, error)

	// GetAtPath returns the value at a dotted path inside the record's
	// document; absent id or path fails with domain.ErrNotFound
	GetAtPath(ctx context.Context, id, path string) (interface{}, error)

	// SetAtPath writes a value at a dotted path, creating intermediate
	// segments as needed
	SetAtPath(ctx context.Context, id, path string, value interface{}) error

	// DeleteAtPath removes the value at a dotted path; a missing path is a
	// no-op, not an error
	DeleteAtPath(ctx context.Context, id, path string) error

	// Delete removes a record unconditionally
	Delete(ctx context.Context, id string) error

	// ListIDs returns every record id
	ListIDs(ctx context.Context) ([]string, error)
}

// AppendStatusRequest describes one status transition to append
type AppendStatusRequest struct {
	Status models.Status
	By     string
	Date   time.Time
	Reason models.StatusReason
}

// CreatePersonRequest describes a new record plus its initial status event
type CreatePersonRequest struct {
	ID     string
	Status models.Status
	By     string
	Date   time.Time
}

// StatusService is the state machine over a record's statusHistory
type StatusService interface {
	// AppendStatus validates and appends one status transition. It rejects
	// unknown statuses, malformed status/reason combinations, unknown
	// actors, and no-op transitions.
	AppendStatus(ctx context.Context, id string, req *AppendStatusRequest) error

	// CreateWithInitialStatus creates an empty record and appends exactly
	// one status event. Only guest and invited are permitted initially. If
	// the append fails the record is rolled back, never left inconsistent.
	CreateWithInitialStatus(ctx context.Context, req *CreatePersonRequest) (*models.Record, error)
}

// RosterService moves the whole collection in and out of the store
type RosterService interface {
	// ExportAll returns the full roster converted to the target version
	ExportAll(ctx context.Context, version models.SchemaVersion) (*models.Envelope, error)

	// ImportAll destructively replaces the full roster with the envelope's
	// contents; the replacement is atomic to readers
	ImportAll(ctx context.Context, env *models.Envelope) error
}
