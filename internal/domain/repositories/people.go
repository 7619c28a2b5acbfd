package repositories

import (
	"context"

	"roster/internal/domain/models"
)

// MutateFn is a mutation command applied to a record's document inside the
// store's per-record critical section. It receives the current document and
// returns the replacement; the locking code knows nothing about what the
// command does.
type MutateFn func(doc models.JSONMap) (models.JSONMap, error)

// PeopleRepository is the keyed store of member records. Mutations on one
// record serialize behind a per-record exclusive lock; mutations on
// different records proceed independently.
type PeopleRepository interface {
	// Get returns one record. Fails with domain.ErrNotFound if id is absent.
	Get(ctx context.Context, id string) (*models.Record, error)

	// GetAll returns every record in the collection.
	GetAll(ctx context.Context) ([]models.Record, error)

	// Mutate runs one atomic read-modify-write cycle on a record: it holds
	// the record's exclusive lock for the full span of reading the current
	// document, applying fn, and writing the result. Fails with
	// domain.ErrNotFound if id is absent; a failing fn aborts the write.
	Mutate(ctx context.Context, id string, fn MutateFn) error

	// Add inserts a new record. Fails with domain.ErrAlreadyExists if the
	// id is taken.
	Add(ctx context.Context, record *models.Record) error

	// Delete removes a record unconditionally.
	Delete(ctx context.Context, id string) error

	// ListIDs returns the ids of every record.
	ListIDs(ctx context.Context) ([]string, error)

	// ReplaceAll atomically swaps the whole collection: a concurrent reader
	// observes either the old full set or the new full set, never a mix.
	ReplaceAll(ctx context.Context, records []models.Record) error
}
