// Package memory provides an in-memory PeopleRepository used by tests and
// as a database-less development mode. It makes the same atomicity promises
// as the Postgres implementation, with mutexes instead of row locks.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"roster/internal/domain"
	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
)

// PeopleRepository keeps records in a map. The collection lock guards map
// membership and makes ReplaceAll atomic to readers; each record carries its
// own mutex so same-record mutations serialize while different records
// proceed independently.
type PeopleRepository struct {
	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	mu      sync.Mutex
	version models.SchemaVersion
	doc     models.JSONMap
}

// NewPeopleRepository creates an empty in-memory people repository
func NewPeopleRepository() *PeopleRepository {
	return &PeopleRepository{records: map[string]*record{}}
}

// Get returns a copy of one record
func (r *PeopleRepository) Get(_ context.Context, id string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: person %q", domain.ErrNotFound, id)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	doc, err := rec.doc.Clone()
	if err != nil {
		return nil, err
	}
	return &models.Record{ID: id, Version: rec.version, Document: doc}, nil
}

// GetAll returns copies of every record, ordered by id
func (r *PeopleRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.sortedIDs()
	records := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		rec := r.records[id]
		rec.mu.Lock()
		doc, err := rec.doc.Clone()
		version := rec.version
		rec.mu.Unlock()
		if err != nil {
			return nil, err
		}
		records = append(records, models.Record{ID: id, Version: version, Document: doc})
	}
	return records, nil
}

// Mutate applies fn under the record's exclusive lock for the full
// read-modify-write span. The collection read lock is held throughout so a
// concurrent ReplaceAll cannot slip between read and write.
func (r *PeopleRepository) Mutate(_ context.Context, id string, fn repositories.MutateFn) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: person %q", domain.ErrNotFound, id)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	doc, err := rec.doc.Clone()
	if err != nil {
		return err
	}
	updated, err := fn(doc)
	if err != nil {
		return err
	}
	rec.doc = updated
	return nil
}

// Add inserts a new record
func (r *PeopleRepository) Add(_ context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; ok {
		return fmt.Errorf("%w: person %q", domain.ErrAlreadyExists, rec.ID)
	}
	doc, err := rec.Document.Clone()
	if err != nil {
		return err
	}
	r.records[rec.ID] = &record{version: rec.Version, doc: doc}
	return nil
}

// Delete removes a record unconditionally
func (r *PeopleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

// ListIDs returns every record id, sorted
func (r *PeopleRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs(), nil
}

// ReplaceAll swaps the whole collection under the write lock; readers see
// the old set or the new set, never a partial mix
func (r *PeopleRepository) ReplaceAll(_ context.Context, records []models.Record) error {
	next := make(map[string]*record, len(records))
	for _, rec := range records {
		doc, err := rec.Document.Clone()
		if err != nil {
			return err
		}
		next[rec.ID] = &record{version: rec.Version, doc: doc}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = next
	return nil
}

func (r *PeopleRepository) sortedIDs() []string {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
