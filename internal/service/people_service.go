package service

import (
	"context"
	"fmt"
	"log/slog"

	"roster/internal/docpath"
	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
	"roster/internal/domain/services"
)

// PeopleService implements the record-level store API. Every mutation is
// expressed as a mutation command handed to the repository's Mutate, which
// runs it inside the record's exclusive critical section.
type PeopleService struct {
	repo   repositories.PeopleRepository
	logger *slog.Logger
}

// NewPeopleService creates a new people service
func NewPeopleService(repo repositories.PeopleRepository, logger *slog.Logger) services.PeopleService {
	return &PeopleService{repo: repo, logger: logger}
}

// Get returns one record
func (s *PeopleService) Get(ctx context.Context, id string) (*models.Record, error) {
	return s.repo.Get(ctx, id)
}

// GetAtPath returns the value at a dotted path inside a record's document
func (s *PeopleService) GetAtPath(ctx context.Context, id, path string) (interface{}, error) {
	parsed, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	value, err := docpath.Get(record.Document, parsed)
	if err != nil {
		return nil, fmt.Errorf("person %q: %w", id, err)
	}
	return value, nil
}

// SetAtPath writes a value at a dotted path inside a record's document
func (s *PeopleService) SetAtPath(ctx context.Context, id, path string, value interface{}) error {
	parsed, err := docpath.Parse(path)
	if err != nil {
		return err
	}
	if err := s.repo.Mutate(ctx, id, setCommand(parsed, value)); err != nil {
		return err
	}
	s.logger.Debug("key set", "id", id, "path", path)
	return nil
}

// DeleteAtPath removes the value at a dotted path; missing paths are a no-op
func (s *PeopleService) DeleteAtPath(ctx context.Context, id, path string) error {
	parsed, err := docpath.Parse(path)
	if err != nil {
		return err
	}
	if err := s.repo.Mutate(ctx, id, deleteCommand(parsed)); err != nil {
		return err
	}
	s.logger.Debug("key deleted", "id", id, "path", path)
	return nil
}

// Delete removes a record unconditionally
func (s *PeopleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("person deleted", "id", id)
	return nil
}

// ListIDs returns every record id
func (s *PeopleService) ListIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

// setCommand builds a mutation command that writes value at path
func setCommand(path docpath.Path, value interface{}) repositories.MutateFn {
	return func(doc models.JSONMap) (models.JSONMap, error) {
		if doc == nil {
			doc = models.JSONMap{}
		}
		if err := docpath.Set(doc, path, value); err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// deleteCommand builds a mutation command that removes the value at path
func deleteCommand(path docpath.Path) repositories.MutateFn {
	return func(doc models.JSONMap) (models.JSONMap, error) {
		docpath.Delete(doc, path)
		return doc, nil
	}
}
