package service

import (
	"context"
	"log/slog"
	"sort"

	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
	"roster/internal/domain/services"
	"roster/internal/schema"
)

// RosterService moves the whole collection through the converters: export
// normalizes every record to v3 first (the shape the store favors) and then
// converts the envelope to the requested version; import converts the
// incoming envelope to v3 and replaces the collection atomically.
type RosterService struct {
	repo   repositories.PeopleRepository
	person *schema.PersonConverter
	roster *schema.RosterConverter
	logger *slog.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(
	repo repositories.PeopleRepository,
	person *schema.PersonConverter,
	roster *schema.RosterConverter,
	logger *slog.Logger,
) services.RosterService {
	return &RosterService{repo: repo, person: person, roster: roster, logger: logger}
}

// ExportAll returns the full roster converted to the target version
func (s *RosterService) ExportAll(ctx context.Context, version models.SchemaVersion) (*models.Envelope, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	people := make(map[string]models.JSONMap, len(records))
	for _, record := range records {
		doc, err := s.person.Convert(record.ID, record.Document, record.Version, models.SchemaV3)
		if err != nil {
			return nil, err
		}
		people[record.ID] = doc
	}

	env := &models.Envelope{Version: models.SchemaV3, PeopleMap: people}
	converted, err := s.roster.Convert(env, version)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("roster exported", "version", version, "count", len(records))
	return converted, nil
}

// ImportAll destructively replaces the full roster with the envelope's
// contents, stored in v3 shape
func (s *RosterService) ImportAll(ctx context.Context, env *models.Envelope) error {
	converted, err := s.roster.Convert(env, models.SchemaV3)
	if err != nil {
		return err
	}

	records := make([]models.Record, 0, len(converted.PeopleMap))
	for id, doc := range converted.PeopleMap {
		records = append(records, models.Record{ID: id, Version: models.SchemaV3, Document: doc})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	if err := s.repo.ReplaceAll(ctx, records); err != nil {
		return err
	}

	s.logger.Info("roster imported", "count", len(records))
	return nil
}
