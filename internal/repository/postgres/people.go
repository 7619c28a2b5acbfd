package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"roster/internal/domain"
	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
)

// PeopleRepository implements repositories.PeopleRepository on Postgres.
// Each record is one row holding the id, its JSONB document, and the schema
// version governing the document at rest. Per-record mutual exclusion comes
// from row-level locks: Mutate selects the row FOR UPDATE inside a
// transaction, so concurrent mutations of the same record serialize while
// different records proceed independently.
type PeopleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	tm     *TransactionManager
	logger *slog.Logger
}

// NewPeopleRepository creates a Postgres-backed people repository
func NewPeopleRepository(config *RepositoryConfig) *PeopleRepository {
	return &PeopleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		tm:     NewTransactionManager(config.Pool),
		logger: config.Logger,
	}
}

// Get returns one record
func (r *PeopleRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	query := fmt.Sprintf(`SELECT data, version FROM %s WHERE wmbid = $1`, r.tables.People)

	var doc models.JSONMap
	var version int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&doc, &version); err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("%w: person %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get person: %w", err)
	}

	schemaVersion, err := models.ParseSchemaVersion(version)
	if err != nil {
		return nil, fmt.Errorf("person %q: %w", id, err)
	}
	return &models.Record{ID: id, Version: schemaVersion, Document: doc}, nil
}

// GetAll returns every record, ordered by id for determinism
func (r *PeopleRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	query := fmt.Sprintf(`SELECT wmbid, data, version FROM %s ORDER BY wmbid`, r.tables.People)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var record models.Record
		var version int
		if err := rows.Scan(&record.ID, &record.Document, &version); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		record.Version, err = models.ParseSchemaVersion(version)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", record.ID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return records, nil
}

// Mutate runs fn on the record's document inside one transaction, holding
// the row lock for the full read-modify-write span. It joins an enclosing
// unit of work when the context carries one.
func (r *PeopleRepository) Mutate(ctx context.Context, id string, fn repositories.MutateFn) error {
	if repositories.GetTx(ctx) != nil {
		return r.mutateLocked(ctx, id, fn)
	}
	return r.tm.ExecTx(ctx, func(ctx context.Context) error {
		return r.mutateLocked(ctx, id, fn)
	})
}

func (r *PeopleRepository) mutateLocked(ctx context.Context, id string, fn repositories.MutateFn) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT data FROM %s WHERE wmbid = $1 FOR UPDATE`, r.tables.People)
	var doc models.JSONMap
	if err := executor.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if isNoRowsError(err) {
			return fmt.Errorf("%w: person %q", domain.ErrNotFound, id)
		}
		return fmt.Errorf("lock person: %w", err)
	}

	updated, err := fn(doc)
	if err != nil {
		return err
	}

	update := fmt.Sprintf(`UPDATE %s SET data = $1 WHERE wmbid = $2`, r.tables.People)
	if _, err := executor.Exec(ctx, update, updated, id); err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return nil
}

// Add inserts a new record
func (r *PeopleRepository) Add(ctx context.Context, record *models.Record) error {
	query := fmt.Sprintf(`INSERT INTO %s (wmbid, data, version) VALUES ($1, $2, $3)`, r.tables.People)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, record.ID, record.Document, int(record.Version)); err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: person %q", domain.ErrAlreadyExists, record.ID)
		}
		return fmt.Errorf("add person: %w", err)
	}
	return nil
}

// Delete removes a record unconditionally
func (r *PeopleRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE wmbid = $1`, r.tables.People)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}

// ListIDs returns every record id
func (r *PeopleRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT wmbid FROM %s ORDER BY wmbid`, r.tables.People)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	return ids, nil
}

// ReplaceAll swaps the whole collection inside one transaction: delete all,
// insert all. MVCC keeps the swap invisible to readers until commit, so a
// concurrent reader sees either the old full set or the new one.
func (r *PeopleRepository) ReplaceAll(ctx context.Context, records []models.Record) error {
	run := func(ctx context.Context) error {
		executor := GetExecutor(ctx, r.pool)

		if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, r.tables.People)); err != nil {
			return fmt.Errorf("clear people: %w", err)
		}

		insert := fmt.Sprintf(`INSERT INTO %s (wmbid, data, version) VALUES ($1, $2, $3)`, r.tables.People)
		for _, record := range records {
			if _, err := executor.Exec(ctx, insert, record.ID, record.Document, int(record.Version)); err != nil {
				return fmt.Errorf("import person %q: %w", record.ID, err)
			}
		}

		r.logger.Info("roster replaced", "count", len(records))
		return nil
	}

	if repositories.GetTx(ctx) != nil {
		return run(ctx)
	}
	return r.tm.ExecTx(ctx, run)
}
