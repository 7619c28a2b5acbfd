package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"roster/internal/domain"
	"roster/internal/domain/models"
	"roster/internal/domain/repositories"
	"roster/internal/domain/services"
)

// StatusService implements the status-history state machine. Transitions
// are validated up front, then appended atomically inside the record's
// critical section so concurrent appends never lose an update.
type StatusService struct {
	repo   repositories.PeopleRepository
	logger *slog.Logger
}

// NewStatusService creates a new status service
func NewStatusService(repo repositories.PeopleRepository, logger *slog.Logger) services.StatusService {
	return &StatusService{repo: repo, logger: logger}
}

// AppendStatus validates and appends one status transition
func (s *StatusService) AppendStatus(ctx context.Context, id string, req *services.AppendStatusRequest) error {
	if err := validateAppend(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, req.By) {
		return fmt.Errorf("%w: actor %q is not a known person", domain.ErrInvalidArgument, req.By)
	}

	date := req.Date.UTC()
	event := models.StatusEvent{
		Status: req.Status,
		Date:   &date,
		By:     req.By,
		Reason: req.Reason,
	}
	if err := s.repo.Mutate(ctx, id, appendStatusCommand(event)); err != nil {
		return err
	}

	s.logger.Info("status appended",
		"id", id,
		"status", req.Status,
		"by", req.By,
	)
	return nil
}

// CreateWithInitialStatus creates an empty v3 record and appends its first
// status event. A failure after creation rolls the record back.
func (s *StatusService) CreateWithInitialStatus(ctx context.Context, req *services.CreatePersonRequest) (*models.Record, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
	}
	if req.Status != models.StatusGuest && req.Status != models.StatusInvited {
		return nil, fmt.Errorf("%w: initial status must be guest or invited, got %q", domain.ErrInvalidArgument, req.Status)
	}

	record := &models.Record{
		ID:       req.ID,
		Version:  models.SchemaV3,
		Document: models.JSONMap{"statusHistory": []interface{}{}},
	}
	if err := s.repo.Add(ctx, record); err != nil {
		return nil, err
	}

	first := &services.AppendStatusRequest{Status: req.Status, By: req.By, Date: req.Date}
	if err := s.AppendStatus(ctx, req.ID, first); err != nil {
		// compensating rollback so a half-created record never survives
		if derr := s.repo.Delete(ctx, req.ID); derr != nil {
			s.logger.Error("rollback delete failed", "id", req.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("person created", "id", req.ID, "status", req.Status, "by", req.By)
	return s.repo.Get(ctx, req.ID)
}

// validateAppend enforces the status/reason rules: the status must be known,
// former and disabled require a reason, everything else forbids one.
func validateAppend(req *services.AppendStatusRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Status, validation.Required, validation.By(statusRule)),
		validation.Field(&req.By, validation.Required),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Reason, validation.By(reasonRule(req.Status))),
	)
}

func statusRule(value interface{}) error {
	status, _ := value.(models.Status)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return nil
}

func reasonRule(status models.Status) validation.RuleFunc {
	return func(value interface{}) error {
		reason, _ := value.(models.StatusReason)
		if status.RequiresReason() {
			if reason == "" {
				return fmt.Errorf("a reason is required for status %q", status)
			}
			if !reason.Valid() {
				return fmt.Errorf("unknown reason %q", reason)
			}
			return nil
		}
		if reason != "" {
			return fmt.Errorf("a reason is not allowed for status %q", status)
		}
		return nil
	}
}

// appendStatusCommand builds the mutation command that checks the no-op
// rule against the current history and appends the event. The check runs
// inside the lock, so two concurrent appends of the same status cannot both
// pass it.
func appendStatusCommand(event models.StatusEvent) repositories.MutateFn {
	return func(doc models.JSONMap) (models.JSONMap, error) {
		history, err := models.StatusHistoryOf(doc)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 && history[len(history)-1].Status == event.Status {
			return nil, fmt.Errorf("%w: status is already %q", domain.ErrInvalidState, event.Status)
		}
		if doc == nil {
			doc = models.JSONMap{}
		}
		if err := models.SetStatusHistory(doc, append(history, event)); err != nil {
			return nil, err
		}
		return doc, nil
	}
}
