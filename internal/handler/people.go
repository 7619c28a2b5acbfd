package handler

import (
	"log/slog"
	"net/http"
	"time"

	"roster/internal/domain/models"
	"roster/internal/domain/services"
	"roster/internal/httputil"
)

// PeopleHandler handles record-level HTTP requests
type PeopleHandler struct {
	people services.PeopleService
	status services.StatusService
	logger *slog.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(people services.PeopleService, status services.StatusService, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{people: people, status: status, logger: logger}
}

// ListIDs lists every record id
// GET /api/people
func (h *PeopleHandler) ListIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.people.ListIDs(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"people": ids})
}

type createPersonRequest struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	By     string     `json:"by"`
	Date   *time.Time `json:"date"`
}

// Create creates a record with its initial status event
// POST /api/people
func (h *PeopleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	record, err := h.status.CreateWithInitialStatus(r.Context(), &services.CreatePersonRequest{
		ID:     req.ID,
		Status: models.Status(req.Status),
		By:     req.By,
		Date:   date,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, record)
}

// Get returns a record's full document
// GET /api/people/{id}
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.people.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, record)
}

// Delete removes a record
// DELETE /api/people/{id}
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.people.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetKey returns the value at a dotted path inside a record's document
// GET /api/people/{id}/key/{path...}
func (h *PeopleHandler) GetKey(w http.ResponseWriter, r *http.Request) {
	value, err := h.people.GetAtPath(r.Context(), r.PathValue("id"), r.PathValue("path"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"value": value})
}

// SetKey writes the request body's JSON value at a dotted path
// PUT /api/people/{id}/key/{path...}
func (h *PeopleHandler) SetKey(w http.ResponseWriter, r *http.Request) {
	var value interface{}
	if err := httputil.ParseJSON(w, r, &value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.people.SetAtPath(r.Context(), r.PathValue("id"), r.PathValue("path"), value); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteKey removes the value at a dotted path. Deleting an absent path
// still succeeds.
// DELETE /api/people/{id}/key/{path...}
func (h *PeopleHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	if err := h.people.DeleteAtPath(r.Context(), r.PathValue("id"), r.PathValue("path")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type appendStatusRequest struct {
	Status string     `json:"status"`
	By     string     `json:"by"`
	Date   *time.Time `json:"date"`
	Reason string     `json:"reason"`
}

// AppendStatus appends one status transition to a record's history
// POST /api/people/{id}/status
func (h *PeopleHandler) AppendStatus(w http.ResponseWriter, r *http.Request) {
	var req appendStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	err := h.status.AppendStatus(r.Context(), r.PathValue("id"), &services.AppendStatusRequest{
		Status: models.Status(req.Status),
		By:     req.By,
		Date:   date,
		Reason: models.StatusReason(req.Reason),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck reports liveness
// GET /health
func (h *PeopleHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
