package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"roster/internal/domain"
	"roster/internal/domain/models"
	"roster/internal/domain/services"
	"roster/internal/httputil"
)

// RosterHandler handles whole-collection dump and import requests
type RosterHandler struct {
	roster services.RosterService
	logger *slog.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(roster services.RosterService, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{roster: roster, logger: logger}
}

// Export dumps the full roster at the requested schema version
// GET /api/roster?version=2|3&pretty=1
func (h *RosterHandler) Export(w http.ResponseWriter, r *http.Request) {
	version := models.SchemaV3
	if raw := r.URL.Query().Get("version"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "version must be 2 or 3")
			return
		}
		version, err = models.ParseSchemaVersion(n)
		if err != nil {
			handleError(w, err)
			return
		}
	}

	env, err := h.roster.ExportAll(r.Context(), version)
	if err != nil {
		handleError(w, err)
		return
	}

	if r.URL.Query().Get("pretty") != "" {
		httputil.RespondJSONIndent(w, http.StatusOK, env)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, env)
}

// Import destructively replaces the full roster with the request body
// PUT /api/roster
func (h *RosterHandler) Import(w http.ResponseWriter, r *http.Request) {
	var env models.Envelope
	if err := httputil.ParseJSON(w, r, &env); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid roster envelope")
		return
	}
	if env.Version == 0 {
		httputil.RespondError(w, http.StatusBadRequest, domain.ErrInvalidArgument.Error())
		return
	}

	if err := h.roster.ImportAll(r.Context(), &env); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
