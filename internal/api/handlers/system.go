package handlers

import (
	"database/sql"
	"net/http"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/database"
	"github.com/finbase/portfolio-engine/internal/version"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	db *sql.DB
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *sql.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports service and database health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(h.db); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "database unreachable", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version reports build information.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, version.Get())
}
