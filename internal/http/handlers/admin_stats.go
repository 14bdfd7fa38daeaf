package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// AdminStatsHandler serves the dashboard overview counts.
type AdminStatsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminStatsHandler creates the handler.
func NewAdminStatsHandler(db *sql.DB, logger *logging.Logger) *AdminStatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminStatsHandler{db: db, logger: logger}
}

// StatsResponse is the dashboard overview payload.
type StatsResponse struct {
	TotalUsers        int            `json:"total_users"`
	TotalAppointments int            `json:"total_appointments"`
	Upcoming          int            `json:"upcoming"`
	ByStatus          map[string]int `json:"by_status"`
	ByService         map[string]int `json:"by_service"`
}

// Get handles GET /admin/stats.
func (h *AdminStatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatsResponse{
		ByStatus:  map[string]int{},
		ByService: map[string]int{},
	}

	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&resp.TotalUsers); err != nil {
		h.logger.Error("failed to count users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&resp.TotalAppointments); err != nil {
		h.logger.Error("failed to count appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE appointment_date >= CURRENT_DATE AND status IN ('pending', 'confirmed')
	`).Scan(&resp.Upcoming); err != nil {
		h.logger.Error("failed to count upcoming appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	if err := h.countBy(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`, resp.ByStatus); err != nil {
		h.logger.Error("failed to group appointments by status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if err := h.countBy(ctx, `SELECT service_type, COUNT(*) FROM appointments GROUP BY service_type`, resp.ByService); err != nil {
		h.logger.Error("failed to group appointments by service", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminStatsHandler) countBy(ctx context.Context, query string, into map[string]int) error {
	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}
