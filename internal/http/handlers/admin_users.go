package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// AdminUsersHandler serves the patient directory endpoints of the admin
// portal.
type AdminUsersHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminUsersHandler creates the handler.
func NewAdminUsersHandler(db *sql.DB, logger *logging.Logger) *AdminUsersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminUsersHandler{db: db, logger: logger}
}

// UserView is the admin-facing patient row.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// List handles GET /admin/users.
func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, COALESCE(name, ''), phone_number, created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	defer rows.Close()

	out := []UserView{}
	for rows.Next() {
		var v UserView
		if err := rows.Scan(&v.ID, &v.Name, &v.Phone, &v.CreatedAt); err != nil {
			h.logger.Error("failed to scan user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("failed to iterate users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/users/{id}.
func (h *AdminUsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var v UserView
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, COALESCE(name, ''), phone_number, created_at FROM users WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.Phone, &v.CreatedAt)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Appointments handles GET /admin/users/{id}/appointments.
func (h *AdminUsersHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, err := h.db.QueryContext(r.Context(), appointmentSelect+`
		WHERE a.user_id = $1 ORDER BY a.appointment_date DESC, a.start_time DESC
	`, id)
	if err != nil {
		h.logger.Error("failed to list user appointments", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	defer rows.Close()

	views, err := scanAppointmentViews(rows)
	if err != nil {
		h.logger.Error("failed to scan user appointments", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, views)
}
