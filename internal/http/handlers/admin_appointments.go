package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-booking-platform/internal/appointments"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// AdminAppointmentsHandler serves the appointment management endpoints of
// the admin portal.
type AdminAppointmentsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminAppointmentsHandler creates the handler.
func NewAdminAppointmentsHandler(db *sql.DB, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{db: db, logger: logger}
}

// AppointmentView is the admin-facing appointment row, joined with the
// patient's name and phone.
type AppointmentView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PatientName  string    `json:"patient_name"`
	PatientPhone string    `json:"patient_phone"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	ServiceType  string    `json:"service_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const appointmentSelect = `
	SELECT a.id, a.user_id, COALESCE(u.name, ''), u.phone_number,
	       a.appointment_date::text, a.start_time, a.end_time, a.service_type, a.status, a.created_at
	FROM appointments a
	JOIN users u ON u.id = a.user_id`

func scanAppointmentViews(rows *sql.Rows) ([]AppointmentView, error) {
	out := []AppointmentView{}
	for rows.Next() {
		var v AppointmentView
		if err := rows.Scan(&v.ID, &v.UserID, &v.PatientName, &v.PatientPhone,
			&v.Date, &v.StartTime, &v.EndTime, &v.ServiceType, &v.Status, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// List handles GET /admin/appointments. Optional query params: status,
// from, to (ISO dates, inclusive).
func (h *AdminAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := appointmentSelect
	conds := []string{}
	args := []any{}

	if status := r.URL.Query().Get("status"); status != "" {
		if !appointments.Status(status).Valid() {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("a.appointment_date >= $%d", len(args)))
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("a.appointment_date <= $%d", len(args)))
	}

	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY a.appointment_date, a.start_time"

	rows, err := h.db.QueryContext(r.Context(), q, args...)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	defer rows.Close()

	views, err := scanAppointmentViews(rows)
	if err != nil {
		h.logger.Error("failed to scan appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /admin/appointments/{id}.
func (h *AdminAppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, err := h.db.QueryContext(r.Context(), appointmentSelect+" WHERE a.id = $1", id)
	if err != nil {
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	defer rows.Close()

	views, err := scanAppointmentViews(rows)
	if err != nil {
		h.logger.Error("failed to scan appointment", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	if len(views) == 0 {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	writeJSON(w, http.StatusOK, views[0])
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/appointments/{id}/status. Allowed
// values: pending, confirmed, cancelled, completed.
func (h *AdminAppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !appointments.Status(req.Status).Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3
	`, req.Status, time.Now().UTC(), id)
	if err != nil {
		h.logger.Error("failed to update appointment status", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update appointment")
		return
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}

	h.logger.Info("appointment status updated", "id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// Delete handles DELETE /admin/appointments/{id}.
func (h *AdminAppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		h.logger.Error("failed to delete appointment", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete appointment")
		return
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}

	h.logger.Info("appointment deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
