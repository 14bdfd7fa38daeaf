package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// AdminTimeSlotsHandler manages the availability calendar.
type AdminTimeSlotsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminTimeSlotsHandler creates the handler.
func NewAdminTimeSlotsHandler(db *sql.DB, logger *logging.Logger) *AdminTimeSlotsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminTimeSlotsHandler{db: db, logger: logger}
}

// TimeSlotView is one configured availability row.
type TimeSlotView struct {
	ID          string `json:"id"`
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type timeSlotRequest struct {
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available"`
}

func (req *timeSlotRequest) validate() string {
	if !validDays[req.DayOfWeek] {
		return "day_of_week must be a lowercase weekday name"
	}
	for _, v := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse("15:04", v); err != nil {
			return "start_time and end_time must be HH:MM"
		}
	}
	if req.StartTime >= req.EndTime {
		return "start_time must be before end_time"
	}
	return ""
}

// List handles GET /admin/time-slots.
func (h *AdminTimeSlotsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, day_of_week, start_time, end_time, is_available
		FROM time_slots
		ORDER BY CASE day_of_week
			WHEN 'monday' THEN 1 WHEN 'tuesday' THEN 2 WHEN 'wednesday' THEN 3
			WHEN 'thursday' THEN 4 WHEN 'friday' THEN 5 WHEN 'saturday' THEN 6
			ELSE 7 END, start_time
	`)
	if err != nil {
		h.logger.Error("failed to list time slots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list time slots")
		return
	}
	defer rows.Close()

	out := []TimeSlotView{}
	for rows.Next() {
		var v TimeSlotView
		if err := rows.Scan(&v.ID, &v.DayOfWeek, &v.StartTime, &v.EndTime, &v.IsAvailable); err != nil {
			h.logger.Error("failed to scan time slot", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list time slots")
			return
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("failed to iterate time slots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list time slots")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /admin/time-slots.
func (h *AdminTimeSlotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	id := uuid.NewString()
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO time_slots (id, day_of_week, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4, $5)
	`, id, req.DayOfWeek, req.StartTime, req.EndTime, available)
	if err != nil {
		h.logger.Error("failed to create time slot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create time slot")
		return
	}

	h.logger.Info("time slot created", "id", id, "day", req.DayOfWeek)
	writeJSON(w, http.StatusCreated, TimeSlotView{
		ID: id, DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime, EndTime: req.EndTime, IsAvailable: available,
	})
}

// Update handles PUT /admin/time-slots/{id}.
func (h *AdminTimeSlotsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE time_slots
		SET day_of_week = $1, start_time = $2, end_time = $3, is_available = $4
		WHERE id = $5
	`, req.DayOfWeek, req.StartTime, req.EndTime, available, id)
	if err != nil {
		h.logger.Error("failed to update time slot", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update time slot")
		return
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		writeError(w, http.StatusNotFound, "time slot not found")
		return
	}

	writeJSON(w, http.StatusOK, TimeSlotView{
		ID: id, DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime, EndTime: req.EndTime, IsAvailable: available,
	})
}

// Delete handles DELETE /admin/time-slots/{id}.
func (h *AdminTimeSlotsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		h.logger.Error("failed to delete time slot", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete time slot")
		return
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		writeError(w, http.StatusNotFound, "time slot not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
