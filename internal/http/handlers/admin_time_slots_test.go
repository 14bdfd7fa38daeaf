package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

func TestAdminTimeSlotsCreate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAdminTimeSlotsHandler(db, logging.Default())

	mock.ExpectExec(`INSERT INTO time_slots`).
		WithArgs(sqlmock.AnyArg(), "monday", "09:00", "10:00", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := strings.NewReader(`{"day_of_week":"monday","start_time":"09:00","end_time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/time-slots", body)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var view TimeSlotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.ID)
	assert.True(t, view.IsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminTimeSlotsCreateValidation(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewAdminTimeSlotsHandler(db, logging.Default())

	tests := []struct {
		name string
		body string
	}{
		{"bad day", `{"day_of_week":"Funday","start_time":"09:00","end_time":"10:00"}`},
		{"bad time", `{"day_of_week":"monday","start_time":"9am","end_time":"10:00"}`},
		{"inverted range", `{"day_of_week":"monday","start_time":"11:00","end_time":"10:00"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/time-slots", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAdminTimeSlotsUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAdminTimeSlotsHandler(db, logging.Default())

	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs("friday", "14:00", "15:00", false, "slot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := strings.NewReader(`{"day_of_week":"friday","start_time":"14:00","end_time":"15:00","is_available":false}`)
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/admin/time-slots/slot-1", body), "id", "slot-1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view TimeSlotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.IsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminTimeSlotsList(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAdminTimeSlotsHandler(db, logging.Default())

	mock.ExpectQuery(`SELECT id, day_of_week, start_time, end_time, is_available`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "start_time", "end_time", "is_available"}).
			AddRow("slot-1", "monday", "09:00", "10:00", true).
			AddRow("slot-2", "monday", "10:00", "11:00", false))

	req := httptest.NewRequest(http.MethodGet, "/admin/time-slots", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []TimeSlotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.False(t, views[1].IsAvailable)
}

func TestAdminStatsGet(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAdminStatsHandler(db, logging.Default())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(`appointment_date >= CURRENT_DATE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 5).AddRow("confirmed", 20))
	mock.ExpectQuery(`GROUP BY service_type`).
		WillReturnRows(sqlmock.NewRows([]string{"service_type", "count"}).
			AddRow("Cleaning", 18))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.TotalUsers)
	assert.Equal(t, 30, resp.TotalAppointments)
	assert.Equal(t, 7, resp.Upcoming)
	assert.Equal(t, 5, resp.ByStatus["pending"])
	assert.Equal(t, 18, resp.ByService["Cleaning"])
	require.NoError(t, mock.ExpectationsWereMet())
}
