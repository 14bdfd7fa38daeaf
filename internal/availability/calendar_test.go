package availability

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCalendarCheckAvailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT is_available FROM time_slots").
		WithArgs("wednesday", "09:00", "10:00").
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(true))

	cal := NewPostgresCalendar()
	available, err := cal.CheckAvailable(context.Background(), mock, "wednesday", "09:00", "10:00")
	require.NoError(t, err)
	assert.True(t, available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCalendarSlotBlocked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT is_available FROM time_slots").
		WithArgs("friday", "14:00", "15:00").
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(false))

	cal := NewPostgresCalendar()
	available, err := cal.CheckAvailable(context.Background(), mock, "friday", "14:00", "15:00")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestPostgresCalendarUnconfiguredSlotIsOpen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT is_available FROM time_slots").
		WithArgs("sunday", "09:00", "10:00").
		WillReturnError(pgx.ErrNoRows)

	cal := NewPostgresCalendar()
	available, err := cal.CheckAvailable(context.Background(), mock, "sunday", "09:00", "10:00")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestMemoryCalendar(t *testing.T) {
	cal := NewMemoryCalendar()

	available, err := cal.CheckAvailable(context.Background(), nil, "monday", "09:00", "10:00")
	require.NoError(t, err)
	assert.True(t, available)

	cal.SetUnavailable("monday", "09:00", "10:00")

	available, err = cal.CheckAvailable(context.Background(), nil, "monday", "09:00", "10:00")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = cal.CheckAvailable(context.Background(), nil, "monday", "10:00", "11:00")
	require.NoError(t, err)
	assert.True(t, available)
}
