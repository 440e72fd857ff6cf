package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangi254/geoclock/internal/domain"
)

type fakeAttendanceStore struct {
	updated *domain.Attendance
	failErr error
}

func (f *fakeAttendanceStore) ListClockedIn(ctx context.Context, year int, month string) ([]*domain.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceStore) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	return nil, nil
}
func (f *fakeAttendanceStore) Update(ctx context.Context, a *domain.Attendance) error {
	if f.failErr != nil {
		return f.failErr
	}
	clone := *a
	f.updated = &clone
	return nil
}

func clockedInAttendance(clockIn time.Time) *domain.Attendance {
	return &domain.Attendance{
		ID:                   "att-1",
		UID:                  "emp-1",
		Year:                 clockIn.Year(),
		Month:                clockIn.Month().String(),
		LastClockInTimestamp: &clockIn,
		Values:               nil,
	}
}

func TestAutoClockOut_NoPriorClockIn(t *testing.T) {
	fs := &fakeAttendanceStore{}
	att := &domain.Attendance{LastClockInTimestamp: nil}

	_, err := AutoClockOut(context.Background(), "proj-1", fs, att, "Africa/Nairobi", "Africa/Nairobi", time.Now())
	assert.ErrorIs(t, err, ErrNoPriorClockIn)
}

func TestAutoClockOut_WritesClockOutAndClearsClockIn(t *testing.T) {
	clockIn := time.Date(2026, 8, 6, 8, 0, 0, 0, time.UTC)
	now := clockIn.Add(9 * time.Hour)
	att := clockedInAttendance(clockIn)
	fs := &fakeAttendanceStore{}

	result, err := AutoClockOut(context.Background(), "proj-1", fs, att, "Africa/Nairobi", "Africa/Nairobi", now)
	require.NoError(t, err)

	assert.Nil(t, att.LastClockInTimestamp)
	require.NotNil(t, result.Day.Value)
	assert.Equal(t, domain.DailyValueAbsent, *result.Day.Value)
	assert.Equal(t, domain.DailyStatusSubmitted, result.Day.Status)
	assert.InDelta(t, 9.0, result.HoursAdded, 0.001)
	assert.InDelta(t, 9.0, att.MonthlyWorkedHours, 0.001)

	last := result.Day.LastWorkedHoursEntry()
	require.NotNil(t, last)
	assert.Equal(t, domain.WorkedHoursClockOut, last.Type)

	require.NotNil(t, fs.updated)
	assert.Nil(t, fs.updated.LastClockInTimestamp)
}

func TestAutoClockOut_PreservesExistingDayEntries(t *testing.T) {
	clockIn := time.Date(2026, 8, 6, 8, 0, 0, 0, time.UTC)
	now := clockIn.Add(1 * time.Hour)
	att := clockedInAttendance(clockIn)
	existingDay := &domain.DailyAttendance{
		Day:    6,
		Status: domain.DailyStatusNA,
		WorkedHours: []domain.WorkedHoursEntry{
			{ID: "wh-1", Timestamp: clockIn, Type: domain.WorkedHoursClockIn, Hour: "8:00 AM"},
		},
	}
	att.Values = []*domain.DailyAttendance{nil, nil, nil, nil, nil, existingDay}

	fs := &fakeAttendanceStore{}
	result, err := AutoClockOut(context.Background(), "proj-1", fs, att, "Africa/Nairobi", "Africa/Nairobi", now)
	require.NoError(t, err)

	assert.Len(t, result.Day.WorkedHours, 2)
	assert.Equal(t, domain.WorkedHoursClockIn, result.Day.WorkedHours[0].Type)
	assert.Equal(t, domain.WorkedHoursClockOut, result.Day.WorkedHours[1].Type)
	// Original day object must be untouched by the in-place clone.
	assert.Len(t, existingDay.WorkedHours, 1)
}

func TestAutoClockOut_WriteFailureLeavesAttendanceUntouched(t *testing.T) {
	clockIn := time.Date(2026, 8, 6, 8, 0, 0, 0, time.UTC)
	now := clockIn.Add(1 * time.Hour)
	att := clockedInAttendance(clockIn)
	fs := &fakeAttendanceStore{failErr: errors.New("boom")}

	_, err := AutoClockOut(context.Background(), "proj-1", fs, att, "Africa/Nairobi", "Africa/Nairobi", now)
	require.Error(t, err)
	assert.NotNil(t, att.LastClockInTimestamp, "original document must be untouched on write failure")
}

func TestAutoClockOut_ClearsClockInSoRepeatNeedsReClockIn(t *testing.T) {
	// S4 from spec §8: a second tick within CHECK_INTERVAL_MINUTES must not
	// write a second clock-out. The mutator itself has no dedup logic
	// (that's the monitor loop's job); it clears LastClockInTimestamp, so a
	// repeat call on the same document before a fresh clock-in returns
	// ErrNoPriorClockIn instead of writing a second Clock Out.
	clockIn := time.Date(2026, 8, 6, 8, 0, 0, 0, time.UTC)
	att := clockedInAttendance(clockIn)
	fs := &fakeAttendanceStore{}

	_, err := AutoClockOut(context.Background(), "proj-1", fs, att, "Africa/Nairobi", "Africa/Nairobi", clockIn.Add(1*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, att.LastClockInTimestamp, "clock-in cleared means a naive second call would need re-clock-in first")
}

func TestClassifyDaily(t *testing.T) {
	cases := []struct {
		name     string
		worked   float64
		expected domain.DailyValue
	}{
		{"full day present", 8, domain.DailyValuePresent},
		{"half day", 4.5, domain.DailyValueHalfPresent},
		{"barely there", 1, domain.DailyValueAbsent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyDaily(tc.worked, 8, 0.75, 0.4)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNormalizeValues_FromSparseMap(t *testing.T) {
	raw := map[string]*domain.DailyAttendance{
		"2": {Day: 3, Status: domain.DailyStatusSubmitted},
		"0": {Day: 1, Status: domain.DailyStatusNA},
	}
	dense := NormalizeValues(raw)
	require.Len(t, dense, 3)
	assert.Nil(t, dense[1])
	assert.Equal(t, domain.DailyStatusNA, dense[0].Status)
	assert.Equal(t, domain.DailyStatusSubmitted, dense[2].Status)
}
