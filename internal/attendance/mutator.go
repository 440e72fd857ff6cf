package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/store"
)

// ErrNoPriorClockIn is returned when AutoClockOut is called against a
// document that is not currently clocked in (spec §7 NO_PRIOR_CLOCKIN).
var ErrNoPriorClockIn = errors.New("attendance: no prior clock-in")

// Result summarizes a successful auto-clock-out for the monitor loop's
// notification step.
type Result struct {
	Attendance *domain.Attendance
	Day        *domain.DailyAttendance
	HoursAdded float64
}

// AutoClockOut applies spec §4.5 to attendance: it mutates a working copy
// in memory and writes it back in a single document update, retried per
// spec §5's non-idempotent-write policy. now is injected so tests can
// control the clock-out timestamp.
func AutoClockOut(ctx context.Context, projectName string, attStore store.AttendanceStore, attendance *domain.Attendance, timezone, defaultTZ string, now time.Time) (*Result, error) {
	if !attendance.IsClockedIn() {
		return nil, ErrNoPriorClockIn
	}

	clockInDate := attendance.LastClockInTimestamp.UTC()
	clockOutTimestamp := now.UTC()
	dayIndex := clockInDate.Day() - 1
	hoursWorked := clockOutTimestamp.Sub(clockInDate).Hours()

	base := NormalizeValues(attendance.Values)
	base, day := EnsureDay(base, dayIndex)

	day.WorkedHours = append(day.WorkedHours, domain.WorkedHoursEntry{
		ID:        uuid.NewString(),
		Timestamp: clockOutTimestamp,
		Type:      domain.WorkedHoursClockOut,
		Hour:      FormatHour(clockOutTimestamp, timezone, defaultTZ),
	})
	day.DailyWorkedHours += hoursWorked

	absent := domain.DailyValueAbsent
	day.Value = &absent
	day.Status = domain.DailyStatusSubmitted
	day.Timestamp = &clockOutTimestamp

	mutated := *attendance
	mutated.Values = base
	mutated.MonthlyWorkedHours += hoursWorked
	mutated.LastClockInTimestamp = nil
	mutated.LastChanged = clockOutTimestamp

	if err := store.WithRetry(ctx, projectName, func(ctx context.Context) error {
		return attStore.Update(ctx, &mutated)
	}); err != nil {
		return nil, fmt.Errorf("attendance: write failed: %w", err)
	}

	*attendance = mutated

	return &Result{Attendance: attendance, Day: day, HoursAdded: hoursWorked}, nil
}
