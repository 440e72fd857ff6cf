package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/notifier"
	"github.com/mwangi254/geoclock/internal/scanner"
	"github.com/mwangi254/geoclock/internal/store"
)

type fakeEmployees struct {
	byID map[string]*domain.Employee
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (*domain.Employee, error) { return f.byID[id], nil }
func (f *fakeEmployees) GetByTelegramChatID(ctx context.Context, chatID string) (*domain.Employee, error) {
	return nil, nil
}
func (f *fakeEmployees) SetCurrentLocation(ctx context.Context, employeeID string, loc *domain.CurrentLocation, lastChanged time.Time) error {
	return nil
}
func (f *fakeEmployees) FinalizeLocation(ctx context.Context, employeeID string, endedAt time.Time) error {
	return nil
}
func (f *fakeEmployees) AppendLocationLog(ctx context.Context, log domain.LocationLog) error { return nil }

type fakeAttendances struct {
	mu      sync.Mutex
	rows    []*domain.Attendance
	updates []*domain.Attendance
}

func (f *fakeAttendances) ListClockedIn(ctx context.Context, year int, month string) ([]*domain.Attendance, error) {
	return f.rows, nil
}
func (f *fakeAttendances) GetByID(ctx context.Context, id string) (*domain.Attendance, error) { return nil, nil }
func (f *fakeAttendances) Update(ctx context.Context, a *domain.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, a)
	return nil
}

type fakeStore struct {
	project    string
	employees  *fakeEmployees
	attendance *fakeAttendances
}

func (f *fakeStore) ProjectName() string               { return f.project }
func (f *fakeStore) Employees() store.EmployeeStore    { return f.employees }
func (f *fakeStore) Attendance() store.AttendanceStore { return f.attendance }
func (f *fakeStore) Healthy(ctx context.Context) bool  { return true }

type fakeSender struct {
	mu   sync.Mutex
	sent int
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func newLoop(t *testing.T, att *fakeAttendances, emp *fakeEmployees) (*Loop, *fakeSender) {
	t.Helper()
	s := &fakeStore{project: "proj1", employees: emp, attendance: att}
	reg := store.NewRegistry(s)
	sc := scanner.New(reg, logrus.New())
	sender := &fakeSender{}
	n := notifier.New(sender, logrus.New(), 1000, 10, true)
	cfg := Config{CheckInterval: 5 * time.Minute, MaxLocationAge: 10 * time.Minute, DefaultTimezone: "Africa/Nairobi"}
	return New(cfg, reg, sc, n, nil, logrus.New()), sender
}

func TestLoop_ActionableVerdictTriggersAutoClockOutAndNotify(t *testing.T) {
	clockIn := time.Now().UTC().Add(-2 * time.Hour)
	att := &domain.Attendance{ID: "att-1", UID: "emp-1", LastClockInTimestamp: &clockIn}
	attStore := &fakeAttendances{rows: []*domain.Attendance{att}}
	empStore := &fakeEmployees{byID: map[string]*domain.Employee{
		"emp-1": {
			ID: "emp-1", UID: "emp-1", TelegramChatID: "111", WorkingArea: `[[0,0],[0,1],[1,1],[1,0]]`,
			CurrentLocation: &domain.CurrentLocation{
				Latitude: 0.5, Longitude: 0.5, IsLive: false, UpdatedAt: time.Now().UTC(),
			},
		},
	}}

	loop, sender := newLoop(t, attStore, empStore)
	loop.runTick(context.Background())

	require.Len(t, attStore.updates, 1)
	assert.Nil(t, attStore.updates[0].LastClockInTimestamp)
	assert.Equal(t, 1, sender.sent)
}

func TestLoop_SkipsWhenWorkingAreaEmpty(t *testing.T) {
	clockIn := time.Now().UTC().Add(-2 * time.Hour)
	att := &domain.Attendance{ID: "att-1", UID: "emp-1", LastClockInTimestamp: &clockIn}
	attStore := &fakeAttendances{rows: []*domain.Attendance{att}}
	empStore := &fakeEmployees{byID: map[string]*domain.Employee{
		"emp-1": {ID: "emp-1", UID: "emp-1", WorkingArea: ""},
	}}

	loop, _ := newLoop(t, attStore, empStore)
	loop.runTick(context.Background())

	assert.Empty(t, attStore.updates)
}

func TestLoop_DedupSkipsWithinCheckInterval(t *testing.T) {
	// This reproduces the only state AutoClockOut ever actually leaves
	// behind: it always clears LastClockInTimestamp when it appends a
	// Clock Out, so the one way withinDedupWindow is reached with
	// LastClockInTimestamp set again is a human re-clock-in after a recent
	// auto-clock-out — meaning the day's *last* entry is the new Clock In,
	// not the Clock Out the dedup window needs to find.
	clockIn := time.Now().UTC().Add(-2 * time.Hour)
	recentClockOut := time.Now().UTC().Add(-1 * time.Minute)
	reClockIn := time.Now().UTC().Add(-30 * time.Second)
	day := &domain.DailyAttendance{
		Day: clockIn.Day(),
		WorkedHours: []domain.WorkedHoursEntry{
			{Type: domain.WorkedHoursClockOut, Timestamp: recentClockOut},
			{Type: domain.WorkedHoursClockIn, Timestamp: reClockIn},
		},
	}
	values := make([]*domain.DailyAttendance, clockIn.Day())
	values[clockIn.Day()-1] = day
	att := &domain.Attendance{ID: "att-1", UID: "emp-1", LastClockInTimestamp: &clockIn, Values: values}
	attStore := &fakeAttendances{rows: []*domain.Attendance{att}}
	empStore := &fakeEmployees{byID: map[string]*domain.Employee{
		"emp-1": {
			ID: "emp-1", UID: "emp-1", WorkingArea: `[[0,0],[0,1],[1,1],[1,0]]`,
			CurrentLocation: &domain.CurrentLocation{
				Latitude: 0.5, Longitude: 0.5, IsLive: false, UpdatedAt: time.Now().UTC(),
			},
		},
	}}

	loop, sender := newLoop(t, attStore, empStore)
	loop.runTick(context.Background())

	assert.Empty(t, attStore.updates)
	assert.Zero(t, sender.sent)
}

func TestLoop_ValidLocationIsNotActioned(t *testing.T) {
	clockIn := time.Now().UTC().Add(-2 * time.Hour)
	att := &domain.Attendance{ID: "att-1", UID: "emp-1", LastClockInTimestamp: &clockIn}
	attStore := &fakeAttendances{rows: []*domain.Attendance{att}}
	empStore := &fakeEmployees{byID: map[string]*domain.Employee{
		"emp-1": {
			ID: "emp-1", UID: "emp-1", WorkingArea: `[[[0,0],[0,1],[1,1],[1,0]]]`,
			CurrentLocation: &domain.CurrentLocation{
				Latitude: 0.5, Longitude: 0.5, IsLive: true, UpdatedAt: time.Now().UTC(),
			},
		},
	}}

	loop, sender := newLoop(t, attStore, empStore)
	loop.runTick(context.Background())

	assert.Empty(t, attStore.updates)
	assert.Zero(t, sender.sent)
}

func TestLoop_StartStopIsIdempotentAndNonBlocking(t *testing.T) {
	attStore := &fakeAttendances{}
	empStore := &fakeEmployees{byID: map[string]*domain.Employee{}}
	loop, _ := newLoop(t, attStore, empStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop.Start(ctx)
	loop.Start(ctx) // second call is a no-op
	assert.True(t, loop.Running())

	loop.Stop()
	loop.Stop() // second call is a no-op
	assert.False(t, loop.Running())
}
