package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/liveregistry"
	"github.com/mwangi254/geoclock/internal/store"
)

type fakeEmployeeStore struct {
	byChatID      map[string]*domain.Employee
	setCalls      []domain.CurrentLocation
	logAppends    int
	finalizeCalls int
}

func (f *fakeEmployeeStore) GetByID(ctx context.Context, id string) (*domain.Employee, error) { return nil, nil }
func (f *fakeEmployeeStore) GetByTelegramChatID(ctx context.Context, chatID string) (*domain.Employee, error) {
	return f.byChatID[chatID], nil
}
func (f *fakeEmployeeStore) SetCurrentLocation(ctx context.Context, employeeID string, loc *domain.CurrentLocation, lastChanged time.Time) error {
	f.setCalls = append(f.setCalls, *loc)
	return nil
}
func (f *fakeEmployeeStore) FinalizeLocation(ctx context.Context, employeeID string, endedAt time.Time) error {
	f.finalizeCalls++
	return nil
}
func (f *fakeEmployeeStore) AppendLocationLog(ctx context.Context, log domain.LocationLog) error {
	f.logAppends++
	return nil
}

type fakeAttendanceStoreNoop struct{}

func (fakeAttendanceStoreNoop) ListClockedIn(ctx context.Context, year int, month string) ([]*domain.Attendance, error) {
	return nil, nil
}
func (fakeAttendanceStoreNoop) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	return nil, nil
}
func (fakeAttendanceStoreNoop) Update(ctx context.Context, a *domain.Attendance) error { return nil }

type fakeStore struct {
	project   string
	employees *fakeEmployeeStore
}

func (f *fakeStore) ProjectName() string                 { return f.project }
func (f *fakeStore) Employees() store.EmployeeStore      { return f.employees }
func (f *fakeStore) Attendance() store.AttendanceStore   { return fakeAttendanceStoreNoop{} }
func (f *fakeStore) Healthy(ctx context.Context) bool    { return true }

func newTestIngestor() (*Ingestor, *fakeEmployeeStore) {
	emp := &fakeEmployeeStore{byChatID: map[string]*domain.Employee{}}
	s := &fakeStore{project: "proj1", employees: emp}
	reg := store.NewRegistry(s)
	ing := New(liveregistry.New(), reg, NewChatSessionMap(), logrus.New())
	return ing, emp
}

func TestOnLocationEvent_DropsWhenContextUnresolved(t *testing.T) {
	ing, _ := newTestIngestor()
	err := ing.OnLocationEvent(context.Background(), LocationEvent{ChatID: 999, MessageID: 1, Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, ErrContextUnresolved)
}

func TestOnLocationEvent_ResolvesViaStoreLookupAndWrites(t *testing.T) {
	ing, emp := newTestIngestor()
	emp.byChatID["42"] = &domain.Employee{ID: "emp-1", TelegramChatID: "42"}

	period := 60
	err := ing.OnLocationEvent(context.Background(), LocationEvent{
		ChatID: 42, MessageID: 7, Latitude: 1, Longitude: 2, LivePeriodSeconds: &period,
	})
	require.NoError(t, err)

	require.Len(t, emp.setCalls, 1)
	assert.True(t, emp.setCalls[0].IsLive)
	assert.Equal(t, domain.SourceTelegramLive, emp.setCalls[0].Source)
	assert.Equal(t, 1, emp.logAppends)
}

func TestOnLocationEvent_StaticShareHasNoLiveUntilAndIsNotLive(t *testing.T) {
	ing, emp := newTestIngestor()
	emp.byChatID["42"] = &domain.Employee{ID: "emp-1", TelegramChatID: "42"}

	err := ing.OnLocationEvent(context.Background(), LocationEvent{
		ChatID: 42, MessageID: 8, Latitude: 1, Longitude: 2,
	})
	require.NoError(t, err)

	require.Len(t, emp.setCalls, 1)
	assert.False(t, emp.setCalls[0].IsLive)
	assert.Equal(t, domain.SourceTelegram, emp.setCalls[0].Source)
	assert.Nil(t, emp.setCalls[0].LiveUntil)
}

func TestOnLocationEvent_InvalidPayloadRejected(t *testing.T) {
	ing, _ := newTestIngestor()
	err := ing.OnLocationEvent(context.Background(), LocationEvent{ChatID: 1, MessageID: 1, Latitude: 999, Longitude: 2})
	assert.Error(t, err)
}

func TestOnLocationEvent_CachesSessionAfterFirstResolve(t *testing.T) {
	ing, emp := newTestIngestor()
	emp.byChatID["42"] = &domain.Employee{ID: "emp-1", TelegramChatID: "42"}

	require.NoError(t, ing.OnLocationEvent(context.Background(), LocationEvent{ChatID: 42, MessageID: 1, Latitude: 1, Longitude: 1}))

	delete(emp.byChatID, "42")
	err := ing.OnLocationEvent(context.Background(), LocationEvent{ChatID: 42, MessageID: 2, Latitude: 1, Longitude: 1})
	assert.NoError(t, err, "session map should have cached the resolution from the first event")
}
