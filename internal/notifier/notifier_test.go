package notifier

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangi254/geoclock/internal/domain"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []struct{ chatID, text string }
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, struct{ chatID, text string }{chatID, text})
	return nil
}

type fakeManagerLookup struct {
	byID map[string]*domain.Employee
}

func (f fakeManagerLookup) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return f.byID[id], nil
}

func TestNotifyAutoClockOut_SendsToEmployeeAndManager(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, logrus.New(), 100, 10, true)

	emp := &domain.Employee{ID: "emp-1", UID: "uid-1", TelegramChatID: "111", ReportingLineManager: "mgr-1"}
	managers := fakeManagerLookup{byID: map[string]*domain.Employee{
		"mgr-1": {ID: "mgr-1", TelegramChatID: "222"},
	}}

	n.NotifyAutoClockOut(context.Background(), managers, AutoClockOutNotification{Employee: emp, Reason: "you left the working area"})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "111", sender.sent[0].chatID)
	assert.Contains(t, sender.sent[0].text, "⚠️")
	assert.Equal(t, "222", sender.sent[1].chatID)
	assert.Contains(t, sender.sent[1].text, "👤")
}

func TestNotifyAutoClockOut_SuppressedWhenDisabled(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, logrus.New(), 100, 10, false)

	emp := &domain.Employee{ID: "emp-1", TelegramChatID: "111"}
	n.NotifyAutoClockOut(context.Background(), fakeManagerLookup{}, AutoClockOutNotification{Employee: emp, Reason: "x"})

	assert.Empty(t, sender.sent)
}

func TestNotifyAutoClockOut_NoManagerChatIDIsSkipped(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, logrus.New(), 100, 10, true)

	emp := &domain.Employee{ID: "emp-1", TelegramChatID: "111", ReportingLineManager: "mgr-1"}
	managers := fakeManagerLookup{byID: map[string]*domain.Employee{"mgr-1": {ID: "mgr-1"}}}

	n.NotifyAutoClockOut(context.Background(), managers, AutoClockOutNotification{Employee: emp, Reason: "x"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "111", sender.sent[0].chatID)
}
