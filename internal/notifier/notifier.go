// Package notifier sends the employee- and manager-facing messages that
// follow a successful auto-clock-out (spec §4.8).
package notifier

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mwangi254/geoclock/internal/domain"
)

// Sender is the narrow chat-transport capability the notifier needs; the
// Telegram bot implements it.
type Sender interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

// ManagerLookup resolves a manager uid to their employee document, so the
// notifier can find a chat id to send to. Implemented by the store layer.
type ManagerLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
}

// Notifier sends the two messages spec §4.8 describes, rate-limited so a
// tick with many simultaneous auto-clock-outs cannot trip Telegram's flood
// limits — the same concern EmpoweredVote-EV-Backend's golang.org/x/time
// dependency exists to address elsewhere in the pack.
type Notifier struct {
	sender    Sender
	limiter   *rate.Limiter
	logger    *logrus.Logger
	enabled   bool
}

// New builds a Notifier. ratePerSecond/burst bound outbound sends;
// enabled mirrors the NOTIFICATIONS_ENABLED feature flag (§4.7) — when
// false, NotifyAutoClockOut is a no-op, matching "notifications are suppressed
// globally when the notifications flag is false" (spec §4.8).
func New(sender Sender, logger *logrus.Logger, ratePerSecond float64, burst int, enabled bool) *Notifier {
	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  logger,
		enabled: enabled,
	}
}

// AutoClockOutNotification carries what the notifier needs to know about
// one successful auto-clock-out.
type AutoClockOutNotification struct {
	Employee *domain.Employee
	Reason   string
}

// NotifyAutoClockOut sends the employee-facing warning and, if a manager
// with a chat id can be resolved, the manager-facing notice. Failures are
// logged, never retried (spec §7 TRANSPORT_FAILED).
func (n *Notifier) NotifyAutoClockOut(ctx context.Context, managers ManagerLookup, notification AutoClockOutNotification) {
	if !n.enabled {
		return
	}

	emp := notification.Employee

	if emp.TelegramChatID != "" {
		text := fmt.Sprintf("⚠️ You have been automatically clocked out because %s.", notification.Reason)
		n.send(ctx, emp.TelegramChatID, text, "employee")
	}

	if emp.ReportingLineManager == "" {
		return
	}

	manager, err := managers.GetByID(ctx, emp.ReportingLineManager)
	if err != nil {
		n.logger.WithFields(logrus.Fields{"employee_id": emp.ID, "error": err}).Error("failed to resolve manager for auto-clock-out notice")
		return
	}
	if manager == nil || manager.TelegramChatID == "" {
		return
	}

	text := fmt.Sprintf("\U0001f464 Employee %s has been automatically clocked out due to %s.", emp.UID, notification.Reason)
	n.send(ctx, manager.TelegramChatID, text, "manager")
}

func (n *Notifier) send(ctx context.Context, chatID, text, audience string) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.WithFields(logrus.Fields{"chat_id": chatID, "audience": audience, "error": err}).Error("rate limiter wait aborted")
		return
	}
	if err := n.sender.SendMessage(ctx, chatID, text); err != nil {
		n.logger.WithFields(logrus.Fields{"chat_id": chatID, "audience": audience, "error": err}).Error("failed to send auto-clock-out notification")
	}
}
