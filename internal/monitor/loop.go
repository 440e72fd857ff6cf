// Package monitor drives the periodic auto-clock-out tick: scan every
// clocked-in employee, validate their location against their working
// area, and act on the failures that warrant it (spec §4.7).
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/mwangi254/geoclock/internal/attendance"
	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/metrics"
	"github.com/mwangi254/geoclock/internal/notifier"
	"github.com/mwangi254/geoclock/internal/scanner"
	"github.com/mwangi254/geoclock/internal/store"
	"github.com/mwangi254/geoclock/internal/validator"
)

const warmUp = 30 * time.Second

// Config mirrors the environment-tunable knobs the monitor needs, carried
// on the Loop rather than read from the environment directly so tests can
// set them explicitly.
type Config struct {
	CheckInterval   time.Duration
	MaxLocationAge  time.Duration
	DefaultTimezone string
}

// Loop is the periodic driver described by spec §4.7. It is safe to call
// Start/Stop from any goroutine; both are idempotent.
type Loop struct {
	cfg      Config
	stores   *store.Registry
	scanner  *scanner.Scanner
	notifier *notifier.Notifier
	metrics  *metrics.Metrics
	logger   *logrus.Logger

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// New builds a monitor Loop.
func New(cfg Config, stores *store.Registry, sc *scanner.Scanner, n *notifier.Notifier, m *metrics.Metrics, logger *logrus.Logger) *Loop {
	return &Loop{cfg: cfg, stores: stores, scanner: sc, notifier: n, metrics: m, logger: logger}
}

// pendingNotification pairs a successful auto-clock-out with the manager
// lookup scoped to the project the employee's attendance document lives
// in — reportingLineManager is a uid local to that same database.
type pendingNotification struct {
	notification notifier.AutoClockOutNotification
	managers     notifier.ManagerLookup
}

// Start is idempotent: calling it while already running is a no-op. The
// first tick fires after a 30-second warm-up, then every CheckInterval.
// The context passed here governs the lifetime of ticks themselves;
// Stop only cancels the scheduling of future ticks, never an in-flight one.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return
	}
	l.running.Store(true)

	schedCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	go l.schedule(ctx, schedCtx)
}

// Stop cancels the timer; an in-flight tick runs to completion since the
// context driving it is ctx from Start, not schedCtx. Safe to call when
// already stopped.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running.Load() {
		return
	}
	l.running.Store(false)
	if l.cancel != nil {
		l.cancel()
	}
}

// Running reports whether the loop is currently scheduling ticks.
func (l *Loop) Running() bool {
	return l.running.Load()
}

func (l *Loop) schedule(tickCtx, schedCtx context.Context) {
	warm := time.NewTimer(warmUp)
	select {
	case <-schedCtx.Done():
		warm.Stop()
		return
	case <-warm.C:
	}

	l.runTick(tickCtx)

	ticker := time.NewTicker(l.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-schedCtx.Done():
			return
		case <-ticker.C:
			l.runTick(tickCtx)
		}
	}
}

// runTick implements one pass of spec §4.7 step 3-4: scan, validate,
// dedup, mutate, notify. Per-employee failures are isolated and never
// abort the tick.
func (l *Loop) runTick(ctx context.Context) {
	started := time.Now()
	now := started.UTC()

	rows := l.scanner.Scan(ctx, now.Year(), now.Month().String())
	l.metrics.ObserveTick(len(rows))

	var successes []pendingNotification

	for _, row := range rows {
		l.processRow(ctx, now, row, &successes)
	}

	for _, s := range successes {
		l.notifier.NotifyAutoClockOut(ctx, s.managers, s.notification)
	}

	l.logger.WithFields(logrus.Fields{
		"scanned":        len(rows),
		"auto_clock_out": len(successes),
		"duration_ms":    time.Since(started).Milliseconds(),
	}).Info("monitor tick complete")
}

func (l *Loop) processRow(ctx context.Context, now time.Time, row scanner.ClockedIn, successes *[]pendingNotification) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithFields(logrus.Fields{"uid": row.Employee.UID, "panic": r}).Error("panic while processing employee, skipping")
		}
	}()

	emp := row.Employee
	if emp.WorkingArea == "" {
		return
	}

	tz := emp.ResolvedTimezone(l.cfg.DefaultTimezone)
	maxAgeMinutes := int(l.cfg.MaxLocationAge.Minutes())

	verdict := validator.Validate(emp.CurrentLocation, emp.WorkingArea, maxAgeMinutes, tz, now)
	l.metrics.ObserveVerdict(string(verdict.ErrorKind))

	if verdict.IsValid {
		return
	}
	if !verdict.ErrorKind.Actionable() {
		return
	}

	if l.withinDedupWindow(row.Attendance, now) {
		l.metrics.ObserveDedupSkip()
		return
	}

	db, ok := l.stores.Get(row.ProjectName)
	if !ok {
		l.logger.WithFields(logrus.Fields{"project": row.ProjectName}).Error("monitor: project vanished between scan and mutation")
		return
	}

	if _, err := attendance.AutoClockOut(ctx, row.ProjectName, db.Attendance(), row.Attendance, tz, l.cfg.DefaultTimezone, now); err != nil {
		l.logger.WithFields(logrus.Fields{"uid": emp.UID, "error": err}).Error("auto-clock-out failed")
		l.metrics.ObserveMutationFailure()
		return
	}

	l.metrics.ObserveAutoClockOut()

	*successes = append(*successes, pendingNotification{
		notification: notifier.AutoClockOutNotification{Employee: emp, Reason: verdict.ErrorMessage},
		managers:     db.Employees(),
	})
}

// withinDedupWindow implements spec §4.7's dedup rule: look at the most
// recent Clock-Out entry on the day the employee last clocked in, and
// skip if it happened within one check interval of now.
func (l *Loop) withinDedupWindow(att *domain.Attendance, now time.Time) bool {
	if att == nil || att.LastClockInTimestamp == nil {
		return false
	}
	day := att.DayAt(att.LastClockInTimestamp.UTC().Day())
	lastClockOut := day.LastEntryOfType(domain.WorkedHoursClockOut)
	if lastClockOut == nil {
		return false
	}
	return now.Sub(lastClockOut.Timestamp) < l.cfg.CheckInterval
}
