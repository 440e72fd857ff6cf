package liveregistry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/mwangi254/geoclock/internal/metrics"
)

// GraceWindow is the tolerance for absent live updates before the sweeper
// finalizes a session, whether or not its duration is known; a known
// LiveUntilMs that comes earlier still wins (spec §4.3, GLOSSARY).
const GraceWindow = 120 * time.Second

// SweepInterval is how often the sweeper scans the registry.
const SweepInterval = 60 * time.Second

// Finalizer persists the effect of finalizing a live session: the
// employee's currentLocation is marked not-live and ended. Implemented by
// internal/store against the document store.
type Finalizer interface {
	FinalizeLiveSession(ctx context.Context, projectName, employeeID string, endedAt time.Time) error
}

// Sweeper periodically finalizes live sessions that have outlived their
// declared duration, or gone quiet for longer than GraceWindow, per spec
// §4.3. Finalization is best-effort: a store failure leaves the entry in
// place so the next tick retries it.
type Sweeper struct {
	registry  *Registry
	finalizer Finalizer
	logger    *logrus.Logger
	ticks     atomic.Int64
	metrics   *metrics.Metrics
}

// NewSweeper builds a Sweeper bound to registry and finalizer.
func NewSweeper(registry *Registry, finalizer Finalizer, logger *logrus.Logger) *Sweeper {
	return &Sweeper{registry: registry, finalizer: finalizer, logger: logger}
}

// SetMetrics attaches a metrics sink. Optional — a nil sink (the default)
// makes every observation a no-op.
func (s *Sweeper) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Run blocks, sweeping every SweepInterval until ctx is cancelled. It is
// meant to be launched in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	s.logger.Info("live-session sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("live-session sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// Ticks reports how many sweep passes have run; exposed for tests/metrics.
func (s *Sweeper) Ticks() int64 {
	return s.ticks.Load()
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	s.ticks.Inc()
	now := time.Now()

	s.registry.ForEach(func(key Key, entry Entry) {
		threshold := entry.LastUpdateMs + GraceWindow.Milliseconds()
		if entry.LiveUntilMs != nil && *entry.LiveUntilMs < threshold {
			threshold = *entry.LiveUntilMs
		}

		if now.UnixMilli() < threshold {
			return
		}

		if err := s.finalizer.FinalizeLiveSession(ctx, entry.ProjectName, entry.EmployeeID, now.UTC()); err != nil {
			s.logger.WithFields(logrus.Fields{
				"employee_id": entry.EmployeeID,
				"project":     entry.ProjectName,
				"error":       err,
			}).Error("failed to finalize live session, retrying next sweep")
			return
		}

		s.registry.Delete(key)
		s.metrics.ObserveSweeperFinalized()
		s.logger.WithFields(logrus.Fields{
			"employee_id": entry.EmployeeID,
			"project":     entry.ProjectName,
		}).Info("finalized live session")
	})
}
