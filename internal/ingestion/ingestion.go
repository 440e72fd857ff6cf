// Package ingestion translates chat-transport location events into
// live-registry upserts and document-store writes (spec §4.4). It is the
// one place that has to cope with the chat platform's idiosyncratic
// delivery: live_period may be absent on an edit, a stop-sharing event may
// never arrive, and duration may simply be unknown.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/liveregistry"
	"github.com/mwangi254/geoclock/internal/metrics"
	"github.com/mwangi254/geoclock/internal/store"
)

// ErrContextUnresolved is returned (and only logged, never propagated to
// the transport) when no employee can be matched to the event's chat id
// (spec §7 CONTEXT_UNRESOLVED).
var ErrContextUnresolved = errors.New("ingestion: could not resolve employee for chat")

// Ingestor wires the live registry and the store registry together to
// implement OnLocationEvent.
type Ingestor struct {
	registry *liveregistry.Registry
	stores   *store.Registry
	sessions *ChatSessionMap
	logger   *logrus.Logger
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// New builds an Ingestor.
func New(registry *liveregistry.Registry, stores *store.Registry, sessions *ChatSessionMap, logger *logrus.Logger) *Ingestor {
	return &Ingestor{
		registry: registry,
		stores:   stores,
		sessions: sessions,
		logger:   logger,
		validate: validator.New(),
	}
}

// SetMetrics attaches a metrics sink. Optional — a nil sink (the default)
// makes every observation a no-op.
func (ing *Ingestor) SetMetrics(m *metrics.Metrics) {
	ing.metrics = m
}

// OnLocationEvent implements spec §4.4. It returns an error for an invalid
// payload, an unresolved chat (ErrContextUnresolved), an unknown project,
// or a failed current-location write; callers (the Telegram handler) should
// log and continue rather than treat this as a transport failure.
func (ing *Ingestor) OnLocationEvent(ctx context.Context, event LocationEvent) error {
	if err := ing.validate.Struct(event); err != nil {
		return fmt.Errorf("ingestion: invalid event payload: %w", err)
	}

	session, err := ing.resolveEmployee(ctx, event.ChatID)
	if err != nil {
		ing.logger.WithFields(logrus.Fields{"chat_id": event.ChatID}).Warn("dropping location event: ", err)
		return err
	}

	now := time.Now()
	key := liveregistry.Key{ChatID: event.ChatID, MessageID: event.MessageID}
	upsert := ing.registry.Upsert(key, session.EmployeeID, session.ProjectName, event.LivePeriodSeconds, event.IsEdit, now)

	current := buildCurrentLocation(event, upsert, now)

	s, ok := ing.stores.Get(session.ProjectName)
	if !ok {
		return fmt.Errorf("ingestion: %w: %s", store.ErrUnknownProject, session.ProjectName)
	}

	if err := store.WithRetry(ctx, session.ProjectName, func(ctx context.Context) error {
		return s.Employees().SetCurrentLocation(ctx, session.EmployeeID, current, now.UTC())
	}); err != nil {
		return fmt.Errorf("ingestion: failed to write current location: %w", err)
	}

	logEntry := domain.LocationLog{
		ID:                uuid.NewString(),
		EmployeeID:        session.EmployeeID,
		Latitude:          event.Latitude,
		Longitude:         event.Longitude,
		Source:            current.Source,
		EventAt:           now.UTC(),
		ChatID:            event.ChatID,
		MessageID:         event.MessageID,
		LivePeriodSeconds: event.LivePeriodSeconds,
	}
	if err := store.WithRetry(ctx, session.ProjectName, func(ctx context.Context) error {
		return s.Employees().AppendLocationLog(ctx, logEntry)
	}); err != nil {
		ing.logger.WithFields(logrus.Fields{
			"employee_id": session.EmployeeID,
			"error":       err,
		}).Error("failed to append location log after retries (best-effort, not propagated)")
	}

	ing.metrics.ObserveIngestedEvent()

	return nil
}

func buildCurrentLocation(event LocationEvent, upsert liveregistry.UpsertResult, now time.Time) *domain.CurrentLocation {
	source := domain.SourceTelegram
	if upsert.IsLive {
		source = domain.SourceTelegramLive
	}

	loc := &domain.CurrentLocation{
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		Accuracy:  event.Accuracy,
		Heading:   event.Heading,
		Speed:     event.Speed,
		Source:    source,
		IsLive:    upsert.IsLive,
		UpdatedAt: now.UTC(),
		EndedAt:   nil,
	}

	if upsert.Exists {
		loc.LiveMessageID = fmt.Sprintf("%d", event.MessageID)
		loc.LiveChatID = fmt.Sprintf("%d", event.ChatID)
		if upsert.Entry.LiveUntilMs != nil {
			until := time.UnixMilli(*upsert.Entry.LiveUntilMs).UTC()
			loc.LiveUntil = &until
		}
	}

	return loc
}

// resolveEmployee implements spec §4.4 step 1: check the in-memory
// chat-session map first, then fall back to querying each healthy
// database for a matching telegramChatID.
func (ing *Ingestor) resolveEmployee(ctx context.Context, chatID int64) (Session, error) {
	if session, ok := ing.sessions.Get(chatID); ok {
		return session, nil
	}

	chatIDStr := fmt.Sprintf("%d", chatID)
	for _, s := range ing.stores.Healthy(ctx) {
		emp, err := s.Employees().GetByTelegramChatID(ctx, chatIDStr)
		if err != nil {
			ing.logger.WithFields(logrus.Fields{
				"project": s.ProjectName(),
				"error":   err,
			}).Warn("employee lookup by chat id failed")
			continue
		}
		if emp != nil {
			session := Session{EmployeeID: emp.ID, ProjectName: s.ProjectName()}
			ing.sessions.Put(chatID, session)
			return session, nil
		}
	}

	return Session{}, ErrContextUnresolved
}
