// Package domain holds the plain data types shared across the tracker,
// validator and scheduler: employees, their current location, and their
// monthly attendance documents.
package domain

import "time"

// LocationSource identifies which chat-platform event produced a
// CurrentLocation reduction.
type LocationSource string

const (
	SourceTelegram     LocationSource = "telegram"
	SourceTelegramLive LocationSource = "telegram_live"
)

// CurrentLocation is the single latest reduction of every location event
// observed for an employee. Invariants (enforced by ingestion and the
// sweeper, never by this struct itself):
//
//   - IsLive implies EndedAt == nil.
//   - EndedAt != nil implies IsLive == false.
//   - LiveUntil != nil implies !LiveUntil.Before(UpdatedAt).
//   - once EndedAt is set, a stale update must never revive the session.
type CurrentLocation struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Accuracy  *float64       `json:"accuracy"`
	Heading   *float64       `json:"heading"`
	Speed     *float64       `json:"speed"`
	Source    LocationSource `json:"source"`
	IsLive    bool           `json:"isLive"`
	UpdatedAt time.Time      `json:"updatedAt"`

	LiveMessageID string     `json:"liveMessageId"`
	LiveChatID    string     `json:"liveChatId"`
	LiveUntil     *time.Time `json:"liveUntil"`
	EndedAt       *time.Time `json:"endedAt"`
}

// LocationLog is one append-only record of an observed chat-platform
// location event, kept for audit/history purposes under
// employee/{id}/locationLogs.
type LocationLog struct {
	ID                string         `json:"id"`
	EmployeeID        string         `json:"employeeId"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	Source            LocationSource `json:"source"`
	EventAt           time.Time      `json:"eventAt"`
	ChatID            int64          `json:"chatId"`
	MessageID         int64          `json:"messageId"`
	LivePeriodSeconds *int           `json:"livePeriodSeconds"`
}

// Employee is the subset of the employee document the core touches.
type Employee struct {
	ID                   string           `json:"id"`
	UID                  string           `json:"uid"`
	TelegramChatID       string           `json:"telegramChatID"`
	WorkingArea          string           `json:"workingArea"`
	Timezone             string           `json:"timezone"`
	ReportingLineManager string           `json:"reportingLineManager"`
	CurrentLocation      *CurrentLocation `json:"currentLocation"`
}

// ResolvedTimezone returns the employee's timezone, falling back to the
// process default when the employee record has none set.
func (e *Employee) ResolvedTimezone(defaultTZ string) string {
	if e == nil || e.Timezone == "" {
		return defaultTZ
	}
	return e.Timezone
}
