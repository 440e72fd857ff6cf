// Package postgres implements the store.Store contract against a Postgres
// database, modeling the Firestore-flavored documents of §3 as JSONB
// columns, the way the teacher's internal/repository/postgres package
// models its own domain on top of database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwangi254/geoclock/internal/domain"
)

type employeeRepository struct {
	db *sql.DB
}

func newEmployeeRepository(db *sql.DB) *employeeRepository {
	return &employeeRepository{db: db}
}

// GetByID resolves either the document id or the uid — callers address
// employees both ways (the attendance join uses uid, direct links use id).
func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	const query = `
		SELECT id, uid, telegram_chat_id, working_area, timezone, reporting_line_manager, current_location
		FROM employees
		WHERE id = $1 OR uid = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *employeeRepository) GetByTelegramChatID(ctx context.Context, chatID string) (*domain.Employee, error) {
	const query = `
		SELECT id, uid, telegram_chat_id, working_area, timezone, reporting_line_manager, current_location
		FROM employees
		WHERE telegram_chat_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, chatID))
}

func (r *employeeRepository) scanOne(row *sql.Row) (*domain.Employee, error) {
	var (
		emp         domain.Employee
		chatID      sql.NullString
		workingArea sql.NullString
		timezone    sql.NullString
		manager     sql.NullString
		rawLocation []byte
	)

	if err := row.Scan(&emp.ID, &emp.UID, &chatID, &workingArea, &timezone, &manager, &rawLocation); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to scan employee: %w", err)
	}

	emp.TelegramChatID = chatID.String
	emp.WorkingArea = workingArea.String
	emp.Timezone = timezone.String
	emp.ReportingLineManager = manager.String

	if len(rawLocation) > 0 {
		var loc domain.CurrentLocation
		if err := json.Unmarshal(rawLocation, &loc); err != nil {
			return nil, fmt.Errorf("postgres: failed to decode currentLocation: %w", err)
		}
		emp.CurrentLocation = &loc
	}

	return &emp, nil
}

func (r *employeeRepository) SetCurrentLocation(ctx context.Context, employeeID string, loc *domain.CurrentLocation, lastChanged time.Time) error {
	encoded, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode currentLocation: %w", err)
	}

	const query = `
		UPDATE employees
		SET current_location = $2, last_changed = $3
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, employeeID, encoded, lastChanged)
	if err != nil {
		return fmt.Errorf("postgres: failed to set currentLocation: %w", err)
	}
	return requireRowsAffected(res, "employee", employeeID)
}

// FinalizeLocation patches only the finalize-relevant fields of the JSONB
// currentLocation document — isLive and endedAt — leaving every other
// field (lat/lng/accuracy/...) untouched, per spec §4.3.
func (r *employeeRepository) FinalizeLocation(ctx context.Context, employeeID string, endedAt time.Time) error {
	const query = `
		UPDATE employees
		SET current_location = jsonb_set(
			jsonb_set(coalesce(current_location, '{}'::jsonb), '{isLive}', 'false'::jsonb),
			'{endedAt}', to_jsonb($2::timestamptz)
		), last_changed = $2
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, employeeID, endedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to finalize currentLocation: %w", err)
	}
	return requireRowsAffected(res, "employee", employeeID)
}

func (r *employeeRepository) AppendLocationLog(ctx context.Context, log domain.LocationLog) error {
	const query = `
		INSERT INTO employee_location_logs
			(id, employee_id, latitude, longitude, source, event_at, chat_id, message_id, live_period_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.EmployeeID, log.Latitude, log.Longitude, log.Source, log.EventAt,
		log.ChatID, log.MessageID, log.LivePeriodSeconds,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to append location log: %w", err)
	}
	return nil
}

func requireRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("postgres: no %s matched id %q", kind, id)
	}
	return nil
}
