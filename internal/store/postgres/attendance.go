package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mwangi254/geoclock/internal/attendance"
	"github.com/mwangi254/geoclock/internal/domain"
)

type attendanceRepository struct {
	db *sql.DB
}

func newAttendanceRepository(db *sql.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// ListClockedIn returns every attendance document for (year, month);
// filtering to the ones actually clocked in happens client-side in
// scanner.Scan via att.IsClockedIn(), not here — spec §4.6 chose that over
// a server-side predicate because it would otherwise demand a composite
// index on last_clock_in_timestamp in every project's database.
func (r *attendanceRepository) ListClockedIn(ctx context.Context, year int, month string) ([]*domain.Attendance, error) {
	const query = `
		SELECT id, uid, year, month, monthly_worked_hours, last_clock_in_timestamp, values, last_changed
		FROM attendance
		WHERE year = $1 AND month = $2`

	rows, err := r.db.QueryContext(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query clocked-in attendance: %w", err)
	}
	defer rows.Close()

	var out []*domain.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	const query = `
		SELECT id, uid, year, month, monthly_worked_hours, last_clock_in_timestamp, values, last_changed
		FROM attendance
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	att, err := scanAttendanceRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return att, err
}

func (r *attendanceRepository) Update(ctx context.Context, att *domain.Attendance) error {
	encoded, err := json.Marshal(att.Values)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode attendance values: %w", err)
	}

	const query = `
		UPDATE attendance
		SET monthly_worked_hours = $2, last_clock_in_timestamp = $3, values = $4, last_changed = $5
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		att.ID, att.MonthlyWorkedHours, att.LastClockInTimestamp, encoded, att.LastChanged,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update attendance: %w", err)
	}
	return requireRowsAffected(res, "attendance", att.ID)
}

// rowScanner abstracts over *sql.Row and *sql.Rows so scanAttendance can
// share its Scan call and the decode-values quirk (§3's "Dynamic field
// bags": the store may round-trip `values` as a sparse numeric-keyed
// object instead of a dense array) between both query shapes.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(rs rowScanner) (*domain.Attendance, error) {
	return scanAttendanceRow(rs)
}

func scanAttendanceRow(rs rowScanner) (*domain.Attendance, error) {
	var (
		att       domain.Attendance
		rawValues []byte
	)

	if err := rs.Scan(&att.ID, &att.UID, &att.Year, &att.Month, &att.MonthlyWorkedHours, &att.LastClockInTimestamp, &rawValues, &att.LastChanged); err != nil {
		return nil, err
	}

	values, err := decodeValues(rawValues)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to decode attendance values: %w", err)
	}
	att.Values = values

	return &att, nil
}

// decodeValues handles both on-the-wire shapes the spec allows for
// `values`: a dense JSON array, or a sparse JSON object keyed by numeric
// strings. NormalizeValues then reduces either to a dense, Day-1-indexed
// slice.
func decodeValues(raw []byte) ([]*domain.DailyAttendance, error) {
	trimmed := skipWhitespace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var arr []*domain.DailyAttendance
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		return attendance.NormalizeValues(arr), nil
	case '{':
		var obj map[string]*domain.DailyAttendance
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		return attendance.NormalizeValues(obj), nil
	default:
		return nil, fmt.Errorf("postgres: unexpected values encoding starting with %q", trimmed[0])
	}
}

func skipWhitespace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return nil
}
