package postgres

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/mwangi254/geoclock/internal/store"
)

// healthCacheTTL bounds how often Healthy actually pings the database;
// spec §5 only requires health to be re-queried "at the start of each
// monitor tick and each ingestion event", not on every single call within
// one, so a short cache avoids hammering the connection on a scan with
// hundreds of rows.
const healthCacheTTL = 5 * time.Second

// Store implements store.Store against one Postgres database/project.
type Store struct {
	projectName string
	db          *sql.DB
	employees   *employeeRepository
	attendance  *attendanceRepository

	healthMu     sync.Mutex
	healthAt     time.Time
	healthResult bool
}

// New wraps db as a named logical project.
func New(projectName string, db *sql.DB) *Store {
	return &Store{
		projectName: projectName,
		db:          db,
		employees:   newEmployeeRepository(db),
		attendance:  newAttendanceRepository(db),
	}
}

func (s *Store) ProjectName() string { return s.projectName }

func (s *Store) Employees() store.EmployeeStore    { return s.employees }
func (s *Store) Attendance() store.AttendanceStore { return s.attendance }

// Healthy pings the database, caching the result briefly so a single
// monitor tick or ingestion event doesn't re-ping per row.
func (s *Store) Healthy(ctx context.Context) bool {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	if time.Since(s.healthAt) < healthCacheTTL {
		return s.healthResult
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	s.healthResult = s.db.PingContext(pingCtx) == nil
	s.healthAt = time.Now()
	return s.healthResult
}
