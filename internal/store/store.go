// Package store defines the document-store contracts the core depends on
// (employee reads/writes, location log appends, attendance queries and
// mutations) and a retrying wrapper around them, mirroring the teacher's
// internal/repository interface-plus-postgres-impl split but generalized
// to "one of several logical databases" per spec §4.6/§6.
package store

import (
	"context"
	"time"

	"github.com/mwangi254/geoclock/internal/domain"
)

// EmployeeStore reads and writes employee documents, including the
// currentLocation sub-document and the best-effort locationLogs
// subcollection append.
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByTelegramChatID(ctx context.Context, chatID string) (*domain.Employee, error)
	SetCurrentLocation(ctx context.Context, employeeID string, loc *domain.CurrentLocation, lastChanged time.Time) error
	FinalizeLocation(ctx context.Context, employeeID string, endedAt time.Time) error
	AppendLocationLog(ctx context.Context, log domain.LocationLog) error
}

// AttendanceStore reads and mutates monthly attendance documents.
type AttendanceStore interface {
	ListClockedIn(ctx context.Context, year int, month string) ([]*domain.Attendance, error)
	GetByID(ctx context.Context, id string) (*domain.Attendance, error)
	Update(ctx context.Context, attendance *domain.Attendance) error
}

// Store is everything one logical database/project exposes to the core.
type Store interface {
	ProjectName() string
	Employees() EmployeeStore
	Attendance() AttendanceStore
	Healthy(ctx context.Context) bool
}

// Registry addresses one of several stores by project name, and implements
// liveregistry.Finalizer by routing to the named project's EmployeeStore.
// Projects is the set of stores the sweeper/ingestion path can address,
// keyed by ProjectName().
type Registry struct {
	Projects map[string]Store
}

// NewRegistry wraps a set of stores addressed by project name.
func NewRegistry(stores ...Store) *Registry {
	reg := &Registry{Projects: make(map[string]Store, len(stores))}
	for _, s := range stores {
		reg.Projects[s.ProjectName()] = s
	}
	return reg
}

// Healthy returns every store that currently passes its health check,
// re-queried fresh on each call per spec §5 ("health is re-queried at the
// start of each monitor tick and each ingestion event").
func (r *Registry) Healthy(ctx context.Context) []Store {
	var healthy []Store
	for _, s := range r.Projects {
		if s.Healthy(ctx) {
			healthy = append(healthy, s)
		}
	}
	return healthy
}

// Get looks up a store by project name.
func (r *Registry) Get(projectName string) (Store, bool) {
	s, ok := r.Projects[projectName]
	return s, ok
}

// FinalizeLiveSession implements liveregistry.Finalizer, retried per spec
// §5's non-idempotent-write policy.
func (r *Registry) FinalizeLiveSession(ctx context.Context, projectName, employeeID string, endedAt time.Time) error {
	s, ok := r.Get(projectName)
	if !ok {
		return ErrUnknownProject
	}
	return WithRetry(ctx, projectName, func(ctx context.Context) error {
		return s.Employees().FinalizeLocation(ctx, employeeID, endedAt)
	})
}
