// Package scanner finds every currently clocked-in employee across all
// healthy databases, joined with their employee document (spec §4.6).
package scanner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/store"
)

// ClockedIn is one joined row: an employee, their current month's
// attendance document, and which logical database/project it lives in.
type ClockedIn struct {
	Employee    *domain.Employee
	Attendance  *domain.Attendance
	ProjectName string
}

// Scanner runs the §4.6 scan against a store registry.
type Scanner struct {
	stores *store.Registry
	logger *logrus.Logger
}

// New builds a Scanner.
func New(stores *store.Registry, logger *logrus.Logger) *Scanner {
	return &Scanner{stores: stores, logger: logger}
}

// Scan queries every healthy database for attendance documents matching
// (year, month), keeps only the ones with a non-null lastClockInTimestamp,
// and joins each to its employee document. Per-project and per-row
// failures are logged and skipped rather than aborting the whole scan —
// spec §4.7 requires per-employee isolation, and a failed join is no
// different from a failed validation.
func (s *Scanner) Scan(ctx context.Context, year int, month string) []ClockedIn {
	var results []ClockedIn

	for _, db := range s.stores.Healthy(ctx) {
		var attendances []*domain.Attendance
		err := store.WithRetry(ctx, db.ProjectName(), func(ctx context.Context) error {
			var err error
			attendances, err = db.Attendance().ListClockedIn(ctx, year, month)
			return err
		})
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"project": db.ProjectName(),
				"error":   err,
			}).Error("failed to list clocked-in attendance documents")
			continue
		}

		for _, att := range attendances {
			if !att.IsClockedIn() {
				continue
			}

			var emp *domain.Employee
			err := store.WithRetry(ctx, db.ProjectName(), func(ctx context.Context) error {
				var err error
				emp, err = db.Employees().GetByID(ctx, att.UID)
				return err
			})
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"project": db.ProjectName(),
					"uid":     att.UID,
					"error":   err,
				}).Error("failed to join employee for clocked-in attendance")
				continue
			}
			if emp == nil {
				s.logger.WithFields(logrus.Fields{
					"project": db.ProjectName(),
					"uid":     att.UID,
				}).Warn(fmt.Sprintf("clocked-in attendance %s has no matching employee", att.ID))
				continue
			}

			results = append(results, ClockedIn{
				Employee:    emp,
				Attendance:  att,
				ProjectName: db.ProjectName(),
			})
		}
	}

	return results
}
