// Package validator implements the pure geofence decision function:
// given a current location, a working area and a staleness policy, decide
// whether the employee may remain clocked in, and if not, why.
package validator

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/mwangi254/geoclock/internal/domain"
	"github.com/mwangi254/geoclock/internal/geo"
)

// Validate implements spec §4.2's decision order exactly: the first
// matching rule wins. It never mutates its arguments and never performs
// I/O, so it is safe to call from any goroutine without synchronization.
//
// timezone is accepted for parity with the spec's signature and totality
// property (§8 property 1: the verdict is a total function of all four
// inputs) but the containment/staleness decision itself is timezone
// agnostic — only hour formatting downstream (internal/attendance) is
// timezone-sensitive.
func Validate(location *domain.CurrentLocation, workingArea string, maxAgeMinutes int, timezone string, now time.Time) domain.Verdict {
	if location == nil {
		return domain.Verdict{IsValid: false, ErrorKind: domain.KindNoLocation, ErrorMessage: "no location has been shared yet"}
	}

	coords := &domain.Coordinates{Latitude: location.Latitude, Longitude: location.Longitude}

	if location.EndedAt != nil {
		return domain.Verdict{
			IsValid:      false,
			ErrorKind:    domain.KindSharingEnded,
			ErrorMessage: "live location sharing has ended",
			Accuracy:     location.Accuracy,
			Coordinates:  coords,
		}
	}

	ageMinutes := int(math.Floor(now.Sub(location.UpdatedAt).Minutes()))

	effectiveLive := location.IsLive && (location.LiveUntil == nil || now.Before(*location.LiveUntil))

	if effectiveLive {
		mp, err := geo.ParseWorkingArea(workingArea)
		if err != nil {
			return domain.Verdict{
				IsValid:            false,
				ErrorKind:          domain.KindBadWorkingArea,
				ErrorMessage:       fmt.Sprintf("working area is malformed: %v", err),
				Accuracy:           location.Accuracy,
				Coordinates:        coords,
				LocationAgeMinutes: ageMinutes,
				IsLive:             true,
			}
		}

		pt := orb.Point{location.Longitude, location.Latitude}
		if !geo.Contains(mp, pt) {
			return domain.Verdict{
				IsValid:            false,
				ErrorKind:          domain.KindOutsideArea,
				ErrorMessage:       "you are outside your designated working area",
				Accuracy:           location.Accuracy,
				Coordinates:        coords,
				LocationAgeMinutes: ageMinutes,
				IsLive:             true,
			}
		}

		return domain.Verdict{
			IsValid:            true,
			Accuracy:           location.Accuracy,
			Coordinates:        coords,
			LocationAgeMinutes: ageMinutes,
			IsLive:             true,
		}
	}

	if ageMinutes > maxAgeMinutes {
		return domain.Verdict{
			IsValid:            false,
			ErrorKind:          domain.KindStaleLocation,
			ErrorMessage:       fmt.Sprintf("your last known location is %d minutes old", ageMinutes),
			Accuracy:           location.Accuracy,
			Coordinates:        coords,
			LocationAgeMinutes: ageMinutes,
		}
	}

	return domain.Verdict{
		IsValid:            false,
		ErrorKind:          domain.KindNotLive,
		ErrorMessage:       "live location sharing is not active",
		Accuracy:           location.Accuracy,
		Coordinates:        coords,
		LocationAgeMinutes: ageMinutes,
	}
}
