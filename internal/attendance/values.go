// Package attendance implements the auto-clock-out mutator (spec §4.5) and
// the threshold-based daily classifier the human clock-in/out path shares
// with it.
package attendance

import (
	"strconv"

	"github.com/mwangi254/geoclock/internal/domain"
)

// NormalizeValues returns a dense, Day-1-indexed copy of raw, whatever its
// on-the-wire shape was. The store may have serialized `values` as a
// sparse object with numeric string keys (spec §3's "Dynamic field bags"
// note); this always hands back a []*domain.DailyAttendance of length
// max(len(raw), highest populated index+1), preserving indices.
//
// raw is either []*domain.DailyAttendance (already dense) or
// map[string]*domain.DailyAttendance (numeric string keys, as the JSON
// document store would round-trip a sparse object through
// encoding/json).
func NormalizeValues(raw any) []*domain.DailyAttendance {
	switch v := raw.(type) {
	case nil:
		return nil
	case []*domain.DailyAttendance:
		dense := make([]*domain.DailyAttendance, len(v))
		copy(dense, v)
		return dense
	case map[string]*domain.DailyAttendance:
		return denseFromMap(v)
	default:
		return nil
	}
}

func denseFromMap(m map[string]*domain.DailyAttendance) []*domain.DailyAttendance {
	maxIndex := -1
	indexed := make(map[int]*domain.DailyAttendance, len(m))
	for key, val := range m {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			continue
		}
		indexed[idx] = val
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	dense := make([]*domain.DailyAttendance, maxIndex+1)
	for idx, val := range indexed {
		dense[idx] = val
	}
	return dense
}

// EnsureDay returns the DailyAttendance at dayIndex (0-based), growing
// values if needed and creating a fresh row when the slot is empty. The
// returned day is always a fresh copy — callers are about to mutate it in
// memory before a single document write, and spec §4.5 requires that
// write to be all-or-nothing, so the caller's original document must stay
// untouched until the write actually succeeds.
func EnsureDay(values []*domain.DailyAttendance, dayIndex int) ([]*domain.DailyAttendance, *domain.DailyAttendance) {
	if dayIndex >= len(values) {
		grown := make([]*domain.DailyAttendance, dayIndex+1)
		copy(grown, values)
		values = grown
	}

	var day *domain.DailyAttendance
	if values[dayIndex] == nil {
		day = &domain.DailyAttendance{
			Day:    dayIndex + 1,
			Status: domain.DailyStatusNA,
		}
	} else {
		clone := *values[dayIndex]
		clone.WorkedHours = append([]domain.WorkedHoursEntry(nil), values[dayIndex].WorkedHours...)
		day = &clone
	}

	values[dayIndex] = day
	return values, day
}
