package attendance

import "github.com/mwangi254/geoclock/internal/domain"

// ClassifyDaily is the threshold-based classifier the human clock-in/out
// path uses to derive a DailyValue from worked hours (spec §4.5, next to
// last paragraph). It compares dailyWorkedHours against
// presentThreshold/halfPresentThreshold, both expressed as a fraction of
// expectedDailyHours.
//
// AutoClockOut deliberately does not call this — see spec §9 Open
// Question 2 and DESIGN.md.
func ClassifyDaily(dailyWorkedHours, expectedDailyHours, presentThreshold, halfPresentThreshold float64) domain.DailyValue {
	if expectedDailyHours <= 0 {
		return domain.DailyValueAbsent
	}

	ratio := dailyWorkedHours / expectedDailyHours

	switch {
	case ratio >= presentThreshold:
		return domain.DailyValuePresent
	case ratio >= halfPresentThreshold:
		return domain.DailyValueHalfPresent
	default:
		return domain.DailyValueAbsent
	}
}
