package attendance

import (
	"time"
)

// FormatHour renders t in the named IANA zone as "h:mm AM/PM", falling
// back to defaultTZ (and finally UTC) if the zone name is empty or
// unrecognized, per spec §9 "Time handling".
func FormatHour(t time.Time, timezone, defaultTZ string) string {
	loc := resolveLocation(timezone, defaultTZ)
	return t.In(loc).Format("3:04 PM")
}

func resolveLocation(timezone, defaultTZ string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	if defaultTZ != "" {
		if loc, err := time.LoadLocation(defaultTZ); err == nil {
			return loc
		}
	}
	return time.UTC
}
