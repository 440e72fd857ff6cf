package domain

import "time"

// WorkedHoursType distinguishes a clock-in entry from a clock-out entry
// inside a DailyAttendance.WorkedHours slice.
type WorkedHoursType string

const (
	WorkedHoursClockIn  WorkedHoursType = "Clock In"
	WorkedHoursClockOut WorkedHoursType = "Clock Out"
)

// DailyStatus is the submission state of a single day's attendance row.
type DailyStatus string

const (
	DailyStatusNA        DailyStatus = "N/A"
	DailyStatusSubmitted DailyStatus = "Submitted"
)

// DailyValue is the attendance classification code for a day.
type DailyValue string

const (
	DailyValuePresent     DailyValue = "P"
	DailyValueHalfPresent DailyValue = "H"
	DailyValueAbsent      DailyValue = "A"
)

// WorkedHoursEntry is one clock-in or clock-out event inside a day.
// Entries are appended in insertion order, which by construction is
// monotonic in Timestamp.
type WorkedHoursEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      WorkedHoursType `json:"type"`
	Hour      string          `json:"hour"` // localized "h:mm AM/PM"
}

// DailyAttendance is one day's worth of attendance bookkeeping, stored at
// index Day-1 of an Attendance document's Values slice.
type DailyAttendance struct {
	ID               string             `json:"id"`
	Day              int                `json:"day"`
	Value            *DailyValue        `json:"value"`
	Timestamp        *time.Time         `json:"timestamp"`
	From             *time.Time         `json:"from"`
	To               *time.Time         `json:"to"`
	Status           DailyStatus        `json:"status"`
	DailyWorkedHours float64            `json:"dailyWorkedHours"`
	WorkedHours      []WorkedHoursEntry `json:"workedHours"`
}

// Attendance is the monthly attendance document keyed by (UID, Year, Month).
type Attendance struct {
	ID                   string             `json:"id"`
	UID                  string             `json:"uid"`
	Year                 int                `json:"year"`
	Month                string             `json:"month"` // English month name, e.g. "September"
	MonthlyWorkedHours   float64            `json:"monthlyWorkedHours"`
	LastClockInTimestamp *time.Time         `json:"lastClockInTimestamp"`
	Values               []*DailyAttendance `json:"values"` // index Day-1; length up to 31
	LastChanged          time.Time          `json:"lastChanged"`
}

// IsClockedIn reports whether this document represents a currently
// clocked-in employee.
func (a *Attendance) IsClockedIn() bool {
	return a != nil && a.LastClockInTimestamp != nil
}

// DayAt returns the DailyAttendance for the given 1-based day, or nil if the
// slot is absent or out of range.
func (a *Attendance) DayAt(day int) *DailyAttendance {
	if a == nil || day < 1 || day > len(a.Values) {
		return nil
	}
	return a.Values[day-1]
}

// LastWorkedHoursEntry returns the most recent entry recorded for the day,
// or nil if the day has no entries.
func (d *DailyAttendance) LastWorkedHoursEntry() *WorkedHoursEntry {
	if d == nil || len(d.WorkedHours) == 0 {
		return nil
	}
	return &d.WorkedHours[len(d.WorkedHours)-1]
}

// LastEntryOfType returns the most recent entry of the given type recorded
// for the day, or nil if none match — unlike LastWorkedHoursEntry, a later
// entry of a different type (e.g. a re-clock-in after a clock-out) doesn't
// hide it.
func (d *DailyAttendance) LastEntryOfType(t WorkedHoursType) *WorkedHoursEntry {
	if d == nil {
		return nil
	}
	for i := len(d.WorkedHours) - 1; i >= 0; i-- {
		if d.WorkedHours[i].Type == t {
			return &d.WorkedHours[i]
		}
	}
	return nil
}
