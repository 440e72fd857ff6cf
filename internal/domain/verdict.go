package domain

// VerdictKind is the typed failure reason the location validator attaches
// to an invalid verdict. The zero value KindNone means "valid".
type VerdictKind string

const (
	KindNone           VerdictKind = ""
	KindNoLocation     VerdictKind = "NO_LOCATION"
	KindSharingEnded   VerdictKind = "SHARING_ENDED"
	KindStaleLocation  VerdictKind = "STALE_LOCATION"
	KindNotLive        VerdictKind = "NOT_LIVE"
	KindOutsideArea    VerdictKind = "OUTSIDE_AREA"
	KindBadWorkingArea VerdictKind = "BAD_WORKING_AREA"
)

// actionableKinds is the exact partition of verdict kinds that trigger an
// automatic clock-out (spec §4.2, §8 property 2). Anything not in this set
// is observed but never actioned.
var actionableKinds = map[VerdictKind]bool{
	KindOutsideArea:   true,
	KindNotLive:       true,
	KindSharingEnded:  true,
	KindStaleLocation: true,
}

// Actionable reports whether a verdict kind should trigger an
// auto-clock-out.
func (k VerdictKind) Actionable() bool {
	return actionableKinds[k]
}

// Coordinates is a bare lat/lng pair retained on a verdict for notification
// and audit purposes even when the verdict is invalid.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Verdict is the result of validating one employee's current location
// against their working area and the staleness/live-sharing policy.
type Verdict struct {
	IsValid             bool
	ErrorKind           VerdictKind
	ErrorMessage        string
	Accuracy            *float64
	Coordinates         *Coordinates
	LocationAgeMinutes  int
	IsLive              bool
}
