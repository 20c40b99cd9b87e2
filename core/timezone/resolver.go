package timezone

import (
	"strings"
	"time"
)

// DefaultZone is substituted for any timezone string that does not name a
// known IANA zone.
const DefaultZone = "Asia/Kolkata"

// Resolve returns the input unchanged when it names a known IANA timezone,
// and DefaultZone otherwise. It never fails.
func Resolve(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultZone
	}
	if _, err := time.LoadLocation(s); err != nil {
		return DefaultZone
	}
	return s
}

// Location returns the *time.Location for the resolved zone of s.
func Location(s string) *time.Location {
	loc, err := time.LoadLocation(Resolve(s))
	if err != nil {
		// only reachable when the zone database lacks DefaultZone
		return time.UTC
	}
	return loc
}
