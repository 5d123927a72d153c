// Package clock pins wall-clock reasoning to Indochina Time (UTC+7)
// independent of the host locale.
package clock

import "time"

// Location is a fixed UTC+7 zone
var Location = time.FixedZone("ICT", 7*60*60)

// Clock returns the current time. Components take a Clock so tests can pin it.
type Clock func() time.Time

// Now returns the current time in Location
func Now() time.Time {
	return time.Now().In(Location)
}

// Fixed returns a Clock that always reports t converted to Location
func Fixed(t time.Time) Clock {
	return func() time.Time { return t.In(Location) }
}

// Date formats t as YYYY-MM-DD in Location
func Date(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}

// Must parses "YYYY-MM-DD HH:MM" in Location and panics on error. Intended for tests and constants.
func Must(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, Location)
	if err != nil {
		panic(err)
	}
	return t
}
