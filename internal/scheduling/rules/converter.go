package rules

import (
	"fmt"
	"time"
)

// Converter turns a calendar date plus a wall-clock time in a named zone
// into a UTC instant.
type Converter interface {
	ToUTC(date string, wallClock string, zone string) (time.Time, error)
}

// LocationConverter resolves zones through the system timezone database.
type LocationConverter struct{}

func (LocationConverter) ToUTC(date string, wallClock string, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+wallClock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, wallClock, err)
	}

	return t.UTC(), nil
}
