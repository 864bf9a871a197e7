package locale

import (
	"strings"
)

const (
	DefaultTimezone = "UTC"

	RegionIsrael = "IL"
	RegionUs     = "US"
)

type Region struct {
	Code            string   // ISO 3166-1 alpha-2 code
	Name            string   // Human-readable name
	DefaultTimezone string   // IANA timezone identifier
	WorkingDays     []string // Default working week for new availability profiles
}

var (
	Regions = map[string]Region{
		RegionIsrael: {
			Code:            RegionIsrael,
			Name:            "Israel",
			DefaultTimezone: "Asia/Jerusalem",
			WorkingDays:     []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"},
		},
		RegionUs: {
			Code:            RegionUs,
			Name:            "United States",
			DefaultTimezone: "America/New_York",
			WorkingDays:     []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		},
	}

	timeZoneTags = map[string][]string{
		RegionIsrael: {"Asia/Jerusalem", "Israel", "Asia/Tel_Aviv"},
		RegionUs: {
			"America/New_York", "America/Chicago", "America/Denver",
			"America/Los_Angeles", "US/Eastern", "US/Central", "US/Pacific",
		},
	}
)

// DetectRegion maps a timezone to a region code. Unknown zones fall back
// to a Monday to Friday working week.
func DetectRegion(tz string) string {
	for region, zones := range timeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return RegionUs
}

// DefaultWorkingDays returns the default working week for a timezone.
func DefaultWorkingDays(tz string) []string {
	region := Regions[DetectRegion(tz)]
	days := make([]string, len(region.WorkingDays))
	copy(days, region.WorkingDays)
	return days
}
