// Package rules resolves a host's recurring weekly availability and
// date-specific overrides into concrete open intervals for a calendar date.
package rules

import (
	"errors"
	"fmt"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/model"
)

const DateLayout = "2006-01-02"

var ErrInvalidTimeRange = errors.New("time range end must be after start and must not cross midnight")

// RuleSet is one host's availability profile in resolvable form.
type RuleSet struct {
	Weekly    []model.WeeklyRule
	Overrides []model.DateOverride
	Zone      string
}

// FromProfile builds a RuleSet from a stored availability profile.
func FromProfile(p *model.AvailabilityProfile) RuleSet {
	return RuleSet{
		Weekly:    p.Weekly,
		Overrides: p.Overrides,
		Zone:      p.TimeZone,
	}
}

// IsEmpty reports whether the host has no availability configured at all.
func (rs RuleSet) IsEmpty() bool {
	return len(rs.Weekly) == 0 && len(rs.Overrides) == 0
}

// Resolver converts rule sets into open UTC intervals.
type Resolver struct {
	conv Converter
	now  func() time.Time
}

func NewResolver(conv Converter) *Resolver {
	return &Resolver{conv: conv, now: time.Now}
}

// WithNow overrides the clock. Used by tests.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// ResolveDay produces the open UTC intervals for one calendar date in the
// host's zone. An override for the date, even with no ranges, fully replaces
// the weekly rules. Overrides dated strictly before today are ignored here
// rather than scrubbed at write time, so a stale profile still resolves
// correctly.
func (r *Resolver) ResolveDay(rs RuleSet, date string) ([]interval.Interval, error) {
	loc, err := time.LoadLocation(rs.Zone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", rs.Zone, err)
	}

	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	ranges, overridden := r.overrideFor(rs, date, loc)
	if !overridden {
		weekday := day.Weekday().String()
		for _, rule := range rs.Weekly {
			if rule.DayOfWeek == weekday {
				ranges = append(ranges, rule.Ranges...)
			}
		}
	}

	open := make([]interval.Interval, 0, len(ranges))
	for _, tr := range ranges {
		iv, err := r.toInterval(date, tr, rs.Zone)
		if err != nil {
			return nil, err
		}
		open = append(open, iv)
	}

	return interval.MergeOverlapping(open), nil
}

// overrideFor returns the override ranges for date if an active override
// exists. The boolean distinguishes "override with no ranges" (fully
// unavailable) from "no override".
func (r *Resolver) overrideFor(rs RuleSet, date string, loc *time.Location) ([]model.TimeRange, bool) {
	today := r.now().In(loc).Format(DateLayout)

	for _, ov := range rs.Overrides {
		if ov.Date != date {
			continue
		}
		if ov.Date < today {
			return nil, false
		}
		return ov.Ranges, true
	}
	return nil, false
}

func (r *Resolver) toInterval(date string, tr model.TimeRange, zone string) (interval.Interval, error) {
	if tr.End <= tr.Start {
		return interval.Interval{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, tr.Start, tr.End)
	}

	start, err := r.conv.ToUTC(date, tr.Start, zone)
	if err != nil {
		return interval.Interval{}, err
	}
	end, err := r.conv.ToUTC(date, tr.End, zone)
	if err != nil {
		return interval.Interval{}, err
	}

	return interval.New(start, end)
}
