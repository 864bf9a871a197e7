// Package interval implements half-open time interval arithmetic.
// An Interval covers [Start, End); all operations are pure and total
// except construction, which rejects empty and inverted ranges.
package interval

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval is an immutable half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// MustNew panics on invalid bounds. Reserved for tests and literal fixtures.
func MustNew(start, end time.Time) Interval {
	iv, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

func (a Interval) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Intersects reports whether a and b share any instant.
// Touching endpoints do not intersect: [1,2) and [2,3) are disjoint.
func (a Interval) Intersects(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Intersection returns the overlap of a and b, and whether one exists.
func (a Interval) Intersection(b Interval) (Interval, bool) {
	if !a.Intersects(b) {
		return Interval{}, false
	}
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return Interval{Start: start, End: end}, true
}

// Contains reports whether b lies entirely within a.
func (a Interval) Contains(b Interval) bool {
	return !b.Start.Before(a.Start) && !b.End.After(a.End)
}

// Subtract returns the portion(s) of a not covered by b.
// The result holds zero, one or two intervals; zero-length pieces are dropped.
func (a Interval) Subtract(b Interval) []Interval {
	if !a.Intersects(b) {
		return []Interval{a}
	}

	out := make([]Interval, 0, 2)
	if a.Start.Before(b.Start) {
		out = append(out, Interval{Start: a.Start, End: b.Start})
	}
	if b.End.Before(a.End) {
		out = append(out, Interval{Start: b.End, End: a.End})
	}
	return out
}

// Expand widens the interval by before and after. Negative paddings are
// ignored rather than shrinking the interval.
func (a Interval) Expand(before, after time.Duration) Interval {
	if before > 0 {
		a.Start = a.Start.Add(-before)
	}
	if after > 0 {
		a.End = a.End.Add(after)
	}
	return a
}

// SubtractMany removes every busy interval from a. The busy list is merged
// internally, so callers may pass it unsorted and overlapping. The result is
// ascending and pairwise non-overlapping.
func SubtractMany(a Interval, busy []Interval) []Interval {
	merged := MergeOverlapping(busy)

	remaining := []Interval{a}
	for _, b := range merged {
		next := make([]Interval, 0, len(remaining)+1)
		for _, r := range remaining {
			next = append(next, r.Subtract(b)...)
		}
		remaining = next
		if len(remaining) == 0 {
			break
		}
	}
	return remaining
}

// MergeOverlapping sorts intervals by start and coalesces any pair where the
// next interval begins at or before the accumulated end. Touching intervals
// merge into one.
func MergeOverlapping(list []Interval) []Interval {
	if len(list) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := make([]Interval, 0, len(sorted))
	acc := sorted[0]
	for _, iv := range sorted[1:] {
		if !iv.Start.After(acc.End) {
			if iv.End.After(acc.End) {
				acc.End = iv.End
			}
			continue
		}
		out = append(out, acc)
		acc = iv
	}
	return append(out, acc)
}
