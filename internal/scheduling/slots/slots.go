// Package slots computes bookable slots for an event type over a date range
// by subtracting buffer-expanded busy intervals from resolved availability.
package slots

import (
	"context"
	"errors"
	"time"

	"bookable/internal/scheduling/busy"
	"bookable/internal/scheduling/interval"
	"bookable/internal/scheduling/rules"
	"bookable/pkg/model"
)

var ErrHostHasNoAvailability = errors.New("host has no availability configured")

// Slot is a candidate bookable window. Derived on demand, never persisted.
type Slot struct {
	Interval interval.Interval
}

// Result carries the computed slots. Partial mirrors the aggregator's flag:
// displayed availability may be incomplete when an external source degraded.
type Result struct {
	Slots   []Slot
	Partial bool
}

// BusySource abstracts the aggregator for testing.
type BusySource interface {
	BusyIntervals(ctx context.Context, hostID string, window interval.Interval, buffer busy.BufferPolicy) (busy.Result, error)
}

// Query describes one resolution request. FromDate and ToDate are inclusive
// calendar dates in the rule set's zone.
type Query struct {
	HostID    string
	RuleSet   rules.RuleSet
	EventType *model.EventType
	FromDate  string
	ToDate    string
}

type Resolver struct {
	rules    *rules.Resolver
	busy     BusySource
	leadTime time.Duration
	now      func() time.Time
}

func NewResolver(ruleResolver *rules.Resolver, busySource BusySource, leadTime time.Duration) *Resolver {
	return &Resolver{
		rules:    ruleResolver,
		busy:     busySource,
		leadTime: leadTime,
		now:      time.Now,
	}
}

// WithNow overrides the clock. Used by tests.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve computes bookable slots for every date in the query range, in
// ascending start order. An empty result is not an error; only a host with
// no rules configured at all yields ErrHostHasNoAvailability.
func (r *Resolver) Resolve(ctx context.Context, q Query) (Result, error) {
	if q.RuleSet.IsEmpty() {
		return Result{}, ErrHostHasNoAvailability
	}

	loc, err := time.LoadLocation(q.RuleSet.Zone)
	if err != nil {
		return Result{}, err
	}

	from, err := time.ParseInLocation(rules.DateLayout, q.FromDate, loc)
	if err != nil {
		return Result{}, err
	}
	to, err := time.ParseInLocation(rules.DateLayout, q.ToDate, loc)
	if err != nil {
		return Result{}, err
	}

	cutoff := r.now().Add(r.leadTime)
	result := Result{Slots: []Slot{}}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		free, partial, err := r.freeIntervals(ctx, q, day.Format(rules.DateLayout))
		if err != nil {
			return Result{}, err
		}
		result.Partial = result.Partial || partial

		for _, f := range free {
			result.Slots = append(result.Slots, stepThrough(f, q.EventType, cutoff)...)
		}
	}

	return result, nil
}

// IsFree re-resolves the day containing target and reports whether target
// lies entirely inside a fresh free interval. Used by the booking path,
// which must never trust a slot computed earlier by the caller.
func (r *Resolver) IsFree(ctx context.Context, q Query, target interval.Interval) (bool, bool, error) {
	if q.RuleSet.IsEmpty() {
		return false, false, ErrHostHasNoAvailability
	}

	loc, err := time.LoadLocation(q.RuleSet.Zone)
	if err != nil {
		return false, false, err
	}

	date := target.Start.In(loc).Format(rules.DateLayout)
	free, partial, err := r.freeIntervals(ctx, q, date)
	if err != nil {
		return false, partial, err
	}

	if target.Start.Before(r.now().Add(r.leadTime)) {
		return false, partial, nil
	}

	for _, f := range free {
		if f.Contains(target) {
			return true, partial, nil
		}
	}
	return false, partial, nil
}

func (r *Resolver) freeIntervals(ctx context.Context, q Query, date string) ([]interval.Interval, bool, error) {
	open, err := r.rules.ResolveDay(q.RuleSet, date)
	if err != nil {
		return nil, false, err
	}
	if len(open) == 0 {
		return nil, false, nil
	}

	buffer := busy.BufferPolicy{
		Before: time.Duration(q.EventType.BufferBeforeMin) * time.Minute,
		After:  time.Duration(q.EventType.BufferAfterMin) * time.Minute,
	}
	// A block just outside the open span still removes slots once its buffer
	// is applied, so the fetch window must include that margin.
	window := interval.Interval{
		Start: open[0].Start.Add(-buffer.After),
		End:   open[len(open)-1].End.Add(buffer.Before),
	}

	busyRes, err := r.busy.BusyIntervals(ctx, q.HostID, window, buffer)
	if err != nil {
		return nil, false, err
	}

	free := make([]interval.Interval, 0, len(open))
	for _, o := range open {
		free = append(free, interval.SubtractMany(o, busyRes.Intervals)...)
	}
	return free, busyRes.Partial, nil
}

// stepThrough walks a free interval in step increments anchored at its start,
// emitting duration-length slots that fit entirely. The trailing remainder
// shorter than one slot is dropped, never rounded into a short slot.
func stepThrough(free interval.Interval, et *model.EventType, cutoff time.Time) []Slot {
	duration := et.Duration()
	step := time.Duration(et.Step()) * time.Minute

	var out []Slot
	for start := free.Start; ; start = start.Add(step) {
		end := start.Add(duration)
		if end.After(free.End) {
			break
		}
		if start.Before(cutoff) {
			continue
		}
		out = append(out, Slot{Interval: interval.Interval{Start: start, End: end}})
	}
	return out
}
