package slots

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"bookable/internal/scheduling/busy"
	"bookable/internal/scheduling/interval"
	"bookable/internal/scheduling/rules"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type mockBusySource struct {
	busyIntervalsFunc func(ctx context.Context, hostID string, window interval.Interval, buffer busy.BufferPolicy) (busy.Result, error)
}

func (m *mockBusySource) BusyIntervals(ctx context.Context, hostID string, window interval.Interval, buffer busy.BufferPolicy) (busy.Result, error) {
	return m.busyIntervalsFunc(ctx, hostID, window, buffer)
}

func noBusy() *mockBusySource {
	return &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			return busy.Result{Intervals: []interval.Interval{}}, nil
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func utc(d, hour, min int) time.Time {
	return time.Date(2026, 3, d, hour, min, 0, 0, time.UTC)
}

// mondayRules opens 2026-03-02 (a Monday) from start to end UTC wall clock.
func mondayRules(start, end string) rules.RuleSet {
	return rules.RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: start, End: end}}},
		},
	}
}

func eventType(durationMin, stepMin int) *model.EventType {
	return &model.EventType{
		HostID:      "host-1",
		Name:        "Intro Call",
		Slug:        "intro-call",
		DurationMin: durationMin,
		StepMin:     stepMin,
	}
}

func newTestResolver(source BusySource, lead time.Duration) *Resolver {
	ruleResolver := rules.NewResolver(rules.LocationConverter{}).WithNow(fixedNow)
	return NewResolver(ruleResolver, source, lead).WithNow(fixedNow)
}

func query(rs rules.RuleSet, et *model.EventType, from, to string) Query {
	return Query{
		HostID:    "host-1",
		RuleSet:   rs,
		EventType: et,
		FromDate:  from,
		ToDate:    to,
	}
}

func slotStarts(res Result) []time.Time {
	out := make([]time.Time, len(res.Slots))
	for i, s := range res.Slots {
		out[i] = s.Interval.Start
	}
	return out
}

func TestResolveStepping(t *testing.T) {
	// Open 9:00-10:00, duration 30m, step 15m: slots at 9:00, 9:15, 9:30.
	// No slot at 9:45, which would end past 10:00.
	res, err := newTestResolver(noBusy(), 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "10:00"), eventType(30, 15), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 0), utc(2, 9, 15), utc(2, 9, 30)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestResolveStepDefaultsToDuration(t *testing.T) {
	res, err := newTestResolver(noBusy(), 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "11:00"), eventType(30, 0), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 0), utc(2, 9, 30), utc(2, 10, 0), utc(2, 10, 30)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestResolveAnchorsAtFreeStart(t *testing.T) {
	// Busy 9:00-9:10 leaves free starting at 9:10; stepping anchors there,
	// not on a global grid.
	source := &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			return busy.Result{Intervals: []interval.Interval{
				interval.MustNew(utc(2, 9, 0), utc(2, 9, 10)),
			}}, nil
		},
	}

	res, err := newTestResolver(source, 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "10:10"), eventType(30, 30), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 10), utc(2, 9, 40)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestResolveTrailingRemainderDropped(t *testing.T) {
	// Open 9:00-9:50 with 30m duration: one slot at 9:00, the 20m tail
	// never becomes a short slot.
	res, err := newTestResolver(noBusy(), 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "09:50"), eventType(30, 30), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 0)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestResolveLeadTimeCutoff(t *testing.T) {
	// "Now" is 2026-03-01 12:00 UTC. Sunday rules open that afternoon;
	// a 2h lead time hides slots before 14:00.
	rs := rules.RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Sunday", Ranges: []model.TimeRange{{Start: "11:00", End: "16:00"}}},
		},
	}

	res, err := newTestResolver(noBusy(), 2*time.Hour).Resolve(
		context.Background(),
		query(rs, eventType(60, 60), "2026-03-01", "2026-03-01"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(1, 14, 0), utc(1, 15, 0)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestResolveMultiDayAscendingOrder(t *testing.T) {
	rs := rules.RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "10:00"}}},
			{DayOfWeek: "Tuesday", Ranges: []model.TimeRange{{Start: "08:00", End: "09:00"}}},
		},
	}

	res, err := newTestResolver(noBusy(), 0).Resolve(
		context.Background(),
		query(rs, eventType(60, 60), "2026-03-02", "2026-03-03"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 0), utc(3, 8, 0)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}

	for i := 1; i < len(res.Slots); i++ {
		if !res.Slots[i-1].Interval.Start.Before(res.Slots[i].Interval.Start) {
			t.Errorf("slots not ascending at %d", i)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := newTestResolver(noBusy(), 0)
	q := query(mondayRules("09:00", "12:00"), eventType(30, 15), "2026-03-02", "2026-03-02")

	first, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different results")
	}
}

func TestResolvePropagatesPartial(t *testing.T) {
	source := &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			return busy.Result{Intervals: []interval.Interval{}, Partial: true}, nil
		},
	}

	res, err := newTestResolver(source, 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "10:00"), eventType(30, 30), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("degraded source must not fail resolution: %v", err)
	}
	if !res.Partial {
		t.Error("partial flag not propagated")
	}
	if len(res.Slots) == 0 {
		t.Error("expected internal-consistent slots despite degradation")
	}
}

func TestResolveNoRulesConfigured(t *testing.T) {
	_, err := newTestResolver(noBusy(), 0).Resolve(
		context.Background(),
		query(rules.RuleSet{Zone: "UTC"}, eventType(30, 30), "2026-03-02", "2026-03-02"),
	)
	if !errors.Is(err, ErrHostHasNoAvailability) {
		t.Errorf("got %v, want ErrHostHasNoAvailability", err)
	}
}

func TestResolveFullyBookedIsEmptyNotError(t *testing.T) {
	source := &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			return busy.Result{Intervals: []interval.Interval{
				interval.MustNew(utc(2, 0, 0), utc(2, 23, 0)),
			}}, nil
		},
	}

	res, err := newTestResolver(source, 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "17:00"), eventType(30, 30), "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("fully booked must not be an error: %v", err)
	}
	if len(res.Slots) != 0 {
		t.Errorf("expected no slots, got %v", res.Slots)
	}
}

func TestResolveBufferPassedToAggregator(t *testing.T) {
	var captured busy.BufferPolicy
	source := &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			captured = b
			return busy.Result{Intervals: []interval.Interval{}}, nil
		},
	}

	et := eventType(30, 30)
	et.BufferBeforeMin = 10
	et.BufferAfterMin = 5

	_, err := newTestResolver(source, 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "10:00"), et, "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if captured.Before != 10*time.Minute || captured.After != 5*time.Minute {
		t.Errorf("buffer policy = %+v, want 10m/5m", captured)
	}
}

// windowFilteringReader returns only blocks intersecting the requested
// window, mirroring the repository's strict overlap query.
type windowFilteringReader struct {
	blocks []model.BusyBlock
}

func (r *windowFilteringReader) InternalBusy(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
	var out []model.BusyBlock
	for _, b := range r.blocks {
		if b.Start.Before(w.End) && b.End.After(w.Start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func filteredAggregator(blocks ...model.BusyBlock) *busy.Aggregator {
	return busy.NewAggregator(
		&windowFilteringReader{blocks: blocks},
		nil,
		time.Second,
		logger.New(logger.Config{Output: io.Discard}),
	)
}

func TestResolveBufferFromMeetingBeforeOpening(t *testing.T) {
	// A confirmed 8:30-9:00 meeting sits entirely outside the 9:00-10:00
	// open span, but its 10m after-buffer covers 9:00-9:10. The first slot
	// moves to 9:10 even though the meeting itself never overlaps openness.
	agg := filteredAggregator(model.BusyBlock{
		Start:    utc(2, 8, 30),
		End:      utc(2, 9, 0),
		Source:   model.BusySourceInternal,
		SourceID: "res-1",
	})

	et := eventType(30, 30)
	et.BufferAfterMin = 10

	r := newTestResolver(agg, 0)
	q := query(mondayRules("09:00", "10:00"), et, "2026-03-02", "2026-03-02")

	res, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 10)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}

	free, _, err := r.IsFree(context.Background(), q, interval.MustNew(utc(2, 9, 0), utc(2, 9, 30)))
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if free {
		t.Error("9:00-9:30 falls inside the after-buffer and must not be bookable")
	}
}

func TestResolveBufferFromMeetingAfterClosing(t *testing.T) {
	// Mirror case at the far edge: a 10:00-10:30 meeting starts exactly
	// where the open span ends, and its 10m before-buffer eats 9:50-10:00.
	agg := filteredAggregator(model.BusyBlock{
		Start:    utc(2, 10, 0),
		End:      utc(2, 10, 30),
		Source:   model.BusySourceInternal,
		SourceID: "res-2",
	})

	et := eventType(30, 30)
	et.BufferBeforeMin = 10

	res, err := newTestResolver(agg, 0).Resolve(
		context.Background(),
		query(mondayRules("09:00", "10:00"), et, "2026-03-02", "2026-03-02"),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []time.Time{utc(2, 9, 0)}
	if got := slotStarts(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slot starts = %v, want %v", got, want)
	}
}

func TestIsFree(t *testing.T) {
	source := &mockBusySource{
		busyIntervalsFunc: func(ctx context.Context, hostID string, w interval.Interval, b busy.BufferPolicy) (busy.Result, error) {
			return busy.Result{Intervals: []interval.Interval{
				interval.MustNew(utc(2, 10, 0), utc(2, 11, 0)),
			}}, nil
		},
	}

	r := newTestResolver(source, 0)
	q := query(mondayRules("09:00", "17:00"), eventType(30, 30), "2026-03-02", "2026-03-02")

	free, _, err := r.IsFree(context.Background(), q, interval.MustNew(utc(2, 9, 0), utc(2, 9, 30)))
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if !free {
		t.Error("9:00-9:30 should be free")
	}

	taken, _, err := r.IsFree(context.Background(), q, interval.MustNew(utc(2, 10, 30), utc(2, 11, 0)))
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if taken {
		t.Error("10:30-11:00 overlaps busy and must not be free")
	}

	outside, _, err := r.IsFree(context.Background(), q, interval.MustNew(utc(2, 18, 0), utc(2, 18, 30)))
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if outside {
		t.Error("18:00-18:30 is outside availability and must not be free")
	}
}

func TestIsFreeRejectsPastSlot(t *testing.T) {
	rs := rules.RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Sunday", Ranges: []model.TimeRange{{Start: "00:00", End: "23:00"}}},
		},
	}
	r := newTestResolver(noBusy(), 0)
	q := query(rs, eventType(30, 30), "2026-03-01", "2026-03-01")

	// "Now" is 12:00 on 2026-03-01
	free, _, err := r.IsFree(context.Background(), q, interval.MustNew(utc(1, 9, 0), utc(1, 9, 30)))
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if free {
		t.Error("a slot in the past must not be bookable")
	}
}
