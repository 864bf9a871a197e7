package rules

import (
	"errors"
	"testing"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestResolver() *Resolver {
	return NewResolver(LocationConverter{}).WithNow(fixedNow)
}

func utc(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestResolveDayWeeklyRules(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "12:00"}}},
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "11:00", End: "17:00"}}},
			{DayOfWeek: "Tuesday", Ranges: []model.TimeRange{{Start: "08:00", End: "10:00"}}},
		},
	}

	// 2026-03-02 is a Monday; the two Monday rules union into one block
	open, err := newTestResolver().ResolveDay(rs, "2026-03-02")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}

	want := []interval.Interval{
		interval.MustNew(utc(2026, 3, 2, 9, 0), utc(2026, 3, 2, 17, 0)),
	}
	assertIntervals(t, open, want)
}

func TestResolveDayNoRulesForWeekday(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
	}

	// 2026-03-07 is a Saturday
	open, err := newTestResolver().ResolveDay(rs, "2026-03-07")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("expected no open intervals, got %v", open)
	}
}

func TestResolveDayEmptyOverrideBlocksDay(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
		Overrides: []model.DateOverride{
			{Date: "2026-03-02", Ranges: []model.TimeRange{}},
		},
	}

	open, err := newTestResolver().ResolveDay(rs, "2026-03-02")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("empty override must block the whole day, got %v", open)
	}
}

func TestResolveDayOverrideReplacesWeekly(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
		Overrides: []model.DateOverride{
			{Date: "2026-03-02", Ranges: []model.TimeRange{{Start: "14:00", End: "15:00"}}},
		},
	}

	open, err := newTestResolver().ResolveDay(rs, "2026-03-02")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}

	want := []interval.Interval{
		interval.MustNew(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 15, 0)),
	}
	assertIntervals(t, open, want)
}

func TestResolveDayPastOverrideIgnored(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
		Overrides: []model.DateOverride{
			// 2026-02-23 is a Monday before the fixed "now" of 2026-03-01
			{Date: "2026-02-23", Ranges: []model.TimeRange{}},
		},
	}

	open, err := newTestResolver().ResolveDay(rs, "2026-02-23")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}

	// The stale override no longer applies, so the weekly rule wins
	want := []interval.Interval{
		interval.MustNew(utc(2026, 2, 23, 9, 0), utc(2026, 2, 23, 17, 0)),
	}
	assertIntervals(t, open, want)
}

func TestResolveDayTimezoneConversion(t *testing.T) {
	rs := RuleSet{
		Zone: "America/New_York",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "10:00"}}},
		},
	}

	// EST (UTC-5) on 2026-03-02
	open, err := newTestResolver().ResolveDay(rs, "2026-03-02")
	if err != nil {
		t.Fatalf("ResolveDay: %v", err)
	}

	want := []interval.Interval{
		interval.MustNew(utc(2026, 3, 2, 14, 0), utc(2026, 3, 2, 15, 0)),
	}
	assertIntervals(t, open, want)
}

func TestResolveDayInvalidTimeRange(t *testing.T) {
	rs := RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "17:00", End: "09:00"}}},
		},
	}

	_, err := newTestResolver().ResolveDay(rs, "2026-03-02")
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("inverted range: got %v, want ErrInvalidTimeRange", err)
	}
}

func TestResolveDayUnknownZone(t *testing.T) {
	rs := RuleSet{Zone: "Not/A_Zone"}
	if _, err := newTestResolver().ResolveDay(rs, "2026-03-02"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(RuleSet{}).IsEmpty() {
		t.Error("empty rule set not reported empty")
	}

	withWeekly := RuleSet{Weekly: []model.WeeklyRule{{DayOfWeek: "Monday"}}}
	if withWeekly.IsEmpty() {
		t.Error("rule set with weekly rules reported empty")
	}

	withOverride := RuleSet{Overrides: []model.DateOverride{{Date: "2026-03-02"}}}
	if withOverride.IsEmpty() {
		t.Error("rule set with overrides reported empty")
	}
}

func assertIntervals(t *testing.T, got, want []interval.Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d intervals %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d: got %v-%v, want %v-%v",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
