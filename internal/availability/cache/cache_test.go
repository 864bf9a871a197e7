package cache

import (
	"testing"
	"time"

	"bookable/internal/scheduling/rules"
	"bookable/pkg/model"
)

func sampleRuleSet() rules.RuleSet {
	return rules.RuleSet{
		Zone: "UTC",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
	}
}

func TestGetSet(t *testing.T) {
	c := NewRuleSetCache(time.Minute)
	defer c.Close()

	if _, ok := c.Get("host-1"); ok {
		t.Error("unexpected hit on empty cache")
	}

	c.Set("host-1", sampleRuleSet())

	got, ok := c.Get("host-1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.Zone != "UTC" || len(got.Weekly) != 1 {
		t.Errorf("cached rule set mangled: %+v", got)
	}

	if _, ok := c.Get("host-2"); ok {
		t.Error("hit for a different host")
	}
}

func TestExpiry(t *testing.T) {
	c := NewRuleSetCache(10 * time.Millisecond)
	defer c.Close()

	c.Set("host-1", sampleRuleSet())
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("host-1"); ok {
		t.Error("entry served past its TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewRuleSetCache(time.Minute)
	defer c.Close()

	c.Set("host-1", sampleRuleSet())
	c.Invalidate("host-1")

	if _, ok := c.Get("host-1"); ok {
		t.Error("entry served after invalidation")
	}
}
