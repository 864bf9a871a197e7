package validator

import (
	"io"
	"testing"

	"bookable/pkg/logger"
	"bookable/pkg/model"
)

func newTestValidator() *AvailabilityValidator {
	return NewAvailabilityValidator(logger.New(logger.Config{Output: io.Discard}))
}

func validProfile() *model.AvailabilityProfile {
	return &model.AvailabilityProfile{
		HostID:   "host-1",
		TimeZone: "America/New_York",
		Weekly: []model.WeeklyRule{
			{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "17:00"}}},
		},
	}
}

func TestValidateProfile(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validProfile()); err != nil {
		t.Errorf("valid profile rejected: %v", err)
	}
}

func TestValidateProfileErrors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(p *model.AvailabilityProfile)
	}{
		{
			name:   "missing host",
			mutate: func(p *model.AvailabilityProfile) { p.HostID = "" },
		},
		{
			name:   "bad timezone",
			mutate: func(p *model.AvailabilityProfile) { p.TimeZone = "Not/A_Zone" },
		},
		{
			name: "bad wall clock",
			mutate: func(p *model.AvailabilityProfile) {
				p.Weekly[0].Ranges[0].Start = "9am"
			},
		},
		{
			name: "inverted range",
			mutate: func(p *model.AvailabilityProfile) {
				p.Weekly[0].Ranges[0] = model.TimeRange{Start: "17:00", End: "09:00"}
			},
		},
		{
			name: "unknown weekday",
			mutate: func(p *model.AvailabilityProfile) {
				p.Weekly[0].DayOfWeek = "Funday"
			},
		},
		{
			name: "bad override date",
			mutate: func(p *model.AvailabilityProfile) {
				p.Overrides = []model.DateOverride{{Date: "03/02/2026"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			if err := v.Validate(p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateOverlappingRangesWithinDay(t *testing.T) {
	v := newTestValidator()

	p := validProfile()
	p.Weekly = []model.WeeklyRule{
		{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "12:00"}}},
		{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "11:00", End: "17:00"}}},
	}

	if err := v.Validate(p); err == nil {
		t.Error("overlapping ranges on the same day must be rejected")
	}

	// Touching ranges are fine
	p.Weekly = []model.WeeklyRule{
		{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "09:00", End: "12:00"}}},
		{DayOfWeek: "Monday", Ranges: []model.TimeRange{{Start: "12:00", End: "17:00"}}},
	}
	if err := v.Validate(p); err != nil {
		t.Errorf("touching ranges rejected: %v", err)
	}
}

func TestValidateDuplicateOverrides(t *testing.T) {
	v := newTestValidator()

	p := validProfile()
	p.Overrides = []model.DateOverride{
		{Date: "2026-03-02", Ranges: []model.TimeRange{{Start: "10:00", End: "12:00"}}},
		{Date: "2026-03-02"},
	}

	if err := v.Validate(p); err == nil {
		t.Error("duplicate overrides for one date must be rejected")
	}
}

func TestValidateEventType(t *testing.T) {
	v := newTestValidator()

	et := &model.EventType{
		HostID:      "host-1",
		Name:        "Intro Call",
		Slug:        "intro-call",
		DurationMin: 30,
	}
	if err := v.ValidateEventType(et); err != nil {
		t.Errorf("valid event type rejected: %v", err)
	}

	et.DurationMin = 2
	if err := v.ValidateEventType(et); err == nil {
		t.Error("too-short duration must be rejected")
	}
}
