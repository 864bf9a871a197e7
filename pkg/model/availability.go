package model

import (
	"bookable/pkg/config"
	"time"
)

// TimeRange is a wall-clock range within a single day, "HH:MM" 24h format.
// End must be after Start; ranges never cross midnight.
type TimeRange struct {
	Start string `json:"start" bson:"start" validate:"required,valid_time_range"`
	End   string `json:"end" bson:"end" validate:"required,valid_time_range"`
}

type WeeklyRule struct {
	DayOfWeek config.Weekday `json:"day_of_week" bson:"day_of_week" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Ranges    []TimeRange    `json:"ranges" bson:"ranges" validate:"required,min=1,max=20,dive"`
}

// DateOverride replaces the weekly rules for one calendar date.
// An empty Ranges list means the host is fully unavailable that day.
type DateOverride struct {
	Date   string      `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Ranges []TimeRange `json:"ranges" bson:"ranges" validate:"omitempty,max=20,dive"`
}

type AvailabilityProfile struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostID    string         `json:"host_id" bson:"host_id" validate:"required,min=1,max=64"`
	TimeZone  string         `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	Weekly    []WeeklyRule   `json:"weekly" bson:"weekly" validate:"omitempty,max=14,dive"`
	Overrides []DateOverride `json:"overrides,omitempty" bson:"overrides" validate:"omitempty,max=366,dive"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type AvailabilityProfileUpdate struct {
	TimeZone  string          `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	Weekly    *[]WeeklyRule   `json:"weekly,omitempty" validate:"omitempty,max=14,dive"`
	Overrides *[]DateOverride `json:"overrides,omitempty" validate:"omitempty,max=366,dive"`
}
