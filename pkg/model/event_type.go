package model

import "time"

// EventType describes one bookable meeting kind offered by a host.
// StepMin 0 means the slot step equals the duration.
type EventType struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostID          string    `json:"host_id" bson:"host_id" validate:"required,min=1,max=64"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Slug            string    `json:"slug" bson:"slug" validate:"required,min=2,max=100"`
	DurationMin     int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	StepMin         int       `json:"step_min" bson:"step_min" validate:"omitempty,min=0,max=480"`
	BufferBeforeMin int       `json:"buffer_before_min" bson:"buffer_before_min" validate:"omitempty,min=0,max=240"`
	BufferAfterMin  int       `json:"buffer_after_min" bson:"buffer_after_min" validate:"omitempty,min=0,max=240"`
	TimeZone        string    `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type EventTypeUpdate struct {
	Name            string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMin     *int   `json:"duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	StepMin         *int   `json:"step_min,omitempty" validate:"omitempty,min=0,max=480"`
	BufferBeforeMin *int   `json:"buffer_before_min,omitempty" validate:"omitempty,min=0,max=240"`
	BufferAfterMin  *int   `json:"buffer_after_min,omitempty" validate:"omitempty,min=0,max=240"`
	TimeZone        string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

// Step returns the effective slot step in minutes.
func (e *EventType) Step() int {
	if e.StepMin > 0 {
		return e.StepMin
	}
	return e.DurationMin
}

// Duration returns the meeting length as a time.Duration.
func (e *EventType) Duration() time.Duration {
	return time.Duration(e.DurationMin) * time.Minute
}
