package model

import "time"

// Reservation is a confirmed booking of one slot. Reservations are created
// confirmed or not at all; confirmed to cancelled is the only transition.
type Reservation struct {
	ID           string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	HostID       string     `json:"host_id" bson:"host_id" validate:"required,min=1,max=64"`
	EventTypeID  string     `json:"event_type_id" bson:"event_type_id" validate:"required,mongodb"`
	StartTime    time.Time  `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time  `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string     `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	InviteeName  string     `json:"invitee_name" bson:"invitee_name" validate:"required,min=2,max=100"`
	InviteeEmail string     `json:"invitee_email" bson:"invitee_email" validate:"required,email"`
	Notes        string     `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=1000"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty" validate:"omitempty"`
}

// ReservationRequest is the inbound booking payload.
type ReservationRequest struct {
	HostID       string    `json:"host_id" validate:"required,min=1,max=64"`
	EventTypeID  string    `json:"event_type_id" validate:"required,mongodb"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	InviteeName  string    `json:"invitee_name" validate:"required,min=2,max=100"`
	InviteeEmail string    `json:"invitee_email" validate:"required,email"`
	Notes        string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
