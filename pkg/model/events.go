package model

import "time"

// Kafka topics and event types for reservation fan-out.
const (
	TopicReservationEvents    = "reservation-events"
	TopicReservationEventsDLQ = "reservation-events-dlq"

	EventTypeReservationConfirmed = "reservation.confirmed"
	EventTypeReservationCancelled = "reservation.cancelled"
)

// ReservationConfirmedEvent is published after a booking commits.
// Consumers (notifications, outbound calendar sync) treat it as
// fire and forget from the booking path's perspective.
type ReservationConfirmedEvent struct {
	ReservationID string    `json:"reservation_id"`
	HostID        string    `json:"host_id"`
	EventTypeID   string    `json:"event_type_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	InviteeName   string    `json:"invitee_name"`
	InviteeEmail  string    `json:"invitee_email"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// ReservationCancelledEvent is published after a cancellation commits.
type ReservationCancelledEvent struct {
	ReservationID string    `json:"reservation_id"`
	HostID        string    `json:"host_id"`
	EventTypeID   string    `json:"event_type_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CancelledAt   time.Time `json:"cancelled_at"`
}
