package model

import "time"

// Busy interval sources.
const (
	BusySourceInternal = "INTERNAL_BOOKING"
	BusySourceExternal = "EXTERNAL_CALENDAR"
)

// BusyBlock is a time range during which a host cannot accept a booking.
// SourceID identifies the originating record; a reservation mirrored into an
// external calendar by outbound sync carries the same SourceID on both sides,
// which is how the read path de-duplicates it.
type BusyBlock struct {
	Start    time.Time `json:"start" bson:"start"`
	End      time.Time `json:"end" bson:"end"`
	Source   string    `json:"source" bson:"source"`
	SourceID string    `json:"source_id" bson:"source_id"`
}
