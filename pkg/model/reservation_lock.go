package model

import "time"

// ReservationLock is an advisory lock preventing concurrent booking creation
// for the same slot. The _id encodes host, event type and start time, so a
// second insert for the same slot fails on the unique index.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
