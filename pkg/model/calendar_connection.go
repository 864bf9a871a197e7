package model

import "time"

// Supported calendar providers.
const (
	ProviderGoogle  = "google"
	ProviderCalDAV  = "caldav"
	ProviderZoom    = "zoom"
	ProviderMSGraph = "msgraph"
)

// CalendarConnection links a host to one external calendar account.
// Tokens are stored opaquely; refresh happens in the provider clients.
type CalendarConnection struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HostID       string    `json:"host_id" bson:"host_id" validate:"required,min=1,max=64"`
	Provider     string    `json:"provider" bson:"provider" validate:"required,oneof=google caldav zoom msgraph"`
	CalendarID   string    `json:"calendar_id" bson:"calendar_id" validate:"required,min=1,max=256"`
	AccessToken  string    `json:"-" bson:"access_token" validate:"omitempty"`
	RefreshToken string    `json:"-" bson:"refresh_token" validate:"omitempty"`
	TokenExpiry  time.Time `json:"-" bson:"token_expiry" validate:"omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
