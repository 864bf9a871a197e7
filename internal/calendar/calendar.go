// Package calendar integrates external calendar providers. Readers feed
// busy blocks into slot resolution; writers mirror confirmed reservations
// out to the host's calendars.
package calendar

import (
	"context"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/model"
)

// Event is the provider-neutral shape written to external calendars. UID
// carries the reservation ID so read-side aggregation can dedupe the
// mirrored event against the internal busy block.
type Event struct {
	UID          string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	InviteeEmail string
}

// Reader fetches busy blocks from one provider for one connection.
type Reader interface {
	Busy(ctx context.Context, conn *model.CalendarConnection, window interval.Interval) ([]model.BusyBlock, error)
}

// Writer mirrors reservations to one provider. Providers without write
// support (Zoom) only register a Reader.
type Writer interface {
	CreateEvent(ctx context.Context, conn *model.CalendarConnection, event *Event) error
	DeleteEvent(ctx context.Context, conn *model.CalendarConnection, uid string) error
}

// Registry maps provider names to their clients.
type Registry struct {
	readers map[string]Reader
	writers map[string]Writer
}

func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]Reader),
		writers: make(map[string]Writer),
	}
}

func (r *Registry) RegisterReader(provider string, reader Reader) {
	r.readers[provider] = reader
}

func (r *Registry) RegisterWriter(provider string, writer Writer) {
	r.writers[provider] = writer
}

func (r *Registry) Reader(provider string) (Reader, bool) {
	reader, ok := r.readers[provider]
	return reader, ok
}

func (r *Registry) Writer(provider string) (Writer, bool) {
	writer, ok := r.writers[provider]
	return writer, ok
}
