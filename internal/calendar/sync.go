package calendar

import (
	"context"
	"fmt"

	"bookable/internal/calendar/repository"
	"bookable/pkg/kafka"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

// Syncer mirrors reservation events to the host's external calendars. It
// runs as a Kafka consumer so a calendar outage never blocks booking.
type Syncer struct {
	connections repository.ConnectionRepository
	registry    *Registry
	log         *logger.Logger
}

func NewSyncer(connections repository.ConnectionRepository, registry *Registry, log *logger.Logger) *Syncer {
	return &Syncer{
		connections: connections,
		registry:    registry,
		log:         log,
	}
}

// HandleMessage dispatches one reservation event. Unknown event types are
// acknowledged without processing so the topic can evolve.
func (s *Syncer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	switch msg.GetEventType() {
	case model.EventTypeReservationConfirmed:
		var event model.ReservationConfirmedEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode confirmed event", err)
		}
		return s.handleConfirmed(ctx, &event)
	case model.EventTypeReservationCancelled:
		var event model.ReservationCancelledEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode cancelled event", err)
		}
		return s.handleCancelled(ctx, &event)
	default:
		s.log.Warn("Ignoring unknown event type", "event_type", msg.GetEventType())
		return nil
	}
}

func (s *Syncer) handleConfirmed(ctx context.Context, event *model.ReservationConfirmedEvent) error {
	calEvent := &Event{
		UID:          event.ReservationID,
		Title:        fmt.Sprintf("Booking: %s", event.InviteeName),
		Description:  fmt.Sprintf("Booked by %s (%s)", event.InviteeName, event.InviteeEmail),
		Start:        event.StartTime,
		End:          event.EndTime,
		InviteeEmail: event.InviteeEmail,
	}

	return s.forEachWriter(ctx, event.HostID, func(writer Writer, conn *model.CalendarConnection) error {
		return writer.CreateEvent(ctx, conn, calEvent)
	})
}

func (s *Syncer) handleCancelled(ctx context.Context, event *model.ReservationCancelledEvent) error {
	return s.forEachWriter(ctx, event.HostID, func(writer Writer, conn *model.CalendarConnection) error {
		return writer.DeleteEvent(ctx, conn, event.ReservationID)
	})
}

func (s *Syncer) forEachWriter(ctx context.Context, hostID string, fn func(Writer, *model.CalendarConnection) error) error {
	connections, err := s.connections.FindByHost(ctx, hostID)
	if err != nil {
		return kafka.NewTransientError("failed to load calendar connections", err)
	}

	var failed int
	for _, conn := range connections {
		writer, ok := s.registry.Writer(conn.Provider)
		if !ok {
			continue
		}
		if err := fn(writer, conn); err != nil {
			s.log.Error("Calendar sync failed for connection",
				"host_id", hostID,
				"provider", conn.Provider,
				"connection_id", conn.ID,
				"error", err,
			)
			failed++
		}
	}

	if failed > 0 {
		return kafka.NewTransientError(
			fmt.Sprintf("calendar sync failed for %d of %d connections", failed, len(connections)), nil)
	}
	return nil
}
