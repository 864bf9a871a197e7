package calendar

import (
	"context"
	"fmt"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleClient talks to the Google Calendar API using the per-connection
// OAuth tokens stored on the calendar connection.
type GoogleClient struct {
	oauthConfig *oauth2.Config
	log         *logger.Logger
}

func NewGoogleClient(clientID, clientSecret string, log *logger.Logger) *GoogleClient {
	return &GoogleClient{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{gcalendar.CalendarEventsScope, gcalendar.CalendarReadonlyScope},
		},
		log: log,
	}
}

func (c *GoogleClient) service(ctx context.Context, conn *model.CalendarConnection) (*gcalendar.Service, error) {
	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}
	httpClient := c.oauthConfig.Client(ctx, token)
	service, err := gcalendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

func (c *GoogleClient) Busy(ctx context.Context, conn *model.CalendarConnection, window interval.Interval) ([]model.BusyBlock, error) {
	service, err := c.service(ctx, conn)
	if err != nil {
		return nil, err
	}

	resp, err := service.Freebusy.Query(&gcalendar.FreeBusyRequest{
		TimeMin: window.Start.Format(time.RFC3339),
		TimeMax: window.End.Format(time.RFC3339),
		Items:   []*gcalendar.FreeBusyRequestItem{{Id: conn.CalendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	info, ok := resp.Calendars[conn.CalendarID]
	if !ok {
		return nil, nil
	}

	var blocks []model.BusyBlock
	for _, period := range info.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			c.log.Warn("Skipping busy period with bad start time", "start", period.Start)
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			c.log.Warn("Skipping busy period with bad end time", "end", period.End)
			continue
		}
		blocks = append(blocks, model.BusyBlock{
			Start:  start,
			End:    end,
			Source: model.BusySourceExternal,
		})
	}

	// FreeBusy collapses overlapping events and strips identifiers, so
	// mirrored reservations are deduped through the events list instead.
	events, err := service.Events.List(conn.CalendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("events list failed: %w", err)
	}

	blocks = annotateSourceIDs(blocks, events.Items)
	return blocks, nil
}

// annotateSourceIDs copies event iCal UIDs onto busy blocks that exactly
// match an event's window. Mirrored reservations carry the reservation ID
// as their UID.
func annotateSourceIDs(blocks []model.BusyBlock, events []*gcalendar.Event) []model.BusyBlock {
	for i, block := range blocks {
		for _, ev := range events {
			if ev.Start == nil || ev.Start.DateTime == "" || ev.End == nil || ev.End.DateTime == "" {
				continue
			}
			start, err1 := time.Parse(time.RFC3339, ev.Start.DateTime)
			end, err2 := time.Parse(time.RFC3339, ev.End.DateTime)
			if err1 != nil || err2 != nil {
				continue
			}
			if start.Equal(block.Start) && end.Equal(block.End) {
				blocks[i].SourceID = ev.ICalUID
				break
			}
		}
	}
	return blocks
}

func (c *GoogleClient) CreateEvent(ctx context.Context, conn *model.CalendarConnection, event *Event) error {
	service, err := c.service(ctx, conn)
	if err != nil {
		return err
	}

	gEvent := &gcalendar.Event{
		ICalUID:     event.UID,
		Summary:     event.Title,
		Description: event.Description,
		Start:       &gcalendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &gcalendar.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
	}
	if event.InviteeEmail != "" {
		gEvent.Attendees = []*gcalendar.EventAttendee{{Email: event.InviteeEmail}}
	}

	_, err = service.Events.Import(conn.CalendarID, gEvent).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}

	c.log.Info("Created Google calendar event", "calendar_id", conn.CalendarID, "uid", event.UID)
	return nil
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, conn *model.CalendarConnection, uid string) error {
	service, err := c.service(ctx, conn)
	if err != nil {
		return err
	}

	events, err := service.Events.List(conn.CalendarID).ICalUID(uid).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to look up event by UID: %w", err)
	}

	for _, ev := range events.Items {
		if err := service.Events.Delete(conn.CalendarID, ev.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to delete calendar event: %w", err)
		}
	}

	c.log.Info("Deleted Google calendar event", "calendar_id", conn.CalendarID, "uid", uid)
	return nil
}
