package calendar

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// basicAuthTransport adds Basic Auth to every CalDAV request.
type basicAuthTransport struct {
	username  string
	password  string
	transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "bookable/1.0")
	return t.transport.RoundTrip(req)
}

// CalDAVClient reads and writes events on a CalDAV server. The connection's
// CalendarID holds the calendar collection path on the server.
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	endpoint     string
	log          *logger.Logger
}

func NewCalDAVClient(endpoint, username, password string, log *logger.Logger) (*CalDAVClient, error) {
	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username:  username,
			password:  password,
			transport: http.DefaultTransport,
		},
	}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	return &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		endpoint:     endpoint,
		log:          log,
	}, nil
}

func (c *CalDAVClient) Busy(ctx context.Context, conn *model.CalendarConnection, window interval.Interval) ([]model.BusyBlock, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{Name: ical.CompEvent, AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: window.Start,
				End:   window.End,
			}},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, conn.CalendarID, query)
	if err != nil {
		return nil, fmt.Errorf("calendar query failed: %w", err)
	}

	var blocks []model.BusyBlock
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			start, err := ev.DateTimeStart(time.UTC)
			if err != nil {
				c.log.Warn("Skipping event with bad start time", "path", obj.Path, "error", err)
				continue
			}
			end, err := ev.DateTimeEnd(time.UTC)
			if err != nil {
				c.log.Warn("Skipping event with bad end time", "path", obj.Path, "error", err)
				continue
			}

			var uid string
			if prop := ev.Props.Get(ical.PropUID); prop != nil {
				uid = prop.Value
			}

			blocks = append(blocks, model.BusyBlock{
				Start:    start,
				End:      end,
				Source:   model.BusySourceExternal,
				SourceID: uid,
			})
		}
	}

	return blocks, nil
}

func (c *CalDAVClient) CreateEvent(ctx context.Context, conn *model.CalendarConnection, event *Event) error {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.End)
	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.InviteeEmail != "" {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", event.InviteeEmail))
		ve.Props.Add(p)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//bookable//EN")
	cal.Children = append(cal.Children, ve)

	writer, err := c.webdavClient.Create(ctx, c.eventPath(conn, event.UID))
	if err != nil {
		return fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	defer writer.Close()

	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	c.log.Info("Created CalDAV event", "calendar", conn.CalendarID, "uid", event.UID)
	return nil
}

func (c *CalDAVClient) DeleteEvent(ctx context.Context, conn *model.CalendarConnection, uid string) error {
	if err := c.webdavClient.RemoveAll(ctx, c.eventPath(conn, uid)); err != nil {
		return fmt.Errorf("failed to delete event on CalDAV server: %w", err)
	}

	c.log.Info("Deleted CalDAV event", "calendar", conn.CalendarID, "uid", uid)
	return nil
}

func (c *CalDAVClient) eventPath(conn *model.CalendarConnection, uid string) string {
	collection := strings.TrimPrefix(conn.CalendarID, c.endpoint)
	return path.Join(collection, fmt.Sprintf("%s.ics", uid))
}
