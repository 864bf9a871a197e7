package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

const defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// graphTimeLayout is what Graph returns for dateTime fields when the
// Prefer header requests UTC.
const graphTimeLayout = "2006-01-02T15:04:05.9999999"

// MSGraphClient reads and writes Outlook calendar events through the
// Microsoft Graph API.
type MSGraphClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewMSGraphClient(log *logger.Logger) *MSGraphClient {
	return &MSGraphClient{
		baseURL:    defaultGraphBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *MSGraphClient) WithBaseURL(baseURL string) *MSGraphClient {
	c.baseURL = baseURL
	return c
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID          string        `json:"id,omitempty"`
	ICalUID     string        `json:"iCalUId,omitempty"`
	Subject     string        `json:"subject,omitempty"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
	IsCancelled bool          `json:"isCancelled,omitempty"`
}

type graphEventsResponse struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

func (c *MSGraphClient) Busy(ctx context.Context, conn *model.CalendarConnection, window interval.Interval) ([]model.BusyBlock, error) {
	query := url.Values{}
	query.Set("startDateTime", window.Start.UTC().Format(time.RFC3339))
	query.Set("endDateTime", window.End.UTC().Format(time.RFC3339))

	endpoint := fmt.Sprintf("%s/me/calendarView?%s", c.baseURL, query.Encode())

	var blocks []model.BusyBlock
	for endpoint != "" {
		page, err := c.fetchEvents(ctx, conn, endpoint)
		if err != nil {
			return nil, err
		}

		for _, ev := range page.Value {
			if ev.IsCancelled {
				continue
			}
			start, err := parseGraphTime(ev.Start)
			if err != nil {
				c.log.Warn("Skipping event with bad start time", "id", ev.ID, "error", err)
				continue
			}
			end, err := parseGraphTime(ev.End)
			if err != nil {
				c.log.Warn("Skipping event with bad end time", "id", ev.ID, "error", err)
				continue
			}
			blocks = append(blocks, model.BusyBlock{
				Start:    start,
				End:      end,
				Source:   model.BusySourceExternal,
				SourceID: ev.ICalUID,
			})
		}

		endpoint = page.NextLink
	}

	return blocks, nil
}

func (c *MSGraphClient) fetchEvents(ctx context.Context, conn *model.CalendarConnection, endpoint string) (*graphEventsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar view request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar view request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}

	var parsed graphEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode calendar view response: %w", err)
	}
	return &parsed, nil
}

func (c *MSGraphClient) CreateEvent(ctx context.Context, conn *model.CalendarConnection, event *Event) error {
	payload := graphEvent{
		ICalUID: event.UID,
		Subject: event.Title,
		Start:   graphDateTime{DateTime: event.Start.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
		End:     graphDateTime{DateTime: event.End.UTC().Format(graphTimeLayout), TimeZone: "UTC"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/events", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build create event request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create event request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}

	c.log.Info("Created Outlook event", "uid", event.UID)
	return nil
}

func (c *MSGraphClient) DeleteEvent(ctx context.Context, conn *model.CalendarConnection, uid string) error {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("iCalUId eq '%s'", uid))
	endpoint := fmt.Sprintf("%s/me/events?%s", c.baseURL, query.Encode())

	page, err := c.fetchEvents(ctx, conn, endpoint)
	if err != nil {
		return err
	}

	for _, ev := range page.Value {
		deleteEndpoint := fmt.Sprintf("%s/me/events/%s", c.baseURL, ev.ID)
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteEndpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build delete event request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+conn.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("delete event request failed: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("graph API returned status %d", resp.StatusCode)
		}
	}

	c.log.Info("Deleted Outlook event", "uid", uid)
	return nil
}

func parseGraphTime(dt graphDateTime) (time.Time, error) {
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		parsed, err := time.LoadLocation(dt.TimeZone)
		if err == nil {
			loc = parsed
		}
	}
	t, err := time.ParseInLocation(graphTimeLayout, dt.DateTime, loc)
	if err != nil {
		// Some endpoints return plain RFC3339.
		t, err = time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}
