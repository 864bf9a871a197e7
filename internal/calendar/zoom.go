package calendar

import (
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

const defaultZoomBaseURL = "https://api.zoom.us/v2"

// ZoomClient reads scheduled meetings as busy blocks. Zoom has no general
// calendar write API, so only the Reader side is implemented.
type ZoomClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewZoomClient(log *logger.Logger) *ZoomClient {
	return &ZoomClient{
		baseURL:    defaultZoomBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *ZoomClient) WithBaseURL(baseURL string) *ZoomClient {
	c.baseURL = baseURL
	return c
}

type zoomMeeting struct {
	UUID      string `json:"uuid"`
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}

type zoomMeetingsResponse struct {
	NextPageToken string        `json:"next_page_token"`
	Meetings      []zoomMeeting `json:"meetings"`
}

func (c *ZoomClient) Busy(ctx context.Context, conn *model.CalendarConnection, window interval.Interval) ([]model.BusyBlock, error) {
	var blocks []model.BusyBlock
	pageToken := ""

	for {
		resp, err := c.listMeetings(ctx, conn, pageToken)
		if err != nil {
			return nil, err
		}

		for _, meeting := range resp.Meetings {
			start, err := time.Parse(time.RFC3339, meeting.StartTime)
			if err != nil {
				c.log.Warn("Skipping meeting with bad start time", "uuid", meeting.UUID, "start", meeting.StartTime)
				continue
			}
			end := start.Add(time.Duration(meeting.Duration) * time.Minute)
			if !start.Before(window.End) || !end.After(window.Start) {
				continue
			}
			blocks = append(blocks, model.BusyBlock{
				Start:    start,
				End:      end,
				Source:   model.BusySourceExternal,
				SourceID: meeting.UUID,
			})
		}

		if resp.NextPageToken == "" {
			return blocks, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *ZoomClient) listMeetings(ctx context.Context, conn *model.CalendarConnection, pageToken string) (*zoomMeetingsResponse, error) {
	query := url.Values{}
	query.Set("type", "upcoming")
	query.Set("page_size", "300")
	if pageToken != "" {
		query.Set("next_page_token", pageToken)
	}

	endpoint := fmt.Sprintf("%s/users/me/meetings?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build meetings request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meetings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zoom API returned status %d", resp.StatusCode)
	}

	var parsed zoomMeetingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode meetings response: %w", err)
	}
	return &parsed, nil
}
