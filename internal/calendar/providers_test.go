package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/model"
)

func window(t *testing.T) interval.Interval {
	t.Helper()
	return interval.MustNew(
		time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 3, 5, 0, 0, 0, 0, time.UTC),
	)
}

func TestZoomBusy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer zoom-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"meetings": [
				{"uuid": "m-1", "id": 1, "start_time": "2030-03-04T10:00:00Z", "duration": 45},
				{"uuid": "m-2", "id": 2, "start_time": "2030-03-10T10:00:00Z", "duration": 30},
				{"uuid": "m-3", "id": 3, "start_time": "not-a-time", "duration": 30}
			]
		}`))
	}))
	defer server.Close()

	client := NewZoomClient(testLog()).WithBaseURL(server.URL)
	conn := &model.CalendarConnection{Provider: model.ProviderZoom, AccessToken: "zoom-token"}

	blocks, err := client.Busy(context.Background(), conn, window(t))
	if err != nil {
		t.Fatalf("Busy failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (outside-window and malformed meetings dropped)", len(blocks))
	}
	if blocks[0].SourceID != "m-1" {
		t.Errorf("SourceID = %q, want m-1", blocks[0].SourceID)
	}
	wantEnd := time.Date(2030, 3, 4, 10, 45, 0, 0, time.UTC)
	if !blocks[0].End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", blocks[0].End, wantEnd)
	}
	if blocks[0].Source != model.BusySourceExternal {
		t.Errorf("Source = %q, want %q", blocks[0].Source, model.BusySourceExternal)
	}
}

func TestZoomBusyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewZoomClient(testLog()).WithBaseURL(server.URL)
	conn := &model.CalendarConnection{Provider: model.ProviderZoom, AccessToken: "expired"}

	if _, err := client.Busy(context.Background(), conn, window(t)); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestMSGraphBusy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer graph-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"value": [
				{
					"id": "ev-1",
					"iCalUId": "res-123",
					"subject": "Booking: Dana Levi",
					"start": {"dateTime": "2030-03-04T10:00:00.0000000", "timeZone": "UTC"},
					"end": {"dateTime": "2030-03-04T11:00:00.0000000", "timeZone": "UTC"}
				},
				{
					"id": "ev-2",
					"iCalUId": "other",
					"isCancelled": true,
					"start": {"dateTime": "2030-03-04T12:00:00.0000000", "timeZone": "UTC"},
					"end": {"dateTime": "2030-03-04T13:00:00.0000000", "timeZone": "UTC"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewMSGraphClient(testLog()).WithBaseURL(server.URL)
	conn := &model.CalendarConnection{Provider: model.ProviderMSGraph, AccessToken: "graph-token"}

	blocks, err := client.Busy(context.Background(), conn, window(t))
	if err != nil {
		t.Fatalf("Busy failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (cancelled events dropped)", len(blocks))
	}
	if blocks[0].SourceID != "res-123" {
		t.Errorf("SourceID = %q, want res-123", blocks[0].SourceID)
	}
	wantStart := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	if !blocks[0].Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", blocks[0].Start, wantStart)
	}
}

func TestConnectionBusyReaderFansOut(t *testing.T) {
	zoomServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meetings": [{"uuid": "m-1", "start_time": "2030-03-04T09:00:00Z", "duration": 30}]}`))
	}))
	defer zoomServer.Close()

	registry := NewRegistry()
	registry.RegisterReader(model.ProviderZoom, NewZoomClient(testLog()).WithBaseURL(zoomServer.URL))

	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			return []*model.CalendarConnection{
				{ID: "conn-1", HostID: hostID, Provider: model.ProviderZoom, AccessToken: "tok"},
				{ID: "conn-2", HostID: hostID, Provider: "unknown-provider"},
			}, nil
		},
	}

	reader := NewConnectionBusyReader(repo, registry, testLog())
	blocks, err := reader.ExternalBusy(context.Background(), "host-1", window(t))
	if err != nil {
		t.Fatalf("ExternalBusy failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (unknown provider skipped)", len(blocks))
	}
}
