package calendar

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bookable/pkg/kafka"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type mockConnectionRepo struct {
	findByHostFunc func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error)
}

func (m *mockConnectionRepo) Create(ctx context.Context, conn *model.CalendarConnection) error {
	return nil
}
func (m *mockConnectionRepo) FindByID(ctx context.Context, id string) (*model.CalendarConnection, error) {
	return nil, nil
}
func (m *mockConnectionRepo) FindByHost(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
	return m.findByHostFunc(ctx, hostID)
}
func (m *mockConnectionRepo) Delete(ctx context.Context, id string) error { return nil }

type mockWriter struct {
	created []*Event
	deleted []string
	err     error
}

func (m *mockWriter) CreateEvent(ctx context.Context, conn *model.CalendarConnection, event *Event) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, event)
	return nil
}

func (m *mockWriter) DeleteEvent(ctx context.Context, conn *model.CalendarConnection, uid string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, uid)
	return nil
}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func confirmedMessage(t *testing.T) kafka.Message {
	t.Helper()
	return kafka.NewMessage().
		WithKey("host-1").
		WithEventType(model.EventTypeReservationConfirmed).
		WithValue(model.ReservationConfirmedEvent{
			ReservationID: "res-123",
			HostID:        "host-1",
			StartTime:     time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC),
			EndTime:       time.Date(2030, 3, 4, 11, 0, 0, 0, time.UTC),
			InviteeName:   "Dana Levi",
			InviteeEmail:  "dana@example.com",
		}).
		Build()
}

func TestSyncerCreatesEventOnConfirmed(t *testing.T) {
	writer := &mockWriter{}
	registry := NewRegistry()
	registry.RegisterWriter(model.ProviderGoogle, writer)

	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			return []*model.CalendarConnection{
				{ID: "conn-1", HostID: hostID, Provider: model.ProviderGoogle, CalendarID: "primary"},
			}, nil
		},
	}

	syncer := NewSyncer(repo, registry, testLog())
	if err := syncer.HandleMessage(context.Background(), confirmedMessage(t)); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if len(writer.created) != 1 {
		t.Fatalf("created events = %d, want 1", len(writer.created))
	}
	if writer.created[0].UID != "res-123" {
		t.Errorf("event UID = %q, want reservation ID", writer.created[0].UID)
	}
}

func TestSyncerDeletesEventOnCancelled(t *testing.T) {
	writer := &mockWriter{}
	registry := NewRegistry()
	registry.RegisterWriter(model.ProviderCalDAV, writer)

	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			return []*model.CalendarConnection{
				{ID: "conn-1", HostID: hostID, Provider: model.ProviderCalDAV, CalendarID: "/calendars/host/default/"},
			}, nil
		},
	}

	msg := kafka.NewMessage().
		WithKey("host-1").
		WithEventType(model.EventTypeReservationCancelled).
		WithValue(model.ReservationCancelledEvent{
			ReservationID: "res-123",
			HostID:        "host-1",
			CancelledAt:   time.Now().UTC(),
		}).
		Build()

	syncer := NewSyncer(repo, registry, testLog())
	if err := syncer.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if len(writer.deleted) != 1 || writer.deleted[0] != "res-123" {
		t.Errorf("deleted = %v, want [res-123]", writer.deleted)
	}
}

func TestSyncerWriterFailureIsTransient(t *testing.T) {
	writer := &mockWriter{err: errors.New("provider down")}
	registry := NewRegistry()
	registry.RegisterWriter(model.ProviderGoogle, writer)

	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			return []*model.CalendarConnection{
				{ID: "conn-1", HostID: hostID, Provider: model.ProviderGoogle},
			}, nil
		},
	}

	syncer := NewSyncer(repo, registry, testLog())
	err := syncer.HandleMessage(context.Background(), confirmedMessage(t))
	if err == nil {
		t.Fatal("expected error when writer fails")
	}
	if kafka.ClassifyError(err) != kafka.ErrorTypeTransient {
		t.Errorf("expected transient error, got %v", err)
	}
}

func TestSyncerSkipsReadOnlyProviders(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterReader(model.ProviderZoom, NewZoomClient(testLog()))

	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			return []*model.CalendarConnection{
				{ID: "conn-1", HostID: hostID, Provider: model.ProviderZoom},
			}, nil
		},
	}

	syncer := NewSyncer(repo, registry, testLog())
	if err := syncer.HandleMessage(context.Background(), confirmedMessage(t)); err != nil {
		t.Fatalf("read-only providers must be skipped, got: %v", err)
	}
}

func TestSyncerIgnoresUnknownEventType(t *testing.T) {
	repo := &mockConnectionRepo{
		findByHostFunc: func(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
			t.Fatal("connections must not be loaded for unknown events")
			return nil, nil
		},
	}

	msg := kafka.NewMessage().
		WithKey("host-1").
		WithEventType("reservation.rescheduled").
		WithValue(map[string]string{}).
		Build()

	syncer := NewSyncer(repo, NewRegistry(), testLog())
	if err := syncer.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unknown event types must be acked, got: %v", err)
	}
}
