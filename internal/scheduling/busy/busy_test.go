package busy

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type mockInternalReader struct {
	internalBusyFunc func(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error)
}

func (m *mockInternalReader) InternalBusy(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error) {
	return m.internalBusyFunc(ctx, hostID, window)
}

type mockExternalReader struct {
	externalBusyFunc func(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error)
}

func (m *mockExternalReader) ExternalBusy(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error) {
	return m.externalBusyFunc(ctx, hostID, window)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func block(source, sourceID string, startHour, startMin, endHour, endMin int) model.BusyBlock {
	return model.BusyBlock{
		Start:    at(startHour, startMin),
		End:      at(endHour, endMin),
		Source:   source,
		SourceID: sourceID,
	}
}

func window() interval.Interval {
	return interval.MustNew(at(0, 0), at(23, 59))
}

func TestBusyIntervalsMergesBothSources(t *testing.T) {
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceInternal, "res-1", 10, 0, 11, 0)}, nil
			},
		},
		&mockExternalReader{
			externalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceExternal, "evt-1", 10, 30, 12, 0)}, nil
			},
		},
		time.Second, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{})
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}
	if res.Partial {
		t.Error("unexpected partial flag")
	}

	want := []interval.Interval{interval.MustNew(at(10, 0), at(12, 0))}
	assertIntervals(t, res.Intervals, want)
}

func TestBusyIntervalsBufferExpansion(t *testing.T) {
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceInternal, "res-1", 10, 0, 10, 30)}, nil
			},
		},
		nil, time.Second, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{
		Before: 10 * time.Minute,
		After:  10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}

	want := []interval.Interval{interval.MustNew(at(9, 50), at(10, 40))}
	assertIntervals(t, res.Intervals, want)
}

func TestBusyIntervalsDeduplicatesBySourceID(t *testing.T) {
	// The same reservation appears internally and as its outbound-synced
	// mirror in the external calendar. It must count once, so the buffer
	// is applied once.
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceInternal, "res-1", 10, 0, 10, 30)}, nil
			},
		},
		&mockExternalReader{
			externalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceExternal, "res-1", 10, 0, 10, 30)}, nil
			},
		},
		time.Second, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{
		Before: 15 * time.Minute,
		After:  15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}

	want := []interval.Interval{interval.MustNew(at(9, 45), at(10, 45))}
	assertIntervals(t, res.Intervals, want)
}

func TestBusyIntervalsExternalFailureDegrades(t *testing.T) {
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{block(model.BusySourceInternal, "res-1", 10, 0, 11, 0)}, nil
			},
		},
		&mockExternalReader{
			externalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return nil, errors.New("token revoked")
			},
		},
		time.Second, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{})
	if err != nil {
		t.Fatalf("external failure must not surface as error: %v", err)
	}
	if !res.Partial {
		t.Error("expected partial flag after external failure")
	}

	want := []interval.Interval{interval.MustNew(at(10, 0), at(11, 0))}
	assertIntervals(t, res.Intervals, want)
}

func TestBusyIntervalsExternalTimeoutDegrades(t *testing.T) {
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return nil, nil
			},
		},
		&mockExternalReader{
			externalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
		10*time.Millisecond, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{})
	if err != nil {
		t.Fatalf("timeout must not surface as error: %v", err)
	}
	if !res.Partial {
		t.Error("expected partial flag after external timeout")
	}
	if len(res.Intervals) != 0 {
		t.Errorf("expected no intervals, got %v", res.Intervals)
	}
}

func TestBusyIntervalsInternalFailurePropagates(t *testing.T) {
	readErr := errors.New("connection refused")
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return nil, readErr
			},
		},
		nil, time.Second, testLogger(),
	)

	_, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{})
	if !errors.Is(err, readErr) {
		t.Errorf("internal failure must propagate, got %v", err)
	}
}

func TestBusyIntervalsDropsMalformedBlocks(t *testing.T) {
	agg := NewAggregator(
		&mockInternalReader{
			internalBusyFunc: func(ctx context.Context, hostID string, w interval.Interval) ([]model.BusyBlock, error) {
				return []model.BusyBlock{
					block(model.BusySourceInternal, "bad", 11, 0, 11, 0),
					block(model.BusySourceInternal, "good", 9, 0, 10, 0),
				}, nil
			},
		},
		nil, time.Second, testLogger(),
	)

	res, err := agg.BusyIntervals(context.Background(), "host-1", window(), BufferPolicy{})
	if err != nil {
		t.Fatalf("BusyIntervals: %v", err)
	}

	want := []interval.Interval{interval.MustNew(at(9, 0), at(10, 0))}
	assertIntervals(t, res.Intervals, want)
}

func assertIntervals(t *testing.T, got, want []interval.Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d intervals %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d: got %v-%v, want %v-%v",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
