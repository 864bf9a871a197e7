// Package busy merges busy intervals from internal reservations and external
// calendars into one normalized, buffer-expanded sequence.
package busy

import (
	"context"
	"time"

	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

// BufferPolicy is padding applied around every busy interval before it
// blocks availability.
type BufferPolicy struct {
	Before time.Duration
	After  time.Duration
}

// Result is the normalized busy sequence. Partial is set when an external
// source failed and the result reflects internal reservations only.
type Result struct {
	Intervals []interval.Interval
	Partial   bool
}

// InternalBusyReader reads busy blocks derived from confirmed reservations.
type InternalBusyReader interface {
	InternalBusy(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error)
}

// ExternalBusyReader reads busy blocks from connected provider calendars.
type ExternalBusyReader interface {
	ExternalBusy(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error)
}

type Aggregator struct {
	internal        InternalBusyReader
	external        ExternalBusyReader
	externalTimeout time.Duration
	log             *logger.Logger
}

// NewAggregator wires the two busy sources. external may be nil when the
// host has no calendar connections.
func NewAggregator(internal InternalBusyReader, external ExternalBusyReader, externalTimeout time.Duration, log *logger.Logger) *Aggregator {
	return &Aggregator{
		internal:        internal,
		external:        external,
		externalTimeout: externalTimeout,
		log:             log,
	}
}

// BusyIntervals returns the merged busy sequence for a host over a window.
// Internal read failures propagate: overlap with real reservations must never
// be lost. External failures degrade to an internal-only Partial result,
// never an error, so a broken integration cannot invent unavailability.
func (a *Aggregator) BusyIntervals(ctx context.Context, hostID string, window interval.Interval, buffer BufferPolicy) (Result, error) {
	internalBlocks, err := a.internal.InternalBusy(ctx, hostID, window)
	if err != nil {
		return Result{}, err
	}

	blocks := internalBlocks
	partial := false

	if a.external != nil {
		externalBlocks, err := a.fetchExternal(ctx, hostID, window)
		if err != nil {
			partial = true
			a.log.Warn("external calendar read failed, returning internal busy only",
				"host_id", hostID,
				"error", err,
			)
		} else {
			blocks = append(blocks, externalBlocks...)
		}
	}

	return Result{
		Intervals: normalize(blocks, buffer),
		Partial:   partial,
	}, nil
}

func (a *Aggregator) fetchExternal(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error) {
	if a.externalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.externalTimeout)
		defer cancel()
	}
	return a.external.ExternalBusy(ctx, hostID, window)
}

// normalize de-duplicates blocks by source id, expands each by the buffer,
// then merges. De-duplication must happen before expansion, otherwise a
// reservation mirrored into an external calendar by outbound sync would be
// buffer-expanded twice.
func normalize(blocks []model.BusyBlock, buffer BufferPolicy) []interval.Interval {
	seen := make(map[string]struct{}, len(blocks))
	intervals := make([]interval.Interval, 0, len(blocks))

	for _, b := range blocks {
		if b.SourceID != "" {
			if _, dup := seen[b.SourceID]; dup {
				continue
			}
			seen[b.SourceID] = struct{}{}
		}

		iv, err := interval.New(b.Start, b.End)
		if err != nil {
			// Zero-length or inverted blocks from a provider are noise
			continue
		}
		intervals = append(intervals, iv.Expand(buffer.Before, buffer.After))
	}

	return interval.MergeOverlapping(intervals)
}
