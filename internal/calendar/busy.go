package calendar

import (
	"context"
	"fmt"

	"bookable/internal/calendar/repository"
	"bookable/internal/scheduling/interval"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

// ConnectionBusyReader fans a busy query out to every calendar connection
// of a host. Satisfies the slot engine's external busy reader; any provider
// failure surfaces as an error so availability is marked partial upstream.
type ConnectionBusyReader struct {
	connections repository.ConnectionRepository
	registry    *Registry
	log         *logger.Logger
}

func NewConnectionBusyReader(connections repository.ConnectionRepository, registry *Registry, log *logger.Logger) *ConnectionBusyReader {
	return &ConnectionBusyReader{
		connections: connections,
		registry:    registry,
		log:         log,
	}
}

func (r *ConnectionBusyReader) ExternalBusy(ctx context.Context, hostID string, window interval.Interval) ([]model.BusyBlock, error) {
	connections, err := r.connections.FindByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar connections: %w", err)
	}

	var blocks []model.BusyBlock
	for _, conn := range connections {
		reader, ok := r.registry.Reader(conn.Provider)
		if !ok {
			r.log.Warn("Skipping connection with unsupported provider",
				"host_id", hostID,
				"provider", conn.Provider,
			)
			continue
		}

		providerBlocks, err := reader.Busy(ctx, conn, window)
		if err != nil {
			return blocks, fmt.Errorf("provider %s busy query failed: %w", conn.Provider, err)
		}
		blocks = append(blocks, providerBlocks...)
	}

	return blocks, nil
}
