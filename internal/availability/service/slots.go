package service

import (
	"context"
	"errors"
	"time"

	availerrors "bookable/internal/availability/errors"
	"bookable/internal/availability/cache"
	"bookable/internal/availability/repository"
	"bookable/internal/scheduling/rules"
	"bookable/internal/scheduling/slots"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
)

// maxRangeDays bounds one slot listing query.
const maxRangeDays = 62

// SlotView is the outward representation of one bookable slot.
type SlotView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SlotListing is the slot query result. Partial warns that displayed
// availability may be incomplete because an external source degraded.
type SlotListing struct {
	Slots   []SlotView `json:"slots"`
	Partial bool       `json:"partial"`
}

type SlotService interface {
	ListSlots(ctx context.Context, hostID, eventTypeID, fromDate, toDate string) (*SlotListing, error)
}

type slotService struct {
	profiles   repository.AvailabilityRepository
	eventTypes repository.EventTypeRepository
	cache      *cache.RuleSetCache
	resolver   *slots.Resolver
	cfg        *config.Config
}

func NewSlotService(
	profiles repository.AvailabilityRepository,
	eventTypes repository.EventTypeRepository,
	ruleCache *cache.RuleSetCache,
	resolver *slots.Resolver,
	cfg *config.Config,
) SlotService {
	return &slotService{
		profiles:   profiles,
		eventTypes: eventTypes,
		cache:      ruleCache,
		resolver:   resolver,
		cfg:        cfg,
	}
}

func (s *slotService) ListSlots(ctx context.Context, hostID, eventTypeID, fromDate, toDate string) (*SlotListing, error) {
	if hostID == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty")
	}
	if eventTypeID == "" {
		return nil, apperrors.InvalidInput("Event type ID cannot be empty")
	}

	from, err := time.Parse(rules.DateLayout, fromDate)
	if err != nil {
		return nil, apperrors.InvalidInput("from date must be in YYYY-MM-DD format")
	}
	to, err := time.Parse(rules.DateLayout, toDate)
	if err != nil {
		return nil, apperrors.InvalidInput("to date must be in YYYY-MM-DD format")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("to date must not precede from date")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, apperrors.InvalidInput("date range too wide")
	}

	et, err := s.eventTypes.FindByID(ctx, eventTypeID)
	if err != nil {
		if errors.Is(err, availerrors.ErrEventTypeNotFound) {
			return nil, apperrors.NotFoundWithID("Event type", eventTypeID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event type ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve event type", err)
	}

	ruleSet, err := s.ruleSetForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	result, err := s.resolver.Resolve(ctx, slots.Query{
		HostID:    hostID,
		RuleSet:   ruleSet,
		EventType: et,
		FromDate:  fromDate,
		ToDate:    toDate,
	})
	if err != nil {
		if errors.Is(err, slots.ErrHostHasNoAvailability) {
			return nil, apperrors.NoAvailability(hostID)
		}
		s.cfg.Log.Error("Slot resolution failed",
			"host_id", hostID,
			"event_type_id", eventTypeID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve slots", err)
	}

	listing := &SlotListing{
		Slots:   make([]SlotView, 0, len(result.Slots)),
		Partial: result.Partial,
	}
	for _, slot := range result.Slots {
		listing.Slots = append(listing.Slots, SlotView{
			Start: slot.Interval.Start,
			End:   slot.Interval.End,
		})
	}

	return listing, nil
}

// ruleSetForHost reads the host's rule set cache-first. Profile writes
// invalidate the entry, so a hit is never staler than the TTL.
func (s *slotService) ruleSetForHost(ctx context.Context, hostID string) (rules.RuleSet, error) {
	if rs, ok := s.cache.Get(hostID); ok {
		return rs, nil
	}

	p, err := s.profiles.FindByHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return rules.RuleSet{}, apperrors.NoAvailability(hostID)
		}
		return rules.RuleSet{}, apperrors.Internal("Failed to retrieve availability profile", err)
	}

	rs := rules.FromProfile(p)
	s.cache.Set(hostID, rs)
	return rs, nil
}
