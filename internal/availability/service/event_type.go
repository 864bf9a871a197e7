package service

import (
	"context"
	"errors"
	"sync"

	availerrors "bookable/internal/availability/errors"
	"bookable/internal/availability/repository"
	"bookable/internal/availability/validator"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/model"
	"bookable/pkg/sanitizer"
)

type EventTypeService interface {
	Create(ctx context.Context, et *model.EventType) error
	GetByID(ctx context.Context, id string) (*model.EventType, error)
	GetByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.EventType, int64, error)
	Update(ctx context.Context, id string, updates *model.EventTypeUpdate) error
	Delete(ctx context.Context, id string) error
}

type eventTypeService struct {
	repo      repository.EventTypeRepository
	validator *validator.AvailabilityValidator
	cfg       *config.Config
}

func NewEventTypeService(
	repo repository.EventTypeRepository,
	v *validator.AvailabilityValidator,
	cfg *config.Config,
) EventTypeService {
	return &eventTypeService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *eventTypeService) Create(ctx context.Context, et *model.EventType) error {
	s.sanitize(et)
	s.applyDefaults(et)

	if err := s.validator.ValidateEventType(et); err != nil {
		s.cfg.Log.Warn("Event type validation failed",
			"name", et.Name,
			"host_id", et.HostID,
			"error", err,
		)
		return apperrors.Validation("Event type validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, et); err != nil {
		s.cfg.Log.Error("Failed to create event type",
			"name", et.Name,
			"host_id", et.HostID,
			"error", err,
		)
		return apperrors.Internal("Failed to create event type", err)
	}

	s.cfg.Log.Info("Event type created successfully",
		"id", et.ID,
		"name", et.Name,
		"host_id", et.HostID,
	)
	return nil
}

func (s *eventTypeService) GetByID(ctx context.Context, id string) (*model.EventType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event type ID cannot be empty")
	}

	et, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availerrors.ErrEventTypeNotFound) {
			return nil, apperrors.NotFoundWithID("Event type", id)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event type ID format")
		}
		s.cfg.Log.Error("Failed to get event type", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve event type", err)
	}

	return et, nil
}

func (s *eventTypeService) GetByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.EventType, int64, error) {
	if hostID == "" {
		return nil, 0, apperrors.InvalidInput("Host ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var eventTypes []*model.EventType
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByHost(sharedCtx, hostID)
		if err != nil {
			s.cfg.Log.Error("Failed to count event types", "host_id", hostID, "error", err)
			errCount = apperrors.Internal("Failed to count event types", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		eventTypes, err = s.repo.FindByHost(sharedCtx, hostID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list event types",
				"host_id", hostID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve event types", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return eventTypes, count, nil
}

func (s *eventTypeService) Update(ctx context.Context, id string, updates *model.EventTypeUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Event type ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)

	if err := s.validator.ValidateEventType(merged); err != nil {
		s.cfg.Log.Warn("Event type validation failed",
			"id", id,
			"error", err,
		)
		return apperrors.Validation("Event type validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, availerrors.ErrEventTypeNotFound) {
			return apperrors.NotFoundWithID("Event type", id)
		}
		s.cfg.Log.Error("Failed to update event type", "id", id, "error", err)
		return apperrors.Internal("Failed to update event type", err)
	}

	s.cfg.Log.Info("Event type updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *eventTypeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event type ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availerrors.ErrEventTypeNotFound) {
			return apperrors.NotFoundWithID("Event type", id)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid event type ID format")
		}
		s.cfg.Log.Error("Failed to delete event type", "id", id, "error", err)
		return apperrors.Internal("Failed to delete event type", err)
	}

	s.cfg.Log.Info("Event type deleted successfully", "id", id)
	return nil
}

func (s *eventTypeService) sanitize(et *model.EventType) {
	et.HostID = sanitizer.TrimAndNormalize(et.HostID)
	et.Name = sanitizer.NormalizeName(et.Name)

	if et.Slug == "" {
		et.Slug = sanitizer.SanitizeSlug(et.Name)
	} else {
		et.Slug = sanitizer.SanitizeSlug(et.Slug)
	}

	if tz := sanitizer.SanitizeTimeZone(et.TimeZone); tz != "" {
		et.TimeZone = tz
	}
}

func (s *eventTypeService) applyDefaults(et *model.EventType) {
	if et.DurationMin == 0 {
		et.DurationMin = s.cfg.DefaultSlotDurationMin
	}
	if et.StepMin == 0 {
		et.StepMin = s.cfg.DefaultSlotStepMin
	}
	if et.BufferBeforeMin == 0 {
		et.BufferBeforeMin = s.cfg.DefaultBufferBeforeMin
	}
	if et.BufferAfterMin == 0 {
		et.BufferAfterMin = s.cfg.DefaultBufferAfterMin
	}
}

func (s *eventTypeService) mergeUpdates(existing *model.EventType, updates *model.EventTypeUpdate) *model.EventType {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.StepMin != nil {
		merged.StepMin = *updates.StepMin
	}
	if updates.BufferBeforeMin != nil {
		merged.BufferBeforeMin = *updates.BufferBeforeMin
	}
	if updates.BufferAfterMin != nil {
		merged.BufferAfterMin = *updates.BufferAfterMin
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	return &merged
}
