package service

import (
	"context"
	"errors"

	availerrors "bookable/internal/availability/errors"
	"bookable/internal/availability/cache"
	"bookable/internal/availability/repository"
	"bookable/internal/availability/validator"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/locale"
	"bookable/pkg/model"
	"bookable/pkg/sanitizer"
)

type AvailabilityService interface {
	CreateProfile(ctx context.Context, p *model.AvailabilityProfile) error
	GetProfileByHost(ctx context.Context, hostID string) (*model.AvailabilityProfile, error)
	UpdateProfile(ctx context.Context, hostID string, updates *model.AvailabilityProfileUpdate) error
	DeleteProfile(ctx context.Context, hostID string) error
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	validator *validator.AvailabilityValidator
	cache     *cache.RuleSetCache
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	v *validator.AvailabilityValidator,
	ruleCache *cache.RuleSetCache,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: v,
		cache:     ruleCache,
		cfg:       cfg,
	}
}

func (s *availabilityService) CreateProfile(ctx context.Context, p *model.AvailabilityProfile) error {
	s.sanitizeProfile(p)
	s.applyProfileDefaults(p)

	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Warn("Availability profile validation failed",
			"host_id", p.HostID,
			"error", err,
		)
		return apperrors.Validation("Availability profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, availerrors.ErrProfileExists) {
			return apperrors.Conflict("Host already has an availability profile")
		}
		s.cfg.Log.Error("Failed to create availability profile",
			"host_id", p.HostID,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability profile", err)
	}

	s.cfg.Log.Info("Availability profile created successfully",
		"id", p.ID,
		"host_id", p.HostID,
		"time_zone", p.TimeZone,
	)
	return nil
}

func (s *availabilityService) GetProfileByHost(ctx context.Context, hostID string) (*model.AvailabilityProfile, error) {
	if hostID == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty")
	}

	p, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability profile", hostID)
		}
		s.cfg.Log.Error("Failed to get availability profile",
			"host_id", hostID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve availability profile", err)
	}

	return p, nil
}

func (s *availabilityService) UpdateProfile(ctx context.Context, hostID string, updates *model.AvailabilityProfileUpdate) error {
	if hostID == "" {
		return apperrors.InvalidInput("Host ID cannot be empty")
	}

	existing, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability profile", hostID)
		}
		return apperrors.Internal("Failed to check availability profile existence", err)
	}

	merged := s.mergeProfileUpdates(existing, updates)
	s.sanitizeProfile(merged)

	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Availability profile validation failed",
			"host_id", hostID,
			"error", err,
		)
		return apperrors.Validation("Availability profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, existing.ID, merged); err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability profile", hostID)
		}
		s.cfg.Log.Error("Failed to update availability profile",
			"host_id", hostID,
			"error", err,
		)
		return apperrors.Internal("Failed to update availability profile", err)
	}

	s.cache.Invalidate(hostID)

	s.cfg.Log.Info("Availability profile updated successfully",
		"id", existing.ID,
		"host_id", hostID,
	)
	return nil
}

func (s *availabilityService) DeleteProfile(ctx context.Context, hostID string) error {
	if hostID == "" {
		return apperrors.InvalidInput("Host ID cannot be empty")
	}

	existing, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability profile", hostID)
		}
		return apperrors.Internal("Failed to check availability profile existence", err)
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability profile", hostID)
		}
		s.cfg.Log.Error("Failed to delete availability profile",
			"host_id", hostID,
			"error", err,
		)
		return apperrors.Internal("Failed to delete availability profile", err)
	}

	s.cache.Invalidate(hostID)

	s.cfg.Log.Info("Availability profile deleted successfully", "host_id", hostID)
	return nil
}

func (s *availabilityService) sanitizeProfile(p *model.AvailabilityProfile) {
	p.HostID = sanitizer.TrimAndNormalize(p.HostID)

	if tz := sanitizer.SanitizeTimeZone(p.TimeZone); tz != "" {
		p.TimeZone = tz
	}

	for i := range p.Weekly {
		days := sanitizer.SanitizeWeekdays([]string{p.Weekly[i].DayOfWeek})
		if len(days) == 1 {
			p.Weekly[i].DayOfWeek = days[0]
		}
	}
}

// applyProfileDefaults fills an empty profile with a locale-appropriate
// working week: hosts in Israel default to Sunday through Thursday, US
// hosts to Monday through Friday.
func (s *availabilityService) applyProfileDefaults(p *model.AvailabilityProfile) {
	if p.TimeZone == "" {
		p.TimeZone = s.cfg.DefaultTimeZone
	}

	if len(p.Weekly) == 0 && len(p.Overrides) == 0 {
		defaultRange := model.TimeRange{
			Start: s.cfg.DefaultStartOfDay,
			End:   s.cfg.DefaultEndOfDay,
		}
		for _, day := range locale.DefaultWorkingDays(p.TimeZone) {
			p.Weekly = append(p.Weekly, model.WeeklyRule{
				DayOfWeek: day,
				Ranges:    []model.TimeRange{defaultRange},
			})
		}
	}
}

func (s *availabilityService) mergeProfileUpdates(existing *model.AvailabilityProfile, updates *model.AvailabilityProfileUpdate) *model.AvailabilityProfile {
	merged := *existing

	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.Weekly != nil {
		merged.Weekly = *updates.Weekly
	}
	if updates.Overrides != nil {
		merged.Overrides = *updates.Overrides
	}

	return &merged
}
