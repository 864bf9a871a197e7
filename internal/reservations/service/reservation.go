package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookable/internal/availability/cache"
	availerrors "bookable/internal/availability/errors"
	availrepo "bookable/internal/availability/repository"
	reserrors "bookable/internal/reservations/errors"
	"bookable/internal/reservations/repository"
	resvalidator "bookable/internal/reservations/validator"
	"bookable/internal/scheduling/interval"
	"bookable/internal/scheduling/rules"
	"bookable/internal/scheduling/slots"
	"bookable/pkg/config"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/kafka"
	"bookable/pkg/model"
	"bookable/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventPublisher is satisfied by kafka.Producer. Publishing is fire and
// forget from the booking path; a broker outage never fails a booking.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByHost(ctx context.Context, hostID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
}

type reservationService struct {
	repo       repository.ReservationRepository
	lockRepo   repository.ReservationLockRepository
	validator  *resvalidator.ReservationValidator
	eventTypes availrepo.EventTypeRepository
	profiles   availrepo.AvailabilityRepository
	cache      *cache.RuleSetCache
	resolver   *slots.Resolver
	publisher  EventPublisher
	cfg        *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	validator *resvalidator.ReservationValidator,
	eventTypes availrepo.EventTypeRepository,
	profiles availrepo.AvailabilityRepository,
	ruleCache *cache.RuleSetCache,
	resolver *slots.Resolver,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:       repo,
		lockRepo:   lockRepo,
		validator:  validator,
		eventTypes: eventTypes,
		profiles:   profiles,
		cache:      ruleCache,
		resolver:   resolver,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	et, err := s.eventTypes.FindByID(ctx, req.EventTypeID)
	if err != nil {
		if errors.Is(err, availerrors.ErrEventTypeNotFound) {
			return nil, apperrors.NotFoundWithID("Event type", req.EventTypeID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event type ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve event type", err)
	}
	if et.HostID != req.HostID {
		return nil, apperrors.InvalidInput("Event type does not belong to this host")
	}

	ruleSet, err := s.ruleSetForHost(ctx, req.HostID)
	if err != nil {
		return nil, err
	}

	start := req.StartTime.UTC()
	reservation := &model.Reservation{
		ID:           uuid.NewString(),
		HostID:       req.HostID,
		EventTypeID:  req.EventTypeID,
		StartTime:    start,
		EndTime:      start.Add(et.Duration()),
		Status:       config.Confirmed,
		InviteeName:  req.InviteeName,
		InviteeEmail: req.InviteeEmail,
		Notes:        req.Notes,
	}

	if err := s.verifySlotIsFree(ctx, reservation, ruleSet, et); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSlotLock(ctx, req.HostID, req.EventTypeID, start)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.SlotTaken("This slot was just booked by someone else")
			}
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"host_id", reservation.HostID,
		"event_type_id", reservation.EventTypeID,
		"start_time", reservation.StartTime,
	)

	s.publishConfirmed(ctx, reservation)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) ListByHost(ctx context.Context, hostID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if hostID == "" {
		return nil, 0, apperrors.InvalidInput("Host ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByHost(ctx, hostID, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations", "host_id", hostID, "error", err)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.FindByHost(ctx, hostID, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reservations",
				"host_id", hostID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve reservations", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reservation.Status == config.Cancelled {
		return nil, apperrors.Conflict("Reservation is already cancelled")
	}

	cancelledAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Cancel(ctx, id, cancelledAt); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to cancel reservation", err)
	}

	reservation.Status = config.Cancelled
	reservation.CancelledAt = &cancelledAt

	s.cfg.Log.Info("Reservation cancelled successfully", "id", id, "host_id", reservation.HostID)

	s.publishCancelled(ctx, reservation)
	return reservation, nil
}

// --- Helpers ---

func (s *reservationService) sanitizeRequest(req *model.ReservationRequest) {
	req.HostID = sanitizer.TrimAndNormalize(req.HostID)
	req.InviteeName = sanitizer.NormalizeName(req.InviteeName)
	req.InviteeEmail = sanitizer.NormalizeEmail(req.InviteeEmail)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
}

func (s *reservationService) ruleSetForHost(ctx context.Context, hostID string) (rules.RuleSet, error) {
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

// verifySlotIsFree re-resolves the target day against fresh availability
// and busy data. Client-supplied slots are never trusted.
func (s *reservationService) verifySlotIsFree(ctx context.Context, reservation *model.Reservation, ruleSet rules.RuleSet, et *model.EventType) error {
	target, err := interval.New(reservation.StartTime, reservation.EndTime)
	if err != nil {
		return apperrors.InvalidInput("Invalid reservation window")
	}

	free, partial, err := s.resolver.IsFree(ctx, slots.Query{
		HostID:    reservation.HostID,
		RuleSet:   ruleSet,
		EventType: et,
	}, target)
	if err != nil {
		if errors.Is(err, slots.ErrHostHasNoAvailability) {
			return apperrors.NoAvailability(reservation.HostID)
		}
		return apperrors.Internal("Failed to verify slot availability", err)
	}
	if partial {
		s.cfg.Log.Warn("Booking slot verified against partial busy data",
			"host_id", reservation.HostID,
			"start_time", reservation.StartTime,
		)
	}
	if !free {
		return apperrors.SlotTaken("The requested slot is not available")
	}

	return nil
}

// verifyNoOverlap runs inside the booking transaction, after the advisory
// lock is held, to close the window between the free check and the insert.
func (s *reservationService) verifyNoOverlap(ctx context.Context, reservation *model.Reservation) error {
	existing, err := s.repo.FindConfirmedOverlapping(ctx, reservation.HostID, reservation.StartTime, reservation.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, r := range existing {
		if r.ID == reservation.ID {
			continue
		}
		return apperrors.SlotTaken(fmt.Sprintf(
			"Reservation overlaps with an existing booking (%s - %s)",
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireSlotLock creates an advisory lock to prevent concurrent booking
// creation. Returns the lock ID if successful, or a slot-taken error if
// another request holds the slot.
func (s *reservationService) acquireSlotLock(ctx context.Context, hostID, eventTypeID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("reservation_lock_%s_%s_%d", hostID, eventTypeID, startTime.Unix())

	lock := &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.ReservationLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.SlotTaken("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation lock", err)
	}

	return lockID, nil
}

func (s *reservationService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *reservationService) publishConfirmed(ctx context.Context, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	event := model.ReservationConfirmedEvent{
		ReservationID: reservation.ID,
		HostID:        reservation.HostID,
		EventTypeID:   reservation.EventTypeID,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		InviteeName:   reservation.InviteeName,
		InviteeEmail:  reservation.InviteeEmail,
		ConfirmedAt:   reservation.CreatedAt,
	}

	s.publishEvent(ctx, model.EventTypeReservationConfirmed, reservation, event)
}

func (s *reservationService) publishCancelled(ctx context.Context, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	event := model.ReservationCancelledEvent{
		ReservationID: reservation.ID,
		HostID:        reservation.HostID,
		EventTypeID:   reservation.EventTypeID,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		CancelledAt:   *reservation.CancelledAt,
	}

	s.publishEvent(ctx, model.EventTypeReservationCancelled, reservation, event)
}

func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation, payload any) {
	msg := kafka.NewMessage().
		WithKey(reservation.HostID).
		WithEventType(eventType).
		WithSource("reservations").
		WithValue(payload).
		Build()

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
