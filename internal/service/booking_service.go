package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	locks    itemLocks
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Create records a WAITING booking after validating the requester, the
// item and the interval. The overlap check against APPROVED bookings
// runs under the per-item guard.
func (s *BookingService) Create(ctx context.Context, userID, itemID int64, start, end time.Time) (*models.Booking, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", userID)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", itemID)
	}
	// Owners cannot book their own items; the item is reported as
	// missing so ownership is not revealed to the caller.
	if item.OwnerID == userID {
		return nil, domain.NotFoundf("item %d", itemID)
	}
	if !item.Available {
		return nil, domain.BadRequestf("item %d is not available for booking", itemID)
	}

	now := s.now()
	if !start.Before(end) {
		return nil, domain.BadRequestf("booking start must be before end")
	}
	if end.Before(now) {
		return nil, domain.BadRequestf("booking end must not be in the past")
	}

	unlock := s.locks.lock(itemID)
	defer unlock()

	if err := s.checkConflict(ctx, itemID, 0, start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: userID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking, userID)
	return booking, nil
}

// Approve decides a WAITING booking. The status is re-read and the
// overlap check re-run under the per-item guard, so a booking is
// decided at most once and two overlapping approvals cannot both pass.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundf("booking %d", bookingID)
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", booking.ItemID)
	}
	if item.OwnerID != ownerID {
		return nil, domain.Forbiddenf("user %d does not own item %d", ownerID, item.ID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, domain.BadRequestf("booking %d has already been decided", bookingID)
	}

	unlock := s.locks.lock(booking.ItemID)
	defer unlock()

	// The snapshot above may have gone stale while waiting for the
	// guard; re-read so a racing decision cannot be overwritten.
	booking, err = s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundf("booking %d", bookingID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, domain.BadRequestf("booking %d has already been decided", bookingID)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		if err := s.checkConflict(ctx, booking.ItemID, booking.ID, booking.Start, booking.End); err != nil {
			return nil, err
		}
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.publishEvent(eventType, booking, ownerID)
	return booking, nil
}

// checkConflict fails when [start,end) overlaps any APPROVED booking of
// the item other than excludeID. Caller holds the item guard.
func (s *BookingService) checkConflict(ctx context.Context, itemID, excludeID int64, start, end time.Time) error {
	approved, err := s.repo.ListApprovedBookings(ctx, itemID)
	if err != nil {
		return err
	}
	for _, existing := range approved {
		if existing.ID == excludeID {
			continue
		}
		if models.Overlaps(existing.Start, existing.End, start, end) {
			metrics.IncBookingConflict()
			return domain.BadRequestf("booking dates conflict with an approved booking of item %d", itemID)
		}
	}
	return nil
}

// Get returns a booking to its booker or the item's owner only.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundf("booking %d", bookingID)
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", booking.ItemID)
	}
	if booking.BookerID != userID && item.OwnerID != userID {
		return nil, domain.Forbiddenf("user %d may not view booking %d", userID, bookingID)
	}
	return booking, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	if err := s.checkListArgs(ctx, userID, state, from, size); err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByBooker(ctx, userID, state, s.now(), from, size)
}

func (s *BookingService) ListByOwner(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	if err := s.checkListArgs(ctx, userID, state, from, size); err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByOwner(ctx, userID, state, s.now(), from, size)
}

// ListInRange feeds the export report.
func (s *BookingService) ListInRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	if !start.Before(end) {
		return nil, domain.BadRequestf("export start must be before end")
	}
	return s.repo.ListBookingsInRange(ctx, start, end)
}

func (s *BookingService) checkListArgs(ctx context.Context, userID int64, state string, from, size int) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NotFoundf("user %d", userID)
	}
	if !models.ValidState(state) {
		return domain.BadRequestf("unknown state: %s", state)
	}
	if from < 0 || size <= 0 {
		return domain.BadRequestf("invalid pagination: from=%d size=%d", from, size)
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
