package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"upasana/internal/bookings/calendar"
	bookingserrors "upasana/internal/bookings/errors"
	"upasana/internal/bookings/events"
	"upasana/internal/bookings/repository"
	"upasana/pkg/config"
	apperrors "upasana/pkg/errors"
	"upasana/pkg/model"
)

type BookingService interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string, cancelledBy string) error
	SeasonSlots(ctx context.Context) ([]model.SlotStatus, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel deactivates a booking and reopens its slot. The booking row is
// kept with active=false so the member cannot book the same date again.
func (s *bookingService) Cancel(ctx context.Context, id string, cancelledBy string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !booking.Active {
		return apperrors.Conflict("Booking is already cancelled")
	}

	if err := s.repo.Deactivate(ctx, id, cancelledBy); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Conflict("Booking is already cancelled")
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.reopenSlot(ctx, booking)

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", booking.ID,
		"member_id", booking.MemberID,
		"booking_date", calendar.FormatDate(booking.BookingDate),
	)
	s.publisher.BookingCancelled(ctx, booking)

	return nil
}

// reopenSlot removes the retained closed-slot marker when the cancelled
// booking was the one that had filled the date. A lock row on a date
// below capacity belongs to an in-flight admission attempt, not to a
// closed slot, and must be left alone or a second attempt could get past
// the lock while the first is still between lock and commit.
func (s *bookingService) reopenSlot(ctx context.Context, booking *model.Booking) {
	capacity := int64(saturdaySlotCapacity)
	if booking.Pool == model.PoolSunday {
		capacity = int64(s.cfg.SundaySlotCapacity)
	}

	occupied, err := s.repo.CountActiveOnDate(ctx, booking.BookingDate)
	if err != nil {
		s.cfg.Log.Warn("Failed to read occupancy after cancellation",
			"booking_date", calendar.FormatDate(booking.BookingDate),
			"error", err,
		)
		return
	}

	// Still full, the marker stays.
	if occupied >= capacity {
		return
	}

	// The booking just deactivated is excluded from the count, so the
	// date was full before this cancellation iff occupied+1 reaches
	// capacity. Only then is the lock row a marker rather than a lock.
	if occupied+1 < capacity {
		return
	}

	if err := s.lockRepo.Remove(ctx, calendar.FormatDate(booking.BookingDate)); err != nil {
		s.cfg.Log.Warn("Failed to remove slot lock after cancellation",
			"booking_date", calendar.FormatDate(booking.BookingDate),
			"error", err,
		)
	}
}

// SeasonSlots lists every slot date of the configured season with its
// occupancy. Sundays are included so operators can watch the overflow
// pool fill once Saturdays run out.
func (s *bookingService) SeasonSlots(ctx context.Context) ([]model.SlotStatus, error) {
	year := s.cfg.BookingYear
	start, end := calendar.SeasonStart(year), calendar.SeasonEnd(year)

	counts, err := s.repo.ActiveCountsByDate(ctx, start, end)
	if err != nil {
		return nil, apperrors.Internal("Failed to read season occupancy", err)
	}

	saturdays := calendar.SeasonSaturdays(year)
	sundays := calendar.SeasonSundays(year)

	slots := make([]model.SlotStatus, 0, len(saturdays)+len(sundays))
	appendSlots := func(dates []time.Time, pool model.Pool, capacity int) {
		for _, d := range dates {
			booked := int(counts[calendar.FormatDate(d)])
			slots = append(slots, model.SlotStatus{
				Date:      calendar.FormatDate(d),
				Pool:      pool,
				Booked:    booked,
				Capacity:  capacity,
				Available: booked < capacity,
			})
		}
	}

	appendSlots(saturdays, model.PoolSaturday, saturdaySlotCapacity)
	appendSlots(sundays, model.PoolSunday, s.cfg.SundaySlotCapacity)

	return slots, nil
}
