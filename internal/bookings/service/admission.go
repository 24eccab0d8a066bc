package service

import (
	"context"
	"errors"
	"time"

	"upasana/internal/bookings/calendar"
	bookingserrors "upasana/internal/bookings/errors"
	"upasana/internal/bookings/events"
	"upasana/internal/bookings/policy"
	"upasana/internal/bookings/repository"
	"upasana/internal/bookings/validator"
	"upasana/pkg/config"
	apperrors "upasana/pkg/errors"
	"upasana/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const saturdaySlotCapacity = 1

// AdmissionService runs the slot admission protocol: validate the date,
// resolve the member, take the date lock, evaluate quota policy against a
// consistent occupancy snapshot, and commit inside a transaction. A
// rejection is a normal outcome carried in the result; only storage
// faults come back as errors.
type AdmissionService interface {
	Attempt(ctx context.Context, req *model.BookingRequest) (*model.AdmissionResult, error)
	AttemptSunday(ctx context.Context, req *model.BookingRequest) (*model.AdmissionResult, error)
}

type admissionService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	members   repository.MemberRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAdmissionService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	members repository.MemberRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AdmissionService {
	return &admissionService{
		repo:      repo,
		lockRepo:  lockRepo,
		members:   members,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *admissionService) Attempt(ctx context.Context, req *model.BookingRequest) (*model.AdmissionResult, error) {
	return s.attempt(ctx, req, model.PoolSaturday)
}

func (s *admissionService) AttemptSunday(ctx context.Context, req *model.BookingRequest) (*model.AdmissionResult, error) {
	return s.attempt(ctx, req, model.PoolSunday)
}

func rejected(reason string) *model.AdmissionResult {
	return &model.AdmissionResult{Admitted: false, Reason: reason}
}

func (s *admissionService) attempt(ctx context.Context, req *model.BookingRequest, pool model.Pool) (*model.AdmissionResult, error) {
	if !s.cfg.EnableBooking {
		return nil, apperrors.Forbidden("Booking is currently disabled")
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	date, err := calendar.ParseDate(req.BookingDate)
	if err != nil {
		return nil, apperrors.InvalidInput("booking_date must be a date in YYYY-MM-DD format")
	}

	year := s.cfg.BookingYear

	// The calendar gate comes before any storage lookup: a date that is
	// not a slot day rejects the same way no matter who asks.
	if !s.validSlotDay(pool, year, date) {
		if pool == model.PoolSunday {
			return rejected(policy.ReasonNotSunday), nil
		}
		return rejected(policy.ReasonNotSaturday), nil
	}

	member, err := s.members.FindByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrMemberNotFound) {
			return rejected(policy.ReasonMemberNotFound), nil
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("member_id must be a valid MongoDB ObjectID")
		}
		return nil, apperrors.Transient("Failed to resolve member", err)
	}

	// Fast pre-lock rejection; the authoritative year check happens again
	// under the lock and inside the commit transaction.
	if _, err := s.repo.FindActiveByMemberYear(ctx, member.ID, year); err == nil {
		return rejected(policy.ReasonYearLimitExceeded), nil
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Transient("Failed to check member year limit", err)
	}

	dateKey := calendar.FormatDate(date)
	owner := uuid.NewString()

	if err := s.lockRepo.Acquire(ctx, dateKey, owner); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return rejected(policy.ReasonSlotAlreadyTaken), nil
		}
		return nil, apperrors.Transient("Failed to acquire slot lock", err)
	}
	// The lock row must always end up agreeing with actual occupancy,
	// whatever path this attempt takes from here.
	defer s.reconcileLock(ctx, pool, date, owner)

	counters, err := s.gatherCounters(ctx, pool, member, year, date)
	if err != nil {
		return nil, err
	}

	verdict := policy.Evaluate(pool, member.Zone, counters, s.cfg.EnableZoneRestriction)
	if !verdict.Admitted {
		return rejected(verdict.Reason), nil
	}

	booking := &model.Booking{
		MemberID:    member.ID,
		BookingDate: date,
		Year:        year,
		Pool:        pool,
		Zone:        member.Zone,
		Mahaprasad:  req.Mahaprasad,
		Active:      true,
	}

	var result *model.AdmissionResult
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-check inside the transaction; the counters were read moments
		// ago and another writer may have slipped in before the lock.
		if _, err := s.repo.FindActiveByMemberYear(sessCtx, member.ID, year); err == nil {
			result = rejected(policy.ReasonYearLimitExceeded)
			return nil
		} else if !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Transient("Failed to re-check member year limit", err)
		}

		occupied, err := s.repo.CountActiveOnDate(sessCtx, date)
		if err != nil {
			return apperrors.Transient("Failed to re-check slot occupancy", err)
		}
		if occupied >= int64(s.capacity(pool)) {
			result = rejected(policy.ReasonSlotAlreadyTaken)
			return nil
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateBooking) {
				// Lost the race against the unique index on (member_id,
				// year); the row that beat us took the slot.
				result = rejected(policy.ReasonSlotAlreadyTaken)
				return nil
			}
			return apperrors.Transient("Failed to commit booking", err)
		}

		result = &model.AdmissionResult{Admitted: true, BookingID: booking.ID}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Admission attempt aborted",
			"member_id", member.ID,
			"booking_date", dateKey,
			"pool", pool,
			"error", err,
		)
		return nil, err
	}

	if result.Admitted {
		s.cfg.Log.Info("Booking admitted",
			"booking_id", booking.ID,
			"member_id", member.ID,
			"booking_date", dateKey,
			"pool", pool,
			"zone", member.Zone,
		)
		s.publisher.BookingAdmitted(ctx, booking)
	} else {
		s.cfg.Log.Info("Booking rejected",
			"member_id", member.ID,
			"booking_date", dateKey,
			"pool", pool,
			"reason", result.Reason,
		)
	}

	return result, nil
}

func (s *admissionService) validSlotDay(pool model.Pool, year int, date time.Time) bool {
	if pool == model.PoolSunday {
		return calendar.IsSeasonSunday(year, date)
	}
	return calendar.IsSeasonSaturday(year, date)
}

func (s *admissionService) capacity(pool model.Pool) int {
	if pool == model.PoolSunday {
		return s.cfg.SundaySlotCapacity
	}
	return saturdaySlotCapacity
}

// gatherCounters reads the occupancy snapshot the policy evaluates. It
// runs after the slot lock is held, so no competing attempt on this date
// can move the counts underneath it. Every counter is derived fresh here,
// including the slot-day and member-year fields the engine already
// pre-checked before the lock; the pre-checks are a fast path, the
// snapshot is authoritative.
func (s *admissionService) gatherCounters(ctx context.Context, pool model.Pool, member *model.Member, year int, date time.Time) (policy.Counters, error) {
	c := policy.Counters{
		ValidSlotDay: s.validSlotDay(pool, year, date),
		DateCapacity: s.capacity(pool),
	}

	if _, err := s.repo.FindActiveByMemberYear(ctx, member.ID, year); err == nil {
		c.MemberYear = 1
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return c, apperrors.Transient("Failed to count member year bookings", err)
	}

	if pool == model.PoolSunday {
		exhausted, err := s.saturdaysExhausted(ctx, year)
		if err != nil {
			return c, err
		}
		c.SaturdaysExhausted = exhausted
	}

	cancelled, err := s.repo.HasCancelledOnDate(ctx, member.ID, date)
	if err != nil {
		return c, apperrors.Transient("Failed to check cancelled bookings", err)
	}
	c.CancelledOnDate = cancelled

	monthStart, monthEnd := calendar.MonthBounds(date)

	memberMonth, err := s.repo.CountActiveByMemberMonth(ctx, member.ID, monthStart, monthEnd)
	if err != nil {
		return c, apperrors.Transient("Failed to count member month bookings", err)
	}
	c.MemberMonth = int(memberMonth)

	zoneMonth, err := s.repo.CountActiveByZonesMonth(ctx, quotaPool(member.Zone), monthStart, monthEnd)
	if err != nil {
		return c, apperrors.Transient("Failed to count zone month bookings", err)
	}
	c.ZoneMonth = int(zoneMonth)

	zoneAMonth, err := s.repo.CountActiveByZonesMonth(ctx, []model.Zone{model.ZoneA}, monthStart, monthEnd)
	if err != nil {
		return c, apperrors.Transient("Failed to count zone A month bookings", err)
	}
	c.ZoneAMonth = int(zoneAMonth)

	counts, err := s.repo.ActiveCountsByDate(ctx, monthStart, monthEnd)
	if err != nil {
		return c, apperrors.Transient("Failed to read month occupancy", err)
	}

	var slotDates []time.Time
	if pool == model.PoolSunday {
		slotDates = calendar.SundaysInMonth(year, date)
	} else {
		slotDates = calendar.SaturdaysInMonth(year, date)
	}

	capacity := int64(s.capacity(pool))
	for _, d := range slotDates {
		if counts[calendar.FormatDate(d)] < capacity {
			c.SlotsRemainingInMonth++
		}
	}

	c.DateActive = int(counts[calendar.FormatDate(date)])
	return c, nil
}

// quotaPool maps a zone to the zones it shares a monthly quota with
func quotaPool(zone model.Zone) []model.Zone {
	if zone == model.ZoneA {
		return []model.Zone{model.ZoneA}
	}
	return []model.Zone{model.ZoneB, model.ZoneC}
}

// saturdaysExhausted reports whether every Saturday of the season already
// carries an active booking, the precondition for opening Sundays.
func (s *admissionService) saturdaysExhausted(ctx context.Context, year int) (bool, error) {
	total := len(calendar.SeasonSaturdays(year))

	booked, err := s.repo.CountActiveByPoolSeason(ctx, model.PoolSaturday, calendar.SeasonStart(year), calendar.SeasonEnd(year))
	if err != nil {
		return false, apperrors.Transient("Failed to count Saturday pool bookings", err)
	}

	return booked >= int64(total), nil
}

// reconcileLock brings the slot lock row back in line with occupancy:
// the lock stays only while the date is fully booked, and release is
// scoped to this attempt's owner token so a competing attempt's lock is
// never touched. It runs on a detached context so a cancelled request
// cannot skip it. A failure here strands the lock row and blocks the
// date until an operator deletes it, so it is reported as an error.
func (s *admissionService) reconcileLock(ctx context.Context, pool model.Pool, date time.Time, owner string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	dateKey := calendar.FormatDate(date)

	occupied, err := s.repo.CountActiveOnDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Slot lock reconciliation failed reading occupancy; the date stays locked until the lock row is removed manually or a later attempt reconciles it",
			"booking_date", dateKey,
			"lock_owner", owner,
			"collection", repository.SlotLockCollectionName,
			"error", err,
		)
		return
	}

	if occupied >= int64(s.capacity(pool)) {
		return
	}

	if err := s.lockRepo.Release(ctx, dateKey, owner); err != nil {
		s.cfg.Log.Error("Slot lock release failed; the lock row is stale and the date stays blocked until it is removed manually",
			"booking_date", dateKey,
			"lock_owner", owner,
			"collection", repository.SlotLockCollectionName,
			"error", err,
		)
	}
}
