package service

import (
	"context"
	"testing"
	"time"

	"upasana/internal/bookings/policy"
	apperrors "upasana/pkg/errors"
	"upasana/pkg/model"
)

func TestCancel_ReopensSlot(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	f.store.addMember(memberID(2), model.ZoneC)

	admitted, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil || !admitted.Admitted {
		t.Fatalf("seed admission failed: %v / %+v", err, admitted)
	}
	if !f.locks.held("2026-11-14") {
		t.Fatal("expected lock on fully booked date")
	}

	if err := f.bookings.Cancel(context.Background(), admitted.BookingID, memberID(1)); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}

	if f.locks.held("2026-11-14") {
		t.Error("expected lock released after cancellation")
	}

	booking, err := f.store.FindByID(context.Background(), admitted.BookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Active {
		t.Error("expected booking deactivated, not deleted")
	}

	// The freed Saturday is bookable again, but not by the member who
	// cancelled it.
	retry, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retry.Reason != policy.ReasonDateClosedForMember {
		t.Errorf("expected %s for cancelling member, got %q", policy.ReasonDateClosedForMember, retry.Reason)
	}

	other, err := f.admission.Attempt(context.Background(), request(memberID(2), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.Admitted {
		t.Errorf("expected freed slot to admit another member, got reason %q", other.Reason)
	}
}

func TestCancel_LeavesInFlightLockAlone(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	fillSaturdays(f)

	// Two of five Sunday seats taken; the date never filled, so no
	// closed-slot marker exists.
	date := time.Date(2026, time.June, 7, 0, 0, 0, 0, time.UTC)
	seeded := f.store.addBooking(memberID(2000), date, model.PoolSunday, model.ZoneA, true)
	f.store.addBooking(memberID(2001), date, model.PoolSunday, model.ZoneA, true)

	// A competing attempt sits between lock and commit on this date.
	if err := f.locks.Acquire(context.Background(), "2026-06-07", "in-flight-attempt"); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	if err := f.bookings.Cancel(context.Background(), seeded.ID, "admin"); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}

	if !f.locks.held("2026-06-07") {
		t.Fatal("cancellation removed a lock owned by an in-flight attempt")
	}

	// Mutual exclusion still holds: a new attempt on the date is turned
	// away at the lock.
	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Admitted || result.Reason != policy.ReasonSlotAlreadyTaken {
		t.Errorf("expected %s while the date lock is held, got admitted=%v reason=%q",
			policy.ReasonSlotAlreadyTaken, result.Admitted, result.Reason)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	f := newFixture()
	b := f.store.addBooking(memberID(1), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, false)

	err := f.bookings.Cancel(context.Background(), b.ID, memberID(1))
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, apperrors.AsAppError(err).Code)
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture()

	err := f.bookings.Cancel(context.Background(), "000000000000000000000999", "admin")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %s", apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	f := newFixture()

	_, err := f.bookings.GetByID(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty ID")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
	}
}

func TestGetAll(t *testing.T) {
	f := newFixture()
	f.store.addBooking(memberID(1), time.Date(2026, time.November, 7, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneA, true)
	f.store.addBooking(memberID(2), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)

	bookings, count, err := f.bookings.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	if len(bookings) != 2 {
		t.Errorf("expected 2 bookings, got %d", len(bookings))
	}
}

func TestSeasonSlots(t *testing.T) {
	f := newFixture()
	f.store.addBooking(memberID(1), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)

	slots, err := f.bookings.SeasonSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 52 Saturdays plus 52 Sundays in season 2026
	if len(slots) != 104 {
		t.Fatalf("expected 104 slots, got %d", len(slots))
	}

	byDate := make(map[string]model.SlotStatus, len(slots))
	for _, slot := range slots {
		byDate[slot.Date] = slot
	}

	booked := byDate["2026-11-14"]
	if booked.Available || booked.Booked != 1 || booked.Capacity != 1 {
		t.Errorf("expected 2026-11-14 fully booked, got %+v", booked)
	}

	open := byDate["2026-11-07"]
	if !open.Available || open.Booked != 0 {
		t.Errorf("expected 2026-11-07 open, got %+v", open)
	}

	sunday := byDate["2026-11-15"]
	if sunday.Pool != model.PoolSunday || sunday.Capacity != 5 {
		t.Errorf("expected Sunday slot with capacity 5, got %+v", sunday)
	}
}
