package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"upasana/internal/bookings/calendar"
	bookingserrors "upasana/internal/bookings/errors"
	"upasana/internal/bookings/events"
	"upasana/internal/bookings/policy"
	"upasana/internal/bookings/validator"
	"upasana/pkg/config"
	mongotx "upasana/pkg/db/mongo"
	apperrors "upasana/pkg/errors"
	"upasana/pkg/logger"
	"upasana/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory fakes
// ────────────────────────────────────────────────

// fakeStore backs all three repositories so tests can drive the full
// admission protocol, including concurrent attempts, without MongoDB.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	seq      int
	bookings []*model.Booking
	members  map[string]*model.Member
	locks    map[string]string

	countMemberMonthErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[string]*model.Member),
		locks:   make(map[string]string),
	}
}

func (s *fakeStore) addMember(id string, zone model.Zone) *model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &model.Member{ID: id, Name: "Member " + id, Zone: zone, Active: true}
	s.members[id] = m
	return m
}

func (s *fakeStore) addBooking(memberID string, date time.Time, pool model.Pool, zone model.Zone, active bool) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	b := &model.Booking{
		ID:          fmt.Sprintf("%024d", s.seq),
		MemberID:    memberID,
		BookingDate: date,
		Year:        2026,
		Pool:        pool,
		Zone:        zone,
		Active:      active,
	}
	s.bookings = append(s.bookings, b)
	return b
}

func (s *fakeStore) activeOnDate(date time.Time) int64 {
	var n int64
	for _, b := range s.bookings {
		if b.Active && b.BookingDate.Equal(date) {
			n++
		}
	}
	return n
}

func (s *fakeStore) Create(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Active && b.MemberID == booking.MemberID && b.Year == booking.Year {
			return bookingserrors.ErrDuplicateBooking
		}
	}
	s.seq++
	booking.ID = fmt.Sprintf("%024d", s.seq)
	booking.CreatedAt = time.Now().UTC()
	clone := *booking
	s.bookings = append(s.bookings, &clone)
	return nil
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (s *fakeStore) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Booking
	for i, b := range s.bookings {
		if int64(i) < offset || len(out) >= limit {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.bookings)), nil
}

func (s *fakeStore) FindActiveByMemberYear(ctx context.Context, memberID string, year int) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Active && b.MemberID == memberID && b.Year == year {
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (s *fakeStore) HasCancelledOnDate(ctx context.Context, memberID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if !b.Active && b.MemberID == memberID && b.BookingDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CountActiveByMemberMonth(ctx context.Context, memberID string, monthStart, monthEnd time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countMemberMonthErr != nil {
		return 0, s.countMemberMonthErr
	}
	var n int64
	for _, b := range s.bookings {
		if b.Active && b.MemberID == memberID && inRange(b.BookingDate, monthStart, monthEnd) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CountActiveByZonesMonth(ctx context.Context, zones []model.Zone, monthStart, monthEnd time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.bookings {
		if b.Active && zoneIn(b.Zone, zones) && inRange(b.BookingDate, monthStart, monthEnd) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CountActiveOnDate(ctx context.Context, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOnDate(date), nil
}

func (s *fakeStore) ActiveCountsByDate(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range s.bookings {
		if b.Active && inRange(b.BookingDate, start, end) {
			counts[calendar.FormatDate(b.BookingDate)]++
		}
	}
	return counts, nil
}

func (s *fakeStore) CountActiveByPoolSeason(ctx context.Context, pool model.Pool, seasonStart, seasonEnd time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.bookings {
		if b.Active && b.Pool == pool && inRange(b.BookingDate, seasonStart, seasonEnd) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Deactivate(ctx context.Context, id string, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id && b.Active {
			b.Active = false
			b.UpdatedBy = updatedBy
			return nil
		}
	}
	return bookingserrors.ErrNotFound
}

func (s *fakeStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && d.Before(end)
}

func zoneIn(z model.Zone, zones []model.Zone) bool {
	for _, zone := range zones {
		if z == zone {
			return true
		}
	}
	return false
}

type fakeLockRepo struct {
	store *fakeStore

	releaseErr error
}

func (r *fakeLockRepo) Acquire(ctx context.Context, date string, owner string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, held := r.store.locks[date]; held {
		return bookingserrors.ErrLockHeld
	}
	r.store.locks[date] = owner
	return nil
}

func (r *fakeLockRepo) Release(ctx context.Context, date string, owner string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.releaseErr != nil {
		return r.releaseErr
	}
	if r.store.locks[date] == owner {
		delete(r.store.locks, date)
	}
	return nil
}

func (r *fakeLockRepo) Remove(ctx context.Context, date string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.locks, date)
	return nil
}

func (r *fakeLockRepo) held(date string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, held := r.store.locks[date]
	return held
}

type fakeMemberRepo struct {
	store *fakeStore
}

func (r *fakeMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if m, ok := r.store.members[id]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, bookingserrors.ErrMemberNotFound
}

// ────────────────────────────────────────────────
// Test fixture
// ────────────────────────────────────────────────

type fixture struct {
	store     *fakeStore
	locks     *fakeLockRepo
	admission AdmissionService
	bookings  BookingService
	cfg       *config.Config
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		BookingYear:           2026,
		EnableBooking:         true,
		EnableZoneRestriction: true,
		SundaySlotCapacity:    5,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		Log:                   log,
	}

	store := newFakeStore()
	locks := &fakeLockRepo{store: store}
	members := &fakeMemberRepo{store: store}
	v := validator.NewBookingValidator(log)

	return &fixture{
		store:     store,
		locks:     locks,
		admission: NewAdmissionService(store, locks, members, v, events.NoopPublisher{}, cfg),
		bookings:  NewBookingService(store, locks, events.NoopPublisher{}, cfg),
		cfg:       cfg,
	}
}

func memberID(n int) string {
	return fmt.Sprintf("%024d", n)
}

func request(member string, date string) *model.BookingRequest {
	return &model.BookingRequest{MemberID: member, BookingDate: date}
}

// ────────────────────────────────────────────────
// Saturday admission
// ────────────────────────────────────────────────

func TestAttempt_AdmitsOpenSaturday(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Admitted {
		t.Fatalf("expected admission, got reason %q", result.Reason)
	}
	if result.BookingID == "" {
		t.Error("expected a booking ID on admission")
	}

	// A full Saturday keeps its lock row as the occupancy marker.
	if !f.locks.held("2026-11-14") {
		t.Error("expected lock to remain on a fully booked date")
	}
}

func TestAttempt_RejectsWeekday(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneA)

	// 2026-11-11 is a Wednesday
	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Admitted || result.Reason != policy.ReasonNotSaturday {
		t.Errorf("expected %s, got admitted=%v reason=%q", policy.ReasonNotSaturday, result.Admitted, result.Reason)
	}
	if f.locks.held("2026-11-11") {
		t.Error("calendar rejection must not leave a lock behind")
	}
}

func TestAttempt_WeekdayRejectionIgnoresMember(t *testing.T) {
	f := newFixture()

	// No member seeded: the calendar verdict comes first, so an unknown
	// member on a weekday still reads as a calendar rejection.
	result, err := f.admission.Attempt(context.Background(), request(memberID(99), "2026-11-11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonNotSaturday {
		t.Errorf("expected %s, got %q", policy.ReasonNotSaturday, result.Reason)
	}
}

func TestAttempt_RejectsSaturdayOutsideSeason(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)

	// A Saturday, but after the season window closes on December 1.
	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-12-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonNotSaturday {
		t.Errorf("expected %s, got %q", policy.ReasonNotSaturday, result.Reason)
	}
}

func TestAttempt_MemberNotFound(t *testing.T) {
	f := newFixture()

	result, err := f.admission.Attempt(context.Background(), request(memberID(99), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Admitted || result.Reason != policy.ReasonMemberNotFound {
		t.Errorf("expected %s, got admitted=%v reason=%q", policy.ReasonMemberNotFound, result.Admitted, result.Reason)
	}
}

func TestAttempt_YearLimitAcrossPools(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	f.store.addBooking(memberID(1), time.Date(2026, time.June, 7, 0, 0, 0, 0, time.UTC), model.PoolSunday, model.ZoneB, true)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonYearLimitExceeded {
		t.Errorf("expected %s, got %q", policy.ReasonYearLimitExceeded, result.Reason)
	}
}

func TestAttempt_CancelledDateStaysClosed(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	f.store.addBooking(memberID(1), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, false)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonDateClosedForMember {
		t.Errorf("expected %s, got %q", policy.ReasonDateClosedForMember, result.Reason)
	}
}

func TestAttempt_ZoneACollectiveCap(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneA)
	// Another zone A member already booked a different Saturday this month.
	f.store.addBooking(memberID(2), time.Date(2026, time.November, 7, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneA, true)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonZoneACollectiveCap {
		t.Errorf("expected %s, got %q", policy.ReasonZoneACollectiveCap, result.Reason)
	}
}

func TestAttempt_ZoneBCCollectiveCap(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneC)
	f.store.addBooking(memberID(2), time.Date(2026, time.November, 7, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)
	f.store.addBooking(memberID(3), time.Date(2026, time.November, 21, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneC, true)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonZoneBCCollectiveCap {
		t.Errorf("expected %s, got %q", policy.ReasonZoneBCCollectiveCap, result.Reason)
	}
}

func TestAttempt_OccupiedSaturday(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneA)
	f.store.addBooking(memberID(2), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonSlotAlreadyTaken {
		t.Errorf("expected %s, got %q", policy.ReasonSlotAlreadyTaken, result.Reason)
	}
}

func TestAttempt_LockContention(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)

	// Another in-flight attempt holds the date lock.
	if err := f.locks.Acquire(context.Background(), "2026-11-14", "other-attempt"); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonSlotAlreadyTaken {
		t.Errorf("expected %s, got %q", policy.ReasonSlotAlreadyTaken, result.Reason)
	}

	// The loser must never tear down the competing attempt's lock.
	if !f.locks.held("2026-11-14") {
		t.Error("losing attempt released a lock it did not own")
	}
}

func TestAttempt_BookingDisabled(t *testing.T) {
	f := newFixture()
	f.cfg.EnableBooking = false
	f.store.addMember(memberID(1), model.ZoneB)

	_, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err == nil {
		t.Fatal("expected error when booking is disabled")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestAttempt_InvalidRequest(t *testing.T) {
	f := newFixture()

	_, err := f.admission.Attempt(context.Background(), request("not-an-id", "2026-11-14"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestAttempt_TransientFaultReleasesLock(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	f.store.countMemberMonthErr = fmt.Errorf("connection reset")

	_, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err == nil {
		t.Fatal("expected transient error")
	}
	if !apperrors.IsTransient(err) {
		t.Errorf("expected transient error, got %v", err)
	}

	// Reconciliation must still run: the date is empty, so the lock goes.
	if f.locks.held("2026-11-14") {
		t.Error("aborted attempt left its lock behind")
	}
}

func TestAttempt_ReconcileFailureDoesNotMaskOutcome(t *testing.T) {
	f := newFixture()
	var logs bytes.Buffer
	f.cfg.Log = logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: &logs})

	f.store.addMember(memberID(1), model.ZoneB)
	f.store.addBooking(memberID(1), time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, false)
	f.locks.releaseErr = fmt.Errorf("connection reset")

	result, err := f.admission.Attempt(context.Background(), request(memberID(1), "2026-11-14"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonDateClosedForMember {
		t.Errorf("expected %s, got %q", policy.ReasonDateClosedForMember, result.Reason)
	}

	// A stranded lock row blocks the date until removed, so the failure
	// must surface at error level for operators.
	if !strings.Contains(logs.String(), "level=ERROR") {
		t.Errorf("expected reconciliation failure logged at error level, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "removed manually") {
		t.Errorf("expected an operator-actionable message, got %q", logs.String())
	}
}

// ────────────────────────────────────────────────
// Occupancy snapshot
// ────────────────────────────────────────────────

func TestGatherCounters_MonthOccupancySnapshot(t *testing.T) {
	f := newFixture()
	member := f.store.addMember(memberID(1), model.ZoneB)

	// June 2026 has four season Saturdays; fill every one but the 27th.
	f.store.addBooking(memberID(2), time.Date(2026, time.June, 6, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneA, true)
	f.store.addBooking(memberID(3), time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)
	f.store.addBooking(memberID(4), time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneC, true)
	// The member's own booking sits in another month of the season.
	f.store.addBooking(memberID(1), time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), model.PoolSaturday, model.ZoneB, true)

	svc := f.admission.(*admissionService)
	date := time.Date(2026, time.June, 27, 0, 0, 0, 0, time.UTC)

	c, err := svc.gatherCounters(context.Background(), model.PoolSaturday, member, 2026, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.ValidSlotDay {
		t.Error("expected a season Saturday to be recognized as a slot day")
	}
	if c.MemberYear != 1 {
		t.Errorf("MemberYear = %d, expected 1 from the July booking", c.MemberYear)
	}
	if c.MemberMonth != 0 {
		t.Errorf("MemberMonth = %d, expected 0 in June", c.MemberMonth)
	}
	if c.ZoneMonth != 2 {
		t.Errorf("ZoneMonth = %d, expected 2 from the B and C bookings", c.ZoneMonth)
	}
	if c.ZoneAMonth != 1 {
		t.Errorf("ZoneAMonth = %d, expected 1", c.ZoneAMonth)
	}
	if c.SlotsRemainingInMonth != 1 {
		t.Errorf("SlotsRemainingInMonth = %d, expected only the 27th left", c.SlotsRemainingInMonth)
	}
	if c.DateActive != 0 || c.DateCapacity != 1 {
		t.Errorf("date occupancy = %d/%d, expected 0/1", c.DateActive, c.DateCapacity)
	}
}

// ────────────────────────────────────────────────
// Concurrency
// ────────────────────────────────────────────────

func TestAttempt_ConcurrentAttemptsOneWinner(t *testing.T) {
	f := newFixture()

	const attempts = 20
	for i := 1; i <= attempts; i++ {
		zone := model.ZoneB
		if i%3 == 0 {
			zone = model.ZoneC
		}
		f.store.addMember(memberID(i), zone)
	}

	var wg sync.WaitGroup
	results := make([]*model.AdmissionResult, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.admission.Attempt(context.Background(), request(memberID(i+1), "2026-11-14"))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i, errs[i])
		}
		if results[i].Admitted {
			admitted++
		}
	}

	if admitted != 1 {
		t.Errorf("expected exactly one admitted attempt, got %d", admitted)
	}

	date := time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC)
	if n := f.store.activeOnDate(date); n != 1 {
		t.Errorf("expected exactly one active booking on the date, got %d", n)
	}
}

// ────────────────────────────────────────────────
// Sunday overflow
// ────────────────────────────────────────────────

// fillSaturdays seeds an active booking on every season Saturday. The
// occupants are zone A so a zone B or C attempt is not tripped up by the
// B/C monthly collective cap.
func fillSaturdays(f *fixture) {
	for i, sat := range calendar.SeasonSaturdays(2026) {
		f.store.addBooking(memberID(1000+i), sat, model.PoolSaturday, model.ZoneA, true)
	}
}

func TestAttemptSunday_RequiresExhaustedSaturdays(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)

	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonSaturdaysNotExhausted {
		t.Errorf("expected %s, got %q", policy.ReasonSaturdaysNotExhausted, result.Reason)
	}
}

func TestAttemptSunday_AdmitsAfterExhaustion(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	fillSaturdays(f)

	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Admitted {
		t.Fatalf("expected admission, got reason %q", result.Reason)
	}
}

func TestAttemptSunday_RejectsSaturdayDate(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	fillSaturdays(f)

	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-06"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonNotSunday {
		t.Errorf("expected %s, got %q", policy.ReasonNotSunday, result.Reason)
	}
}

func TestAttemptSunday_SharedCapacity(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	fillSaturdays(f)

	date := time.Date(2026, time.June, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.store.addBooking(memberID(2000+i), date, model.PoolSunday, model.ZoneA, true)
	}

	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != policy.ReasonSlotAlreadyTaken {
		t.Errorf("expected %s, got %q", policy.ReasonSlotAlreadyTaken, result.Reason)
	}
}

func TestAttemptSunday_PartialOccupancyAdmits(t *testing.T) {
	f := newFixture()
	f.store.addMember(memberID(1), model.ZoneB)
	fillSaturdays(f)

	date := time.Date(2026, time.June, 7, 0, 0, 0, 0, time.UTC)
	f.store.addBooking(memberID(2000), date, model.PoolSunday, model.ZoneA, true)

	result, err := f.admission.AttemptSunday(context.Background(), request(memberID(1), "2026-06-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Admitted {
		t.Fatalf("expected admission with seats free, got reason %q", result.Reason)
	}

	// Seats remain after admission, so the date lock must not linger.
	if f.locks.held("2026-06-07") {
		t.Error("expected lock released while Sunday capacity remains")
	}
}
