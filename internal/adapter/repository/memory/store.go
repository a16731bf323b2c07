// Package memory keeps assets, schedules and bookings in process memory. It
// backs single-process deployments and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

type ruleKey struct {
	asset uuid.UUID
	day   time.Weekday
	typ   domain.SlotType
}

type excKey struct {
	asset uuid.UUID
	date  domain.Date
}

// Store implements every repository port over maps guarded by one RWMutex.
type Store struct {
	mu         sync.RWMutex
	assets     map[uuid.UUID]struct{}
	rules      map[uuid.UUID]domain.RecurrenceRule
	ruleIndex  map[ruleKey]uuid.UUID
	exceptions map[uuid.UUID]domain.UnavailabilityException
	excIndex   map[excKey]uuid.UUID
	bookings   map[uuid.UUID]domain.Booking
}

var (
	_ ports.AssetDirectory       = (*Store)(nil)
	_ ports.RecurrenceRepository = (*Store)(nil)
	_ ports.ExceptionRepository  = (*Store)(nil)
	_ ports.BookingRepository    = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		assets:     make(map[uuid.UUID]struct{}),
		rules:      make(map[uuid.UUID]domain.RecurrenceRule),
		ruleIndex:  make(map[ruleKey]uuid.UUID),
		exceptions: make(map[uuid.UUID]domain.UnavailabilityException),
		excIndex:   make(map[excKey]uuid.UUID),
		bookings:   make(map[uuid.UUID]domain.Booking),
	}
}

func (s *Store) AddAsset(assetID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[assetID] = struct{}{}
}

func (s *Store) Exists(_ context.Context, assetID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assets[assetID]
	return ok, nil
}

func (s *Store) ListRules(_ context.Context, assetID uuid.UUID) ([]domain.RecurrenceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.RecurrenceRule{}
	for _, r := range s.rules {
		if r.AssetID == assetID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].SlotType < out[j].SlotType
	})
	return out, nil
}

func (s *Store) ListEnabledRules(ctx context.Context, assetID uuid.UUID, day time.Weekday) ([]domain.RecurrenceRule, error) {
	all, _ := s.ListRules(ctx, assetID)
	out := []domain.RecurrenceRule{}
	for _, r := range all {
		if r.DayOfWeek == day && r.Enabled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) FindRule(_ context.Context, assetID uuid.UUID, day time.Weekday, slotType domain.SlotType) (*domain.RecurrenceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ruleIndex[ruleKey{assetID, day, slotType}]
	if !ok {
		return nil, nil
	}
	r := s.rules[id]
	return &r, nil
}

func (s *Store) UpsertRule(_ context.Context, rule *domain.RecurrenceRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ruleKey{rule.AssetID, rule.DayOfWeek, rule.SlotType}
	if id, ok := s.ruleIndex[key]; ok {
		prev := s.rules[id]
		rule.ID = prev.ID
		rule.CreatedBy = prev.CreatedBy
		rule.CreatedAt = prev.CreatedAt
	}
	s.rules[rule.ID] = *rule
	s.ruleIndex[key] = rule.ID
	return nil
}

func (s *Store) DeleteRule(_ context.Context, ruleID uuid.UUID) (*domain.RecurrenceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[ruleID]
	if !ok {
		return nil, domain.NewNotFoundError("recurrence rule", ruleID.String())
	}
	delete(s.rules, ruleID)
	delete(s.ruleIndex, ruleKey{r.AssetID, r.DayOfWeek, r.SlotType})
	return &r, nil
}

func (s *Store) HasException(_ context.Context, assetID uuid.UUID, date domain.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.excIndex[excKey{assetID, date}]
	return ok, nil
}

func (s *Store) CreateException(_ context.Context, exc *domain.UnavailabilityException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := excKey{exc.AssetID, exc.Date}
	if _, ok := s.excIndex[key]; ok {
		return domain.NewConflictError("asset %s already has an exception on %s", exc.AssetID, exc.Date)
	}
	s.exceptions[exc.ID] = *exc
	s.excIndex[key] = exc.ID
	return nil
}

func (s *Store) DeleteException(_ context.Context, exceptionID uuid.UUID) (*domain.UnavailabilityException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exc, ok := s.exceptions[exceptionID]
	if !ok {
		return nil, domain.NewNotFoundError("unavailability exception", exceptionID.String())
	}
	delete(s.exceptions, exceptionID)
	delete(s.excIndex, excKey{exc.AssetID, exc.Date})
	return &exc, nil
}

func (s *Store) ListExceptions(_ context.Context, assetID uuid.UUID, from, to domain.Date) ([]domain.UnavailabilityException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.UnavailabilityException{}
	for _, exc := range s.exceptions {
		if exc.AssetID != assetID || exc.Date.Before(from) || to.Before(exc.Date) {
			continue
		}
		out = append(out, exc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CreateIfNoOverlap holds the write lock across the check and the insert.
func (s *Store) CreateIfNoOverlap(_ context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := b.Interval()
	for _, existing := range s.bookings {
		if existing.SpaceAssetID == b.SpaceAssetID && existing.IsBlocking() && existing.Interval().Overlaps(want) {
			return domain.NewConflictError("slot %s - %s is no longer available",
				want.Start.Format(time.RFC3339), want.End.Format(time.RFC3339))
		}
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) GetByID(_ context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("booking", bookingID.String())
	}
	return &b, nil
}

func (s *Store) ListBlocking(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	all, _ := s.ListByAsset(ctx, assetID, window)
	out := []domain.Booking{}
	for _, b := range all {
		if b.IsBlocking() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) ListByAsset(_ context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Booking{}
	for _, b := range s.bookings {
		if b.SpaceAssetID == assetID && b.Interval().Overlaps(window) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out, nil
}

func (s *Store) Update(_ context.Context, bookingID uuid.UUID, fn ports.BookingMutation) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("booking", bookingID.String())
	}
	if err := fn(&b); err != nil {
		return nil, err
	}
	s.bookings[bookingID] = b
	return &b, nil
}

func (s *Store) ListStaleHolds(_ context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, b := range s.bookings {
		if len(ids) >= limit {
			break
		}
		if b.BookingStatus == domain.BookingPending && b.PaymentStatus == domain.PaymentPending && b.CreatedAt.Before(cutoff) {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}
