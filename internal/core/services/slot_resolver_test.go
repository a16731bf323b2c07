package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/space_booking/internal/adapter/cache"
	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports/mocks"
	"github.com/srgjo27/space_booking/internal/core/services"
)

func hourlyRule(day time.Weekday, start, end domain.TimeOfDay, hours int) domain.RecurrenceRule {
	return domain.RecurrenceRule{
		ID:           uuid.New(),
		DayOfWeek:    day,
		SlotType:     domain.SlotHourly,
		SlotDuration: hours,
		StartTime:    start,
		EndTime:      end,
		Enabled:      true,
	}
}

func TestResolveSlots_HourlySlicing(t *testing.T) {
	rules := []domain.RecurrenceRule{
		hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(17, 0, 0), 2),
	}

	slots := services.ResolveSlots(monday, time.UTC, rules, nil, nil)

	require.Len(t, slots, 4)
	for i, from := range []int{9, 11, 13, 15} {
		assert.Equal(t, at(monday, from), slots[i].Start)
		assert.Equal(t, at(monday, from+2), slots[i].End)
		assert.Equal(t, domain.SlotAvailable, slots[i].AvailabilityStatus)
	}
}

func TestResolveSlots_DropsPartialRemainder(t *testing.T) {
	rules := []domain.RecurrenceRule{
		hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(16, 30, 0), 2),
	}

	slots := services.ResolveSlots(monday, time.UTC, rules, nil, nil)

	require.Len(t, slots, 3)
	assert.Equal(t, at(monday, 15), slots[2].End)
}

func TestResolveSlots_Daily(t *testing.T) {
	rules := []domain.RecurrenceRule{{
		DayOfWeek: time.Monday,
		SlotType:  domain.SlotDaily,
		StartTime: domain.NewTimeOfDay(8, 0, 0),
		EndTime:   domain.NewTimeOfDay(18, 0, 0),
		Enabled:   true,
	}}

	slots := services.ResolveSlots(monday, time.UTC, rules, nil, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, span(monday, 8, 18), slots[0].Interval())
	assert.Equal(t, domain.SlotDaily, slots[0].SlotType)
}

func TestResolveSlots_ExceptionDominates(t *testing.T) {
	rules := []domain.RecurrenceRule{
		hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(17, 0, 0), 1),
		{DayOfWeek: time.Monday, SlotType: domain.SlotDaily, StartTime: domain.NewTimeOfDay(0, 0, 0), EndTime: domain.NewTimeOfDay(24, 0, 0), Enabled: true},
	}
	exceptions := []domain.UnavailabilityException{{Date: monday, Description: "maintenance"}}

	slots := services.ResolveSlots(monday, time.UTC, rules, exceptions, nil)

	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestResolveSlots_ExceptionOnOtherDateIgnored(t *testing.T) {
	rules := []domain.RecurrenceRule{
		hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(11, 0, 0), 1),
	}
	exceptions := []domain.UnavailabilityException{{Date: monday.AddDays(7)}}

	assert.Len(t, services.ResolveSlots(monday, time.UTC, rules, exceptions, nil), 2)
}

func TestResolveSlots_SkipsOtherWeekdaysAndDisabled(t *testing.T) {
	disabled := hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(12, 0, 0), 1)
	disabled.Enabled = false
	rules := []domain.RecurrenceRule{
		disabled,
		hourlyRule(time.Tuesday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(12, 0, 0), 1),
	}

	assert.Empty(t, services.ResolveSlots(monday, time.UTC, rules, nil, nil))
}

func TestResolveSlots_MarksBookedByOverlap(t *testing.T) {
	rules := []domain.RecurrenceRule{
		hourlyRule(time.Monday, domain.NewTimeOfDay(9, 0, 0), domain.NewTimeOfDay(13, 0, 0), 1),
	}
	bookings := []domain.Booking{
		{StartDateTime: at(monday, 10), EndDateTime: at(monday, 11), BookingStatus: domain.BookingConfirmed},
		{StartDateTime: at(monday, 11).Add(30 * time.Minute), EndDateTime: at(monday, 12).Add(30 * time.Minute), BookingStatus: domain.BookingPending},
		{StartDateTime: at(monday, 9), EndDateTime: at(monday, 10), BookingStatus: domain.BookingCancelled},
	}

	slots := services.ResolveSlots(monday, time.UTC, rules, nil, bookings)

	require.Len(t, slots, 4)
	got := []domain.AvailabilityStatus{}
	for _, s := range slots {
		got = append(got, s.AvailabilityStatus)
	}
	assert.Equal(t, []domain.AvailabilityStatus{
		domain.SlotAvailable,
		domain.SlotBooked,
		domain.SlotBooked,
		domain.SlotBooked,
	}, got)
}

func TestResolveSlots_CorruptDailyAndHourlyEmitsBoth(t *testing.T) {
	rules := []domain.RecurrenceRule{
		{DayOfWeek: time.Monday, SlotType: domain.SlotDaily, StartTime: domain.NewTimeOfDay(12, 0, 0), EndTime: domain.NewTimeOfDay(18, 0, 0), Enabled: true},
		hourlyRule(time.Monday, domain.NewTimeOfDay(8, 0, 0), domain.NewTimeOfDay(10, 0, 0), 1),
	}

	slots := services.ResolveSlots(monday, time.UTC, rules, nil, nil)

	require.Len(t, slots, 3)
	assert.Equal(t, at(monday, 8), slots[0].Start)
	assert.Equal(t, at(monday, 9), slots[1].Start)
	assert.Equal(t, domain.SlotDaily, slots[2].SlotType)
}

func TestResolve_UnknownAsset(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), uuid.New(), monday)

	assert.True(t, domain.IsValidation(err))
}

func TestResolve_NoRules(t *testing.T) {
	f := newFixture(t)

	slots, err := f.resolver.Resolve(context.Background(), f.assetID, monday)

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolve_ExceptionDominance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.hourly(t, time.Monday, "09:00", "17:00", 2)

	_, err := f.editor.SetException(ctx, f.assetID, monday, "maintenance", f.actor)
	require.NoError(t, err)

	slots, err := f.resolver.Resolve(ctx, f.assetID, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	next, err := f.resolver.Resolve(ctx, f.assetID, monday.AddDays(7))
	require.NoError(t, err)
	assert.Len(t, next, 4)
}

func TestResolve_ConcurrentReadsAreStable(t *testing.T) {
	f := newFixture(t)
	f.hourly(t, time.Monday, "09:00", "17:00", 1)
	_, err := f.coordinator.Reserve(context.Background(), f.assetID, span(monday, 10, 11), f.booker())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots, err := f.resolver.Resolve(context.Background(), f.assetID, monday)
			assert.NoError(t, err)
			assert.Len(t, slots, 8)
		}()
	}
	wg.Wait()
}

func TestResolve_ServesFromCache(t *testing.T) {
	assets := mocks.NewAssetDirectory(t)
	rules := mocks.NewRecurrenceRepository(t)
	exceptions := mocks.NewExceptionRepository(t)
	bookings := mocks.NewBookingRepository(t)
	client, mockRedis := redismock.NewClientMock()

	ctx := context.Background()
	assetID := uuid.New()
	resolver := services.NewSlotResolver(services.Deps{
		Assets:     assets,
		Rules:      rules,
		Exceptions: exceptions,
		Bookings:   bookings,
		Cache:      cache.NewSlotCache(client, time.Minute),
	})

	assets.On("Exists", ctx, assetID).Return(true, nil)
	mockRedis.ExpectGet(cache.GenKey(assetID)).SetVal("3")
	mockRedis.ExpectGet(cache.SlotKey(assetID, 3, monday)).
		SetVal(`[{"start":"2026-10-19T09:00:00Z","end":"2026-10-19T10:00:00Z","slot_type":"hourly","availability_status":"booked"}]`)

	slots, err := resolver.Resolve(ctx, assetID, monday)

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, domain.SlotBooked, slots[0].AvailabilityStatus)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestResolve_CacheFailureFallsBackToStores(t *testing.T) {
	assets := mocks.NewAssetDirectory(t)
	rules := mocks.NewRecurrenceRepository(t)
	exceptions := mocks.NewExceptionRepository(t)
	bookings := mocks.NewBookingRepository(t)
	client, mockRedis := redismock.NewClientMock()

	ctx := context.Background()
	assetID := uuid.New()
	resolver := services.NewSlotResolver(services.Deps{
		Assets:     assets,
		Rules:      rules,
		Exceptions: exceptions,
		Bookings:   bookings,
		Cache:      cache.NewSlotCache(client, time.Minute),
	})

	assets.On("Exists", ctx, assetID).Return(true, nil)
	mockRedis.ExpectGet(cache.GenKey(assetID)).SetErr(errors.New("connection refused"))
	exceptions.On("HasException", ctx, assetID, monday).Return(true, nil)

	slots, err := resolver.Resolve(ctx, assetID, monday)

	require.NoError(t, err)
	assert.Empty(t, slots)
	rules.AssertNotCalled(t, "ListEnabledRules")
	bookings.AssertNotCalled(t, "ListBlocking")
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestResolve_StoreErrorIsWrapped(t *testing.T) {
	assets := mocks.NewAssetDirectory(t)
	rules := mocks.NewRecurrenceRepository(t)
	exceptions := mocks.NewExceptionRepository(t)
	bookings := mocks.NewBookingRepository(t)

	ctx := context.Background()
	assetID := uuid.New()
	resolver := services.NewSlotResolver(services.Deps{
		Assets: assets, Rules: rules, Exceptions: exceptions, Bookings: bookings,
	})

	boom := errors.New("db down")
	assets.On("Exists", ctx, assetID).Return(true, nil)
	exceptions.On("HasException", ctx, assetID, monday).Return(false, nil)
	rules.On("ListEnabledRules", ctx, assetID, time.Monday).Return(nil, boom)

	_, err := resolver.Resolve(ctx, assetID, monday)

	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsConflict(err))
}
