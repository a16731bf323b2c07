package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/space_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/services"
)

// monday is 2026-10-19.
var monday = domain.NewDate(2026, time.October, 19)

type fixture struct {
	deps        services.Deps
	store       *memory.Store
	assetID     uuid.UUID
	actor       uuid.UUID
	now         time.Time
	resolver    *services.SlotResolver
	coordinator *services.BookingCoordinator
	editor      *services.ScheduleEditor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   memory.NewStore(),
		assetID: uuid.New(),
		actor:   uuid.New(),
		now:     time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC),
	}
	f.store.AddAsset(f.assetID)

	deps := services.Deps{
		Assets:     f.store,
		Rules:      f.store,
		Exceptions: f.store,
		Bookings:   f.store,
		Locker:     services.NewAssetLocker(),
		Location:   time.UTC,
		Now:        func() time.Time { return f.now },
	}
	f.deps = deps
	f.resolver = services.NewSlotResolver(deps)
	f.coordinator = services.NewBookingCoordinator(deps, 15*time.Minute, time.Minute)
	f.editor = services.NewScheduleEditor(deps)
	return f
}

func (f *fixture) hourly(t *testing.T, day time.Weekday, start, end string, hours int) *domain.RecurrenceRule {
	t.Helper()
	return f.rule(t, day, domain.SlotHourly, start, end, hours)
}

func (f *fixture) daily(t *testing.T, day time.Weekday, start, end string) *domain.RecurrenceRule {
	t.Helper()
	return f.rule(t, day, domain.SlotDaily, start, end, 0)
}

func (f *fixture) rule(t *testing.T, day time.Weekday, typ domain.SlotType, start, end string, hours int) *domain.RecurrenceRule {
	t.Helper()
	rule, err := f.editor.SetRule(context.Background(), f.assetID, day, typ, services.RulePayload{
		StartTime:    tod(t, start),
		EndTime:      tod(t, end),
		SlotDuration: hours,
		Enabled:      true,
	}, f.actor)
	require.NoError(t, err)
	return rule
}

func (f *fixture) booker() services.BookerInfo {
	return services.BookerInfo{Actor: f.actor, ContactNumber: "+6281200000000", Price: 150000, TaxAmount: 16500}
}

func tod(t *testing.T, s string) domain.TimeOfDay {
	t.Helper()
	v, err := domain.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func at(d domain.Date, hour int) time.Time {
	return domain.NewTimeOfDay(hour, 0, 0).On(d, time.UTC)
}

func span(d domain.Date, from, to int) domain.Interval {
	return domain.Interval{Start: at(d, from), End: at(d, to)}
}
