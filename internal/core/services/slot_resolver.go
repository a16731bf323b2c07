package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

// ResolveSlots turns the recurrence rules of one asset into the ordered slot
// list for date. It has no side effects.
//
// Any exception on date empties the result. Only enabled rules for the
// date's weekday contribute candidates, and only pending or confirmed
// bookings mark a candidate as booked. If corrupt data carries both a daily
// and an hourly rule for the day, both candidate sets are returned.
func ResolveSlots(
	date domain.Date,
	loc *time.Location,
	rules []domain.RecurrenceRule,
	exceptions []domain.UnavailabilityException,
	bookings []domain.Booking,
) []domain.Slot {
	for _, exc := range exceptions {
		if exc.Date == date {
			return []domain.Slot{}
		}
	}

	weekday := date.Weekday()
	slots := []domain.Slot{}
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled || rule.DayOfWeek != weekday {
			continue
		}
		for _, c := range rule.Candidates(date, loc) {
			slot := domain.Slot{
				Start:              c.Start,
				End:                c.End,
				SlotType:           rule.SlotType,
				AvailabilityStatus: domain.SlotAvailable,
			}
			for j := range bookings {
				if bookings[j].IsBlocking() && c.Overlaps(bookings[j].Interval()) {
					slot.AvailabilityStatus = domain.SlotBooked
					break
				}
			}
			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(a, b int) bool {
		return slots[a].Start.Before(slots[b].Start)
	})
	return slots
}

// SlotResolver loads the inputs for ResolveSlots from the stores.
type SlotResolver struct {
	deps Deps
}

func NewSlotResolver(deps Deps) *SlotResolver {
	return &SlotResolver{deps: deps.withDefaults()}
}

func (r *SlotResolver) Resolve(ctx context.Context, assetID uuid.UUID, date domain.Date) ([]domain.Slot, error) {
	if err := r.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}

	// The generation is read before load so that a write committed during
	// load invalidates it and the stale result is never stored.
	var gen int64
	cacheable := false
	if r.deps.Cache != nil {
		slots, g, ok, err := r.deps.Cache.Get(ctx, assetID, date)
		switch {
		case err != nil:
			r.deps.Logger.Warn("slot cache read failed",
				zap.String("asset_id", assetID.String()),
				zap.Stringer("date", date),
				zap.Error(err),
			)
		case ok:
			return slots, nil
		default:
			gen, cacheable = g, true
		}
	}

	slots, err := r.load(ctx, assetID, date)
	if err != nil {
		return nil, err
	}

	if cacheable {
		written, err := r.deps.Cache.Set(ctx, assetID, date, gen, slots)
		if err != nil {
			r.deps.Logger.Warn("slot cache write failed",
				zap.String("asset_id", assetID.String()),
				zap.Error(err),
			)
		} else if !written {
			r.deps.Logger.Debug("slot cache write skipped for superseded generation",
				zap.String("asset_id", assetID.String()),
				zap.Int64("generation", gen),
			)
		}
	}
	return slots, nil
}

func (r *SlotResolver) load(ctx context.Context, assetID uuid.UUID, date domain.Date) ([]domain.Slot, error) {
	blocked, err := r.deps.Exceptions.HasException(ctx, assetID, date)
	if err != nil {
		return nil, fmt.Errorf("check exception: %w", err)
	}
	if blocked {
		return []domain.Slot{}, nil
	}

	rules, err := r.deps.Rules.ListEnabledRules(ctx, assetID, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if len(rules) == 0 {
		return []domain.Slot{}, nil
	}

	bookings, err := r.deps.Bookings.ListBlocking(ctx, assetID, date.Window(r.deps.Location))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return ResolveSlots(date, r.deps.Location, rules, nil, bookings), nil
}
