package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

type RulePayload struct {
	StartTime    domain.TimeOfDay
	EndTime      domain.TimeOfDay
	SlotDuration int
	Enabled      bool
}

type ScheduleEditor struct {
	deps Deps
}

func NewScheduleEditor(deps Deps) *ScheduleEditor {
	return &ScheduleEditor{deps: deps.withDefaults()}
}

// SetRule creates or replaces the rule for (asset, day, slot type). Enabling
// a rule is refused while the other slot type is enabled on the same day.
func (e *ScheduleEditor) SetRule(ctx context.Context, assetID uuid.UUID, day time.Weekday, slotType domain.SlotType, p RulePayload, actor uuid.UUID) (*domain.RecurrenceRule, error) {
	if actor == uuid.Nil {
		return nil, domain.NewValidationError("actor is required")
	}
	if day < time.Sunday || day > time.Saturday {
		return nil, domain.NewValidationError("day_of_week must be between 0 and 6, got %d", day)
	}
	if !slotType.Valid() {
		return nil, domain.NewValidationError("unknown slot type %q", slotType)
	}
	if err := validateBounds(slotType, &p); err != nil {
		return nil, err
	}
	if err := e.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}

	unlock := e.deps.Locker.Lock(assetID)
	defer unlock()

	if p.Enabled {
		other, err := e.deps.Rules.FindRule(ctx, assetID, day, slotType.Other())
		if err != nil {
			return nil, fmt.Errorf("find %s rule: %w", slotType.Other(), err)
		}
		if other != nil && other.Enabled {
			return nil, domain.NewValidationError("%s slots are already enabled on %s; disable them before enabling %s slots",
				other.SlotType, day, slotType)
		}
	}

	existing, err := e.deps.Rules.FindRule(ctx, assetID, day, slotType)
	if err != nil {
		return nil, fmt.Errorf("find %s rule: %w", slotType, err)
	}

	now := e.deps.Now().UTC()
	rule := &domain.RecurrenceRule{
		ID:        uuid.New(),
		AssetID:   assetID,
		DayOfWeek: day,
		SlotType:  slotType,
		CreatedBy: actor,
		CreatedAt: now,
	}
	if existing != nil {
		rule = existing
	}
	rule.SlotDuration = p.SlotDuration
	rule.StartTime = p.StartTime
	rule.EndTime = p.EndTime
	rule.Enabled = p.Enabled
	rule.UpdatedBy = actor
	rule.UpdatedAt = now

	if err := e.deps.Rules.UpsertRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("save rule: %w", err)
	}

	e.deps.invalidate(ctx, assetID)
	e.deps.Logger.Info("recurrence rule saved",
		zap.String("asset_id", assetID.String()),
		zap.Stringer("day", day),
		zap.String("slot_type", string(slotType)),
		zap.Bool("enabled", rule.Enabled),
	)
	return rule, nil
}

func validateBounds(slotType domain.SlotType, p *RulePayload) error {
	if p.StartTime >= p.EndTime {
		return domain.NewValidationError("start_time %s must be before end_time %s", p.StartTime, p.EndTime)
	}
	if slotType == domain.SlotDaily {
		p.SlotDuration = 0
		return nil
	}
	if p.SlotDuration < 1 {
		return domain.NewValidationError("slot_duration must be at least 1 hour for hourly slots")
	}
	if p.StartTime.Add(time.Duration(p.SlotDuration)*time.Hour) > p.EndTime {
		return domain.NewValidationError("a %d hour slot does not fit between %s and %s", p.SlotDuration, p.StartTime, p.EndTime)
	}
	return nil
}

func (e *ScheduleEditor) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	rule, err := e.deps.Rules.DeleteRule(ctx, ruleID)
	if err != nil {
		return err
	}
	e.deps.invalidate(ctx, rule.AssetID)
	return nil
}

func (e *ScheduleEditor) ListRules(ctx context.Context, assetID uuid.UUID) ([]domain.RecurrenceRule, error) {
	if err := e.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return e.deps.Rules.ListRules(ctx, assetID)
}

// SetException blocks date for the asset. A second exception for the same
// date is a conflict.
func (e *ScheduleEditor) SetException(ctx context.Context, assetID uuid.UUID, date domain.Date, description string, actor uuid.UUID) (*domain.UnavailabilityException, error) {
	if actor == uuid.Nil {
		return nil, domain.NewValidationError("actor is required")
	}
	if date.IsZero() {
		return nil, domain.NewValidationError("date is required")
	}
	if err := e.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}

	now := e.deps.Now().UTC()
	exc := &domain.UnavailabilityException{
		ID:          uuid.New(),
		AssetID:     assetID,
		Date:        date,
		Description: description,
		CreatedBy:   actor,
		UpdatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	unlock := e.deps.Locker.Lock(assetID)
	defer unlock()

	if err := e.deps.Exceptions.CreateException(ctx, exc); err != nil {
		if domain.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("save exception: %w", err)
	}

	e.deps.invalidate(ctx, assetID)
	e.deps.Logger.Info("unavailability exception added",
		zap.String("asset_id", assetID.String()),
		zap.Stringer("date", date),
	)
	return exc, nil
}

func (e *ScheduleEditor) RemoveException(ctx context.Context, exceptionID uuid.UUID) error {
	exc, err := e.deps.Exceptions.DeleteException(ctx, exceptionID)
	if err != nil {
		return err
	}
	e.deps.invalidate(ctx, exc.AssetID)
	return nil
}

func (e *ScheduleEditor) ListExceptions(ctx context.Context, assetID uuid.UUID, from, to domain.Date) ([]domain.UnavailabilityException, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("to %s is before from %s", to, from)
	}
	if err := e.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return e.deps.Exceptions.ListExceptions(ctx, assetID, from, to)
}
