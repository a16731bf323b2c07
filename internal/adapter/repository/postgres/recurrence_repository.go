package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

const ruleColumns = `id, asset_id, day_of_week, slot_type, slot_duration, start_time, end_time,
	is_enabled, created_by, updated_by, created_at, updated_at`

// TIME columns are read as text so that 24:00:00 survives decoding.
const ruleSelectColumns = `id, asset_id, day_of_week, slot_type, slot_duration, start_time::text, end_time::text,
	is_enabled, created_by, updated_by, created_at, updated_at`

type RecurrenceRepository struct {
	db *sql.DB
}

var _ ports.RecurrenceRepository = (*RecurrenceRepository)(nil)

func NewRecurrenceRepository(db *sql.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

func scanRule(row rowScanner) (*domain.RecurrenceRule, error) {
	var rule domain.RecurrenceRule
	err := row.Scan(
		&rule.ID,
		&rule.AssetID,
		&rule.DayOfWeek,
		&rule.SlotType,
		&rule.SlotDuration,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Enabled,
		&rule.CreatedBy,
		&rule.UpdatedBy,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RecurrenceRepository) ListRules(ctx context.Context, assetID uuid.UUID) ([]domain.RecurrenceRule, error) {
	query := `
	SELECT ` + ruleSelectColumns + `
	FROM asset_availability
	WHERE asset_id = $1
	ORDER BY day_of_week, slot_type
	`
	return r.list(ctx, query, assetID)
}

func (r *RecurrenceRepository) ListEnabledRules(ctx context.Context, assetID uuid.UUID, day time.Weekday) ([]domain.RecurrenceRule, error) {
	query := `
	SELECT ` + ruleSelectColumns + `
	FROM asset_availability
	WHERE asset_id = $1 AND day_of_week = $2 AND is_enabled = TRUE
	ORDER BY start_time
	`
	return r.list(ctx, query, assetID, int(day))
}

func (r *RecurrenceRepository) list(ctx context.Context, query string, args ...any) ([]domain.RecurrenceRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	rules := []domain.RecurrenceRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}

		rules = append(rules, *rule)
	}

	return rules, rows.Err()
}

func (r *RecurrenceRepository) FindRule(ctx context.Context, assetID uuid.UUID, day time.Weekday, slotType domain.SlotType) (*domain.RecurrenceRule, error) {
	query := `
	SELECT ` + ruleSelectColumns + `
	FROM asset_availability
	WHERE asset_id = $1 AND day_of_week = $2 AND slot_type = $3
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, assetID, int(day), string(slotType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rule, nil
}

// UpsertRule keeps the original id and creation audit of an existing row.
func (r *RecurrenceRepository) UpsertRule(ctx context.Context, rule *domain.RecurrenceRule) error {
	query := `
	INSERT INTO asset_availability (` + ruleColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (asset_id, day_of_week, slot_type) DO UPDATE
	SET slot_duration = EXCLUDED.slot_duration,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		is_enabled = EXCLUDED.is_enabled,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	RETURNING id, created_by, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rule.ID, rule.AssetID, int(rule.DayOfWeek), string(rule.SlotType), rule.SlotDuration,
		rule.StartTime, rule.EndTime, rule.Enabled,
		rule.CreatedBy, rule.UpdatedBy, rule.CreatedAt, rule.UpdatedAt,
	).Scan(&rule.ID, &rule.CreatedBy, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert rule: %w", err)
	}

	return nil
}

func (r *RecurrenceRepository) DeleteRule(ctx context.Context, ruleID uuid.UUID) (*domain.RecurrenceRule, error) {
	query := `DELETE FROM asset_availability WHERE id = $1 RETURNING ` + ruleSelectColumns

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("recurrence rule", ruleID.String())
		}
		return nil, err
	}

	return rule, nil
}
