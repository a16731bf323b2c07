package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

const exceptionColumns = `id, asset_id, date, description, created_by, updated_by, created_at, updated_at`

type ExceptionRepository struct {
	db *sql.DB
}

var _ ports.ExceptionRepository = (*ExceptionRepository)(nil)

func NewExceptionRepository(db *sql.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

func scanException(row rowScanner) (*domain.UnavailabilityException, error) {
	var exc domain.UnavailabilityException
	err := row.Scan(
		&exc.ID,
		&exc.AssetID,
		&exc.Date,
		&exc.Description,
		&exc.CreatedBy,
		&exc.UpdatedBy,
		&exc.CreatedAt,
		&exc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exc, nil
}

func (r *ExceptionRepository) HasException(ctx context.Context, assetID uuid.UUID, date domain.Date) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM asset_unavailability WHERE asset_id = $1 AND date = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, assetID, date).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *ExceptionRepository) CreateException(ctx context.Context, exc *domain.UnavailabilityException) error {
	query := `
	INSERT INTO asset_unavailability (` + exceptionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		exc.ID, exc.AssetID, exc.Date, exc.Description,
		exc.CreatedBy, exc.UpdatedBy, exc.CreatedAt, exc.UpdatedAt,
	)
	if err != nil {
		if hasCode(err, uniqueViolation) {
			return domain.NewConflictError("asset %s already has an exception on %s", exc.AssetID, exc.Date)
		}
		return fmt.Errorf("failed to insert exception: %w", err)
	}

	return nil
}

func (r *ExceptionRepository) DeleteException(ctx context.Context, exceptionID uuid.UUID) (*domain.UnavailabilityException, error) {
	query := `DELETE FROM asset_unavailability WHERE id = $1 RETURNING ` + exceptionColumns

	exc, err := scanException(r.db.QueryRowContext(ctx, query, exceptionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("unavailability exception", exceptionID.String())
		}
		return nil, err
	}

	return exc, nil
}

func (r *ExceptionRepository) ListExceptions(ctx context.Context, assetID uuid.UUID, from, to domain.Date) ([]domain.UnavailabilityException, error) {
	query := `
	SELECT ` + exceptionColumns + `
	FROM asset_unavailability
	WHERE asset_id = $1 AND date BETWEEN $2 AND $3
	ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, assetID, from, to)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := []domain.UnavailabilityException{}
	for rows.Next() {
		exc, err := scanException(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *exc)
	}

	return out, rows.Err()
}
