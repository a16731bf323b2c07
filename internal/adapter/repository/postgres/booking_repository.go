package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

const bookingColumns = `id, space_asset_id, contact_number, start_date_time, end_date_time,
	booking_status, payment_status, price, tax_amount, discount_applied, discount_id,
	created_by, updated_by, created_at, updated_at`

type BookingRepository struct {
	db *sql.DB
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func blockingStatuses() pq.StringArray {
	out := make(pq.StringArray, 0, len(domain.BlockingStatuses))
	for _, s := range domain.BlockingStatuses {
		out = append(out, string(s))
	}
	return out
}

// CreateIfNoOverlap serializes writers on the asset with a transaction-scoped
// advisory lock, then checks and inserts in the same transaction. The
// exclusion constraint on bookings backs this up at the storage level.
func (r *BookingRepository) CreateIfNoOverlap(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, b.SpaceAssetID.String()); err != nil {
		return fmt.Errorf("failed to lock asset %s: %w", b.SpaceAssetID, err)
	}

	queryOverlap := `
	SELECT id FROM bookings
	WHERE space_asset_id = $1
		AND booking_status = ANY($2)
		AND start_date_time < $3
		AND end_date_time > $4
	LIMIT 1
	FOR UPDATE
	`

	var existing uuid.UUID
	err = tx.QueryRowContext(ctx, queryOverlap, b.SpaceAssetID, blockingStatuses(), b.EndDateTime, b.StartDateTime).Scan(&existing)
	switch {
	case err == nil:
		return domain.NewConflictError("slot %s - %s is no longer available",
			b.StartDateTime.Format(time.RFC3339), b.EndDateTime.Format(time.RFC3339))
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check overlap: %w", err)
	}

	queryInsert := `
	INSERT INTO bookings (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.ExecContext(ctx, queryInsert,
		b.ID, b.SpaceAssetID, b.ContactNumber, b.StartDateTime, b.EndDateTime,
		b.BookingStatus, b.PaymentStatus, b.Price, b.TaxAmount, b.DiscountApplied, b.DiscountID,
		b.CreatedBy, b.UpdatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if hasCode(err, exclusionViolation) {
			return domain.NewConflictError("slot %s - %s is no longer available",
				b.StartDateTime.Format(time.RFC3339), b.EndDateTime.Format(time.RFC3339))
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var discountID uuid.NullUUID

	err := row.Scan(
		&b.ID,
		&b.SpaceAssetID,
		&b.ContactNumber,
		&b.StartDateTime,
		&b.EndDateTime,
		&b.BookingStatus,
		&b.PaymentStatus,
		&b.Price,
		&b.TaxAmount,
		&b.DiscountApplied,
		&discountID,
		&b.CreatedBy,
		&b.UpdatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountID.Valid {
		id := discountID.UUID
		b.DiscountID = &id
	}

	return &b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking", bookingID.String())
		}
		return nil, err
	}

	return b, nil
}

func (r *BookingRepository) ListBlocking(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE space_asset_id = $1
		AND booking_status = ANY($2)
		AND start_date_time < $3
		AND end_date_time > $4
	ORDER BY start_date_time ASC
	`

	return r.list(ctx, query, assetID, blockingStatuses(), window.End, window.Start)
}

func (r *BookingRepository) ListByAsset(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE space_asset_id = $1
		AND start_date_time < $2
		AND end_date_time > $3
	ORDER BY start_date_time ASC
	`

	return r.list(ctx, query, assetID, window.End, window.Start)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) Update(ctx context.Context, bookingID uuid.UUID, fn ports.BookingMutation) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(tx.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking", bookingID.String())
		}
		return nil, err
	}

	if err := fn(b); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE bookings
	SET booking_status = $1, payment_status = $2, updated_by = $3, updated_at = $4
	WHERE id = $5
	`, b.BookingStatus, b.PaymentStatus, b.UpdatedBy, b.UpdatedAt, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return b, nil
}

func (r *BookingRepository) ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM bookings
	WHERE booking_status = 'pending' AND payment_status = 'pending' AND created_at < $1
	ORDER BY created_at ASC
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
