package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

var bookingRowColumns = []string{
	"id", "space_asset_id", "contact_number", "start_date_time", "end_date_time",
	"booking_status", "payment_status", "price", "tax_amount", "discount_applied", "discount_id",
	"created_by", "updated_by", "created_at", "updated_at",
}

func setupMockBookingDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *BookingRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewBookingRepository(db)
}

func newTestBooking() *domain.Booking {
	start := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	actor := uuid.New()
	return &domain.Booking{
		ID:            uuid.New(),
		SpaceAssetID:  uuid.New(),
		ContactNumber: "+6281200000000",
		StartDateTime: start,
		EndDateTime:   start.Add(2 * time.Hour),
		BookingStatus: domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
		Price:         150000,
		TaxAmount:     16500,
		CreatedBy:     actor,
		UpdatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func bookingRow(rows *sqlmock.Rows, b *domain.Booking) *sqlmock.Rows {
	var discount any
	if b.DiscountID != nil {
		discount = b.DiscountID.String()
	}
	return rows.AddRow(
		b.ID.String(), b.SpaceAssetID.String(), b.ContactNumber, b.StartDateTime, b.EndDateTime,
		string(b.BookingStatus), string(b.PaymentStatus), b.Price, b.TaxAmount, b.DiscountApplied, discount,
		b.CreatedBy.String(), b.UpdatedBy.String(), b.CreatedAt, b.UpdatedAt,
	)
}

func TestCreateIfNoOverlap_Success(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs(b.SpaceAssetID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM bookings`).
		WithArgs(b.SpaceAssetID, blockingStatuses(), b.EndDateTime, b.StartDateTime).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateIfNoOverlap(ctx, b)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOverlap_OverlapIsConflict(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectRollback()

	err := repo.CreateIfNoOverlap(ctx, b)

	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOverlap_ExclusionViolationIsConflict(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM bookings`).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
	mock.ExpectRollback()

	err := repo.CreateIfNoOverlap(ctx, b)

	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOverlap_InsertError(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM bookings`).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateIfNoOverlap(ctx, b)

	require.Error(t, err)
	assert.False(t, domain.IsConflict(err))
	assert.Contains(t, err.Error(), "failed to insert booking")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Success(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()
	discount := uuid.New()
	b.DiscountID = &discount

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(b.ID).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), b))

	got, err := repo.GetByID(ctx, b.ID)

	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, domain.BookingPending, got.BookingStatus)
	assert.Equal(t, b.StartDateTime, got.StartDateTime)
	require.NotNil(t, got.DiscountID)
	assert.Equal(t, discount, *got.DiscountID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(ctx, id)

	assert.Nil(t, got)
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBlocking(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	first := newTestBooking()
	second := newTestBooking()
	second.SpaceAssetID = first.SpaceAssetID
	second.StartDateTime = first.EndDateTime
	second.EndDateTime = first.EndDateTime.Add(time.Hour)
	window := domain.Interval{
		Start: time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC),
	}

	rows := sqlmock.NewRows(bookingRowColumns)
	bookingRow(rows, first)
	bookingRow(rows, second)
	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(first.SpaceAssetID, blockingStatuses(), window.End, window.Start).
		WillReturnRows(rows)

	got, err := repo.ListBlocking(ctx, first.SpaceAssetID, window)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].DiscountID)
	assert.Equal(t, second.ID, got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_AppliesMutation(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()
	actor := uuid.New()
	at := b.CreatedAt.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1 FOR UPDATE`).
		WithArgs(b.ID).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), b))
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(domain.BookingCancelled, domain.PaymentPending, actor, at, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Update(ctx, b.ID, func(cur *domain.Booking) error {
		cur.BookingStatus = domain.BookingCancelled
		cur.UpdatedBy = actor
		cur.UpdatedAt = at
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.BookingStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MutationErrorRollsBack(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	b := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(b.ID).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), b))
	mock.ExpectRollback()

	_, err := repo.Update(ctx, b.ID, func(*domain.Booking) error {
		return domain.NewValidationError("nope")
	})

	assert.True(t, domain.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings`).WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(ctx, id, func(*domain.Booking) error { return nil })

	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListStaleHolds(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	ctx := context.Background()
	cutoff := time.Date(2026, time.October, 14, 7, 45, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WithArgs(cutoff, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(ids[0].String()).AddRow(ids[1].String()))

	got, err := repo.ListStaleHolds(ctx, cutoff, 100)

	require.NoError(t, err)
	assert.Equal(t, ids, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
