package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type BookingRepository struct {
	mock.Mock
}

func (_m *BookingRepository) CreateIfNoOverlap(ctx context.Context, b *domain.Booking) error {
	ret := _m.Called(ctx, b)
	return ret.Error(0)
}

func (_m *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	ret := _m.Called(ctx, bookingID)
	r0, _ := ret.Get(0).(*domain.Booking)
	return r0, ret.Error(1)
}

func (_m *BookingRepository) ListBlocking(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	ret := _m.Called(ctx, assetID, window)
	r0, _ := ret.Get(0).([]domain.Booking)
	return r0, ret.Error(1)
}

func (_m *BookingRepository) ListByAsset(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error) {
	ret := _m.Called(ctx, assetID, window)
	r0, _ := ret.Get(0).([]domain.Booking)
	return r0, ret.Error(1)
}

// Update applies fn to the booking passed as the first return value when it
// is a *domain.Booking, mirroring the repository contract.
func (_m *BookingRepository) Update(ctx context.Context, bookingID uuid.UUID, fn ports.BookingMutation) (*domain.Booking, error) {
	ret := _m.Called(ctx, bookingID, fn)
	r0, _ := ret.Get(0).(*domain.Booking)
	if err := ret.Error(1); err != nil {
		return nil, err
	}
	if r0 != nil {
		cp := *r0
		if err := fn(&cp); err != nil {
			return nil, err
		}
		return &cp, nil
	}
	return nil, nil
}

func (_m *BookingRepository) ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, cutoff, limit)
	r0, _ := ret.Get(0).([]uuid.UUID)
	return r0, ret.Error(1)
}

func NewBookingRepository(t testingT) *BookingRepository {
	m := &BookingRepository{}
	register(&m.Mock, t)
	return m
}
