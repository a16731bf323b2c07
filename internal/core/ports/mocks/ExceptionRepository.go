package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type ExceptionRepository struct {
	mock.Mock
}

func (_m *ExceptionRepository) HasException(ctx context.Context, assetID uuid.UUID, date domain.Date) (bool, error) {
	ret := _m.Called(ctx, assetID, date)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ExceptionRepository) CreateException(ctx context.Context, exc *domain.UnavailabilityException) error {
	ret := _m.Called(ctx, exc)
	return ret.Error(0)
}

func (_m *ExceptionRepository) DeleteException(ctx context.Context, exceptionID uuid.UUID) (*domain.UnavailabilityException, error) {
	ret := _m.Called(ctx, exceptionID)
	r0, _ := ret.Get(0).(*domain.UnavailabilityException)
	return r0, ret.Error(1)
}

func (_m *ExceptionRepository) ListExceptions(ctx context.Context, assetID uuid.UUID, from, to domain.Date) ([]domain.UnavailabilityException, error) {
	ret := _m.Called(ctx, assetID, from, to)
	r0, _ := ret.Get(0).([]domain.UnavailabilityException)
	return r0, ret.Error(1)
}

func NewExceptionRepository(t testingT) *ExceptionRepository {
	m := &ExceptionRepository{}
	register(&m.Mock, t)
	return m
}
