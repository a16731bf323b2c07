package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type RecurrenceRepository struct {
	mock.Mock
}

func (_m *RecurrenceRepository) ListRules(ctx context.Context, assetID uuid.UUID) ([]domain.RecurrenceRule, error) {
	ret := _m.Called(ctx, assetID)
	r0, _ := ret.Get(0).([]domain.RecurrenceRule)
	return r0, ret.Error(1)
}

func (_m *RecurrenceRepository) ListEnabledRules(ctx context.Context, assetID uuid.UUID, day time.Weekday) ([]domain.RecurrenceRule, error) {
	ret := _m.Called(ctx, assetID, day)
	r0, _ := ret.Get(0).([]domain.RecurrenceRule)
	return r0, ret.Error(1)
}

func (_m *RecurrenceRepository) FindRule(ctx context.Context, assetID uuid.UUID, day time.Weekday, slotType domain.SlotType) (*domain.RecurrenceRule, error) {
	ret := _m.Called(ctx, assetID, day, slotType)
	r0, _ := ret.Get(0).(*domain.RecurrenceRule)
	return r0, ret.Error(1)
}

func (_m *RecurrenceRepository) UpsertRule(ctx context.Context, rule *domain.RecurrenceRule) error {
	ret := _m.Called(ctx, rule)
	return ret.Error(0)
}

func (_m *RecurrenceRepository) DeleteRule(ctx context.Context, ruleID uuid.UUID) (*domain.RecurrenceRule, error) {
	ret := _m.Called(ctx, ruleID)
	r0, _ := ret.Get(0).(*domain.RecurrenceRule)
	return r0, ret.Error(1)
}

func NewRecurrenceRepository(t testingT) *RecurrenceRepository {
	m := &RecurrenceRepository{}
	register(&m.Mock, t)
	return m
}
