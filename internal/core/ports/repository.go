package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/space_booking/internal/core/domain"
)

// AssetDirectory is the read-only view of the surrounding asset catalogue.
type AssetDirectory interface {
	Exists(ctx context.Context, assetID uuid.UUID) (bool, error)
}

type RecurrenceRepository interface {
	ListRules(ctx context.Context, assetID uuid.UUID) ([]domain.RecurrenceRule, error)
	ListEnabledRules(ctx context.Context, assetID uuid.UUID, day time.Weekday) ([]domain.RecurrenceRule, error)
	// FindRule returns nil without error when no rule exists for the key.
	FindRule(ctx context.Context, assetID uuid.UUID, day time.Weekday, slotType domain.SlotType) (*domain.RecurrenceRule, error)
	// UpsertRule inserts or replaces the rule keyed on (asset, day, slot type).
	UpsertRule(ctx context.Context, rule *domain.RecurrenceRule) error
	DeleteRule(ctx context.Context, ruleID uuid.UUID) (*domain.RecurrenceRule, error)
}

type ExceptionRepository interface {
	HasException(ctx context.Context, assetID uuid.UUID, date domain.Date) (bool, error)
	// CreateException fails with a ConflictError when the date is already blocked.
	CreateException(ctx context.Context, exc *domain.UnavailabilityException) error
	DeleteException(ctx context.Context, exceptionID uuid.UUID) (*domain.UnavailabilityException, error)
	ListExceptions(ctx context.Context, assetID uuid.UUID, from, to domain.Date) ([]domain.UnavailabilityException, error)
}

// BookingMutation edits a locked booking in place. Returning an error aborts
// the write.
type BookingMutation func(b *domain.Booking) error

type BookingRepository interface {
	// CreateIfNoOverlap atomically checks for a blocking booking overlapping
	// b and inserts b only if none exists. Overlap yields a ConflictError.
	CreateIfNoOverlap(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	// ListBlocking returns pending and confirmed bookings intersecting window.
	ListBlocking(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID, window domain.Interval) ([]domain.Booking, error)
	// Update reads the booking under a row lock, applies fn and persists
	// status, payment status and audit fields.
	Update(ctx context.Context, bookingID uuid.UUID, fn BookingMutation) (*domain.Booking, error)
	// ListStaleHolds returns pending, unpaid bookings created before cutoff.
	ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

// SlotCache holds resolved slot lists per asset and date. Entries belong to
// an asset generation; Invalidate moves the asset to a new generation.
type SlotCache interface {
	// Get returns the cached slots of the current generation. On a miss it
	// still returns that generation, which the caller hands back to Set.
	Get(ctx context.Context, assetID uuid.UUID, date domain.Date) (slots []domain.Slot, gen int64, ok bool, err error)
	// Set stores slots only while gen is still the asset's generation.
	Set(ctx context.Context, assetID uuid.UUID, date domain.Date, gen int64, slots []domain.Slot) (bool, error)
	Invalidate(ctx context.Context, assetID uuid.UUID) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
