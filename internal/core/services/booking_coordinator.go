package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

const staleHoldBatch = 100

// BookerInfo carries the caller-supplied fields of a new booking. Actor is
// recorded as created_by/updated_by.
type BookerInfo struct {
	Actor           uuid.UUID
	ContactNumber   string
	Price           float64
	TaxAmount       float64
	DiscountApplied float64
	DiscountID      *uuid.UUID
}

type BookingEvent struct {
	BookingID     string `json:"booking_id"`
	AssetID       string `json:"space_asset_id"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	BookingStatus string `json:"booking_status"`
	PaymentStatus string `json:"payment_status"`
}

type BookingCoordinator struct {
	deps        Deps
	holdTTL     time.Duration
	sweep       time.Duration
	confirmSync bool
}

type CoordinatorOption func(*BookingCoordinator)

// WithSyncConfirmation makes Reserve create bookings already confirmed, for
// deployments where payment is settled before the reservation call.
func WithSyncConfirmation(enabled bool) CoordinatorOption {
	return func(c *BookingCoordinator) { c.confirmSync = enabled }
}

// NewBookingCoordinator builds the coordinator. A positive holdTTL enables
// RunHoldExpiry; zero keeps unpaid pending bookings indefinitely.
func NewBookingCoordinator(deps Deps, holdTTL, sweep time.Duration, opts ...CoordinatorOption) *BookingCoordinator {
	if sweep <= 0 {
		sweep = time.Minute
	}
	c := &BookingCoordinator{deps: deps.withDefaults(), holdTTL: holdTTL, sweep: sweep}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reserve books interval on the asset. The interval must match a slot the
// resolver produces for its start date. The grid check, overlap re-check and
// insert all run while the asset is locked.
func (c *BookingCoordinator) Reserve(ctx context.Context, assetID uuid.UUID, interval domain.Interval, info BookerInfo) (*domain.Booking, error) {
	if !interval.Valid() {
		return nil, domain.NewValidationError("end must be after start")
	}
	if info.Actor == uuid.Nil {
		return nil, domain.NewValidationError("actor is required")
	}
	if err := c.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}

	loc := c.deps.Location
	date := domain.DateOf(interval.Start.In(loc))

	unlock := c.deps.Locker.Lock(assetID)
	defer unlock()

	blocked, err := c.deps.Exceptions.HasException(ctx, assetID, date)
	if err != nil {
		return nil, fmt.Errorf("check exception: %w", err)
	}
	if blocked {
		return nil, domain.NewConflictError("asset %s is unavailable on %s", assetID, date)
	}

	rules, err := c.deps.Rules.ListEnabledRules(ctx, assetID, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if !onGrid(interval, date, loc, rules) {
		return nil, domain.NewValidationError("interval %s - %s does not match an offered slot",
			interval.Start.Format(time.RFC3339), interval.End.Format(time.RFC3339))
	}

	now := c.deps.Now().UTC()
	status := domain.BookingPending
	if c.confirmSync {
		status = domain.BookingConfirmed
	}

	booking := &domain.Booking{
		ID:              uuid.New(),
		SpaceAssetID:    assetID,
		ContactNumber:   info.ContactNumber,
		StartDateTime:   interval.Start.UTC(),
		EndDateTime:     interval.End.UTC(),
		BookingStatus:   status,
		PaymentStatus:   domain.PaymentPending,
		Price:           info.Price,
		TaxAmount:       info.TaxAmount,
		DiscountApplied: info.DiscountApplied,
		DiscountID:      info.DiscountID,
		CreatedBy:       info.Actor,
		UpdatedBy:       info.Actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.deps.Bookings.CreateIfNoOverlap(ctx, booking); err != nil {
		if domain.IsConflict(err) {
			c.deps.Logger.Info("reservation lost to overlapping booking",
				zap.String("asset_id", assetID.String()),
				zap.Time("start", interval.Start),
			)
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	c.deps.invalidate(ctx, assetID)
	c.deps.publish(ctx, "booking.created", toEvent(booking))
	c.deps.Logger.Info("booking reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("asset_id", assetID.String()),
		zap.String("status", string(booking.BookingStatus)),
	)
	return booking, nil
}

func onGrid(interval domain.Interval, date domain.Date, loc *time.Location, rules []domain.RecurrenceRule) bool {
	for i := range rules {
		if !rules[i].Enabled || rules[i].DayOfWeek != date.Weekday() {
			continue
		}
		for _, c := range rules[i].Candidates(date, loc) {
			if c.Equal(interval) {
				return true
			}
		}
	}
	return false
}

func (c *BookingCoordinator) Cancel(ctx context.Context, bookingID, actor uuid.UUID) (*domain.Booking, error) {
	return c.transition(ctx, bookingID, actor, "booking.cancelled", func(b *domain.Booking) error {
		return setStatus(b, domain.BookingCancelled)
	})
}

func (c *BookingCoordinator) Confirm(ctx context.Context, bookingID, actor uuid.UUID) (*domain.Booking, error) {
	return c.transition(ctx, bookingID, actor, "booking.confirmed", func(b *domain.Booking) error {
		return setStatus(b, domain.BookingConfirmed)
	})
}

// Complete marks a confirmed booking whose interval has elapsed.
func (c *BookingCoordinator) Complete(ctx context.Context, bookingID, actor uuid.UUID) (*domain.Booking, error) {
	now := c.deps.Now()
	return c.transition(ctx, bookingID, actor, "booking.completed", func(b *domain.Booking) error {
		if now.Before(b.EndDateTime) {
			return domain.NewValidationError("booking %s has not ended yet", b.ID)
		}
		return setStatus(b, domain.BookingCompleted)
	})
}

// UpdateBookingPaymentStatus moves the payment axis. A failed payment
// cancels a still-blocking booking; a successful one confirms a pending one.
func (c *BookingCoordinator) UpdateBookingPaymentStatus(ctx context.Context, bookingID uuid.UUID, status domain.PaymentStatus, actor uuid.UUID) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("unknown payment status %q", status)
	}
	return c.transition(ctx, bookingID, actor, "booking.payment_updated", func(b *domain.Booking) error {
		if !b.PaymentStatus.CanTransitionTo(status) {
			return domain.NewValidationError("payment status cannot move from %s to %s", b.PaymentStatus, status)
		}
		b.PaymentStatus = status
		switch {
		case status == domain.PaymentFailed && b.IsBlocking():
			b.BookingStatus = domain.BookingCancelled
		case status == domain.PaymentPaid && b.BookingStatus == domain.BookingPending:
			b.BookingStatus = domain.BookingConfirmed
		}
		return nil
	})
}

func (c *BookingCoordinator) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return c.deps.Bookings.GetByID(ctx, bookingID)
}

func (c *BookingCoordinator) ListBookings(ctx context.Context, assetID uuid.UUID, date domain.Date) ([]domain.Booking, error) {
	if err := c.deps.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return c.deps.Bookings.ListByAsset(ctx, assetID, date.Window(c.deps.Location))
}

func setStatus(b *domain.Booking, to domain.BookingStatus) error {
	if !b.BookingStatus.CanTransitionTo(to) {
		return domain.NewValidationError("booking %s cannot move from %s to %s", b.ID, b.BookingStatus, to)
	}
	b.BookingStatus = to
	return nil
}

// transition applies fn to the booking inside the asset's serialization
// domain, so it cannot interleave with a reserve on the same asset.
func (c *BookingCoordinator) transition(ctx context.Context, bookingID, actor uuid.UUID, event string, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	if actor == uuid.Nil {
		return nil, domain.NewValidationError("actor is required")
	}

	current, err := c.deps.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	unlock := c.deps.Locker.Lock(current.SpaceAssetID)
	defer unlock()

	now := c.deps.Now().UTC()
	updated, err := c.deps.Bookings.Update(ctx, bookingID, func(b *domain.Booking) error {
		if err := fn(b); err != nil {
			return err
		}
		b.UpdatedBy = actor
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		var nf *domain.NotFoundError
		var ve *domain.ValidationError
		if errors.As(err, &nf) || errors.As(err, &ve) {
			return nil, err
		}
		return nil, fmt.Errorf("update booking %s: %w", bookingID, err)
	}

	c.deps.invalidate(ctx, updated.SpaceAssetID)
	c.deps.publish(ctx, event, toEvent(updated))
	c.deps.Logger.Info("booking updated",
		zap.String("booking_id", updated.ID.String()),
		zap.String("status", string(updated.BookingStatus)),
		zap.String("payment_status", string(updated.PaymentStatus)),
	)
	return updated, nil
}

// RunHoldExpiry cancels pending, unpaid bookings older than the hold TTL
// until ctx is done. It returns at once when no TTL is configured.
func (c *BookingCoordinator) RunHoldExpiry(ctx context.Context, system uuid.UUID) {
	if c.holdTTL <= 0 {
		c.deps.Logger.Info("booking hold expiry disabled")
		return
	}

	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	c.deps.Logger.Info("booking hold expiry started",
		zap.Duration("ttl", c.holdTTL),
		zap.Duration("interval", c.sweep),
	)

	for {
		select {
		case <-ctx.Done():
			c.deps.Logger.Info("booking hold expiry stopped")
			return
		case <-ticker.C:
			c.ExpireStaleHolds(ctx, system)
		}
	}
}

// ExpireStaleHolds runs one sweep and returns how many holds were released.
func (c *BookingCoordinator) ExpireStaleHolds(ctx context.Context, system uuid.UUID) int {
	cutoff := c.deps.Now().Add(-c.holdTTL)
	ids, err := c.deps.Bookings.ListStaleHolds(ctx, cutoff, staleHoldBatch)
	if err != nil {
		c.deps.Logger.Error("list stale holds failed", zap.Error(err))
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	c.deps.Logger.Info("releasing stale booking holds", zap.Int("count", len(ids)))

	released := 0
	for _, id := range ids {
		_, err := c.transition(ctx, id, system, "booking.expired", func(b *domain.Booking) error {
			if b.BookingStatus != domain.BookingPending || b.PaymentStatus != domain.PaymentPending {
				return domain.NewValidationError("booking %s is no longer an unpaid hold", b.ID)
			}
			b.BookingStatus = domain.BookingCancelled
			return nil
		})
		if err != nil {
			c.deps.Logger.Warn("release hold failed", zap.String("booking_id", id.String()), zap.Error(err))
			continue
		}
		released++
	}
	return released
}

func toEvent(b *domain.Booking) BookingEvent {
	return BookingEvent{
		BookingID:     b.ID.String(),
		AssetID:       b.SpaceAssetID.String(),
		Start:         b.StartDateTime.Unix(),
		End:           b.EndDateTime.Unix(),
		BookingStatus: string(b.BookingStatus),
		PaymentStatus: string(b.PaymentStatus),
	}
}
