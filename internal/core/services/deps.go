package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

// Deps bundles the collaborators shared by the scheduling services.
// Cache and Publisher are optional.
type Deps struct {
	Assets     ports.AssetDirectory
	Rules      ports.RecurrenceRepository
	Exceptions ports.ExceptionRepository
	Bookings   ports.BookingRepository
	Cache      ports.SlotCache
	Publisher  ports.EventPublisher
	Locker     *AssetLocker
	Location   *time.Location
	Logger     *zap.Logger
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = NewAssetLocker()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) requireAsset(ctx context.Context, assetID uuid.UUID) error {
	if assetID == uuid.Nil {
		return domain.NewValidationError("asset id is required")
	}
	ok, err := d.Assets.Exists(ctx, assetID)
	if err != nil {
		return fmt.Errorf("lookup asset %s: %w", assetID, err)
	}
	if !ok {
		return domain.NewValidationError("unknown asset %s", assetID)
	}
	return nil
}

func (d Deps) invalidate(ctx context.Context, assetID uuid.UUID) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, assetID); err != nil {
		d.Logger.Warn("slot cache invalidation failed",
			zap.String("asset_id", assetID.String()),
			zap.Error(err),
		)
	}
}

func (d Deps) publish(ctx context.Context, key string, payload any) {
	if d.Publisher == nil {
		return
	}
	if err := d.Publisher.PublishJSON(ctx, key, payload); err != nil {
		d.Logger.Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}
