package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/ports"
)

// setIfCurrent writes KEYS[2] only while KEYS[1] still holds generation ARGV[1].
var setIfCurrent = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// SlotCache stores resolved slots in one redis string per asset, generation
// and date. Each entry carries its own TTL. Invalidation bumps the asset
// generation, which orphans every older entry until it expires.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SlotCache = (*SlotCache)(nil)

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func GenKey(assetID uuid.UUID) string {
	return fmt.Sprintf("slots:%s:gen", assetID.String())
}

func SlotKey(assetID uuid.UUID, gen int64, date domain.Date) string {
	return fmt.Sprintf("slots:%s:%d:%s", assetID.String(), gen, date.String())
}

func (c *SlotCache) generation(ctx context.Context, assetID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, GenKey(assetID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *SlotCache) Get(ctx context.Context, assetID uuid.UUID, date domain.Date) ([]domain.Slot, int64, bool, error) {
	gen, err := c.generation(ctx, assetID)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, SlotKey(assetID, gen, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, gen, true, nil
}

// Set reports whether the entry was written. A false result with a nil error
// means the asset was invalidated after gen was read.
func (c *SlotCache) Set(ctx context.Context, assetID uuid.UUID, date domain.Date, gen int64, slots []domain.Slot) (bool, error) {
	payload, err := json.Marshal(slots)
	if err != nil {
		return false, err
	}

	keys := []string{GenKey(assetID), SlotKey(assetID, gen, date)}
	written, err := setIfCurrent.Run(ctx, c.client, keys, strconv.FormatInt(gen, 10), payload, c.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

func (c *SlotCache) Invalidate(ctx context.Context, assetID uuid.UUID) error {
	return c.client.Incr(ctx, GenKey(assetID)).Err()
}
