// README: Redis read-model cache for coupon lookups on the apply path.
package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 5 * time.Minute

// Cache is nil-safe: a nil *Cache behaves as a permanent miss, so wiring
// Redis stays optional.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func cacheKey(code string) string {
	return fmt.Sprintf("coupon:code:%s", code)
}

func (c *Cache) Get(ctx context.Context, code string) *Coupon {
	if c == nil {
		return nil
	}
	data, err := c.client.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		return nil // miss or redis down; fall through to the store
	}
	var cp Coupon
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil
	}
	return &cp
}

func (c *Cache) Put(ctx context.Context, cp *Coupon) {
	if c == nil || cp == nil {
		return
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(cp.Code), data, cacheTTL).Err()
}

func (c *Cache) Drop(ctx context.Context, code string) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKey(code)).Err()
}
