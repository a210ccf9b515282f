package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/platform/envutil"
)

// ItemCache is a read-through cache for catalog item metadata. Lookups that
// miss fall back to the catalog client; the cache never holds anything this
// backend cannot re-fetch.
type ItemCache interface {
	Get(ctx context.Context, ids []int64) (found []types.ItemMetadata, missing []int64, err error)
	Set(ctx context.Context, items []types.ItemMetadata) error
	Close() error
}

type itemCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewItemCache(logg *logger.Logger) (ItemCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := envutil.Duration("CATALOG_CACHE_TTL", 10*time.Minute)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &itemCache{
		log: logg.With("client", "RedisItemCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func itemKey(id int64) string { return fmt.Sprintf("catalog:item:%d", id) }

func (c *itemCache) Get(ctx context.Context, ids []int64) ([]types.ItemMetadata, []int64, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, itemKey(id))
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("redis mget: %w", err)
	}

	var found []types.ItemMetadata
	var missing []int64
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok || raw == "" {
			missing = append(missing, ids[i])
			continue
		}
		var item types.ItemMetadata
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			// Treat a corrupt entry as a miss; the set path rewrites it.
			c.log.Warn("dropping corrupt cache entry", "error", err, "item_id", ids[i])
			missing = append(missing, ids[i])
			continue
		}
		found = append(found, item)
	}
	return found, missing, nil
}

func (c *itemCache) Set(ctx context.Context, items []types.ItemMetadata) error {
	if len(items) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return err
		}
		pipe.Set(ctx, itemKey(item.ItemID), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (c *itemCache) Close() error {
	return c.rdb.Close()
}
