package redis_adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix - префикс ключей кэша выдачи; версия меняется при смене формата значения
const KeyPrefix = "listing:v1:"

const scanBatch = 100

// Исходы обращения к кэшу для метрик
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CachedPropertyAPI - read-through кэш поверх PropertyAPIPort.
// Ошибки Redis логируются и обходятся, наружу не выходят.
type CachedPropertyAPI struct {
	next    port.PropertyAPIPort
	client  *redis.Client
	ttl     time.Duration
	metrics port.MetricsPort
}

func NewCachedPropertyAPI(next port.PropertyAPIPort, client *redis.Client, ttl time.Duration, metrics port.MetricsPort) *CachedPropertyAPI {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedPropertyAPI{next: next, client: client, ttl: ttl, metrics: metrics}
}

// CacheKey - ключ для запроса; url.Values.Encode сортирует параметры,
// поэтому одинаковые запросы дают одинаковый ключ
func CacheKey(query domain.ListingQuery) string {
	sum := sha256.Sum256([]byte(query.Values().Encode()))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedPropertyAPI) FetchListing(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CachedPropertyAPI",
		"page":      query.Page,
	})
	key := CacheKey(query)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page domain.ListingPage
		jsonErr := json.Unmarshal(raw, &page)
		if jsonErr == nil {
			c.metrics.ObserveCache(CacheHit)
			logger.Debug("Listing cache hit", nil)
			return &page, nil
		}
		c.metrics.ObserveCache(CacheError)
		logger.Warn("Corrupted listing cache entry, refetching", port.Fields{"error": jsonErr.Error()})
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveCache(CacheMiss)
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.metrics.ObserveCache(CacheError)
		logger.Warn("Listing cache read failed, bypassing", port.Fields{"error": err.Error()})
	}

	page, err := c.next.FetchListing(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("Listing cache write failed", port.Fields{"error": err.Error()})
		}
	}
	return page, nil
}

// InvalidateAll удаляет все закэшированные страницы выдачи, возвращает число удаленных ключей.
// Сначала собирает ключи полным проходом SCAN, затем удаляет их пачками:
// удаление во время прохода может сдвинуть курсор и пропустить ключи.
func (c *CachedPropertyAPI) InvalidateAll(ctx context.Context) (int, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.client.Scan(ctx, cursor, KeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan listing cache keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	removed := 0
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete listing cache keys: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}
