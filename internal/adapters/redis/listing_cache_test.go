package redis_adapter

import (
	"context"
	"errors"
	"listing-web/internal/core/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAPI struct {
	calls int
	page  *domain.ListingPage
	err   error
}

func (a *countingAPI) FetchListing(context.Context, domain.ListingQuery) (*domain.ListingPage, error) {
	a.calls++
	return a.page, a.err
}

type cacheMetrics struct {
	results []string
}

func (m *cacheMetrics) ObserveFetch(string, time.Duration) {}
func (m *cacheMetrics) ObserveCache(result string)         { m.results = append(m.results, result) }
func (m *cacheMetrics) ObserveSubscription(string)         {}

func newTestCache(t *testing.T, next *countingAPI) (*CachedPropertyAPI, *miniredis.Miniredis, *cacheMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	metrics := &cacheMetrics{}
	return NewCachedPropertyAPI(next, client, time.Minute, metrics), mr, metrics
}

func samplePage() *domain.ListingPage {
	beds := 2
	return &domain.ListingPage{
		Properties: []domain.Property{{
			ID:       "p1",
			Title:    "Loft",
			Price:    domain.Money{Amount: 350000, Currency: "USD"},
			Bedrooms: &beds,
			Images:   []string{"a.jpg"},
		}},
		TotalPages: 3,
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(domain.ListingQuery{Page: 1, Search: "villa"})
	b := CacheKey(domain.ListingQuery{Page: 1, Search: "villa"})
	c := CacheKey(domain.ListingQuery{Page: 2, Search: "villa"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len(KeyPrefix)+64)
	assert.Contains(t, a, KeyPrefix)
}

func TestCachedPropertyAPI_MissThenHit(t *testing.T) {
	next := &countingAPI{page: samplePage()}
	cache, mr, metrics := newTestCache(t, next)
	ctx := context.Background()
	q := domain.ListingQuery{Page: 1, Search: "loft"}

	first, err := cache.FetchListing(ctx, q)
	require.NoError(t, err)
	second, err := cache.FetchListing(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{CacheMiss, CacheHit}, metrics.results)

	key := CacheKey(q)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = cache.FetchListing(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "expired entry is refetched")
}

func TestCachedPropertyAPI_ErrorsAreNotCached(t *testing.T) {
	next := &countingAPI{err: errors.New("upstream 500")}
	cache, mr, _ := newTestCache(t, next)
	q := domain.ListingQuery{Page: 1}

	_, err := cache.FetchListing(context.Background(), q)
	assert.ErrorContains(t, err, "upstream 500")
	assert.False(t, mr.Exists(CacheKey(q)))
}

func TestCachedPropertyAPI_CorruptedEntry(t *testing.T) {
	next := &countingAPI{page: samplePage()}
	cache, mr, metrics := newTestCache(t, next)
	q := domain.ListingQuery{Page: 1}

	require.NoError(t, mr.Set(CacheKey(q), "{not json"))

	page, err := cache.FetchListing(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, []string{CacheError}, metrics.results)
}

func TestCachedPropertyAPI_BypassWhenRedisDown(t *testing.T) {
	next := &countingAPI{page: samplePage()}
	cache, mr, metrics := newTestCache(t, next)
	mr.Close()

	page, err := cache.FetchListing(context.Background(), domain.ListingQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "p1", page.Properties[0].ID)
	assert.Equal(t, []string{CacheError}, metrics.results)
}

func TestCachedPropertyAPI_InvalidateAll(t *testing.T) {
	next := &countingAPI{page: samplePage()}
	cache, mr, _ := newTestCache(t, next)
	ctx := context.Background()

	for page := 1; page <= 150; page++ {
		_, err := cache.FetchListing(ctx, domain.ListingQuery{Page: page})
		require.NoError(t, err)
	}
	require.NoError(t, mr.Set("session:other", "keep me"))

	removed, err := cache.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, removed)
	assert.Equal(t, []string{"session:other"}, mr.Keys(), "no listing keys survive, other keys are kept")

	_, err = cache.FetchListing(ctx, domain.ListingQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 151, next.calls)
}
