package usecase

import (
	"context"
	"listing-web/internal/core/domain"
	"sync"
	"time"
)

// fakePropertyAPI записывает запросы и отвечает через respond
type fakePropertyAPI struct {
	mu      sync.Mutex
	queries []domain.ListingQuery
	respond func(ctx context.Context, call int, q domain.ListingQuery) (*domain.ListingPage, error)
}

func (f *fakePropertyAPI) FetchListing(ctx context.Context, q domain.ListingQuery) (*domain.ListingPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	call := len(f.queries)
	f.mu.Unlock()

	if f.respond == nil {
		return &domain.ListingPage{Properties: []domain.Property{}, TotalPages: 1}, nil
	}
	return f.respond(ctx, call, q)
}

func (f *fakePropertyAPI) calls() []domain.ListingQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ListingQuery, len(f.queries))
	copy(out, f.queries)
	return out
}

func (f *fakePropertyAPI) lastQuery() domain.ListingQuery {
	calls := f.calls()
	return calls[len(calls)-1]
}

// pageOf - страница с n объектами и total страницами
func pageOf(n, total int) *domain.ListingPage {
	props := make([]domain.Property, n)
	for i := range props {
		props[i] = domain.Property{ID: string(rune('a' + i))}
	}
	return &domain.ListingPage{Properties: props, TotalPages: total}
}

type fakeSearchEvents struct {
	mu     sync.Mutex
	events []domain.SearchEvent
	err    error
}

func (f *fakeSearchEvents) PublishListingSearch(_ context.Context, e domain.SearchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeSearchEvents) published() []domain.SearchEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SearchEvent(nil), f.events...)
}

type fakeMetrics struct {
	mu            sync.Mutex
	fetches       []string
	subscriptions []string
}

func (m *fakeMetrics) ObserveFetch(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, outcome)
}

func (m *fakeMetrics) ObserveCache(string) {}

func (m *fakeMetrics) ObserveSubscription(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, result)
}

func (m *fakeMetrics) fetchOutcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetches...)
}
