package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"strings"
	"sync"
	"time"
)

// FetchCoordinator превращает состояние страницы (запрос, фильтры, страница)
// в запрос к API объявлений и сводит ответ обратно в состояние представления.
// Один координатор на сессию посетителя; безопасен для конкурентного использования.
type FetchCoordinator struct {
	sessionID string
	api       port.PropertyAPIPort
	events    port.SearchEventsPort
	metrics   port.MetricsPort

	mu         sync.Mutex
	query      string
	filters    domain.SearchFilters
	pagination domain.Pagination
	properties []domain.Property
	loading    bool
	loaded     bool
	lastErr    string

	// generation растет при каждом новом запросе; ответ применяется,
	// только если его поколение все еще текущее.
	generation uint64
	cancel     context.CancelFunc

	lastUsed time.Time
}

// fetchRequest - неизменяемый снимок одного запроса
type fetchRequest struct {
	generation uint64
	query      domain.ListingQuery
	ctx        context.Context
	cancel     context.CancelFunc
	// publish - запрос вызван сменой поиска или фильтров
	publish bool
}

func NewFetchCoordinator(sessionID string, api port.PropertyAPIPort, events port.SearchEventsPort, metrics port.MetricsPort) *FetchCoordinator {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	return &FetchCoordinator{
		sessionID:  sessionID,
		api:        api,
		events:     events,
		metrics:    metrics,
		pagination: domain.NewPagination(),
		lastUsed:   time.Now(),
	}
}

// Search задает строку поиска, сбрасывает страницу на 1 и загружает выдачу
func (c *FetchCoordinator) Search(ctx context.Context, query string) (domain.ListingView, error) {
	c.mu.Lock()
	c.query = strings.TrimSpace(query)
	c.pagination.CurrentPage = 1
	req := c.beginLocked(ctx, true)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// ApplyFilters заменяет фильтры целиком, сбрасывает страницу на 1 и загружает выдачу
func (c *FetchCoordinator) ApplyFilters(ctx context.Context, filters domain.SearchFilters) (domain.ListingView, error) {
	normalized, err := filters.Normalize()
	if err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	c.filters = normalized
	c.pagination.CurrentPage = 1
	req := c.beginLocked(ctx, true)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// Open открывает выдачу по ссылке: строка поиска и страница применяются вместе,
// одним запросом. Смена строки поиска без страницы дает страницу 1.
// Для той же строки поиска страница прижимается к известному числу страниц.
func (c *FetchCoordinator) Open(ctx context.Context, query string, page int) (domain.ListingView, error) {
	c.mu.Lock()
	query = strings.TrimSpace(query)
	changed := query != c.query
	if page < 1 {
		page = 1
	}
	if !changed && c.loaded {
		page = c.pagination.Clamp(page)
		if page == c.pagination.CurrentPage && !c.loading && c.lastErr == "" {
			view := c.viewLocked()
			c.mu.Unlock()
			return view, nil
		}
	}
	c.query = query
	// число страниц новой выдачи неизвестно до ответа
	c.pagination = domain.Pagination{CurrentPage: page, TotalPages: max(c.pagination.TotalPages, page)}
	req := c.beginLocked(ctx, changed)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// GoToPage переходит на страницу, прижатую к [1, totalPages].
// Если это уже показанная страница, запроса нет.
func (c *FetchCoordinator) GoToPage(ctx context.Context, page int) (domain.ListingView, error) {
	c.mu.Lock()
	target := c.pagination.Clamp(page)
	if target == c.pagination.CurrentPage && c.loaded && !c.loading && c.lastErr == "" {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	c.pagination.CurrentPage = target
	req := c.beginLocked(ctx, false)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// NextPage - на одну страницу вперед; на последней странице ничего не делает
func (c *FetchCoordinator) NextPage(ctx context.Context) (domain.ListingView, error) {
	c.mu.Lock()
	if !c.pagination.HasNext() {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	c.pagination.CurrentPage++
	req := c.beginLocked(ctx, false)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// PreviousPage - на одну страницу назад; на первой странице ничего не делает
func (c *FetchCoordinator) PreviousPage(ctx context.Context) (domain.ListingView, error) {
	c.mu.Lock()
	if !c.pagination.HasPrev() {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	c.pagination.CurrentPage--
	req := c.beginLocked(ctx, false)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// Refresh повторяет текущий запрос (первичная загрузка, повтор после ошибки)
func (c *FetchCoordinator) Refresh(ctx context.Context) (domain.ListingView, error) {
	c.mu.Lock()
	req := c.beginLocked(ctx, false)
	c.mu.Unlock()

	return c.run(ctx, req)
}

// View возвращает снимок состояния для отрисовки
func (c *FetchCoordinator) View() domain.ListingView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close отменяет запрос в полете. Вызывается при удалении сессии.
func (c *FetchCoordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *FetchCoordinator) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// beginLocked начинает новое поколение: отменяет предыдущий запрос в полете
// и переводит представление в состояние загрузки. Вызывается под c.mu.
func (c *FetchCoordinator) beginLocked(ctx context.Context, publish bool) fetchRequest {
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.loading = true
	c.lastUsed = time.Now()

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	return fetchRequest{
		generation: c.generation,
		query: domain.ListingQuery{
			Page:    c.pagination.CurrentPage,
			Search:  c.query,
			Filters: c.filters,
		},
		ctx:     fetchCtx,
		cancel:  cancel,
		publish: publish,
	}
}

func (c *FetchCoordinator) run(ctx context.Context, req fetchRequest) (domain.ListingView, error) {
	defer req.cancel()

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "FetchCoordinator",
		"session_id": c.sessionID,
		"generation": req.generation,
		"page":       req.query.Page,
	})
	logger.Debug("Fetching listing page", port.Fields{"search": req.query.Search})

	start := time.Now()
	page, err := c.api.FetchListing(req.ctx, req.query)
	elapsed := time.Since(start)

	c.mu.Lock()
	if req.generation != c.generation {
		view := c.viewLocked()
		c.mu.Unlock()
		c.metrics.ObserveFetch(port.FetchOutcomeStale, elapsed)
		logger.Debug("Discarding superseded response", port.Fields{"current_generation": view.Generation})
		return view, domain.ErrStaleResponse
	}
	c.cancel = nil
	c.loading = false

	if err != nil {
		// предыдущий список остается на экране
		c.lastErr = userMessage(err)
		view := c.viewLocked()
		c.mu.Unlock()

		c.metrics.ObserveFetch(port.FetchOutcomeError, elapsed)
		logger.Error("Failed to fetch listing page", err, port.Fields{"duration_ms": elapsed.Milliseconds()})
		return view, fmt.Errorf("fetch listing page %d: %w", req.query.Page, err)
	}

	if total := max(page.TotalPages, 1); total < req.query.Page {
		// запрошенная страница вне нового диапазона: ее элементы не показываем,
		// а запрашиваем последнюю существующую страницу
		c.pagination = c.pagination.WithTotal(page.TotalPages)
		next := c.beginLocked(ctx, req.publish)
		c.mu.Unlock()

		c.metrics.ObserveFetch(port.FetchOutcomeSuccess, elapsed)
		logger.Info("Requested page is out of range, loading last page", port.Fields{
			"total_pages": page.TotalPages,
			"next_page":   next.query.Page,
		})
		return c.run(ctx, next)
	}

	c.properties = page.Properties
	if c.properties == nil {
		c.properties = []domain.Property{}
	}
	c.pagination = c.pagination.WithTotal(page.TotalPages)
	c.loaded = true
	c.lastErr = ""
	view := c.viewLocked()
	c.mu.Unlock()

	c.metrics.ObserveFetch(port.FetchOutcomeSuccess, elapsed)
	logger.Info("Listing page loaded", port.Fields{
		"results":     len(view.Properties),
		"total_pages": view.Pagination.TotalPages,
		"duration_ms": elapsed.Milliseconds(),
	})

	if req.publish && c.events != nil {
		event := domain.SearchEvent{
			SessionID: c.sessionID,
			Query:     req.query.Search,
			Filters:   req.query.Filters,
			Page:      view.Pagination.CurrentPage,
			Results:   len(view.Properties),
			Pages:     view.Pagination.TotalPages,
		}
		if pubErr := c.events.PublishListingSearch(ctx, event); pubErr != nil {
			logger.Warn("Failed to publish search event", port.Fields{"error": pubErr.Error()})
		}
	}

	return view, nil
}

func (c *FetchCoordinator) viewLocked() domain.ListingView {
	view := domain.ListingView{
		Query:      c.query,
		Filters:    c.filters,
		Pagination: c.pagination,
		Loading:    c.loading,
		Loaded:     c.loaded,
		Error:      c.lastErr,
		Generation: c.generation,
	}
	if !c.loading {
		view.Properties = make([]domain.Property, len(c.properties))
		copy(view.Properties, c.properties)
	}
	return view
}

// userMessage - текст ошибки для баннера на странице, без внутренних подробностей
func userMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The listing service took too long to respond. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled. Please try again."
	default:
		return "Could not load properties. Please try again."
	}
}
