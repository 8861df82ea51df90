package property_api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"listing-web/internal/contextkeys"
	"listing-web/internal/contracts"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"net/http"
	"time"
)

// ListingPath - эндпоинт выдачи во внешнем сервисе данных
const ListingPath = "/api/properties"

// максимальный размер тела ответа, который мы готовы читать
const maxResponseBytes = 8 << 20

// PropertyAPIClient - клиент GET /api/properties
type PropertyAPIClient struct {
	baseURL    string // например, "http://property-api:3000"
	httpClient *http.Client
}

func NewPropertyAPIClient(baseURL string, timeout time.Duration) *PropertyAPIClient {
	return &PropertyAPIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// doRequest выставляет общие заголовки: трассировку и пользователя от шлюза
func (c *PropertyAPIClient) doRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if userID := contextkeys.UserIDFromContext(ctx); userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// FetchListing реализует PropertyAPIPort: ровно один запрос на вызов, без ретраев.
// Ошибки возвращаются вызывающему и логируются им; здесь только детали на Debug.
func (c *PropertyAPIClient) FetchListing(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error) {
	url := c.baseURL + ListingPath + "?" + query.Values().Encode()

	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PropertyAPIClient",
		"method":    "FetchListing",
		"page":      query.Page,
	})

	resp, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		clientLogger.Debug("Property API request failed", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		clientLogger.Debug("Failed to read property API response body", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("failed to read property API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("property API returned non-2xx status: %d, body: %s", resp.StatusCode, truncate(string(body), 512))
		clientLogger.Debug("Property API returned non-2xx status", port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	if err := contracts.ValidateListingResponse(body); err != nil {
		clientLogger.Debug("Property API response violates contract", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("invalid property API response: %w", err)
	}

	var apiResponse listingResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		clientLogger.Debug("Failed to decode property API response", port.Fields{"error": err.Error()})
		return nil, fmt.Errorf("failed to decode property API response: %w", err)
	}

	page := apiResponse.toDomain()
	clientLogger.Debug("Listing page received", port.Fields{
		"results":     len(page.Properties),
		"total_pages": page.TotalPages,
	})
	return page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
