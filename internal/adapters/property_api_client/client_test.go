package property_api_client

import (
	"context"
	"errors"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
  "properties": [
    {
      "id": "p1",
      "title": "Sea view villa",
      "priceUsd": 1250000,
      "cryptoAmount": 12.5,
      "cryptoCurrency": "btc",
      "city": "Lisbon",
      "country": "Portugal",
      "type": "Sale",
      "propertyType": "Villa",
      "bedrooms": 3,
      "squareFeet": 1800,
      "images": ["https://img.example/1.jpg"],
      "latitude": 38.72,
      "longitude": -9.14,
      "createdAt": "2024-05-01T10:00:00Z",
      "updatedAt": "1714557600000"
    },
    {"id": 42, "title": "Loft", "priceUsd": 900, "currency": "eur"}
  ],
  "totalPages": 5
}`

func TestFetchListing_BuildsRequestAndMapsResponse(t *testing.T) {
	var gotPath, gotQuery, gotTrace, gotUser, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotTrace = r.Header.Get("X-Trace-ID")
		gotUser = r.Header.Get("X-User-ID")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	ctx = contextkeys.ContextWithUserID(ctx, "user-1")

	client := NewPropertyAPIClient(srv.URL, time.Second)
	page, err := client.FetchListing(ctx, domain.ListingQuery{Page: 2, Search: "villa"})
	require.NoError(t, err)

	assert.Equal(t, ListingPath, gotPath)
	assert.Equal(t, "page=2&search=villa", gotQuery)
	assert.Equal(t, "trace-1", gotTrace)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "application/json", gotAccept)

	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Properties, 2)

	villa := page.Properties[0]
	assert.Equal(t, "p1", villa.ID)
	assert.Equal(t, domain.Money{Amount: 1250000, Currency: "USD"}, villa.Price)
	require.NotNil(t, villa.Crypto)
	assert.Equal(t, domain.CryptoAmount{Amount: 12.5, Currency: "BTC"}, *villa.Crypto)
	assert.Equal(t, domain.CategorySale, villa.Category)
	assert.Equal(t, domain.SubtypeVilla, villa.Subtype)
	assert.Equal(t, 3, *villa.Bedrooms)
	assert.Nil(t, villa.Bathrooms)
	require.NotNil(t, villa.Location)
	assert.Equal(t, 38.72, villa.Location.Latitude)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), villa.CreatedAt.UTC())
	assert.Equal(t, time.UnixMilli(1714557600000).UTC(), villa.UpdatedAt)

	loft := page.Properties[1]
	assert.Equal(t, "42", loft.ID)
	assert.Equal(t, "EUR", loft.Price.Currency)
	assert.Nil(t, loft.Crypto)
	assert.Nil(t, loft.Location)
}

func TestFetchListing_FiltersInQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"properties":[],"totalPages":1}`))
	}))
	defer srv.Close()

	maxPrice := 500000.0
	_, err := NewPropertyAPIClient(srv.URL, time.Second).FetchListing(context.Background(), domain.ListingQuery{
		Page:    1,
		Filters: domain.SearchFilters{MaxPrice: &maxPrice, Location: "New York"},
	})
	require.NoError(t, err)
	assert.Equal(t, "location=New+York&maxPrice=500000&page=1&search=", gotQuery)
}

func TestFetchListing_NullFieldsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"properties":null,"totalPages":null}`))
	}))
	defer srv.Close()

	page, err := NewPropertyAPIClient(srv.URL, time.Second).FetchListing(context.Background(), domain.ListingQuery{Page: 1})
	require.NoError(t, err)
	assert.NotNil(t, page.Properties)
	assert.Empty(t, page.Properties)
	assert.Equal(t, 1, page.TotalPages)
}

func TestFetchListing_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewPropertyAPIClient(srv.URL, time.Second).FetchListing(context.Background(), domain.ListingQuery{Page: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "non-2xx status: 500")
	assert.ErrorContains(t, err, "boom")
}

// errorCounter считает записи уровня Error
type errorCounter struct {
	errors int
}

func (l *errorCounter) Info(string, port.Fields)               {}
func (l *errorCounter) Warn(string, port.Fields)               {}
func (l *errorCounter) Debug(string, port.Fields)              {}
func (l *errorCounter) Error(string, error, port.Fields)       { l.errors++ }
func (l *errorCounter) WithFields(port.Fields) port.LoggerPort { return l }

func TestFetchListing_FailuresAreLeftToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	logger := &errorCounter{}
	ctx := contextkeys.ContextWithLogger(context.Background(), logger)

	_, err := NewPropertyAPIClient(srv.URL, time.Second).FetchListing(ctx, domain.ListingQuery{Page: 1})
	require.Error(t, err)
	assert.Zero(t, logger.errors, "the caller logs the returned error once")
}

func TestFetchListing_ContractViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"properties":[{"title":"no id"}],"totalPages":1}`))
	}))
	defer srv.Close()

	_, err := NewPropertyAPIClient(srv.URL, time.Second).FetchListing(context.Background(), domain.ListingQuery{Page: 1})
	assert.ErrorContains(t, err, "invalid property API response")
}

func TestFetchListing_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewPropertyAPIClient(url, time.Second).FetchListing(context.Background(), domain.ListingQuery{Page: 1})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchListing_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewPropertyAPIClient(srv.URL, 5*time.Second).FetchListing(ctx, domain.ListingQuery{Page: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestFlexibleID(t *testing.T) {
	var dto propertyDTO
	require.NoError(t, dto.ID.UnmarshalJSON([]byte(` 17 `)))
	assert.Equal(t, flexibleID("17"), dto.ID)
	require.NoError(t, dto.ID.UnmarshalJSON([]byte(`"abc"`)))
	assert.Equal(t, flexibleID("abc"), dto.ID)
	assert.Error(t, dto.ID.UnmarshalJSON([]byte(`{}`)))
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, 2024, parseTime("2024-01-02T03:04:05.123Z").Year())
}
