package property_api_client

import (
	"bytes"
	"encoding/json"
	"listing-web/internal/core/domain"
	"strconv"
	"strings"
	"time"
)

// listingResponse - тело ответа GET /api/properties
type listingResponse struct {
	Properties []propertyDTO `json:"properties"`
	TotalPages *int          `json:"totalPages"`
}

type propertyDTO struct {
	ID             flexibleID `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PriceUSD       float64    `json:"priceUsd"`
	Currency       string     `json:"currency"`
	CryptoAmount   *float64   `json:"cryptoAmount"`
	CryptoCurrency string     `json:"cryptoCurrency"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Country        string     `json:"country"`
	Type           string     `json:"type"`
	PropertyType   string     `json:"propertyType"`
	Bedrooms       *int       `json:"bedrooms"`
	Bathrooms      *int       `json:"bathrooms"`
	SquareFeet     *float64   `json:"squareFeet"`
	Images         []string   `json:"images"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// flexibleID принимает id и строкой, и числом
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

func (r listingResponse) toDomain() *domain.ListingPage {
	page := &domain.ListingPage{
		Properties: make([]domain.Property, 0, len(r.Properties)),
		TotalPages: 1,
	}
	if r.TotalPages != nil && *r.TotalPages > 0 {
		page.TotalPages = *r.TotalPages
	}
	for _, dto := range r.Properties {
		page.Properties = append(page.Properties, dto.toDomain())
	}
	return page
}

func (dto propertyDTO) toDomain() domain.Property {
	currency := strings.ToUpper(strings.TrimSpace(dto.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	p := domain.Property{
		ID:          string(dto.ID),
		Title:       dto.Title,
		Description: dto.Description,
		Price:       domain.Money{Amount: dto.PriceUSD, Currency: currency},
		Address: domain.Address{
			Street:  dto.Address,
			City:    dto.City,
			Country: dto.Country,
		},
		Category:  domain.DealCategory(strings.ToLower(dto.Type)),
		Subtype:   domain.PropertySubtype(strings.ToLower(dto.PropertyType)),
		Bedrooms:  dto.Bedrooms,
		Bathrooms: dto.Bathrooms,
		Area:      dto.SquareFeet,
		Images:    dto.Images,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: parseTime(dto.UpdatedAt),
	}

	if dto.CryptoAmount != nil && dto.CryptoCurrency != "" {
		p.Crypto = &domain.CryptoAmount{Amount: *dto.CryptoAmount, Currency: strings.ToUpper(dto.CryptoCurrency)}
	}
	if dto.Latitude != nil && dto.Longitude != nil {
		p.Location = &domain.GeoPoint{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	}
	return p
}

// parseTime понимает RFC 3339 и unix-миллисекунды; иначе нулевое время
func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
