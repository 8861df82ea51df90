package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SearchFilters - структурированные фильтры панели поиска.
// Нулевое значение означает "без фильтров".
type SearchFilters struct {
	MinPrice *float64
	MaxPrice *float64
	Subtype  PropertySubtype
	Location string
}

func (f SearchFilters) IsEmpty() bool {
	return f.MinPrice == nil && f.MaxPrice == nil && f.Subtype == "" && f.Location == ""
}

// Equal сравнивает фильтры по значениям, а не по указателям.
func (f SearchFilters) Equal(other SearchFilters) bool {
	return floatPtrEqual(f.MinPrice, other.MinPrice) &&
		floatPtrEqual(f.MaxPrice, other.MaxPrice) &&
		f.Subtype == other.Subtype &&
		f.Location == other.Location
}

// Normalize проверяет фильтры и приводит их к каноническому виду:
// обрезает пробелы, меняет местами перепутанные границы цены.
func (f SearchFilters) Normalize() (SearchFilters, error) {
	out := SearchFilters{
		Subtype:  PropertySubtype(strings.ToLower(strings.TrimSpace(string(f.Subtype)))),
		Location: strings.TrimSpace(f.Location),
	}
	if out.Subtype != "" && !out.Subtype.Valid() {
		return SearchFilters{}, fmt.Errorf("%w: unknown property type %q", ErrInvalidFilters, f.Subtype)
	}
	var err error
	if out.MinPrice, err = checkPrice("min price", f.MinPrice); err != nil {
		return SearchFilters{}, err
	}
	if out.MaxPrice, err = checkPrice("max price", f.MaxPrice); err != nil {
		return SearchFilters{}, err
	}
	if out.MinPrice != nil && out.MaxPrice != nil && *out.MinPrice > *out.MaxPrice {
		out.MinPrice, out.MaxPrice = out.MaxPrice, out.MinPrice
	}
	return out, nil
}

// PanelInput - "сырое" состояние панели поиска, как его ввел пользователь.
type PanelInput struct {
	Query        string
	MinPrice     string
	MaxPrice     string
	PropertyType string
	Location     string
}

// Filters разбирает поля панели в SearchFilters. Пустые поля означают отсутствие фильтра.
func (in PanelInput) Filters() (SearchFilters, error) {
	minPrice, err := parseOptionalPrice("min price", in.MinPrice)
	if err != nil {
		return SearchFilters{}, err
	}
	maxPrice, err := parseOptionalPrice("max price", in.MaxPrice)
	if err != nil {
		return SearchFilters{}, err
	}
	return SearchFilters{
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Subtype:  PropertySubtype(in.PropertyType),
		Location: in.Location,
	}.Normalize()
}

// ListingQuery - параметры одного запроса к API объявлений
type ListingQuery struct {
	Page    int
	Search  string
	Filters SearchFilters
}

// Values кодирует запрос в query-параметры эндпоинта /api/properties.
// page и search передаются всегда, фильтры - только заданные.
func (q ListingQuery) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("search", q.Search)
	if q.Filters.MinPrice != nil {
		v.Set("minPrice", formatPrice(*q.Filters.MinPrice))
	}
	if q.Filters.MaxPrice != nil {
		v.Set("maxPrice", formatPrice(*q.Filters.MaxPrice))
	}
	if q.Filters.Subtype != "" {
		v.Set("propertyType", string(q.Filters.Subtype))
	}
	if q.Filters.Location != "" {
		v.Set("location", q.Filters.Location)
	}
	return v
}

func parseOptionalPrice(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidFilters, name, raw)
	}
	return &v, nil
}

// checkPrice копирует границу цены; NaN, бесконечность и отрицательные значения недопустимы
func checkPrice(name string, p *float64) (*float64, error) {
	if p == nil {
		return nil, nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a finite number", ErrInvalidFilters, name)
	}
	if v < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidFilters, name)
	}
	return &v, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
