package domain

import "time"

// DealCategory - тип сделки по объекту
type DealCategory string

const (
	CategorySale DealCategory = "sale"
	CategoryRent DealCategory = "rent"
)

// PropertySubtype - вид недвижимости
type PropertySubtype string

const (
	SubtypeHouse     PropertySubtype = "house"
	SubtypeApartment PropertySubtype = "apartment"
	SubtypeCondo     PropertySubtype = "condo"
	SubtypeVilla     PropertySubtype = "villa"
)

// PropertySubtypes перечисляет поддерживаемые виды в порядке отображения в панели фильтров.
var PropertySubtypes = []PropertySubtype{SubtypeHouse, SubtypeApartment, SubtypeCondo, SubtypeVilla}

func (s PropertySubtype) Valid() bool {
	for _, known := range PropertySubtypes {
		if s == known {
			return true
		}
	}
	return false
}

// DefaultCurrency используется, если внешний сервис не прислал валюту цены.
const DefaultCurrency = "USD"

type Money struct {
	Amount   float64
	Currency string // ISO 4217
}

// CryptoAmount - эквивалент цены в криптовалюте (тикер, например BTC или ETH)
type CryptoAmount struct {
	Amount   float64
	Currency string
}

type Address struct {
	Street  string
	City    string
	Country string
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Property - объект недвижимости в том виде, в котором его отдает внешний сервис данных.
// Для представления объект неизменяем.
type Property struct {
	ID          string
	Title       string
	Description string

	Price  Money
	Crypto *CryptoAmount

	Address  Address
	Category DealCategory
	Subtype  PropertySubtype

	Bedrooms  *int
	Bathrooms *int
	Area      *float64 // кв. футы

	Images   []string
	Location *GeoPoint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListingPage - одна страница выдачи внешнего API
type ListingPage struct {
	Properties []Property
	TotalPages int
}
