package usecase

import (
	"fmt"
	"listing-web/internal/core/domain"
	"math"
	"strings"

	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	geohashPrecision = 9
	geohashMapURL    = "https://geohash.org/"
)

// символы для частых валют; остальные показываются ISO-кодом
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// RenderCardsUseCase - чистая функция Property -> PropertyCard без состояния.
// Форматирование чисел как у toLocaleString в en-US.
type RenderCardsUseCase struct {
	tag language.Tag
}

func NewRenderCardsUseCase() *RenderCardsUseCase {
	return &RenderCardsUseCase{
		tag: language.AmericanEnglish,
	}
}

// Execute сохраняет порядок объектов
func (uc *RenderCardsUseCase) Execute(properties []domain.Property) []domain.PropertyCard {
	p := message.NewPrinter(uc.tag)
	cards := make([]domain.PropertyCard, 0, len(properties))
	for _, prop := range properties {
		cards = append(cards, uc.render(p, prop))
	}
	return cards
}

// RenderCard форматирует один объект
func (uc *RenderCardsUseCase) RenderCard(prop domain.Property) domain.PropertyCard {
	return uc.render(message.NewPrinter(uc.tag), prop)
}

func (uc *RenderCardsUseCase) render(p *message.Printer, prop domain.Property) domain.PropertyCard {
	card := domain.PropertyCard{
		ID:       prop.ID,
		Title:    strings.TrimSpace(prop.Title),
		Price:    formatMoney(p, prop.Price),
		Location: joinLocation(prop.Address.City, prop.Address.Country),
		ImageURL: firstImage(prop.Images),
		Facts:    formatFacts(p, prop),
	}

	if prop.Crypto != nil && prop.Crypto.Amount > 0 && prop.Crypto.Currency != "" {
		card.CryptoPrice = fmt.Sprintf("%s %s",
			p.Sprint(number.Decimal(prop.Crypto.Amount, number.MaxFractionDigits(8))),
			strings.ToUpper(prop.Crypto.Currency))
	}

	switch prop.Category {
	case domain.CategorySale:
		card.Category = "For sale"
	case domain.CategoryRent:
		card.Category = "For rent"
	}
	if prop.Subtype != "" {
		// Caser хранит состояние, поэтому не переиспользуется между горутинами
		card.Subtype = cases.Title(language.English).String(string(prop.Subtype))
	}

	if prop.Location != nil && validCoordinates(*prop.Location) {
		card.MapURL = geohashMapURL + geohash.EncodeWithPrecision(prop.Location.Latitude, prop.Location.Longitude, geohashPrecision)
	}

	return card
}

// formatMoney: "$1,250,000"; неизвестная валюта - "CHF 1,250,000"
func formatMoney(p *message.Printer, m domain.Money) string {
	code := strings.ToUpper(strings.TrimSpace(m.Currency))
	if code == "" {
		code = domain.DefaultCurrency
	}
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}

	amount := formatAmount(p, m.Amount)
	if symbol, ok := currencySymbols[code]; ok {
		return symbol + amount
	}
	return code + " " + amount
}

func formatAmount(p *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// formatFacts: "3 bd · 2 ba · 1,800 sq ft", отсутствующие значения пропускаются
func formatFacts(p *message.Printer, prop domain.Property) string {
	var parts []string
	if prop.Bedrooms != nil {
		parts = append(parts, p.Sprintf("%d bd", *prop.Bedrooms))
	}
	if prop.Bathrooms != nil {
		parts = append(parts, p.Sprintf("%d ba", *prop.Bathrooms))
	}
	if prop.Area != nil && *prop.Area > 0 {
		parts = append(parts, formatAmount(p, math.Round(*prop.Area))+" sq ft")
	}
	return strings.Join(parts, " · ")
}

func joinLocation(city, country string) string {
	parts := make([]string, 0, 2)
	if city = strings.TrimSpace(city); city != "" {
		parts = append(parts, city)
	}
	if country = strings.TrimSpace(country); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

func firstImage(images []string) string {
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			return img
		}
	}
	return ""
}

func validCoordinates(g domain.GeoPoint) bool {
	if g.Latitude == 0 && g.Longitude == 0 {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}
