package domain

// PropertyCard - краткое представление объекта для карточки в списке.
type PropertyCard struct {
	ID          string
	Title       string
	Price       string
	CryptoPrice string
	Location    string
	ImageURL    string
	Category    string
	Subtype     string
	Facts       string
	MapURL      string
}

func (c PropertyCard) HasImage() bool { return c.ImageURL != "" }
