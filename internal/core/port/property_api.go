package port

import (
	"context"
	"listing-web/internal/core/domain"
)

// PropertyAPIPort - внешний сервис данных, отдающий страницы объявлений
type PropertyAPIPort interface {
	FetchListing(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error)
}
