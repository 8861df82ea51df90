package usecases_port

import (
	"context"
	"listing-web/internal/core/domain"
)

// ListingCoordinator - операции координатора загрузки, доступные обработчикам
type ListingCoordinator interface {
	Search(ctx context.Context, query string) (domain.ListingView, error)
	ApplyFilters(ctx context.Context, filters domain.SearchFilters) (domain.ListingView, error)
	Open(ctx context.Context, query string, page int) (domain.ListingView, error)
	GoToPage(ctx context.Context, page int) (domain.ListingView, error)
	NextPage(ctx context.Context) (domain.ListingView, error)
	PreviousPage(ctx context.Context) (domain.ListingView, error)
	Refresh(ctx context.Context) (domain.ListingView, error)
	View() domain.ListingView
}

// ListingSessionsUseCase выдает координатор для сессии посетителя
type ListingSessionsUseCase interface {
	Get(sessionID string) ListingCoordinator
}
