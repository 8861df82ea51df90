package usecases_port

import (
	"context"
	"listing-web/internal/core/domain"
)

type SearchPanelUseCase interface {
	SubmitSearch(ctx context.Context, target ListingCoordinator, input domain.PanelInput) (domain.ListingView, error)
	ApplyFilters(ctx context.Context, target ListingCoordinator, input domain.PanelInput) (domain.ListingView, error)
}
