package usecase

import (
	"context"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"listing-web/internal/core/port/usecases_port"
)

// SearchPanelUseCase переводит действия панели поиска в события координатора:
// "Search" передает только строку запроса, "Apply Filters" - только фильтры.
type SearchPanelUseCase struct{}

func NewSearchPanelUseCase() *SearchPanelUseCase {
	return &SearchPanelUseCase{}
}

func (uc *SearchPanelUseCase) SubmitSearch(ctx context.Context, target usecases_port.ListingCoordinator, input domain.PanelInput) (domain.ListingView, error) {
	contextkeys.LoggerFromContext(ctx).Debug("Search submitted", port.Fields{
		"use_case": "SearchPanel",
		"query":    input.Query,
	})
	return target.Search(ctx, input.Query)
}

// ApplyFilters разбирает поля фильтров. Некорректный ввод не приводит к запросу.
func (uc *SearchPanelUseCase) ApplyFilters(ctx context.Context, target usecases_port.ListingCoordinator, input domain.PanelInput) (domain.ListingView, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SearchPanel"})

	filters, err := input.Filters()
	if err != nil {
		logger.Warn("Rejected filter input", port.Fields{"error": err.Error()})
		return target.View(), err
	}

	logger.Debug("Filters applied", port.Fields{
		"property_type": string(filters.Subtype),
		"location":      filters.Location,
	})
	return target.ApplyFilters(ctx, filters)
}
