package usecases_port

import "listing-web/internal/core/domain"

type RenderCardsUseCase interface {
	Execute(properties []domain.Property) []domain.PropertyCard
}
