package usecases_port

import "context"

type InvalidateListingCacheUseCase interface {
	Execute(ctx context.Context, reason string) error
}
