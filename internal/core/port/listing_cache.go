package port

import "context"

// ListingCacheInvalidatorPort сбрасывает закэшированные страницы выдачи
type ListingCacheInvalidatorPort interface {
	InvalidateAll(ctx context.Context) (int, error)
}
