package usecase

import (
	"context"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
)

// InvalidateListingCacheUseCase сбрасывает кэш выдачи, когда сервис данных
// сообщает об изменении объектов.
type InvalidateListingCacheUseCase struct {
	cache port.ListingCacheInvalidatorPort
}

func NewInvalidateListingCacheUseCase(cache port.ListingCacheInvalidatorPort) *InvalidateListingCacheUseCase {
	return &InvalidateListingCacheUseCase{cache: cache}
}

func (uc *InvalidateListingCacheUseCase) Execute(ctx context.Context, reason string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "InvalidateListingCache",
		"reason":   reason,
	})

	if uc.cache == nil {
		ucLogger.Debug("Listing cache is disabled, nothing to invalidate", nil)
		return nil
	}

	removed, err := uc.cache.InvalidateAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to invalidate listing cache", err, nil)
		return fmt.Errorf("failed to invalidate listing cache: %w", err)
	}

	ucLogger.Info("Listing cache invalidated", port.Fields{"removed_keys": removed})
	return nil
}
