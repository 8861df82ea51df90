package port

import (
	"context"
	"listing-web/internal/core/domain"
)

type SubscriberRepositoryPort interface {
	// Save сохраняет подписчика. created=false, если такой email уже был подписан.
	Save(ctx context.Context, sub domain.Subscriber) (created bool, err error)
}
