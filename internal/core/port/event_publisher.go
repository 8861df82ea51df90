package port

import (
	"context"
	"listing-web/internal/core/domain"
)

type SubscriberEventsPort interface {
	PublishSubscriberRegistered(ctx context.Context, sub domain.Subscriber) error
}

type SearchEventsPort interface {
	PublishListingSearch(ctx context.Context, event domain.SearchEvent) error
}

// EventListenerPort - входящий адаптер очереди (потребитель)
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
