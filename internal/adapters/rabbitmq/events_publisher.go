package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"listing-web/internal/constants"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - часть rabbitmq_producer.Publisher, нужная адаптеру
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type subscriberRegisteredDTO struct {
	SubscriberID string    `json:"subscriber_id"`
	Email        string    `json:"email"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

type listingSearchDTO struct {
	SessionID    string   `json:"session_id"`
	Query        string   `json:"query"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	Location     string   `json:"location,omitempty"`
	Page         int      `json:"page"`
	Results      int      `json:"results"`
	TotalPages   int      `json:"total_pages"`
	UserID       string   `json:"user_id,omitempty"`
}

// ListingEventsPublisher публикует события сервиса в listing_exchange.
// Реализует SubscriberEventsPort и SearchEventsPort.
type ListingEventsPublisher struct {
	producer MessagePublisher
}

func NewListingEventsPublisher(producer MessagePublisher) (*ListingEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &ListingEventsPublisher{producer: producer}, nil
}

func (a *ListingEventsPublisher) PublishSubscriberRegistered(ctx context.Context, sub domain.Subscriber) error {
	return a.publish(ctx, constants.SubscriberRegisteredRoutingKey, subscriberRegisteredDTO{
		SubscriberID: sub.ID.String(),
		Email:        sub.Email,
		Source:       sub.Source,
		CreatedAt:    sub.CreatedAt,
	})
}

func (a *ListingEventsPublisher) PublishListingSearch(ctx context.Context, event domain.SearchEvent) error {
	return a.publish(ctx, constants.ListingSearchRoutingKey, listingSearchDTO{
		SessionID:    event.SessionID,
		Query:        event.Query,
		MinPrice:     event.Filters.MinPrice,
		MaxPrice:     event.Filters.MaxPrice,
		PropertyType: string(event.Filters.Subtype),
		Location:     event.Filters.Location,
		Page:         event.Page,
		Results:      event.Results,
		TotalPages:   event.Pages,
		UserID:       contextkeys.UserIDFromContext(ctx),
	})
}

func (a *ListingEventsPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ListingEventsPublisher",
		"routing_key": routingKey,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		adapterLogger.Error("Failed to marshal event", err, nil)
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         routingKey,
		Headers:      make(amqp.Table),
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// событие не должно зависеть от отмены HTTP-запроса, который его породил
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", routingKey, err)
	}

	adapterLogger.Debug("Event published", nil)
	return nil
}
