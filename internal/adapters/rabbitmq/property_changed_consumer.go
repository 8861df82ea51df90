package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"listing-web/internal/core/port/usecases_port"
	"listing-web/pkg/rabbitmq/rabbitmq_common"
	"listing-web/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PropertyChangedDTO - событие сервиса данных об изменении объекта
type PropertyChangedDTO struct {
	PropertyID string `json:"property_id"`
	Change     string `json:"change"` // created | updated | deleted
}

// PropertyChangedConsumerAdapter сбрасывает кэш выдачи на каждое событие property.changed
type PropertyChangedConsumerAdapter struct {
	consumer *rabbitmq_consumer.SequentialConsumer
	useCase  usecases_port.InvalidateListingCacheUseCase
	logger   port.LoggerPort
}

func NewPropertyChangedConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	uc usecases_port.InvalidateListingCacheUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*PropertyChangedConsumerAdapter, error) {
	adapter := &PropertyChangedConsumerAdapter{useCase: uc, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_sequential_consumer", "queue": cfg.QueueName})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewSequentialConsumer(cfg, adapter.HandleMessage, connManager)
	if err != nil {
		return nil, err
	}
	adapter.consumer = consumer
	return adapter, nil
}

// HandleMessage - обработчик одного сообщения. Ошибка означает Nack без requeue.
func (a *PropertyChangedConsumerAdapter) HandleMessage(ctx context.Context, d amqp.Delivery) error {
	return handlePropertyChanged(ctx, a.useCase, a.logger, d)
}

func handlePropertyChanged(ctx context.Context, uc usecases_port.InvalidateListingCacheUseCase, logger port.LoggerPort, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"routing_key":  d.RoutingKey,
	})

	var dto PropertyChangedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Failed to unmarshal property changed event, rejecting message", err, nil)
		return fmt.Errorf("malformed property changed event: %w", err)
	}

	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger.WithFields(port.Fields{"property_id": dto.PropertyID}))

	reason := "property." + dto.Change
	if dto.Change == "" {
		reason = d.RoutingKey
	}
	return uc.Execute(ctx, reason)
}

func (a *PropertyChangedConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *PropertyChangedConsumerAdapter) Close() error { return a.consumer.Close() }
