package rabbitmq_consumer

import (
	"context"
	"fmt"

	"listing-web/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. nil - Ack, ошибка - Nack без requeue.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// SequentialConsumer обрабатывает сообщения по одному в порядке поступления
type SequentialConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

func NewSequentialConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*SequentialConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("sequential Consumer: message handler is required")
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("sequential Consumer: %w", err)
	}

	return &SequentialConsumer{
		baseConsumer: bc,
		handler:      handler,
	}, nil
}

// QueueName - актуальное имя очереди (могло быть сгенерировано сервером)
func (c *SequentialConsumer) QueueName() string {
	return c.baseConsumer.actualQueueName
}

// StartConsuming блокируется до отмены ctx или закрытия соединения брокером.
// Штатная отмена возвращает nil.
func (c *SequentialConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("sequential Consumer: not connected")
	}

	msgs, err := bc.channel.Consume(
		bc.actualQueueName,
		bc.config.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("sequential Consumer: failed to register a consumer on queue '%s': %w", bc.actualQueueName, err)
	}

	notifyClose := bc.connection.NotifyClose(make(chan *amqp.Error, 1))

	bc.Logger.Info("[*] Waiting for messages on queue", "queue_name", bc.actualQueueName)

	for {
		select {
		case <-ctx.Done():
			bc.Logger.Info("Context cancelled. Shutting down consumer", "consumer_tag", bc.config.ConsumerTag)
			return nil

		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			bc.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", bc.config.ConsumerTag)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed by RabbitMQ", "consumer_tag", bc.config.ConsumerTag)
				return nil
			}
			c.process(ctx, d)
		}
	}
}

func (c *SequentialConsumer) process(ctx context.Context, d amqp.Delivery) {
	bc := c.baseConsumer
	bc.wg.Add(1)
	defer bc.wg.Done()

	if err := c.handler(ctx, d); err != nil {
		bc.Logger.Error(err, "Handler error for message",
			"consumer_tag", bc.config.ConsumerTag,
			"delivery_tag", d.DeliveryTag,
			"routing_key", d.RoutingKey)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
	bc.Logger.Debug("[+] Message Ack'd", "delivery_tag", d.DeliveryTag)
}

func (c *SequentialConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
