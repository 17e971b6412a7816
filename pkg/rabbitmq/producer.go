/**
 * @description
 * RabbitMQ event producer. Scheduler transitions publish domain events to a
 * durable topic exchange for downstream consumers (analytics, push
 * notifications). Publishing is best effort; a no-op fallback lets the
 * service start when the broker is unavailable.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducer publishes events to a RabbitMQ topic exchange.
type EventProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewEventProducer dials RabbitMQ and opens a channel. The dial is bounded so
// startup does not hang indefinitely on a dead broker.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message to a durable topic exchange, declaring the
// exchange first so publish order between services does not matter.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        jsonBody,
		},
	)
}

// Close closes the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// FallbackProducer is a no-op publisher used when RabbitMQ is unavailable at
// startup. Events are logged instead of published.
type FallbackProducer struct {
	Logger *slog.Logger
}

// Publish logs the event that would have been published.
func (p *FallbackProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.Logger.Info("would publish event", "exchange", exchange, "routing_key", routingKey)
	return nil
}

// Close is a no-op.
func (p *FallbackProducer) Close() {}
