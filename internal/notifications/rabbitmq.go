package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"festbook/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the publisher uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes outcome events to a durable queue through the
// default exchange. A channel is not safe for concurrent publishing.
type RabbitPublisher struct {
	conn  *amqp.Connection
	queue string
	log   *logger.Logger

	mu sync.Mutex
	ch amqpChannel
}

func NewRabbitPublisher(url, queue string, log *logger.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	p := newRabbitPublisher(ch, queue, log)
	p.conn = conn
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, queue string, log *logger.Logger) *RabbitPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &RabbitPublisher{ch: ch, queue: queue, log: log}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event *Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}

	p.log.InfoWithContext(ctx, "booking outcome published", map[string]interface{}{
		"queue": p.queue,
		"type":  string(event.Type),
	})
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
