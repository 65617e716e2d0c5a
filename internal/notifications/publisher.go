package notifications

import (
	"context"
	"fmt"

	"festbook/internal/shared/config"
	"festbook/pkg/logger"
)

const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

// New picks the publisher named by NOTIFY_BROKER
func New(cfg config.NotifyConfig, log *logger.Logger) (Publisher, error) {
	switch cfg.Broker {
	case BrokerKafka:
		return NewKafkaPublisher(DefaultKafkaConfig(cfg.KafkaBrokers, cfg.KafkaTopic), log)
	case BrokerRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, log)
	case BrokerNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown notification broker %q", cfg.Broker)
	}
}

// Noop drops every event
type Noop struct{}

func (Noop) Publish(context.Context, *Event) error { return nil }
func (Noop) Close() error                          { return nil }
