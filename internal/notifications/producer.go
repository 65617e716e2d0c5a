package notifications

import (
	"context"
	"fmt"
	"time"

	"festbook/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaConfig configures the Kafka outcome publisher
type KafkaConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultKafkaConfig returns production defaults for brokers and topic
func DefaultKafkaConfig(brokers []string, topic string) KafkaConfig {
	return KafkaConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaPublisher publishes outcome events with a sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	// Same student, same partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, cfg.Topic, log), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Headers:   headers(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	p.log.InfoWithContext(ctx, "booking outcome published", map[string]interface{}{
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
		"type":      string(event.Type),
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func headers(event *Event) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("session_id"), Value: []byte(event.SessionID)},
		{Key: []byte("producer"), Value: []byte("festbook")},
	}
}
