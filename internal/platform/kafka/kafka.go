// Package kafka wraps a franz-go producer used for audit events and case
// notifications.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"casetrack/internal/platform/config"
)

// Producer publishes records synchronously.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewProducer connects to the configured brokers and verifies reachability.
func NewProducer(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(3),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Producer{client: client, logger: logger}, nil
}

// Publish writes one record and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// EnsureTopics creates the topics when missing. Existing topics are not an error.
func (p *Producer) EnsureTopics(ctx context.Context, topics ...string) error {
	adm := kadm.NewClient(p.client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, r := range resps.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
		if r.Err == nil {
			p.logger.Info("kafka topic created", "topic", r.Topic)
		}
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush on close failed", "error", err)
	}
	p.client.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured. Records
// are written to the log at debug level.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the record.
func (p *LogPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.logger.DebugContext(ctx, "event published",
		"topic", topic,
		"key", string(key),
		"value", string(value),
	)
	return nil
}
