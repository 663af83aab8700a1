package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MessagePublisher is the transport the Kafka sink writes through.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// TopicSink encodes events as JSON records keyed by subject.
type TopicSink struct {
	publisher MessagePublisher
	topic     string
}

func NewTopicSink(publisher MessagePublisher, topic string) *TopicSink {
	return &TopicSink{publisher: publisher, topic: topic}
}

func (s *TopicSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.publisher.Publish(ctx, s.topic, []byte(event.Subject), payload)
}

// MemorySink keeps events in process, for tests and demo mode.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByAction returns recorded events with the given action in order.
func (s *MemorySink) ListByAction(action Action) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every recorded event.
func (s *MemorySink) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}
