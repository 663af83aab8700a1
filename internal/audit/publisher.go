package audit

import (
	"context"
	"log/slog"
	"time"

	"casetrack/pkg/requestcontext"
)

// Publisher hands events to the background worker through a buffered
// channel. Emit never blocks a request: when the buffer is full the event
// is dropped and logged.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher with the given buffer size.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues an event, filling timestamp and request id from ctx.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", string(event.Action),
			"subject", event.Subject,
		)
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
