package audit

import (
	"context"
	"log/slog"
)

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Worker consumes audit events from a channel and hands them to the sink.
// Sink failures are logged and do not stop the worker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run blocks until ctx is cancelled, then drains whatever is already
// buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"action", string(event.Action),
			"subject", event.Subject,
			"error", err,
		)
	}
}
