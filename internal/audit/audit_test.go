package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrack/pkg/requestcontext"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestPublisherFillsContextFields(t *testing.T) {
	p := NewPublisher(1, discard)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), now), "req-1")

	p.Emit(ctx, Event{Action: ActionReportFiled})

	got := <-p.Inbox()
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, "req-1", got.RequestID)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1, discard)
	p.Emit(context.Background(), Event{Action: ActionSubscribed, Subject: "a"})
	p.Emit(context.Background(), Event{Action: ActionSubscribed, Subject: "b"})

	assert.Len(t, p.Inbox(), 1)
	assert.Equal(t, "a", (<-p.Inbox()).Subject)
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	p := NewPublisher(4, discard)
	sink := NewMemorySink()
	p.Emit(context.Background(), Event{Action: ActionCaseCreated, Subject: "OB/1"})
	p.Emit(context.Background(), Event{Action: ActionNoteAdded, Subject: "OB/1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(sink, p.Inbox(), discard).Run(ctx))

	assert.Len(t, sink.All(), 2)
	assert.Len(t, sink.ListByAction(ActionNoteAdded), 1)
}

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, Event) error {
	f.calls++
	return errors.New("unavailable")
}

func TestWorkerKeepsRunningOnSinkError(t *testing.T) {
	p := NewPublisher(4, discard)
	sink := &failingSink{}
	p.Emit(context.Background(), Event{Action: ActionCaseCreated})
	p.Emit(context.Background(), Event{Action: ActionCaseUpdated})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(sink, p.Inbox(), discard).Run(ctx))
	assert.Equal(t, 2, sink.calls)
}

type recordingPublisher struct {
	topic string
	key   []byte
	value []byte
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	r.topic, r.key, r.value = topic, key, value
	return nil
}

func TestTopicSinkEncodesJSON(t *testing.T) {
	pub := &recordingPublisher{}
	sink := NewTopicSink(pub, "casetrack.audit")

	require.NoError(t, sink.Append(context.Background(), Event{
		Action:  ActionSubscriptionAutoCreated,
		Actor:   "citizen@example.com",
		Subject: "OB/2025/001",
	}))

	assert.Equal(t, "casetrack.audit", pub.topic)
	assert.Equal(t, "OB/2025/001", string(pub.key))
	var decoded Event
	require.NoError(t, json.Unmarshal(pub.value, &decoded))
	assert.Equal(t, ActionSubscriptionAutoCreated, decoded.Action)
}
