package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/subscriptions/models"
	"casetrack/internal/subscriptions/store"
	id "casetrack/pkg/domain"
	"casetrack/pkg/requestcontext"
)

type published struct {
	topic string
	key   string
	msg   models.Notification
}

type capturePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (c *capturePublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	if c.err != nil {
		return c.err
	}
	var n models.Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, published{topic: topic, key: string(key), msg: n})
	return nil
}

func setup(t *testing.T, emails ...string) (context.Context, *casesModels.Case, *capturePublisher, *Notifier) {
	t.Helper()
	ctx := requestcontext.WithTime(context.Background(), time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC))
	c, err := casesModels.NewCase(id.NewCaseID(), "OB/2025/001", "", casesModels.Fields{Title: "Burglary"}, requestcontext.Now(ctx))
	require.NoError(t, err)

	subs := store.NewInMemory()
	for _, addr := range emails {
		sub, err := models.NewSubscription(id.NewSubscriptionID(), c.ID, addr, requestcontext.Now(ctx))
		require.NoError(t, err)
		_, _, err = subs.GetOrCreate(ctx, sub)
		require.NoError(t, err)
	}

	pub := &capturePublisher{}
	n := New(subs, pub, "casetrack.notifications", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return ctx, c, pub, n
}

func TestCaseUpdated(t *testing.T) {
	t.Run("status change notifies each subscriber once", func(t *testing.T) {
		ctx, before, pub, n := setup(t, "a@example.com", "b@example.com")
		after := *before
		require.NoError(t, after.Apply(casesModels.Fields{Title: before.Title, Status: id.CaseStatusCourt}))

		require.NoError(t, n.CaseUpdated(ctx, before, &after))

		require.Len(t, pub.sent, 2)
		keys := []string{pub.sent[0].key, pub.sent[1].key}
		assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, keys)
		for _, p := range pub.sent {
			assert.Equal(t, "casetrack.notifications", p.topic)
			assert.Equal(t, models.NotificationStatusChanged, p.msg.Kind)
			assert.Equal(t, p.key, p.msg.Email)
			assert.Equal(t, "Court", p.msg.StatusLabel)
			assert.Equal(t, "OB/2025/001", p.msg.OBNumber)
		}
	})

	t.Run("status and court date change emit two kinds", func(t *testing.T) {
		ctx, before, pub, n := setup(t, "a@example.com")
		court := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		after := *before
		require.NoError(t, after.Apply(casesModels.Fields{Title: before.Title, Status: id.CaseStatusCourt, CourtDate: &court}))

		require.NoError(t, n.CaseUpdated(ctx, before, &after))

		require.Len(t, pub.sent, 2)
		assert.Equal(t, models.NotificationStatusChanged, pub.sent[0].msg.Kind)
		assert.Equal(t, models.NotificationCourtDateChanged, pub.sent[1].msg.Kind)
		require.NotNil(t, pub.sent[1].msg.CourtDate)
		assert.True(t, court.Equal(*pub.sent[1].msg.CourtDate))
	})

	t.Run("title-only edit publishes nothing", func(t *testing.T) {
		ctx, before, pub, n := setup(t, "a@example.com")
		after := *before
		require.NoError(t, after.Apply(casesModels.Fields{Title: "Renamed", Status: before.Status, CourtDate: before.CourtDate}))

		require.NoError(t, n.CaseUpdated(ctx, before, &after))
		assert.Empty(t, pub.sent)
	})

	t.Run("publisher failure is returned", func(t *testing.T) {
		ctx, before, pub, n := setup(t, "a@example.com")
		pub.err = errors.New("broker down")
		after := *before
		require.NoError(t, after.Apply(casesModels.Fields{Title: before.Title, Status: id.CaseStatusDCI}))

		err := n.CaseUpdated(ctx, before, &after)
		assert.ErrorIs(t, err, pub.err)
	})
}

func TestNoteAdded(t *testing.T) {
	ctx, c, pub, n := setup(t, "a@example.com")
	note, err := casesModels.NewNote(id.NewNoteID(), c.ID, "Suspect interviewed", requestcontext.Now(ctx))
	require.NoError(t, err)

	require.NoError(t, n.NoteAdded(ctx, c, note))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, models.NotificationNoteAdded, pub.sent[0].msg.Kind)
	assert.NotContains(t, pub.sent[0].msg.Message, "Suspect interviewed")
}

func TestNoSubscribers(t *testing.T) {
	ctx, c, pub, n := setup(t)
	note, err := casesModels.NewNote(id.NewNoteID(), c.ID, "text", requestcontext.Now(ctx))
	require.NoError(t, err)

	require.NoError(t, n.NoteAdded(ctx, c, note))
	assert.Empty(t, pub.sent)
}
