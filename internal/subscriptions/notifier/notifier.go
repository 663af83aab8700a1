// Package notifier fans case changes out to every subscribed address as
// one message per (subscriber, change) on the notifications topic.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/platform/metrics"
	"casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/email"
	"casetrack/pkg/requestcontext"
)

type SubscriberLister interface {
	ListEmailsByCase(ctx context.Context, caseID id.CaseID) ([]string, error)
}

type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Notifier struct {
	subscribers SubscriberLister
	publisher   MessagePublisher
	topic       string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) {
		n.metrics = m
	}
}

func New(subscribers SubscriberLister, publisher MessagePublisher, topic string, opts ...Option) *Notifier {
	n := &Notifier{
		subscribers: subscribers,
		publisher:   publisher,
		topic:       topic,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// CaseUpdated publishes a status and/or court date notification.
// Edits touching neither attribute publish nothing.
func (n *Notifier) CaseUpdated(ctx context.Context, before, after *casesModels.Case) error {
	statusChanged, courtDateChanged := before.Changed(after)
	var batch []models.Notification
	if statusChanged {
		batch = append(batch, n.notification(ctx, models.NotificationStatusChanged, after,
			fmt.Sprintf("Case %s status changed to %s.", after.OBNumber, after.StatusLabel())))
	}
	if courtDateChanged {
		msg := fmt.Sprintf("Court date for case %s was removed.", after.OBNumber)
		if after.CourtDate != nil {
			msg = fmt.Sprintf("Court date for case %s set to %s.", after.OBNumber, after.CourtDate.Format("2006-01-02 15:04 MST"))
		}
		batch = append(batch, n.notification(ctx, models.NotificationCourtDateChanged, after, msg))
	}
	if len(batch) == 0 {
		return nil
	}
	return n.fanOut(ctx, after.ID, batch)
}

// NoteAdded publishes a note notification. The note text stays internal.
func (n *Notifier) NoteAdded(ctx context.Context, c *casesModels.Case, _ *casesModels.Note) error {
	return n.fanOut(ctx, c.ID, []models.Notification{
		n.notification(ctx, models.NotificationNoteAdded, c,
			fmt.Sprintf("Case %s has a new officer update.", c.OBNumber)),
	})
}

func (n *Notifier) notification(ctx context.Context, kind models.NotificationKind, c *casesModels.Case, msg string) models.Notification {
	return models.Notification{
		Kind:        kind,
		CaseID:      c.ID.String(),
		OBNumber:    c.OBNumber,
		Title:       c.Title,
		Status:      c.Status.String(),
		StatusLabel: c.StatusLabel(),
		CourtDate:   c.CourtDate,
		Message:     msg,
		OccurredAt:  requestcontext.Now(ctx),
	}
}

func (n *Notifier) fanOut(ctx context.Context, caseID id.CaseID, batch []models.Notification) error {
	addrs, err := n.subscribers.ListEmailsByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("list subscribers for case %s: %w", caseID, err)
	}
	addrs = email.Dedupe(addrs)

	var errs []error
	sent := 0
	for _, addr := range addrs {
		for _, msg := range batch {
			msg.Email = addr
			payload, err := json.Marshal(msg)
			if err != nil {
				errs = append(errs, fmt.Errorf("marshal notification: %w", err))
				continue
			}
			if err := n.publisher.Publish(ctx, n.topic, []byte(addr), payload); err != nil {
				errs = append(errs, fmt.Errorf("publish to %s: %w", n.topic, err))
				continue
			}
			sent++
		}
	}
	n.metrics.AddNotificationsEmitted(sent)
	n.logger.DebugContext(ctx, "case notifications published",
		"case_id", caseID.String(),
		"subscribers", len(addrs),
		"sent", sent,
	)
	return errors.Join(errs...)
}
