package fanout

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/tahmidr/glowfeed/backend/internal/models"
)

// Status is the terminal state of one fan-out.
type Status string

const (
	// StatusComplete means every email task succeeded, or there were none.
	StatusComplete Status = "COMPLETE"
	// StatusPartial means at least one email task failed while the in-app
	// write or another email succeeded.
	StatusPartial Status = "PARTIAL"
	// StatusFailed means the transport connectivity pre-check failed.
	StatusFailed Status = "FAILED"
)

// Outcome aggregates one fan-out: in-app records written, emails sent, and
// the per-recipient delivery errors.
type Outcome struct {
	Status      Status
	Notified    int
	EmailsSent  int
	EmailErrors []error
}

// NotificationSink persists the in-app notification batch.
type NotificationSink interface {
	CreateMany(notifications []models.Notification) (int, error)
}

// Orchestrator turns one event into in-app notification records and outbound
// emails. The in-app write is durable before any email dispatch is attempted
// and is never rolled back because of email failures; the two channels are
// independent.
type Orchestrator struct {
	resolver *Resolver
	gate     *Gate
	store    NotificationSink
	mailer   Mailer
}

// NewOrchestrator wires the fan-out pipeline.
func NewOrchestrator(resolver *Resolver, gate *Gate, store NotificationSink, mailer Mailer) *Orchestrator {
	return &Orchestrator{resolver: resolver, gate: gate, store: store, mailer: mailer}
}

// Dispatch runs RESOLVING -> FILTERING -> DISPATCHING for one event.
// Already-started sends run to completion even if the caller stops waiting.
func (o *Orchestrator) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	// RESOLVING
	recipients, err := o.resolver.Resolve(ev)
	if err != nil {
		return Outcome{Status: StatusFailed}, err
	}
	if len(recipients) == 0 {
		return Outcome{Status: StatusComplete}, nil
	}

	// FILTERING — eligibility is computed exactly once, before any retry.
	inApp, emails, err := o.gate.Filter(recipients, ev.Type)
	if err != nil {
		return Outcome{Status: StatusFailed}, err
	}

	// DISPATCHING — the in-app batch lands first.
	notifs := make([]models.Notification, 0, len(inApp))
	for _, id := range inApp {
		notifs = append(notifs, models.Notification{
			Type:        string(ev.Type),
			ActorID:     ev.ActorID,
			RecipientID: id,
			TargetID:    ev.TargetID,
			TargetType:  ev.TargetType,
			Message:     ev.Message,
		})
	}
	stored, err := o.store.CreateMany(notifs)
	if err != nil {
		return Outcome{Status: StatusFailed}, fmt.Errorf("writing notifications: %w", err)
	}

	outcome := Outcome{Notified: stored}
	if len(emails) == 0 {
		outcome.Status = StatusComplete
		return outcome, nil
	}

	// Connectivity is verified once per batch; a failure here is a
	// configuration problem, not a per-recipient condition.
	if err := o.mailer.Verify(ctx); err != nil {
		outcome.Status = StatusFailed
		outcome.EmailErrors = []error{err}
		return outcome, err
	}

	subject, text, html := renderEmail(ev)
	results := make([]error, len(emails))
	var wg sync.WaitGroup
	for i, target := range emails {
		wg.Add(1)
		go func(i int, target EmailTarget) {
			defer wg.Done()
			if _, err := o.mailer.Send(ctx, target.Email, subject, text, html); err != nil {
				results[i] = err
			}
		}(i, target)
	}
	wg.Wait()

	for i, res := range results {
		if res != nil {
			outcome.EmailErrors = append(outcome.EmailErrors, fmt.Errorf("recipient %d: %w", emails[i].UserID, res))
			log.Printf("fanout: email to user %d failed: %v", emails[i].UserID, res)
		} else {
			outcome.EmailsSent++
		}
	}

	if len(outcome.EmailErrors) == 0 {
		outcome.Status = StatusComplete
	} else {
		outcome.Status = StatusPartial
	}
	return outcome, nil
}

func renderEmail(ev Event) (subject, text, html string) {
	var action string
	switch ev.Type {
	case EventLike:
		action = "liked your post"
	case EventComment:
		action = "commented on your post"
	case EventReply:
		action = "replied to your comment"
	case EventCommentLike:
		action = "liked your comment"
	case EventMention:
		action = "mentioned you"
	case EventFollow:
		action = "started following you"
	case EventStory:
		action = "posted a new story"
	case EventMessage:
		action = "sent you a message"
	default:
		action = "has news for you"
	}

	subject = fmt.Sprintf("Someone %s on Glowfeed", action)
	text = ev.Message
	if text == "" {
		text = fmt.Sprintf("Someone %s. Open the app to see it.", action)
	}
	html = fmt.Sprintf("<p>%s</p>", text)
	return subject, text, html
}
