package fanout

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

type memorySink struct {
	mu     sync.Mutex
	stored []models.Notification
	err    error
}

func (s *memorySink) CreateMany(notifications []models.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.stored = append(s.stored, notifications...)
	return len(notifications), nil
}

type fakeMailer struct {
	mu        sync.Mutex
	verifyErr error
	failFor   map[string]error
	sent      []string
	verified  int
}

func (m *fakeMailer) Verify(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified++
	return m.verifyErr
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return "", err
	}
	m.sent = append(m.sent, to)
	return "msg-id", nil
}

func newTestOrchestrator(users stubUsers, followers stubFollowers, prefs stubPrefs, recipients stubRecipients, sink *memorySink, mailer *fakeMailer) *Orchestrator {
	return NewOrchestrator(
		NewResolver(users, followers),
		NewGate(prefs, recipients),
		sink,
		mailer,
	)
}

func TestDispatchZeroRecipients(t *testing.T) {
	sink := &memorySink{}
	mailer := &fakeMailer{}
	o := newTestOrchestrator(stubUsers{}, stubFollowers{}, stubPrefs{}, stubRecipients{}, sink, mailer)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventLike, ActorID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, outcome.Status)
	assert.Zero(t, outcome.Notified)
	assert.Empty(t, sink.stored)
	assert.Zero(t, mailer.verified)
}

func TestDispatchAllEmailsSucceed(t *testing.T) {
	sink := &memorySink{}
	mailer := &fakeMailer{}
	o := newTestOrchestrator(
		stubUsers{},
		stubFollowers{1: {2, 3}},
		stubPrefs{},
		stubRecipients{
			2: {ID: 2, Email: "two@example.com"},
			3: {ID: 3, Email: "three@example.com"},
		},
		sink, mailer,
	)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventStory, ActorID: 1, TargetID: "abc", TargetType: "story"})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, outcome.Status)
	assert.Equal(t, 2, outcome.Notified)
	assert.Equal(t, 2, outcome.EmailsSent)
	assert.Len(t, sink.stored, 2)
	assert.Equal(t, 1, mailer.verified)
}

func TestDispatchPartialEmailFailure(t *testing.T) {
	sink := &memorySink{}
	mailer := &fakeMailer{failFor: map[string]error{
		"three@example.com": fmt.Errorf("smtp timeout"),
	}}
	o := newTestOrchestrator(
		stubUsers{},
		stubFollowers{1: {2, 3}},
		stubPrefs{},
		stubRecipients{
			2: {ID: 2, Email: "two@example.com"},
			3: {ID: 3, Email: "three@example.com"},
		},
		sink, mailer,
	)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventStory, ActorID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Equal(t, 2, outcome.Notified) // in-app records survive the email failure
	assert.Equal(t, 1, outcome.EmailsSent)
	assert.Len(t, outcome.EmailErrors, 1)
	assert.Len(t, sink.stored, 2)
}

func TestDispatchVerifyFailureIsFatal(t *testing.T) {
	sink := &memorySink{}
	mailer := &fakeMailer{verifyErr: fmt.Errorf("dial tcp: connection refused")}
	o := newTestOrchestrator(
		stubUsers{},
		stubFollowers{1: {2}},
		stubPrefs{},
		stubRecipients{2: {ID: 2, Email: "two@example.com"}},
		sink, mailer,
	)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventStory, ActorID: 1})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	// The in-app write happened before the connectivity check and stays.
	assert.Equal(t, 1, outcome.Notified)
	assert.Len(t, sink.stored, 1)
	assert.Empty(t, mailer.sent)
}

func TestDispatchNoEmailEligibleSkipsTransport(t *testing.T) {
	pref := models.DefaultPreferences(2)
	pref.EmailFollows = false
	sink := &memorySink{}
	mailer := &fakeMailer{verifyErr: fmt.Errorf("should not be called")}
	o := newTestOrchestrator(
		stubUsers{},
		stubFollowers{},
		stubPrefs{2: pref},
		stubRecipients{2: {ID: 2, Email: "two@example.com"}},
		sink, mailer,
	)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventFollow, ActorID: 1, TargetOwnerID: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, outcome.Status)
	assert.Equal(t, 1, outcome.Notified)
	assert.Zero(t, mailer.verified)
}

func TestDispatchStoreFailure(t *testing.T) {
	sink := &memorySink{err: fmt.Errorf("db down")}
	mailer := &fakeMailer{}
	o := newTestOrchestrator(
		stubUsers{},
		stubFollowers{},
		stubPrefs{},
		stubRecipients{2: {ID: 2, Email: "two@example.com"}},
		sink, mailer,
	)

	outcome, err := o.Dispatch(context.Background(), Event{Type: EventLike, ActorID: 1, TargetOwnerID: 2})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, mailer.sent)
}
