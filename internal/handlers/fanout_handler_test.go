package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

type stubUserRepo struct {
	byUsername map[string]*models.User
	byID       map[uint]*models.User
}

func (s *stubUserRepo) CreateUser(user *models.User) error { return nil }
func (s *stubUserRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}
func (s *stubUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}
func (s *stubUserRepo) GetUserByUsername(username string) (*models.User, error) {
	if u, ok := s.byUsername[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}
func (s *stubUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}
func (s *stubUserRepo) UpdateUser(user *models.User) error          { return nil }
func (s *stubUserRepo) DeleteUser(id uint) error                    { return nil }
func (s *stubUserRepo) SearchUsers(q string) ([]models.User, error) { return nil, nil }

type stubFollowerDir struct{}

func (stubFollowerDir) GetFollowerIDs(userID uint) ([]uint, error) { return nil, nil }

type stubPrefSource struct{}

func (stubPrefSource) GetByUserIDs(userIDs []uint) (map[uint]models.NotificationPreference, error) {
	return map[uint]models.NotificationPreference{}, nil
}

type memorySink struct {
	mu     sync.Mutex
	stored []models.Notification
}

func (s *memorySink) CreateMany(notifications []models.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, notifications...)
	return len(notifications), nil
}

type noopMailer struct{}

func (noopMailer) Verify(ctx context.Context) error { return nil }
func (noopMailer) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	return "msg-id", nil
}

func newWebhookHandler(t *testing.T, sink *memorySink) *FanoutHandler {
	t.Helper()
	users := &stubUserRepo{
		byUsername: map[string]*models.User{
			"bob": {ID: 2, Username: "bob", Email: "bob@example.com"},
		},
		byID: map[uint]*models.User{
			2: {ID: 2, Username: "bob", Email: "bob@example.com"},
			3: {ID: 3, Username: "carol", Email: "carol@example.com"},
		},
	}
	orch := fanout.NewOrchestrator(
		fanout.NewResolver(users, stubFollowerDir{}),
		fanout.NewGate(stubPrefSource{}, users),
		sink,
		noopMailer{},
	)
	return NewFanoutHandler(orch, nil, users, "s3cret")
}

func postWebhook(h *FanoutHandler, body, secret string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ChatWebhook(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestChatWebhookRejectsBadSecret(t *testing.T) {
	h := newWebhookHandler(t, &memorySink{})
	rec := postWebhook(h, `{"type":"message.new","channelId":"ch1","senderId":1}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatWebhookRejectsUnknownEventType(t *testing.T) {
	h := newWebhookHandler(t, &memorySink{})
	rec := postWebhook(h, `{"type":"channel.deleted","channelId":"ch1","senderId":1}`, "s3cret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatWebhookMentionFanout(t *testing.T) {
	sink := &memorySink{}
	h := newWebhookHandler(t, sink)

	rec := postWebhook(h, `{"type":"message.new","channelId":"ch1","senderId":1,"text":"hi","mentionedUsernames":["bob"]}`, "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, sink.stored, 1)
	assert.Equal(t, uint(2), sink.stored[0].RecipientID)
	assert.Equal(t, models.NotificationMessage, sink.stored[0].Type)
	assert.Equal(t, "ch1", sink.stored[0].TargetID)
}

func TestChatWebhookDirectChannelNotifiesOtherMember(t *testing.T) {
	sink := &memorySink{}
	h := newWebhookHandler(t, sink)

	rec := postWebhook(h, `{"type":"message.new","channelId":"dm1","senderId":2,"text":"hey","memberIds":[2,3]}`, "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, sink.stored, 1)
	assert.Equal(t, uint(3), sink.stored[0].RecipientID)
	assert.Equal(t, uint(2), sink.stored[0].ActorID)
}

func TestChatWebhookMissingSender(t *testing.T) {
	h := newWebhookHandler(t, &memorySink{})
	rec := postWebhook(h, `{"type":"message.new","channelId":"ch1"}`, "s3cret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
