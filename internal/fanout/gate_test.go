package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

type stubPrefs map[uint]models.NotificationPreference

func (s stubPrefs) GetByUserIDs(userIDs []uint) (map[uint]models.NotificationPreference, error) {
	out := make(map[uint]models.NotificationPreference)
	for _, id := range userIDs {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubRecipients map[uint]models.User

func (s stubRecipients) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var users []models.User
	for _, id := range ids {
		if u, ok := s[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func TestFilterDisabledPreferenceKeepsInAppOnly(t *testing.T) {
	pref := models.DefaultPreferences(2)
	pref.EmailMentions = false
	g := NewGate(
		stubPrefs{2: pref},
		stubRecipients{2: {ID: 2, Email: "bob@example.com"}},
	)

	inApp, email, err := g.Filter([]uint{2}, EventMention)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, inApp)
	assert.Empty(t, email)
}

func TestFilterMissingRowDefaultsToAllow(t *testing.T) {
	g := NewGate(
		stubPrefs{},
		stubRecipients{2: {ID: 2, Name: "Bob", Email: "bob@example.com"}},
	)

	inApp, email, err := g.Filter([]uint{2}, EventLike)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, inApp)
	require.Len(t, email, 1)
	assert.Equal(t, "bob@example.com", email[0].Email)
}

func TestFilterNoEmailOnFile(t *testing.T) {
	g := NewGate(
		stubPrefs{},
		stubRecipients{2: {ID: 2}},
	)

	inApp, email, err := g.Filter([]uint{2}, EventFollow)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, inApp)
	assert.Empty(t, email)
}

func TestFilterEventPreferenceMapping(t *testing.T) {
	pref := models.NotificationPreference{
		UserID:        2,
		EmailLikes:    false,
		EmailComments: true,
		EmailFollows:  false,
		EmailMentions: true,
	}
	g := NewGate(
		stubPrefs{2: pref},
		stubRecipients{2: {ID: 2, Email: "bob@example.com"}},
	)

	cases := []struct {
		event   EventType
		allowed bool
	}{
		{EventLike, false},
		{EventCommentLike, false},
		{EventComment, true},
		{EventReply, true},
		{EventMention, true},
		{EventFollow, false},
		{EventStory, true},   // no dedicated field, always allowed
		{EventMessage, true}, // no dedicated field, always allowed
	}
	for _, tc := range cases {
		_, email, err := g.Filter([]uint{2}, tc.event)
		require.NoError(t, err, tc.event)
		if tc.allowed {
			assert.Len(t, email, 1, tc.event)
		} else {
			assert.Empty(t, email, tc.event)
		}
	}
}

func TestFilterEmptyRecipients(t *testing.T) {
	g := NewGate(stubPrefs{}, stubRecipients{})
	inApp, email, err := g.Filter(nil, EventLike)
	require.NoError(t, err)
	assert.Empty(t, inApp)
	assert.Empty(t, email)
}
