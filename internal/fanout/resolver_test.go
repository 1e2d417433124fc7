package fanout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

type stubUsers map[string]uint

func (s stubUsers) GetUserByUsername(username string) (*models.User, error) {
	id, ok := s[username]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return &models.User{ID: id, Username: username}, nil
}

type stubFollowers map[uint][]uint

func (s stubFollowers) GetFollowerIDs(userID uint) ([]uint, error) {
	return s[userID], nil
}

func TestExtractMentionsDedupesCaseInsensitively(t *testing.T) {
	got := ExtractMentions("hey @Bob and @bob, also @BOB and @alice")
	assert.Equal(t, []string{"bob", "alice"}, got)
}

func TestExtractMentionsEmptyText(t *testing.T) {
	assert.Empty(t, ExtractMentions("no mentions here"))
}

func TestResolveCombinesSourcesAndDedupes(t *testing.T) {
	r := NewResolver(stubUsers{"bob": 2, "alice": 3}, stubFollowers{})

	recipients, err := r.Resolve(Event{
		Type:          EventComment,
		ActorID:       1,
		Text:          "thanks @bob and @alice",
		TargetOwnerID: 2, // also mentioned; must appear once
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, recipients)
}

func TestResolveExcludesActor(t *testing.T) {
	r := NewResolver(stubUsers{"me": 1}, stubFollowers{})

	recipients, err := r.Resolve(Event{
		Type:          EventLike,
		ActorID:       1,
		Text:          "note to @me",
		TargetOwnerID: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestResolveIgnoresUnknownUsernames(t *testing.T) {
	r := NewResolver(stubUsers{"bob": 2}, stubFollowers{})

	recipients, err := r.Resolve(Event{
		Type:    EventMention,
		ActorID: 1,
		Text:    "@bob @ghost @nobody",
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, recipients)
}

func TestResolveStoryFansOutToFollowers(t *testing.T) {
	r := NewResolver(stubUsers{}, stubFollowers{1: {2, 3, 4}})

	recipients, err := r.Resolve(Event{Type: EventStory, ActorID: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3, 4}, recipients)
}

func TestResolveNonStoryIgnoresFollowers(t *testing.T) {
	r := NewResolver(stubUsers{}, stubFollowers{1: {2, 3}})

	recipients, err := r.Resolve(Event{Type: EventLike, ActorID: 1, TargetOwnerID: 5})
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, recipients)
}

func TestResolvePreExtractedUsernames(t *testing.T) {
	r := NewResolver(stubUsers{"bob": 2}, stubFollowers{})

	recipients, err := r.Resolve(Event{
		Type:      EventMessage,
		ActorID:   1,
		Usernames: []string{"Bob", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, recipients)
}
