package fanout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tahmidr/glowfeed/backend/internal/models"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions scans free text for @username tokens and returns the
// lowered, deduplicated set in first-seen order. "@Bob @bob @BOB" yields
// exactly one entry.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var usernames []string
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		usernames = append(usernames, name)
	}
	return usernames
}

// UserDirectory resolves usernames to users.
type UserDirectory interface {
	GetUserByUsername(username string) (*models.User, error)
}

// FollowerDirectory resolves the follower set of a user.
type FollowerDirectory interface {
	GetFollowerIDs(userID uint) ([]uint, error)
}

// Resolver computes the deduplicated candidate recipient set for an event.
type Resolver struct {
	users     UserDirectory
	followers FollowerDirectory
}

// NewResolver creates a Resolver over the given lookups.
func NewResolver(users UserDirectory, followers FollowerDirectory) *Resolver {
	return &Resolver{users: users, followers: followers}
}

// Resolve returns the unique candidate recipients for an event, in stable
// order, never including the issuer. Unknown mentioned usernames resolve to
// nothing.
func (r *Resolver) Resolve(ev Event) ([]uint, error) {
	var candidates []uint

	if ev.TargetOwnerID != 0 {
		candidates = append(candidates, ev.TargetOwnerID)
	}

	usernames := ev.Usernames
	if ev.Text != "" {
		usernames = append(usernames, ExtractMentions(ev.Text)...)
	}
	seenNames := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		name = strings.ToLower(name)
		if seenNames[name] {
			continue
		}
		seenNames[name] = true
		user, err := r.users.GetUserByUsername(name)
		if err != nil {
			continue // unknown usernames are silently ignored
		}
		candidates = append(candidates, user.ID)
	}

	if ev.Type == EventStory {
		followerIDs, err := r.followers.GetFollowerIDs(ev.ActorID)
		if err != nil {
			return nil, fmt.Errorf("resolving followers: %w", err)
		}
		candidates = append(candidates, followerIDs...)
	}

	seen := make(map[uint]bool, len(candidates))
	recipients := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if id == ev.ActorID || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	return recipients, nil
}
