package fanout

import (
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

// PreferenceSource provides stored preference rows; users with no row are
// absent from the result.
type PreferenceSource interface {
	GetByUserIDs(userIDs []uint) (map[uint]models.NotificationPreference, error)
}

// RecipientSource provides the user records (for email addresses).
type RecipientSource interface {
	GetUsersByIDs(ids []uint) ([]models.User, error)
}

// EmailTarget is one email-eligible recipient.
type EmailTarget struct {
	UserID uint
	Email  string
	Name   string
}

// Gate filters fan-out candidates by per-user notification settings.
// Channel eligibility is evaluated independently: the in-app channel has no
// opt-out field yet, so every candidate stays in-app eligible; the email
// channel requires both an allowing preference and an address on file.
type Gate struct {
	prefs PreferenceSource
	users RecipientSource
}

// NewGate creates a Gate over the given sources.
func NewGate(prefs PreferenceSource, users RecipientSource) *Gate {
	return &Gate{prefs: prefs, users: users}
}

// emailAllowed maps an event type onto the stored preference row. Story and
// direct-message events have no dedicated field and are always allowed.
func emailAllowed(pref models.NotificationPreference, t EventType) bool {
	switch t {
	case EventLike, EventCommentLike:
		return pref.EmailLikes
	case EventComment, EventReply:
		return pref.EmailComments
	case EventMention:
		return pref.EmailMentions
	case EventFollow:
		return pref.EmailFollows
	default:
		return true
	}
}

// Filter splits candidates into the in-app-eligible and email-eligible sets.
// A missing preference row means default-allow.
func (g *Gate) Filter(recipients []uint, t EventType) (inApp []uint, email []EmailTarget, err error) {
	if len(recipients) == 0 {
		return nil, nil, nil
	}

	inApp = append(inApp, recipients...)

	prefs, err := g.prefs.GetByUserIDs(recipients)
	if err != nil {
		return nil, nil, err
	}
	users, err := g.users.GetUsersByIDs(recipients)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, id := range recipients {
		pref, ok := prefs[id]
		if !ok {
			pref = models.DefaultPreferences(id)
		}
		if !emailAllowed(pref, t) {
			continue
		}
		user, ok := byID[id]
		if !ok || user.Email == "" {
			continue
		}
		email = append(email, EmailTarget{UserID: id, Email: user.Email, Name: user.Name})
	}
	return inApp, email, nil
}
