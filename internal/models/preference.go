package models

import "time"

// NotificationPreference holds per-user email notification toggles.
// At most one row per user; the row is created lazily on first read with
// every channel enabled. Story and direct-message emails have no dedicated
// field yet and are always allowed.
type NotificationPreference struct {
	ID            uint      `json:"-" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex"`
	EmailLikes    bool      `json:"email_likes" gorm:"default:true"`
	EmailComments bool      `json:"email_comments" gorm:"default:true"`
	EmailFollows  bool      `json:"email_follows" gorm:"default:true"`
	EmailMentions bool      `json:"email_mentions" gorm:"default:true"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// DefaultPreferences returns the default-allow row used when a user has
// never touched their settings.
func DefaultPreferences(userID uint) NotificationPreference {
	return NotificationPreference{
		UserID:        userID,
		EmailLikes:    true,
		EmailComments: true,
		EmailFollows:  true,
		EmailMentions: true,
	}
}

// UpdatePreferencesRequest carries partial updates; unset fields keep their
// current value, which defaults to true.
type UpdatePreferencesRequest struct {
	EmailLikes    *bool `json:"email_likes,omitempty"`
	EmailComments *bool `json:"email_comments,omitempty"`
	EmailFollows  *bool `json:"email_follows,omitempty"`
	EmailMentions *bool `json:"email_mentions,omitempty"`
}
