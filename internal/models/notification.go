package models

import "time"

// Notification types
const (
	NotificationLike        = "like"
	NotificationComment     = "comment"
	NotificationReply       = "reply"
	NotificationCommentLike = "comment_like"
	NotificationMention     = "mention"
	NotificationFollow      = "follow"
	NotificationStory       = "story"
	NotificationMessage     = "message"
)

// Notification represents a user notification (PostgreSQL).
// A notification is never created with RecipientID == ActorID; the fan-out
// layer suppresses self-notifications before they reach the store.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetID    string    `json:"target_id"`                  // post ID, story ID, channel ID, etc.
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, comment, story, channel, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
