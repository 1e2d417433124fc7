package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is a time-bounded container of ordered media items stored in MongoDB.
// It disappears from every read path once ExpiresAt has passed, regardless of
// when the sweep physically removes the document.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   uint               `json:"owner_id" bson:"owner_id"`
	Items     []StoryItem        `json:"items" bson:"items"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// StoryItem is a single media entry of a story, ordered by Order (0-based, contiguous)
type StoryItem struct {
	MediaID string `json:"media_id" bson:"media_id"`
	URL     string `json:"url" bson:"url"`
	Kind    string `json:"kind" bson:"kind"` // "image" or "video"
	Order   int    `json:"order" bson:"order"`
}

// StoryView tracks which users viewed a story (PostgreSQL).
// One row max per (story, viewer) pair.
type StoryView struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	StoryID  string    `json:"story_id" gorm:"index;uniqueIndex:idx_story_viewer"`
	ViewerID uint      `json:"viewer_id" gorm:"index;uniqueIndex:idx_story_viewer"`
	ViewedAt time.Time `json:"viewed_at"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaIDs []string `json:"mediaIds" validate:"required,min=1,max=10,dive,required"`
}
