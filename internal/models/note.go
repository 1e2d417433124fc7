package models

import "time"

// Note is single-slot ephemeral content: at most one live note per user.
// Replacing a note deletes the previous live one in the same transaction.
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content" gorm:"size:60"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// CreateNoteRequest defines the request body for creating a note
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=60"`
}
