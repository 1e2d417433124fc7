package models

import "time"

// Media kinds
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is the id -> {url, kind} record stories reference. The binary itself
// lives in external storage; this table only registers the lookup entry.
type Media struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	URL        string    `json:"url"`
	Kind       string    `json:"kind" gorm:"size:10"`
	UploaderID uint      `json:"uploader_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateMediaRequest defines the request body for registering uploaded media
type CreateMediaRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"required,oneof=image video"`
}
