package repositories

import (
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	// GetThreadPage returns up to limit comments of a post in ascending id
	// order; when cursorID is set the window ends at that id (inclusive),
	// so the page holds the most recent rows at or before the cursor.
	GetThreadPage(postID string, cursorID *uint, limit int) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
}

type postgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new CommentRepository backed by PostgreSQL
func NewPostgresCommentRepository(db *gorm.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *postgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *postgresCommentRepository) GetThreadPage(postID string, cursorID *uint, limit int) ([]models.Comment, error) {
	q := r.db.Where("post_id = ?", postID)
	if cursorID != nil {
		q = q.Where("id <= ?", *cursorID)
	}
	var comments []models.Comment
	if err := q.Order("id DESC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, err
	}
	// Oldest-first within the window, for the "load older" pattern.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return comments, nil
}

func (r *postgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

func (r *postgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
