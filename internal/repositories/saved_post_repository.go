package repositories

import (
	"fmt"

	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for bookmark operations
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(userID uint, postID string) error
	IsPostSaved(userID uint, postID string) (bool, error)
	GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
	// GetSavedPage returns up to limit bookmarks of a user, newest first,
	// starting at cursorID (inclusive) when set.
	GetSavedPage(userID uint, cursorID *uint, limit int) ([]models.SavedPost, error)
}

type postgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new SavedPostRepository backed by PostgreSQL
func NewPostgresSavedPostRepository(db *gorm.DB) SavedPostRepository {
	return &postgresSavedPostRepository{db: db}
}

func (r *postgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	return r.db.Create(savedPost).Error
}

func (r *postgresSavedPostRepository) UnsavePost(userID uint, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved post not found")
	}
	return nil
}

func (r *postgresSavedPostRepository) IsPostSaved(userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedPost{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *postgresSavedPostRepository) GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	if err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error; err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}

func (r *postgresSavedPostRepository) GetSavedPage(userID uint, cursorID *uint, limit int) ([]models.SavedPost, error) {
	q := r.db.Where("user_id = ?", userID)
	if cursorID != nil {
		q = q.Where("id <= ?", *cursorID)
	}
	var saved []models.SavedPost
	err := q.Order("id DESC").Limit(limit).Find(&saved).Error
	return saved, err
}
