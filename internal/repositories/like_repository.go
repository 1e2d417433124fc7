package repositories

import (
	"fmt"

	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(postID string, userID uint) error
	HasUserLikedPost(postID string, userID uint) (bool, error)
	GetLikesCountByPostID(postID string) (int64, error)
}

type postgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new LikeRepository backed by PostgreSQL
func NewPostgresLikeRepository(db *gorm.DB) LikeRepository {
	return &postgresLikeRepository{db: db}
}

func (r *postgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

func (r *postgresLikeRepository) DeleteLike(postID string, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like not found")
	}
	return nil
}

func (r *postgresLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

func (r *postgresLikeRepository) GetLikesCountByPostID(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
