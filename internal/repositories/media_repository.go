package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// MediaRepository is the media-id -> {url, kind} lookup stories resolve
// their items through.
type MediaRepository interface {
	CreateMedia(media *models.Media) error
	GetByIDs(ids []string) ([]models.Media, error)
}

type postgresMediaRepository struct {
	db *gorm.DB
}

// NewPostgresMediaRepository creates a new MediaRepository backed by PostgreSQL
func NewPostgresMediaRepository(db *gorm.DB) MediaRepository {
	return &postgresMediaRepository{db: db}
}

func (r *postgresMediaRepository) CreateMedia(media *models.Media) error {
	media.ID = uuid.NewString()
	media.CreatedAt = time.Now()
	return r.db.Create(media).Error
}

func (r *postgresMediaRepository) GetByIDs(ids []string) ([]models.Media, error) {
	var media []models.Media
	if len(ids) == 0 {
		return media, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&media).Error
	return media, err
}
