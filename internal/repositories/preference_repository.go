package repositories

import (
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository defines the interface for notification preference rows
type PreferenceRepository interface {
	// GetOrCreate returns the user's preference row, lazily creating the
	// default-allow row on first read. At most one row per user.
	GetOrCreate(userID uint) (*models.NotificationPreference, error)
	// GetByUserIDs returns existing rows keyed by user id. Users with no row
	// are simply absent; callers treat absence as default-allow.
	GetByUserIDs(userIDs []uint) (map[uint]models.NotificationPreference, error)
	Update(pref *models.NotificationPreference) error
}

type postgresPreferenceRepository struct {
	db *gorm.DB
}

// NewPostgresPreferenceRepository creates a new PreferenceRepository backed by PostgreSQL
func NewPostgresPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &postgresPreferenceRepository{db: db}
}

func (r *postgresPreferenceRepository) GetOrCreate(userID uint) (*models.NotificationPreference, error) {
	pref := models.DefaultPreferences(userID)
	if err := r.db.Where(models.NotificationPreference{UserID: userID}).
		Attrs(pref).FirstOrCreate(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *postgresPreferenceRepository) GetByUserIDs(userIDs []uint) (map[uint]models.NotificationPreference, error) {
	result := make(map[uint]models.NotificationPreference)
	if len(userIDs) == 0 {
		return result, nil
	}
	var prefs []models.NotificationPreference
	if err := r.db.Where("user_id IN ?", userIDs).Find(&prefs).Error; err != nil {
		return nil, err
	}
	for _, p := range prefs {
		result[p.UserID] = p
	}
	return result, nil
}

func (r *postgresPreferenceRepository) Update(pref *models.NotificationPreference) error {
	return r.db.Save(pref).Error
}
