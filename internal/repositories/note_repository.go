package repositories

import (
	"time"

	"github.com/tahmidr/glowfeed/backend/internal/models"
	"gorm.io/gorm"
)

// NoteRepository defines the interface for single-slot note operations
type NoteRepository interface {
	// SetNote replaces the owner's live note: any non-expired note is deleted
	// and the new one inserted inside one transaction, so two concurrent
	// creations by the same owner cannot both survive.
	SetNote(note *models.Note) error
	DeleteNote(userID uint) error
	// GetVisibleNotes returns non-expired notes of the given owners, newest
	// first. Expiry is a query-time filter, independent of the sweep.
	GetVisibleNotes(ownerIDs []uint) ([]models.Note, error)
	DeleteExpired() (int64, error)
}

type postgresNoteRepository struct {
	db *gorm.DB
}

// NewPostgresNoteRepository creates a new NoteRepository backed by PostgreSQL
func NewPostgresNoteRepository(db *gorm.DB) NoteRepository {
	return &postgresNoteRepository{db: db}
}

func (r *postgresNoteRepository) SetNote(note *models.Note) error {
	note.CreatedAt = time.Now()
	note.ExpiresAt = note.CreatedAt.Add(24 * time.Hour)
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at > ?", note.UserID, time.Now()).
			Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Create(note).Error
	})
}

func (r *postgresNoteRepository) DeleteNote(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Note{}).Error
}

func (r *postgresNoteRepository) GetVisibleNotes(ownerIDs []uint) ([]models.Note, error) {
	var notes []models.Note
	if len(ownerIDs) == 0 {
		return notes, nil
	}
	err := r.db.Where("user_id IN ? AND expires_at > ?", ownerIDs, time.Now()).
		Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func (r *postgresNoteRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&models.Note{})
	return res.RowsAffected, res.Error
}
