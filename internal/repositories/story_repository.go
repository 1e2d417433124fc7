package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/tahmidr/glowfeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryRepository defines the interface for story operations. Containers live
// in MongoDB (one document per story, items embedded so creation is a single
// atomic insert); view tracking lives in PostgreSQL.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	// GetVisibleStories returns non-expired stories owned by the given users,
	// newest first. Expiry is a query-time filter, independent of the sweep.
	GetVisibleStories(ctx context.Context, ownerIDs []uint) ([]models.Story, error)
	DeleteStory(ctx context.Context, id string) error
	// DeleteExpired removes containers past their expiry plus any container
	// with zero items, cascading their view rows. Returns the count removed.
	DeleteExpired(ctx context.Context) (int64, error)
	MarkViewed(view *models.StoryView) error
	GetViewers(storyID string) ([]models.StoryView, error)
}

type storyRepository struct {
	collection *mongo.Collection
	pgDB       *gorm.DB
}

// NewStoryRepository creates a new StoryRepository over MongoDB and PostgreSQL
func NewStoryRepository(mongoDB *mongo.Database, pgDB *gorm.DB) StoryRepository {
	return &storyRepository{
		collection: mongoDB.Collection("stories"),
		pgDB:       pgDB,
	}
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid story ID format")
	}
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) GetVisibleStories(ctx context.Context, ownerIDs []uint) ([]models.Story, error) {
	filter := bson.M{
		"owner_id":   bson.M{"$in": ownerIDs},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) DeleteStory(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid story ID format")
	}
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		return err
	}
	return r.pgDB.Where("story_id = ?", id).Delete(&models.StoryView{}).Error
}

func (r *storyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$lte": time.Now()}},
		bson.M{"items": bson.M{"$size": 0}},
	}}

	// Collect ids first so the view rows can be cascaded.
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, len(docs))
	hexIDs := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		hexIDs[i] = d.ID.Hex()
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	if err := r.pgDB.Where("story_id IN ?", hexIDs).Delete(&models.StoryView{}).Error; err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

// MarkViewed upserts a view record; re-viewing is a no-op.
func (r *storyRepository) MarkViewed(view *models.StoryView) error {
	view.ViewedAt = time.Now()
	return r.pgDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "story_id"}, {Name: "viewer_id"}},
		DoNothing: true,
	}).Create(view).Error
}

func (r *storyRepository) GetViewers(storyID string) ([]models.StoryView, error) {
	var views []models.StoryView
	err := r.pgDB.Where("story_id = ?", storyID).Order("viewed_at DESC").Find(&views).Error
	return views, err
}
