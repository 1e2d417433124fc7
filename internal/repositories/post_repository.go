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
)

// PostRepository defines the interface for post operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	// GetFeedPage returns up to limit posts authored by the given users,
	// newest first, starting at cursorID (inclusive) when set.
	GetFeedPage(ctx context.Context, authorIDs []uint, cursorID *string, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	IncrementLikesCount(ctx context.Context, id string) error
	DecrementLikesCount(ctx context.Context, id string) error
	IncrementCommentsCount(ctx context.Context, id string) error
	DecrementCommentsCount(ctx context.Context, id string) error
}

type mongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new PostRepository backed by MongoDB
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{collection: db.Collection("posts")}
}

func (r *mongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *mongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format")
	}
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *mongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) GetFeedPage(ctx context.Context, authorIDs []uint, cursorID *string, limit int) ([]models.Post, error) {
	filter := bson.M{"user_id": bson.M{"$in": authorIDs}}
	if cursorID != nil {
		objID, err := primitive.ObjectIDFromHex(*cursorID)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor format")
		}
		// The cursor row itself opens the next page, so the bound is inclusive.
		filter["_id"] = bson.M{"$lte": objID}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	return err
}

func (r *mongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format")
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func (r *mongoPostRepository) adjustCount(ctx context.Context, id, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format")
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

func (r *mongoPostRepository) IncrementLikesCount(ctx context.Context, id string) error {
	return r.adjustCount(ctx, id, "likes_count", 1)
}

func (r *mongoPostRepository) DecrementLikesCount(ctx context.Context, id string) error {
	return r.adjustCount(ctx, id, "likes_count", -1)
}

func (r *mongoPostRepository) IncrementCommentsCount(ctx context.Context, id string) error {
	return r.adjustCount(ctx, id, "comments_count", 1)
}

func (r *mongoPostRepository) DecrementCommentsCount(ctx context.Context, id string) error {
	return r.adjustCount(ctx, id, "comments_count", -1)
}
