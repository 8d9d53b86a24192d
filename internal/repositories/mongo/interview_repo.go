package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/interview/internal/models"
)

// InterviewRepo wraps the interviews collection
type InterviewRepo struct{ col *mongo.Collection }

// NewInterviewRepo opens the collection and ensures the per-user listing index
func NewInterviewRepo(ctx context.Context, c *Client, collection string) (*InterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = "interviews"
	}
	r := NewInterviewRepoFromCollection(db.Collection(collection))

	if _, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create interviews index: %w", err)
	}
	return r, nil
}

func NewInterviewRepoFromCollection(col *mongo.Collection) *InterviewRepo {
	return &InterviewRepo{col: col}
}

// Create inserts a new interview and fills in its id
func (r *InterviewRepo) Create(ctx context.Context, in *models.Interview) (*models.Interview, error) {
	res, err := r.col.InsertOne(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interview: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		in.ID = id
	}
	return in, nil
}

// GetByID retrieves an interview by its hex object id
func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInterviewNotFound
	}

	var out models.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrInterviewNotFound
		}
		return nil, err
	}
	return &out, nil
}

// ListByUser returns the user's interviews, newest first
func (r *InterviewRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
