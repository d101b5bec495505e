package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	// Upsert overwrites the document with the given id, creating it if absent.
	Upsert(ctx context.Context, id string, fb *models.Feedback) error
	GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type feedbackRepo struct {
	col *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) FeedbackRepository {
	return &feedbackRepo{col: db.Collection("feedback")}
}

func (r *feedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, fb)
	return err
}

func (r *feedbackRepo) Upsert(ctx context.Context, id string, fb *models.Feedback) error {
	fb.ID = id
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": id},
		fb,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *feedbackRepo) GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var fb models.Feedback
	err := r.col.FindOne(ctx,
		bson.M{"interview_id": interviewID, "user_id": userID},
	).Decode(&fb)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
