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

// Index names created by config.EnsureMongoIndexes. The indexed listing
// queries hint at them so a missing index fails fast instead of scanning.
const (
	idxLatestFinalized = "latest_finalized"
	idxByUserCreated   = "by_user_created"
)

type InterviewRepository interface {
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)

	// FindLatestIndexed is the optimal listing query; it may fail with
	// ErrIndexUnavailable, in which case FindFinalized is the fallback fetch.
	FindLatestIndexed(ctx context.Context, excludeUserID string, limit int64) ([]models.Interview, error)
	FindFinalized(ctx context.Context, limit int64) ([]models.Interview, error)

	FindByUserIndexed(ctx context.Context, userID string) ([]models.Interview, error)
	FindByUser(ctx context.Context, userID string) ([]models.Interview, error)
}

type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) InterviewRepository {
	return &interviewRepo{col: db.Collection("interviews")}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, iv)
	return err
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) FindLatestIndexed(ctx context.Context, excludeUserID string, limit int64) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx,
		bson.M{
			"finalized": true,
			"user_id":   bson.M{"$ne": excludeUserID},
		},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit).
			SetHint(idxLatestFinalized),
	)
	if err != nil {
		return nil, classifyQueryErr(err)
	}
	return r.drain(ctx, cur)
}

func (r *interviewRepo) FindFinalized(ctx context.Context, limit int64) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"finalized": true},
		options.Find().SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	return r.drain(ctx, cur)
}

func (r *interviewRepo) FindByUserIndexed(ctx context.Context, userID string) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetHint(idxByUserCreated),
	)
	if err != nil {
		return nil, classifyQueryErr(err)
	}
	return r.drain(ctx, cur)
}

func (r *interviewRepo) FindByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return r.drain(ctx, cur)
}

func (r *interviewRepo) drain(ctx context.Context, cur *mongo.Cursor) ([]models.Interview, error) {
	defer cur.Close(ctx)

	var out []models.Interview
	if err := cur.All(ctx, &out); err != nil {
		return nil, classifyQueryErr(err)
	}
	return out, nil
}
