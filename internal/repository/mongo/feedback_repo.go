package mongo

import (
	"context"
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new Feedback repository.
func NewMongoFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(feedbackCollectionName),
	}
}

// Create stores a feedback entry.
func (r *mongoFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	if feedback.UserID == primitive.NilObjectID || feedback.Content == "" {
		return primitive.NilObjectID, errors.New("feedback requires userId and content")
	}
	feedback.ID = primitive.NewObjectID()
	feedback.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted feedback ID")
	}
	return insertedID, nil
}

func feedbackIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("by_user_and_created"),
		},
	}
}
