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

// mongoUserRepository implements repository.UserRepository
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new user repository instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// UpsertByProvider finds the user by provider identity, creating it on first sign-in.
func (r *mongoUserRepository) UpsertByProvider(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Provider == "" || user.ProviderSubject == "" {
		return nil, errors.New("provider and provider subject are required")
	}

	now := time.Now().UTC()
	filter := bson.M{"provider": user.Provider, "providerSubject": user.ProviderSubject}
	update := bson.M{
		"$set": bson.M{
			"name":       user.Name,
			"email":      user.Email,
			"pictureUrl": user.PictureURL,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByID finds a user by their unique ID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "providerSubject", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_provider_identity"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("by_email"),
		},
	}
}
