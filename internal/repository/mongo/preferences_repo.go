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

type mongoPreferencesRepository struct {
	collection *mongo.Collection
}

func NewMongoPreferencesRepository(db *mongo.Database) repository.PreferencesRepository {
	return &mongoPreferencesRepository{
		collection: db.Collection(preferencesCollectionName),
	}
}

// GetByUser returns ErrNotFound when the user never saved preferences.
func (r *mongoPreferencesRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&prefs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &prefs, nil
}

// Upsert writes the full preferences document of prefs.UserID.
func (r *mongoPreferencesRepository) Upsert(ctx context.Context, prefs *domain.UserPreferences) error {
	if prefs.UserID == primitive.NilObjectID {
		return errors.New("preferences require a user ID")
	}
	prefs.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"weightUnit":           prefs.WeightUnit,
			"countHalfSets":        prefs.CountHalfSets,
			"collapseMuscleGroups": prefs.CollapseMuscleGroups,
			"updatedAt":            prefs.UpdatedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"userId": prefs.UserID}, update, options.Update().SetUpsert(true))
	return err
}

func preferencesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_user"),
		},
	}
}
