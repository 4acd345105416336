package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoUserExerciseRepository implements repository.UserExerciseRepository
type mongoUserExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoUserExerciseRepository creates a custom-exercise repository backed by MongoDB.
func NewMongoUserExerciseRepository(db *mongo.Database) repository.UserExerciseRepository {
	return &mongoUserExerciseRepository{
		collection: db.Collection(userExerciseCollectionName),
	}
}

// Create inserts a new user exercise into the database.
func (r *mongoUserExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.PrimaryMuscle == "" || exercise.UserID == nil {
		return primitive.NilObjectID, errors.New("exercise name, primary muscle and user ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	if exercise.SecondaryMuscles == nil {
		exercise.SecondaryMuscles = []string{}
	}

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoUserExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoUserExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return findExercises(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, 0)
}

// ListByUser retrieves the user's exercises in name order.
func (r *mongoUserExerciseRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Exercise, error) {
	return findExercises(ctx, r.collection, bson.M{"userId": userID}, limit)
}

func (r *mongoUserExerciseRepository) SearchByName(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]domain.Exercise, error) {
	filter := bson.M{
		"userId": userID,
		"name":   nameContains(query),
	}
	return findExercises(ctx, r.collection, filter, limit)
}

// Update modifies an existing exercise. The owner is part of the filter and is never changed.
func (r *mongoUserExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID || exercise.UserID == nil {
		return errors.New("exercise ID and user ID are required for update")
	}
	if exercise.Name == "" || exercise.PrimaryMuscle == "" {
		return errors.New("exercise name and primary muscle cannot be empty")
	}

	filter := bson.M{"_id": exercise.ID, "userId": *exercise.UserID}
	set := bson.M{
		"name":             exercise.Name,
		"primaryMuscle":    exercise.PrimaryMuscle,
		"secondaryMuscles": exercise.SecondaryMuscles,
		"aliases":          exercise.Aliases,
		"updatedAt":        time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if exercise.Notes != nil {
		set["notes"] = *exercise.Notes
	} else {
		update["$unset"] = bson.M{"notes": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise, ensuring it belongs to the specified user.
func (r *mongoUserExerciseRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	// Not found and not owned both miss the filter; the service tells them apart when it needs to.
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func userExerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("by_user_and_name").SetCollation(nameCollation),
		},
	}
}

// nameContains builds a case-insensitive substring match; the query is matched literally.
func nameContains(query string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
}

func findExercises(ctx context.Context, collection *mongo.Collection, filter bson.M, limit int64) ([]domain.Exercise, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(nameCollation)
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
