// internal/repository/mongo/workout_repo.go
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

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Date.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires userId and date")
	}
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = time.Now().UTC()
	workout.UpdatedAt = nil
	if workout.Items == nil {
		workout.Items = []domain.WorkoutItem{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *mongoWorkoutRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoWorkoutRepository) ListByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"userId": userID, "date": bson.M{"$gte": since}})
}

// Latest returns the most recently dated workout of the user.
func (r *mongoWorkoutRepository) Latest(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, findOptions).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// Replace overwrites the editable fields. Owner and creation time never change.
func (r *mongoWorkoutRepository) Replace(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID || workout.UserID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for update")
	}
	now := time.Now().UTC()
	items := workout.Items
	if items == nil {
		items = []domain.WorkoutItem{}
	}

	set := bson.M{
		"date":      workout.Date,
		"items":     items,
		"updatedAt": now,
	}
	update := bson.M{"$set": set}
	if workout.Notes != nil {
		set["notes"] = *workout.Notes
	} else {
		update["$unset"] = bson.M{"notes": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID, "userId": workout.UserID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = &now
	return nil
}

// Delete removes a workout, ensuring it belongs to the specified user.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutRepository) CountReferencing(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error) {
	return r.collection.CountDocuments(ctx, referencingFilter(userID, ref))
}

// PullExercise strips matching items in one round trip.
func (r *mongoWorkoutRepository) PullExercise(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error) {
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"exercise.kind": ref.Kind, "exercise.id": ref.ID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateMany(ctx, referencingFilter(userID, ref), update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func referencingFilter(userID primitive.ObjectID, ref domain.ExerciseRef) bson.M {
	return bson.M{
		"userId": userID,
		"items": bson.M{"$elemMatch": bson.M{
			"exercise.kind": ref.Kind,
			"exercise.id":   ref.ID,
		}},
	}
}

func workoutIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Listing and clone-latest
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("by_user_and_date"),
		},
		{
			// Usage counts and cascade deletes
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "items.exercise.kind", Value: 1}, {Key: "items.exercise.id", Value: 1}},
			Options: options.Index().SetName("by_user_and_item_exercise"),
		},
	}
}
