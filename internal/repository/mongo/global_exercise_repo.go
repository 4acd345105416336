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

type mongoGlobalExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoGlobalExerciseRepository creates the shared catalog repository backed by MongoDB.
func NewMongoGlobalExerciseRepository(db *mongo.Database) repository.GlobalExerciseRepository {
	return &mongoGlobalExerciseRepository{
		collection: db.Collection(globalExerciseCollectionName),
	}
}

func (r *mongoGlobalExerciseRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// InsertMany stores a batch of catalog entries, assigning IDs and timestamps.
func (r *mongoGlobalExerciseRepository) InsertMany(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		ex := &exercises[i]
		if ex.Name == "" || ex.PrimaryMuscle == "" {
			return errors.New("global exercise name and primary muscle are required")
		}
		ex.ID = primitive.NewObjectID()
		ex.UserID = nil
		ex.CreatedAt = now
		ex.UpdatedAt = now
		if ex.SecondaryMuscles == nil {
			ex.SecondaryMuscles = []string{}
		}
		docs[i] = ex
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoGlobalExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
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

func (r *mongoGlobalExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return findExercises(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, 0)
}

func (r *mongoGlobalExerciseRepository) List(ctx context.Context, limit int64) ([]domain.Exercise, error) {
	return findExercises(ctx, r.collection, bson.M{}, limit)
}

func (r *mongoGlobalExerciseRepository) SearchByName(ctx context.Context, query string, limit int64) ([]domain.Exercise, error) {
	return findExercises(ctx, r.collection, bson.M{"name": nameContains(query)}, limit)
}

func globalExerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("by_name").SetCollation(nameCollation),
		},
	}
}
