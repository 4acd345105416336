package repository

import (
	"context"
	"time"

	"liftlog/workout-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores accounts created on OAuth sign-in.
type UserRepository interface {
	// UpsertByProvider creates the user on first sign-in and refreshes name/email afterwards.
	UpsertByProvider(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// GlobalExerciseRepository is the shared, read-mostly exercise catalog.
type GlobalExerciseRepository interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, exercises []domain.Exercise) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	// List returns exercises in name order; limit <= 0 means no limit.
	List(ctx context.Context, limit int64) ([]domain.Exercise, error)
	// SearchByName matches names containing query, case-insensitively.
	SearchByName(ctx context.Context, query string, limit int64) ([]domain.Exercise, error)
}

// UserExerciseRepository stores custom exercises. Every method is scoped to an owner.
type UserExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	// GetByID returns the exercise regardless of owner; callers check ownership.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Exercise, error)
	SearchByName(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// WorkoutRepository stores workout documents.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	// GetByID returns the workout regardless of owner; callers check ownership.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// ListByUser returns the user's workouts, newest date first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	// ListByUserSince returns workouts dated at or after since, newest date first.
	ListByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error)
	// Latest returns the user's workout with the most recent date.
	Latest(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error)
	// Replace overwrites date, notes and items of a workout owned by workout.UserID.
	Replace(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	// CountReferencing counts the user's workouts with at least one item pointing at ref.
	CountReferencing(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error)
	// PullExercise removes every item pointing at ref from the user's workouts
	// and reports how many workouts changed.
	PullExercise(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error)
}

// PreferencesRepository stores one preferences document per user.
type PreferencesRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.UserPreferences, error)
	Upsert(ctx context.Context, prefs *domain.UserPreferences) error
}

// FeedbackRepository is append-only.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error)
}
