package service

import (
	"context"
	"testing"
	"time"

	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository/memory"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testEnv struct {
	store       *memory.Store
	metrics     *metrics.Manager
	exercises   ExerciseService
	workouts    WorkoutService
	preferences PreferencesService
	feedback    FeedbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	m := metrics.NewTestManager()
	exercises := NewExerciseService(
		store.GlobalExercises(),
		store.UserExercises(),
		store.Workouts(),
		cache.NewExerciseCache(1, time.Minute, m),
		m,
	)
	env := &testEnv{
		store:       store,
		metrics:     m,
		exercises:   exercises,
		workouts:    NewWorkoutService(store.Workouts(), store.Preferences(), exercises, m),
		preferences: NewPreferencesService(store.Preferences()),
		feedback:    NewFeedbackService(store.Feedback()),
	}
	_, err := exercises.SeedGlobalExercises(context.Background())
	require.NoError(t, err)
	return env
}

// globalByName finds a seeded exercise.
func (e *testEnv) globalByName(t *testing.T, name string) domain.ExerciseRef {
	t.Helper()
	all, err := e.exercises.GetAllExercises(context.Background(), primitive.NilObjectID)
	require.NoError(t, err)
	for _, ex := range all {
		if ex.Name == name {
			return ex.Ref()
		}
	}
	t.Fatalf("no global exercise named %q", name)
	return domain.ExerciseRef{}
}

func (e *testEnv) customExercise(t *testing.T, owner primitive.ObjectID, name, primary string, secondary ...string) *domain.Exercise {
	t.Helper()
	ex, err := e.exercises.CreateUserExercise(context.Background(), owner, ExerciseInput{
		Name:             name,
		PrimaryMuscle:    primary,
		SecondaryMuscles: secondary,
	})
	require.NoError(t, err)
	return ex
}

func sets(n int, weight float64) []domain.Set {
	out := make([]domain.Set, n)
	for i := range out {
		w := weight
		out[i] = domain.Set{Reps: gofakeit.Number(1, 12), Weight: &w}
	}
	return out
}

func strPtr(s string) *string { return &s }
