package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/catalog"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository/memory"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func exerciseNames(exs []domain.Exercise) []string {
	out := make([]string, len(exs))
	for i, ex := range exs {
		out[i] = ex.Name
	}
	return out
}

func TestExerciseService_SeedLogsOnce(t *testing.T) {
	hook := logtest.NewGlobal()
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	store := memory.NewStore()
	svc := NewExerciseService(store.GlobalExercises(), store.UserExercises(), store.Workouts(),
		cache.NewExerciseCache(1, time.Minute, nil), nil)
	ctx := context.Background()

	seededLines := func() int {
		n := 0
		for _, entry := range hook.AllEntries() {
			if strings.HasPrefix(entry.Message, "seeded ") {
				n++
			}
		}
		return n
	}

	n, err := svc.SeedGlobalExercises(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.Presets()), n)
	assert.Equal(t, 1, seededLines())

	_, err = svc.SeedGlobalExercises(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, seededLines())
}

func TestExerciseService_SeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.exercises.SeedGlobalExercises(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := env.store.GlobalExercises().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(catalog.Presets())), count)
}

func TestExerciseService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	env.customExercise(t, alice, "Barbell Bench Press", domain.MuscleChest)
	env.customExercise(t, alice, "Banded Press", domain.MuscleShoulders)
	env.customExercise(t, bob, "Bob's Press", domain.MuscleChest)

	t.Run("query matches both catalogs", func(t *testing.T) {
		got, err := env.exercises.SearchExercises(ctx, alice, "  bench  ")
		require.NoError(t, err)
		names := exerciseNames(got)
		assert.IsNonDecreasing(t, names)
		// same name from both catalogs is kept twice
		var benches int
		for _, ex := range got {
			if ex.Name == "Barbell Bench Press" {
				benches++
			}
		}
		assert.Equal(t, 2, benches)
		assert.NotContains(t, names, "Bob's Press")
	})

	t.Run("anonymous sees globals only", func(t *testing.T) {
		got, err := env.exercises.SearchExercises(ctx, primitive.NilObjectID, "press")
		require.NoError(t, err)
		for _, ex := range got {
			assert.Equal(t, domain.KindGlobal, ex.Kind())
		}
		assert.NotContains(t, exerciseNames(got), "Banded Press")
	})

	t.Run("empty query is capped and sorted", func(t *testing.T) {
		got, err := env.exercises.SearchExercises(ctx, alice, "")
		require.NoError(t, err)
		assert.Len(t, got, SearchLimit)
		assert.Contains(t, exerciseNames(got), "Banded Press")
		assert.Equal(t, "Ab Wheel Rollout", got[0].Name)
	})

	t.Run("regex characters are literal", func(t *testing.T) {
		got, err := env.exercises.SearchExercises(ctx, alice, ".*")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestExerciseService_GetAllExercises(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := primitive.NewObjectID()
	env.customExercise(t, alice, "zottman curl", domain.MuscleBiceps)

	all, err := env.exercises.GetAllExercises(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, all, len(catalog.Presets())+1)
	assert.Equal(t, "zottman curl", all[len(all)-1].Name)

	anon, err := env.exercises.GetAllExercises(ctx, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Len(t, anon, len(catalog.Presets()))
}

func TestExerciseService_CreateTrimsInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := primitive.NewObjectID()

	ex, err := env.exercises.CreateUserExercise(ctx, alice, ExerciseInput{
		Name:             "  Landmine Press ",
		PrimaryMuscle:    " Shoulders",
		SecondaryMuscles: []string{" Triceps ", "  ", "Upper Chest"},
		Notes:            strPtr("   "),
		Aliases:          []string{" ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Landmine Press", ex.Name)
	assert.Equal(t, domain.MuscleShoulders, ex.PrimaryMuscle)
	assert.Equal(t, []string{domain.MuscleTriceps, domain.MuscleUpperChest}, ex.SecondaryMuscles)
	assert.Nil(t, ex.Notes)
	assert.Nil(t, ex.Aliases)

	_, err = env.exercises.CreateUserExercise(ctx, alice, ExerciseInput{Name: "   ", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.exercises.CreateUserExercise(ctx, alice, ExerciseInput{Name: "Dip", PrimaryMuscle: " "})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.exercises.CreateUserExercise(ctx, primitive.NilObjectID, ExerciseInput{Name: "Dip", PrimaryMuscle: "Chest"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestExerciseService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	ex := env.customExercise(t, alice, gofakeit.Word(), domain.MuscleQuads)

	_, err := env.exercises.GetUserExercise(ctx, bob, ex.ID)
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)
	_, err = env.exercises.UpdateUserExercise(ctx, bob, ex.ID, ExerciseInput{Name: "x", PrimaryMuscle: "y"})
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)
	assert.ErrorIs(t, env.exercises.DeleteUserExercise(ctx, bob, ex.ID), ErrExerciseAccessDenied)
	_, err = env.exercises.CheckExerciseUsage(ctx, bob, ex.ID)
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)

	_, err = env.exercises.GetUserExercise(ctx, alice, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	got, err := env.exercises.GetUserExercise(ctx, alice, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, ex.Name, got.Name)
}

func TestExerciseService_UpdateEvictsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := primitive.NewObjectID()
	ex := env.customExercise(t, alice, "Sissy Squat", domain.MuscleQuads)

	resolved, err := env.exercises.Resolve(ctx, alice, []domain.ExerciseRef{ex.Ref()})
	require.NoError(t, err)
	assert.Equal(t, "Sissy Squat", resolved[ex.Ref()].Name)

	_, err = env.exercises.UpdateUserExercise(ctx, alice, ex.ID, ExerciseInput{
		Name:          "Sissy Squat (Assisted)",
		PrimaryMuscle: domain.MuscleQuads,
		Notes:         strPtr(" hold the rack "),
	})
	require.NoError(t, err)

	resolved, err = env.exercises.Resolve(ctx, alice, []domain.ExerciseRef{ex.Ref()})
	require.NoError(t, err)
	assert.Equal(t, "Sissy Squat (Assisted)", resolved[ex.Ref()].Name)

	stored, err := env.exercises.GetUserExercise(ctx, alice, ex.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "hold the rack", *stored.Notes)
}

func TestExerciseService_ResolveHidesOtherUsersExercises(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	ex := env.customExercise(t, alice, "Secret Lift", domain.MuscleBack)
	squat := env.globalByName(t, "Barbell Back Squat")

	refs := []domain.ExerciseRef{ex.Ref(), squat, domain.UserRef(primitive.NewObjectID())}
	resolved, err := env.exercises.Resolve(ctx, bob, refs)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "Barbell Back Squat", resolved[squat].Name)

	// owner lookup after a foreign miss still works
	resolved, err = env.exercises.Resolve(ctx, alice, refs)
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	_, err = env.exercises.Resolve(ctx, alice, []domain.ExerciseRef{{Kind: "bogus", ID: primitive.NewObjectID()}})
	assert.ErrorIs(t, err, domain.ErrUnknownExerciseKind)
}

func TestExerciseService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	custom := env.customExercise(t, alice, "Cable Crunch Variation", domain.MuscleAbs)
	squat := env.globalByName(t, "Barbell Back Squat")

	withBoth := domain.WorkoutDraft{Items: []domain.WorkoutItem{
		{Exercise: custom.Ref(), Sets: sets(2, 30)},
		{Exercise: squat, Sets: sets(3, 100)},
		{Exercise: custom.Ref(), Sets: sets(1, 35)},
	}}
	w1, err := env.workouts.CreateWorkout(ctx, alice, withBoth)
	require.NoError(t, err)
	w2, err := env.workouts.CreateWorkout(ctx, alice, domain.WorkoutDraft{Items: []domain.WorkoutItem{
		{Exercise: custom.Ref(), Sets: sets(4, 20)},
	}})
	require.NoError(t, err)
	untouched, err := env.workouts.CreateWorkout(ctx, alice, domain.WorkoutDraft{Items: []domain.WorkoutItem{
		{Exercise: squat, Sets: sets(5, 90)},
	}})
	require.NoError(t, err)
	// bob's workout cannot be touched by alice's delete even with the same ref
	bobs, err := env.workouts.CreateWorkout(ctx, bob, domain.WorkoutDraft{Items: []domain.WorkoutItem{
		{Exercise: custom.Ref(), Sets: sets(1, 10)},
	}})
	require.NoError(t, err)

	usage, err := env.exercises.CheckExerciseUsage(ctx, alice, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, ExerciseUsage{IsUsed: true, WorkoutCount: 2}, usage)

	require.NoError(t, env.exercises.DeleteUserExercise(ctx, alice, custom.ID))

	got, err := env.workouts.GetWorkout(ctx, alice, w1.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, squat, got.Items[0].Exercise)

	got, err = env.workouts.GetWorkout(ctx, alice, w2.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	got, err = env.workouts.GetWorkout(ctx, alice, untouched.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Nil(t, got.UpdatedAt)

	got, err = env.workouts.GetWorkout(ctx, bob, bobs.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = env.exercises.GetUserExercise(ctx, alice, custom.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CounterCascadeRemovedItems))
}
