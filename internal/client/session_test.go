package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"liftlog/workout-app/internal/autosave"
	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastSave() autosave.Options {
	return autosave.Options{Delay: 10 * time.Millisecond, Timeout: 5 * time.Second}
}

func TestSession_EditsAreSaved(t *testing.T) {
	backend := newTestBackend(t)
	c, _ := backend.newClient(t)
	ctx := context.Background()

	id, err := c.CreateWorkout(ctx, domain.WorkoutDraft{})
	require.NoError(t, err)

	s, err := OpenSession(ctx, c, id, fastSave())
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, autosave.StateSynced, s.Status().State)

	hits := s.SearchCatalog("bench")
	require.NotEmpty(t, hits)
	var bench domain.ExerciseRef
	for _, ex := range hits {
		if ex.Name == "Barbell Bench Press" {
			bench = ex.Ref()
		}
	}
	require.False(t, bench.ID.IsZero())

	weight := 100.0
	i := s.AddItem(&bench)
	require.NoError(t, s.UpdateItem(i, func(item *autosave.Item) {
		item.Sets = append(item.Sets,
			domain.Set{Reps: 5, Weight: &weight},
			domain.Set{Reps: 5, Weight: &weight},
		)
	}))
	s.SetNotes("  heavy day  ")
	// an item without an exercise stays local
	s.AddItem(nil)

	local := s.Analytics()
	require.NotEmpty(t, local)
	assert.Equal(t, "Chest", local[0].Name)
	assert.Equal(t, 2.0, local[0].Sets)

	require.Eventually(t, func() bool {
		w, err := c.GetWorkout(ctx, id)
		return err == nil && len(w.Items) == 1 && len(w.Items[0].Sets) == 2 && w.Notes != nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Wait()

	status := s.Status()
	assert.Equal(t, autosave.StateSynced, status.State)
	assert.NoError(t, status.Err)

	w, err := c.GetWorkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "heavy day", *w.Notes)

	remote, err := c.GetWorkoutAnalytics(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, local, remote)

	assert.Len(t, s.Snapshot().Items, 2)
	assert.Equal(t, "Barbell Bench Press", s.ExerciseName(bench))
}

func TestSession_RemoveItemAndClose(t *testing.T) {
	backend := newTestBackend(t)
	c, _ := backend.newClient(t)
	ctx := context.Background()

	exercises, err := c.GetAllExercises(ctx)
	require.NoError(t, err)
	squat := findRef(t, exercises, "Barbell Back Squat")

	id, err := c.CreateWorkout(ctx, domain.WorkoutDraft{
		Items: []domain.WorkoutItem{{Exercise: squat, Sets: []domain.Set{{Reps: 5}}}},
	})
	require.NoError(t, err)

	// a long debounce window shows that Close flushes the pending edit
	s, err := OpenSession(ctx, c, id, autosave.Options{Delay: time.Hour})
	require.NoError(t, err)

	assert.ErrorIs(t, s.RemoveItem(3), ErrItemIndex)
	assert.ErrorIs(t, s.UpdateItem(-1, func(*autosave.Item) {}), ErrItemIndex)
	require.NoError(t, s.RemoveItem(0))
	assert.Empty(t, s.Analytics())
	s.Close()

	w, err := c.GetWorkout(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, w.Items)
}

func TestSession_FailureKeepsLocalState(t *testing.T) {
	backend := newTestBackend(t)
	c, userID := backend.newClient(t)
	ctx := context.Background()

	id, err := c.CreateWorkout(ctx, domain.WorkoutDraft{})
	require.NoError(t, err)

	s, err := OpenSession(ctx, c, id, fastSave())
	require.NoError(t, err)
	defer s.Close()

	var mu sync.Mutex
	var states []autosave.State
	s.OnChange(func(st autosave.Status) {
		mu.Lock()
		states = append(states, st.State)
		mu.Unlock()
	})

	// the workout disappears underneath the session
	require.NoError(t, backend.workouts.DeleteWorkout(ctx, userID, id))

	s.SetNotes("unsaved")
	require.Eventually(t, func() bool {
		return s.Status().State == autosave.StateError
	}, 2*time.Second, 10*time.Millisecond)
	s.Wait()

	status := s.Status()
	assert.True(t, IsNotFound(status.Err))
	assert.Equal(t, "unsaved", *s.Snapshot().Notes)

	s.Retry()
	s.Wait()
	assert.Equal(t, autosave.StateError, s.Status().State)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []autosave.State{
		autosave.StateSyncing, autosave.StateError,
		autosave.StateSyncing, autosave.StateError,
	}, states)
}
