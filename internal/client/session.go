package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"liftlog/workout-app/internal/analytics"
	"liftlog/workout-app/internal/autosave"
	"liftlog/workout-app/internal/catalog"
	"liftlog/workout-app/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrItemIndex = errors.New("item index out of range")

// Session is one editing session of one workout. Every edit updates the
// local state at once and is saved in the background.
type Session struct {
	workoutID primitive.ObjectID
	ctrl      *autosave.Controller

	exercises []domain.Exercise
	resolver  analytics.MapResolver
	prefs     domain.UserPreferences
	table     *analytics.Table

	// serializes read-modify-write of the snapshot
	mu sync.Mutex
}

// OpenSession loads the workout, the caller's catalog and preferences.
// The session must be closed.
func OpenSession(ctx context.Context, c *Client, workoutID primitive.ObjectID, opts autosave.Options) (*Session, error) {
	workout, err := c.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load workout: %w", err)
	}
	exercises, err := c.GetAllExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	prefs, err := c.GetPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	resolver := make(analytics.MapResolver, len(exercises))
	for i := range exercises {
		resolver[exercises[i].Ref()] = exercises[i].Info()
	}

	log.WithFields(log.Fields{
		"workout_id": workoutID.Hex(),
		"exercises":  len(exercises),
	}).Debug("editing session opened")

	return &Session{
		workoutID: workoutID,
		ctrl:      autosave.NewController(workoutID, autosave.FromWorkout(workout), workout.LastModified(), c, opts),
		exercises: exercises,
		resolver:  resolver,
		prefs:     *prefs,
		table:     analytics.BroadGroups,
	}, nil
}

func (s *Session) WorkoutID() primitive.ObjectID { return s.workoutID }

func (s *Session) Preferences() domain.UserPreferences { return s.prefs }

// Snapshot returns a copy of the local state.
func (s *Session) Snapshot() autosave.Snapshot {
	return cloneSnapshot(s.ctrl.Current())
}

func (s *Session) SetNotes(notes string) {
	s.edit(func(snap *autosave.Snapshot) error {
		snap.Notes = &notes
		return nil
	})
}

// AddItem appends an item and returns its index. ref may be nil while the
// exercise is still being picked; such items are not saved.
func (s *Session) AddItem(ref *domain.ExerciseRef) int {
	var index int
	s.edit(func(snap *autosave.Snapshot) error {
		item := autosave.Item{Sets: []domain.Set{}}
		if ref != nil {
			r := *ref
			item.Exercise = &r
		}
		snap.Items = append(snap.Items, item)
		index = len(snap.Items) - 1
		return nil
	})
	return index
}

// UpdateItem applies fn to a copy of item i.
func (s *Session) UpdateItem(i int, fn func(item *autosave.Item)) error {
	return s.edit(func(snap *autosave.Snapshot) error {
		if i < 0 || i >= len(snap.Items) {
			return fmt.Errorf("%w: %d", ErrItemIndex, i)
		}
		fn(&snap.Items[i])
		return nil
	})
}

func (s *Session) RemoveItem(i int) error {
	return s.edit(func(snap *autosave.Snapshot) error {
		if i < 0 || i >= len(snap.Items) {
			return fmt.Errorf("%w: %d", ErrItemIndex, i)
		}
		snap.Items = append(snap.Items[:i], snap.Items[i+1:]...)
		return nil
	})
}

// Analytics tallies the local state against the cached catalog, so it
// reflects edits that are not saved yet.
func (s *Session) Analytics() []analytics.GroupTally {
	draft := s.ctrl.Current().Draft()
	return analytics.Compute(draft.Items, s.resolver, s.table, s.prefs.CountHalfSets)
}

// SearchCatalog searches the cached catalog without a round trip.
func (s *Session) SearchCatalog(query string) []domain.Exercise {
	return catalog.Search(s.exercises, query, catalog.DefaultLimit)
}

// ExerciseName resolves a reference for display.
func (s *Session) ExerciseName(ref domain.ExerciseRef) string {
	if info, ok := s.resolver.Resolve(ref); ok {
		return info.Name
	}
	return domain.PlaceholderExerciseName
}

func (s *Session) Status() autosave.Status { return s.ctrl.Status() }

func (s *Session) OnChange(fn func(autosave.Status)) { s.ctrl.OnChange(fn) }

// Retry saves the current local state now.
func (s *Session) Retry() { s.ctrl.Retry() }

// Wait blocks until no save is running or queued.
func (s *Session) Wait() { s.ctrl.Wait() }

// Close saves a pending edit and stops the session.
func (s *Session) Close() { s.ctrl.Close() }

func (s *Session) edit(fn func(snap *autosave.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := cloneSnapshot(s.ctrl.Current())
	if err := fn(&snap); err != nil {
		return err
	}
	s.ctrl.Edit(snap)
	return nil
}

func cloneSnapshot(src autosave.Snapshot) autosave.Snapshot {
	out := autosave.Snapshot{Date: src.Date, Notes: clonePtr(src.Notes), Items: make([]autosave.Item, len(src.Items))}
	for i, item := range src.Items {
		out.Items[i] = autosave.Item{
			Exercise: clonePtr(item.Exercise),
			Notes:    clonePtr(item.Notes),
			Sets:     domain.CloneSets(item.Sets),
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
