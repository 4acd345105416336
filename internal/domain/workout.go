package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Set is one reps/weight entry. It has no identity beyond its position.
type Set struct {
	Reps   int      `bson:"reps" json:"reps"`
	Weight *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
}

// WeightOrZero treats a missing weight as zero, e.g. for bodyweight sets.
func (s Set) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// WorkoutItem is one exercise entry embedded in a workout.
type WorkoutItem struct {
	Exercise ExerciseRef `bson:"exercise" json:"exercise"`
	Notes    *string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Sets     []Set       `bson:"sets" json:"sets"`
}

// Workout is the root aggregate: a dated, owned list of items.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"` // Immutable after creation
	Date      time.Time          `bson:"date" json:"date"`     // Logical workout date, not creation time
	Notes     *string            `bson:"notes,omitempty" json:"notes,omitempty"`
	Items     []WorkoutItem      `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// LastModified is the last persisted change, falling back to creation time.
func (w *Workout) LastModified() time.Time {
	if w.UpdatedAt != nil {
		return *w.UpdatedAt
	}
	return w.CreatedAt
}

// References reports whether any item points at ref.
func (w *Workout) References(ref ExerciseRef) bool {
	for _, item := range w.Items {
		if item.Exercise == ref {
			return true
		}
	}
	return false
}

// WithoutExercise returns the items that do not reference ref, and how many were dropped.
func (w *Workout) WithoutExercise(ref ExerciseRef) ([]WorkoutItem, int) {
	kept := make([]WorkoutItem, 0, len(w.Items))
	for _, item := range w.Items {
		if item.Exercise == ref {
			continue
		}
		kept = append(kept, item)
	}
	return kept, len(w.Items) - len(kept)
}

var ErrInvalidSet = errors.New("invalid set")

// ValidateItems performs the shape checks applied before persisting items.
func ValidateItems(items []WorkoutItem) error {
	for i, item := range items {
		if err := item.Exercise.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		for j, set := range item.Sets {
			if set.Reps < 1 {
				return fmt.Errorf("%w: item %d set %d: reps must be positive", ErrInvalidSet, i, j)
			}
			if set.Weight != nil && *set.Weight < 0 {
				return fmt.Errorf("%w: item %d set %d: weight must not be negative", ErrInvalidSet, i, j)
			}
		}
	}
	return nil
}

// CloneItems deep-copies items so the copy shares no slices or pointers.
func CloneItems(items []WorkoutItem) []WorkoutItem {
	out := make([]WorkoutItem, len(items))
	for i, item := range items {
		out[i] = WorkoutItem{
			Exercise: item.Exercise,
			Notes:    cloneString(item.Notes),
			Sets:     CloneSets(item.Sets),
		}
	}
	return out
}

// CloneSets deep-copies sets. The result is never nil.
func CloneSets(sets []Set) []Set {
	out := make([]Set, len(sets))
	for i, set := range sets {
		out[i] = Set{Reps: set.Reps}
		if set.Weight != nil {
			w := *set.Weight
			out[i].Weight = &w
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// TopSet returns the heaviest set of an item; ties keep the earliest set.
func TopSet(sets []Set) (Set, bool) {
	if len(sets) == 0 {
		return Set{}, false
	}
	best := sets[0]
	for _, s := range sets[1:] {
		if s.WeightOrZero() > best.WeightOrZero() {
			best = s
		}
	}
	return best, true
}

// WorkoutDraft is the editable part of a workout: what create and full
// replace operations carry.
type WorkoutDraft struct {
	Date  time.Time     `json:"date"`
	Notes *string       `json:"notes,omitempty"`
	Items []WorkoutItem `json:"items"`
}

// Draft extracts the editable fields of w.
func (w *Workout) Draft() WorkoutDraft {
	return WorkoutDraft{
		Date:  w.Date,
		Notes: cloneString(w.Notes),
		Items: CloneItems(w.Items),
	}
}
