package autosave

import (
	"strings"
	"time"

	"liftlog/workout-app/internal/domain"
)

// Item is an item as edited locally. Exercise is nil until the user picks one.
type Item struct {
	Exercise *domain.ExerciseRef
	Notes    *string
	Sets     []domain.Set
}

// Snapshot is the local editing state of one workout.
type Snapshot struct {
	Date  time.Time
	Notes *string
	Items []Item
}

// FromWorkout builds the initial snapshot of an editing session.
func FromWorkout(w *domain.Workout) Snapshot {
	s := Snapshot{Date: w.Date, Notes: trimmed(w.Notes)}
	for _, item := range domain.CloneItems(w.Items) {
		ref := item.Exercise
		s.Items = append(s.Items, Item{Exercise: &ref, Notes: item.Notes, Sets: item.Sets})
	}
	return s
}

// Normalize trims workout and item notes, turning blank notes into absent
// ones, and drops items without a usable exercise reference. The result
// shares no memory with s and normalizing it again changes nothing.
func Normalize(s Snapshot) Snapshot {
	out := Snapshot{Date: s.Date, Notes: trimmed(s.Notes), Items: []Item{}}
	for _, item := range s.Items {
		if item.Exercise == nil || item.Exercise.Validate() != nil {
			continue
		}
		ref := *item.Exercise
		out.Items = append(out.Items, Item{
			Exercise: &ref,
			Notes:    trimmed(item.Notes),
			Sets:     domain.CloneSets(item.Sets),
		})
	}
	return out
}

// Draft normalizes s into the payload sent to the server.
func (s Snapshot) Draft() domain.WorkoutDraft {
	d := Normalize(s)
	draft := domain.WorkoutDraft{Date: d.Date, Notes: d.Notes, Items: make([]domain.WorkoutItem, 0, len(d.Items))}
	for _, item := range d.Items {
		draft.Items = append(draft.Items, domain.WorkoutItem{
			Exercise: *item.Exercise,
			Notes:    item.Notes,
			Sets:     item.Sets,
		})
	}
	return draft
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
