package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func weight(w float64) *float64 { return &w }

func TestExerciseRef_Validate(t *testing.T) {
	id := primitive.NewObjectID()

	assert.NoError(t, GlobalRef(id).Validate())
	assert.NoError(t, UserRef(id).Validate())
	assert.ErrorIs(t, ExerciseRef{Kind: "preset", ID: id}.Validate(), ErrUnknownExerciseKind)
	assert.Error(t, GlobalRef(primitive.NilObjectID).Validate())
	assert.Error(t, ExerciseRef{}.Validate())

	assert.Equal(t, "user:"+id.Hex(), UserRef(id).Key())
	assert.NotEqual(t, GlobalRef(id), UserRef(id), "same id in different catalogs")
}

func TestExercise_Kind(t *testing.T) {
	owner := primitive.NewObjectID()
	global := Exercise{ID: primitive.NewObjectID(), Name: "Plank"}
	custom := Exercise{ID: primitive.NewObjectID(), UserID: &owner, Name: "Plank"}

	assert.Equal(t, KindGlobal, global.Kind())
	assert.Equal(t, KindUser, custom.Kind())
	assert.Equal(t, UserRef(custom.ID), custom.Ref())
}

func TestTopSet(t *testing.T) {
	tests := []struct {
		name   string
		sets   []Set
		want   Set
		wantOK bool
	}{
		{name: "empty", sets: nil, wantOK: false},
		{
			name:   "heaviest wins",
			sets:   []Set{{Reps: 10, Weight: weight(60)}, {Reps: 3, Weight: weight(90)}, {Reps: 5, Weight: weight(80)}},
			want:   Set{Reps: 3, Weight: weight(90)},
			wantOK: true,
		},
		{
			name:   "ties keep the first",
			sets:   []Set{{Reps: 8, Weight: weight(50)}, {Reps: 12, Weight: weight(50)}},
			want:   Set{Reps: 8, Weight: weight(50)},
			wantOK: true,
		},
		{
			name:   "bodyweight counts as zero",
			sets:   []Set{{Reps: 15}, {Reps: 5, Weight: weight(10)}},
			want:   Set{Reps: 5, Weight: weight(10)},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TopSet(tt.sets)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateItems(t *testing.T) {
	ref := GlobalRef(primitive.NewObjectID())

	assert.NoError(t, ValidateItems(nil))
	assert.NoError(t, ValidateItems([]WorkoutItem{{Exercise: ref, Sets: []Set{{Reps: 1}, {Reps: 5, Weight: weight(0)}}}}))
	assert.NoError(t, ValidateItems([]WorkoutItem{{Exercise: ref}}), "an item may have no sets yet")

	assert.ErrorIs(t, ValidateItems([]WorkoutItem{{Exercise: ref, Sets: []Set{{Reps: 0}}}}), ErrInvalidSet)
	assert.ErrorIs(t, ValidateItems([]WorkoutItem{{Exercise: ref, Sets: []Set{{Reps: 3, Weight: weight(-5)}}}}), ErrInvalidSet)
	assert.ErrorIs(t, ValidateItems([]WorkoutItem{{Exercise: ExerciseRef{Kind: "x", ID: ref.ID}}}), ErrUnknownExerciseKind)
}

func TestWorkout_DraftDoesNotAlias(t *testing.T) {
	notes := "legs"
	itemNotes := "slow eccentric"
	ref := GlobalRef(primitive.NewObjectID())
	w := &Workout{
		Notes: &notes,
		Items: []WorkoutItem{{Exercise: ref, Notes: &itemNotes, Sets: []Set{{Reps: 5, Weight: weight(100)}}}},
	}

	draft := w.Draft()
	*draft.Notes = "changed"
	*draft.Items[0].Notes = "changed"
	*draft.Items[0].Sets[0].Weight = 1
	draft.Items[0].Sets = append(draft.Items[0].Sets, Set{Reps: 1})

	assert.Equal(t, "legs", *w.Notes)
	assert.Equal(t, "slow eccentric", *w.Items[0].Notes)
	require.Len(t, w.Items[0].Sets, 1)
	assert.Equal(t, 100.0, *w.Items[0].Sets[0].Weight)
}

func TestWorkout_WithoutExercise(t *testing.T) {
	keep := GlobalRef(primitive.NewObjectID())
	drop := UserRef(primitive.NewObjectID())
	w := &Workout{Items: []WorkoutItem{{Exercise: drop}, {Exercise: keep}, {Exercise: drop}}}

	assert.True(t, w.References(drop))
	items, removed := w.WithoutExercise(drop)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []WorkoutItem{{Exercise: keep}}, items)
	assert.False(t, (&Workout{Items: items}).References(drop))
}

func TestPreferences_Apply(t *testing.T) {
	userID := primitive.NewObjectID()
	defaults := DefaultPreferences(userID)
	assert.Equal(t, UnitLbs, defaults.WeightUnit)
	assert.True(t, defaults.CountHalfSets)
	assert.False(t, defaults.CollapseMuscleGroups)

	kg := UnitKg
	off := false
	got := defaults.Apply(PreferencesPatch{WeightUnit: &kg, CountHalfSets: &off})
	assert.Equal(t, UnitKg, got.WeightUnit)
	assert.False(t, got.CountHalfSets)
	assert.False(t, got.CollapseMuscleGroups)
	assert.Equal(t, userID, got.UserID)

	assert.Equal(t, defaults, defaults.Apply(PreferencesPatch{}))
	assert.False(t, WeightUnit("stone").Valid())
}
