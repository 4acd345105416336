package catalog

import (
	"sort"
	"strings"
	"testing"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func names(exs []domain.Exercise) []string {
	out := make([]string, len(exs))
	for i, ex := range exs {
		out[i] = ex.Name
	}
	return out
}

func TestGlobalExercises(t *testing.T) {
	exs := GlobalExercises()
	require.Len(t, exs, len(Presets()))

	seen := map[string]bool{}
	for _, ex := range exs {
		assert.NotEmpty(t, ex.Name)
		assert.NotEmpty(t, ex.PrimaryMuscle)
		assert.NotNil(t, ex.SecondaryMuscles)
		assert.Nil(t, ex.UserID)
		assert.False(t, seen[ex.Name], "duplicate preset %q", ex.Name)
		seen[ex.Name] = true
	}

	var squat domain.Exercise
	for _, ex := range exs {
		if ex.Name == "Barbell Back Squat" {
			squat = ex
		}
	}
	assert.Equal(t, []string{"Squat"}, squat.Aliases)
}

func TestSearch_EmptyQueryReturnsFirstPageByName(t *testing.T) {
	got := Search(GlobalExercises(), "   ", 0)
	require.Len(t, got, DefaultLimit)
	assert.Equal(t, "Ab Wheel Rollout", got[0].Name)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return strings.ToLower(got[i].Name) < strings.ToLower(got[j].Name)
	}))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		limit   int
		want    []string
		wantAll func(t *testing.T, got []domain.Exercise)
	}{
		{
			name:  "alias match",
			query: "leg curl",
			want:  []string{"Hamstring Curl (Seated)"},
		},
		{
			name:  "substring is case insensitive",
			query: "SQUAT",
			want:  []string{"Barbell Back Squat", "Bulgarian Split Squat", "Front Squat"},
		},
		{
			name:  "punctuation is ignored",
			query: "pull up",
			want:  []string{"Pull-Up"},
		},
		{
			name:  "typo tolerant",
			query: "bech press",
			wantAll: func(t *testing.T, got []domain.Exercise) {
				require.NotEmpty(t, got)
				assert.Contains(t, names(got), "Barbell Bench Press")
				for _, ex := range got {
					assert.Contains(t, ex.Name, "Bench")
				}
			},
		},
		{
			name:  "limit keeps best matches",
			query: "squat",
			limit: 1,
			want:  []string{"Barbell Back Squat"},
		},
		{
			name:  "no match",
			query: "zzzzzz",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(GlobalExercises(), tt.query, tt.limit)
			if tt.wantAll != nil {
				tt.wantAll(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSearch_SameNameFromBothCatalogsKept(t *testing.T) {
	owner := primitive.NewObjectID()
	entries := []domain.Exercise{
		{Name: "Zottman Curl", PrimaryMuscle: domain.MuscleBiceps},
		{Name: "Zottman Curl", PrimaryMuscle: domain.MuscleBiceps, UserID: &owner},
	}
	got := Search(entries, "zottman", 10)
	require.Len(t, got, 2)
}

func TestSimilarityScore(t *testing.T) {
	assert.Equal(t, 1.0, similarityScore("bench", "bench"))
	assert.InDelta(t, 0.8, similarityScore("bech", "bench"), 1e-9)
	assert.InDelta(t, 1-3.0/7, similarityScore("kitten", "sitting"), 1e-9)
	// distance is counted in runes, not bytes
	assert.InDelta(t, 0.8, similarityScore("crème", "creme"), 1e-9)
	assert.Equal(t, "pull up dumbbell", normalize("  Pull-Up (Dumbbell) "))
}
