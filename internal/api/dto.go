package api

import (
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout dates travel as epoch milliseconds.

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// WorkoutRequest is the body of create and full-replace calls.
// A missing date means "now" on create and "unchanged" on update.
type WorkoutRequest struct {
	Date  *int64               `json:"date,omitempty"`
	Notes *string              `json:"notes,omitempty"`
	Items []domain.WorkoutItem `json:"items"`
}

func (r WorkoutRequest) Draft() domain.WorkoutDraft {
	draft := domain.WorkoutDraft{Notes: r.Notes, Items: r.Items}
	if r.Date != nil {
		draft.Date = fromMillis(*r.Date)
	}
	if draft.Items == nil {
		draft.Items = []domain.WorkoutItem{}
	}
	return draft
}

// NewWorkoutRequest builds the wire form of a draft.
func NewWorkoutRequest(draft domain.WorkoutDraft) WorkoutRequest {
	req := WorkoutRequest{Notes: draft.Notes, Items: draft.Items}
	if !draft.Date.IsZero() {
		ms := toMillis(draft.Date)
		req.Date = &ms
	}
	if req.Items == nil {
		req.Items = []domain.WorkoutItem{}
	}
	return req
}

type WorkoutResponse struct {
	ID        primitive.ObjectID   `json:"id"`
	UserID    primitive.ObjectID   `json:"userId"`
	Date      int64                `json:"date"`
	Notes     *string              `json:"notes,omitempty"`
	Items     []domain.WorkoutItem `json:"items"`
	CreatedAt int64                `json:"createdAt"`
	UpdatedAt *int64               `json:"updatedAt,omitempty"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Date:      toMillis(w.Date),
		Notes:     w.Notes,
		Items:     w.Items,
		CreatedAt: toMillis(w.CreatedAt),
	}
	if resp.Items == nil {
		resp.Items = []domain.WorkoutItem{}
	}
	if w.UpdatedAt != nil {
		ms := toMillis(*w.UpdatedAt)
		resp.UpdatedAt = &ms
	}
	return resp
}

// Workout converts the wire form back into the domain type.
func (r WorkoutResponse) Workout() *domain.Workout {
	w := &domain.Workout{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      fromMillis(r.Date),
		Notes:     r.Notes,
		Items:     r.Items,
		CreatedAt: fromMillis(r.CreatedAt),
	}
	if r.UpdatedAt != nil {
		t := fromMillis(*r.UpdatedAt)
		w.UpdatedAt = &t
	}
	return w
}

type WorkoutDetailResponse struct {
	Workout WorkoutResponse      `json:"workout"`
	Items   []service.DetailItem `json:"items"`
}

type LastPerformanceResponse struct {
	WorkoutID primitive.ObjectID `json:"workoutId"`
	Date      int64              `json:"date"`
	Reps      int                `json:"reps"`
	Weight    *float64           `json:"weight,omitempty"`
}

// IDResponse answers calls that create a document.
type IDResponse struct {
	ID primitive.ObjectID `json:"id"`
}

// ExerciseResponse is one catalog entry. Kind tells the two catalogs apart.
type ExerciseResponse struct {
	ID               primitive.ObjectID  `json:"id"`
	Kind             domain.ExerciseKind `json:"kind"`
	UserID           *primitive.ObjectID `json:"userId,omitempty"`
	Name             string              `json:"name"`
	PrimaryMuscle    string              `json:"primaryMuscle"`
	SecondaryMuscles []string            `json:"secondaryMuscles"`
	Notes            *string             `json:"notes,omitempty"`
	Aliases          []string            `json:"aliases,omitempty"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	secondary := ex.SecondaryMuscles
	if secondary == nil {
		secondary = []string{}
	}
	return ExerciseResponse{
		ID:               ex.ID,
		Kind:             ex.Kind(),
		UserID:           ex.UserID,
		Name:             ex.Name,
		PrimaryMuscle:    ex.PrimaryMuscle,
		SecondaryMuscles: secondary,
		Notes:            ex.Notes,
		Aliases:          ex.Aliases,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func (r ExerciseResponse) Exercise() domain.Exercise {
	return domain.Exercise{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		PrimaryMuscle:    r.PrimaryMuscle,
		SecondaryMuscles: r.SecondaryMuscles,
		Notes:            r.Notes,
		Aliases:          r.Aliases,
	}
}

type ExportResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// PreferencesRequest is a partial update; absent fields are left unchanged.
type PreferencesRequest struct {
	WeightUnit           *domain.WeightUnit `json:"weightUnit,omitempty"`
	CountHalfSets        *bool              `json:"countHalfSets,omitempty"`
	CollapseMuscleGroups *bool              `json:"collapseMuscleGroups,omitempty"`
}

func (r PreferencesRequest) Patch() domain.PreferencesPatch {
	return domain.PreferencesPatch{
		WeightUnit:           r.WeightUnit,
		CountHalfSets:        r.CountHalfSets,
		CollapseMuscleGroups: r.CollapseMuscleGroups,
	}
}
