package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liftlog/workout-app/internal/analytics"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to this workout")
	ErrNoPriorWorkout      = errors.New("no prior workout to clone")
)

// LastPerformanceWindow is how far back GetLastExercisePerformance looks.
const LastPerformanceWindow = 7 * 24 * time.Hour

// LastPerformance is the top set of an exercise in the most recent workout
// that contained it.
type LastPerformance struct {
	WorkoutID primitive.ObjectID `json:"workoutId"`
	Date      time.Time          `json:"date"`
	Reps      int                `json:"reps"`
	Weight    *float64           `json:"weight,omitempty"`
}

// DetailItem is a workout item with its exercise resolved for display.
type DetailItem struct {
	domain.WorkoutItem
	ExerciseName  string `json:"exerciseName"`
	PrimaryMuscle string `json:"primaryMuscle,omitempty"`
}

type WorkoutDetail struct {
	Workout *domain.Workout `json:"workout"`
	Items   []DetailItem    `json:"items"`
}

type WorkoutService interface {
	// ListWorkouts returns the caller's workouts newest first. Anonymous callers get none.
	ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	GetWorkoutDetail(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, draft domain.WorkoutDraft) (*domain.Workout, error)
	// UpdateWorkout replaces date, notes and items.
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, draft domain.WorkoutDraft) (*domain.Workout, error)
	// DeleteWorkout is a no-op for workouts that do not exist.
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
	// CloneLatestWorkout copies notes and items of the most recent workout into a new one dated now.
	CloneLatestWorkout(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error)
	GetWorkoutAnalytics(ctx context.Context, userID, workoutID primitive.ObjectID) ([]analytics.GroupTally, error)
	// GetLastExercisePerformance returns nil when the exercise was not
	// performed inside the lookback window.
	GetLastExercisePerformance(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef, exclude *primitive.ObjectID) (*LastPerformance, error)
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	prefsRepo   repository.PreferencesRepository
	exercises   ExerciseService
	table       *analytics.Table
	metrics     *metrics.Manager
	now         func() time.Time
}

// NewWorkoutService wires the workout operations. metricsManager may be nil.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	prefsRepo repository.PreferencesRepository,
	exercises ExerciseService,
	metricsManager *metrics.Manager,
) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		prefsRepo:   prefsRepo,
		exercises:   exercises,
		table:       analytics.BroadGroups,
		metrics:     metricsManager,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	if userID.IsZero() {
		return []domain.Workout{}, nil
	}
	return s.workoutRepo.ListByUser(ctx, userID)
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.ownedWorkout(ctx, userID, workoutID)
}

func (s *workoutService) GetWorkoutDetail(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.exercises.Resolve(ctx, userID, itemRefs(workout.Items))
	if err != nil {
		return nil, err
	}

	detail := &WorkoutDetail{Workout: workout, Items: make([]DetailItem, len(workout.Items))}
	for i, item := range workout.Items {
		d := DetailItem{WorkoutItem: item, ExerciseName: domain.PlaceholderExerciseName}
		if info, ok := resolver.Resolve(item.Exercise); ok {
			d.ExerciseName = info.Name
			d.PrimaryMuscle = info.PrimaryMuscle
		}
		detail.Items[i] = d
	}
	return detail, nil
}

func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, draft domain.WorkoutDraft) (*domain.Workout, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	if err := cleanDraft(&draft); err != nil {
		return nil, err
	}
	if draft.Date.IsZero() {
		draft.Date = s.now()
	}

	workout := &domain.Workout{
		UserID: userID,
		Date:   draft.Date,
		Notes:  draft.Notes,
		Items:  draft.Items,
	}
	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}
	s.countSave("create")
	log.WithFields(log.Fields{"user_id": userID.Hex(), "workout_id": workout.ID.Hex()}).Debug("workout created")
	return workout, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, draft domain.WorkoutDraft) (*domain.Workout, error) {
	existing, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if err := cleanDraft(&draft); err != nil {
		return nil, err
	}
	if draft.Date.IsZero() {
		draft.Date = existing.Date
	}

	existing.Date = draft.Date
	existing.Notes = draft.Notes
	existing.Items = draft.Items
	if err := s.workoutRepo.Replace(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	s.countSave("update")
	return existing, nil
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	if userID.IsZero() {
		return ErrUnauthenticated
	}
	if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			return nil
		}
		return err
	}
	if err := s.workoutRepo.Delete(ctx, workoutID, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.countSave("delete")
	return nil
}

func (s *workoutService) CloneLatestWorkout(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	latest, err := s.workoutRepo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPriorWorkout
		}
		return nil, err
	}

	draft := latest.Draft()
	clone := &domain.Workout{
		UserID: userID,
		Date:   s.now(),
		Notes:  draft.Notes,
		Items:  draft.Items,
	}
	if _, err := s.workoutRepo.Create(ctx, clone); err != nil {
		return nil, err
	}
	s.countSave("clone")
	log.WithFields(log.Fields{
		"user_id":    userID.Hex(),
		"source_id":  latest.ID.Hex(),
		"workout_id": clone.ID.Hex(),
	}).Info("cloned latest workout")
	return clone, nil
}

func (s *workoutService) GetWorkoutAnalytics(ctx context.Context, userID, workoutID primitive.ObjectID) ([]analytics.GroupTally, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.exercises.Resolve(ctx, userID, itemRefs(workout.Items))
	if err != nil {
		return nil, err
	}
	halfCredit, err := s.countHalfSets(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterAnalytics.Inc()
	}
	return analytics.Compute(workout.Items, resolver, s.table, halfCredit), nil
}

func (s *workoutService) GetLastExercisePerformance(ctx context.Context, userID primitive.ObjectID, ref domain.ExerciseRef, exclude *primitive.ObjectID) (*LastPerformance, error) {
	if userID.IsZero() {
		return nil, nil
	}
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	recent, err := s.workoutRepo.ListByUserSince(ctx, userID, s.now().Add(-LastPerformanceWindow))
	if err != nil {
		return nil, err
	}
	for _, w := range recent {
		if exclude != nil && w.ID == *exclude {
			continue
		}
		var sets []domain.Set
		for _, item := range w.Items {
			if item.Exercise == ref {
				sets = append(sets, item.Sets...)
			}
		}
		top, ok := domain.TopSet(sets)
		if !ok {
			continue
		}
		return &LastPerformance{WorkoutID: w.ID, Date: w.Date, Reps: top.Reps, Weight: top.Weight}, nil
	}
	return nil, nil
}

func (s *workoutService) ownedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		log.WithFields(log.Fields{"user_id": userID.Hex(), "workout_id": workoutID.Hex()}).Warn("workout access denied")
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func (s *workoutService) countHalfSets(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	prefs, err := s.prefsRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.DefaultPreferences(userID).CountHalfSets, nil
		}
		return false, err
	}
	return prefs.CountHalfSets, nil
}

func (s *workoutService) countSave(op string) {
	if s.metrics != nil {
		s.metrics.CounterWorkoutSaves.WithLabelValues(op).Inc()
	}
}

// cleanDraft trims notes and checks item shapes. Items are kept as sent.
func cleanDraft(draft *domain.WorkoutDraft) error {
	draft.Notes = trimOptional(draft.Notes)
	if err := domain.ValidateItems(draft.Items); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	items := domain.CloneItems(draft.Items)
	for i := range items {
		items[i].Notes = trimOptional(items[i].Notes)
	}
	draft.Items = items
	return nil
}

func itemRefs(items []domain.WorkoutItem) []domain.ExerciseRef {
	refs := make([]domain.ExerciseRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, item.Exercise)
	}
	return refs
}
