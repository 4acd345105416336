package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"liftlog/workout-app/internal/analytics"
	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/catalog"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to this exercise")
	ErrValidationFailed     = errors.New("validation failed")
)

// SearchLimit caps every search result, and each source before merging.
const SearchLimit = 20

// ExerciseInput carries the user-editable fields of a custom exercise.
type ExerciseInput struct {
	Name             string   `json:"name"`
	PrimaryMuscle    string   `json:"primaryMuscle"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Notes            *string  `json:"notes,omitempty"`
	Aliases          []string `json:"aliases,omitempty"`
}

// ExerciseUsage reports how many of the owner's workouts reference an exercise.
type ExerciseUsage struct {
	IsUsed       bool  `json:"isUsed"`
	WorkoutCount int64 `json:"workoutCount"`
}

// --- Service Interface ---
type ExerciseService interface {
	// SeedGlobalExercises inserts the built-in catalog when it is empty.
	SeedGlobalExercises(ctx context.Context) (int, error)
	SearchExercises(ctx context.Context, userID primitive.ObjectID, query string) ([]domain.Exercise, error)
	GetAllExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)

	CreateUserExercise(ctx context.Context, userID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	UpdateUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	// DeleteUserExercise removes every item referencing the exercise from the
	// owner's workouts, then deletes it.
	DeleteUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	CheckExerciseUsage(ctx context.Context, userID, exerciseID primitive.ObjectID) (ExerciseUsage, error)

	// Resolve looks up metadata for refs as seen by userID. Missing exercises
	// and other users' exercises are absent from the result.
	Resolve(ctx context.Context, userID primitive.ObjectID, refs []domain.ExerciseRef) (analytics.MapResolver, error)
}

// --- Service Implementation ---

type exerciseService struct {
	globalRepo  repository.GlobalExerciseRepository
	userRepo    repository.UserExerciseRepository
	workoutRepo repository.WorkoutRepository
	cache       *cache.ExerciseCache
	metrics     *metrics.Manager
}

// NewExerciseService creates a new instance of exerciseService.
// cache and metricsManager may be nil.
func NewExerciseService(
	globalRepo repository.GlobalExerciseRepository,
	userRepo repository.UserExerciseRepository,
	workoutRepo repository.WorkoutRepository,
	exerciseCache *cache.ExerciseCache,
	metricsManager *metrics.Manager,
) ExerciseService {
	return &exerciseService{
		globalRepo:  globalRepo,
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		cache:       exerciseCache,
		metrics:     metricsManager,
	}
}

func (s *exerciseService) SeedGlobalExercises(ctx context.Context) (int, error) {
	count, err := s.globalRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Debugf("global catalog already has %d exercises, skipping seed", count)
		return 0, nil
	}
	presets := catalog.GlobalExercises()
	if err := s.globalRepo.InsertMany(ctx, presets); err != nil {
		return 0, fmt.Errorf("seed global exercises: %w", err)
	}
	log.Infof("seeded %d global exercises", len(presets))
	return len(presets), nil
}

func (s *exerciseService) SearchExercises(ctx context.Context, userID primitive.ObjectID, query string) ([]domain.Exercise, error) {
	query = strings.TrimSpace(query)

	var globals, own []domain.Exercise
	var err error
	if query == "" {
		globals, err = s.globalRepo.List(ctx, SearchLimit)
	} else {
		globals, err = s.globalRepo.SearchByName(ctx, query, SearchLimit)
	}
	if err != nil {
		return nil, err
	}

	if !userID.IsZero() {
		if query == "" {
			own, err = s.userRepo.ListByUser(ctx, userID, SearchLimit)
		} else {
			own, err = s.userRepo.SearchByName(ctx, userID, query, SearchLimit)
		}
		if err != nil {
			return nil, err
		}
	}

	merged := catalog.SortByName(append(globals, own...))
	if len(merged) > SearchLimit {
		merged = merged[:SearchLimit]
	}
	return merged, nil
}

func (s *exerciseService) GetAllExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	all, err := s.globalRepo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !userID.IsZero() {
		own, err := s.userRepo.ListByUser(ctx, userID, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, own...)
	}
	return catalog.SortByName(all), nil
}

func (s *exerciseService) CreateUserExercise(ctx context.Context, userID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	exercise := &domain.Exercise{UserID: &userID}
	if err := applyExerciseInput(exercise, input); err != nil {
		return nil, err
	}

	id, err := s.userRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	log.WithFields(log.Fields{"user_id": userID.Hex(), "exercise_id": id.Hex()}).Debug("custom exercise created")
	return exercise, nil
}

func (s *exerciseService) GetUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	return s.ownedExercise(ctx, userID, exerciseID)
}

func (s *exerciseService) UpdateUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	existing, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := applyExerciseInput(existing, input); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	s.evict(userID, existing.Ref())
	return existing, nil
}

func (s *exerciseService) DeleteUserExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	existing, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return err
	}
	ref := existing.Ref()

	changed, err := s.workoutRepo.PullExercise(ctx, userID, ref)
	if err != nil {
		return fmt.Errorf("remove %s from workouts: %w", ref, err)
	}
	if err := s.userRepo.Delete(ctx, exerciseID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	s.evict(userID, ref)

	if s.metrics != nil {
		s.metrics.CounterCascadeRemovedItems.Add(float64(changed))
	}
	log.WithFields(log.Fields{
		"user_id":          userID.Hex(),
		"exercise_id":      exerciseID.Hex(),
		"workouts_updated": changed,
	}).Info("custom exercise deleted")
	return nil
}

func (s *exerciseService) CheckExerciseUsage(ctx context.Context, userID, exerciseID primitive.ObjectID) (ExerciseUsage, error) {
	existing, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return ExerciseUsage{}, err
	}
	count, err := s.workoutRepo.CountReferencing(ctx, userID, existing.Ref())
	if err != nil {
		return ExerciseUsage{}, err
	}
	return ExerciseUsage{IsUsed: count > 0, WorkoutCount: count}, nil
}

func (s *exerciseService) Resolve(ctx context.Context, userID primitive.ObjectID, refs []domain.ExerciseRef) (analytics.MapResolver, error) {
	resolved := make(analytics.MapResolver, len(refs))
	var globalIDs, userIDs []primitive.ObjectID
	for _, ref := range refs {
		if _, done := resolved[ref]; done {
			continue
		}
		if info, ok := s.cached(userID, ref); ok {
			resolved[ref] = info
			continue
		}
		switch ref.Kind {
		case domain.KindGlobal:
			globalIDs = append(globalIDs, ref.ID)
		case domain.KindUser:
			userIDs = append(userIDs, ref.ID)
		default:
			return nil, fmt.Errorf("resolve %s: %w", ref, domain.ErrUnknownExerciseKind)
		}
	}

	if len(globalIDs) > 0 {
		found, err := s.globalRepo.GetByIDs(ctx, globalIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			s.remember(resolved, userID, &found[i])
		}
	}
	if len(userIDs) > 0 && !userID.IsZero() {
		found, err := s.userRepo.GetByIDs(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			if found[i].UserID == nil || *found[i].UserID != userID {
				continue
			}
			s.remember(resolved, userID, &found[i])
		}
	}
	return resolved, nil
}

func (s *exerciseService) ownedExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	exercise, err := s.userRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.UserID == nil || *exercise.UserID != userID {
		log.WithFields(log.Fields{"user_id": userID.Hex(), "exercise_id": exerciseID.Hex()}).Warn("exercise access denied")
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) cached(owner primitive.ObjectID, ref domain.ExerciseRef) (domain.ExerciseInfo, bool) {
	if s.cache == nil {
		return domain.ExerciseInfo{}, false
	}
	return s.cache.Get(owner, ref)
}

func (s *exerciseService) remember(into analytics.MapResolver, owner primitive.ObjectID, ex *domain.Exercise) {
	ref, info := ex.Ref(), ex.Info()
	into[ref] = info
	if s.cache != nil {
		s.cache.Set(owner, ref, info)
	}
}

func (s *exerciseService) evict(owner primitive.ObjectID, ref domain.ExerciseRef) {
	if s.cache != nil {
		s.cache.Del(owner, ref)
	}
}

// applyExerciseInput trims input into ex. Name and primary muscle must be
// non-blank; blank secondary muscles and aliases are dropped and blank
// notes become absent.
func applyExerciseInput(ex *domain.Exercise, input ExerciseInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	primary := strings.TrimSpace(input.PrimaryMuscle)
	if primary == "" {
		return fmt.Errorf("%w: primary muscle is required", ErrValidationFailed)
	}
	ex.Name = name
	ex.PrimaryMuscle = primary
	ex.SecondaryMuscles = trimAll(input.SecondaryMuscles)
	ex.Aliases = trimAll(input.Aliases)
	if len(ex.Aliases) == 0 {
		ex.Aliases = nil
	}
	ex.Notes = trimOptional(input.Notes)
	return nil
}

// trimAll trims every entry and drops the blank ones. Never nil.
func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
