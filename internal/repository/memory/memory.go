// Package memory holds process-local repository implementations used by
// tests and by the server when database.driver is "memory".
package memory

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store groups every repository over a shared lock.
type Store struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]domain.User
	globals     map[primitive.ObjectID]domain.Exercise
	customs     map[primitive.ObjectID]domain.Exercise
	workouts    map[primitive.ObjectID]domain.Workout
	preferences map[primitive.ObjectID]domain.UserPreferences
	feedback    []domain.Feedback
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       map[primitive.ObjectID]domain.User{},
		globals:     map[primitive.ObjectID]domain.Exercise{},
		customs:     map[primitive.ObjectID]domain.Exercise{},
		workouts:    map[primitive.ObjectID]domain.Workout{},
		preferences: map[primitive.ObjectID]domain.UserPreferences{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository                     { return &userRepo{s} }
func (s *Store) GlobalExercises() repository.GlobalExerciseRepository { return &globalRepo{s} }
func (s *Store) UserExercises() repository.UserExerciseRepository     { return &userExerciseRepo{s} }
func (s *Store) Workouts() repository.WorkoutRepository               { return &workoutRepo{s} }
func (s *Store) Preferences() repository.PreferencesRepository        { return &preferencesRepo{s} }
func (s *Store) Feedback() repository.FeedbackRepository              { return &feedbackRepo{s} }

// FeedbackEntries returns a copy of everything stored through Feedback().
func (s *Store) FeedbackEntries() []domain.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Feedback(nil), s.feedback...)
}

// users

type userRepo struct{ s *Store }

func (r *userRepo) UpsertByProvider(_ context.Context, user *domain.User) (*domain.User, error) {
	if user.Provider == "" || user.ProviderSubject == "" {
		return nil, errors.New("provider and provider subject are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, existing := range r.s.users {
		if existing.Provider == user.Provider && existing.ProviderSubject == user.ProviderSubject {
			existing.Name = user.Name
			existing.Email = user.Email
			existing.PictureURL = user.PictureURL
			existing.UpdatedAt = now
			r.s.users[id] = existing
			out := existing
			return &out, nil
		}
	}
	created := *user
	created.ID = primitive.NewObjectID()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.s.users[created.ID] = created
	return &created, nil
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// global exercises

type globalRepo struct{ s *Store }

func (r *globalRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.globals)), nil
}

func (r *globalRepo) InsertMany(_ context.Context, exercises []domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for i := range exercises {
		ex := &exercises[i]
		if ex.Name == "" || ex.PrimaryMuscle == "" {
			return errors.New("global exercise name and primary muscle are required")
		}
		ex.ID = primitive.NewObjectID()
		ex.UserID = nil
		ex.CreatedAt = now
		ex.UpdatedAt = now
		if ex.SecondaryMuscles == nil {
			ex.SecondaryMuscles = []string{}
		}
		r.s.globals[ex.ID] = cloneExercise(*ex)
	}
	return nil
}

func (r *globalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ex, ok := r.s.globals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex = cloneExercise(ex)
	return &ex, nil
}

func (r *globalRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pickExercises(r.s.globals, ids), nil
}

func (r *globalRepo) List(_ context.Context, limit int64) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return filterExercises(r.s.globals, func(domain.Exercise) bool { return true }, limit), nil
}

func (r *globalRepo) SearchByName(_ context.Context, query string, limit int64) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	return filterExercises(r.s.globals, func(ex domain.Exercise) bool {
		return strings.Contains(strings.ToLower(ex.Name), q)
	}, limit), nil
}

// user exercises

type userExerciseRepo struct{ s *Store }

func (r *userExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.PrimaryMuscle == "" || exercise.UserID == nil {
		return primitive.NilObjectID, errors.New("exercise name, primary muscle and user ID are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	now := r.s.now()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	if exercise.SecondaryMuscles == nil {
		exercise.SecondaryMuscles = []string{}
	}
	r.s.customs[exercise.ID] = cloneExercise(*exercise)
	return exercise.ID, nil
}

func (r *userExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ex, ok := r.s.customs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex = cloneExercise(ex)
	return &ex, nil
}

func (r *userExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pickExercises(r.s.customs, ids), nil
}

func (r *userExerciseRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return filterExercises(r.s.customs, func(ex domain.Exercise) bool {
		return ex.UserID != nil && *ex.UserID == userID
	}, limit), nil
}

func (r *userExerciseRepo) SearchByName(_ context.Context, userID primitive.ObjectID, query string, limit int64) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	return filterExercises(r.s.customs, func(ex domain.Exercise) bool {
		return ex.UserID != nil && *ex.UserID == userID && strings.Contains(strings.ToLower(ex.Name), q)
	}, limit), nil
}

func (r *userExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID || exercise.UserID == nil {
		return errors.New("exercise ID and user ID are required for update")
	}
	if exercise.Name == "" || exercise.PrimaryMuscle == "" {
		return errors.New("exercise name and primary muscle cannot be empty")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.customs[exercise.ID]
	if !ok || existing.UserID == nil || *existing.UserID != *exercise.UserID {
		return repository.ErrNotFound
	}
	updated := cloneExercise(*exercise)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.customs[exercise.ID] = updated
	exercise.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *userExerciseRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.customs[id]
	if !ok || existing.UserID == nil || *existing.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.customs, id)
	return nil
}

// workouts

type workoutRepo struct{ s *Store }

func (r *workoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Date.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires userId and date")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = r.s.now()
	workout.UpdatedAt = nil
	if workout.Items == nil {
		workout.Items = []domain.WorkoutItem{}
	}
	r.s.workouts[workout.ID] = cloneWorkout(*workout)
	return workout.ID, nil
}

func (r *workoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w = cloneWorkout(w)
	return &w, nil
}

func (r *workoutRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(w domain.Workout) bool { return w.UserID == userID }), nil
}

func (r *workoutRepo) ListByUserSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(w domain.Workout) bool {
		return w.UserID == userID && !w.Date.Before(since)
	}), nil
}

func (r *workoutRepo) Latest(_ context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.filter(func(w domain.Workout) bool { return w.UserID == userID })
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[0], nil
}

func (r *workoutRepo) Replace(_ context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID || workout.UserID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for update")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.workouts[workout.ID]
	if !ok || existing.UserID != workout.UserID {
		return repository.ErrNotFound
	}
	now := r.s.now()
	existing.Date = workout.Date
	existing.Notes = workout.Notes
	existing.Items = domain.CloneItems(workout.Items)
	existing.UpdatedAt = &now
	r.s.workouts[workout.ID] = cloneWorkout(existing)
	workout.UpdatedAt = &now
	return nil
}

func (r *workoutRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.workouts[id]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.workouts, id)
	return nil
}

func (r *workoutRepo) CountReferencing(_ context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, w := range r.s.workouts {
		if w.UserID == userID && w.References(ref) {
			n++
		}
	}
	return n, nil
}

func (r *workoutRepo) PullExercise(_ context.Context, userID primitive.ObjectID, ref domain.ExerciseRef) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var changed int64
	for id, w := range r.s.workouts {
		if w.UserID != userID {
			continue
		}
		kept, dropped := w.WithoutExercise(ref)
		if dropped == 0 {
			continue
		}
		w.Items = kept
		updated := now
		w.UpdatedAt = &updated
		r.s.workouts[id] = w
		changed++
	}
	return changed, nil
}

// filter returns matching workouts newest date first, then newest insert.
// Callers hold the lock.
func (r *workoutRepo) filter(keep func(domain.Workout) bool) []domain.Workout {
	out := []domain.Workout{}
	for _, w := range r.s.workouts {
		if keep(w) {
			out = append(out, cloneWorkout(w))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

// preferences

type preferencesRepo struct{ s *Store }

func (r *preferencesRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*domain.UserPreferences, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.preferences[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *preferencesRepo) Upsert(_ context.Context, prefs *domain.UserPreferences) error {
	if prefs.UserID == primitive.NilObjectID {
		return errors.New("preferences require a user ID")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prefs.UpdatedAt = r.s.now()
	if existing, ok := r.s.preferences[prefs.UserID]; ok {
		prefs.ID = existing.ID
	} else {
		prefs.ID = primitive.NewObjectID()
	}
	r.s.preferences[prefs.UserID] = *prefs
	return nil
}

// feedback

type feedbackRepo struct{ s *Store }

func (r *feedbackRepo) Create(_ context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	if feedback.UserID == primitive.NilObjectID || feedback.Content == "" {
		return primitive.NilObjectID, errors.New("feedback requires userId and content")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	feedback.ID = primitive.NewObjectID()
	feedback.CreatedAt = r.s.now()
	r.s.feedback = append(r.s.feedback, *feedback)
	return feedback.ID, nil
}

// helpers

func cloneExercise(ex domain.Exercise) domain.Exercise {
	ex.SecondaryMuscles = append([]string(nil), ex.SecondaryMuscles...)
	if ex.SecondaryMuscles == nil {
		ex.SecondaryMuscles = []string{}
	}
	ex.Aliases = append([]string(nil), ex.Aliases...)
	if ex.Notes != nil {
		n := *ex.Notes
		ex.Notes = &n
	}
	if ex.UserID != nil {
		u := *ex.UserID
		ex.UserID = &u
	}
	return ex
}

func cloneWorkout(w domain.Workout) domain.Workout {
	w.Items = domain.CloneItems(w.Items)
	if w.Notes != nil {
		n := *w.Notes
		w.Notes = &n
	}
	if w.UpdatedAt != nil {
		t := *w.UpdatedAt
		w.UpdatedAt = &t
	}
	return w
}

func pickExercises(src map[primitive.ObjectID]domain.Exercise, ids []primitive.ObjectID) []domain.Exercise {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return filterExercises(src, func(ex domain.Exercise) bool { return wanted[ex.ID] }, 0)
}

func filterExercises(src map[primitive.ObjectID]domain.Exercise, keep func(domain.Exercise) bool, limit int64) []domain.Exercise {
	out := []domain.Exercise{}
	for _, ex := range src {
		if keep(ex) {
			out = append(out, cloneExercise(ex))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}
