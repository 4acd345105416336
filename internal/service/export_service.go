package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrExportDisabled = errors.New("data export is not configured")

// ExportLinkExpiry is how long a download link stays valid.
const ExportLinkExpiry = 15 * time.Minute

type ExportResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type exportDocument struct {
	UserID     primitive.ObjectID `json:"userId"`
	ExportedAt time.Time          `json:"exportedAt"`
	Workouts   []exportWorkout    `json:"workouts"`
}

type exportWorkout struct {
	ID    primitive.ObjectID `json:"id"`
	Date  time.Time          `json:"date"`
	Notes *string            `json:"notes,omitempty"`
	Items []DetailItem       `json:"items"`
}

type ExportService interface {
	// ExportWorkouts uploads the caller's workouts as JSON and returns a
	// short-lived download link.
	ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error)
}

type exportService struct {
	workouts  WorkoutService
	exercises ExerciseService
	storage   storage.ObjectStorage
	now       func() time.Time
}

// NewExportService returns a service whose exports fail with
// ErrExportDisabled when objectStorage is nil.
func NewExportService(workouts WorkoutService, exercises ExerciseService, objectStorage storage.ObjectStorage) ExportService {
	return &exportService{
		workouts:  workouts,
		exercises: exercises,
		storage:   objectStorage,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *exportService) ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportDisabled
	}
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}

	list, err := s.workouts.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}
	var refs []domain.ExerciseRef
	for _, w := range list {
		refs = append(refs, itemRefs(w.Items)...)
	}
	resolver, err := s.exercises.Resolve(ctx, userID, refs)
	if err != nil {
		return nil, err
	}

	doc := exportDocument{UserID: userID, ExportedAt: s.now(), Workouts: make([]exportWorkout, len(list))}
	for i, w := range list {
		items := make([]DetailItem, len(w.Items))
		for j, item := range w.Items {
			items[j] = DetailItem{WorkoutItem: item, ExerciseName: domain.PlaceholderExerciseName}
			if info, ok := resolver.Resolve(item.Exercise); ok {
				items[j].ExerciseName = info.Name
				items[j].PrimaryMuscle = info.PrimaryMuscle
			}
		}
		doc.Workouts[i] = exportWorkout{ID: w.ID, Date: w.Date, Notes: w.Notes, Items: items}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	key := fmt.Sprintf("exports/%s/%s.json", userID.Hex(), uuid.NewString())
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, ExportLinkExpiry)
	if err != nil {
		// nobody can reach the object without a link
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			log.Warnf("failed to remove unreachable export %s: %s", key, delErr)
		}
		return nil, fmt.Errorf("sign export link: %w", err)
	}

	log.WithFields(log.Fields{"user_id": userID.Hex(), "workouts": len(list), "key": key}).Info("workouts exported")
	return &ExportResult{URL: url, ExpiresAt: doc.ExportedAt.Add(ExportLinkExpiry)}, nil
}
