package service

import (
	"context"
	"fmt"
	"strings"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxUserAgentLen  = 512
	maxAppVersionLen = 128
)

// FeedbackInput is what a user submits; everything but Content is optional.
type FeedbackInput struct {
	Content    string              `json:"content"`
	Subject    *string             `json:"subject,omitempty"`
	Route      *string             `json:"route,omitempty"`
	WorkoutID  *primitive.ObjectID `json:"workoutId,omitempty"`
	Exercise   *domain.ExerciseRef `json:"exercise,omitempty"`
	UserAgent  *string             `json:"userAgent,omitempty"`
	AppVersion *string             `json:"appVersion,omitempty"`
}

type FeedbackService interface {
	CreateFeedback(ctx context.Context, userID primitive.ObjectID, input FeedbackInput) (primitive.ObjectID, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, userID primitive.ObjectID, input FeedbackInput) (primitive.ObjectID, error) {
	if userID.IsZero() {
		return primitive.NilObjectID, ErrUnauthenticated
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: feedback content is required", ErrValidationFailed)
	}
	if input.Exercise != nil {
		if err := input.Exercise.Validate(); err != nil {
			return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrValidationFailed, err)
		}
	}

	feedback := &domain.Feedback{
		UserID:     userID,
		Content:    content,
		Subject:    trimOptional(input.Subject),
		Route:      trimOptional(input.Route),
		WorkoutID:  input.WorkoutID,
		Exercise:   input.Exercise,
		UserAgent:  truncate(input.UserAgent, maxUserAgentLen),
		AppVersion: truncate(input.AppVersion, maxAppVersionLen),
	}
	id, err := s.feedbackRepo.Create(ctx, feedback)
	if err != nil {
		return primitive.NilObjectID, err
	}
	log.WithFields(log.Fields{"user_id": userID.Hex(), "feedback_id": id.Hex()}).Info("feedback received")
	return id, nil
}

// truncate trims s and cuts it to max runes. Blank values become absent.
func truncate(s *string, max int) *string {
	v := trimOptional(s)
	if v == nil {
		return nil
	}
	if r := []rune(*v); len(r) > max {
		cut := string(r[:max])
		return &cut
	}
	return v
}
