package service

import (
	"context"
	"errors"
	"fmt"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PreferencesService interface {
	// GetPreferences returns the stored preferences, or the defaults when none were saved.
	GetPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID primitive.ObjectID, patch domain.PreferencesPatch) (*domain.UserPreferences, error)
}

type preferencesService struct {
	prefsRepo repository.PreferencesRepository
}

func NewPreferencesService(prefsRepo repository.PreferencesRepository) PreferencesService {
	return &preferencesService{prefsRepo: prefsRepo}
}

func (s *preferencesService) GetPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.UserPreferences, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	prefs, err := s.prefsRepo.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		defaults := domain.DefaultPreferences(userID)
		return &defaults, nil
	}
	return prefs, err
}

func (s *preferencesService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, patch domain.PreferencesPatch) (*domain.UserPreferences, error) {
	if patch.WeightUnit != nil && !patch.WeightUnit.Valid() {
		return nil, fmt.Errorf("%w: weight unit must be %q or %q", ErrValidationFailed, domain.UnitLbs, domain.UnitKg)
	}
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := current.Apply(patch)
	if err := s.prefsRepo.Upsert(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
