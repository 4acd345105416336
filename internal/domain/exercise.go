// internal/domain/exercise.go
package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseKind tags which catalog an exercise reference points into.
type ExerciseKind string

const (
	KindGlobal ExerciseKind = "global" // System-provided, shared by all users
	KindUser   ExerciseKind = "user"   // Custom, owned by exactly one user
)

var ErrUnknownExerciseKind = errors.New("unknown exercise kind")

// Exercise is the shape shared by both catalogs.
// Global exercises have a nil UserID; user exercises always carry their owner.
type Exercise struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Name             string              `bson:"name" json:"name"`
	PrimaryMuscle    string              `bson:"primaryMuscle" json:"primaryMuscle"`
	SecondaryMuscles []string            `bson:"secondaryMuscles" json:"secondaryMuscles"`
	Notes            *string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Aliases          []string            `bson:"aliases,omitempty" json:"aliases,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Kind reports which catalog the exercise belongs to.
func (e *Exercise) Kind() ExerciseKind {
	if e.UserID != nil {
		return KindUser
	}
	return KindGlobal
}

// Ref returns the tagged reference pointing at this exercise.
func (e *Exercise) Ref() ExerciseRef {
	return ExerciseRef{Kind: e.Kind(), ID: e.ID}
}

// ExerciseRef names exactly one exercise in one catalog.
// Build it with GlobalRef or UserRef; the zero value is not a valid reference.
type ExerciseRef struct {
	Kind ExerciseKind       `bson:"kind" json:"kind"`
	ID   primitive.ObjectID `bson:"id" json:"id"`
}

func GlobalRef(id primitive.ObjectID) ExerciseRef {
	return ExerciseRef{Kind: KindGlobal, ID: id}
}

func UserRef(id primitive.ObjectID) ExerciseRef {
	return ExerciseRef{Kind: KindUser, ID: id}
}

// Validate rejects references with an unknown kind or a nil id.
func (r ExerciseRef) Validate() error {
	switch r.Kind {
	case KindGlobal, KindUser:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownExerciseKind, r.Kind)
	}
	if r.ID == primitive.NilObjectID {
		return errors.New("exercise reference id is required")
	}
	return nil
}

// Key is the "kind:id" string used for caches and lookup maps.
func (r ExerciseRef) Key() string {
	return string(r.Kind) + ":" + r.ID.Hex()
}

func (r ExerciseRef) String() string {
	return r.Key()
}

// ExerciseInfo is the subset of exercise metadata the analytics and
// detail views need. It is what the catalog cache stores.
type ExerciseInfo struct {
	Name             string   `json:"name"`
	PrimaryMuscle    string   `json:"primaryMuscle"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
}

func (e *Exercise) Info() ExerciseInfo {
	return ExerciseInfo{
		Name:             e.Name,
		PrimaryMuscle:    e.PrimaryMuscle,
		SecondaryMuscles: e.SecondaryMuscles,
	}
}

// PlaceholderExerciseName is shown for items whose exercise no longer exists.
const PlaceholderExerciseName = "Unknown exercise"
