package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeightUnit is the unit weights are displayed in.
type WeightUnit string

const (
	UnitLbs WeightUnit = "lbs"
	UnitKg  WeightUnit = "kg"
)

func (u WeightUnit) Valid() bool {
	return u == UnitLbs || u == UnitKg
}

// UserPreferences is created lazily on the first write.
type UserPreferences struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID               primitive.ObjectID `bson:"userId" json:"userId"`
	WeightUnit           WeightUnit         `bson:"weightUnit" json:"weightUnit"`
	CountHalfSets        bool               `bson:"countHalfSets" json:"countHalfSets"`               // Secondary muscles get half credit in analytics
	CollapseMuscleGroups bool               `bson:"collapseMuscleGroups" json:"collapseMuscleGroups"` // Analytics panel starts collapsed
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultPreferences applies when a user has never saved preferences.
func DefaultPreferences(userID primitive.ObjectID) UserPreferences {
	return UserPreferences{
		UserID:               userID,
		WeightUnit:           UnitLbs,
		CountHalfSets:        true,
		CollapseMuscleGroups: false,
	}
}

// PreferencesPatch is a partial update; nil fields are left unchanged.
type PreferencesPatch struct {
	WeightUnit           *WeightUnit
	CountHalfSets        *bool
	CollapseMuscleGroups *bool
}

// Apply returns p with the non-nil fields of patch applied.
func (p UserPreferences) Apply(patch PreferencesPatch) UserPreferences {
	if patch.WeightUnit != nil {
		p.WeightUnit = *patch.WeightUnit
	}
	if patch.CountHalfSets != nil {
		p.CountHalfSets = *patch.CountHalfSets
	}
	if patch.CollapseMuscleGroups != nil {
		p.CollapseMuscleGroups = *patch.CollapseMuscleGroups
	}
	return p
}
