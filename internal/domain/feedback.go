package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a free-text note a user leaves about the app,
// optionally tied to the workout or exercise they were looking at.
type Feedback struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	Content    string              `bson:"content" json:"content"`
	Subject    *string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Route      *string             `bson:"route,omitempty" json:"route,omitempty"`
	WorkoutID  *primitive.ObjectID `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
	Exercise   *ExerciseRef        `bson:"exercise,omitempty" json:"exercise,omitempty"`
	UserAgent  *string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	AppVersion *string             `bson:"appVersion,omitempty" json:"appVersion,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}
