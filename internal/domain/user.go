package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account created on first sign-in through an OAuth provider.
// Identity itself is owned by the provider; we only keep what we display.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Provider        string             `bson:"provider" json:"provider"` // e.g. "google"
	ProviderSubject string             `bson:"providerSubject" json:"-"` // Stable subject id issued by the provider
	PictureURL      string             `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
