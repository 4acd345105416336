package mongo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names
const (
	userCollectionName           = "users"
	globalExerciseCollectionName = "global_exercises"
	userExerciseCollectionName   = "user_exercises"
	workoutCollectionName        = "workouts"
	preferencesCollectionName    = "user_preferences"
	feedbackCollectionName       = "feedback"
)

// Case-insensitive ordering for exercise names.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

// ConnectDB establishes a connection to MongoDB using the provided URI
// and verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Use a separate context for the ping, as the initial connection might have succeeded
	// but the server might be unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged, not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := func(name string, indexes []mongo.IndexModel) {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			log.Warnf("failed to create indexes for collection %s: %s", name, err)
		}
	}
	ensure(userCollectionName, userIndexes())
	ensure(globalExerciseCollectionName, globalExerciseIndexes())
	ensure(userExerciseCollectionName, userExerciseIndexes())
	ensure(workoutCollectionName, workoutIndexes())
	ensure(preferencesCollectionName, preferencesIndexes())
	ensure(feedbackCollectionName, feedbackIndexes())
}
