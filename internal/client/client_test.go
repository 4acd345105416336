package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"liftlog/workout-app/internal/api"
	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository/memory"
	"liftlog/workout-app/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type noopProvider struct{}

func (noopProvider) Name() string              { return "test" }
func (noopProvider) AuthCodeURL(string) string { return "https://idp.test/authorize" }
func (noopProvider) Identify(context.Context, string) (*domain.User, error) {
	return nil, service.ErrAuthenticationFailed
}

type testBackend struct {
	server    *httptest.Server
	transport *http.Transport
	store     *memory.Store
	auth      service.AuthService
	workouts  service.WorkoutService
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	m := metrics.NewTestManager()
	exercises := service.NewExerciseService(
		store.GlobalExercises(), store.UserExercises(), store.Workouts(),
		cache.NewExerciseCache(1, time.Minute, m), m,
	)
	_, err := exercises.SeedGlobalExercises(context.Background())
	require.NoError(t, err)
	workouts := service.NewWorkoutService(store.Workouts(), store.Preferences(), exercises, m)
	auth := service.NewAuthService(store.Users(), noopProvider{}, "client-test-secret", time.Hour)

	router := gin.New()
	api.SetupRoutes(router, api.Dependencies{
		AuthService:        auth,
		WorkoutService:     workouts,
		ExerciseService:    exercises,
		PreferencesService: service.NewPreferencesService(store.Preferences()),
		FeedbackService:    service.NewFeedbackService(store.Feedback()),
		ExportService:      service.NewExportService(workouts, exercises, nil),
		Metrics:            m,
	})

	b := &testBackend{
		server:    httptest.NewServer(router),
		transport: &http.Transport{},
		store:     store,
		auth:      auth,
		workouts:  workouts,
	}
	t.Cleanup(func() {
		b.transport.CloseIdleConnections()
		b.server.Close()
	})
	return b
}

// newClient signs up a fresh user and returns a client acting for them.
func (b *testBackend) newClient(t *testing.T) (*Client, primitive.ObjectID) {
	t.Helper()
	user, err := b.store.Users().UpsertByProvider(context.Background(), &domain.User{
		Name:            gofakeit.Name(),
		Email:           gofakeit.Email(),
		Provider:        "test",
		ProviderSubject: gofakeit.UUID(),
	})
	require.NoError(t, err)
	token, err := b.auth.IssueToken(user)
	require.NoError(t, err)
	return NewWithHTTPClient(b.server.URL+"/", token, &http.Client{Transport: b.transport, Timeout: 5 * time.Second}), user.ID
}

func findRef(t *testing.T, exercises []domain.Exercise, name string) domain.ExerciseRef {
	t.Helper()
	for i := range exercises {
		if exercises[i].Name == name {
			return exercises[i].Ref()
		}
	}
	t.Fatalf("no exercise named %q", name)
	return domain.ExerciseRef{}
}

func TestClient_WorkoutRoundTrip(t *testing.T) {
	backend := newTestBackend(t)
	c, userID := backend.newClient(t)
	ctx := context.Background()

	exercises, err := c.GetAllExercises(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, exercises)
	bench := findRef(t, exercises, "Barbell Bench Press")

	date := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	notes := "morning"
	id, err := c.CreateWorkout(ctx, domain.WorkoutDraft{Date: date, Notes: &notes})
	require.NoError(t, err)

	weight := 60.0
	require.NoError(t, c.UpdateWorkout(ctx, id, domain.WorkoutDraft{
		Items: []domain.WorkoutItem{{Exercise: bench, Sets: []domain.Set{{Reps: 10, Weight: &weight}}}},
	}))

	w, err := c.GetWorkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userID, w.UserID)
	assert.True(t, date.Equal(w.Date), "date survives an update without one")
	assert.Nil(t, w.Notes)
	require.Len(t, w.Items, 1)
	assert.Equal(t, bench, w.Items[0].Exercise)
	assert.NotNil(t, w.UpdatedAt)

	tallies, err := c.GetWorkoutAnalytics(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, tallies)
	assert.Equal(t, "Chest", tallies[0].Name)
	assert.Equal(t, 1.0, tallies[0].Sets)

	prefs, err := c.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitLbs, prefs.WeightUnit)

	found, err := c.SearchExercises(ctx, "bench")
	require.NoError(t, err)
	assert.NotEmpty(t, found)
	assert.LessOrEqual(t, len(found), 20)
}

func TestClient_Errors(t *testing.T) {
	backend := newTestBackend(t)
	alice, _ := backend.newClient(t)
	bob, _ := backend.newClient(t)
	ctx := context.Background()

	id, err := alice.CreateWorkout(ctx, domain.WorkoutDraft{})
	require.NoError(t, err)

	_, err = bob.GetWorkout(ctx, id)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "workout not found", apiErr.Message)

	err = alice.UpdateWorkout(ctx, id, domain.WorkoutDraft{
		Items: []domain.WorkoutItem{{Exercise: domain.GlobalRef(primitive.NewObjectID()), Sets: []domain.Set{{Reps: -1}}}},
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	anonymous := NewWithHTTPClient(backend.server.URL, "", &http.Client{Transport: backend.transport})
	_, err = anonymous.GetPreferences(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// anonymous callers still see the global catalog
	exercises, err := anonymous.GetAllExercises(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, exercises)
}
