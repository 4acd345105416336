package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository/memory"
	"liftlog/workout-app/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testProvider struct{ subject string }

func (p *testProvider) Name() string { return "test" }

func (p *testProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + url.QueryEscape(state)
}

func (p *testProvider) Identify(_ context.Context, code string) (*domain.User, error) {
	return &domain.User{Name: "Callback User", Email: code + "@example.com", ProviderSubject: p.subject}, nil
}

type testServer struct {
	router   *gin.Engine
	store    *memory.Store
	auth     service.AuthService
	metrics  *metrics.Manager
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, opts ...func(*Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	m, reg := metrics.NewTestManagerAndRegistry()
	exercises := service.NewExerciseService(
		store.GlobalExercises(), store.UserExercises(), store.Workouts(),
		cache.NewExerciseCache(1, time.Minute, m), m,
	)
	_, err := exercises.SeedGlobalExercises(context.Background())
	require.NoError(t, err)
	workouts := service.NewWorkoutService(store.Workouts(), store.Preferences(), exercises, m)
	auth := service.NewAuthService(store.Users(), &testProvider{subject: "sub-1"}, "api-test-secret", time.Hour)

	deps := Dependencies{
		AuthService:        auth,
		WorkoutService:     workouts,
		ExerciseService:    exercises,
		PreferencesService: service.NewPreferencesService(store.Preferences()),
		FeedbackService:    service.NewFeedbackService(store.Feedback()),
		ExportService:      service.NewExportService(workouts, exercises, nil),
		Metrics:            m,
		Gatherer:           reg,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := gin.New()
	SetupRoutes(router, deps)
	return &testServer{router: router, store: store, auth: auth, metrics: m, registry: reg}
}

// newUser signs a fresh user up and returns a bearer token for them.
func (s *testServer) newUser(t *testing.T) (primitive.ObjectID, string) {
	t.Helper()
	user, err := s.store.Users().UpsertByProvider(context.Background(), &domain.User{
		Name:            gofakeit.Name(),
		Email:           gofakeit.Email(),
		Provider:        "test",
		ProviderSubject: gofakeit.UUID(),
	})
	require.NoError(t, err)
	token, err := s.auth.IssueToken(user)
	require.NoError(t, err)
	return user.ID, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) globalRef(t *testing.T, name string) domain.ExerciseRef {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/exercises", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, ex := range decode[[]ExerciseResponse](t, rec) {
		if ex.Name == name {
			return domain.ExerciseRef{Kind: ex.Kind, ID: ex.ID}
		}
	}
	t.Fatalf("no exercise named %q", name)
	return domain.ExerciseRef{}
}
