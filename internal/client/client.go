package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"liftlog/workout-app/internal/analytics"
	"liftlog/workout-app/internal/api"
	"liftlog/workout-app/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the workout JSON API on behalf of one signed-in user.
// It implements autosave.Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client with a default transport.
func New(baseURL, token string) *Client {
	return NewWithHTTPClient(baseURL, token, &http.Client{Timeout: defaultTimeout})
}

// NewWithHTTPClient sends requests through base. A non-empty token is
// attached to every request as a bearer token.
func NewWithHTTPClient(baseURL, token string, base *http.Client) *Client {
	httpClient := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = base.Timeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CreateWorkout creates a workout and returns its id.
func (c *Client) CreateWorkout(ctx context.Context, draft domain.WorkoutDraft) (primitive.ObjectID, error) {
	var resp api.IDResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", api.NewWorkoutRequest(draft), &resp); err != nil {
		return primitive.NilObjectID, err
	}
	return resp.ID, nil
}

func (c *Client) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var resp api.WorkoutResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+id.Hex(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workout(), nil
}

// UpdateWorkout replaces the date, notes and items of a workout.
func (c *Client) UpdateWorkout(ctx context.Context, id primitive.ObjectID, draft domain.WorkoutDraft) error {
	return c.do(ctx, http.MethodPut, "/api/v1/workouts/"+id.Hex(), api.NewWorkoutRequest(draft), nil)
}

func (c *Client) GetWorkoutAnalytics(ctx context.Context, id primitive.ObjectID) ([]analytics.GroupTally, error) {
	var tallies []analytics.GroupTally
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+id.Hex()+"/analytics", nil, &tallies); err != nil {
		return nil, err
	}
	return tallies, nil
}

// GetAllExercises returns the global catalog plus the caller's own exercises.
func (c *Client) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	return c.exercises(ctx, "/api/v1/exercises")
}

func (c *Client) SearchExercises(ctx context.Context, query string) ([]domain.Exercise, error) {
	return c.exercises(ctx, "/api/v1/exercises/search?"+url.Values{"q": {query}}.Encode())
}

func (c *Client) GetPreferences(ctx context.Context) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	if err := c.do(ctx, http.MethodGet, "/api/v1/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (c *Client) exercises(ctx context.Context, path string) ([]domain.Exercise, error) {
	var resp []api.ExerciseResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Exercise, len(resp))
	for i, r := range resp {
		out[i] = r.Exercise()
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBytes, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		log.Debugf("%s %s: %s", method, path, apiErr)
		return apiErr
	}

	if out == nil || len(respBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
