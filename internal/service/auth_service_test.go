package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"liftlog/workout-app/internal/config"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository/memory"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProvider struct {
	identity *domain.User
	err      error
	codes    []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Identify(_ context.Context, code string) (*domain.User, error) {
	p.codes = append(p.codes, code)
	if p.err != nil {
		return nil, p.err
	}
	u := *p.identity
	return &u, nil
}

func stateFrom(t *testing.T, loginURL string) string {
	t.Helper()
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestAuthService_CompleteLogin(t *testing.T) {
	store := memory.NewStore()
	provider := &fakeProvider{identity: &domain.User{
		Name:            gofakeit.Name(),
		Email:           gofakeit.Email(),
		ProviderSubject: gofakeit.UUID(),
	}}
	svc := NewAuthService(store.Users(), provider, "test-secret", time.Hour)
	ctx := context.Background()

	loginURL, err := svc.LoginURL()
	require.NoError(t, err)
	state := stateFrom(t, loginURL)

	token, user, err := svc.CompleteLogin(ctx, state, "code-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, []string{"code-1"}, provider.codes)
	assert.Equal(t, "fake", user.Provider)
	assert.Equal(t, provider.identity.Email, user.Email)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	got, err := svc.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, user.Name, got.Name)

	// signing in again keeps the same account
	_, again, err := svc.CompleteLogin(ctx, state, "code-2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestAuthService_RejectsBadState(t *testing.T) {
	provider := &fakeProvider{identity: &domain.User{ProviderSubject: "s"}}
	svc := NewAuthService(memory.NewStore().Users(), provider, "test-secret", time.Hour)
	other := NewAuthService(memory.NewStore().Users(), provider, "other-secret", time.Hour)
	ctx := context.Background()

	_, _, err := svc.CompleteLogin(ctx, "garbage", "code")
	assert.ErrorIs(t, err, ErrInvalidState)

	foreign, err := other.LoginURL()
	require.NoError(t, err)
	_, _, err = svc.CompleteLogin(ctx, stateFrom(t, foreign), "code")
	assert.ErrorIs(t, err, ErrInvalidState)

	// a bearer token is not a login state
	token, err := svc.IssueToken(&domain.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	_, _, err = svc.CompleteLogin(ctx, token, "code")
	assert.ErrorIs(t, err, ErrInvalidState)

	loginURL, err := svc.LoginURL()
	require.NoError(t, err)
	_, _, err = svc.CompleteLogin(ctx, stateFrom(t, loginURL), "")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Empty(t, provider.codes)
}

func TestAuthService_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("exchange failed")}
	svc := NewAuthService(memory.NewStore().Users(), provider, "test-secret", time.Hour)

	loginURL, err := svc.LoginURL()
	require.NoError(t, err)
	_, _, err = svc.CompleteLogin(context.Background(), stateFrom(t, loginURL), "code")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_ParseToken(t *testing.T) {
	svc := NewAuthService(memory.NewStore().Users(), &fakeProvider{}, "test-secret", time.Hour)
	impl := svc.(*authService)

	_, err := svc.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// state tokens are not bearer tokens
	loginURL, err := svc.LoginURL()
	require.NoError(t, err)
	_, err = svc.ParseToken(stateFrom(t, loginURL))
	assert.ErrorIs(t, err, ErrInvalidToken)

	impl.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.IssueToken(&domain.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.GetUser(context.Background(), primitive.NilObjectID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.GetUser(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGoogleProvider_Identify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":     "google-sub-1",
			"name":    "Ada Lifter",
			"email":   "ada@example.com",
			"picture": "https://example.com/ada.png",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	})
	assert.Contains(t, provider.AuthCodeURL("xyz"), "accounts.google.com")
	assert.Contains(t, provider.AuthCodeURL("xyz"), "state=xyz")

	user, err := provider.Identify(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", user.ProviderSubject)
	assert.Equal(t, "Ada Lifter", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "https://example.com/ada.png", user.PictureURL)
}
