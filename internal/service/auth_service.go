package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"liftlog/workout-app/internal/config"
	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// --- Error Definitions ---
var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidState         = errors.New("invalid or expired login state")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

const (
	stateTTL      = 10 * time.Minute
	stateAudience = "oauth-state"
	tokenIssuer   = "liftlog"
)

// IdentityProvider is the external sign-in provider.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Identify exchanges an authorization code for the provider's view of the user.
	Identify(ctx context.Context, code string) (*domain.User, error)
}

// --- Service Interface ---
type AuthService interface {
	// LoginURL returns the provider URL to redirect the browser to.
	LoginURL() (string, error)
	// CompleteLogin validates state, exchanges code and signs the user in.
	CompleteLogin(ctx context.Context, state, code string) (token string, user *domain.User, err error)
	IssueToken(user *domain.User) (string, error)
	// ParseToken returns the user id carried by a bearer token.
	ParseToken(token string) (primitive.ObjectID, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	provider      IdentityProvider
	jwtSecret     []byte
	jwtExpiration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, provider IdentityProvider, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		provider:      provider,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

// stateClaims make the OAuth state parameter a short-lived signed token,
// so the callback needs no server-side session.
type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// jwtClaims defines the structure of the bearer token payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *authService) LoginURL() (string, error) {
	now := s.now()
	claims := stateClaims{
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return s.provider.AuthCodeURL(state), nil
}

func (s *authService) CompleteLogin(ctx context.Context, state, code string) (string, *domain.User, error) {
	var claims stateClaims
	if _, err := jwt.ParseWithClaims(state, &claims, s.keyFunc); err != nil || !claims.VerifyAudience(stateAudience, true) {
		return "", nil, ErrInvalidState
	}
	if code == "" {
		return "", nil, ErrAuthenticationFailed
	}

	identity, err := s.provider.Identify(ctx, code)
	if err != nil {
		log.WithField("provider", s.provider.Name()).Warnf("identify user: %s", err)
		return "", nil, ErrAuthenticationFailed
	}
	identity.Provider = s.provider.Name()

	user, err := s.userRepo.UpsertByProvider(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "provider": user.Provider}).Info("user signed in")
	return token, user, nil
}

// IssueToken creates a signed bearer token for user.
func (s *authService) IssueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return signed, nil
}

func (s *authService) ParseToken(token string) (primitive.ObjectID, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, s.keyFunc)
	if err != nil || !parsed.Valid || len(claims.Audience) > 0 {
		return primitive.NilObjectID, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.jwtSecret, nil
}

// --- Google provider ---

type googleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider signs users in with Google's OAuth2 endpoints unless
// the configuration overrides them.
func NewGoogleProvider(cfg config.OAuthConfig) IdentityProvider {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (p *googleProvider) Identify(ctx context.Context, code string) (*domain.User, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, errors.New("userinfo without subject")
	}
	return &domain.User{
		Name:            info.Name,
		Email:           info.Email,
		ProviderSubject: info.Subject,
		PictureURL:      info.Picture,
	}, nil
}
