package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextRequestIDKey = "requestID"

	RequestIDHeader = "X-Request-ID"
)

// RequestID tags each request with an id, reusing the caller's when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(begin).String(),
			"request_id": c.GetString(ContextRequestIDKey),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}

func RequestMetrics(metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		metricsManager.GaugeRequests.Inc()
		begin := time.Now()
		defer metricsManager.GaugeRequests.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsManager.CounterRequests.WithLabelValues(c.Request.Method, status).Inc()
		metricsManager.HistogramRequestDuration.
			WithLabelValues(route, c.Request.Method, status).
			Observe(time.Since(begin).Seconds())
	}
}

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				abortWithError(c, http.StatusInternalServerError, msgInternal)
			}
		}()
		c.Next()
	}
}

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per client IP for the routes it guards.
func RateLimit(rateLimiter RequestRateLimiter, routerName string, allowedPerMin int, metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routerName + ":" + c.ClientIP()
		res, err := rateLimiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(allowedPerMin))
		if err != nil {
			log.Errorf("rate limit check for %s: %s", key, err)
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}
		if res.Allowed > 0 {
			c.Next()
			return
		}
		if metricsManager != nil {
			metricsManager.CounterRateLimitedRequests.Inc()
		}
		c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds()+0.5)))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %.1f seconds", res.RetryAfter.Seconds()))
	}
}

// Authenticate resolves the bearer token, if any, to a user id. Requests
// without a token continue anonymously; a malformed or expired token is
// rejected.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextUserIDKey, primitive.NilObjectID)
			c.Next()
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := authService.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// RequireAuth must run after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userIDFromContext(c).IsZero() {
			abortWithError(c, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// userIDFromContext returns the caller, or NilObjectID for anonymous requests.
func userIDFromContext(c *gin.Context) primitive.ObjectID {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID
	}
	id, ok := raw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID
	}
	return id
}

const msgInternal = "An unexpected error occurred"

// respondError maps service errors onto status codes. Not-found and
// access-denied share a response so callers cannot discover other
// users' records.
func respondError(c *gin.Context, err error) {
	entry := log.WithFields(log.Fields{
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(ContextRequestIDKey),
	})

	switch {
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, service.ErrAuthenticationFailed.Error())
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrWorkoutAccessDenied):
		entry.Debugf("workout lookup: %s", err)
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
	case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrExerciseAccessDenied):
		entry.Debugf("exercise lookup: %s", err)
		abortWithError(c, http.StatusNotFound, service.ErrExerciseNotFound.Error())
	case errors.Is(err, service.ErrNoPriorWorkout):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExportDisabled):
		abortWithError(c, http.StatusNotImplemented, err.Error())
	default:
		entry.Errorf("unhandled error: %s", err)
		abortWithError(c, http.StatusInternalServerError, msgInternal)
	}
}

// pathObjectID parses the named path parameter, answering 400 on failure.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
