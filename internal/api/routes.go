package api

import (
	"net/http"

	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	AuthService        service.AuthService
	WorkoutService     service.WorkoutService
	ExerciseService    service.ExerciseService
	PreferencesService service.PreferencesService
	FeedbackService    service.FeedbackService
	ExportService      service.ExportService

	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer // served at /metrics when set

	// RateLimiter guards /api/v1 when set.
	RateLimiter        RequestRateLimiter
	RateLimitPerMinute int
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService)
	workoutHandler := NewWorkoutHandler(deps.WorkoutService)
	exerciseHandler := NewExerciseHandler(deps.ExerciseService)
	accountHandler := NewAccountHandler(deps.PreferencesService, deps.FeedbackService, deps.ExportService)

	router.Use(RequestID(), PanicRecovery(deps.Metrics), LogRequest())
	if deps.Metrics != nil {
		router.Use(RequestMetrics(deps.Metrics))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		apiV1.Use(RateLimit(deps.RateLimiter, "api", deps.RateLimitPerMinute, deps.Metrics))
	}
	apiV1.Use(Authenticate(deps.AuthService))

	authGroup := apiV1.Group("/auth")
	{
		authGroup.GET("/google/login", authHandler.Login)
		authGroup.GET("/google/callback", authHandler.Callback)
	}

	// --- Routes open to anonymous callers ---
	apiV1.GET("/workouts", workoutHandler.ListWorkouts)
	apiV1.GET("/exercises", exerciseHandler.GetAllExercises)
	apiV1.GET("/exercises/search", exerciseHandler.SearchExercises)

	protected := apiV1.Group("")
	protected.Use(RequireAuth())
	{
		protected.GET("/me", authHandler.Me)

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.POST("/clone-latest", workoutHandler.CloneLatestWorkout)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.GET("/:id/detail", workoutHandler.GetWorkoutDetail)
			workoutGroup.GET("/:id/analytics", workoutHandler.GetWorkoutAnalytics)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateUserExercise)
			exerciseGroup.GET("/last-performance", workoutHandler.GetLastExercisePerformance)
			exerciseGroup.GET("/user/:id", exerciseHandler.GetUserExercise)
			exerciseGroup.PUT("/user/:id", exerciseHandler.UpdateUserExercise)
			exerciseGroup.DELETE("/user/:id", exerciseHandler.DeleteUserExercise)
			exerciseGroup.GET("/user/:id/usage", exerciseHandler.CheckExerciseUsage)
		}

		protected.GET("/preferences", accountHandler.GetPreferences)
		protected.PATCH("/preferences", accountHandler.UpdatePreferences)
		protected.POST("/feedback", accountHandler.CreateFeedback)
		protected.POST("/export", accountHandler.ExportWorkouts)
	}
}
