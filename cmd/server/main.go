package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"liftlog/workout-app/internal/api"
	"liftlog/workout-app/internal/cache"
	"liftlog/workout-app/internal/config"
	"liftlog/workout-app/internal/logging"
	"liftlog/workout-app/internal/metrics"
	"liftlog/workout-app/internal/repository"
	"liftlog/workout-app/internal/repository/memory"
	"liftlog/workout-app/internal/repository/mongo"
	"liftlog/workout-app/internal/service"
	"liftlog/workout-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type repositories struct {
	users           repository.UserRepository
	globalExercises repository.GlobalExerciseRepository
	userExercises   repository.UserExerciseRepository
	workouts        repository.WorkoutRepository
	preferences     repository.PreferencesRepository
	feedback        repository.FeedbackRepository
}

// closer releases one resource on shutdown.
type closer func() error

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infof("starting workout server, database driver: %s", cfg.Database.Driver)

	if err := run(cfg); err != nil {
		log.Fatalf("server stopped with error: %s", err)
	}
	log.Info("server exiting")
}

func run(cfg config.Config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		// release in reverse order of acquisition
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	// --- Database ---
	repos, dbCloser, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if dbCloser != nil {
		closers = append(closers, dbCloser)
	}

	// --- Metrics & cache ---
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, prometheus.DefaultRegisterer)
	exerciseCache := cache.NewExerciseCache(cfg.Cache.SizeMB, cfg.Cache.TTL, metricsManager)

	// --- Storage ---
	var objectStorage storage.ObjectStorage
	if cfg.S3.BucketName != "" {
		objectStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return err
		}
	} else {
		log.Warn("s3.bucket_name not set, data export is disabled")
	}

	// --- Services ---
	exerciseService := service.NewExerciseService(repos.globalExercises, repos.userExercises, repos.workouts, exerciseCache, metricsManager)
	if _, err := exerciseService.SeedGlobalExercises(ctx); err != nil {
		return err
	}
	workoutService := service.NewWorkoutService(repos.workouts, repos.preferences, exerciseService, metricsManager)
	authService := service.NewAuthService(repos.users, service.NewGoogleProvider(cfg.OAuth), cfg.JWT.Secret, cfg.JWT.Expiration)

	deps := api.Dependencies{
		AuthService:        authService,
		WorkoutService:     workoutService,
		ExerciseService:    exerciseService,
		PreferencesService: service.NewPreferencesService(repos.preferences),
		FeedbackService:    service.NewFeedbackService(repos.feedback),
		ExportService:      service.NewExportService(workoutService, exerciseService, objectStorage),
		Metrics:            metricsManager,
		Gatherer:           prometheus.DefaultGatherer,
	}

	// --- Rate limiting ---
	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       0, // use default DB
		})
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("failed to ping redis: %s", err)
		}
		deps.RateLimiter = redis_rate.NewLimiter(rdb)
		deps.RateLimitPerMinute = cfg.RateLimit.PerMinute
	}

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	api.SetupRoutes(router, deps)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repositories, closer, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using the in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:           store.Users(),
			globalExercises: store.GlobalExercises(),
			userExercises:   store.UserExercises(),
			workouts:        store.Workouts(),
			preferences:     store.Preferences(),
			feedback:        store.Feedback(),
		}, nil, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.Name)
	log.Infof("connected to mongodb database %s", cfg.Name)

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	mongo.EnsureIndexes(indexCtx, db)

	return &repositories{
		users:           mongo.NewMongoUserRepository(db),
		globalExercises: mongo.NewMongoGlobalExerciseRepository(db),
		userExercises:   mongo.NewMongoUserExerciseRepository(db),
		workouts:        mongo.NewMongoWorkoutRepository(db),
		preferences:     mongo.NewMongoPreferencesRepository(db),
		feedback:        mongo.NewMongoFeedbackRepository(db),
	}, func() error { return mongo.DisconnectDB(client) }, nil
}
