package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/events"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/platform/gemini"
	"github.com/phrazzld/mnemo-api/internal/platform/llmhttp"
	"github.com/phrazzld/mnemo-api/internal/platform/postgres"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
	"github.com/phrazzld/mnemo-api/internal/service/review"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore  store.UserStore
	deckStore  store.DeckStore
	topicStore store.TopicStore
	taskStore  task.TaskStore

	// Service interfaces
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	srsService        srs.Service
	userService       service.UserService
	deckService       service.DeckService
	topicService      *service.TopicServiceImpl
	reviewService     review.ReviewService
	generationService service.GenerationService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger, cfg.Auth.BcryptCost)
	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.topicStore = postgres.NewPostgresTopicStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Initialize the multi-provider card generator
	generator, err := setupGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card generator: %w", err)
	}
	logger.Info("card generator initialized",
		"provider_count", len(generation.Providers()))

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize SRS scheduler and weighted sampler
	app.srsService = srs.NewDefaultService()
	sampler := srs.NewSampler(nil)

	// Initialize services
	app.userService = service.NewUserService(app.userStore, app.passwordVerifier, db, logger)
	app.deckService = service.NewDeckService(app.deckStore, db, logger)
	app.topicService = service.NewTopicService(
		app.topicStore,
		app.deckStore,
		app.srsService,
		db,
		logger,
	)
	app.reviewService = review.NewReviewService(
		app.topicStore,
		app.srsService,
		sampler,
		db,
		logger,
	)

	app.generationService, err = service.NewGenerationService(
		app.userStore,
		app.topicStore,
		app.deckStore,
		generator,
		app.eventEmitter,
		cfg.LLM,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	// Create the task factory; the generation service doubles as the task
	// pipeline's generator so provider keys resolve at execution time
	taskFactory := task.NewTopicGenerationTaskFactory(
		app.topicService,
		app.generationService,
		logger,
	)

	// Initialize and start the task runner. The reconstructor must be
	// registered before Start so recovered tasks are rebuilt with live
	// dependencies.
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	app.taskRunner.RegisterReconstructor(task.TaskTypeTopicGeneration, taskFactory.ReconstructTask)

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	// Register the event handler that turns generation request events into
	// queued tasks
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger))
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupGenerator builds the provider-dispatching card generator with every
// supported provider registered. The Gemini client talks to Google's SDK; the
// remaining providers share the OpenAI-compatible HTTP client except for
// Anthropic, which has its own wire format.
func setupGenerator(cfg *config.Config, logger *slog.Logger) (generation.CardGenerator, error) {
	multi := generation.NewMultiProviderGenerator(logger)

	googleGen, err := gemini.NewGenerator(logger.With("component", "gemini_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini generator: %w", err)
	}
	multi.Register(generation.ProviderGoogle, googleGen)

	retryAttempts := uint(1)
	if cfg.LLM.MaxRetries > 0 {
		retryAttempts = uint(cfg.LLM.MaxRetries)
	}
	multi.Register(generation.ProviderOpenAI, llmhttp.NewOpenAIClient(logger, retryAttempts))
	multi.Register(generation.ProviderAnthropic, llmhttp.NewAnthropicClient(logger, retryAttempts))
	multi.Register(generation.ProviderXAI, llmhttp.NewXAIClient(logger, retryAttempts))

	return multi, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
