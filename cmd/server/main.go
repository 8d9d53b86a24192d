package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepwise/interview/internal/config"
	"prepwise/interview/internal/events"
	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/jobs"
	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/llm/gemini"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/prompts"
	"prepwise/interview/internal/repositories"
	mongorepo "prepwise/interview/internal/repositories/mongo"
	"prepwise/interview/internal/routers"
	"prepwise/interview/internal/utils"
	"prepwise/interview/internal/vapi"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type routeHandlers struct {
	action    *handlers.ActionHandler
	interview *handlers.InterviewHandler
	calls     *handlers.CallHandler
	health    *handlers.HealthHandler
}

func registerRoutes(router *chi.Mux, h routeHandlers, cfg *config.Config) {
	routers.HealthRoutes(router, h.health)
	routers.ActionRoutes(router, h.action)
	routers.InterviewRoutes(router, h.interview, cfg.JWTSecret)
	routers.CallRoutes(router, h.calls, cfg.JWTSecret)
}

// checkPromptVariant fails when the configured variant has no questions template
func checkPromptVariant(pm prompts.PromptProvider, variant string) error {
	if _, ok := pm.GetTemplates()["questions"][variant]; !ok {
		return fmt.Errorf("unknown questions prompt variant %q", variant)
	}
	return nil
}

func newRouter(cfg *config.Config, h routeHandlers) *chi.Mux {
	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	registerRoutes(router, h, cfg)
	return router
}

// initCallStore opens the call audit database. It returns nil without error
// when no Postgres host is configured.
func initCallStore(cfg *config.Config) (*repositories.CallRepository, error) {
	dsn := cfg.Postgres.DSN()
	if dsn == "" {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := repositories.NewCallRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

func initInterviewStore(ctx context.Context, cfg *config.Config) (*mongorepo.Client, *mongorepo.InterviewRepo, error) {
	if cfg.MongoURI == "" {
		return nil, nil, nil
	}

	client, err := mongorepo.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	repo, err := mongorepo.NewInterviewRepo(ctx, client, cfg.InterviewsCollection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, repo, nil
}

func initPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		return events.NopPublisher{}, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return events.NopPublisher{}, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return events.NewRedisPublisher(rdb), rdb, nil
}

func main() {
	logger, err := utils.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Bool("vapi_configured", cfg.VapiPrivateKey != ""))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}
	if err := checkPromptVariant(promptManager, cfg.PromptVariant); err != nil {
		logger.Fatal("Invalid QUESTIONS_PROMPT_VARIANT", zap.Error(err))
	}

	registry := llm.NewRegistry()
	gemini.Register(registry)

	aiProvider, err := registry.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	mongoClient, interviewRepo, err := initInterviewStore(startupCtx, cfg)
	if err != nil {
		logger.Error("Failed to initialize interview store, question generation will fail", zap.Error(err))
	} else if interviewRepo == nil {
		logger.Warn("MONGO_URI not set, question generation will fail")
	}

	// handlers take interfaces, so absent stores must stay untyped nils
	var (
		interviewStore  handlers.InterviewStore
		interviewReader handlers.InterviewReader
		storePinger     handlers.Pinger
	)
	if interviewRepo != nil {
		interviewStore = interviewRepo
		interviewReader = interviewRepo
		storePinger = mongoClient
	}

	vapiClient := vapi.NewClient(cfg.VapiBaseURL, cfg.VapiPrivateKey, &http.Client{Timeout: 30 * time.Second})

	actionHandler := handlers.NewActionHandler(aiProvider, promptManager, interviewStore, vapiClient, logger)
	actionHandler.SetPromptVariant(cfg.PromptVariant)
	interviewHandler := handlers.NewInterviewHandler(interviewReader, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, storePinger)

	publisher, rdb, err := initPublisher(startupCtx, cfg)
	if err != nil {
		logger.Error("Failed to initialize event publisher, interview events are disabled", zap.Error(err))
	}
	actionHandler.SetPublisher(publisher)

	var (
		retentionJob *jobs.CallRetentionJob
		callLister   handlers.CallLister
	)
	callRepo, err := initCallStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize call audit store, call records are disabled", zap.Error(err))
	}
	if callRepo != nil {
		actionHandler.SetCallRecorder(callRepo)
		callLister = callRepo

		retentionJob = jobs.NewCallRetentionJob(callRepo, cfg.CallRetentionSchedule, cfg.CallRetention, logger)
		if err := retentionJob.Start(); err != nil {
			logger.Error("Failed to start call retention job", zap.Error(err))
			retentionJob = nil
		}
	}

	router := newRouter(cfg, routeHandlers{
		action:    actionHandler,
		interview: interviewHandler,
		calls:     handlers.NewCallHandler(callLister, logger),
		health:    healthHandler,
	})

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if retentionJob != nil {
		retentionJob.Stop()
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}

	logger.Info("Interview service exited")
}
