package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/adapters/event"
	httpAdapter "github.com/khoahotran/superleader/adapters/http"
	"github.com/khoahotran/superleader/adapters/llm"
	"github.com/khoahotran/superleader/adapters/persistence"
	actionplanUC "github.com/khoahotran/superleader/internal/application/usecase/actionplan"
	groupUC "github.com/khoahotran/superleader/internal/application/usecase/group"
	networkUC "github.com/khoahotran/superleader/internal/application/usecase/network"
	onboardingUC "github.com/khoahotran/superleader/internal/application/usecase/onboarding"
	personUC "github.com/khoahotran/superleader/internal/application/usecase/person"
	"github.com/khoahotran/superleader/internal/config"
	domainEvent "github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/pkg/auth"
	"github.com/khoahotran/superleader/pkg/eventbus"
	"github.com/khoahotran/superleader/pkg/logger"
	"github.com/khoahotran/superleader/pkg/metrics"
	"github.com/khoahotran/superleader/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Superleader API server...", zap.String("env", cfg.App.Env))

	// Tracing
	tp, err := tracing.NewTracerProvider(cfg, appLogger, "superleader-api")
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", err)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", err)
			}
		}()
	}

	// Database
	if cfg.DB.MigrateOnStart {
		if err := persistence.RunMigrations(cfg.DB.DSN); err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}
		appLogger.Info("Migrations applied")
	}

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Events
	kafkaProducer, err := event.NewKafkaProducer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka producer", err)
	}
	defer kafkaProducer.Close()

	bus := eventbus.New[domainEvent.Event]()
	forwarder := event.NewForwarder(bus, kafkaProducer, appLogger)
	defer forwarder.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsCollector := metrics.NewCollector(registry)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	cache := persistence.NewRedisCache(redisClient, appLogger)
	llmSvc, err := llm.NewOpenAIAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("LLM disabled, person summaries will fail", zap.Error(err))
	}

	// Repositories
	networkRepo := persistence.NewPostgresNetworkRepo(dbPool, appLogger)
	personRepo := persistence.NewPostgresPersonRepo(dbPool, appLogger)
	interactionRepo := persistence.NewPostgresInteractionRepo(dbPool)
	groupRepo := persistence.NewPostgresGroupRepo(dbPool)
	taskRepo := persistence.NewPostgresTaskRepo(dbPool, appLogger)
	onboardingRepo := persistence.NewPostgresOnboardingRepo(dbPool)

	// Use Cases
	networkUseCase := networkUC.NewNetworkUseCase(networkRepo, cache, cfg.Cache.CompletenessTTL, metricsCollector, appLogger)
	actionPlanUseCase := actionplanUC.NewActionPlanUseCase(taskRepo, bus, appLogger)
	onboardingUseCase := onboardingUC.NewOnboardingUseCase(onboardingRepo, bus, appLogger)
	personUseCase := personUC.NewPersonUseCase(personRepo, interactionRepo, llmSvc, bus, appLogger)
	membershipUseCase := groupUC.NewMembershipUseCase(groupRepo, personRepo, cache, bus, appLogger)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Logger:     appLogger,
		JWT:        jwtSvc,
		Gatherer:   registry,
		Network:    httpAdapter.NewNetworkHandler(networkUseCase),
		ActionPlan: httpAdapter.NewActionPlanHandler(actionPlanUseCase),
		Onboarding: httpAdapter.NewOnboardingHandler(onboardingUseCase),
		Person:     httpAdapter.NewPersonHandler(personUseCase),
		Group:      httpAdapter.NewGroupHandler(membershipUseCase),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
