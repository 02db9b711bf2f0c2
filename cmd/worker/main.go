package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/adapters/event"
	"github.com/khoahotran/superleader/adapters/llm"
	"github.com/khoahotran/superleader/adapters/persistence"
	personUC "github.com/khoahotran/superleader/internal/application/usecase/person"
	workerUC "github.com/khoahotran/superleader/internal/application/usecase/worker"
	"github.com/khoahotran/superleader/internal/config"
	domainEvent "github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/pkg/logger"
	"github.com/khoahotran/superleader/pkg/tracing"
)

const (
	maxAttempts    = 3
	retryBaseDelay = 500 * time.Millisecond
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
	appLogger.Info("Starting Superleader worker...")

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "superleader-worker")
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", err)
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	// Database
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

	llmSvc, err := llm.NewOpenAIAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("LLM disabled, interaction events skip summary regeneration", zap.Error(err))
	}

	// Repositories
	personRepo := persistence.NewPostgresPersonRepo(dbPool, appLogger)
	interactionRepo := persistence.NewPostgresInteractionRepo(dbPool)

	// Worker Use Case. Summaries generated here are not re-published.
	personUseCase := personUC.NewPersonUseCase(personRepo, interactionRepo, llmSvc, nil, appLogger)
	processEventUC := workerUC.NewProcessNetworkEventUseCase(
		persistence.NewRedisCache(redisClient, appLogger),
		personUseCase,
		appLogger,
	)

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicNetworkEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicNetworkEvents), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		evt, err := event.DecodeMessage(msg)
		if err != nil {
			appLogger.Error("Malformed event, skipping", err, zap.Int64("offset", msg.Offset))
			commitMessage(ctx, consumer, msg, appLogger)
			continue
		}

		if err := executeWithRetry(ctx, processEventUC, evt); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Committing a later offset on this partition skips it for good.
			appLogger.Error("Failed to process event, giving up", err,
				zap.String("event_id", evt.ID.String()), zap.String("event_type", string(evt.Type)))
		}

		commitMessage(ctx, consumer, msg, appLogger)
	}
}

func executeWithRetry(ctx context.Context, uc *workerUC.ProcessNetworkEventUseCase, evt domainEvent.Event) error {
	var err error
	backoff := retryBaseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = uc.Execute(ctx, evt); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}
