package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campushq/notification-engine/config"
	"github.com/campushq/notification-engine/internal/api"
	"github.com/campushq/notification-engine/internal/bulk"
	"github.com/campushq/notification-engine/internal/channel"
	"github.com/campushq/notification-engine/internal/dispatch"
	"github.com/campushq/notification-engine/internal/inbox"
	"github.com/campushq/notification-engine/internal/preference"
	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/retry"
	"github.com/campushq/notification-engine/internal/tracker"
	"github.com/campushq/notification-engine/internal/worker"
)

// @title           Notification Engine
// @version         1.0
// @description     Multi-channel notification dispatch and delivery tracking

// @host      localhost:8080
// @BasePath  /api
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()
	dbPool, redisClient, err := setupDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to setup dependencies: %v", err)
	}
	defer dbPool.Close()
	defer redisClient.Close()

	jobManager, server := buildApplication(dbPool, redisClient, &wg, ctx, cfg, logger)

	startBackgroundJob(jobManager, ctx, logger)
	startServer(server, logger)

	waitForShutdown(server, cancel, &wg, logger)

	logger.Info("server gracefully stopped")
}

func setupDependencies(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, *redis.Client, error) {
	dbPool, err := repository.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	redisClient, err := inbox.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to establish Redis connection: %w", err)
	}

	return dbPool, redisClient, nil
}

func buildApplication(
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	wg *sync.WaitGroup,
	appCtx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*worker.JobManager, *http.Server) {
	logRepo := repository.NewMessageLogRepository(dbPool)
	directory := repository.NewPreferenceRepository(dbPool)
	inboxStore := inbox.NewRedisStore(redisClient)

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	adapters := []channel.Adapter{
		channel.NewEmailAdapter(channel.ProviderConfig{
			BaseURL: cfg.Email.BaseURL,
			APIKey:  cfg.Email.APIKey,
			Timeout: cfg.ProviderTimeout,
		}, cfg.EmailFrom, httpClient),
		channel.NewSMSAdapter(channel.ProviderConfig{
			BaseURL: cfg.SMS.BaseURL,
			APIKey:  cfg.SMS.APIKey,
			Timeout: cfg.ProviderTimeout,
		}, cfg.SMSSender, httpClient),
		channel.NewChatAdapter(channel.ProviderConfig{
			BaseURL: cfg.Chat.BaseURL,
			APIKey:  cfg.Chat.APIKey,
			Timeout: cfg.ProviderTimeout,
		}, httpClient),
		channel.NewInAppAdapter(inboxStore),
	}

	retryPolicy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	dispatcher := dispatch.NewDispatcher(
		adapters,
		retryPolicy,
		preference.NewResolver(),
		logRepo,
		catalogRenderer{},
		directory,
		logger,
	)

	limiter := bulk.NewRateLimiter(cfg.BulkRatePerMinute, time.Minute)
	bulkController := bulk.NewController(dispatcher, limiter, cfg.BulkWorkers, logger)

	deliveryTracker := tracker.New(logRepo, map[string]string{
		tracker.ProviderMailpost: cfg.Email.Secret,
		tracker.ProviderSMSGate:  cfg.SMS.Secret,
		tracker.ProviderChatBiz:  cfg.Chat.Secret,
	}, logger)

	jobManager := worker.NewJobManager(logRepo, cfg.ReconcileInterval, cfg.StuckThreshold, logger, wg)

	apiHandler := api.NewHandler(
		dispatcher,
		bulkController,
		deliveryTracker,
		logRepo,
		inboxStore,
		jobManager,
		actorPermissions{logger: logger},
		appCtx,
	)

	router := api.NewRouter(apiHandler)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	logger.Info("application components built")
	return jobManager, server
}

func startBackgroundJob(jobManager *worker.JobManager, ctx context.Context, logger *slog.Logger) {
	if err := jobManager.Start(ctx); err != nil {
		logger.Error("unexpected error while starting reconciliation job", "error", err)
	}
}

func startServer(server *http.Server, logger *slog.Logger) {
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Unexpected error while starting server: %v", err)
		}
	}()
}

func waitForShutdown(server *http.Server, cancelApp context.CancelFunc, wg *sync.WaitGroup, logger *slog.Logger) {
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	<-shutdownChan

	logger.Info("shutting down gracefully")

	// wait HTTP server 15 seconds to shut down
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("unexpected error while shutting down server", "error", err)
	}

	cancelApp()
	wg.Wait()
}
