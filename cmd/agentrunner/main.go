package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/executor"
	"github.com/orbitdesk-ai/orbitdesk/internal/api"
	"github.com/orbitdesk-ai/orbitdesk/internal/messaging"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/config"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/database"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/logger"
	"github.com/orbitdesk-ai/orbitdesk/internal/pkg/queue"
	pkgredis "github.com/orbitdesk-ai/orbitdesk/internal/pkg/redis"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("service", "agentrunner").
		Msg("Starting agent runner service")

	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	queueClient := queue.NewClient(&cfg.Redis)
	defer queueClient.Close()

	// Realtime delivery worker
	queueServer := queue.NewServer(&cfg.Redis, cfg.Runner.QueueConcurrency)
	deliveryWorker := messaging.NewDeliveryWorker(redisClient)
	queueServer.HandleFunc(queue.TypeMessageDelivery, deliveryWorker.HandleMessageDelivery)

	if err := queueServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start queue server")
	}

	runnerCfg := &agentrun.Config{
		TickInterval:    cfg.Runner.TickInterval,
		BatchSize:       cfg.Runner.BatchSize,
		LeaderKey:       cfg.Runner.LeaderKey,
		LeaderTTL:       cfg.Runner.LeaderTTL,
		StuckThreshold:  cfg.Runner.StuckThreshold,
		RetentionDays:   cfg.Runner.RetentionDays,
		ShutdownTimeout: cfg.Runner.ShutdownTimeout,
	}

	runner := agentrun.New(runnerCfg, &agentrun.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Executor:  executor.NewAnthropicExecutor(&cfg.Anthropic),
		Messenger: messaging.NewMessenger(db, queueClient),
	})

	if err := runner.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start agent runner")
	}

	// Health endpoint
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(runner),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Health server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	server.Close()
	queueServer.Shutdown()

	if err := runner.Stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping agent runner")
	}

	log.Info().Msg("Agent runner stopped")
}
