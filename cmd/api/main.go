package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"carhive/api/internal/cache"
	"carhive/api/internal/config"
	"carhive/api/internal/database"
	"carhive/api/internal/handlers"
	"carhive/api/internal/jobs"
	"carhive/api/internal/log"
	"carhive/api/internal/mail"
	"carhive/api/internal/repository"
	"carhive/api/internal/server"
	"carhive/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	notifier := mail.NewSMTPMailer(cfg.SMTP)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, notifier, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	userRepo := repository.NewUserRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)
	dashboardService := service.NewDashboardService(statsRepo, redisClient, cfg, logger)

	scheduler := jobs.NewScheduler(userRepo, dashboardService, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
