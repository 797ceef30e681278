package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zvaintel/internal/app"
	"zvaintel/internal/config"
	"zvaintel/internal/controllers"
	"zvaintel/internal/db"
	"zvaintel/internal/logger"
	"zvaintel/internal/routes"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	database, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}
	defer services.Close()

	registryController := &controllers.RegistryController{Records: services.Store}
	vendorController := &controllers.VendorController{Researcher: services.Research, Searcher: services.Aggregator}

	if cfg.RedisURL != "" {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		registryController.Queue = client
		vendorController.Queue = client
	} else {
		log.Warn().Msg("REDIS_URL is not set, background tasks are disabled")
	}

	router := routes.SetupRouter(routes.Controllers{
		Registry:  registryController,
		Vendors:   vendorController,
		Suppliers: &controllers.SupplierController{Matcher: services.Matcher},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
