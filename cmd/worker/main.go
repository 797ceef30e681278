package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"zvaintel/internal/app"
	"zvaintel/internal/config"
	"zvaintel/internal/db"
	"zvaintel/internal/logger"
	"zvaintel/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
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
	log.Info().Msg("worker connected to database")

	services, err := app.New(context.Background(), cfg, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}
	defer services.Close()

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	extractTask, err := tasks.NewExtractRegistryTask(nil, nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create extract registry task")
	}

	// daily at 03:00
	entryID, err := scheduler.Register("0 3 * * *", extractTask, asynq.Queue("default"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register periodic task")
	}
	log.Info().Str("task", extractTask.Type()).Str("entry_id", entryID).Msg("registered periodic task")

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 3,
			},
			Concurrency: 4,
		},
	)

	taskProcessor := tasks.NewTaskProcessor(services.Extractor, services.Store, services.Research, services.Options())

	mux := asynq.NewServeMux()
	mux.HandleFunc(
		tasks.TypeTaskExtractRegistry,
		taskProcessor.HandleExtractRegistryTask,
	)
	mux.HandleFunc(
		tasks.TypeTaskResearchVendor,
		taskProcessor.HandleResearchVendorTask,
	)

	go func() {
		log.Info().Msg("starting asynq scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatal().Err(err).Msg("could not run asynq scheduler")
		}
	}()

	go func() {
		log.Info().Msg("starting asynq worker server...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("could not run asynq worker server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info().Msg("shutdown signal received, shutting down gracefully...")

	scheduler.Shutdown()
	log.Info().Msg("asynq scheduler shut down")

	srv.Shutdown()
	log.Info().Msg("asynq worker server shut down")
}
