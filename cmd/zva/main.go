package main

import (
	"os"

	"zvaintel/internal/config"
	"zvaintel/internal/db"
	"zvaintel/internal/logger"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// stdout carries command output, logs go to stderr
	logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	openDB := func() (*gorm.DB, error) {
		database, err := db.InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return database, db.Migrate(database)
	}

	if err := newCLIApp(cfg, openDB, os.Stdout).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
