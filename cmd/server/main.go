package main

import (
	"fmt"
	"os"

	"github.com/starlab-dev/starlab/internal/config"
	"github.com/starlab-dev/starlab/internal/logger"
	"github.com/starlab-dev/starlab/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load("json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	srv := server.New(cfg, log, version)

	log.Info().Str("version", version).Str("app", cfg.App.Name).Msg("Starting mock API server...")

	// Start HTTP server (this blocks until SIGINT/SIGTERM)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
