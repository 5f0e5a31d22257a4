package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/agencia-go/internal/config"
	"github.com/eshaffer321/agencia-go/internal/logger"
	"github.com/eshaffer321/agencia-go/internal/stubserver"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := stubserver.New(stubserver.Options{Logger: log})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stub server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", version).Msg("Starting agencia stub backend")
	for _, seed := range stubserver.DefaultSeeds() {
		log.Info().Str("email", seed.Email).Str("role", seed.Role).Msg("Seeded account")
	}

	if err := srv.Run(ctx, cfg.Stub.Addr); err != nil {
		log.Fatal().Err(err).Msg("Stub server failed")
	}
}
