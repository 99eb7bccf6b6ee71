package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/patrickford1/cta-tracker/internal/api"
	"github.com/patrickford1/cta-tracker/internal/arrivals"
	"github.com/patrickford1/cta-tracker/internal/common/config"
	"github.com/patrickford1/cta-tracker/internal/common/logger"
	"github.com/patrickford1/cta-tracker/internal/common/notify"
	"github.com/patrickford1/cta-tracker/internal/upstream"
)

func main() {
	// Load .env file if it exists; env vars alone are fine too.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(
		logger.ParseLevel(cfg.Logging.Level),
		logger.ConsoleWriter(),
		logger.FileWriter(cfg.Logging.FilePath),
	)

	log.Info("CTA Tracker starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"listen_addr", cfg.Server.ListenAddr,
	)

	httpClient := upstream.NewClient(cfg.Server.HTTPTimeout)
	notifier := notify.NewClient(cfg.Logging.DiscordURL)
	manager := arrivals.NewManager(cfg, httpClient, notifier, log)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A feed with no key or stop configured can never succeed, so a
	// validation failure here stops startup entirely.
	if err := manager.Start(ctx); err != nil {
		log.Fatal("Failed to start arrivals manager", "error", err)
	}

	server := api.NewServer(manager, log)
	go func() {
		if err := server.Listen(cfg.Server.ListenAddr); err != nil {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutdown signal received")

	if err := server.Shutdown(); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	manager.Stop()

	log.Info("CTA Tracker stopped")
}
