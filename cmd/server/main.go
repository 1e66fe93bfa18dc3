package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/medemi-triage-server/internal/api"
	"github.com/medemi-triage-server/internal/app"
	"github.com/medemi-triage-server/internal/config"
)

func main() {
	configFile := pflag.String("config", "", "path to config.yaml (default: search ., ./config, /etc/medemi-triage)")
	pflag.Parse()

	// Load configuration
	configManager, err := config.NewManager(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if args := pflag.Args(); len(args) > 0 && args[0] == "migrate" {
		if err := runMigrate(ctx, configManager, logger, args[1:]); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		return
	}

	application, err := app.Build(ctx, configManager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	server := api.NewServer(cfg.Server, application.APIDependencies(), logger)

	logger.WithField("addr", cfg.Server.Host).WithField("port", cfg.Server.Port).Info("Starting triage API server")
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		application.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
