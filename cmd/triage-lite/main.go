// Package main runs a triage dialogue on the terminal.
// This version requires no external databases - sessions live in SQLite under
// the data directory and extraction results are cached in memory.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/medemi-triage-server/internal/config"
	"github.com/medemi-triage-server/internal/console"
	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/service"
	"github.com/medemi-triage-server/internal/sessionstore"
	"github.com/medemi-triage-server/pkg/external"
)

func main() {
	cfg := config.LoadLiteConfig()

	logger, err := config.NewLogger(cfg.LoggingConfig())
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}
	logger.WithField("data_dir", cfg.DataDir).Debug("Using data directory")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		// The console blocks on stdin; closing it ends the dialogue.
		_ = os.Stdin.Close()
	}()

	store, err := sessionstore.New(ctx, cfg.SessionConfig(), sessionstore.Options{Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open session store")
	}
	defer store.Close()

	extractorCfg := cfg.ExtractorConfig()
	extractor, err := external.NewLLMExtractor(external.NewOpenAIClient(extractorCfg), extractorCfg, external.ExtractorOptions{}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create extractor")
	}

	doctors := directory.Load(cfg.DirectoryPath, logger)
	triage := service.NewTriageService(logger, store, extractor, doctors)

	c := console.New(triage, os.Stdin, os.Stdout, console.Options{
		Reports:   report.NewGenerator(cfg.FontPath, logger),
		ReportDir: cfg.ReportDir(),
		Logger:    logger,
	})

	if err := c.Run(ctx); err != nil && !errors.Is(err, console.ErrQuit) {
		logger.WithError(err).Error("Triage dialogue failed")
		store.Close()
		os.Exit(1)
	}
}
