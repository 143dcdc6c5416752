package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/server"
	"github.com/yourusername/linkedin-outreach/internal/service"
	"github.com/yourusername/linkedin-outreach/internal/session"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

const AppVersion = "1.0.0"

func main() {
	displayWarningBanner()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var fileOpts *logger.FileOptions
	if cfg.Logging.ToFile {
		fileOpts = &logger.FileOptions{
			Path:       cfg.Logging.FilePath,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	if err := logger.Init(cfg.Logging.Level, fileOpts); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("LinkedIn outreach service started", "version", AppVersion)
	logger.Warn("This tool is for EDUCATIONAL purposes only and violates LinkedIn's Terms of Service")

	logger.Info("Opening database", "path", cfg.Database.Path)
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", "error", err)
	}
	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer store.Close()

	if err := store.CleanupOldActions(); err != nil {
		logger.Warn("Failed to prune old action records", "error", err)
	}

	if stats, err := store.Stats(); err == nil {
		logger.Info("Outreach history",
			"total_outcomes", stats["total_outcomes"],
			"successful_requests", stats["successful_requests"],
			"total_engagements", stats["total_engagements"],
		)
	}

	sessions := session.NewManager(session.Credentials{
		Email:    cfg.LinkedIn.Email,
		Password: cfg.LinkedIn.Password,
	}, session.Options{
		Headless: cfg.Stealth.Headless,
		Pacing: browser.Pacing{
			TypoRate:       cfg.Stealth.TypoRate,
			MinActionDelay: cfg.GetMinActionDelay(),
			MaxActionDelay: cfg.GetMaxActionDelay(),
		},
	})
	defer sessions.Close()

	svc := service.New(cfg, sessions, store)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.New(svc).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("HTTP server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}

	logger.Info("Shutdown complete")
}

func displayWarningBanner() {
	banner := `
===============================================================
  LinkedIn Outreach Service - EDUCATIONAL USE ONLY
  Automating LinkedIn violates its Terms of Service and can
  get the account restricted or banned. Use a test account.
===============================================================
`
	fmt.Println(banner)
}
