package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leca/menudesk/internal/app"
	"github.com/leca/menudesk/internal/config"
	"github.com/leca/menudesk/internal/router"
	"github.com/leca/menudesk/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open backends", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	purger, err := session.NewPurger(a.Manager, cfg.SessionPurgeSchedule, logger)
	if err != nil {
		slog.Error("failed to schedule session purge", "error", err)
		os.Exit(1)
	}
	purger.Start()
	defer func() { <-purger.Stop().Done() }()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.New(a).Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", cfg.ListenAddr,
		"local_store", cfg.LocalStore, "session_db", cfg.SessionDBDriver, "object_store", cfg.ObjectStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
