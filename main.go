package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyberguard-portal/api"
	"cyberguard-portal/config"
	"cyberguard-portal/core/appbootstrap"
	"cyberguard-portal/core/store"
	"cyberguard-portal/core/utils"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	logger := utils.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg, logger)
	if err != nil {
		logger.Errorf("db: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		logger.Errorf("db: migrations: %v", err)
		os.Exit(1)
	}
	if err := store.SeedReferenceData(ctx, db, logger); err != nil {
		logger.Errorf("db: seed: %v", err)
		os.Exit(1)
	}

	server := api.NewServer(appbootstrap.ComposeRuntime(cfg, db, logger))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http: listening on %s", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Infof("http: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("http: shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http: %v", err)
			os.Exit(1)
		}
	}
}
