package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwise1/earthlens/config"
	deps "github.com/bwise1/earthlens/internal/debs"
	api "github.com/bwise1/earthlens/internal/http/rest"
	"github.com/bwise1/earthlens/util/logger"
	"go.uber.org/zap"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
	migrateTimeout                = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	d, err := deps.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise dependencies", zap.Error(err))
		return err
	}
	defer d.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
	err = d.DB.Migrate(migrateCtx)
	cancel()
	if err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		return err
	}

	go d.Hub.Run()

	a := api.New(cfg, d)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("ai_provider", d.AI.ProviderName()),
		)
		serveErr <- a.Serve()
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			return err
		}
		return nil
	case sig := <-stopChan:
		log.Info("shutdown requested", zap.String("signal", sig.String()), zap.Duration("grace", allowConnectionsAfterShutdown))
	}

	time.Sleep(allowConnectionsAfterShutdown)
	if err := a.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
