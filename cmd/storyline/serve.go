package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/config"
	chiTransport "github.com/kailas-cloud/storyline/internal/transport/chi"
	indexinguc "github.com/kailas-cloud/storyline/internal/usecase/indexing"
	"github.com/kailas-cloud/storyline/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stories HTTP API",
		Long:  "Run the stories HTTP API. Configuration is read from config/$ENV.yaml (default local).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	logger.Info("Starting storyline API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("indexing_mode", string(a.indexer.Mode())),
	)

	if err := a.ensureIndex(ctx); err != nil {
		return err
	}

	if a.cfg.Indexing.ReindexOnStart {
		// deferred after a.Close, so the sweep is stopped before the store goes away
		stopReindex := startBackgroundReindex(ctx, a.indexer, logger)
		defer stopReindex()
	}

	server := chiTransport.NewServer(a.storySvc, a.search, a.health)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSOrigins:    a.cfg.HTTP.CORSOrigins,
		RequestTimeout: config.Seconds(a.cfg.HTTP.RequestTimeoutSec),
	}, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.Seconds(a.cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(a.cfg.HTTP.WriteTimeoutSec),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(a.cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

type reindexer interface {
	Reindex(ctx context.Context, dryRun bool) (indexinguc.ReindexReport, error)
}

// startBackgroundReindex runs a reindex sweep in the background. The returned func
// cancels the sweep and blocks until it has returned.
func startBackgroundReindex(ctx context.Context, ix reindexer, logger *zap.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := ix.Reindex(ctx, false); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Startup reindex failed", zap.Error(err))
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}
