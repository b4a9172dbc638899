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

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"relay-proxy/internal/api"
	"relay-proxy/internal/auth"
	"relay-proxy/internal/config"
	"relay-proxy/internal/logger"
	"relay-proxy/internal/metrics"
	"relay-proxy/internal/proxy"
	"relay-proxy/internal/stats"
	"relay-proxy/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseFlags(args)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogFile, cfg.Verbose); err != nil {
		return err
	}
	defer logger.Sync()

	logger.L().Info("starting relay proxy",
		zap.String("listen", cfg.HTTPAddr()),
		zap.Int("users", len(cfg.Credentials())),
		zap.Duration("upstream_timeout", cfg.UpstreamTimeout),
		zap.String("upstream_proxy", cfg.UpstreamProxy),
		zap.Bool("redis_export", cfg.ExportEnabled()),
		zap.Bool("prometheus", cfg.Prometheus),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := stats.NewStore()

	transport, err := proxy.NewTransport(cfg)
	if err != nil {
		return err
	}
	relay := proxy.NewServer(cfg, auth.NewAuthenticator(cfg.Credentials()), store, transport)

	var promHandler http.Handler
	if cfg.Prometheus {
		if promHandler, err = metrics.Handler(store); err != nil {
			return fmt.Errorf("prometheus: %w", err)
		}
	}

	var exporter *storage.Exporter
	if cfg.ExportEnabled() {
		exporter = storage.NewExporter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisKeyPrefix)
		if err := exporter.CheckConnection(ctx); err != nil {
			_ = exporter.Close()
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           api.NewRouter(relay, api.NewHandler(store, promHandler)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       4 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log("HTTP proxy listening on %s", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	if exporter != nil && cfg.ExportInterval > 0 {
		g.Go(func() error {
			exporter.Run(gctx, cfg.ExportInterval, store)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Log("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	transport.CloseIdleConnections()

	return multierr.Append(err, finish(store, exporter))
}

// finish logs the final statistics and, when enabled, exports them once more.
func finish(store *stats.Store, exporter *storage.Exporter) error {
	snap := store.Snapshot()
	report := metrics.NewReport(snap)

	logger.L().Info("final summary",
		zap.String("bandwidth_usage", report.BandwidthUsage),
		zap.Uint64("total_bytes", report.TotalBytes),
		zap.Any("top_sites", report.TopSites),
	)

	if exporter == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return multierr.Combine(
		exporter.Export(ctx, snap),
		exporter.Close(),
	)
}
