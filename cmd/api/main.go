// Package main is the entry point for the nimbus weather dashboard API.
//
// It loads configuration from the environment, wires the upstream provider
// clients, the reduction service, and optional persistence (recents database,
// snapshot bucket, CloudWatch metrics), then serves HTTP with graceful
// shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nimbus/internal/api/handlers"
	"nimbus/internal/archive"
	"nimbus/internal/config"
	"nimbus/internal/core"
	"nimbus/internal/dashboard"
	"nimbus/internal/db"
	"nimbus/internal/observability"
	"nimbus/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("nimbus API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx := context.Background()

	// AWS-backed collaborators are optional; SDK config is loaded once when
	// either the snapshot bucket or CloudWatch metrics are configured.
	var metrics observability.MetricsCollector = observability.NoopMetrics{}
	var archiver *archive.Archiver
	if cfg.AWS.SnapshotBucket != "" || cfg.Observability.MetricsEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		if cfg.AWS.SnapshotBucket != "" {
			s3Client := s3.NewFromConfig(awsCfg)
			archiver = archive.NewArchiver(archive.NewAWSS3Client(s3Client), cfg.AWS.SnapshotBucket, logger)
		}
		if cfg.Observability.MetricsEnabled {
			cwClient := cloudwatch.NewFromConfig(awsCfg)
			metrics = observability.NewCloudWatchMetrics(cwClient, cfg.Observability.MetricsNamespace, logger)
		}
	}
	srv.Metrics = metrics

	// Upstream provider clients share one HTTP client, retry policy, and
	// metrics recorder; each gets its own circuit breaker.
	httpClient := &http.Client{Timeout: cfg.Upstream.RequestTimeout}
	retry := upstream.DefaultRetryPolicy()
	if cfg.Upstream.MaxRetries > 0 {
		retry.MaxRetries = cfg.Upstream.MaxRetries
	}
	record := upstream.WithMetrics(metrics)

	forecastClient := upstream.NewForecastClient(httpClient, cfg.Upstream.ForecastBaseURL, cfg.Upstream.UserAgent, retry, record)
	radarClient := upstream.NewRadarClient(httpClient, cfg.Upstream.RadarBaseURL, cfg.Upstream.UserAgent, retry, record)
	geocoderClient := upstream.NewGeocoderClient(httpClient, cfg.Upstream.GeocoderBaseURL, cfg.Upstream.UserAgent, retry, record)

	// Without an archive base URL the historical endpoint reports itself as
	// not configured instead of issuing malformed requests.
	var archiveProvider dashboard.ArchiveProvider
	if cfg.Upstream.ArchiveBaseURL != "" {
		archiveProvider = upstream.NewArchiveClient(httpClient, cfg.Upstream.ArchiveBaseURL, cfg.Upstream.UserAgent, retry, nil, record)
	}

	// Recents persistence is optional; without DATABASE_URL the endpoints
	// are simply not mounted.
	var recentsRepo *db.RecentsRepository
	if cfg.Database.URL.Unmask() != "" {
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		recentsRepo = db.NewRecentsRepository(pool)
		srv.RegisterCloser(func() error {
			pool.Close()
			return nil
		})
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
			ProbeName: "database",
			Fn:        pool.Ping,
		})
	}

	// The snapshot store interface is satisfied by the archiver; a nil
	// archiver disables snapshotting inside the service.
	var snaps dashboard.SnapshotStore
	if archiver != nil {
		snaps = archiver
	}
	svc := dashboard.NewService(forecastClient, archiveProvider, snaps, logger, nil)

	dashboardHandler := handlers.NewDashboardHandler(svc, snapshotReader(archiver), logger)
	radarHandler := handlers.NewRadarHandler(radarClient, nil, logger)
	locationsHandler := handlers.NewLocationsHandler(geocoderClient, recentsStore(recentsRepo), nil, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		dashboardHandler.RegisterRoutes,
		radarHandler.RegisterRoutes,
		locationsHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	return serveHTTP(srv, cfg, logger)
}

// snapshotReader converts a possibly-nil *Archiver into the handler
// interface without producing a non-nil interface around a nil pointer.
func snapshotReader(a *archive.Archiver) handlers.SnapshotReader {
	if a == nil {
		return nil
	}
	return a
}

// recentsStore does the same for the recents repository.
func recentsStore(r *db.RecentsRepository) handlers.RecentsStore {
	if r == nil {
		return nil
	}
	return r
}

// serveHTTP runs the HTTP server until a shutdown signal or server error.
func serveHTTP(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
