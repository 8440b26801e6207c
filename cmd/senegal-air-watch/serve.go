package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/senegalairwatch/senegal-air-watch/internal/api/http"
	"github.com/senegalairwatch/senegal-air-watch/internal/config"
	"github.com/senegalairwatch/senegal-air-watch/internal/scheduler"
	"github.com/senegalairwatch/senegal-air-watch/internal/store"
	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
	"github.com/senegalairwatch/senegal-air-watch/internal/weather/providers"
)

func newServeCmd(rt *runtime) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Collect periodically and serve the latest measurements over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				rt.cfg.Port = port
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), rt.cfg, rt.logger)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxRecords, cfg.StoreMaxAge)

	registry := weather.DefaultRegistry()
	archive := providers.NewOpenMeteoArchive(httpClient, cfg.Meteo.BaseURL, cfg.ServeBreakerThreshold)
	collector := weather.NewCollector(archive, registry, log)

	// a run never outlives its interval
	sched := scheduler.New(collector, memStore, cfg.LookbackRequest, cfg.ScheduleInterval, cfg.ScheduleInterval, log)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp("senegal-air-watch")
	app.Use(logger.New(logger.Config{Output: newAccessLogWriter(log)}))
	app.Use(recover.New())
	httpapi.RegisterRoutes(app, registry, memStore)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}

// accessLogWriter forwards fiber's access log lines to slog.
type accessLogWriter struct {
	log *slog.Logger
}

func newAccessLogWriter(log *slog.Logger) accessLogWriter {
	return accessLogWriter{log: log.With("component", "http")}
}

func (w accessLogWriter) Write(p []byte) (int, error) {
	line := string(p)
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	w.log.Info(line)
	return len(p), nil
}
