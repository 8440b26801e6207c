package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/senegalairwatch/senegal-air-watch/internal/config"
	"github.com/senegalairwatch/senegal-air-watch/internal/export"
	"github.com/senegalairwatch/senegal-air-watch/internal/logging"
	"github.com/senegalairwatch/senegal-air-watch/internal/openaq"
)

const explorationLogFile = "exploration_stations.log"

func newExploreCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Discover OpenAQ stations and sensors and export a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.RequireOpenAQKey(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), config.APIKeyGuidance)
				return err
			}
			return runExplore(cmd.Context(), rt.cfg, rt.stdout)
		},
	}
}

func runExplore(ctx context.Context, cfg *config.AppConfig, stdout io.Writer) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	logPath := filepath.Join(cfg.OutputDir, explorationLogFile)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", logPath, err)
	}
	defer logFile.Close()

	logger := logging.New(cfg, io.MultiWriter(stdout, logFile))
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	client := openaq.NewClient(cfg.OpenAQ.BaseURL, cfg.OpenAQ.APIKey, cfg.HTTPTimeout, logger)
	explorer := openaq.NewExplorer(client, cfg.OpenAQ.Country, cfg.OpenAQ.PageLimit, logger)

	res, err := explorer.Run(ctx)
	if err != nil {
		if errors.Is(err, openaq.ErrUnauthorized) {
			logger.Error("OpenAQ rejected the API key; check OPENAQ_API_KEY")
		}
		return err
	}

	meta := export.NewMetadata(res, runID, time.Now())
	files, err := export.WriteExploration(cfg.OutputDir, meta, res, logger)
	logExplorationFiles(logger, files)
	return err
}

func logExplorationFiles(logger *slog.Logger, files export.ExplorationFiles) {
	for _, f := range []struct{ kind, path string }{
		{"full data", files.JSON},
		{"stations", files.StationsCSV},
		{"sensors", files.SensorsCSV},
		{"synthesis report", files.Report},
	} {
		if f.path != "" {
			logger.Info("generated file", "kind", f.kind, "file", f.path)
		}
	}
}
