package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/senegalairwatch/senegal-air-watch/internal/config"
	"github.com/senegalairwatch/senegal-air-watch/internal/export"
	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
	"github.com/senegalairwatch/senegal-air-watch/internal/weather/providers"
)

func newMeteoCmd(rt *runtime) *cobra.Command {
	var (
		start, end string
		perStation bool
		combined   bool
	)
	cmd := &cobra.Command{
		Use:   "meteo",
		Short: "Download hourly Open-Meteo archive data for every station",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				rt.cfg.Meteo.StartDate = start
			}
			if end != "" {
				rt.cfg.Meteo.EndDate = end
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return runMeteo(cmd.Context(), rt.cfg, rt.logger, perStation, combined)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD (overrides METEO_START_DATE)")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD (overrides METEO_END_DATE)")
	cmd.Flags().BoolVar(&perStation, "per-station", true, "write one <station>_meteo.csv per station")
	cmd.Flags().BoolVar(&combined, "combined", true, "write "+export.CombinedFilename)
	return cmd
}

func runMeteo(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, perStation, combined bool) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	archive := providers.NewOpenMeteoArchive(httpClient, cfg.Meteo.BaseURL, cfg.Meteo.BreakerThreshold)
	collector := weather.NewCollector(archive, weather.DefaultRegistry(), logger)

	results := collector.Collect(ctx, cfg.ArchiveRequest())

	var errs []error
	if perStation {
		for _, r := range results {
			if !r.OK() {
				continue
			}
			path, err := export.WriteStationCSV(cfg.OutputDir, r.Table)
			if err != nil {
				logger.Error("station export failed", "station", r.Station.Name, "error", err)
				errs = append(errs, err)
				continue
			}
			logger.Info("station export written", "station", r.Station.Name, "file", path, "records", r.Table.Len())
		}
	}

	all := weather.Combine(results)
	if all.Len() == 0 {
		logger.Warn("no records collected; combined export and sinks skipped")
		return errors.Join(errs...)
	}

	if combined {
		path, err := export.WriteCombinedCSV(cfg.OutputDir, all)
		if err != nil {
			logger.Error("combined export failed", "error", err)
			errs = append(errs, err)
		} else {
			stations, _ := weather.Collected(results)
			logger.Info("combined export written", "file", path, "records", all.Len(), "stations", stations)
		}
	}

	sinks := openSinks(cfg, logger)
	defer export.CloseSinks(sinks, logger)
	if err := export.WriteSinks(ctx, sinks, all.Records, logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// openSinks returns the configured optional sinks. A sink that cannot be
// opened is logged and left out.
func openSinks(cfg *config.AppConfig, logger *slog.Logger) []export.Sink {
	var sinks []export.Sink
	if cfg.SQLitePath != "" {
		s, err := export.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Error("sqlite sink disabled", "path", cfg.SQLitePath, "error", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.Influx.Enabled() {
		sinks = append(sinks, export.NewInfluxSink(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket))
	}
	return sinks
}
