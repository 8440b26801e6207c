package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/senegalairwatch/senegal-air-watch/internal/config"
	"github.com/senegalairwatch/senegal-air-watch/internal/logging"
)

// runtime carries what every command needs once the root pre-run has loaded it.
type runtime struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	rt := &runtime{stdout: stdout}
	var outDir string

	root := &cobra.Command{
		Use:           "senegal-air-watch",
		Short:         "Senegal weather and air quality station data collector",
		Long:          "Collects Open-Meteo archive data for Senegal stations and explores OpenAQ air quality stations, writing CSV, JSON and text reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			rt.cfg = cfg
			rt.logger = logging.New(cfg, stdout)
			if !cfg.DotEnvLoaded {
				rt.logger.Debug("no .env file found, using environment variables only")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&outDir, "out", "", "output directory (overrides OUTPUT_DIR)")

	root.AddCommand(
		newMeteoCmd(rt),
		newExploreCmd(rt),
		newStationsCmd(rt),
		newServeCmd(rt),
	)
	return root
}
