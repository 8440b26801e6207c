package export

import (
	"context"
	"errors"
	"log/slog"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

// Sink receives the records of a meteo collection run in addition to the CSV files.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []weather.Record) error
	Close() error
}

// WriteSinks hands records to every sink in turn. A failing sink is logged and
// does not stop the others; nothing already written is rolled back.
func WriteSinks(ctx context.Context, sinks []Sink, records []weather.Record, logger *slog.Logger) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Write(ctx, records); err != nil {
			logger.Error("sink write failed", "sink", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("sink written", "sink", s.Name(), "records", len(records))
	}
	return errors.Join(errs...)
}

// CloseSinks closes every sink, logging failures.
func CloseSinks(sinks []Sink, logger *slog.Logger) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logger.Warn("sink close failed", "sink", s.Name(), "error", err)
		}
	}
}
