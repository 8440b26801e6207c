package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Collector runs the fetch, parse and accumulate pass over a station registry.
// Stations are processed one at a time; a failing station is logged and skipped.
type Collector struct {
	archive  Archive
	registry *Registry
	logger   *slog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(archive Archive, registry *Registry, logger *slog.Logger) *Collector {
	return &Collector{
		archive:  archive,
		registry: registry,
		logger:   logger,
	}
}

// Registry returns the stations the collector iterates over.
func (c *Collector) Registry() *Registry {
	return c.registry
}

// Collect fetches and parses every registered station in registry order.
// One result is returned per attempted station. Collection stops early only when
// ctx is cancelled.
func (c *Collector) Collect(ctx context.Context, req ArchiveRequest) []StationResult {
	c.logger.Info("collecting archive data",
		"source", c.archive.Name(),
		"stations", c.registry.Len(),
		"start", req.StartDate,
		"end", req.EndDate,
	)

	results := make([]StationResult, 0, c.registry.Len())
	for _, st := range c.registry.All() {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("collection interrupted", "error", err)
			break
		}

		table, err := c.CollectStation(ctx, st, req)
		switch {
		case errors.Is(err, ErrNoHourlyData):
			c.logger.Warn("no hourly data, skipping station", "station", st.Name)
		case err != nil:
			c.logger.Error("station fetch failed", "station", st.Name, "error", err)
		default:
			c.logger.Info("station collected", "station", st.Name, "records", table.Len())
		}
		results = append(results, StationResult{Station: st, Table: table, Err: err})
	}

	stations, records := Collected(results)
	c.logger.Info("collection finished", "stations_ok", stations, "records", records)
	return results
}

// CollectStation runs a single fetch and parse for st.
func (c *Collector) CollectStation(ctx context.Context, st Station, req ArchiveRequest) (Table, error) {
	if _, ok := c.registry.Get(st.Name); !ok {
		return Table{}, fmt.Errorf("station %q is not registered", st.Name)
	}

	c.logger.Debug("fetching station", "station", st.Name, "lat", st.Latitude, "lon", st.Longitude)
	payload, err := c.archive.Fetch(ctx, st, req)
	if err != nil {
		return Table{}, err
	}
	return ParseHourly(st.Name, payload, req.Variables)
}

// CollectAndStore runs Collect and saves every successful table into store.
// It returns the number of records saved.
func (c *Collector) CollectAndStore(ctx context.Context, store Store, req ArchiveRequest) int {
	saved := 0
	for _, r := range c.Collect(ctx, req) {
		if !r.OK() || r.Table.Len() == 0 {
			continue
		}
		store.SaveRecords(r.Station.Name, r.Table.Records)
		saved += r.Table.Len()
	}
	return saved
}
