package openaq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Result is everything one exploration run produced.
type Result struct {
	ExploredAt time.Time
	Summary    Summary
	Stations   []StationInfo
	Sensors    []SensorDescriptor
}

// Explorer runs the station and sensor discovery for one country.
type Explorer struct {
	api       API
	logger    *slog.Logger
	country   string
	pageLimit int
	now       func() time.Time
}

func NewExplorer(api API, country string, pageLimit int, logger *slog.Logger) *Explorer {
	return &Explorer{
		api:       api,
		logger:    logger,
		country:   country,
		pageLimit: pageLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run discovers stations, explores the sensors of each one sequentially and
// summarizes the result. The API client is closed on every exit path.
// A discovery failure aborts the run; the returned Result then carries
// the failure in Summary.Status.
func (e *Explorer) Run(ctx context.Context) (Result, error) {
	defer func() {
		e.api.Close()
		e.logger.Info("api connection closed")
	}()

	res := Result{ExploredAt: e.now()}
	res.Summary.ExploredAt = res.ExploredAt
	e.logger.Info("exploration started", "country", e.country)

	stations, err := e.DiscoverStations(ctx, res.ExploredAt)
	if err != nil {
		e.logger.Error("exploration failed", "error", err)
		res.Summary.Status = "ERROR: " + err.Error()
		return res, err
	}
	res.Stations = stations

	if len(stations) > 0 {
		e.Diagnose(ctx, stations[0])
	}

	withSensors := 0
	for _, st := range stations {
		if err := ctx.Err(); err != nil {
			res.Summary.Status = "ERROR: " + err.Error()
			return res, err
		}
		sensors := e.ExploreSensors(ctx, st, res.ExploredAt)
		if len(sensors) > 0 {
			withSensors++
			res.Sensors = append(res.Sensors, sensors...)
		}
	}

	res.Summary = Summarize(res.ExploredAt, res.Stations, res.Sensors, withSensors)
	e.logger.Info("exploration finished",
		"stations", res.Summary.TotalStations,
		"sensors", res.Summary.TotalSensors,
		"parameters", len(res.Summary.UniqueParameters),
	)
	return res, nil
}

// DiscoverStations lists every location of the configured country.
func (e *Explorer) DiscoverStations(ctx context.Context, exploredAt time.Time) ([]StationInfo, error) {
	e.logger.Info("discovering stations", "country", e.country, "page_limit", e.pageLimit)

	locations, err := e.api.ListLocations(ctx, e.country, e.pageLimit)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			e.logger.Warn("rate limit reached during station discovery", "error", err)
		} else {
			e.logger.Error("station discovery failed", "error", err)
		}
		return nil, fmt.Errorf("discover stations: %w", err)
	}

	stations := make([]StationInfo, 0, len(locations))
	for _, loc := range locations {
		st := NewStationInfo(loc, exploredAt, e.logger)
		e.logger.Info("station found",
			"id", st.ID,
			"name", st.Name,
			"locality", st.Locality,
			"sensors", st.SensorCount,
		)
		stations = append(stations, st)
	}
	e.logger.Info("stations discovered", "count", len(stations))
	return stations, nil
}

// ExploreSensors lists the sensors of one station. Any error yields zero
// sensors for the station; the run goes on.
func (e *Explorer) ExploreSensors(ctx context.Context, st StationInfo, exploredAt time.Time) []SensorDescriptor {
	log := e.logger.With("station_id", st.ID, "station", st.Name)
	log.Info("exploring sensors")

	sensors, err := e.api.Sensors(ctx, st.ID)
	if err != nil {
		log.Error("sensor listing failed", "error", err)
		return nil
	}

	out := make([]SensorDescriptor, 0, len(sensors))
	for i, s := range sensors {
		d, ok := NewSensorDescriptor(st, s, exploredAt)
		if !ok {
			log.Warn("sensor skipped, no identifying field", "index", i)
			continue
		}
		log.Debug("sensor found",
			"sensor_id", d.SensorID,
			"parameter", d.ParameterName,
			"unit", d.Unit,
		)
		out = append(out, d)
	}
	log.Info("sensors explored", "valid", len(out), "listed", len(sensors))
	return out
}

// Diagnose logs the shape of a station's sensor listing at debug level.
func (e *Explorer) Diagnose(ctx context.Context, st StationInfo) {
	if !e.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	log := e.logger.With("station_id", st.ID, "station", st.Name)
	log.Debug("diagnosing sensor response structure")

	sensors, err := e.api.Sensors(ctx, st.ID)
	if err != nil {
		log.Debug("diagnostic request failed", "error", err)
		return
	}
	log.Debug("sensor response", "count", len(sensors))
	if len(sensors) == 0 {
		return
	}

	first := sensors[0]
	keys := make([]string, 0, len(first.Parameter))
	for k := range first.Parameter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	log.Debug("first sensor",
		"has_id", first.ID != nil,
		"has_name", first.Name != nil,
		"parameter_keys", keys,
	)
	for _, k := range keys {
		log.Debug("parameter field", "key", k, "type", fmt.Sprintf("%T", first.Parameter[k]), "value", first.Parameter[k])
	}
}
