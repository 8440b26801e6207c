package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/openaq"
)

const (
	ExplorationBase = "exploration_stations_senegal"
	ScriptVersion   = "1.0"
	stampLayout     = "20060102_150405"
)

// Metadata heads the JSON export of an exploration run.
type Metadata struct {
	ExploredAt    time.Time `json:"explored_at"`
	ExportedAt    time.Time `json:"exported_at"`
	ScriptVersion string    `json:"script_version"`
	RunID         string    `json:"run_id"`
	Description   string    `json:"description"`
}

// NewMetadata fills the fixed fields for a run exported at exportedAt.
func NewMetadata(res openaq.Result, runID string, exportedAt time.Time) Metadata {
	return Metadata{
		ExploredAt:    res.ExploredAt,
		ExportedAt:    exportedAt.UTC(),
		ScriptVersion: ScriptVersion,
		RunID:         runID,
		Description:   "OpenAQ air quality stations and sensors in Senegal",
	}
}

type explorationDocument struct {
	Metadata Metadata                  `json:"metadata"`
	Summary  openaq.Summary            `json:"summary"`
	Stations []openaq.StationInfo      `json:"stations"`
	Sensors  []openaq.SensorDescriptor `json:"sensors"`
}

// ExplorationFiles lists the paths of one exploration export. A path is empty
// when that file could not be written.
type ExplorationFiles struct {
	JSON        string
	StationsCSV string
	SensorsCSV  string
	Report      string
}

// ExplorationNames returns the four file names sharing the stamp of exportedAt.
func ExplorationNames(exportedAt time.Time) ExplorationFiles {
	stamp := exportedAt.UTC().Format(stampLayout)
	return ExplorationFiles{
		JSON:        ExplorationBase + "_" + stamp + ".json",
		StationsCSV: ExplorationBase + "_stations_" + stamp + ".csv",
		SensorsCSV:  ExplorationBase + "_sensors_" + stamp + ".csv",
		Report:      ExplorationBase + "_report_" + stamp + ".txt",
	}
}

// WriteExploration writes the JSON document, the stations and sensors CSVs and
// the text report into dir. Every file is attempted; failures are logged and
// returned joined. Files already written are left in place.
func WriteExploration(dir string, meta Metadata, res openaq.Result, logger *slog.Logger) (ExplorationFiles, error) {
	names := ExplorationNames(meta.ExportedAt)
	var (
		written ExplorationFiles
		errs    []error
	)

	steps := []struct {
		name string
		dst  *string
		fill func(io.Writer) error
	}{
		{names.JSON, &written.JSON, func(w io.Writer) error {
			return writeExplorationJSON(w, meta, res)
		}},
		{names.StationsCSV, &written.StationsCSV, func(w io.Writer) error {
			return writeStationsCSV(w, res.Stations)
		}},
		{names.SensorsCSV, &written.SensorsCSV, func(w io.Writer) error {
			return writeSensorsCSV(w, res.Sensors)
		}},
		{names.Report, &written.Report, func(w io.Writer) error {
			return WriteReport(w, res)
		}},
	}

	for _, s := range steps {
		path := filepath.Join(dir, s.name)
		if err := writeFile(path, s.fill); err != nil {
			logger.Error("export failed", "file", path, "error", err)
			errs = append(errs, err)
			continue
		}
		*s.dst = path
		logger.Info("export written", "file", path)
	}
	return written, errors.Join(errs...)
}

func writeExplorationJSON(w io.Writer, meta Metadata, res openaq.Result) error {
	doc := explorationDocument{
		Metadata: meta,
		Summary:  res.Summary,
		Stations: res.Stations,
		Sensors:  res.Sensors,
	}
	if doc.Stations == nil {
		doc.Stations = []openaq.StationInfo{}
	}
	if doc.Sensors == nil {
		doc.Sensors = []openaq.SensorDescriptor{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

var stationsHeader = []string{
	"station_id", "name", "locality", "country", "country_code",
	"latitude", "longitude", "owner", "provider", "is_mobile", "is_monitor",
	"first_measurement", "last_measurement", "sensor_count", "instrument_types", "explored_at",
}

func writeStationsCSV(w io.Writer, stations []openaq.StationInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationsHeader); err != nil {
		return err
	}
	for _, st := range stations {
		row := []string{
			strconv.Itoa(st.ID),
			st.Name,
			st.Locality,
			st.Country,
			st.CountryCode,
			formatOptionalFloat(st.Latitude),
			formatOptionalFloat(st.Longitude),
			st.Owner,
			st.Provider,
			strconv.FormatBool(st.IsMobile),
			strconv.FormatBool(st.IsMonitor),
			formatOptionalTime(st.FirstMeasurement),
			formatOptionalTime(st.LastMeasurement),
			strconv.Itoa(st.SensorCount),
			strings.Join(st.InstrumentTypes, ";"),
			st.ExploredAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var sensorsHeader = []string{
	"station_id", "station_name", "sensor_id", "sensor_name", "parameter_id",
	"parameter_name", "parameter_display_name", "unit", "explored_at",
}

func writeSensorsCSV(w io.Writer, sensors []openaq.SensorDescriptor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sensorsHeader); err != nil {
		return err
	}
	for _, s := range sensors {
		row := []string{
			strconv.Itoa(s.StationID),
			s.StationName,
			s.SensorID,
			s.SensorName,
			s.ParameterID,
			s.ParameterName,
			s.ParameterDisplayName,
			s.Unit,
			s.ExploredAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
