package export

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/openaq"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() openaq.Result {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lat, lon := 14.69, -17.44
	stations := []openaq.StationInfo{
		{ID: 1, Name: "Dakar Plateau", Locality: "Dakar", Latitude: &lat, Longitude: &lon, InstrumentTypes: []string{"a", "b"}, ExploredAt: at},
		{ID: 2, Name: "Thies Centre", ExploredAt: at},
	}
	sensors := []openaq.SensorDescriptor{
		{StationID: 1, StationName: "Dakar Plateau", SensorID: "10", ParameterName: "pm25", ParameterDisplayName: "PM2.5", Unit: "µg/m³", ExploredAt: at},
	}
	return openaq.Result{
		ExploredAt: at,
		Stations:   stations,
		Sensors:    sensors,
		Summary:    openaq.Summarize(at, stations, sensors, 1),
	}
}

func TestExplorationNames_ShareStamp(t *testing.T) {
	names := ExplorationNames(time.Date(2025, 3, 1, 9, 5, 7, 0, time.UTC))
	want := ExplorationFiles{
		JSON:        "exploration_stations_senegal_20250301_090507.json",
		StationsCSV: "exploration_stations_senegal_stations_20250301_090507.csv",
		SensorsCSV:  "exploration_stations_senegal_sensors_20250301_090507.csv",
		Report:      "exploration_stations_senegal_report_20250301_090507.txt",
	}
	if names != want {
		t.Errorf("got %+v, want %+v", names, want)
	}
}

func TestWriteExploration(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()
	meta := NewMetadata(res, "run-1", res.ExploredAt.Add(time.Minute))

	files, err := WriteExploration(dir, meta, res, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []string{files.JSON, files.StationsCSV, files.SensorsCSV, files.Report} {
		if p == "" {
			t.Fatalf("missing path in %+v", files)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stat %s: %v", p, err)
		}
	}

	raw, err := os.ReadFile(files.JSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Metadata Metadata                  `json:"metadata"`
		Summary  openaq.Summary            `json:"summary"`
		Stations []openaq.StationInfo      `json:"stations"`
		Sensors  []openaq.SensorDescriptor `json:"sensors"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.Metadata.RunID != "run-1" || doc.Metadata.ScriptVersion != ScriptVersion {
		t.Errorf("unexpected metadata %+v", doc.Metadata)
	}
	if len(doc.Stations) != 2 || len(doc.Sensors) != 1 || doc.Summary.TotalStations != 2 {
		t.Errorf("unexpected document %+v", doc)
	}

	stations := readCSV(t, files.StationsCSV)
	if len(stations) != 3 {
		t.Fatalf("got %d station rows, want 3", len(stations))
	}
	if stations[1][14] != "a;b" {
		t.Errorf("instrument_types = %q, want a;b", stations[1][14])
	}
	if stations[2][5] != "" {
		t.Errorf("missing latitude = %q, want empty", stations[2][5])
	}

	sensors := readCSV(t, files.SensorsCSV)
	if len(sensors) != 2 || sensors[1][2] != "10" {
		t.Errorf("unexpected sensors csv %v", sensors)
	}
}

func TestWriteExploration_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()
	meta := NewMetadata(res, "run-2", res.ExploredAt)

	// a directory occupying the report name makes only that file fail
	names := ExplorationNames(meta.ExportedAt)
	if err := os.Mkdir(filepath.Join(dir, names.Report), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := WriteExploration(dir, meta, res, testLogger())
	if err == nil {
		t.Fatalf("expected error for blocked report")
	}
	if files.Report != "" {
		t.Errorf("report path = %q, want empty", files.Report)
	}
	if files.JSON == "" || files.StationsCSV == "" || files.SensorsCSV == "" {
		t.Errorf("other files should be written, got %+v", files)
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Status: SUCCESS",
		"Total stations: 2",
		"Stations with sensors: 1",
		"  Dakar: 1 station(s)",
		"  Unspecified: 1 station(s)",
		"Geolocated stations: 50%",
		"no temporal data available",
		"  PM2.5 (µg/m³) - 1 sensor(s)",
		"DATA COLLECTION RECOMMENDATIONS",
		"5. Test collection on one station",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteReport_FailedRun(t *testing.T) {
	res := openaq.Result{
		ExploredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:    openaq.Summary{Status: "ERROR: context canceled"},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Status: ERROR: context canceled",
		"Total stations: 0",
		"  " + openaq.NoTemporalData,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
