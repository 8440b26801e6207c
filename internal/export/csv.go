package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

const (
	// CombinedFilename is the name of the multi-station meteo export.
	CombinedFilename = "stations_meteo_dakar.csv"

	timeLayout = "2006-01-02 15:04:05"
)

// StationFilename returns the per-station meteo export name.
func StationFilename(station string) string {
	return station + "_meteo.csv"
}

// WriteStationCSV writes one station's table to <station>_meteo.csv in dir and
// returns the path written. Columns are time followed by the table variables.
func WriteStationCSV(dir string, t weather.Table) (string, error) {
	if t.Station == "" {
		return "", fmt.Errorf("station table without station name")
	}
	path := filepath.Join(dir, StationFilename(t.Station))
	return path, writeFile(path, func(w io.Writer) error {
		return writeTable(w, t, false)
	})
}

// WriteCombinedCSV writes the combined table with a trailing station column.
func WriteCombinedCSV(dir string, t weather.Table) (string, error) {
	path := filepath.Join(dir, CombinedFilename)
	return path, writeFile(path, func(w io.Writer) error {
		return writeTable(w, t, true)
	})
}

func writeTable(w io.Writer, t weather.Table, withStation bool) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, t.Columns...)
	if withStation {
		header = append(header, "station")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, r := range t.Records {
		row[0] = r.Time.UTC().Format(timeLayout)
		for i, col := range t.Columns {
			row[i+1] = formatValue(r, col)
		}
		if withStation {
			row[len(row)-1] = r.Station
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(r weather.Record, col string) string {
	v, ok := r.Value(col)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeFile creates path and hands it to fill. The file is closed on every path
// and a close error is reported when fill succeeded.
func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := fill(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
