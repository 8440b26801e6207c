package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoHourlyData is returned when an archive response has no usable hourly container.
var ErrNoHourlyData = errors.New("no hourly data in response")

// timeLayouts lists the timestamp formats the archive may use for the hourly time axis.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseHourly flattens an archive payload into one record per hour.
//
// The hourly object holds a "time" array plus one parallel array per variable.
// Arrays are aligned by index; the record count is the length of the shortest
// array. Columns follow the requested variable order, then any extra variables
// the archive returned in alphabetical order.
func ParseHourly(station string, payload []byte, requested []string) (Table, error) {
	var body struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Table{}, fmt.Errorf("decode archive response for %s: %w", station, err)
	}
	rawTimes, ok := body.Hourly["time"]
	if body.Hourly == nil || !ok {
		return Table{}, fmt.Errorf("%s: %w", station, ErrNoHourlyData)
	}

	var timeStrs []string
	if err := json.Unmarshal(rawTimes, &timeStrs); err != nil {
		return Table{}, fmt.Errorf("decode hourly time axis for %s: %w", station, err)
	}

	columns := orderColumns(body.Hourly, requested)
	series := make(map[string][]*float64, len(columns))
	n := len(timeStrs)
	for _, col := range columns {
		var values []*float64
		if err := json.Unmarshal(body.Hourly[col], &values); err != nil {
			return Table{}, fmt.Errorf("decode hourly %s for %s: %w", col, station, err)
		}
		series[col] = values
		if len(values) < n {
			n = len(values)
		}
	}

	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		ts, err := parseTimestamp(timeStrs[i])
		if err != nil {
			return Table{}, fmt.Errorf("hourly time %d for %s: %w", i, station, err)
		}
		values := make(map[string]*float64, len(columns))
		for _, col := range columns {
			values[col] = series[col][i]
		}
		records = append(records, Record{
			Station: station,
			Time:    ts,
			Values:  values,
		})
	}

	return Table{
		Station: station,
		Columns: columns,
		Records: records,
	}, nil
}

func orderColumns(hourly map[string]json.RawMessage, requested []string) []string {
	seen := make(map[string]bool, len(hourly))
	columns := make([]string, 0, len(hourly))
	for _, v := range requested {
		if _, ok := hourly[v]; ok && !seen[v] && v != "time" {
			columns = append(columns, v)
			seen[v] = true
		}
	}

	var extra []string
	for k := range hourly {
		if k != "time" && !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
