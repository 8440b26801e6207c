package weather

import (
	"time"
)

// Station is a fixed geographic sensing location.
// Name is the unique key used across records, files and the HTTP API.
type Station struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is one hourly observation for a station.
// A nil value means the archive returned null for that variable and hour.
type Record struct {
	Station string              `json:"station"`
	Time    time.Time           `json:"time"` // always UTC
	Values  map[string]*float64 `json:"values"`
}

// Value returns the value of variable and whether it was present and non-null.
func (r Record) Value(variable string) (float64, bool) {
	v, ok := r.Values[variable]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Table is an ordered list of records sharing one column layout.
// Station is empty for combined tables.
type Table struct {
	Station string   `json:"station,omitempty"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records in the table.
func (t Table) Len() int {
	return len(t.Records)
}

// ArchiveRequest describes the fixed date range and variable set of a collection run.
// Dates use the archive's YYYY-MM-DD format.
type ArchiveRequest struct {
	StartDate string
	EndDate   string
	Variables []string
}

// StationResult is the outcome of one station's fetch and parse pass.
type StationResult struct {
	Station Station
	Table   Table
	Err     error
}

// OK reports whether the station produced a table.
func (r StationResult) OK() bool {
	return r.Err == nil
}
