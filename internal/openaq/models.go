package openaq

import (
	"encoding/json"
	"strconv"
	"time"
)

// Named is the {id, name} shape shared by owners, providers and instruments.
type Named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type Datetime struct {
	UTC   string `json:"utc"`
	Local string `json:"local"`
}

// Location is one entry of the /v3/locations listing.
type Location struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	Locality      *string           `json:"locality"`
	Timezone      string            `json:"timezone"`
	Country       *Country          `json:"country"`
	Owner         *Named            `json:"owner"`
	Provider      *Named            `json:"provider"`
	IsMobile      bool              `json:"isMobile"`
	IsMonitor     bool              `json:"isMonitor"`
	Instruments   []Named           `json:"instruments"`
	Sensors       []json.RawMessage `json:"sensors"`
	Coordinates   *Coordinates      `json:"coordinates"`
	DatetimeFirst *Datetime         `json:"datetimeFirst"`
	DatetimeLast  *Datetime         `json:"datetimeLast"`
}

// Sensor is one entry of a location's sensor listing. Identity attributes are
// typed; the parameter block stays a plain mapping because its keys differ
// between API revisions (displayName vs display_name).
type Sensor struct {
	ID        *json.Number   `json:"id"`
	Name      *string        `json:"name"`
	Parameter map[string]any `json:"parameter"`
}

// Field implements common.Fielder.
func (s Sensor) Field(name string) (any, bool) {
	switch name {
	case "id":
		if s.ID == nil {
			return nil, true
		}
		return *s.ID, true
	case "name":
		if s.Name == nil {
			return nil, true
		}
		return *s.Name, true
	case "parameter":
		if s.Parameter == nil {
			return nil, true
		}
		return s.Parameter, true
	}
	return nil, false
}

// Meta is the paging block of every listing response.
// The API reports found either as a number or as a string such as ">1000".
type Meta struct {
	Name  string          `json:"name"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Found json.RawMessage `json:"found"`
}

// FoundCount returns the total number of matches when the API reported an exact count.
func (m Meta) FoundCount() (int, bool) {
	if len(m.Found) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(m.Found))
	if err != nil {
		return 0, false
	}
	return n, true
}

type locationsResponse struct {
	Meta    Meta       `json:"meta"`
	Results []Location `json:"results"`
}

type sensorsResponse struct {
	Meta    Meta     `json:"meta"`
	Results []Sensor `json:"results"`
}

// StationInfo is the flattened view of a Location written to exports.
type StationInfo struct {
	ID               int        `json:"station_id"`
	Name             string     `json:"name"`
	Locality         string     `json:"locality"`
	Country          string     `json:"country"`
	CountryCode      string     `json:"country_code"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	Owner            string     `json:"owner"`
	Provider         string     `json:"provider"`
	IsMobile         bool       `json:"is_mobile"`
	IsMonitor        bool       `json:"is_monitor"`
	FirstMeasurement *time.Time `json:"first_measurement"`
	LastMeasurement  *time.Time `json:"last_measurement"`
	SensorCount      int        `json:"sensor_count"`
	InstrumentTypes  []string   `json:"instrument_types"`
	ExploredAt       time.Time  `json:"explored_at"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (s StationInfo) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// SensorDescriptor describes one measurement channel at a station.
// Fields that could not be extracted hold common.NA.
type SensorDescriptor struct {
	StationID            int       `json:"station_id"`
	StationName          string    `json:"station_name"`
	SensorID             string    `json:"sensor_id"`
	SensorName           string    `json:"sensor_name"`
	ParameterID          string    `json:"parameter_id"`
	ParameterName        string    `json:"parameter_name"`
	ParameterDisplayName string    `json:"parameter_display_name"`
	Unit                 string    `json:"unit"`
	ExploredAt           time.Time `json:"explored_at"`
}

// ParameterInfo is the parameter block of a sensor after extraction.
type ParameterInfo struct {
	ID          string
	Name        string
	DisplayName string
	Unit        string
}
