package openaq

import (
	"math"
	"sort"
	"time"
)

const (
	StatusSuccess = "SUCCESS"

	// NoTemporalData is the TimeSpan status when no station reports measurement dates.
	NoTemporalData = "no temporal data available"

	// UnspecifiedLocality groups stations without a locality.
	UnspecifiedLocality = "Unspecified"
)

// ParameterStat counts the sensors measuring one parameter.
type ParameterStat struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Unit        string `json:"unit"`
	SensorCount int    `json:"sensor_count"`
}

// GeoDistribution describes where the explored stations are.
type GeoDistribution struct {
	ByLocality              map[string]int `json:"by_locality"`
	StationsWithCoordinates int            `json:"stations_with_coordinates"`
	GeolocatedPercent       float64        `json:"geolocated_percent"`
}

// Localities returns the locality names sorted alphabetically.
func (g GeoDistribution) Localities() []string {
	names := make([]string, 0, len(g.ByLocality))
	for name := range g.ByLocality {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TimeSpan is the measurement period covered by the explored stations.
// Only Status is set when no station reports dates.
type TimeSpan struct {
	Status                   string     `json:"status,omitempty"`
	First                    *time.Time `json:"first_measurement,omitempty"`
	Last                     *time.Time `json:"last_measurement,omitempty"`
	StationsWithTemporalData int        `json:"stations_with_temporal_data,omitempty"`
}

// Summary is the derived report of one exploration run.
type Summary struct {
	ExploredAt          time.Time       `json:"explored_at"`
	TotalStations       int             `json:"total_stations"`
	StationsWithSensors int             `json:"stations_with_sensors"`
	TotalSensors        int             `json:"total_sensors"`
	UniqueParameters    []ParameterStat `json:"unique_parameters"`
	Geographic          GeoDistribution `json:"geographic_distribution"`
	TimeSpan            TimeSpan        `json:"time_span"`
	Status              string          `json:"status"`
}

// Summarize computes the run summary from the collected stations and sensors.
func Summarize(exploredAt time.Time, stations []StationInfo, sensors []SensorDescriptor, stationsWithSensors int) Summary {
	return Summary{
		ExploredAt:          exploredAt,
		TotalStations:       len(stations),
		StationsWithSensors: stationsWithSensors,
		TotalSensors:        len(sensors),
		UniqueParameters:    UniqueParameters(sensors),
		Geographic:          Geographic(stations),
		TimeSpan:            Span(stations),
		Status:              StatusSuccess,
	}
}

// UniqueParameters groups sensors by parameter name in first-seen order.
func UniqueParameters(sensors []SensorDescriptor) []ParameterStat {
	index := make(map[string]int)
	out := make([]ParameterStat, 0)
	for _, s := range sensors {
		i, ok := index[s.ParameterName]
		if !ok {
			i = len(out)
			index[s.ParameterName] = i
			out = append(out, ParameterStat{
				Name:        s.ParameterName,
				DisplayName: s.ParameterDisplayName,
				Unit:        s.Unit,
			})
		}
		out[i].SensorCount++
	}
	return out
}

// Geographic counts stations per locality and the share with coordinates.
func Geographic(stations []StationInfo) GeoDistribution {
	g := GeoDistribution{ByLocality: make(map[string]int)}
	for _, st := range stations {
		locality := st.Locality
		if locality == "" {
			locality = UnspecifiedLocality
		}
		g.ByLocality[locality]++
		if st.HasCoordinates() {
			g.StationsWithCoordinates++
		}
	}
	g.GeolocatedPercent = GeolocatedPercent(g.StationsWithCoordinates, len(stations))
	return g
}

// GeolocatedPercent is 100*with/total rounded to two decimals, or 0 without stations.
func GeolocatedPercent(with, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := 100 * float64(with) / float64(total)
	return math.Round(pct*100) / 100
}

// Span returns the earliest first measurement and the latest last measurement.
func Span(stations []StationInfo) TimeSpan {
	var (
		first, last       *time.Time
		withFirst, withLast int
	)
	for _, st := range stations {
		if st.FirstMeasurement != nil {
			withFirst++
			if first == nil || st.FirstMeasurement.Before(*first) {
				first = st.FirstMeasurement
			}
		}
		if st.LastMeasurement != nil {
			withLast++
			if last == nil || st.LastMeasurement.After(*last) {
				last = st.LastMeasurement
			}
		}
	}
	if withFirst == 0 || withLast == 0 {
		return TimeSpan{Status: NoTemporalData}
	}
	return TimeSpan{
		First:                    first,
		Last:                     last,
		StationsWithTemporalData: withFirst,
	}
}
