package openaq

import (
	"testing"
	"time"
)

func TestGeolocatedPercent(t *testing.T) {
	tests := []struct {
		with, total int
		want        float64
	}{
		{0, 0, 0},
		{2, 3, 66.67},
		{1, 3, 33.33},
		{3, 3, 100},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := GeolocatedPercent(tt.with, tt.total); got != tt.want {
			t.Errorf("GeolocatedPercent(%d, %d) = %v, want %v", tt.with, tt.total, got, tt.want)
		}
	}
}

func TestGeographic(t *testing.T) {
	lat, lon := 14.7, -17.4
	stations := []StationInfo{
		{Locality: "Dakar", Latitude: &lat, Longitude: &lon},
		{Locality: "Dakar", Latitude: &lat},
		{Locality: "", Latitude: &lat, Longitude: &lon},
	}
	g := Geographic(stations)
	if g.ByLocality["Dakar"] != 2 || g.ByLocality[UnspecifiedLocality] != 1 {
		t.Errorf("unexpected locality counts %v", g.ByLocality)
	}
	if g.StationsWithCoordinates != 2 || g.GeolocatedPercent != 66.67 {
		t.Errorf("coordinates %d, percent %v", g.StationsWithCoordinates, g.GeolocatedPercent)
	}
	if got := g.Localities(); len(got) != 2 || got[0] != "Dakar" || got[1] != UnspecifiedLocality {
		t.Errorf("Localities() = %v", got)
	}

	empty := Geographic(nil)
	if empty.GeolocatedPercent != 0 || len(empty.ByLocality) != 0 {
		t.Errorf("unexpected empty distribution %+v", empty)
	}
}

func TestUniqueParameters(t *testing.T) {
	sensors := []SensorDescriptor{
		{ParameterName: "pm25", ParameterDisplayName: "PM2.5", Unit: "µg/m³"},
		{ParameterName: "pm10", ParameterDisplayName: "PM10", Unit: "µg/m³"},
		{ParameterName: "pm25", ParameterDisplayName: "PM2.5", Unit: "µg/m³"},
	}
	got := UniqueParameters(sensors)
	if len(got) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(got))
	}
	if got[0].Name != "pm25" || got[0].SensorCount != 2 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != "pm10" || got[1].SensorCount != 1 {
		t.Errorf("got[1] = %+v", got[1])
	}
	if len(UniqueParameters(nil)) != 0 {
		t.Errorf("expected no parameters for no sensors")
	}
}

func TestSpan(t *testing.T) {
	t1 := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	span := Span([]StationInfo{
		{FirstMeasurement: &t2, LastMeasurement: &t3},
		{FirstMeasurement: &t1, LastMeasurement: &t2},
		{},
	})
	if span.Status != "" {
		t.Errorf("unexpected status %q", span.Status)
	}
	if !span.First.Equal(t1) || !span.Last.Equal(t3) || span.StationsWithTemporalData != 2 {
		t.Errorf("unexpected span %+v", span)
	}

	if got := Span(nil); got.Status != NoTemporalData || got.First != nil {
		t.Errorf("Span(nil) = %+v, want sentinel", got)
	}
	if got := Span([]StationInfo{{}}); got.Status != NoTemporalData {
		t.Errorf("Span without dates = %+v, want sentinel", got)
	}
}
