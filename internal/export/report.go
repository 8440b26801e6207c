package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/common"
	"github.com/senegalairwatch/senegal-air-watch/internal/openaq"
)

var recommendations = []string{
	"Prioritise the PM1, PM2.5 and PM10 parameters (fine particles)",
	"Include meteorological data (temperature, humidity)",
	"Choose the collection frequency according to the intended use",
	"Plan how missing data will be handled",
	"Test collection on one station before the full rollout",
}

// WriteReport writes the human readable synthesis of an exploration run.
func WriteReport(w io.Writer, res openaq.Result) error {
	bw := bufio.NewWriter(w)
	s := res.Summary

	fmt.Fprintln(bw, "SYNTHESIS REPORT - OPENAQ STATION EXPLORATION IN SENEGAL")
	fmt.Fprintln(bw, strings.Repeat("=", 70))
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Exploration date: %s\n", res.ExploredAt.Format(time.RFC3339))
	fmt.Fprintf(bw, "Status: %s\n\n", orNA(s.Status))

	fmt.Fprintln(bw, "GENERAL STATISTICS")
	fmt.Fprintln(bw, strings.Repeat("-", 30))
	fmt.Fprintf(bw, "Total stations: %d\n", s.TotalStations)
	fmt.Fprintf(bw, "Stations with sensors: %d\n", s.StationsWithSensors)
	fmt.Fprintf(bw, "Total sensors: %d\n", s.TotalSensors)
	fmt.Fprintf(bw, "Unique parameters measured: %d\n\n", len(s.UniqueParameters))

	fmt.Fprintln(bw, "GEOGRAPHIC DISTRIBUTION")
	fmt.Fprintln(bw, strings.Repeat("-", 30))
	for _, locality := range s.Geographic.Localities() {
		fmt.Fprintf(bw, "  %s: %d station(s)\n", locality, s.Geographic.ByLocality[locality])
	}
	fmt.Fprintf(bw, "\nGeolocated stations: %v%%\n\n", s.Geographic.GeolocatedPercent)

	fmt.Fprintln(bw, "TIME SPAN")
	fmt.Fprintln(bw, strings.Repeat("-", 30))
	switch {
	case s.TimeSpan.Status != "":
		fmt.Fprintf(bw, "  %s\n\n", s.TimeSpan.Status)
	case s.TimeSpan.First == nil || s.TimeSpan.Last == nil:
		// a failed run carries a zero span
		fmt.Fprintf(bw, "  %s\n\n", openaq.NoTemporalData)
	default:
		fmt.Fprintf(bw, "  First measurement: %s\n", s.TimeSpan.First.Format(time.RFC3339))
		fmt.Fprintf(bw, "  Last measurement: %s\n", s.TimeSpan.Last.Format(time.RFC3339))
		fmt.Fprintf(bw, "  Stations with dates: %d\n\n", s.TimeSpan.StationsWithTemporalData)
	}

	fmt.Fprintln(bw, "MEASURED PARAMETERS")
	fmt.Fprintln(bw, strings.Repeat("-", 30))
	for _, p := range s.UniqueParameters {
		fmt.Fprintf(bw, "  %s (%s) - %d sensor(s)\n", p.DisplayName, p.Unit, p.SensorCount)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "DATA COLLECTION RECOMMENDATIONS")
	fmt.Fprintln(bw, strings.Repeat("-", 50))
	for i, r := range recommendations {
		fmt.Fprintf(bw, "%d. %s\n", i+1, r)
	}

	return bw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return common.NA
	}
	return s
}
