package export

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

// InfluxMeasurement is the measurement name of meteo points.
const InfluxMeasurement = "meteo"

// InfluxSink writes one point per record, tagged by station, with a field per
// non-null variable.
type InfluxSink struct {
	client influxdb2.Client
	org    string
	bucket string
}

func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	return &InfluxSink{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

func (s *InfluxSink) Name() string { return "influxdb" }

// Write sends all points in one blocking request. Records without any
// non-null value produce no point.
func (s *InfluxSink) Write(ctx context.Context, records []weather.Record) error {
	points := make([]*write.Point, 0, len(records))
	for _, r := range records {
		fields := make(map[string]interface{}, len(r.Values))
		for name := range r.Values {
			if v, ok := r.Value(name); ok {
				fields[name] = v
			}
		}
		if len(fields) == 0 {
			continue
		}
		points = append(points, influxdb2.NewPoint(
			InfluxMeasurement,
			map[string]string{"station": r.Station},
			fields,
			r.Time.UTC(),
		))
	}
	if len(points) == 0 {
		return nil
	}

	writeAPI := s.client.WriteAPIBlocking(s.org, s.bucket)
	if err := writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influxdb write to %s/%s: %w", s.org, s.bucket, err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
