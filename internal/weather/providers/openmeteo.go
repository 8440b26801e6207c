package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultArchiveURL is the Open-Meteo historical weather endpoint.
const DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// OpenMeteoArchive implements the weather.Archive interface for the Open-Meteo archive API.
type OpenMeteoArchive struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoArchive creates an archive fetcher. An empty baseURL selects DefaultArchiveURL.
func NewOpenMeteoArchive(client *http.Client, baseURL string, breakerThreshold int) *OpenMeteoArchive {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	return &OpenMeteoArchive{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-archive", breakerThreshold),
	}
}

func (p *OpenMeteoArchive) Name() string {
	return p.name
}

func (p *OpenMeteoArchive) Fetch(ctx context.Context, st weather.Station, req weather.ArchiveRequest) ([]byte, error) {
	u := fmt.Sprintf("%s?%s", p.baseURL, archiveQuery(st, req).Encode())
	httpReq, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request for %s: %w", st.Name, err)
	}

	body, err := doRequest(ctx, p.client, p.circuit, httpReq)
	if err != nil {
		return nil, fmt.Errorf("open-meteo archive for %s: %w", st.Name, err)
	}
	return body, nil
}

func archiveQuery(st weather.Station, req weather.ArchiveRequest) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(st.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(st.Longitude, 'f', -1, 64))
	values.Set("start_date", req.StartDate)
	values.Set("end_date", req.EndDate)
	values.Set("hourly", strings.Join(req.Variables, ","))
	values.Set("timezone", "UTC")
	return values
}
