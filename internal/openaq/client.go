package openaq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the OpenAQ API root.
const DefaultBaseURL = "https://api.openaq.org"

var (
	ErrUnauthorized     = errors.New("openaq authentication failed")
	ErrRateLimited      = errors.New("openaq rate limit reached")
	ErrServerError      = errors.New("openaq server error")
	ErrUnexpectedStatus = errors.New("openaq unexpected status code")
)

// maxPages bounds location paging in case the API keeps returning full pages.
const maxPages = 100

// API is the subset of the OpenAQ service the explorer depends on.
type API interface {
	ListLocations(ctx context.Context, country string, limit int) ([]Location, error)
	Sensors(ctx context.Context, locationID int) ([]Sensor, error)
	Close()
}

// Client talks to the OpenAQ v3 REST API.
type Client struct {
	rest   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client authenticated with apiKey. A zero timeout keeps
// the HTTP client default.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-Key", apiKey).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger})
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}
	return &Client{rest: rest, logger: logger}
}

// Close releases the pooled connections held by the client.
func (c *Client) Close() {
	c.rest.GetClient().CloseIdleConnections()
}

// LocationsPage fetches one page of locations for a country ISO code.
func (c *Client) LocationsPage(ctx context.Context, country string, limit, page int) ([]Location, Meta, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"iso":        country,
			"limit":      strconv.Itoa(limit),
			"page":       strconv.Itoa(page),
			"order_by":   "id",
			"sort_order": "asc",
		}).
		Get("/v3/locations")
	if err != nil {
		return nil, Meta{}, fmt.Errorf("list locations: %w", err)
	}
	if err := classifyStatus(resp.StatusCode(), resp.Body()); err != nil {
		return nil, Meta{}, fmt.Errorf("list locations: %w", err)
	}

	var out locationsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, Meta{}, fmt.Errorf("decode locations: %w", err)
	}
	return out.Results, out.Meta, nil
}

// ListLocations pages through every location of a country in ascending id order.
// Paging stops on a short page or once the reported total has been read.
func (c *Client) ListLocations(ctx context.Context, country string, limit int) ([]Location, error) {
	var all []Location
	for page := 1; page <= maxPages; page++ {
		results, meta, err := c.LocationsPage(ctx, country, limit, page)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
		c.logger.Debug("locations page fetched", "page", page, "results", len(results), "total", len(all))

		if len(results) < limit {
			break
		}
		if found, ok := meta.FoundCount(); ok && len(all) >= found {
			break
		}
	}
	return all, nil
}

// Sensors lists the sensors installed at a location.
func (c *Client) Sensors(ctx context.Context, locationID int) ([]Sensor, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(locationID)).
		Get("/v3/locations/{id}/sensors")
	if err != nil {
		return nil, fmt.Errorf("list sensors of location %d: %w", locationID, err)
	}
	if err := classifyStatus(resp.StatusCode(), resp.Body()); err != nil {
		return nil, fmt.Errorf("list sensors of location %d: %w", locationID, err)
	}

	var out sensorsResponse
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sensors of location %d: %w", locationID, err)
	}
	return out.Results, nil
}

func classifyStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %d", ErrUnauthorized, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %d", ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: %d %s", ErrServerError, code, truncate(body, 256))
	default:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, code, truncate(body, 256))
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// restyLogger routes resty's internal messages to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
