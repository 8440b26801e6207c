package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

const dateLayout = "2006-01-02"

var (
	// ErrMissingAPIKey is returned by RequireOpenAQKey when OPENAQ_API_KEY is unset.
	ErrMissingAPIKey = errors.New("OPENAQ_API_KEY is not set")
	ErrInvalid       = errors.New("invalid configuration")
)

// APIKeyGuidance tells the operator how to provide the OpenAQ key.
const APIKeyGuidance = `The OpenAQ API key was not found.

Recommended: create a .env file in the working directory containing
    OPENAQ_API_KEY=your_key_here
and make sure .env is listed in .gitignore.

Alternatively export it in the shell:
    export OPENAQ_API_KEY=your_key_here

A free key can be obtained at https://explore.openaq.org/register`

var validate = validator.New()

type MeteoConfig struct {
	StartDate        string   `validate:"required,datetime=2006-01-02"`
	EndDate          string   `validate:"required,datetime=2006-01-02"`
	Variables        []string `validate:"min=1,dive,required"`
	BaseURL          string   `validate:"required,url"`
	BreakerThreshold int      `validate:"gte=0"`
}

type OpenAQConfig struct {
	APIKey    string
	BaseURL   string `validate:"required,url"`
	Country   string `validate:"required,len=2"`
	PageLimit int    `validate:"min=1,max=1000"`
}

// InfluxConfig enables the InfluxDB sink when URL is set.
type InfluxConfig struct {
	URL    string `validate:"omitempty,url"`
	Token  string `validate:"required_with=URL"`
	Org    string `validate:"required_with=URL"`
	Bucket string `validate:"required_with=URL"`
}

func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	OutputDir   string `validate:"required"`
	HTTPTimeout time.Duration

	Meteo  MeteoConfig
	OpenAQ OpenAQConfig

	// Optional sinks for meteo records.
	SQLitePath string
	Influx     InfluxConfig

	// Serve mode.
	Port             string        `validate:"required,numeric"`
	ScheduleInterval time.Duration `validate:"gt=0"`
	ScheduleLookback time.Duration `validate:"gt=0"`
	StoreMaxRecords  int           `validate:"gte=0"`
	StoreMaxAge      time.Duration `validate:"gte=0"`

	// ServeBreakerThreshold trips the archive breaker across scheduled runs.
	ServeBreakerThreshold int `validate:"gte=0"`

	// DotEnvLoaded reports whether a .env file was read.
	DotEnvLoaded bool
}

// Load reads configuration from a .env file when present and from the
// environment, applying defaults, then validates it.
func Load() (*AppConfig, error) {
	loaded := godotenv.Load() == nil

	cfg, err := FromEnv(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// FromEnv builds the configuration from environment variables only. now
// provides the default end date.
func FromEnv(now time.Time) (*AppConfig, error) {
	var err error
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	if cfg.LogLevel, err = parseLogLevel(getenvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", ".")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}

	cfg.Meteo = MeteoConfig{
		StartDate: getenvDefault("METEO_START_DATE", "2024-01-01"),
		EndDate:   getenvDefault("METEO_END_DATE", now.Format(dateLayout)),
		Variables: splitList(getenvDefault("METEO_VARIABLES", "temperature_2m,relative_humidity_2m,pressure_msl,windspeed_10m")),
		BaseURL:   getenvDefault("METEO_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
	}
	if cfg.Meteo.BreakerThreshold, err = getenvInt("METEO_BREAKER_THRESHOLD", 0); err != nil {
		return nil, err
	}

	cfg.OpenAQ = OpenAQConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAQ_API_KEY")),
		BaseURL: getenvDefault("OPENAQ_BASE_URL", "https://api.openaq.org"),
		Country: strings.ToUpper(getenvDefault("OPENAQ_COUNTRY", "SN")),
	}
	if cfg.OpenAQ.PageLimit, err = getenvInt("OPENAQ_PAGE_LIMIT", 1000); err != nil {
		return nil, err
	}

	cfg.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	cfg.Influx = InfluxConfig{
		URL:    strings.TrimSpace(os.Getenv("INFLUXDB_URL")),
		Token:  strings.TrimSpace(os.Getenv("INFLUXDB_TOKEN")),
		Org:    strings.TrimSpace(os.Getenv("INFLUXDB_ORG")),
		Bucket: strings.TrimSpace(os.Getenv("INFLUXDB_BUCKET")),
	}

	cfg.Port = getenvDefault("PORT", "8080")
	if cfg.ScheduleInterval, err = getenvDuration("SCHEDULE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ScheduleLookback, err = getenvDuration("SCHEDULE_LOOKBACK", 48*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StoreMaxRecords, err = getenvInt("STORE_MAX_RECORDS", 0); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 0); err != nil {
		return nil, err
	}
	if cfg.ServeBreakerThreshold, err = getenvInt("SERVE_BREAKER_THRESHOLD", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints and that the meteo range is ordered.
// It is called again after command-line flags override values.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Meteo.StartDate > c.Meteo.EndDate {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalid, c.Meteo.StartDate, c.Meteo.EndDate)
	}
	return nil
}

// RequireOpenAQKey fails with ErrMissingAPIKey when no key is configured.
func (c *AppConfig) RequireOpenAQKey() error {
	if c.OpenAQ.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ArchiveRequest is the fixed date range and variable set of a meteo run.
func (c *AppConfig) ArchiveRequest() weather.ArchiveRequest {
	return weather.ArchiveRequest{
		StartDate: c.Meteo.StartDate,
		EndDate:   c.Meteo.EndDate,
		Variables: append([]string(nil), c.Meteo.Variables...),
	}
}

// LookbackRequest covers the trailing lookback window ending at now.
func (c *AppConfig) LookbackRequest(now time.Time) weather.ArchiveRequest {
	now = now.UTC()
	return weather.ArchiveRequest{
		StartDate: now.Add(-c.ScheduleLookback).Format(dateLayout),
		EndDate:   now.Format(dateLayout),
		Variables: append([]string(nil), c.Meteo.Variables...),
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
