package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/senegalairwatch/senegal-air-watch/internal/store"
	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

var validate = validator.New()

// MeasurementReader is the read side of the measurement store.
type MeasurementReader interface {
	GetLatest(station string) (weather.Record, error)
	GetRange(station string, from, to time.Time) ([]weather.Record, error)
	Stations() []string
}

// NewApp creates the Fiber app with the centralized JSON error handler.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, registry *weather.Registry, measurements MeasurementReader) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":             "ok",
			"service":            "senegal-air-watch",
			"stations":           registry.Len(),
			"stations_with_data": len(measurements.Stations()),
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(registry.All())
	})

	v1.Get("/measurements/latest", func(c *fiber.Ctx) error {
		st, err := parseStationQuery(c, registry)
		if err != nil {
			return err
		}

		rec, err := measurements.GetLatest(st.Name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurements for requested station")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurements")
		}

		return c.JSON(rec)
	})

	v1.Get("/measurements", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c, registry); err != nil {
			return err
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := measurements.GetRange(req.Station.Name, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurements for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurements")
		}

		return c.JSON(fiber.Map{
			"station": req.Station,
			"from":    req.From,
			"to":      req.To,
			"records": records,
		})
	})
}

// stationQuery holds the query parameter identifying a station.
type stationQuery struct {
	Station string `validate:"required"`
}

// parseStationQuery validates the station parameter and resolves it against
// the registry. Unknown stations are a 404.
func parseStationQuery(c *fiber.Ctx, registry *weather.Registry) (weather.Station, error) {
	q := stationQuery{Station: c.Query("station")}
	if err := validate.Struct(q); err != nil {
		return weather.Station{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st, ok := registry.Get(q.Station)
	if !ok {
		return weather.Station{}, fiber.NewError(fiber.StatusNotFound, "unknown station "+strconv.Quote(q.Station))
	}
	return st, nil
}

// rangeQuery holds query parameters for the range endpoint.
type rangeQuery struct {
	Station weather.Station
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
}

func (r *rangeQuery) bind(c *fiber.Ctx, registry *weather.Registry) error {
	st, err := parseStationQuery(c, registry)
	if err != nil {
		return err
	}
	r.Station = st

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	to, err := parseTime(toStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	r.From = from
	r.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
