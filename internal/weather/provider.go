package weather

import (
	"context"
	"time"
)

// Archive abstracts a historical weather data source (e.g. the Open-Meteo archive).
// Fetch performs exactly one request and returns the raw payload.
type Archive interface {
	Name() string
	Fetch(ctx context.Context, st Station, req ArchiveRequest) ([]byte, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveRecords(station string, records []Record)
	GetLatest(station string) (Record, error)
	GetRange(station string, from, to time.Time) ([]Record, error)
}
