package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given station.
	ErrNotFound = errors.New("no measurements for station")
)

// RecordHistory holds the time-ordered records of one station.
type RecordHistory struct {
	Records []weather.Record
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: station name
	data map[string]*RecordHistory

	// retention configuration
	maxRecords int           // max number of records per station
	maxAge     time.Duration // optional max age of records
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxRecords or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxRecords int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*RecordHistory),
		maxRecords: maxRecords,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRecords merges records into the station history. A record whose
// timestamp is already stored replaces the stored one. Retention is enforced
// after the merge.
func (s *MemoryStore) SaveRecords(station string, records []weather.Record) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[station]
	if !ok {
		history = &RecordHistory{}
		s.data[station] = history
	}

	byTime := make(map[int64]int, len(history.Records))
	for i, r := range history.Records {
		byTime[r.Time.UnixNano()] = i
	}
	for _, r := range records {
		key := r.Time.UnixNano()
		if i, ok := byTime[key]; ok {
			history.Records[i] = r
			continue
		}
		byTime[key] = len(history.Records)
		history.Records = append(history.Records, r)
	}
	sort.SliceStable(history.Records, func(i, j int) bool {
		return history.Records[i].Time.Before(history.Records[j].Time)
	})

	// Enforce retention by count.
	if s.maxRecords > 0 && len(history.Records) > s.maxRecords {
		over := len(history.Records) - s.maxRecords
		history.Records = history.Records[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := sort.Search(len(history.Records), func(i int) bool {
			return !history.Records[i].Time.Before(cutoff)
		})
		history.Records = history.Records[i:]
	}
}

// GetLatest returns the most recent record of a station.
func (s *MemoryStore) GetLatest(station string) (weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[station]
	if !ok || len(history.Records) == 0 {
		return weather.Record{}, ErrNotFound
	}
	return history.Records[len(history.Records)-1], nil
}

// GetRange returns all records of a station between from and to (inclusive).
func (s *MemoryStore) GetRange(station string, from, to time.Time) ([]weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[station]
	if !ok || len(history.Records) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Record
	for _, r := range history.Records {
		if !r.Time.Before(from) && !r.Time.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Stations returns the names of stations holding at least one record, sorted.
func (s *MemoryStore) Stations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name, h := range s.data {
		if len(h.Records) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
