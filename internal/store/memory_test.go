package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

var _ weather.Store = (*MemoryStore)(nil)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(station string, hour int, temp float64) weather.Record {
	return weather.Record{
		Station: station,
		Time:    base.Add(time.Duration(hour) * time.Hour),
		Values:  map[string]*float64{"temperature_2m": &temp},
	}
}

func temp(t *testing.T, r weather.Record) float64 {
	t.Helper()
	v, ok := r.Value("temperature_2m")
	if !ok {
		t.Fatalf("record %v has no temperature", r.Time)
	}
	return v
}

func TestMemoryStore_MergeAndOrder(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveRecords("Dakar", []weather.Record{rec("Dakar", 2, 24), rec("Dakar", 0, 22)})
	s.SaveRecords("Dakar", []weather.Record{rec("Dakar", 1, 23), rec("Dakar", 2, 25)})

	got, err := s.GetRange("Dakar", base, base.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []float64{22, 23, 25} {
		if v := temp(t, got[i]); v != want {
			t.Errorf("record %d = %v, want %v", i, v, want)
		}
	}

	latest, err := s.GetLatest("Dakar")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if !latest.Time.Equal(base.Add(2*time.Hour)) || temp(t, latest) != 25 {
		t.Errorf("unexpected latest %+v", latest)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, err := s.GetLatest("Pikine"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLatest err = %v, want ErrNotFound", err)
	}
	s.SaveRecords("Pikine", []weather.Record{rec("Pikine", 0, 20)})
	if _, err := s.GetRange("Pikine", base.Add(time.Hour), base.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRange err = %v, want ErrNotFound", err)
	}
	s.SaveRecords("Thies", nil)
	if names := s.Stations(); len(names) != 1 || names[0] != "Pikine" {
		t.Errorf("Stations() = %v", names)
	}
}

func TestMemoryStore_RangeInclusive(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveRecords("A", []weather.Record{rec("A", 0, 1), rec("A", 1, 2), rec("A", 2, 3), rec("A", 3, 4)})

	got, err := s.GetRange("A", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || temp(t, got[0]) != 2 || temp(t, got[1]) != 3 {
		t.Errorf("unexpected range %v", got)
	}
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.SaveRecords("A", []weather.Record{rec("A", 0, 1), rec("A", 1, 2), rec("A", 2, 3)})

	got, err := s.GetRange("A", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || temp(t, got[0]) != 2 {
		t.Errorf("expected the two newest records, got %v", got)
	}
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, 90*time.Minute)
	s.now = func() time.Time { return base.Add(3 * time.Hour) }

	s.SaveRecords("A", []weather.Record{rec("A", 0, 1), rec("A", 1, 2), rec("A", 2, 3), rec("A", 3, 4)})
	got, err := s.GetRange("A", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || temp(t, got[0]) != 3 {
		t.Errorf("expected records newer than the cutoff, got %v", got)
	}

	// everything expired
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	s.SaveRecords("A", []weather.Record{rec("A", 4, 5)})
	if _, err := s.GetLatest("A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected all records expired, err = %v", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(0, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(h int) {
			defer wg.Done()
			s.SaveRecords("A", []weather.Record{rec("A", h, float64(h))})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.GetLatest("A")
		}()
	}
	wg.Wait()

	got, err := s.GetRange("A", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8 {
		t.Errorf("expected 8 records, got %d", len(got))
	}
}
