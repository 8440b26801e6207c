package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// fakeArchive serves canned payloads keyed by station name.
type fakeArchive struct {
	payloads map[string]string
	errs     map[string]error
	calls    []string
}

func (f *fakeArchive) Name() string { return "fake" }

func (f *fakeArchive) Fetch(_ context.Context, st Station, _ ArchiveRequest) ([]byte, error) {
	f.calls = append(f.calls, st.Name)
	if err, ok := f.errs[st.Name]; ok {
		return nil, err
	}
	return []byte(f.payloads[st.Name]), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Station{
		{Name: "A", Latitude: 10.0, Longitude: 20.0},
		{Name: "B", Latitude: 11.0, Longitude: 21.0},
		{Name: "C", Latitude: 12.0, Longitude: 22.0},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

var testRequest = ArchiveRequest{
	StartDate: "2024-01-01",
	EndDate:   "2024-01-02",
	Variables: []string{"temperature_2m"},
}

func TestCollect_SkipsFailingStations(t *testing.T) {
	archive := &fakeArchive{
		payloads: map[string]string{
			"A": `{"hourly": {"time": ["2024-01-01T00:00", "2024-01-01T01:00"], "temperature_2m": [25.3, 25.1]}}`,
			"C": `{"hourly": {"time": ["2024-01-01T00:00"], "temperature_2m": [22.0]}}`,
		},
		errs: map[string]error{
			"B": errors.New("connection refused"),
		},
	}
	c := NewCollector(archive, testRegistry(t), testLogger())

	results := c.Collect(context.Background(), testRequest)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []string{"A", "B", "C"}
	for i, name := range wantOrder {
		if results[i].Station.Name != name {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Station.Name, name)
		}
		if archive.calls[i] != name {
			t.Errorf("call %d = %q, want %q", i, archive.calls[i], name)
		}
	}
	if results[1].OK() {
		t.Errorf("expected station B to fail")
	}

	stations, records := Collected(results)
	if stations != 2 || records != 3 {
		t.Errorf("Collected = (%d, %d), want (2, 3)", stations, records)
	}
}

func TestCollect_MissingContainerIsNotFatal(t *testing.T) {
	archive := &fakeArchive{
		payloads: map[string]string{
			"A": `{"error": false}`,
			"B": `{"hourly": {"time": ["2024-01-01T00:00"], "temperature_2m": [20.0]}}`,
			"C": `{}`,
		},
	}
	c := NewCollector(archive, testRegistry(t), testLogger())

	results := c.Collect(context.Background(), testRequest)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !errors.Is(results[0].Err, ErrNoHourlyData) {
		t.Errorf("A error = %v, want ErrNoHourlyData", results[0].Err)
	}
	if results[0].Table.Len() != 0 {
		t.Errorf("A contributed %d records, want 0", results[0].Table.Len())
	}

	combined := Combine(results)
	if combined.Len() != 1 {
		t.Errorf("combined records = %d, want 1", combined.Len())
	}
}

func TestCollect_StopsOnCancelledContext(t *testing.T) {
	archive := &fakeArchive{payloads: map[string]string{}}
	c := NewCollector(archive, testRegistry(t), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.Collect(ctx, testRequest)
	if len(results) != 0 {
		t.Errorf("expected no results after cancellation, got %d", len(results))
	}
	if len(archive.calls) != 0 {
		t.Errorf("expected no fetches, got %v", archive.calls)
	}
}

func TestCollectStation_UnknownStation(t *testing.T) {
	c := NewCollector(&fakeArchive{}, testRegistry(t), testLogger())

	_, err := c.CollectStation(context.Background(), Station{Name: "Z"}, testRequest)
	if err == nil {
		t.Fatal("expected error for unregistered station")
	}
}

// recordingStore captures SaveRecords calls.
type recordingStore struct {
	saved map[string][]Record
}

func (s *recordingStore) SaveRecords(station string, records []Record) {
	if s.saved == nil {
		s.saved = make(map[string][]Record)
	}
	s.saved[station] = append(s.saved[station], records...)
}

func (s *recordingStore) GetLatest(string) (Record, error) { return Record{}, nil }

func (s *recordingStore) GetRange(string, time.Time, time.Time) ([]Record, error) { return nil, nil }

func TestCollectAndStore(t *testing.T) {
	archive := &fakeArchive{
		payloads: map[string]string{
			"A": `{"hourly": {"time": ["2024-01-01T00:00", "2024-01-01T01:00"], "temperature_2m": [1, 2]}}`,
			"B": `{"hourly": {"time": [], "temperature_2m": []}}`,
			"C": `{"nothing": true}`,
		},
	}
	store := &recordingStore{}
	c := NewCollector(archive, testRegistry(t), testLogger())

	saved := c.CollectAndStore(context.Background(), store, testRequest)
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}
	if len(store.saved) != 1 || len(store.saved["A"]) != 2 {
		t.Errorf("store contents = %v, want 2 records for A only", store.saved)
	}
}
