package weather

import "testing"

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Len() != 8 {
		t.Fatalf("expected 8 stations, got %d", reg.Len())
	}

	all := reg.All()
	if all[0].Name != "Dakar" || all[len(all)-1].Name != "Thies" {
		t.Errorf("unexpected registry order: first=%q last=%q", all[0].Name, all[len(all)-1].Name)
	}

	st, ok := reg.Get("SaintLouis")
	if !ok {
		t.Fatal("expected SaintLouis to be registered")
	}
	if st.Latitude != 16.019319341426606 {
		t.Errorf("SaintLouis latitude = %v", st.Latitude)
	}

	if _, ok := reg.Get("Ziguinchor"); ok {
		t.Error("expected Ziguinchor not to be registered")
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()

	all := reg.All()
	all[0].Name = "changed"

	if reg.All()[0].Name != "Dakar" {
		t.Error("modifying All() result changed the registry")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		stations []Station
	}{
		{name: "duplicate", stations: []Station{{Name: "A"}, {Name: "A"}}},
		{name: "empty name", stations: []Station{{Name: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.stations); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
