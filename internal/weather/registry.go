package weather

import (
	"fmt"
)

// Registry is the ordered, immutable set of stations for a run.
type Registry struct {
	stations []Station
	byName   map[string]Station
}

// NewRegistry builds a registry preserving the given order.
// Station names must be non-empty and unique.
func NewRegistry(stations []Station) (*Registry, error) {
	r := &Registry{
		stations: make([]Station, 0, len(stations)),
		byName:   make(map[string]Station, len(stations)),
	}
	for _, st := range stations {
		if st.Name == "" {
			return nil, fmt.Errorf("station with empty name")
		}
		if _, dup := r.byName[st.Name]; dup {
			return nil, fmt.Errorf("duplicate station %q", st.Name)
		}
		r.stations = append(r.stations, st)
		r.byName[st.Name] = st
	}
	return r, nil
}

// DefaultRegistry returns the Senegal stations collected by default.
func DefaultRegistry() *Registry {
	r, err := NewRegistry([]Station{
		{Name: "Dakar", Latitude: 14.746475571894893, Longitude: -17.510440956465402},
		{Name: "Ouakam", Latitude: 14.720079659709183, Longitude: -17.490598679618262},
		{Name: "Diourbel1", Latitude: 14.661614, Longitude: -16.23111},
		{Name: "Notre_dame_Diourbel2", Latitude: 14.653855, Longitude: -16.2306},
		{Name: "SaintLouis", Latitude: 16.019319341426606, Longitude: -16.490593389948394},
		{Name: "RichardToll", Latitude: 16.457985152738317, Longitude: -15.705461444809703},
		{Name: "Pikine", Latitude: 14.7444588, Longitude: -17.4017114},
		{Name: "Thies", Latitude: 14.794498116325476, Longitude: -16.96105368259619},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// All returns a copy of the stations in registry order.
func (r *Registry) All() []Station {
	out := make([]Station, len(r.stations))
	copy(out, r.stations)
	return out
}

// Get returns the station registered under name.
func (r *Registry) Get(name string) (Station, bool) {
	st, ok := r.byName[name]
	return st, ok
}

// Len returns the number of registered stations.
func (r *Registry) Len() int {
	return len(r.stations)
}
