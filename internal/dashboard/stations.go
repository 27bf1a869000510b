package dashboard

import (
	"cmp"
	_ "embed"
	"fmt"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var stationsYAML []byte

const earthRadiusMeters = 6371000

// Station is a rail station offered by the train view
type Station struct {
	Name string  `yaml:"name" json:"name"`
	ID   string  `yaml:"id" json:"id"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

// StationWithDistance is a station plus its distance from a query point
type StationWithDistance struct {
	Station
	DistanceMeters float64 `json:"distanceMeters"`
	DistanceMiles  float64 `json:"distanceMiles"`
}

// StationTable is the fixed list of stations baked into the client
type StationTable struct {
	stations []Station
}

// DefaultStations parses the embedded station table
func DefaultStations() (*StationTable, error) {
	return ParseStations(stationsYAML)
}

// ParseStations reads a station table from YAML
func ParseStations(data []byte) (*StationTable, error) {
	var doc struct {
		Stations []Station `yaml:"stations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing station table: %w", err)
	}
	if len(doc.Stations) == 0 {
		return nil, fmt.Errorf("station table has no stations")
	}

	seen := make(map[string]bool, len(doc.Stations))
	for _, s := range doc.Stations {
		if s.Name == "" || s.ID == "" {
			return nil, fmt.Errorf("station table entry missing name or id: %+v", s)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate station id %s", s.ID)
		}
		seen[s.ID] = true
	}

	return &StationTable{stations: doc.Stations}, nil
}

// All returns the stations in display order
func (t *StationTable) All() []Station {
	return slices.Clone(t.stations)
}

// Find resolves a station by map id or case-insensitive display name
func (t *StationTable) Find(nameOrID string) (Station, bool) {
	query := strings.TrimSpace(nameOrID)
	for _, s := range t.stations {
		if s.ID == query || strings.EqualFold(s.Name, query) {
			return s, true
		}
	}
	return Station{}, false
}

// Name returns the display name for a map id, or the id itself
func (t *StationTable) Name(id string) string {
	for _, s := range t.stations {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

// FindClosest returns the N closest stations to a point
func (t *StationTable) FindClosest(lat, lon float64, limit int) []StationWithDistance {
	results := make([]StationWithDistance, 0, len(t.stations))
	for _, s := range t.stations {
		dist := Haversine(lat, lon, s.Lat, s.Lon)
		results = append(results, StationWithDistance{
			Station:        s,
			DistanceMeters: dist,
			DistanceMiles:  MetersToMiles(dist),
		})
	}

	slices.SortStableFunc(results, func(a, b StationWithDistance) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Haversine calculates the distance in meters between two lat/lng points
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// MetersToMiles converts meters to miles
func MetersToMiles(meters float64) float64 {
	return meters / 1609.344
}
