package domain

import (
	"errors"
	"fmt"
)

// Extent is a lon/lat bounding box in decimal degrees.
type Extent struct {
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
}

// Validate checks that the box is non-empty and within WGS-84 limits.
func (e Extent) Validate() error {
	if e.MinLon >= e.MaxLon || e.MinLat >= e.MaxLat {
		return fmt.Errorf("empty extent: lon [%g, %g] lat [%g, %g]", e.MinLon, e.MaxLon, e.MinLat, e.MaxLat)
	}
	if e.MinLon < -180 || e.MaxLon > 180 || e.MinLat < -90 || e.MaxLat > 90 {
		return errors.New("extent outside WGS-84 bounds")
	}
	return nil
}

// Contains reports whether the coordinate falls inside the box.
func (e Extent) Contains(lat, lon float64) bool {
	return lon >= e.MinLon && lon <= e.MaxLon && lat >= e.MinLat && lat <= e.MaxLat
}

// RegionLabel is a large descriptive text placed on the map, e.g. a sea.
type RegionLabel struct {
	Text     string  `yaml:"text"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Size     float64 `yaml:"size"` // points
	Vertical bool    `yaml:"vertical"`
}

// City is a reference marker drawn under the stations.
type City struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// Layout is the static geography of a map: what area is shown and which
// fixed labels and cities are drawn on it.
type Layout struct {
	Extent  Extent        `yaml:"extent"`
	Regions []RegionLabel `yaml:"regions"`
	Cities  []City        `yaml:"cities"`
}

// DefaultLayout returns the Costa Rica layout used by the operational maps.
func DefaultLayout() Layout {
	return Layout{
		Extent: Extent{MinLon: -86, MaxLon: -82.5, MinLat: 8, MaxLat: 11.3},
		Regions: []RegionLabel{
			{Text: "Océano Pacífico", Lat: 9, Lon: -85.1, Size: 45},
			{Text: "Mar Caribe", Lat: 10.2, Lon: -83.2, Size: 45},
			{Text: "Nicaragua", Lat: 11.15, Lon: -85.0, Size: 40},
			{Text: "Panamá", Lat: 8.8, Lon: -82.7, Size: 40, Vertical: true},
		},
		Cities: []City{
			{Name: "Liberia", Lat: 10.6350403, Lon: -85.4377213},
			{Name: "Golfito", Lat: 8.6032696, Lon: -83.1134186},
			{Name: "San Jose", Lat: 9.9333296, Lon: -84.0833282},
			{Name: "Alajuela", Lat: 10.0162497, Lon: -84.2116318},
			{Name: "Cd. Quesada", Lat: 10.3238096, Lon: -84.4271393},
			{Name: "Cartago", Lat: 9.86444, Lon: -83.9194412},
			{Name: "Siquirres", Lat: 10.0974798, Lon: -83.5065918},
			{Name: "San Vito", Lat: 8.8207903, Lon: -82.9709167},
			{Name: "Upala", Lat: 10.899065, Lon: -85.017947},
			{Name: "Los Chiles", Lat: 11.03333, Lon: -84.7166672},
			{Name: "Sarapiquí", Lat: 10.452225, Lon: -84.018191},
			{Name: "Palmares", Lat: 10.060881, Lon: -84.43},
			{Name: "Limon", Lat: 9.9907398, Lon: -83.0359573},
			{Name: "Quepos", Lat: 9.4306297, Lon: -84.1623077},
			{Name: "Nosara", Lat: 9.979184, Lon: -85.649843},
			{Name: "Tortuguero", Lat: 10.541779, Lon: -83.502059},
		},
	}
}
