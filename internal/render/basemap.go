package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

//go:embed basemap/costa_rica.geojson
var defaultBasemapJSON []byte

// Layer names recognised in the "layer" property of basemap features.
const (
	LayerLand   = "land"
	LayerBorder = "border"
	LayerState  = "state"
)

// Path is an ordered run of lon/lat coordinates.
type Path []geom.Coord

// Basemap holds the vector layers drawn under the stations.
type Basemap struct {
	Land    []Path // closed rings; outlines double as coastlines
	Borders []Path // national borders
	States  []Path // first-level administrative boundaries
}

// DefaultBasemap returns the embedded coarse Costa Rica basemap.
func DefaultBasemap() (*Basemap, error) {
	return ParseBasemap(defaultBasemapJSON)
}

// LoadBasemap reads a GeoJSON FeatureCollection from path.
func LoadBasemap(path string) (*Basemap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read basemap: %w", err)
	}
	return ParseBasemap(data)
}

// ParseBasemap decodes a GeoJSON FeatureCollection whose features carry a
// "layer" property of land, border or state. Land accepts (multi)polygons;
// border and state accept (multi)linestrings. Other features are ignored.
func ParseBasemap(data []byte) (*Basemap, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse basemap: %w", err)
	}

	bm := &Basemap{}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		layer, _ := f.Properties["layer"].(string)
		var err error
		switch layer {
		case LayerLand:
			bm.Land, err = appendRings(bm.Land, f.Geometry)
		case LayerBorder:
			bm.Borders, err = appendLines(bm.Borders, f.Geometry)
		case LayerState:
			bm.States, err = appendLines(bm.States, f.Geometry)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("basemap feature %d (%s): %w", i, layer, err)
		}
	}

	if len(bm.Land) == 0 {
		return nil, fmt.Errorf("parse basemap: no %q features", LayerLand)
	}
	return bm, nil
}

func appendRings(dst []Path, g geom.T) ([]Path, error) {
	switch g := g.(type) {
	case *geom.Polygon:
		for i := 0; i < g.NumLinearRings(); i++ {
			dst = append(dst, Path(g.LinearRing(i).Coords()))
		}
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			var err error
			if dst, err = appendRings(dst, g.Polygon(i)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported land geometry %T", g)
	}
	return dst, nil
}

func appendLines(dst []Path, g geom.T) ([]Path, error) {
	switch g := g.(type) {
	case *geom.LineString:
		dst = append(dst, Path(g.Coords()))
	case *geom.MultiLineString:
		for i := 0; i < g.NumLineStrings(); i++ {
			dst = append(dst, Path(g.LineString(i).Coords()))
		}
	case *geom.Polygon:
		// Boundary datasets sometimes ship areas; their rings are the lines.
		return appendRings(dst, g)
	case *geom.MultiPolygon:
		return appendRings(dst, g)
	default:
		return nil, fmt.Errorf("unsupported line geometry %T", g)
	}
	return dst, nil
}
