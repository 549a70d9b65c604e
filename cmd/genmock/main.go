// Command genmock writes a deterministic station data file whose values sweep
// every colour band of every map kind, and optionally a placeholder logo, so
// the renderer can be exercised end to end without operational data.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/datosEstaciones.txt -logo testdata/imn.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/couchcryptid/precip-maps/internal/domain"
)

const header = "codigo,nombre,region,lat,lon,acumulado,anomalia_mm,anomalia_pct"

// The stations are laid out along the Cordillera, north-west to south-east.
var (
	start = [2]float64{10.75, -85.45} // lat, lon
	end   = [2]float64{8.65, -82.95}
)

// mockStation is one generated row.
type mockStation struct {
	code       string
	lat, lon   float64
	cumulative float64
	anomalyMM  float64
	anomalyPct float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the station data file")
	logo := flag.String("logo", "", "optional output path for a placeholder PNG logo")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	stations, err := sweep()
	if err != nil {
		return err
	}
	if err := writeFile(*out, func(w io.Writer) error { return writeStations(w, stations) }); err != nil {
		return fmt.Errorf("writing station data: %w", err)
	}
	log.Printf("wrote %d stations: %s", len(stations), *out)

	if *logo != "" {
		if err := writeFile(*logo, writeLogo); err != nil {
			return fmt.Errorf("writing logo: %w", err)
		}
		log.Printf("wrote logo: %s", *logo)
	}
	return nil
}

// sweep returns one station per band index of the largest table. Kinds with
// fewer bands wrap around, so every band of every kind gets at least one
// station.
func sweep() ([]mockStation, error) {
	tables := make(map[domain.MetricKind][]domain.Band, len(domain.Kinds()))
	n := 0
	for _, kind := range domain.Kinds() {
		bands, err := domain.Bands(kind)
		if err != nil {
			return nil, err
		}
		tables[kind] = bands
		n = max(n, len(bands))
	}

	stations := make([]mockStation, n)
	for i := range stations {
		f := float64(i) / float64(max(n-1, 1))
		stations[i] = mockStation{
			code:       fmt.Sprintf("MOCK%03d", i+1),
			lat:        round4(start[0] + f*(end[0]-start[0])),
			lon:        round4(start[1] + f*(end[1]-start[1])),
			cumulative: representative(tables[domain.MonthlyTotal], i),
			anomalyMM:  representative(tables[domain.MillimeterAnomaly], i),
			anomalyPct: representative(tables[domain.PercentAnomaly], i),
		}
	}
	return stations, nil
}

// representative picks a value strictly inside band i (mod len).
func representative(bands []domain.Band, i int) float64 {
	b := bands[i%len(bands)]
	switch {
	case math.IsInf(b.Lower, -1):
		return b.Upper - 10
	case math.IsInf(b.Upper, 1):
		return b.Lower + 10
	default:
		return (b.Lower + b.Upper) / 2
	}
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func writeStations(w io.Writer, stations []mockStation) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for i, s := range stations {
		row := []string{
			s.code,
			"Estacion " + strconv.Itoa(i+1),
			"mock",
			formatFloat(s.lat),
			formatFloat(s.lon),
			formatFloat(s.cumulative),
			formatFloat(s.anomalyMM),
			formatFloat(s.anomalyPct),
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// writeLogo draws a simple badge standing in for the institutional logo.
func writeLogo(w io.Writer) error {
	const width, height = 300, 150
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawRoundedRectangle(6, 6, width-12, height-12, 18)
	dc.SetRGB255(0, 70, 140)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored("MOCK LOGO", width/2, height/2, 0.5, 0.5)
	return dc.EncodePNG(w)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return f.Close()
}
