// Command validate checks a station data file before it is handed to the map
// renderer. It verifies the record structure, parses every station, and
// classifies each station for every map kind, printing the colour bucket
// counts per kind and every failure found.
//
// Usage:
//
//	go run ./cmd/validate -data datosEstaciones.txt [-layout layout.yaml]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/precip-maps/internal/adapter/filesystem"
	"github.com/couchcryptid/precip-maps/internal/config"
	"github.com/couchcryptid/precip-maps/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the station data file")
	layoutPath := flag.String("layout", "", "optional layout YAML; stations outside its extent are reported")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *dataPath, *layoutPath))
}

func run(w io.Writer, dataPath, layoutPath string) int {
	fmt.Fprintln(w, "=== Station Data Validation ===")
	fmt.Fprintln(w)

	store := filesystem.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	records, err := store.LoadRecords(dataPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load station data: %v\n", err)
		return 1
	}
	layout, err := config.LoadLayout(layoutPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load layout: %v\n", err)
		return 1
	}

	structure := validateStructure(records)
	stations, parsing := validateParsing(records, layout.Extent)

	phases := []*phase{structure, parsing}
	buckets := make(map[domain.MetricKind]map[string]int, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		p, counts := validateClassification(kind, stations)
		phases = append(phases, p)
		buckets[kind] = counts
	}

	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d, stations parsed: %d\n", len(records), len(stations))
	for _, kind := range domain.Kinds() {
		printBuckets(w, kind, buckets[kind])
	}

	failed := false
	for _, p := range phases {
		for _, n := range p.notes {
			fmt.Fprintf(w, "  Note: %s\n", n)
		}
		if p.passed() {
			continue
		}
		failed = true
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !failed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validateStructure(records []domain.Record) *phase {
	p := &phase{name: "Phase 1: Record structure"}
	if len(records) == 0 {
		p.errorf("no station records after the header")
		return p
	}
	width := len(records[0])
	for i, rec := range records {
		if len(rec) < domain.MinRecordFields {
			p.errorf("record %d: %d fields, need at least %d", i, len(rec), domain.MinRecordFields)
			continue
		}
		if len(rec) != width {
			p.notef("record %d has %d fields, first record has %d", i, len(rec), width)
		}
	}
	return p
}

func validateParsing(records []domain.Record, extent domain.Extent) ([]domain.Station, *phase) {
	p := &phase{name: "Phase 2: Station parsing"}
	stations, err := domain.ParseStations(records, true)
	for _, e := range unjoin(err) {
		p.errorf("%v", e)
	}

	seen := make(map[string]int, len(stations))
	for _, st := range stations {
		if prev, ok := seen[st.Code]; ok {
			p.notef("station code %s appears at records %d and %d", st.Code, prev, st.Index)
		} else {
			seen[st.Code] = st.Index
		}
		if !extent.Contains(st.Lat, st.Lon) {
			p.notef("station %d (%s) at %.4f, %.4f is outside the map extent", st.Index, st.Code, st.Lat, st.Lon)
		}
	}
	return stations, p
}

func validateClassification(kind domain.MetricKind, stations []domain.Station) (*phase, map[string]int) {
	p := &phase{name: fmt.Sprintf("Phase 3: Classification (%s)", kind)}
	counts := make(map[string]int)
	for _, st := range stations {
		color, err := st.Classify(kind)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		counts[color]++
	}
	return p, counts
}

// printBuckets lists counts in legend order so the report reads like the map.
func printBuckets(w io.Writer, kind domain.MetricKind, counts map[string]int) {
	legend, err := domain.BuildLegend(kind)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "\n%s (%s)\n", kind, legend.Title)
	listed := make(map[string]bool, len(legend.Entries))
	for _, e := range legend.Entries {
		listed[e.Color] = true
		fmt.Fprintf(w, "  %-22s %-16s %d\n", e.Label, e.Color, counts[e.Color])
	}

	var extra []string
	for c := range counts {
		if !listed[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	for _, c := range extra {
		fmt.Fprintf(w, "  %-22s %-16s %d\n", "(unlisted)", c, counts[c])
	}
}

// unjoin flattens an errors.Join result.
func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
