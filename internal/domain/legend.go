package domain

import "fmt"

// LegendEntry pairs a band colour with its human-readable interval.
type LegendEntry struct {
	Color string
	Label string
}

// Legend is the key drawn on a map.
type Legend struct {
	Title   string
	Entries []LegendEntry
}

// LegendTitle is the heading of the kind's legend.
func (k MetricKind) LegendTitle() string {
	switch k {
	case PercentAnomaly:
		return "Anomalía %"
	case MillimeterAnomaly:
		return "Anomalía (mm)"
	case MonthlyTotal:
		return "Acumulado (mm)"
	default:
		return ""
	}
}

// BuildLegend derives the legend for kind from its band table.
func BuildLegend(kind MetricKind) (Legend, error) {
	bands, err := Bands(kind)
	if err != nil {
		return Legend{}, fmt.Errorf("build legend: %w", err)
	}
	entries := make([]LegendEntry, len(bands))
	for i, b := range bands {
		entries[i] = LegendEntry{Color: b.Color, Label: b.Label}
	}
	return Legend{Title: kind.LegendTitle(), Entries: entries}, nil
}
