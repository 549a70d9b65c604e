package domain

import "time"

// MapProduct describes one image written by a run.
type MapProduct struct {
	RunID      string     `json:"run_id"`
	Kind       MetricKind `json:"-"`
	KindTag    string     `json:"kind"`
	Year       int        `json:"year"`
	Month      string     `json:"month"`
	AsOf       time.Time  `json:"as_of"`
	Path       string     `json:"path"`
	Plotted    int        `json:"stations_plotted"`
	Skipped    int        `json:"stations_skipped"`
	RenderedAt time.Time  `json:"rendered_at"`
}

// NewMapProduct fills the derived fields of a product.
func NewMapProduct(runID string, kind MetricKind, period Period, asOf time.Time, path string, plotted, skipped int, renderedAt time.Time) MapProduct {
	return MapProduct{
		RunID:      runID,
		Kind:       kind,
		KindTag:    kind.String(),
		Year:       period.Year,
		Month:      period.MonthName(),
		AsOf:       asOf,
		Path:       path,
		Plotted:    plotted,
		Skipped:    skipped,
		RenderedAt: renderedAt,
	}
}
