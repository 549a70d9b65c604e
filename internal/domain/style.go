package domain

import (
	"fmt"
	"time"
)

// Style holds the per-kind presentation parameters of a map.
type Style struct {
	Title     string
	TextColor string
	LandColor string
}

// BuildStyle formats the map title and picks the text and land colours.
// The first title line names the mapped period; the second states the date
// the data was refreshed, as d/m/yyyy without zero padding.
func BuildStyle(kind MetricKind, asOf time.Time, period Period) (Style, error) {
	var phrase, text, land string
	switch kind {
	case PercentAnomaly:
		phrase, text, land = "Anomalía porcentual de lluvia", "purple", "ivory"
	case MillimeterAnomaly:
		phrase, text, land = "Anomalía de lluvia (mm)", "red", "lightgrey"
	case MonthlyTotal:
		phrase, text, land = "Acumulado total de lluvia", "blue", "palegreen"
	default:
		return Style{}, fmt.Errorf("build style: %w: %d", ErrUnknownMetricKind, int(kind))
	}

	title := fmt.Sprintf("Mapa de %s %s %d\nDatos actualizados al %d/%d/%d",
		phrase, period.MonthName(), period.Year,
		asOf.Day(), int(asOf.Month()), asOf.Year())

	return Style{Title: title, TextColor: text, LandColor: land}, nil
}
