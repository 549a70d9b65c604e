package domain

import "fmt"

// MetricKind selects which station value is mapped and how.
type MetricKind int

const (
	PercentAnomaly MetricKind = iota + 1
	MillimeterAnomaly
	MonthlyTotal
)

// Kinds returns every metric kind in rendering order.
func Kinds() []MetricKind {
	return []MetricKind{PercentAnomaly, MillimeterAnomaly, MonthlyTotal}
}

// String returns the tag used for the kind by the operational database.
func (k MetricKind) String() string {
	switch k {
	case PercentAnomaly:
		return "anomPorc_lluvia"
	case MillimeterAnomaly:
		return "anomMM_lluvia"
	case MonthlyTotal:
		return "acumulado_mensual"
	default:
		return fmt.Sprintf("MetricKind(%d)", int(k))
	}
}

// ParseMetricKind resolves a database tag back into a MetricKind.
func ParseMetricKind(s string) (MetricKind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetricKind, s)
}

// Valid reports whether k is one of the enumerated kinds.
func (k MetricKind) Valid() bool {
	return k >= PercentAnomaly && k <= MonthlyTotal
}

// FilePrefix is the output file name prefix for the kind.
func (k MetricKind) FilePrefix() string {
	switch k {
	case PercentAnomaly:
		return "anomalia_PREC"
	case MillimeterAnomaly:
		return "anomalia_PRECmm"
	case MonthlyTotal:
		return "acumulado_PREC"
	default:
		return ""
	}
}

// fieldOffset is the position of the kind's value counted from the end of a record.
func (k MetricKind) fieldOffset() int {
	switch k {
	case PercentAnomaly:
		return 1
	case MillimeterAnomaly:
		return 2
	case MonthlyTotal:
		return 3
	default:
		return 0
	}
}
