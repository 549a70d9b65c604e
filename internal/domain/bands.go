package domain

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Interval is a range on the real line. Open ends use ±Inf.
type Interval struct {
	Lower       float64
	Upper       float64
	LowerClosed bool
	UpperClosed bool
}

// Contains reports whether v lies inside the interval. NaN is never contained.
func (i Interval) Contains(v float64) bool {
	aboveLower := v > i.Lower || (i.LowerClosed && v == i.Lower)
	belowUpper := v < i.Upper || (i.UpperClosed && v == i.Upper)
	return aboveLower && belowUpper
}

func (i Interval) String() string {
	lb, ub := "(", ")"
	if i.LowerClosed {
		lb = "["
	}
	if i.UpperClosed {
		ub = "]"
	}
	return fmt.Sprintf("%s%g, %g%s", lb, i.Lower, i.Upper, ub)
}

// Band is one colour class of a metric kind, with its legend label.
type Band struct {
	Interval
	Color string
	Label string
}

var (
	inf    = math.Inf(1)
	negInf = math.Inf(-1)
)

// below builds (-Inf, hi).
func below(hi float64) Interval { return Interval{Lower: negInf, Upper: hi} }

// above builds (lo, +Inf).
func above(lo float64) Interval { return Interval{Lower: lo, Upper: inf} }

// dry builds [lo, hi).
func dry(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, LowerClosed: true}
}

// wet builds (lo, hi].
func wet(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, UpperClosed: true}
}

// neutral builds [lo, hi].
func neutral(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, LowerClosed: true, UpperClosed: true}
}

var percentBands = []Band{
	{below(-150), "red", "[an < -150%]"},
	{dry(-150, -100), "firebrick", "[-150% <= an < -100%]"},
	{dry(-100, -75), "indianred", "[-100% <= an < -75%]"},
	{dry(-75, -50), "chocolate", "[-75% <= an < -50%]"},
	{dry(-50, -25), "coral", "[-50% <= an < -25%]"},
	{dry(-25, -10), "khaki", "[-25% <= an < -10%]"},
	{neutral(-10, 10), "floralwhite", "[-10% <= an <= 10%]"},
	{wet(10, 25), "mediumspringgreen", "[10% < an <= 25%]"},
	{wet(25, 50), "mediumseagreen", "[25% < an <= 50%]"},
	{wet(50, 75), "green", "[50% < an <= 75%]"},
	{wet(75, 100), "royalblue", "[75% < an <= 100%]"},
	{wet(100, 150), "blue", "[100% < an <= 150%]"},
	{above(150), "darkblue", "[150% < an]"},
}

var millimeterBands = []Band{
	{below(-200), "maroon", "[an < -200]"},
	{dry(-200, -150), "firebrick", "[-200 <= an < -150]"},
	{dry(-150, -100), "red", "[-150 <= an < -100]"},
	{dry(-100, -70), "indianred", "[-100 <= an < -70]"},
	{dry(-70, -50), "orange", "[-70 <= an < -50]"},
	{dry(-50, -30), "lightcoral", "[-50 <= an < -30]"},
	{dry(-30, -10), "lightsalmon", "[-30 <= an < -10]"},
	{neutral(-10, 10), "floralwhite", "[-10 <= an <= 10]"},
	{wet(10, 30), "lightskyblue", "[10 < an <= 30]"},
	{wet(30, 50), "darkturquoise", "[30 < an <= 50]"},
	{wet(50, 70), "deepskyblue", "[50 < an <= 70]"},
	{wet(70, 100), "royalblue", "[70 < an <= 100]"},
	{wet(100, 150), "blue", "[100 < an <= 150]"},
	{wet(150, 200), "darkblue", "[150 < an <= 200]"},
	{above(200), "purple", "[200 < an]"},
}

// The last band starts strictly above 400, leaving 400 itself unclassified.
var totalBands = []Band{
	{dry(0, 10), "azure", "[0-10 mm]"},
	{dry(10, 20), "lightcyan", "[10-20 mm]"},
	{dry(20, 40), "paleturquoise", "[20-40 mm]"},
	{dry(40, 60), "lightskyblue", "[40-60 mm]"},
	{dry(60, 80), "deepskyblue", "[60-80 mm]"},
	{dry(80, 100), "steelblue", "[80-100 mm]"},
	{dry(100, 140), "dodgerblue", "[100-140 mm]"},
	{dry(140, 180), "royalblue", "[140-180 mm]"},
	{dry(180, 220), "blue", "[180-220 mm]"},
	{dry(220, 260), "mediumblue", "[220-260 mm]"},
	{dry(260, 300), "darkblue", "[260-300 mm]"},
	{dry(300, 350), "mediumorchid", "[300-350 mm]"},
	{dry(350, 400), "darkviolet", "[350-400 mm]"},
	{above(400), "indigo", "[400 mm < acum]"},
}

// Bands returns a copy of the ordered band table for kind.
func Bands(kind MetricKind) ([]Band, error) {
	var table []Band
	switch kind {
	case PercentAnomaly:
		table = percentBands
	case MillimeterAnomaly:
		table = millimeterBands
	case MonthlyTotal:
		table = totalBands
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetricKind, int(kind))
	}
	out := make([]Band, len(table))
	copy(out, table)
	return out, nil
}

// Classify returns the colour name of the band containing value.
func Classify(kind MetricKind, value float64) (string, error) {
	bands, err := Bands(kind)
	if err != nil {
		return "", err
	}
	for _, b := range bands {
		if b.Contains(value) {
			return b.Color, nil
		}
	}
	return "", fmt.Errorf("%w: %s value %g", ErrClassificationGap, kind, value)
}

// ClassifyString parses raw as a float and classifies it.
func ClassifyString(kind MetricKind, raw string) (string, error) {
	v, err := parseFloat(raw)
	if err != nil {
		return "", err
	}
	return Classify(kind, v)
}

// ResolveColor maps a CSS colour name to its RGBA value.
func ResolveColor(name string) (color.Color, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return c, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrValueParse, raw)
	}
	return v, nil
}
