package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValueParse is returned when a field that must be numeric is not.
	ErrValueParse = errors.New("value is not a number")

	// ErrMalformedRecord is returned when a record has too few fields.
	ErrMalformedRecord = errors.New("malformed station record")

	// ErrClassificationGap is returned when a value matches no band.
	ErrClassificationGap = errors.New("value outside all bands")

	// ErrUnknownMetricKind is returned for a kind outside the enumeration.
	ErrUnknownMetricKind = errors.New("unknown metric kind")

	// ErrUnknownColor is returned when a band colour has no RGB definition.
	ErrUnknownColor = errors.New("unknown color name")
)

// StationError ties a failure to the station and metric kind that raised it.
type StationError struct {
	Index int // zero-based position in the data file, header excluded
	Code  string
	Kind  MetricKind // zero when the failure is independent of the kind
	Err   error
}

func (e *StationError) Error() string {
	if e.Kind == 0 {
		return fmt.Sprintf("station %d (%s): %v", e.Index, e.Code, e.Err)
	}
	return fmt.Sprintf("station %d (%s) [%s]: %v", e.Index, e.Code, e.Kind, e.Err)
}

func (e *StationError) Unwrap() error { return e.Err }
