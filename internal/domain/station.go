package domain

import (
	"errors"
	"fmt"
)

// MinRecordFields is the shortest record that still carries coordinates and
// all three trailing metric values.
const MinRecordFields = 8

const (
	latField = 3
	lonField = 4
)

// Record is one data line split on commas, header excluded.
type Record []string

// Station is a parsed record with named fields.
type Station struct {
	Index      int
	Code       string
	Fields     Record
	Lat        float64
	Lon        float64
	Cumulative float64
	AnomalyMM  float64
	AnomalyPct float64
}

// Value returns the station's value for kind.
func (s Station) Value(kind MetricKind) (float64, error) {
	switch kind {
	case PercentAnomaly:
		return s.AnomalyPct, nil
	case MillimeterAnomaly:
		return s.AnomalyMM, nil
	case MonthlyTotal:
		return s.Cumulative, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMetricKind, int(kind))
	}
}

// Classify returns the colour name of the station's value for kind,
// wrapping any failure in a StationError.
func (s Station) Classify(kind MetricKind) (string, error) {
	v, err := s.Value(kind)
	if err == nil {
		var name string
		name, err = Classify(kind, v)
		if err == nil {
			return name, nil
		}
	}
	return "", &StationError{Index: s.Index, Code: s.Code, Kind: kind, Err: err}
}

// Trailing returns the raw field for kind counted from the end of the record.
func (r Record) Trailing(kind MetricKind) (string, error) {
	off := kind.fieldOffset()
	if off == 0 {
		return "", fmt.Errorf("%w: %d", ErrUnknownMetricKind, int(kind))
	}
	if len(r) < off {
		return "", fmt.Errorf("%w: %d fields", ErrMalformedRecord, len(r))
	}
	return r[len(r)-off], nil
}

// ParseStation converts a record into a Station, failing on short records or
// non-numeric coordinates and values.
func ParseStation(index int, rec Record) (Station, error) {
	st := Station{Index: index, Fields: rec}
	if len(rec) > 0 {
		st.Code = rec[0]
	}
	fail := func(err error) (Station, error) {
		return Station{}, &StationError{Index: index, Code: st.Code, Err: err}
	}

	if len(rec) < MinRecordFields {
		return fail(fmt.Errorf("%w: got %d fields, need at least %d", ErrMalformedRecord, len(rec), MinRecordFields))
	}

	var err error
	if st.Lat, err = parseFloat(rec[latField]); err != nil {
		return fail(fmt.Errorf("latitude: %w", err))
	}
	if st.Lon, err = parseFloat(rec[lonField]); err != nil {
		return fail(fmt.Errorf("longitude: %w", err))
	}

	targets := []struct {
		kind MetricKind
		dst  *float64
	}{
		{MonthlyTotal, &st.Cumulative},
		{MillimeterAnomaly, &st.AnomalyMM},
		{PercentAnomaly, &st.AnomalyPct},
	}
	for _, t := range targets {
		raw, err := rec.Trailing(t.kind)
		if err != nil {
			return fail(err)
		}
		if *t.dst, err = parseFloat(raw); err != nil {
			return fail(fmt.Errorf("%s: %w", t.kind, err))
		}
	}
	return st, nil
}

// ParseStations parses every record. It stops at the first failure unless
// skipInvalid is set, in which case failing records are dropped and their
// errors joined into the second return value.
func ParseStations(records []Record, skipInvalid bool) ([]Station, error) {
	stations := make([]Station, 0, len(records))
	var errs []error
	for i, rec := range records {
		st, err := ParseStation(i, rec)
		if err != nil {
			if !skipInvalid {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		stations = append(stations, st)
	}
	return stations, errors.Join(errs...)
}
