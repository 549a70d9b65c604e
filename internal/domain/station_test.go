package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStationCode = "84-021"

func sampleRecord() Record {
	return Record{testStationCode, "Santa Barbara", "Heredia", "10.0347", "-84.1572", "1200", "145.2", "-32.5", "-18.3"}
}

func TestParseStation(t *testing.T) {
	st, err := ParseStation(4, sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, 4, st.Index)
	assert.Equal(t, testStationCode, st.Code)
	assert.InDelta(t, 10.0347, st.Lat, 1e-9)
	assert.InDelta(t, -84.1572, st.Lon, 1e-9)
	assert.InDelta(t, 145.2, st.Cumulative, 1e-9)
	assert.InDelta(t, -32.5, st.AnomalyMM, 1e-9)
	assert.InDelta(t, -18.3, st.AnomalyPct, 1e-9)
	assert.Len(t, st.Fields, 9)
}

func TestParseStation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr error
		wantMsg string
	}{
		{"too short", Record{"a", "b", "c", "10", "-84", "1", "2"}, ErrMalformedRecord, "7 fields"},
		{"empty", Record{}, ErrMalformedRecord, "0 fields"},
		{"bad latitude", Record{"a", "b", "c", "ten", "-84", "1", "2", "3"}, ErrValueParse, "latitude"},
		{"bad longitude", Record{"a", "b", "c", "10", "", "1", "2", "3"}, ErrValueParse, "longitude"},
		{"bad cumulative", Record{"a", "b", "c", "10", "-84", "x", "2", "3"}, ErrValueParse, "acumulado_mensual"},
		{"bad mm anomaly", Record{"a", "b", "c", "10", "-84", "1", "x", "3"}, ErrValueParse, "anomMM_lluvia"},
		{"bad pct anomaly", Record{"a", "b", "c", "10", "-84", "1", "2", "x"}, ErrValueParse, "anomPorc_lluvia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStation(2, tt.rec)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var stErr *StationError
			require.True(t, errors.As(err, &stErr))
			assert.Equal(t, 2, stErr.Index)
		})
	}
}

func TestParseStations(t *testing.T) {
	bad := Record{"bad", "x", "y", "lat", "lon", "1", "2", "3"}
	records := []Record{sampleRecord(), bad, sampleRecord()}

	t.Run("fail fast", func(t *testing.T) {
		stations, err := ParseStations(records, false)
		require.Error(t, err)
		assert.Nil(t, stations)
		assert.Contains(t, err.Error(), "station 1 (bad)")
	})

	t.Run("skip invalid", func(t *testing.T) {
		stations, err := ParseStations(records, true)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValueParse)
		require.Len(t, stations, 2)
		assert.Equal(t, 0, stations[0].Index)
		assert.Equal(t, 2, stations[1].Index)
	})

	t.Run("all valid", func(t *testing.T) {
		stations, err := ParseStations([]Record{sampleRecord()}, true)
		require.NoError(t, err)
		assert.Len(t, stations, 1)
	})
}

func TestStation_ValueAndClassify(t *testing.T) {
	st, err := ParseStation(0, sampleRecord())
	require.NoError(t, err)

	tests := []struct {
		kind      MetricKind
		wantValue float64
		wantColor string
	}{
		{PercentAnomaly, -18.3, "khaki"},
		{MillimeterAnomaly, -32.5, "lightcoral"},
		{MonthlyTotal, 145.2, "royalblue"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			v, err := st.Value(tt.kind)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantValue, v, 1e-9)

			c, err := st.Classify(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.wantColor, c)
		})
	}
}

func TestStation_ClassifyGapNamesStation(t *testing.T) {
	st := Station{Index: 7, Code: "69-507", Cumulative: 400}
	_, err := st.Classify(MonthlyTotal)
	require.ErrorIs(t, err, ErrClassificationGap)
	assert.Contains(t, err.Error(), "station 7 (69-507) [acumulado_mensual]")
}

func TestRecord_Trailing(t *testing.T) {
	rec := sampleRecord()

	v, err := rec.Trailing(PercentAnomaly)
	require.NoError(t, err)
	assert.Equal(t, "-18.3", v)

	v, err = rec.Trailing(MillimeterAnomaly)
	require.NoError(t, err)
	assert.Equal(t, "-32.5", v)

	v, err = rec.Trailing(MonthlyTotal)
	require.NoError(t, err)
	assert.Equal(t, "145.2", v)

	_, err = Record{"1", "2"}.Trailing(MonthlyTotal)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestMetricKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseMetricKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.FilePrefix())
	}

	_, err := ParseMetricKind("anoma_abs")
	assert.ErrorIs(t, err, ErrUnknownMetricKind)
	assert.False(t, MetricKind(0).Valid())
	assert.Equal(t, "MetricKind(9)", MetricKind(9).String())

	assert.Equal(t, "anomalia_PREC", PercentAnomaly.FilePrefix())
	assert.Equal(t, "anomalia_PRECmm", MillimeterAnomaly.FilePrefix())
	assert.Equal(t, "acumulado_PREC", MonthlyTotal.FilePrefix())
}
