package main

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/precip-maps/internal/domain"
)

func TestSweepCoversEveryBand(t *testing.T) {
	stations, err := sweep()
	require.NoError(t, err)
	require.Len(t, stations, 15)

	for _, kind := range domain.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			bands, err := domain.Bands(kind)
			require.NoError(t, err)

			seen := map[string]bool{}
			for _, s := range stations {
				var v float64
				switch kind {
				case domain.PercentAnomaly:
					v = s.anomalyPct
				case domain.MillimeterAnomaly:
					v = s.anomalyMM
				case domain.MonthlyTotal:
					v = s.cumulative
				}
				c, err := domain.Classify(kind, v)
				require.NoError(t, err, "value %g", v)
				seen[c] = true
			}
			for _, b := range bands {
				assert.True(t, seen[b.Color], "band %s (%s) has no station", b.Label, b.Color)
			}
		})
	}
}

func TestWriteStationsParsesBack(t *testing.T) {
	stations, err := sweep()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeStations(&buf, stations))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, len(stations)+1)
	assert.Equal(t, header, string(lines[0]))

	records := make([]domain.Record, 0, len(stations))
	for _, l := range lines[1:] {
		records = append(records, domain.Record(strings.Split(string(l), ",")))
	}
	parsed, err := domain.ParseStations(records, false)
	require.NoError(t, err)
	assert.Equal(t, "MOCK001", parsed[0].Code)
	assert.InDelta(t, stations[3].anomalyMM, parsed[3].AnomalyMM, 1e-9)

	layout := domain.DefaultLayout()
	for _, st := range parsed {
		assert.True(t, layout.Extent.Contains(st.Lat, st.Lon), "station %s outside extent", st.Code)
	}
}

func TestWriteLogo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLogo(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}
