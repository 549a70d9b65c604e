package pipeline_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/precip-maps/internal/adapter/filesystem"
	"github.com/couchcryptid/precip-maps/internal/domain"
	"github.com/couchcryptid/precip-maps/internal/pipeline"
	"github.com/couchcryptid/precip-maps/internal/render"
)

const stationFile = `codigo,nombre,region,lat,lon,acumulado,anomalia_mm,anomalia_pct
CR001,Liberia,Pacifico Norte,10.6,-85.4,250,-30,-10
CR002,Limon,Caribe,9.99,-83.03,80,20,35
`

func TestEndToEnd_TwoStationsThreeMaps(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "datosEstaciones.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte(stationFile), 0o600))
	logoPath := writeLogo(t, dir)
	outDir := filepath.Join(dir, "maps")

	const size = 300
	basemap, err := render.DefaultBasemap()
	require.NoError(t, err)

	metrics := newTestMetrics()
	renderer, err := render.NewRenderer(render.Options{
		Width:    size,
		Height:   size,
		Layout:   domain.DefaultLayout(),
		Basemap:  basemap,
		LogoPath: logoPath,
	}, slog.Default(), metrics)
	require.NoError(t, err)

	store := filesystem.NewStore(slog.Default())
	o := pipeline.New(store, store, renderer, nil, clockwork.NewFakeClock(), slog.Default(), metrics,
		pipeline.Options{DataPath: dataPath, OutputDir: outDir, Extension: ".png"})

	products, err := o.RunAt(context.Background(), time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, products, 3)

	monthDir := filepath.Join(outDir, "2024", "abril")
	for _, name := range []string{
		"anomalia_PREC_abril.png",
		"anomalia_PRECmm_abril.png",
		"acumulado_PREC_abril.png",
	} {
		f, err := os.Open(filepath.Join(monthDir, name))
		require.NoError(t, err, name)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds(), name)
	}

	entries, err := os.ReadDir(monthDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files left behind")
	for _, p := range products {
		assert.Equal(t, 2, p.Plotted)
		assert.Zero(t, p.Skipped)
	}
}

func writeLogo(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 0, G: 70, B: 140, A: 255})
		}
	}
	path := filepath.Join(dir, "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}
