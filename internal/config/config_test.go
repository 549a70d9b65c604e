package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/precip-maps/internal/domain"
)

const (
	defaultTZ    = "America/Costa_Rica"
	customBroker = "broker1:9092"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "datosEstaciones.txt", cfg.StationDataPath)
	assert.Equal(t, "imn.jpg", cfg.LogoPath)
	assert.Equal(t, "maps", cfg.OutputDir)
	assert.Empty(t, cfg.BasemapPath)
	assert.Empty(t, cfg.LayoutPath)
	assert.Equal(t, FormatPNG, cfg.ImageFormat)
	assert.Equal(t, ".png", cfg.Extension())
	assert.Equal(t, 2000, cfg.ImageWidth)
	assert.Equal(t, 2000, cfg.ImageHeight)
	assert.True(t, cfg.ReferenceDate.IsZero())
	assert.Equal(t, defaultTZ, cfg.Location.String())
	assert.False(t, cfg.SkipInvalidStations)
	assert.Empty(t, cfg.Schedule)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "precipitation-maps", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("STATION_DATA_PATH", "/data/estaciones.csv")
	t.Setenv("LOGO_PATH", "/data/logo.png")
	t.Setenv("OUTPUT_DIR", "/srv/maps")
	t.Setenv("BASEMAP_PATH", "/data/cr.geojson")
	t.Setenv("LAYOUT_PATH", "/data/layout.yaml")
	t.Setenv("IMAGE_FORMAT", "JPEG")
	t.Setenv("IMAGE_WIDTH", "1000")
	t.Setenv("IMAGE_HEIGHT", "800")
	t.Setenv("REFERENCE_DATE", "2024-05-01")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SKIP_INVALID_STATIONS", "true")
	t.Setenv("SCHEDULE", " 0 6 * * * ")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/precip.prom")
	t.Setenv("KAFKA_BROKERS", customBroker+", broker2:9092")
	t.Setenv("KAFKA_TOPIC", "maps")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/estaciones.csv", cfg.StationDataPath)
	assert.Equal(t, "/data/logo.png", cfg.LogoPath)
	assert.Equal(t, "/srv/maps", cfg.OutputDir)
	assert.Equal(t, "/data/cr.geojson", cfg.BasemapPath)
	assert.Equal(t, "/data/layout.yaml", cfg.LayoutPath)
	assert.Equal(t, FormatJPEG, cfg.ImageFormat)
	assert.Equal(t, ".jpg", cfg.Extension())
	assert.Equal(t, 1000, cfg.ImageWidth)
	assert.Equal(t, 800, cfg.ImageHeight)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), cfg.ReferenceDate)
	assert.True(t, cfg.SkipInvalidStations)
	assert.Equal(t, "0 6 * * *", cfg.Schedule)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/node_exporter/precip.prom", cfg.MetricsTextfile)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{customBroker, "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "maps", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "shutdown timeout", key: "SHUTDOWN_TIMEOUT", value: "not-a-duration"},
		{name: "negative shutdown timeout", key: "SHUTDOWN_TIMEOUT", value: "-1s"},
		{name: "width", key: "IMAGE_WIDTH", value: "wide"},
		{name: "zero height", key: "IMAGE_HEIGHT", value: "0"},
		{name: "format", key: "IMAGE_FORMAT", value: "gif"},
		{name: "reference date", key: "REFERENCE_DATE", value: "01/05/2024"},
		{name: "timezone", key: "TIMEZONE", value: "Mars/Olympus_Mons"},
		{name: "skip invalid", key: "SKIP_INVALID_STATIONS", value: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ReferenceDateUsesTimezone(t *testing.T) {
	t.Setenv("REFERENCE_DATE", "2024-01-01")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultTZ, cfg.ReferenceDate.Location().String())
	assert.Equal(t, 2024, cfg.ReferenceDate.Year())
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", customBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestParseReferenceDate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	got, err := cfg.ParseReferenceDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 15, got.Day())

	_, err = cfg.ParseReferenceDate("2024-3-15")
	require.Error(t, err)
}

func TestLoadLayout_Default(t *testing.T) {
	layout, err := LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLayout(), layout)
}

func TestLoadLayout_OverridesExtentOnly(t *testing.T) {
	path := writeFile(t, "layout.yaml", `
extent:
  min_lon: -86.5
  max_lon: -82
  min_lat: 7.5
  max_lat: 11.5
`)

	layout, err := LoadLayout(path)
	require.NoError(t, err)

	def := domain.DefaultLayout()
	assert.Equal(t, domain.Extent{MinLon: -86.5, MaxLon: -82, MinLat: 7.5, MaxLat: 11.5}, layout.Extent)
	assert.Equal(t, def.Regions, layout.Regions)
	assert.Equal(t, def.Cities, layout.Cities)
}

func TestLoadLayout_ReplacesCities(t *testing.T) {
	path := writeFile(t, "layout.yaml", `
cities:
  - name: Liberia
    lat: 10.635
    lon: -85.437
`)

	layout, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.City{{Name: "Liberia", Lat: 10.635, Lon: -85.437}}, layout.Cities)
}

func TestLoadLayout_EmptyFileKeepsDefaults(t *testing.T) {
	layout, err := LoadLayout(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLayout(), layout)
}

func TestLoadLayout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "zoom: 3\n", wantErr: "zoom"},
		{name: "inverted extent", content: "extent: {min_lon: -82, max_lon: -86, min_lat: 8, max_lat: 11}\n", wantErr: "empty extent"},
		{name: "bad yaml", content: "cities: [\n", wantErr: "parse layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLayout(writeFile(t, "layout.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadLayout_MissingFile(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
