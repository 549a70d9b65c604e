package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

// Supported output encodings.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
)

const referenceDateLayout = "2006-01-02"

// Config holds all service settings, populated from environment variables.
type Config struct {
	StationDataPath string
	LogoPath        string
	OutputDir       string
	BasemapPath     string // empty selects the embedded basemap
	LayoutPath      string // empty selects the built-in layout

	ImageFormat string
	ImageWidth  int
	ImageHeight int

	// ReferenceDate pins "today" for reruns; zero means use the clock.
	ReferenceDate       time.Time
	Location            *time.Location
	SkipInvalidStations bool

	Schedule        string // cron expression; empty runs once and exits
	HTTPAddr        string
	ShutdownTimeout time.Duration
	MetricsTextfile string

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first if present;
// variables already in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	loc, err := time.LoadLocation(envOrDefault("TIMEZONE", "America/Costa_Rica"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	width, err := parsePositiveInt("IMAGE_WIDTH", 2000)
	if err != nil {
		return nil, err
	}
	height, err := parsePositiveInt("IMAGE_HEIGHT", 2000)
	if err != nil {
		return nil, err
	}
	skipInvalid, err := parseBool("SKIP_INVALID_STATIONS", false)
	if err != nil {
		return nil, err
	}

	var refDate time.Time
	if s := os.Getenv("REFERENCE_DATE"); s != "" {
		refDate, err = time.ParseInLocation(referenceDateLayout, s, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid REFERENCE_DATE %q: want YYYY-MM-DD", s)
		}
	}

	format, err := normalizeFormat(envOrDefault("IMAGE_FORMAT", FormatPNG))
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		StationDataPath: envOrDefault("STATION_DATA_PATH", "datosEstaciones.txt"),
		LogoPath:        envOrDefault("LOGO_PATH", "imn.jpg"),
		OutputDir:       envOrDefault("OUTPUT_DIR", "maps"),
		BasemapPath:     os.Getenv("BASEMAP_PATH"),
		LayoutPath:      os.Getenv("LAYOUT_PATH"),

		ImageFormat: format,
		ImageWidth:  width,
		ImageHeight: height,

		ReferenceDate:       refDate,
		Location:            loc,
		SkipInvalidStations: skipInvalid,

		Schedule:        strings.TrimSpace(os.Getenv("SCHEDULE")),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "precipitation-maps"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.StationDataPath == "" {
		return nil, errors.New("STATION_DATA_PATH is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// Extension returns the output file extension for the configured format.
func (c *Config) Extension() string {
	return "." + c.ImageFormat
}

// ParseReferenceDate parses a YYYY-MM-DD date in the configured location.
func (c *Config) ParseReferenceDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(referenceDateLayout, s, c.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func normalizeFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("invalid IMAGE_FORMAT %q: want png or jpg", s)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
