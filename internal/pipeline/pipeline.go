package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/precip-maps/internal/domain"
	"github.com/couchcryptid/precip-maps/internal/observability"
	"github.com/couchcryptid/precip-maps/internal/render"
)

// ErrRunInProgress is returned when a run is requested while another one
// has not finished.
var ErrRunInProgress = errors.New("map run already in progress")

// RecordLoader reads the raw station table.
type RecordLoader interface {
	LoadRecords(path string) ([]domain.Record, error)
}

// DirectoryEnsurer creates a single directory level if it is missing.
type DirectoryEnsurer interface {
	EnsureDirectory(path string) (string, error)
}

// MapRenderer draws one map to disk.
type MapRenderer interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
}

// ProductPublisher announces a finished map.
type ProductPublisher interface {
	Publish(ctx context.Context, product domain.MapProduct) error
}

// Options configures an Orchestrator.
type Options struct {
	DataPath  string
	OutputDir string
	Extension string // including the dot, e.g. ".png"

	// ReferenceDate overrides the clock in Run when non-zero.
	ReferenceDate time.Time
	Location      *time.Location
	SkipInvalid   bool

	// MetricsTextfile, when set, receives a Prometheus text dump after each run.
	MetricsTextfile string
	Gatherer        prometheus.Gatherer
}

// Orchestrator produces the full set of monthly maps for a reference date.
type Orchestrator struct {
	loader    RecordLoader
	dirs      DirectoryEnsurer
	renderer  MapRenderer
	publisher ProductPublisher // nil disables publishing
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	newID     func() string

	mu      sync.Mutex
	running bool
	ready   atomic.Bool
}

// New creates an Orchestrator. publisher may be nil.
func New(loader RecordLoader, dirs DirectoryEnsurer, renderer MapRenderer, publisher ProductPublisher,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Orchestrator {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Orchestrator{
		loader:    loader,
		dirs:      dirs,
		renderer:  renderer,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// CheckReadiness returns nil once a run has produced every map.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no successful map run yet")
	}
	return nil
}

// Run produces the maps for the configured reference date, or for the
// clock's current date when none is configured.
func (o *Orchestrator) Run(ctx context.Context) ([]domain.MapProduct, error) {
	ref := o.opts.ReferenceDate
	if ref.IsZero() {
		ref = o.clock.Now().In(o.opts.Location)
	}
	return o.RunAt(ctx, ref)
}

// RunAt produces one map per metric kind for the month containing the day
// before ref. The first failure aborts the run; directories already created
// are left in place.
func (o *Orchestrator) RunAt(ctx context.Context, ref time.Time) ([]domain.MapProduct, error) {
	if !o.begin() {
		o.metrics.RunsTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
		return nil, ErrRunInProgress
	}
	defer o.end()

	start := o.clock.Now()
	runID := o.newID()
	logger := o.logger.With("run_id", runID)

	products, err := o.produce(ctx, logger, runID, ref)
	o.metrics.RunDuration.Observe(o.clock.Since(start).Seconds())
	if err != nil {
		o.metrics.RunsTotal.WithLabelValues(observability.OutcomeFailure).Inc()
		o.exportMetrics(logger)
		return products, err
	}

	o.metrics.RunsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	o.metrics.LastSuccess.Set(float64(o.clock.Now().Unix()))
	o.ready.Store(true)
	o.exportMetrics(logger)

	logger.Info("maps finished", "maps", len(products), "duration", o.clock.Since(start).String())
	return products, nil
}

func (o *Orchestrator) produce(ctx context.Context, logger *slog.Logger, runID string, ref time.Time) ([]domain.MapProduct, error) {
	period := domain.PeriodFor(ref)
	logger.Info("map run started", "reference_date", ref.Format(time.DateOnly), "period", period.String())

	dir, err := o.ensureOutputDir(period)
	if err != nil {
		return nil, err
	}

	stations, err := o.loadStations(logger)
	if err != nil {
		return nil, err
	}

	products := make([]domain.MapProduct, 0, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		if err := ctx.Err(); err != nil {
			return products, err
		}
		product, err := o.renderKind(ctx, logger, runID, kind, ref, period, dir, stations)
		if err != nil {
			return products, err
		}
		products = append(products, product)
	}
	return products, nil
}

// ensureOutputDir creates <OutputDir>/<year>/<month>, one level at a time.
func (o *Orchestrator) ensureOutputDir(period domain.Period) (string, error) {
	dir := o.opts.OutputDir
	for _, part := range []string{"", strconv.Itoa(period.Year), period.MonthName()} {
		if part != "" {
			dir = filepath.Join(dir, part)
		}
		if _, err := o.dirs.EnsureDirectory(dir); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (o *Orchestrator) loadStations(logger *slog.Logger) ([]domain.Station, error) {
	records, err := o.loader.LoadRecords(o.opts.DataPath)
	if err != nil {
		return nil, err
	}

	stations, err := domain.ParseStations(records, o.opts.SkipInvalid)
	if err != nil {
		if !o.opts.SkipInvalid {
			return nil, fmt.Errorf("parse stations: %w", err)
		}
		skipped := len(records) - len(stations)
		logger.Warn("invalid stations skipped", "skipped", skipped, "error", err)
		o.metrics.StationErrors.WithLabelValues("record").Add(float64(skipped))
	}
	logger.Info("stations loaded", "path", o.opts.DataPath, "stations", len(stations))
	return stations, nil
}

func (o *Orchestrator) renderKind(ctx context.Context, logger *slog.Logger, runID string, kind domain.MetricKind,
	ref time.Time, period domain.Period, dir string, stations []domain.Station) (domain.MapProduct, error) {
	style, err := domain.BuildStyle(kind, ref, period)
	if err != nil {
		return domain.MapProduct{}, err
	}

	path := filepath.Join(dir, kind.FilePrefix()+"_"+period.MonthName()+o.opts.Extension)
	start := o.clock.Now()
	res, err := o.renderer.Render(ctx, render.Request{
		OutputPath: path,
		Stations:   stations,
		Kind:       kind,
		Style:      style,
	})
	if err != nil {
		return domain.MapProduct{}, fmt.Errorf("render %s map %s: %w", kind, path, err)
	}
	o.metrics.RenderDuration.WithLabelValues(kind.String()).Observe(o.clock.Since(start).Seconds())
	o.metrics.MapsRendered.WithLabelValues(kind.String()).Inc()

	product := domain.NewMapProduct(runID, kind, period, ref, res.Path, res.Plotted, res.Skipped, o.clock.Now())
	o.publish(ctx, logger, product)
	return product, nil
}

// publish announces a product. The image is already on disk, so a failed
// notification is logged and counted rather than failing the run.
func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, product domain.MapProduct) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, product); err != nil {
		logger.Error("publish map product failed", "kind", product.KindTag, "path", product.Path, "error", err)
		o.metrics.PublishErrors.Inc()
		return
	}
	o.metrics.ProductsPublished.Inc()
}

func (o *Orchestrator) exportMetrics(logger *slog.Logger) {
	if o.opts.MetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(o.opts.MetricsTextfile, o.opts.Gatherer); err != nil {
		logger.Warn("write metrics textfile failed", "path", o.opts.MetricsTextfile, "error", err)
	}
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}
