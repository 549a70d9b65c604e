// Package render draws station maps as raster images.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // logo decoding
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/couchcryptid/precip-maps/internal/domain"
	"github.com/couchcryptid/precip-maps/internal/observability"
)

// Figure geometry, in points unless noted. A 2000x2000 canvas corresponds
// to a 20x20 inch figure at 100 dpi.
const (
	referenceCanvas = 2000.0
	referenceDPI    = 100.0

	titleSize       = 30
	legendSize      = 15
	cityLabelSize   = 10
	stationMarkerPt = 22
	cityMarkerPt    = 4
	legendMarkerPt  = 8
	legendLinePt    = 4
	borderWidthPt   = 1
	stateWidthPt    = 0.3
	coastWidthPt    = 0.8

	cityLabelOffsetDeg = 0.01
)

// Logo box in figure fractions: left, bottom, width, height.
var logoBox = [4]float64{0.015, 0.03, 0.15, 0.15}

// Cartopy's default water colour.
var waterColor = color.RGBA{R: 152, G: 183, B: 226, A: 255}

var errUnsupportedFormat = errors.New("unsupported image format")

// Options configures a Renderer.
type Options struct {
	Width       int
	Height      int
	Layout      domain.Layout
	Basemap     *Basemap
	LogoPath    string
	SkipInvalid bool // log and skip stations that fail to classify
}

// Request is one map to draw.
type Request struct {
	OutputPath string
	Stations   []domain.Station
	Kind       domain.MetricKind
	Style      domain.Style
}

// Result reports what was drawn.
type Result struct {
	Path    string
	Plotted int
	Skipped int
}

// Renderer composes station maps and writes them to disk.
type Renderer struct {
	opts    Options
	fonts   *fontSet
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRenderer validates opts and prepares fonts.
func NewRenderer(opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	if err := opts.Layout.Extent.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if opts.Basemap == nil {
		return nil, errors.New("basemap is required")
	}

	scale := math.Min(float64(opts.Width), float64(opts.Height)) / referenceCanvas
	fonts, err := newFontSet(referenceDPI * scale)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, fonts: fonts, logger: logger, metrics: metrics}, nil
}

// Render draws the map described by req and writes it to req.OutputPath.
func (r *Renderer) Render(ctx context.Context, req Request) (Result, error) {
	res := Result{Path: req.OutputPath}

	encode, err := encoderFor(req.OutputPath)
	if err != nil {
		return res, err
	}
	legend, err := domain.BuildLegend(req.Kind)
	if err != nil {
		return res, err
	}
	land, err := domain.ResolveColor(req.Style.LandColor)
	if err != nil {
		return res, fmt.Errorf("land color: %w", err)
	}
	text, err := domain.ResolveColor(req.Style.TextColor)
	if err != nil {
		return res, fmt.Errorf("title color: %w", err)
	}
	logo, err := loadImage(r.opts.LogoPath)
	if err != nil {
		return res, err
	}

	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	proj := r.mapArea()

	dc.Push()
	dc.DrawRectangle(proj.area.X, proj.area.Y, proj.area.W, proj.area.H)
	dc.Clip()
	r.drawBasemap(dc, proj, land)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	r.drawCityMarkers(dc, proj)
	res.Plotted, res.Skipped, err = r.drawStations(dc, proj, req.Stations, req.Kind)
	if err != nil {
		return res, err
	}
	r.drawRegionLabels(dc, proj)
	r.drawCityLabels(dc, proj)
	dc.Pop()

	dc.SetColor(color.Black)
	dc.SetLineWidth(r.fonts.px(coastWidthPt))
	dc.DrawRectangle(proj.area.X, proj.area.Y, proj.area.W, proj.area.H)
	dc.Stroke()

	if err := r.drawLegend(dc, proj, legend); err != nil {
		return res, err
	}
	r.drawTitle(dc, proj, req.Style.Title, text)
	r.drawLogo(dc, logo)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := writeAtomic(req.OutputPath, func(w io.Writer) error { return encode(w, dc) }); err != nil {
		return res, err
	}

	r.logger.Info("map written",
		"kind", req.Kind.String(),
		"path", req.OutputPath,
		"plotted", res.Plotted,
		"skipped", res.Skipped,
	)
	return res, nil
}

// mapArea fits the layout extent below the title band.
func (r *Renderer) mapArea() plateCarree {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	margin := 0.02 * w
	top := 0.08 * h
	avail := rect{X: margin, Y: top, W: w - 2*margin, H: h - top - margin}
	return fitPlateCarree(r.opts.Layout.Extent, avail)
}

func (r *Renderer) drawBasemap(dc *gg.Context, proj plateCarree, land color.Color) {
	dc.SetColor(waterColor)
	dc.DrawRectangle(proj.area.X, proj.area.Y, proj.area.W, proj.area.H)
	dc.Fill()

	for _, ring := range r.opts.Basemap.Land {
		tracePath(dc, proj, ring, true)
	}
	dc.SetColor(land)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.SetLineWidth(r.fonts.px(coastWidthPt))
	dc.Stroke()

	dc.SetColor(colorOrBlack("green"))
	dc.SetLineWidth(r.fonts.px(borderWidthPt))
	dc.SetDash(r.fonts.px(3.7), r.fonts.px(1.6))
	for _, line := range r.opts.Basemap.Borders {
		tracePath(dc, proj, line, false)
	}
	dc.Stroke()
	dc.SetDash()

	dc.SetColor(color.Black)
	dc.SetLineWidth(r.fonts.px(stateWidthPt))
	for _, line := range r.opts.Basemap.States {
		tracePath(dc, proj, line, false)
	}
	dc.Stroke()
}

func tracePath(dc *gg.Context, proj plateCarree, p Path, closed bool) {
	if len(p) == 0 {
		return
	}
	dc.NewSubPath()
	for i, c := range p {
		x, y := proj.project(c.X(), c.Y())
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	if closed {
		dc.ClosePath()
	}
}

func (r *Renderer) drawCityMarkers(dc *gg.Context, proj plateCarree) {
	dc.SetColor(color.Black)
	radius := r.fonts.px(cityMarkerPt) / 2
	for _, c := range r.opts.Layout.Cities {
		x, y := proj.project(c.Lon, c.Lat)
		drawStar(dc, x, y, radius)
	}
	dc.Fill()
}

// drawStar adds a five-pointed star centred on (x, y) to the current path.
func drawStar(dc *gg.Context, x, y, outer float64) {
	inner := outer * 0.4
	dc.NewSubPath()
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		px, py := x+r*math.Cos(a), y+r*math.Sin(a)
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
}

func (r *Renderer) drawStations(dc *gg.Context, proj plateCarree, stations []domain.Station, kind domain.MetricKind) (plotted, skipped int, err error) {
	radius := r.fonts.px(stationMarkerPt) / 2
	for _, st := range stations {
		fill, err := r.stationColor(st, kind)
		if err != nil {
			if !r.opts.SkipInvalid {
				return plotted, skipped, err
			}
			r.logger.Warn("station skipped", "kind", kind.String(), "station", st.Code, "index", st.Index, "error", err)
			r.metrics.StationErrors.WithLabelValues(kind.String()).Inc()
			skipped++
			continue
		}
		x, y := proj.project(st.Lon, st.Lat)
		dc.DrawCircle(x, y, radius)
		dc.SetColor(fill)
		dc.Fill()
		plotted++
	}
	r.metrics.StationsPlotted.WithLabelValues(kind.String()).Add(float64(plotted))
	return plotted, skipped, nil
}

func (r *Renderer) stationColor(st domain.Station, kind domain.MetricKind) (color.Color, error) {
	name, err := st.Classify(kind)
	if err != nil {
		return nil, err
	}
	c, err := domain.ResolveColor(name)
	if err != nil {
		return nil, &domain.StationError{Index: st.Index, Code: st.Code, Kind: kind, Err: err}
	}
	return c, nil
}

func (r *Renderer) drawRegionLabels(dc *gg.Context, proj plateCarree) {
	dc.SetColor(color.Black)
	for _, l := range r.opts.Layout.Regions {
		dc.SetFontFace(r.fonts.face(styleBoldItalic, l.Size))
		x, y := proj.project(l.Lon, l.Lat)
		if l.Vertical {
			dc.Push()
			dc.RotateAbout(gg.Radians(-90), x, y)
			dc.DrawString(l.Text, x, y)
			dc.Pop()
			continue
		}
		dc.DrawString(l.Text, x, y)
	}
}

func (r *Renderer) drawCityLabels(dc *gg.Context, proj plateCarree) {
	dc.SetColor(colorOrBlack("purple"))
	dc.SetFontFace(r.fonts.face(styleRegular, cityLabelSize))
	for _, c := range r.opts.Layout.Cities {
		x, y := proj.project(c.Lon+cityLabelOffsetDeg, c.Lat+cityLabelOffsetDeg)
		dc.DrawString(c.Name, x, y)
	}
}

func (r *Renderer) drawLegend(dc *gg.Context, proj plateCarree, legend domain.Legend) error {
	face := r.fonts.face(styleRegular, legendSize)
	dc.SetFontFace(face)

	em := r.fonts.px(legendSize)
	pad := 0.5 * em
	rowH := 1.3 * em
	handle := 2 * em

	textW, _ := dc.MeasureString(legend.Title)
	for _, e := range legend.Entries {
		if w, _ := dc.MeasureString(e.Label); w+handle+pad > textW {
			textW = w + handle + pad
		}
	}
	boxW := textW + 2*pad
	boxH := rowH*float64(len(legend.Entries)+1) + 2*pad
	x := proj.area.X + proj.area.W - boxW - pad
	y := proj.area.Y + pad

	dc.DrawRoundedRectangle(x, y, boxW, boxH, 0.3*em)
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.FillPreserve()
	dc.SetRGBA(0.8, 0.8, 0.8, 1)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(legend.Title, x+boxW/2, y+pad+rowH/2, 0.5, 0.35)

	for i, e := range legend.Entries {
		c, err := domain.ResolveColor(e.Color)
		if err != nil {
			return fmt.Errorf("legend: %w", err)
		}
		cy := y + pad + rowH*float64(i+1) + rowH/2
		hx := x + pad

		dc.SetColor(c)
		dc.SetLineWidth(r.fonts.px(legendLinePt))
		dc.DrawLine(hx, cy, hx+handle, cy)
		dc.Stroke()
		dc.DrawCircle(hx+handle/2, cy, r.fonts.px(legendMarkerPt)/2)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(e.Label, hx+handle+pad, cy, 0, 0.35)
	}
	return nil
}

func (r *Renderer) drawTitle(dc *gg.Context, proj plateCarree, title string, c color.Color) {
	dc.SetFontFace(r.fonts.face(styleItalic, titleSize))
	dc.SetColor(c)

	lines := strings.Split(title, "\n")
	lineH := 1.2 * r.fonts.px(titleSize)
	baseline := proj.area.Y - 0.4*lineH - lineH*float64(len(lines)-1)
	for i, line := range lines {
		dc.DrawStringAnchored(strings.TrimSpace(line), proj.area.centerX(), baseline+lineH*float64(i), 0.5, 0)
	}
}

// drawLogo scales the logo into the figure-fraction box, keeping its aspect
// ratio and anchoring it to the box's south-east corner.
func (r *Renderer) drawLogo(dc *gg.Context, logo image.Image) {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	boxX, boxW := logoBox[0]*w, logoBox[2]*w
	boxH := logoBox[3] * h
	boxBottom := h - logoBox[1]*h

	b := logo.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	scale := math.Min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	dw := int(math.Round(float64(b.Dx()) * scale))
	dh := int(math.Round(float64(b.Dy()) * scale))
	if dw == 0 || dh == 0 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, b, draw.Over, nil)
	dc.DrawImage(scaled, int(boxX+boxW)-dw, int(boxBottom)-dh)
}

func colorOrBlack(name string) color.Color {
	c, err := domain.ResolveColor(name)
	if err != nil {
		return color.Black
	}
	return c
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}
	return img, nil
}

type encoder func(w io.Writer, dc *gg.Context) error

func encoderFor(path string) (encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(w io.Writer, dc *gg.Context) error { return dc.EncodePNG(w) }, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, dc *gg.Context) error {
			return jpeg.Encode(w, dc.Image(), &jpeg.Options{Quality: 92})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place, so readers never see a partial image.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".map-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("encode image %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return nil
}
