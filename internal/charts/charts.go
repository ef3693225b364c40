// Package charts renders the 2x2 results figure for a listing report.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KaramelBytes/listing-insights/internal/analysis"
	"github.com/KaramelBytes/listing-insights/internal/utils"
)

// Title is drawn across the top of the figure.
const Title = "Airbnb Hotel Booking Analysis Results"

// Figure size in inches; pixel size is inches times DPI.
const (
	FigureWidthIn  = 15.0
	FigureHeightIn = 10.0
	DefaultDPI     = 300
)

var (
	pieColors = []drawing.Color{
		drawing.ColorFromHex("FF9999"),
		drawing.ColorFromHex("66B2FF"),
		drawing.ColorFromHex("99FF99"),
	}
	skyBlue    = drawing.ColorFromHex("87CEEB")
	lightCoral = drawing.ColorFromHex("F08080")
	green      = drawing.ColorFromHex("008000")
)

// panelChart is satisfied by go-chart's Chart, BarChart and PieChart.
type panelChart interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Options controls the figure resolution.
type Options struct {
	DPI int
}

// DefaultOptions returns a 300 DPI figure.
func DefaultOptions() Options { return Options{DPI: DefaultDPI} }

// Scatter holds the sampled construction year / price points.
type Scatter struct {
	X, Y []float64
}

// Size returns the figure size in pixels for dpi.
func Size(dpi int) (int, int) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return int(FigureWidthIn * float64(dpi)), int(FigureHeightIn * float64(dpi))
}

// Render composes the four panels on a white canvas. Panels whose data is
// missing stay blank; Render fails only when go-chart cannot draw a panel.
func Render(r *analysis.Report, s Scatter, opt Options) (image.Image, error) {
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	w, h := Size(dpi)
	band := h / 20
	pw, ph := w/2, (h-band)/2

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawTitle(canvas, Title, band)

	type panel struct {
		name string
		fn   func(w, h, dpi int) (panelChart, bool)
	}
	panels := []panel{
		{"room types", func(w, h, dpi int) (panelChart, bool) { return roomTypePie(r, w, h, dpi) }},
		{"listings per group", func(w, h, dpi int) (panelChart, bool) { return listingsBar(r, w, h, dpi) }},
		{"price per group", func(w, h, dpi int) (panelChart, bool) { return priceBar(r, w, h, dpi) }},
		{"year vs price", func(w, h, dpi int) (panelChart, bool) { return yearPriceScatter(s, w, h, dpi) }},
	}
	for i, p := range panels {
		c, ok := p.fn(pw, ph, dpi)
		if !ok {
			continue
		}
		img, err := renderPanel(c)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
		origin := image.Pt((i%2)*pw, band+(i/2)*ph)
		draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(img.Bounds().Size())}, img, img.Bounds().Min, draw.Src)
	}
	return canvas, nil
}

// Save encodes img as PNG and atomically writes it to path.
func Save(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func renderPanel(c panelChart) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

func roomTypePie(r *analysis.Report, w, h, dpi int) (panelChart, bool) {
	if len(r.RoomTypes) == 0 {
		return nil, false
	}
	values := make([]chart.Value, 0, len(r.RoomTypes))
	for i, s := range r.RoomTypes {
		c := pieColors[i%len(pieColors)]
		values = append(values, chart.Value{
			Value: float64(s.Count),
			Label: fmt.Sprintf("%s %.1f%%", s.Value, s.Percent),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
	}
	return &chart.PieChart{
		Title:  "Room Type Distribution",
		Width:  w,
		Height: h,
		DPI:    float64(dpi),
		Values: values,
	}, true
}

func listingsBar(r *analysis.Report, w, h, dpi int) (panelChart, bool) {
	if len(r.ListingsByGroup) == 0 {
		return nil, false
	}
	bars := make([]chart.Value, 0, len(r.ListingsByGroup))
	for _, s := range r.ListingsByGroup {
		bars = append(bars, chart.Value{Label: s.Value, Value: float64(s.Count)})
	}
	return barChart("Listings by Neighbourhood Group", bars, skyBlue, w, h, dpi), true
}

func priceBar(r *analysis.Report, w, h, dpi int) (panelChart, bool) {
	bars := make([]chart.Value, 0, len(r.PriceByGroup))
	for _, g := range r.PriceByGroup {
		if math.IsNaN(g.Mean) {
			continue
		}
		bars = append(bars, chart.Value{Label: g.Key, Value: g.Mean})
	}
	if len(bars) == 0 {
		return nil, false
	}
	return barChart("Average Price by Neighbourhood Group", bars, lightCoral, w, h, dpi), true
}

func barChart(title string, bars []chart.Value, fill drawing.Color, w, h, dpi int) *chart.BarChart {
	max := 0.0
	for i := range bars {
		bars[i].Style = chart.Style{FillColor: fill, StrokeColor: fill}
		if bars[i].Value > max {
			max = bars[i].Value
		}
	}
	if max <= 0 {
		max = 1
	}
	slot := w / (3*len(bars) + 3)
	return &chart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		DPI:        float64(dpi),
		BarWidth:   slot,
		BarSpacing: slot,
		Background: chart.Style{Padding: chart.Box{Top: h / 10, Left: w / 20, Right: w / 40, Bottom: h / 5}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1}},
		Bars:       bars,
	}
}

func yearPriceScatter(s Scatter, w, h, dpi int) (panelChart, bool) {
	if len(s.X) == 0 || len(s.X) != len(s.Y) {
		return nil, false
	}
	return &chart.Chart{
		Title:  "Construction Year vs Price",
		Width:  w,
		Height: h,
		DPI:    float64(dpi),
		XAxis:  chart.XAxis{Name: "Construction Year", Range: paddedRange(s.X)},
		YAxis:  chart.YAxis{Name: "Price", Range: paddedRange(s.Y)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "listings",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					StrokeColor: drawing.ColorTransparent,
					DotWidth:    3,
					DotColor:    green.WithAlpha(153),
				},
				XValues: s.X,
				YValues: s.Y,
			},
		},
	}, true
}

// paddedRange spans vals with a 5% margin; a constant series gets +-1.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// drawTitle renders text with the 7x13 bitmap face and scales it up to fill
// about half of the title band, centered horizontally.
func drawTitle(dst *image.RGBA, text string, band int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	tw := d.MeasureString(text).Ceil()
	th := face.Metrics().Height.Ceil()
	small := image.NewRGBA(image.Rect(0, 0, tw, th))
	d.Dst = small
	d.Src = image.NewUniform(color.Black)
	d.Dot = fixed.Point26_6{X: 0, Y: face.Metrics().Ascent}
	d.DrawString(text)

	scale := float64(band) / 2 / float64(th)
	if scale < 1 {
		scale = 1
	}
	sw, sh := int(float64(tw)*scale), int(float64(th)*scale)
	x := (dst.Bounds().Dx() - sw) / 2
	y := (band - sh) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+sw, y+sh), small, small.Bounds(), xdraw.Over, nil)
}
