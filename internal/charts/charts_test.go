package charts

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/listing-insights/internal/analysis"
	"github.com/KaramelBytes/listing-insights/internal/loader"
	"github.com/KaramelBytes/listing-insights/internal/table"
)

const testDPI = 40

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

// blankCell reports whether every pixel of the cell is white.
func blankCell(img image.Image, rect image.Rectangle) bool {
	for y := rect.Min.Y; y < rect.Max.Y; y += 3 {
		for x := rect.Min.X; x < rect.Max.X; x += 3 {
			if !isWhite(img.At(x, y)) {
				return false
			}
		}
	}
	return true
}

func cells(w, h int) []image.Rectangle {
	band := h / 20
	pw, ph := w/2, (h-band)/2
	out := make([]image.Rectangle, 4)
	for i := range out {
		min := image.Pt((i%2)*pw, band+(i/2)*ph)
		out[i] = image.Rectangle{Min: min, Max: min.Add(image.Pt(pw, ph))}
	}
	return out
}

func TestRenderFullReport(t *testing.T) {
	tb := loader.Synthesize(300, 42)
	rep := analysis.Analyze(tb, analysis.DefaultOptions())
	xs, ys, _ := analysis.SampleXY(tb, analysis.ColConstruction, analysis.ColPrice, 500, rand.New(rand.NewSource(42)))

	img, err := Render(rep, Scatter{X: xs, Y: ys}, Options{DPI: testDPI})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	path := filepath.Join(t.TempDir(), "analysis_results.png")
	if err := Save(path, img); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := decode(t, path)
	w, h := Size(testDPI)
	if got.Bounds().Dx() != w || got.Bounds().Dy() != h {
		t.Fatalf("size = %v, want %dx%d", got.Bounds(), w, h)
	}
	for i, c := range cells(w, h) {
		if blankCell(got, c) {
			t.Fatalf("panel %d unexpectedly blank", i)
		}
	}
	if blankCell(got, image.Rect(0, 0, w, h/20)) {
		t.Fatalf("title band is blank")
	}
}

func TestRenderSkipsAbsentPanels(t *testing.T) {
	tb := table.New("partial", []string{"room_type", "price"}, [][]string{
		{"Entire home/apt", "100"}, {"Private room", "50"}, {"Entire home/apt", "300"},
	})
	rep := analysis.Analyze(tb, analysis.DefaultOptions())
	img, err := Render(rep, Scatter{}, Options{DPI: testDPI})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "chart.png")
	if err := Save(path, img); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := decode(t, path)
	w, h := Size(testDPI)
	c := cells(w, h)
	if blankCell(got, c[0]) {
		t.Fatalf("room type pie should be drawn")
	}
	for _, i := range []int{1, 2, 3} {
		if !blankCell(got, c[i]) {
			t.Fatalf("panel %d should be blank without its columns", i)
		}
	}
}

func TestRenderWithNoColumnsStillProducesFigure(t *testing.T) {
	rep := analysis.Analyze(table.New("empty", []string{"id"}, [][]string{{"1"}}), analysis.DefaultOptions())
	img, err := Render(rep, Scatter{}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if w, h := Size(DefaultDPI); img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("default size = %v", img.Bounds())
	}
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{2000, 2000})
	if r.Min != 1999 || r.Max != 2001 {
		t.Fatalf("constant series range = %v..%v", r.Min, r.Max)
	}
	r = paddedRange([]float64{0, 100, 50})
	if r.Min != -5 || r.Max != 105 {
		t.Fatalf("range = %v..%v", r.Min, r.Max)
	}
}
