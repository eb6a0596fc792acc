package render

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/markthomas93/WBBMTT/internal/tracker"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/colornames"
)

var (
	black = color.RGBA{0, 0, 0, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func blankCanvas(w, h int) *RasterCanvas {
	c := NewRasterCanvas(w, h)
	c.Fill(black)
	return c
}

func TestRasterCanvas_VerticalLineFillsOneColumn(t *testing.T) {
	c := blankCanvas(20, 10)
	c.Line(5, 0, 5, 10, 1, white)
	img := c.Image()

	for y := range 10 {
		assert.Equal(t, white, img.RGBAAt(5, y), "y=%d", y)
		assert.Equal(t, black, img.RGBAAt(4, y), "y=%d", y)
		assert.Equal(t, black, img.RGBAAt(6, y), "y=%d", y)
	}
}

func TestRasterCanvas_HorizontalLineFillsOneRow(t *testing.T) {
	c := blankCanvas(20, 10)
	c.Line(0, 3, 20, 3, 1, white)
	img := c.Image()

	for x := range 20 {
		assert.Equal(t, white, img.RGBAAt(x, 3), "x=%d", x)
		assert.Equal(t, black, img.RGBAAt(x, 2), "x=%d", x)
		assert.Equal(t, black, img.RGBAAt(x, 4), "x=%d", x)
	}
}

func TestRasterCanvas_DiagonalLine(t *testing.T) {
	c := blankCanvas(20, 20)
	c.Line(0, 0, 20, 20, 2, white)
	img := c.Image()

	assert.Equal(t, white, img.RGBAAt(10, 10))
	assert.Equal(t, black, img.RGBAAt(15, 2))
}

func TestRasterCanvas_CircleClippedAtEdge(t *testing.T) {
	c := blankCanvas(20, 20)
	c.FillCircle(0, 0, 8, white)
	img := c.Image()

	assert.Equal(t, white, img.RGBAAt(1, 1))
	assert.Equal(t, black, img.RGBAAt(10, 10))
}

func TestRasterCanvas_RingLeavesCenter(t *testing.T) {
	c := blankCanvas(40, 40)
	c.StrokeCircle(20, 20, 10, 4, white)
	img := c.Image()

	assert.Equal(t, white, img.RGBAAt(30, 20))
	assert.Equal(t, black, img.RGBAAt(20, 20))
	assert.Equal(t, black, img.RGBAAt(35, 20))
}

func TestRasterCanvas_IgnoresUnplaceableShapes(t *testing.T) {
	huge := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e39, -1e39, 1e300}

	c := blankCanvas(64, 64)
	want := c.Copy()
	for _, v := range huge {
		assert.NotPanics(t, func() {
			c.Line(v, 0, 10, 10, 1, white)
			c.Line(0, 0, v, v, 1, white)
			c.FillCircle(v, v, 10, white)
			c.FillCircle(10, 10, v, white)
			c.StrokeCircle(v, 10, 10, 2, white)
			c.StrokeCircle(10, 10, 10, v, white)
			c.Text("1", v, v, StyleLabel, AnchorCenter, white)
		}, "value %v", v)
	}
	assert.Equal(t, want.Pix, c.Image().Pix)
}

func TestRasterCanvas_TextStyles(t *testing.T) {
	c := NewRasterCanvas(10, 10)

	label := c.MeasureText("0000", StyleLabel)
	line := c.MeasureText("0000", StyleLine)
	idle := c.MeasureText("0000", StyleIdle)
	assert.Greater(t, label, 0.0)
	assert.Less(t, label, line)
	assert.Less(t, line, idle)

	// Diagnostic lines are monospaced so their columns align.
	assert.Equal(t, c.MeasureText("iiii", StyleLine), c.MeasureText("WWWW", StyleLine))
}

func TestRender_RasterFarOffContactsDoNotPanic(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{
		MarkScale: math.NaN(), GridPitch: 20, Background: colornames.Black, HideText: true,
	})
	snapshot := []tracker.Entry{
		entry(0, 1, 1e39, 1e39),
		entry(1, 2, -1e300, 5),
		entry(2, 3, math.Inf(1), math.NaN()),
		entry(3, 4, 10, 10),
	}

	c := NewRasterCanvas(320, 240)
	assert.NotPanics(t, func() { NewPipeline(cfg).Render(c, snapshot) })
	// The in-range contact still gets its marker.
	assert.Equal(t, Palette[3], c.Image().RGBAAt(10, 30))
}

func fullHDScene() (*Pipeline, []tracker.Entry) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{
		MarkScale: 1, GridPitch: 20, Background: colornames.Black, ShowRadius: true, ShowKind: true,
	})
	snapshot := make([]tracker.Entry, 10)
	for i := range snapshot {
		snapshot[i] = entry(i, domain.ContactID(i+1), float64(150+160*i), float64(100+90*i))
	}
	return NewPipeline(cfg), snapshot
}

// A full-HD frame with a dense grid and ten contacts stays well inside an
// interactive frame budget.
func TestRender_RasterFullHDFrameTime(t *testing.T) {
	p, snapshot := fullHDScene()
	c := NewRasterCanvas(1920, 1080)
	p.Render(c, snapshot)

	const frames = 5
	start := time.Now()
	for range frames {
		p.Render(c, snapshot)
	}
	perFrame := time.Since(start) / frames

	assert.Less(t, perFrame, 250*time.Millisecond)
}

func BenchmarkRender_RasterFullHD(b *testing.B) {
	p, snapshot := fullHDScene()
	c := NewRasterCanvas(1920, 1080)

	b.ReportAllocs()
	for b.Loop() {
		p.Render(c, snapshot)
	}
}

func BenchmarkRasterCanvas_Line(b *testing.B) {
	c := NewRasterCanvas(1920, 1080)

	for b.Loop() {
		c.Line(960, 0, 960, 1080, 1, white)
	}
}

func BenchmarkRasterCanvas_FillCircle(b *testing.B) {
	c := NewRasterCanvas(1920, 1080)

	for b.Loop() {
		c.FillCircle(960, 540, 22, white)
	}
}
