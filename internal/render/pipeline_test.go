package render

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/markthomas93/WBBMTT/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

type op struct {
	kind   string
	x, y   float64
	r      float64
	text   string
	style  TextStyle
	anchor Anchor
	color  color.Color
}

// recordingCanvas captures drawing calls instead of rasterizing them.
type recordingCanvas struct {
	size image.Point
	ops  []op
}

func (c *recordingCanvas) Size() image.Point { return c.size }
func (c *recordingCanvas) Clear()            { c.ops = append(c.ops, op{kind: "clear"}) }
func (c *recordingCanvas) Fill(col color.Color) {
	c.ops = append(c.ops, op{kind: "fill", color: col})
}
func (c *recordingCanvas) Line(x0, y0, _, _, _ float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "line", x: x0, y: y0, color: col})
}
func (c *recordingCanvas) FillCircle(cx, cy, r float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "fillCircle", x: cx, y: cy, r: r, color: col})
}
func (c *recordingCanvas) StrokeCircle(cx, cy, r, _ float64, col color.Color) {
	c.ops = append(c.ops, op{kind: "strokeCircle", x: cx, y: cy, r: r, color: col})
}
func (c *recordingCanvas) Text(s string, x, y float64, style TextStyle, anchor Anchor, col color.Color) {
	c.ops = append(c.ops, op{kind: "text", text: s, x: x, y: y, style: style, anchor: anchor, color: col})
}
func (c *recordingCanvas) MeasureText(s string, _ TextStyle) float64 { return float64(7 * len(s)) }

func (c *recordingCanvas) find(kind string) []op {
	var out []op
	for _, o := range c.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (c *recordingCanvas) texts() []string {
	var out []string
	for _, o := range c.find("text") {
		out = append(out, o.text)
	}
	return out
}

func defaultConfig() domain.RenderConfig {
	return domain.NewRenderConfig(domain.RenderOptions{MarkScale: 1, Background: colornames.Black})
}

func entry(ordinal int, id domain.ContactID, x, y float64) tracker.Entry {
	return tracker.Entry{Ordinal: ordinal, Record: domain.ContactRecord{
		ID: id, Position: domain.Point{X: x, Y: y}, Kind: domain.KindTouch,
	}}
}

func TestRender_IdleWhenEmpty(t *testing.T) {
	c := &recordingCanvas{size: image.Pt(400, 300)}
	res := NewPipeline(defaultConfig()).Render(c, nil)

	assert.True(t, res.Idle)
	assert.Equal(t, 0, res.Markers)
	assert.Equal(t, []string{domain.DefaultIdleMessage}, c.texts())

	idle := c.find("text")[0]
	assert.Equal(t, (400-float64(7*len(domain.DefaultIdleMessage)))/2, idle.x)
	assert.Equal(t, 150.0, idle.y)
	assert.Equal(t, color.Color(Palette[2]), idle.color)
	assert.Equal(t, StyleIdle, idle.style)
	assert.Empty(t, c.find("fillCircle"))
}

func TestRender_SingleContact(t *testing.T) {
	c := &recordingCanvas{size: image.Pt(400, 300)}
	res := NewPipeline(defaultConfig()).Render(c, []tracker.Entry{entry(0, 42, 100, 200)})

	assert.False(t, res.Idle)
	assert.Equal(t, 1, res.Markers)
	assert.Equal(t, 1, res.Lines)
	assert.NotContains(t, c.texts(), domain.DefaultIdleMessage)

	circles := c.find("fillCircle")
	require.Len(t, circles, 1)
	assert.Equal(t, 100.0, circles[0].x)
	assert.Equal(t, 200.0, circles[0].y)
	assert.Equal(t, 22.0, circles[0].r)
	assert.Equal(t, color.Color(colornames.Red), circles[0].color)

	rings := c.find("strokeCircle")
	require.Len(t, rings, 1)
	assert.Equal(t, 14.0, rings[0].r)

	texts := c.find("text")
	require.Len(t, texts, 2)
	assert.Equal(t, "1", texts[0].text)
	assert.Equal(t, AnchorCenter, texts[0].anchor)
	assert.Equal(t, StyleLabel, texts[0].style)
	assert.Equal(t, 100.0, texts[0].x)
	assert.Equal(t, 200.0, texts[0].y)

	assert.True(t, strings.HasPrefix(texts[1].text, "1st"))
	assert.Equal(t, "1st X: 100.00 Y: 200.00", texts[1].text)
	assert.Equal(t, StyleLine, texts[1].style)
	assert.Equal(t, 10.0, texts[1].x)
	assert.Equal(t, 30.0, texts[1].y)
}

func TestRender_TextLinesStackInSnapshotOrder(t *testing.T) {
	c := &recordingCanvas{size: image.Pt(400, 300)}
	snapshot := []tracker.Entry{entry(0, 1, 10, 10), entry(1, 2, 20, 20), entry(2, 3, 30, 30)}
	NewPipeline(defaultConfig()).Render(c, snapshot)

	var lines []op
	for _, o := range c.find("text") {
		if o.anchor == AnchorBaseline {
			lines = append(lines, o)
		}
	}
	require.Len(t, lines, 3)
	for i, l := range lines {
		assert.Equal(t, float64(18*i+30), l.y)
		assert.Equal(t, color.Color(Palette[i]), l.color)
		assert.True(t, strings.HasPrefix(l.text, OrdinalLabel(i)))
	}
}

func TestRender_HiddenTextDrawsOnlyMarkers(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{MarkScale: 2, HideText: true})
	c := &recordingCanvas{size: image.Pt(400, 300)}
	res := NewPipeline(cfg).Render(c, []tracker.Entry{entry(0, 1, 50, 50)})

	assert.Equal(t, 0, res.Lines)
	assert.Equal(t, []string{"1"}, c.texts())
	assert.Equal(t, 44.0, c.find("fillCircle")[0].r)
}

func TestRender_TransparentBackgroundClears(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{})
	c := &recordingCanvas{size: image.Pt(10, 10)}
	NewPipeline(cfg).Render(c, nil)

	require.NotEmpty(t, c.ops)
	assert.Equal(t, "clear", c.ops[0].kind)
	assert.Empty(t, c.find("fill"))
}

func TestRender_Grid(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{GridPitch: 50, Background: colornames.Black})
	c := &recordingCanvas{size: image.Pt(200, 100)}
	NewPipeline(cfg).Render(c, nil)

	// x = 0, 50, 100, 150 and y = 0, 50.
	assert.Len(t, c.find("line"), 6)
}

func TestRender_GridDisabledWhenNonPositive(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{GridPitch: -1, Background: colornames.Black})
	c := &recordingCanvas{size: image.Pt(200, 100)}
	NewPipeline(cfg).Render(c, nil)

	assert.Empty(t, c.find("line"))
}

func TestRender_GridSkipsSubPixelPitch(t *testing.T) {
	for _, pitch := range []float64{1e-20, 0.5, math.NaN(), math.Inf(-1)} {
		cfg := domain.NewRenderConfig(domain.RenderOptions{GridPitch: pitch, Background: colornames.Black})
		c := &recordingCanvas{size: image.Pt(1920, 1080)}

		done := make(chan struct{})
		go func() {
			NewPipeline(cfg).Render(c, nil)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("render with grid pitch %v did not return", pitch)
		}
		assert.Empty(t, c.find("line"), "pitch %v", pitch)
	}
}

func TestRender_GridPitchOfOnePixel(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{GridPitch: MinGridPitch, Background: colornames.Black})
	c := &recordingCanvas{size: image.Pt(30, 20)}
	NewPipeline(cfg).Render(c, nil)

	assert.Len(t, c.find("line"), 50)
}

func TestRender_UnavailableSurfaceIsNoOp(t *testing.T) {
	p := NewPipeline(defaultConfig())

	assert.True(t, p.Render(nil, nil).Skipped)

	c := &recordingCanvas{}
	assert.True(t, p.Render(c, []tracker.Entry{entry(0, 1, 1, 1)}).Skipped)
	assert.Empty(t, c.ops)

	var raster *RasterCanvas
	assert.True(t, p.Render(raster, nil).Skipped)
}

// Colors follow ordinals: after the first contact releases, the second
// one is drawn with the first palette color.
func TestRender_ColorsFollowOrdinal(t *testing.T) {
	tr := tracker.New(nil, nil)
	tr.Apply(domain.Begin{Record: entry(0, 1, 10, 10).Record})
	tr.Apply(domain.Begin{Record: entry(0, 2, 50, 50).Record})
	tr.Apply(domain.End{ID: 1, Kind: domain.KindTouch})

	c := &recordingCanvas{size: image.Pt(100, 100)}
	NewPipeline(defaultConfig()).Render(c, tr.Snapshot())

	circles := c.find("fillCircle")
	require.Len(t, circles, 1)
	assert.Equal(t, 50.0, circles[0].x)
	assert.Equal(t, color.Color(Palette[0]), circles[0].color)
}

func TestRender_RasterIsIdempotent(t *testing.T) {
	cfg := domain.NewRenderConfig(domain.RenderOptions{
		MarkScale: 1, GridPitch: 40, Background: colornames.Black, ShowRadius: true, ShowKind: true,
	})
	p := NewPipeline(cfg)
	snapshot := []tracker.Entry{entry(0, 1, 100, 200), entry(1, 2, 250.5, 80.25)}

	c := NewRasterCanvas(320, 240)
	p.Render(c, snapshot)
	first := c.Copy()
	p.Render(c, snapshot)

	assert.Equal(t, first.Pix, c.Image().Pix)
}

func TestRender_RasterMarkerPixels(t *testing.T) {
	c := NewRasterCanvas(400, 300)
	NewPipeline(defaultConfig()).Render(c, []tracker.Entry{entry(0, 1, 100, 200)})
	img := c.Image()

	// Outer disc (radius 22) outside the inner ring (14 ± 3) is palette red.
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, img.RGBAAt(114, 214))
	// Inner ring is black.
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, img.RGBAAt(110, 210))
	// Far from the marker and its crosshair the background shows.
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, img.RGBAAt(300, 100))
}

func TestRender_RasterTransparentBackground(t *testing.T) {
	c := NewRasterCanvas(50, 50)
	c.Fill(colornames.White)
	NewPipeline(domain.NewRenderConfig(domain.RenderOptions{IdleMessage: "x"})).Render(c, nil)

	assert.Equal(t, uint8(0), c.Image().RGBAAt(0, 0).A)
}
