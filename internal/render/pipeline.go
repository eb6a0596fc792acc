package render

import (
	"math"
	"strconv"

	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/markthomas93/WBBMTT/internal/tracker"
)

// MinGridPitch is the smallest grid spacing drawn; finer grids are
// indistinguishable from a filled surface.
const MinGridPitch = 1

const (
	lineWidth  = 1
	textLeft   = 10
	textTop    = 30
	lineHeight = 18
)

// Result summarizes one render pass.
type Result struct {
	Markers int
	Lines   int
	Idle    bool
	Skipped bool
}

// Pipeline repaints a Canvas from a tracker snapshot.
type Pipeline struct {
	cfg domain.RenderConfig
}

func NewPipeline(cfg domain.RenderConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Config returns the pipeline's render configuration.
func (p *Pipeline) Config() domain.RenderConfig { return p.cfg }

// Render repaints the full surface. It only reads snapshot, so calling it
// again with the same inputs yields identical output. A nil or zero-sized
// canvas makes it a no-op.
func (p *Pipeline) Render(c Canvas, snapshot []tracker.Entry) Result {
	if c == nil {
		return Result{Skipped: true}
	}
	size := c.Size()
	if size.X <= 0 || size.Y <= 0 {
		return Result{Skipped: true}
	}

	if p.cfg.Background != nil {
		c.Fill(p.cfg.Background)
	} else {
		c.Clear()
	}

	if p.cfg.GridPitch > 0 {
		p.drawGrid(c, float64(size.X), float64(size.Y))
	}

	if len(snapshot) == 0 {
		p.drawIdle(c, float64(size.X), float64(size.Y))
		return Result{Idle: true}
	}

	var res Result
	for _, e := range snapshot {
		p.drawMarker(c, e, float64(size.X), float64(size.Y))
		res.Markers++
	}

	if p.cfg.ShowText {
		for i, e := range snapshot {
			line := FormatContact(e, p.cfg.ShowRadius, p.cfg.ShowKind)
			c.Text(line, textLeft, float64(lineHeight*i+textTop), StyleLine, AnchorBaseline, ColorFor(e.Ordinal))
			res.Lines++
		}
	}
	return res
}

func (p *Pipeline) drawGrid(c Canvas, w, h float64) {
	pitch := p.cfg.GridPitch
	if !(pitch >= MinGridPitch) {
		return
	}
	for i := range gridLines(w, pitch) {
		x := float64(i) * pitch
		c.Line(x, 0, x, h, lineWidth, gridColor)
	}
	for i := range gridLines(h, pitch) {
		y := float64(i) * pitch
		c.Line(0, y, w, y, lineWidth, gridColor)
	}
}

// gridLines counts the lines at 0, pitch, 2*pitch, ... below extent.
func gridLines(extent, pitch float64) int {
	return int(math.Ceil(extent / pitch))
}

func (p *Pipeline) drawMarker(c Canvas, e tracker.Entry, w, h float64) {
	col := ColorFor(e.Ordinal)
	px, py := e.Record.Position.X, e.Record.Position.Y

	c.Line(px, 0, px, h, lineWidth, col)
	c.Line(0, py, w, py, lineWidth, col)

	c.FillCircle(px, py, p.cfg.OuterRadius, col)
	c.StrokeCircle(px, py, p.cfg.InnerRadius, p.cfg.InnerStrokeWidth, markInkColor)

	c.Text(strconv.Itoa(e.Ordinal+1), px, py, StyleLabel, AnchorCenter, markInkColor)
}

func (p *Pipeline) drawIdle(c Canvas, w, h float64) {
	msg := p.cfg.IdleMessage
	x := (w - c.MeasureText(msg, StyleIdle)) / 2
	c.Text(msg, x, h/2, StyleIdle, AnchorBaseline, ColorFor(idleColorIndex))
}
