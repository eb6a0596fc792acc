package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// kappa places cubic Bézier control points for a quarter circle.
const kappa = 0.5522847498

// maxCoord bounds coordinates handed to the rasterizer and the font
// drawer. Shapes placed farther out are not drawn.
const maxCoord = 1 << 24

// RasterCanvas is a Canvas backed by an RGBA image.
//
// Shapes are rasterized into a scratch area the size of their clipped
// bounding box, so drawing cost follows the shape, not the surface.
type RasterCanvas struct {
	img   *image.RGBA
	faces faceSet
	rast  *vector.Rasterizer
	clip  image.Rectangle
}

// NewRasterCanvas allocates a w×h surface. Non-positive sizes give an
// empty surface on which every drawing call is a no-op.
func NewRasterCanvas(w, h int) *RasterCanvas {
	c := &RasterCanvas{faces: newFaceSet(), rast: vector.NewRasterizer(0, 0)}
	c.Resize(w, h)
	return c
}

// Resize reallocates the backing image. Contents are discarded.
func (c *RasterCanvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Image returns the live backing image.
func (c *RasterCanvas) Image() *image.RGBA { return c.img }

// Copy returns a detached copy of the current surface.
func (c *RasterCanvas) Copy() *image.RGBA {
	dst := image.NewRGBA(c.img.Rect)
	copy(dst.Pix, c.img.Pix)
	return dst
}

func (c *RasterCanvas) Size() image.Point {
	if c == nil || c.img == nil {
		return image.Point{}
	}
	return c.img.Rect.Size()
}

func (c *RasterCanvas) empty() bool {
	return c.img.Rect.Empty()
}

func (c *RasterCanvas) Clear() {
	draw.Draw(c.img, c.img.Rect, image.Transparent, image.Point{}, draw.Src)
}

func (c *RasterCanvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// Line draws a segment of the given width. Horizontal and vertical
// segments are filled as pixel rectangles.
func (c *RasterCanvas) Line(x0, y0, x1, y1, width float64, col color.Color) {
	if c.empty() || !(width > 0) || !finite(x0, y0, x1, y1, width) {
		return
	}
	half := width / 2
	switch {
	case x0 == x1 && y0 == y1:
		return
	case x0 == x1:
		c.fillRect(x0-half, min(y0, y1), x0+half, max(y0, y1), col)
		return
	case y0 == y1:
		c.fillRect(min(x0, x1), y0-half, max(x0, x1), y0+half, col)
		return
	}

	if !inRange(x0, y0, x1, y1, width) {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	// Perpendicular offset of half the width.
	nx, ny := -dy/length*half, dx/length*half

	if !c.begin(min(x0, x1)-half, min(y0, y1)-half, max(x0, x1)+half, max(y0, y1)+half) {
		return
	}
	c.moveTo(x0+nx, y0+ny)
	c.lineTo(x1+nx, y1+ny)
	c.lineTo(x1-nx, y1-ny)
	c.lineTo(x0-nx, y0-ny)
	c.rast.ClosePath()
	c.paint(col)
}

func (c *RasterCanvas) FillCircle(cx, cy, r float64, col color.Color) {
	if c.empty() || !(r > 0) || !inRange(cx, cy, r) {
		return
	}
	if !c.begin(cx-r, cy-r, cx+r, cy+r) {
		return
	}
	c.circle(cx, cy, r, false)
	c.paint(col)
}

// StrokeCircle paints a ring of the given width centered on radius r.
func (c *RasterCanvas) StrokeCircle(cx, cy, r, width float64, col color.Color) {
	if c.empty() || !(r > 0) || !(width > 0) || !inRange(cx, cy, r, width) {
		return
	}
	outer := r + width/2
	inner := r - width/2

	if !c.begin(cx-outer, cy-outer, cx+outer, cy+outer) {
		return
	}
	c.circle(cx, cy, outer, false)
	if inner > 0 {
		// Opposite winding cancels the coverage inside the ring.
		c.circle(cx, cy, inner, true)
	}
	c.paint(col)
}

func (c *RasterCanvas) Text(s string, x, y float64, style TextStyle, anchor Anchor, col color.Color) {
	if c.empty() || s == "" || !inRange(x, y) {
		return
	}
	face := c.faces.face(style)
	if anchor == AnchorCenter {
		metrics := face.Metrics()
		x -= c.MeasureText(s, style) / 2
		y += float64(metrics.Ascent-metrics.Descent) / 64 / 2
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(s)
}

func (c *RasterCanvas) MeasureText(s string, style TextStyle) float64 {
	return float64(font.MeasureString(c.faces.face(style), s)) / 64
}

// fillRect paints the pixels whose centers fall inside the rectangle,
// at least one pixel thick.
func (c *RasterCanvas) fillRect(x0, y0, x1, y1 float64, col color.Color) {
	r := image.Rect(pixelEdge(x0), pixelEdge(y0), pixelEdge(x1), pixelEdge(y1))
	if r.Dx() == 0 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() == 0 {
		r.Max.Y = r.Min.Y + 1
	}
	r = r.Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// begin sizes the rasterizer to the given bounds clipped to the surface.
// It reports false when nothing would be visible.
func (c *RasterCanvas) begin(minX, minY, maxX, maxY float64) bool {
	r := image.Rect(
		int(math.Floor(clampCoord(minX))), int(math.Floor(clampCoord(minY))),
		int(math.Ceil(clampCoord(maxX))), int(math.Ceil(clampCoord(maxY))),
	).Intersect(c.img.Rect)
	if r.Empty() {
		return false
	}
	c.clip = r
	c.rast.Reset(r.Dx(), r.Dy())
	return true
}

func (c *RasterCanvas) paint(col color.Color) {
	c.rast.Draw(c.img, c.clip, image.NewUniform(col), image.Point{})
}

// local converts a surface coordinate to the rasterizer's clip space.
func (c *RasterCanvas) local(x, y float64) (float32, float32) {
	return float32(x - float64(c.clip.Min.X)), float32(y - float64(c.clip.Min.Y))
}

func (c *RasterCanvas) moveTo(x, y float64) {
	c.rast.MoveTo(c.local(x, y))
}

func (c *RasterCanvas) lineTo(x, y float64) {
	c.rast.LineTo(c.local(x, y))
}

func (c *RasterCanvas) cubeTo(x1, y1, x2, y2, x, y float64) {
	ax, ay := c.local(x1, y1)
	bx, by := c.local(x2, y2)
	px, py := c.local(x, y)
	c.rast.CubeTo(ax, ay, bx, by, px, py)
}

// circle appends a closed circular path built from four cubic segments.
func (c *RasterCanvas) circle(cx, cy, r float64, reverse bool) {
	k := kappa * r
	c.moveTo(cx+r, cy)
	if !reverse {
		c.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		c.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		c.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		c.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		c.cubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		c.cubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		c.cubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		c.cubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	c.rast.ClosePath()
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// inRange reports whether every value is finite and within maxCoord.
func inRange(vs ...float64) bool {
	for _, v := range vs {
		if !(math.Abs(v) <= maxCoord) {
			return false
		}
	}
	return true
}

func clampCoord(v float64) float64 {
	return min(max(v, -maxCoord), maxCoord)
}

func pixelEdge(v float64) int {
	return int(math.Round(clampCoord(v)))
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
