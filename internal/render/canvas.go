package render

import (
	"image"
	"image/color"
)

// Anchor selects how a text position is interpreted.
type Anchor int

const (
	// AnchorBaseline places the left end of the baseline at the position.
	AnchorBaseline Anchor = iota
	// AnchorCenter centers the text box on the position.
	AnchorCenter
)

// TextStyle selects the face text is drawn with.
type TextStyle int

const (
	// StyleLabel is the bold ordinal inside a marker.
	StyleLabel TextStyle = iota
	// StyleLine is a diagnostic text line.
	StyleLine
	// StyleIdle is the idle message.
	StyleIdle
)

// Canvas is the drawing surface a Pipeline paints on.
type Canvas interface {
	Size() image.Point
	Clear()
	Fill(c color.Color)
	Line(x0, y0, x1, y1, width float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeCircle(cx, cy, r, width float64, c color.Color)
	Text(s string, x, y float64, style TextStyle, anchor Anchor, c color.Color)
	MeasureText(s string, style TextStyle) float64
}
