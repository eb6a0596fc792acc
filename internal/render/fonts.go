package render

import (
	"log/slog"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// Face sizes in pixels at 72 DPI.
const (
	labelFontSize = 12
	lineFontSize  = 16
	idleFontSize  = 18
)

var (
	parseMono     = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gomono.TTF) })
	parseMonoBold = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gomonobold.TTF) })
)

// faceSet holds one face per TextStyle. Faces cache glyphs and are not
// safe for concurrent use, so every canvas owns its own set.
type faceSet struct {
	label font.Face
	line  font.Face
	idle  font.Face
}

func newFaceSet() faceSet {
	return faceSet{
		label: newFace(parseMonoBold, labelFontSize),
		line:  newFace(parseMono, lineFontSize),
		idle:  newFace(parseMono, idleFontSize),
	}
}

func (fs faceSet) face(style TextStyle) font.Face {
	switch style {
	case StyleLabel:
		return fs.label
	case StyleIdle:
		return fs.idle
	default:
		return fs.line
	}
}

func newFace(parse func() (*opentype.Font, error), size float64) font.Face {
	f, err := parse()
	if err == nil {
		var face font.Face
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
	}
	slog.Warn("Falling back to bitmap font", "size", size, "error", err)
	return basicfont.Face7x13
}
