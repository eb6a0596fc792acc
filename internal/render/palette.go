package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Palette colors markers and text by ordinal.
var Palette = []color.RGBA{
	colornames.Red,
	colornames.Lime,
	colornames.Orange,
	colornames.Aqua,
	colornames.Fuchsia,
	colornames.Yellow,
	colornames.Purple,
	colornames.White,
}

var (
	gridColor      color.Color = colornames.Gray
	markInkColor   color.Color = colornames.Black
	idleColorIndex             = 2
)

// ColorFor returns the palette color for an ordinal. Colors follow the
// ordinal, so they are reassigned when an earlier contact releases.
func ColorFor(ordinal int) color.RGBA {
	if ordinal < 0 {
		ordinal = -ordinal
	}
	return Palette[ordinal%len(Palette)]
}

// ParseColor resolves a CSS color name or #rgb / #rrggbb hex value.
// "", "none" and "transparent" yield nil: the surface is cleared, not filled.
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none", "transparent":
		return nil, nil
	}

	if strings.HasPrefix(name, "#") {
		return parseHex(name[1:])
	}

	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

func parseHex(hex string) (color.Color, error) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return nil, fmt.Errorf("invalid hex color %q", "#"+hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", "#"+hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
