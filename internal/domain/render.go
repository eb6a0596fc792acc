package domain

import (
	"image/color"
	"math"
)

const (
	baseOuterRadius      = 22
	baseInnerRadius      = 14
	baseInnerStrokeWidth = 6

	// DefaultIdleMessage is shown while no contact is active.
	DefaultIdleMessage = "Touch Screen Tester (WBBMTT)"
)

// RenderConfig is the immutable per-session render configuration.
type RenderConfig struct {
	OuterRadius      float64
	InnerRadius      float64
	InnerStrokeWidth float64

	// Background is nil for a transparent surface (clear instead of fill).
	Background color.Color
	// GridPitch draws a grid when at least one pixel.
	GridPitch float64

	ShowText    bool
	ShowRadius  bool
	ShowKind    bool
	IdleMessage string
}

// RenderOptions are the raw inputs a RenderConfig is derived from.
type RenderOptions struct {
	MarkScale   float64
	GridPitch   float64
	Background  color.Color
	HideText    bool
	ShowRadius  bool
	ShowKind    bool
	IdleMessage string
}

// NewRenderConfig derives marker geometry from the scale factor.
// A non-positive or non-finite scale falls back to 1.
func NewRenderConfig(opts RenderOptions) RenderConfig {
	scale := opts.MarkScale
	if !(scale > 0) || math.IsInf(scale, 1) {
		scale = 1
	}
	idle := opts.IdleMessage
	if idle == "" {
		idle = DefaultIdleMessage
	}
	return RenderConfig{
		OuterRadius:      baseOuterRadius * scale,
		InnerRadius:      baseInnerRadius * scale,
		InnerStrokeWidth: baseInnerStrokeWidth * scale,
		Background:       opts.Background,
		GridPitch:        opts.GridPitch,
		ShowText:         !opts.HideText,
		ShowRadius:       opts.ShowRadius,
		ShowKind:         opts.ShowKind,
		IdleMessage:      idle,
	}
}
