package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LineSink receives one formatted log-panel line per mirrored record.
// It is called synchronously and must not block.
type LineSink func(line string)

// PanelHandler mirrors records at or above its level into a LineSink and
// forwards every record the inner handler accepts. Sessions use it to show
// their own diagnostics on the tester page.
type PanelHandler struct {
	inner slog.Handler
	sink  LineSink
	level slog.Leveler
}

// NewPanelHandler wraps inner. A nil sink disables mirroring.
func NewPanelHandler(inner slog.Handler, sink LineSink, level slog.Leveler) *PanelHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &PanelHandler{inner: inner, sink: sink, level: level}
}

func (h *PanelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.mirrors(level) || h.inner.Enabled(ctx, level)
}

func (h *PanelHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.mirrors(r.Level) {
		h.sink(FormatPanelLine(r))
	}
	if !h.inner.Enabled(ctx, r.Level) {
		return nil
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("panel handler: %w", err)
	}
	return nil
}

func (h *PanelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PanelHandler{inner: h.inner.WithAttrs(attrs), sink: h.sink, level: h.level}
}

func (h *PanelHandler) WithGroup(name string) slog.Handler {
	return &PanelHandler{inner: h.inner.WithGroup(name), sink: h.sink, level: h.level}
}

func (h *PanelHandler) mirrors(level slog.Level) bool {
	return h.sink != nil && level >= h.level.Level()
}

// FormatPanelLine renders the message followed by the record's own
// attributes. Warnings and errors carry a level prefix.
func FormatPanelLine(r slog.Record) string {
	var b strings.Builder
	if r.Level >= slog.LevelWarn {
		b.WriteString(r.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.Resolve().String())
		return true
	})
	return b.String()
}
