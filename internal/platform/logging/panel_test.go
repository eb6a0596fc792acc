package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type lines struct{ got []string }

func (l *lines) sink(line string) { l.got = append(l.got, line) }

func TestPanelHandler_MirrorsAtOrAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	var panel lines
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(NewPanelHandler(inner, panel.sink, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("Touches cleared by shake.", "dropped", 2)
	logger.Warn("Release for inactive contact, ignoring", "contact_id", 9)

	assert.Equal(t, []string{
		"Touches cleared by shake. dropped=2",
		"WARN: Release for inactive contact, ignoring contact_id=9",
	}, panel.got)

	// The inner handler keeps its own level.
	assert.NotContains(t, buf.String(), "Touches cleared")
	assert.Contains(t, buf.String(), "contact_id=9")
}

func TestPanelHandler_DebugLevelMirrorsEverything(t *testing.T) {
	var panel lines
	inner := slog.NewTextHandler(&bytes.Buffer{}, nil)
	logger := slog.New(NewPanelHandler(inner, panel.sink, slog.LevelDebug))

	logger.Debug("Pointer event", "event", "move")

	assert.Equal(t, []string{"Pointer event event=move"}, panel.got)
}

func TestPanelHandler_WithAttrsKeepsMirroring(t *testing.T) {
	var buf bytes.Buffer
	var panel lines
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewPanelHandler(inner, panel.sink, nil)).With("session_id", "abc")

	logger.Info("Visualizer started")

	assert.Equal(t, []string{"Visualizer started"}, panel.got)
	assert.Contains(t, buf.String(), "session_id=abc")
}

func TestPanelHandler_NilSink(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewPanelHandler(inner, nil, slog.LevelDebug)
	logger := slog.New(h)

	logger.Info("still logged")

	assert.Contains(t, buf.String(), "still logged")
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
