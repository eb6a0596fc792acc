package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/markthomas93/WBBMTT/internal/app"
	apperrors "github.com/markthomas93/WBBMTT/internal/platform/errors"
	"github.com/markthomas93/WBBMTT/internal/render"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// contactView is one contact as shown by the contacts endpoint. Line is
// the diagnostic text the session draws for it.
type contactView struct {
	Ordinal int      `json:"ordinal"`
	ID      int64    `json:"id"`
	Kind    string   `json:"kind"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	ScreenX float64  `json:"screen_x"`
	ScreenY float64  `json:"screen_y"`
	RadiusX *float64 `json:"radius_x,omitempty"`
	RadiusY *float64 `json:"radius_y,omitempty"`
	Line    string   `json:"line"`
}

type encodedFrame struct {
	seq  uint64
	data []byte
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.GET("/sessions", s.handleListSessions)
	api.GET("/sessions/:id/contacts", s.handleContacts)
	api.GET("/sessions/:id/frame.png", s.handleFrame)
	api.POST("/sessions/:id/clear", s.handleClear)
}

func (s *Server) handleListSessions(c echo.Context) error {
	sessions := s.registry.List()
	response := map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleContacts(c echo.Context) error {
	v, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	entries, err := v.Snapshot(c.Request().Context())
	if err != nil {
		return apperrors.AsStructuredError(mapDomainError(err)).WithField("session_id", v.ID().String())
	}

	cfg := v.Options().Render
	contacts := make([]contactView, 0, len(entries))
	for _, e := range entries {
		contacts = append(contacts, contactView{
			Ordinal: e.Ordinal,
			ID:      int64(e.Record.ID),
			Kind:    string(e.Record.Kind),
			X:       e.Record.Position.X,
			Y:       e.Record.Position.Y,
			ScreenX: e.Record.Screen.X,
			ScreenY: e.Record.Screen.Y,
			RadiusX: e.Record.RadiusX,
			RadiusY: e.Record.RadiusY,
			Line:    render.FormatContact(e, cfg.ShowRadius, cfg.ShowKind),
		})
	}

	response := map[string]any{
		"session":  v.ID(),
		"contacts": contacts,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleFrame serves the session's current surface as PNG. Concurrent
// requests for the same session share one encoding.
func (s *Server) handleFrame(c echo.Context) error {
	v, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	ctx := context.WithoutCancel(c.Request().Context())
	result, err, shared := s.frames.Do(v.ID().String(), func() (any, error) {
		frame, err := v.Frame(ctx)
		if err != nil {
			return nil, err
		}
		if frame.Image == nil || frame.Image.Rect.Empty() {
			return nil, apperrors.NotFoundError("no frame rendered yet")
		}

		var buf bytes.Buffer
		if err := pngEncoder.Encode(&buf, frame.Image); err != nil {
			return nil, apperrors.InternalError("failed to encode frame", err)
		}
		return encodedFrame{seq: frame.Seq, data: buf.Bytes()}, nil
	})
	if s.httpMetrics != nil {
		s.httpMetrics.FrameRequests.WithLabelValues(strconv.FormatBool(shared)).Inc()
	}
	if err != nil {
		// Shared with concurrent callers; must not be mutated.
		return apperrors.AsStructuredError(mapDomainError(err))
	}

	frame := result.(encodedFrame)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	c.Response().Header().Set("X-Frame-Seq", strconv.FormatUint(frame.seq, 10))
	if err := c.Blob(http.StatusOK, "image/png", frame.data); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

func (s *Server) handleClear(c echo.Context) error {
	v, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	dropped, err := v.Clear(c.Request().Context(), app.ReasonAPI)
	if err != nil {
		return apperrors.AsStructuredError(mapDomainError(err)).WithField("session_id", v.ID().String())
	}

	if err := c.JSON(http.StatusOK, map[string]any{"status": "ok", "dropped": dropped}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) lookupSession(c echo.Context) (*app.Visualizer, error) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, apperrors.ValidationError("invalid session id").WithField("session_id", idStr)
	}

	v, err := s.registry.Get(id)
	if err != nil {
		return nil, apperrors.AsStructuredError(mapDomainError(err)).WithField("session_id", idStr)
	}
	return v, nil
}
