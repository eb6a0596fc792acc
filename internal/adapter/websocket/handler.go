package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/adapter/metrics"
	"github.com/markthomas93/WBBMTT/internal/app"
	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/markthomas93/WBBMTT/internal/platform/config"
	apperrors "github.com/markthomas93/WBBMTT/internal/platform/errors"
	"github.com/markthomas93/WBBMTT/internal/platform/logging"
	"github.com/markthomas93/WBBMTT/internal/render"
)

// Settings are the server-wide inputs every session is built from.
type Settings struct {
	Defaults       config.SessionOptions
	DebugInput     bool
	ResizeDelay    time.Duration
	ShakeDelay     time.Duration
	ShakeThreshold float64
}

// Resolve applies query overrides and derives the session options.
func (s Settings) Resolve(q url.Values) (app.Options, config.SessionOptions, error) {
	so, err := config.ParseSessionQuery(s.Defaults, q)
	if err != nil {
		return app.Options{}, so, err
	}

	bg, err := render.ParseColor(so.BackgroundColor)
	if err != nil {
		return app.Options{}, so, &config.FieldError{Field: config.QueryBackgroundColor, Value: so.BackgroundColor, Err: err}
	}

	accept := domain.TouchOnly()
	if s.DebugInput {
		accept = domain.AllPointers()
	}

	opts := app.Options{
		Render: domain.NewRenderConfig(domain.RenderOptions{
			MarkScale:  so.MarkSizeScale,
			GridPitch:  so.GridSpan,
			Background: bg,
			HideText:   so.HideTouchProperties,
			ShowRadius: so.ShowTouchRadius,
			ShowKind:   so.ShowPointerType,
		}),
		Accept:         accept,
		ManualClear:    so.ShakeClearMode,
		ShakeThreshold: s.ShakeThreshold,
		ShakeDelay:     s.ShakeDelay,
		ResizeDelay:    s.ResizeDelay,
		LogEvents:      so.LogEvents,
	}
	return opts, so, nil
}

// Handler upgrades tester pages and runs one session per connection.
type Handler struct {
	registry *app.Registry
	settings Settings
	clock    clockwork.Clock
	metrics  *metrics.WebSocketMetrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	writers map[uuid.UUID]*sessionWriter
}

// NewHandler creates the WebSocket endpoint. checkOrigin may be nil to
// use gorilla's same-origin default.
func NewHandler(registry *app.Registry, settings Settings, clock clockwork.Clock, m *metrics.WebSocketMetrics, logger *slog.Logger, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		registry: registry,
		settings: settings,
		clock:    clock,
		metrics:  m,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		writers: make(map[uuid.UUID]*sessionWriter),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts, _, err := h.settings.Resolve(r.URL.Query())
	if err != nil {
		writeError(w, apperrors.ValidationError(err.Error()).WithCause(err))
		return
	}
	if !h.registry.Available() {
		writeError(w, apperrors.UnavailableError("too many active sessions", domain.ErrSessionLimit))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	if err := h.sendHello(conn, id); err != nil {
		h.logger.Debug("Failed to greet client", "session_id", id, "error", err)
		_ = conn.Close()
		return
	}

	writer := newSessionWriter(conn, h.clock, h.metrics)
	h.track(id, writer)
	defer h.untrack(id)

	logger := slog.New(logging.NewPanelHandler(h.logger.Handler(), writer.offerLog, slog.LevelInfo)).
		With("session_id", id)

	v, err := h.registry.Open(id, opts, logger, writer.offerFrame)
	if err != nil {
		h.logger.Warn("Failed to open session", "session_id", id, "error", err)
		writer.stopGraceful(websocket.CloseTryAgainLater, "session limit reached")
		return
	}

	h.metrics.ActiveConnections.Inc()
	defer func() {
		h.registry.Close(id)
		writer.stop()
		h.metrics.ActiveConnections.Dec()
	}()

	h.readLoop(r.Context(), conn, writer, v, logger)
}

// Shutdown closes every open connection with a going-away frame.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	writers := make([]*sessionWriter, 0, len(h.writers))
	for _, sw := range h.writers {
		writers = append(writers, sw)
	}
	h.mu.Unlock()

	for _, sw := range writers {
		sw.stopGraceful(websocket.CloseGoingAway, "server shutting down")
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, writer *sessionWriter, v *app.Visualizer, logger *slog.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		writer.extendReadDeadline()

		if err := h.dispatch(ctx, v, logger, data); err != nil {
			if errors.Is(err, domain.ErrStopped) {
				return
			}
			logger.Debug("Client message not processed", "error", err)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, v *app.Visualizer, logger *slog.Logger, data []byte) error {
	msg, err := decodeClientMessage(data)
	if err != nil {
		h.metrics.MessagesReceived.WithLabelValues("invalid").Inc()
		logger.Warn("Malformed client message", "error", err)
		return nil
	}

	label := msg.Type
	switch {
	case isPointerType(msg.Type):
		ev, perr := msg.pointerEvent()
		if perr != nil {
			return perr
		}
		err = v.Apply(ev)
	case msg.Type == typeResize:
		width, height := msg.surfaceSize()
		err = v.Resize(width, height)
	case msg.Type == typeDeviceMotion:
		v.Motion(domain.Motion{Acceleration: msg.Acceleration})
	case msg.Type == typeCapabilities:
		if msg.MaxTouchPoints != nil {
			logger.Info("Browser maxTouchPoints", "max_touch_points", *msg.MaxTouchPoints)
		}
		if msg.DeviceMotion != nil && !*msg.DeviceMotion {
			v.MotionUnavailable()
		}
	case msg.Type == typeClear:
		_, err = v.Clear(ctx, app.ReasonClient)
	default:
		label = "unknown"
		logger.Warn("Ignoring client message", "type", msg.Type, "error", domain.ErrUnknownEvent)
	}

	h.metrics.MessagesReceived.WithLabelValues(label).Inc()
	return err
}

func (h *Handler) sendHello(conn *websocket.Conn, id uuid.UUID) error {
	data, err := encodeServerMessage(serverMessage{Session: id.String()})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(h.clock.Now().Add(writeDeadline))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Handler) track(id uuid.UUID, sw *sessionWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writers[id] = sw
}

func (h *Handler) untrack(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.writers, id)
}

func writeError(w http.ResponseWriter, e *apperrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus())
	_ = json.NewEncoder(w).Encode(e.ToResponse())
}
