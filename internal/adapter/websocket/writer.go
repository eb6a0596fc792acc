package websocket

import (
	"bytes"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/adapter/metrics"
	"github.com/markthomas93/WBBMTT/internal/app"
)

const (
	writeDeadline  = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongDeadline   = 60 * time.Second
	logBufferSize  = 64
	maxMessageSize = 4096
)

// sessionWriter owns all writes to one connection. Frames are coalesced:
// only the newest pending frame is encoded, older ones are dropped. Log
// lines are queued and dropped when the client falls behind.
type sessionWriter struct {
	connection *websocket.Conn
	clock      clockwork.Clock
	metrics    *metrics.WebSocketMetrics
	encoder    png.Encoder
	buf        bytes.Buffer

	frameMutex sync.Mutex
	frame      *app.Frame
	frameReady chan struct{}

	textChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newSessionWriter(connection *websocket.Conn, clock clockwork.Clock, m *metrics.WebSocketMetrics) *sessionWriter {
	sw := &sessionWriter{
		connection:  connection,
		clock:       clock,
		metrics:     m,
		encoder:     png.Encoder{CompressionLevel: png.BestSpeed},
		frameReady:  make(chan struct{}, 1),
		textChannel: make(chan []byte, logBufferSize),
		doneChannel: make(chan struct{}),
	}
	sw.configureReadSide()
	sw.wg.Add(1)
	go sw.run()
	return sw
}

// offerFrame replaces any pending frame. It never blocks.
func (sw *sessionWriter) offerFrame(f app.Frame) {
	sw.frameMutex.Lock()
	if sw.frame != nil {
		sw.metrics.FramesDropped.Inc()
	}
	sw.frame = &f
	sw.frameMutex.Unlock()

	select {
	case sw.frameReady <- struct{}{}:
	default:
	}
}

// offerLog queues one log-panel line. It never blocks.
func (sw *sessionWriter) offerLog(line string) {
	sw.offerText(serverMessage{Log: line})
}

func (sw *sessionWriter) offerText(m serverMessage) {
	data, err := encodeServerMessage(m)
	if err != nil {
		slog.Error("Failed to encode server message", "error", err)
		return
	}
	select {
	case sw.textChannel <- data:
	case <-sw.doneChannel:
	default:
		sw.metrics.LogLinesDropped.Inc()
	}
}

func (sw *sessionWriter) takeFrame() *app.Frame {
	sw.frameMutex.Lock()
	defer sw.frameMutex.Unlock()
	f := sw.frame
	sw.frame = nil
	return f
}

// run drains the writer until stopped. A failed write closes the
// connection so the read side ends the session.
func (sw *sessionWriter) run() {
	defer sw.wg.Done()

	if err := sw.writeLoop(); err != nil {
		slog.Debug("Session write failed, closing connection", "error", err)
		_ = sw.connection.Close()
	}
}

func (sw *sessionWriter) writeLoop() error {
	ticker := sw.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.frameReady:
			f := sw.takeFrame()
			if f == nil {
				continue
			}
			if err := sw.writeFrame(f); err != nil {
				return err
			}
		case msg := <-sw.textChannel:
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.Chan():
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-sw.doneChannel:
			return nil
		}
	}
}

func (sw *sessionWriter) writeFrame(f *app.Frame) error {
	sw.buf.Reset()
	if err := sw.encoder.Encode(&sw.buf, f.Image); err != nil {
		return err
	}
	sw.updateWriteDeadline()
	if err := sw.connection.WriteMessage(websocket.BinaryMessage, sw.buf.Bytes()); err != nil {
		return err
	}
	sw.metrics.FramesSent.Inc()
	sw.metrics.FrameBytes.Observe(float64(sw.buf.Len()))
	return nil
}

func (sw *sessionWriter) stop() {
	sw.stopOnce.Do(func() {
		close(sw.doneChannel)
		_ = sw.connection.Close()
	})
	sw.wg.Wait()
}

// stopGraceful sends a WebSocket close frame with code and reason before closing.
func (sw *sessionWriter) stopGraceful(code int, reason string) {
	sw.stopOnce.Do(func() {
		// Signal the run goroutine to exit first
		close(sw.doneChannel)

		// Wait for run goroutine to exit before writing close frame
		// This prevents concurrent writes to the WebSocket connection
		sw.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(code, reason)
		sw.updateWriteDeadline()
		_ = sw.connection.WriteMessage(websocket.CloseMessage, closeMsg)

		_ = sw.connection.Close()
	})
	sw.wg.Wait()
}

func (sw *sessionWriter) configureReadSide() {
	sw.connection.SetReadLimit(maxMessageSize)
	sw.extendReadDeadline()
	sw.connection.SetPongHandler(func(string) error {
		sw.extendReadDeadline()
		return nil
	})
}

func (sw *sessionWriter) updateWriteDeadline() {
	deadline := sw.clock.Now().Add(writeDeadline)
	_ = sw.connection.SetWriteDeadline(deadline)
}

// extendReadDeadline is called on every pong and every client message.
func (sw *sessionWriter) extendReadDeadline() {
	deadline := sw.clock.Now().Add(pongDeadline)
	_ = sw.connection.SetReadDeadline(deadline)
}
