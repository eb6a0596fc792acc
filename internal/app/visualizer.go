package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/coalesce"
	"github.com/markthomas93/WBBMTT/internal/domain"
	"github.com/markthomas93/WBBMTT/internal/render"
	"github.com/markthomas93/WBBMTT/internal/shake"
	"github.com/markthomas93/WBBMTT/internal/tracker"
)

const (
	commandTimeout = 5 * time.Second  // Actor request timeout
	stopTimeout    = 10 * time.Second // Graceful shutdown timeout
	commandBuffer  = 256

	// DefaultResizeDelay is the quiet period before a burst of resize
	// notifications is applied to the surface.
	DefaultResizeDelay = 300 * time.Millisecond

	// MaxSurfaceSide bounds each surface dimension in pixels.
	MaxSurfaceSide = 4096
	// MaxSurfacePixels bounds the surface area (one 4K UHD screen). Larger
	// requests keep their width and lose height.
	MaxSurfacePixels = 3840 * 2160
)

// Clear reasons.
const (
	ReasonShake  = "shake"
	ReasonClient = "client"
	ReasonAPI    = "api"
)

// Options configure one session. They are fixed for its lifetime.
type Options struct {
	Render domain.RenderConfig
	Accept domain.KindSet

	// ManualClear enables shake-to-clear. Released contacts are removed
	// regardless.
	ManualClear    bool
	ShakeThreshold float64
	ShakeDelay     time.Duration
	ResizeDelay    time.Duration

	// LogEvents logs applied pointer events at info instead of debug.
	LogEvents bool

	// Initial surface size. Zero means unsized until the first Resize.
	Width, Height int
}

// Frame is one rendered surface. Image is a copy owned by the receiver.
type Frame struct {
	Seq   uint64
	Image *image.RGBA
}

// FrameSink receives every rendered frame on the actor goroutine. It must
// not block.
type FrameSink func(Frame)

// visualizerCmd is the command interface for the Visualizer actor.
type visualizerCmd interface{ isVisualizerCmd() }

type baseVisualizerCmd struct{}

func (baseVisualizerCmd) isVisualizerCmd() {}

type applyCmd struct {
	baseVisualizerCmd
	event domain.Event
}

type resizeCmd struct {
	baseVisualizerCmd
	width, height int
}

type settleResizeCmd struct {
	baseVisualizerCmd
}

type clearCmd struct {
	baseVisualizerCmd
	reason string
	reply  chan int
}

type snapshotCmd struct {
	baseVisualizerCmd
	reply chan []tracker.Entry
}

type frameCmd struct {
	baseVisualizerCmd
	reply chan Frame
}

type stopCmd struct {
	baseVisualizerCmd
}

// Visualizer is one tester session. Tracker mutations, resizes, clears and
// renders all happen on its actor goroutine in command order, so every
// applied event is rendered before the next one is looked at.
type Visualizer struct {
	id        uuid.UUID
	startedAt time.Time
	opts      Options
	clock     clockwork.Clock
	logger    *slog.Logger
	observer  Observer
	sink      FrameSink

	cmdCh    chan visualizerCmd
	done     chan struct{}
	stopOnce sync.Once

	// Owned by the actor goroutine.
	tracker  *tracker.Tracker
	pipeline *render.Pipeline
	canvas   *render.RasterCanvas
	pending  image.Point
	seq      uint64

	resize *coalesce.Debouncer
	shake  *shake.Detector
}

// NewVisualizer starts a session actor. sink and observer may be nil.
func NewVisualizer(id uuid.UUID, opts Options, clock clockwork.Clock, logger *slog.Logger, sink FrameSink, observer Observer) *Visualizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	resizeDelay := opts.ResizeDelay
	if resizeDelay <= 0 {
		resizeDelay = DefaultResizeDelay
	}

	v := &Visualizer{
		id:        id,
		startedAt: clock.Now(),
		opts:      opts,
		clock:     clock,
		logger:    logger,
		observer:  observerOrNop(observer),
		sink:      sink,
		cmdCh:     make(chan visualizerCmd, commandBuffer),
		done:      make(chan struct{}),
		tracker:   tracker.New(opts.Accept, logger),
		pipeline:  render.NewPipeline(opts.Render),
		canvas:    newSurface(clampSize(opts.Width, opts.Height)),
	}
	v.pending = v.canvas.Size()

	// Timer callbacks only post back to the actor.
	v.resize = coalesce.New(clock, resizeDelay, func() { _ = v.post(settleResizeCmd{}) })
	if opts.ManualClear {
		v.shake = shake.NewDetector(clock, opts.ShakeThreshold, opts.ShakeDelay, func() {
			_ = v.post(clearCmd{reason: ReasonShake})
		})
	}

	go v.run()
	return v
}

// ID returns the session id.
func (v *Visualizer) ID() uuid.UUID { return v.id }

// StartedAt returns when the session was created.
func (v *Visualizer) StartedAt() time.Time { return v.startedAt }

// Options returns the session options.
func (v *Visualizer) Options() Options { return v.opts }

// Done is closed once the actor goroutine has exited.
func (v *Visualizer) Done() <-chan struct{} { return v.done }

// Apply queues a pointer lifecycle event.
func (v *Visualizer) Apply(ev domain.Event) error {
	return v.post(applyCmd{event: ev})
}

// Resize records a surface size notification. The first size is applied
// at once; later ones are coalesced and applied after the resize delay.
func (v *Visualizer) Resize(width, height int) error {
	return v.post(resizeCmd{width: width, height: height})
}

// Motion feeds a device-motion sample to the shake detector and reports
// whether it counted as a shake. Without manual-clear mode it is a no-op.
func (v *Visualizer) Motion(m domain.Motion) bool {
	if v.shake == nil {
		return false
	}
	if v.shake.Sample(m) {
		v.logger.Debug("Shake detected", "state", v.shake.State().String())
		return true
	}
	return false
}

// MotionUnavailable disables shake-to-clear when the client has no
// motion sensor.
func (v *Visualizer) MotionUnavailable() {
	if v.shake == nil || !v.shake.Enabled() {
		return
	}
	v.shake.Disable()
	v.logger.Warn("Device motion is not supported on this device, shake-to-clear disabled")
}

// ShakeEnabled reports whether shake-to-clear is active.
func (v *Visualizer) ShakeEnabled() bool {
	return v.shake != nil && v.shake.Enabled()
}

// Clear drops every active contact, renders, and returns how many were dropped.
func (v *Visualizer) Clear(ctx context.Context, reason string) (int, error) {
	reply := make(chan int, 1)
	return request(ctx, v, "clear", clearCmd{reason: reason, reply: reply}, reply)
}

// Snapshot returns the active contacts in ordinal order.
func (v *Visualizer) Snapshot(ctx context.Context) ([]tracker.Entry, error) {
	reply := make(chan []tracker.Entry, 1)
	return request(ctx, v, "snapshot", snapshotCmd{reply: reply}, reply)
}

// Frame returns a copy of the current surface.
func (v *Visualizer) Frame(ctx context.Context) (Frame, error) {
	reply := make(chan Frame, 1)
	return request(ctx, v, "frame", frameCmd{reply: reply}, reply)
}

// Stop shuts the actor down and waits for it to exit or for the stop
// timeout. It is safe to call more than once.
func (v *Visualizer) Stop() {
	v.stopOnce.Do(func() {
		if err := v.post(stopCmd{}); err != nil {
			return
		}

		timeout := v.clock.NewTimer(stopTimeout)
		defer timeout.Stop()

		select {
		case <-v.done:
		case <-timeout.Chan():
			v.logger.Warn("Visualizer stop timeout exceeded", "timeout", stopTimeout)
		}
	})
}

func (v *Visualizer) post(cmd visualizerCmd) error {
	select {
	case <-v.done:
		return domain.ErrStopped
	default:
	}

	select {
	case v.cmdCh <- cmd:
		return nil
	case <-v.done:
		return domain.ErrStopped
	}
}

func request[T any](ctx context.Context, v *Visualizer, name string, cmd visualizerCmd, reply chan T) (T, error) {
	var zero T
	if err := v.post(cmd); err != nil {
		return zero, err
	}

	// Use timeout to prevent blocking forever if the actor is stuck
	timer := v.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case r := <-reply:
		return r, nil
	case <-v.done:
		select {
		case r := <-reply:
			return r, nil
		default:
			return zero, domain.ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.Chan():
		return zero, fmt.Errorf("%s command timed out after %v", name, commandTimeout)
	}
}

func (v *Visualizer) run() {
	defer close(v.done)
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("Visualizer panic recovered", "panic", r)
		}
	}()

	size := v.canvas.Size()
	v.logger.Info("Visualizer started", "width", size.X, "height", size.Y, "manual_clear", v.opts.ManualClear)
	if v.opts.ManualClear {
		v.logger.Info("Manual clear mode (shake) is enabled.")
	}
	v.render()

	for {
		cmd := <-v.cmdCh
		switch c := cmd.(type) {
		case applyCmd:
			v.handleApply(c.event)
		case resizeCmd:
			v.handleResize(c.width, c.height)
		case settleResizeCmd:
			v.handleSettleResize()
		case clearCmd:
			n := v.handleClear(c.reason)
			if c.reply != nil {
				c.reply <- n
			}
		case snapshotCmd:
			c.reply <- v.tracker.Snapshot()
		case frameCmd:
			c.reply <- Frame{Seq: v.seq, Image: v.canvas.Copy()}
		case stopCmd:
			v.logger.Info("Visualizer stopped", "active_contacts", v.tracker.Len(), "frames", v.seq)
			return
		default:
			v.logger.Warn("Visualizer received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (v *Visualizer) handleApply(ev domain.Event) {
	outcome := v.tracker.Apply(ev)

	name, kind := domain.EventName(ev), domain.KindUnknown
	if ev != nil {
		kind = ev.InputKind()
	}
	v.observer.EventProcessed(name, string(kind), outcome.String())

	switch outcome {
	case tracker.Filtered:
		v.logger.Debug("Pointer event filtered", "event", name, "kind", kind)
		return
	case tracker.Applied:
		v.logger.Log(context.Background(), v.eventLevel(), "Pointer event",
			"event", name,
			"contact_id", int64(ev.Contact()),
			"kind", kind,
			"active", v.tracker.Len(),
		)
	}

	v.render()
}

func (v *Visualizer) handleResize(width, height int) {
	v.pending = clampSize(width, height)

	if v.canvas.Size() == (image.Point{}) {
		v.applySize()
		v.render()
		return
	}
	v.resize.Trigger()
}

func (v *Visualizer) handleSettleResize() {
	v.applySize()
	v.render()
}

func (v *Visualizer) applySize() {
	if v.pending == v.canvas.Size() {
		return
	}
	v.canvas.Resize(v.pending.X, v.pending.Y)
	v.logger.Debug("Surface resized", "width", v.pending.X, "height", v.pending.Y)
}

func (v *Visualizer) handleClear(reason string) int {
	n := v.tracker.Clear()
	v.observer.ContactsCleared(reason, n)
	v.render()

	if reason == ReasonShake {
		v.logger.Info("Touches cleared by shake.", "dropped", n)
	} else {
		v.logger.Info("Touches cleared", "reason", reason, "dropped", n)
	}
	return n
}

func (v *Visualizer) render() {
	start := v.clock.Now()
	snapshot := v.tracker.Snapshot()

	if res := v.pipeline.Render(v.canvas, snapshot); res.Skipped {
		return
	}
	v.seq++
	v.observer.FrameRendered(v.clock.Since(start), len(snapshot))

	if v.sink != nil {
		v.sink(Frame{Seq: v.seq, Image: v.canvas.Copy()})
	}
}

func (v *Visualizer) eventLevel() slog.Level {
	if v.opts.LogEvents {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func clampSize(width, height int) image.Point {
	w := min(max(width, 0), MaxSurfaceSide)
	h := min(max(height, 0), MaxSurfaceSide)
	if w > 0 && w*h > MaxSurfacePixels {
		h = MaxSurfacePixels / w
	}
	return image.Pt(w, h)
}

func newSurface(size image.Point) *render.RasterCanvas {
	return render.NewRasterCanvas(size.X, size.Y)
}
