package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	zbarcam "github.com/kivy-garden/garden.zbarcam"
	"github.com/kivy-garden/garden.zbarcam/camera/internal/v4l2"
)

// frameChanBuffer sizes the outgoing frame channel. One slot is enough
// for drop-not-queue semantics; a small buffer absorbs scheduling jitter
// without letting a backlog accumulate.
const frameChanBuffer = 2

// stopTimeout bounds how long Stop waits for capture goroutines.
const stopTimeout = 3 * time.Second

// Webcam implements zbarcam.Source using a GStreamer v4l2 pipeline.
//
// There is no reconnection logic: unlike a network stream, a local device
// that disappears mid-capture stays gone until the host application
// restarts the source.
type Webcam struct {
	// Configuration
	device    string
	width     int
	height    int
	targetFPS float64

	// GStreamer pipeline elements
	elements *v4l2.PipelineElements

	// Frame output
	frames chan zbarcam.Frame
	mu     sync.Mutex

	// Lifecycle
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopWait time.Duration // Stop's goroutine-drain bound, stopTimeout in production

	// Statistics (atomic for thread-safety)
	frameCount    uint64
	framesDropped uint64
	bytesRead     uint64
	lastFrameNano int64

	// Shutdown protection (atomic flag to prevent double-close panic)
	framesClosed atomic.Bool
}

// NewWebcam creates a webcam source with fail-fast validation.
//
// Returns an error if the FPS or resolution configuration is invalid.
// Device availability is checked at Start, not here: the device may
// legitimately appear between construction and start.
func NewWebcam(cfg Config) (*Webcam, error) {
	device := cfg.Device
	if device == "" {
		device = "/dev/video0"
	}

	if cfg.TargetFPS < 0.1 || cfg.TargetFPS > 60 {
		return nil, fmt.Errorf(
			"camera: invalid FPS %.2f (must be 0.1-60)",
			cfg.TargetFPS,
		)
	}

	width, height := cfg.Resolution.Dimensions()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("camera: invalid resolution %v", cfg.Resolution)
	}

	w := &Webcam{
		device:    device,
		width:     width,
		height:    height,
		targetFPS: cfg.TargetFPS,
		frames:    make(chan zbarcam.Frame, frameChanBuffer),
		stopWait:  stopTimeout,
	}

	slog.Info("camera: webcam source created",
		"device", device,
		"resolution", fmt.Sprintf("%dx%d", width, height),
		"target_fps", cfg.TargetFPS,
	)

	return w, nil
}

// Start initializes capture and returns a read-only channel of frames.
//
// This method:
//  1. Creates the GStreamer pipeline
//  2. Registers the appsink sample callback
//  3. Sets the pipeline to PLAYING
//  4. Launches the bus monitor goroutine
//  5. Returns the frame channel immediately (non-blocking)
//
// Frames start arriving asynchronously once the pipeline reaches PLAYING.
// A failure here (device missing, permission denied, pipeline negotiation)
// is terminal for the caller to handle.
func (w *Webcam) Start(ctx context.Context) (<-chan zbarcam.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil, fmt.Errorf("camera: capture already started")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	slog.Info("camera: starting capture",
		"device", w.device,
		"resolution", fmt.Sprintf("%dx%d", w.width, w.height),
		"target_fps", w.targetFPS,
	)

	elements, err := v4l2.CreatePipeline(v4l2.PipelineConfig{
		Device:    w.device,
		Width:     w.width,
		Height:    w.height,
		TargetFPS: w.targetFPS,
	})
	if err != nil {
		w.cancel = nil
		return nil, fmt.Errorf("camera: failed to create pipeline: %w", err)
	}
	w.elements = elements

	callbackCtx := &v4l2.CallbackContext{
		FrameChan:     w.frames,
		FrameCounter:  &w.frameCount,
		BytesRead:     &w.bytesRead,
		FramesDropped: &w.framesDropped,
		LastFrameNano: &w.lastFrameNano,
		Width:         w.width,
		Height:        w.height,
	}

	w.elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return v4l2.OnNewSample(sink, callbackCtx)
		},
	})

	if err := w.elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		_ = v4l2.DestroyPipeline(w.elements)
		w.elements = nil
		w.cancel = nil
		return nil, fmt.Errorf("camera: failed to start pipeline: %w", err)
	}

	// Monitor the pipeline bus for errors and EOS. A bus error on a local
	// device ends the capture; there is nothing to reconnect to.
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.monitorBus()
	}()

	return w.frames, nil
}

// Stop gracefully shuts down capture.
//
// Safe to call multiple times (idempotent). If called when capture is not
// running, returns nil immediately.
func (w *Webcam) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		slog.Debug("camera: capture not started, nothing to stop")
		return nil
	}

	slog.Info("camera: stopping capture")

	w.cancel()

	// Wait for goroutines with timeout
	clean := waitTimeout(&w.wg, w.stopWait)
	if clean {
		slog.Debug("camera: goroutines stopped cleanly")
	} else {
		slog.Warn("camera: stop timeout exceeded, some goroutines may still be running")
	}

	if w.elements != nil {
		if err := v4l2.DestroyPipeline(w.elements); err != nil {
			slog.Error("camera: failed to destroy pipeline", "error", err)
			clean = false
		}
		w.elements = nil
	}

	// Close the frame channel only on a clean shutdown: a straggling
	// capture callback sending on a closed channel would panic. On the
	// unclean path the channel is abandoned open instead; callback sends
	// are non-blocking and fall through to the drop counter, and the
	// consumer exits via its own context.
	if clean && w.framesClosed.CompareAndSwap(false, true) {
		close(w.frames)
		slog.Debug("camera: frame channel closed")
	}

	slog.Info("camera: capture stopped",
		"frames_captured", atomic.LoadUint64(&w.frameCount),
		"frames_dropped", atomic.LoadUint64(&w.framesDropped),
	)

	// Reset state for potential restart
	w.cancel = nil
	w.ctx = nil
	w.frames = make(chan zbarcam.Frame, frameChanBuffer)
	w.framesClosed.Store(false)

	return nil
}

// Stats returns current capture statistics.
// Thread-safe; values are read atomically and may be slightly stale
// relative to each other.
func (w *Webcam) Stats() Stats {
	w.mu.Lock()
	running := w.cancel != nil
	w.mu.Unlock()

	var lastFrameAt time.Time
	if nano := atomic.LoadInt64(&w.lastFrameNano); nano != 0 {
		lastFrameAt = time.Unix(0, nano)
	}

	return Stats{
		FrameCount:    atomic.LoadUint64(&w.frameCount),
		FramesDropped: atomic.LoadUint64(&w.framesDropped),
		BytesRead:     atomic.LoadUint64(&w.bytesRead),
		LastFrameAt:   lastFrameAt,
		Device:        w.device,
		Resolution:    fmt.Sprintf("%dx%d", w.width, w.height),
		IsRunning:     running,
	}
}

// waitTimeout waits for wg up to d, reporting whether it drained in time.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

// monitorBus polls the pipeline bus until cancellation, logging errors
// and end-of-stream.
func (w *Webcam) monitorBus() {
	bus := w.elements.Pipeline.GetPipelineBus()

	for {
		select {
		case <-w.ctx.Done():
			slog.Debug("camera: context cancelled, stopping bus monitor")
			return

		default:
			// Poll with a short timeout for responsive shutdown
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("camera: end of stream received",
					"device", w.device,
					"frames_captured", atomic.LoadUint64(&w.frameCount),
				)
				return

			case gst.MessageError:
				gerr := msg.ParseError()
				slog.Error("camera: pipeline error",
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
					"device", w.device,
					"frames_captured", atomic.LoadUint64(&w.frameCount),
				)
				return
			}
		}
	}
}
