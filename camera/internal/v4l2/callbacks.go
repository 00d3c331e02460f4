package v4l2

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	zbarcam "github.com/kivy-garden/garden.zbarcam"
)

// CallbackContext holds state needed by GStreamer callbacks
type CallbackContext struct {
	FrameChan     chan<- zbarcam.Frame
	FrameCounter  *uint64 // Atomic counter for sequence numbers
	BytesRead     *uint64 // Atomic counter for bytes read
	FramesDropped *uint64 // Atomic counter for dropped frames (channel full)
	LastFrameNano *int64  // Atomic unix-nano of the latest frame
	Width         int
	Height        int
}

// OnNewSample is called by GStreamer when a new frame is available
//
// This callback:
//  1. Pulls the sample from the appsink
//  2. Maps the buffer to read pixel data
//  3. Copies data (GStreamer will reuse the buffer)
//  4. Creates a Frame struct with metadata
//  5. Sends frame to channel (non-blocking - drops if full)
//
// Returns gst.FlowOK to continue processing. A single corrupted frame
// must never terminate the stream, so degraded samples are skipped with
// a warning rather than returning an error flow.
func OnNewSample(sink *app.Sink, ctx *CallbackContext) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("v4l2: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("v4l2: failed to get buffer from sample, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("v4l2: empty buffer received")
		return gst.FlowOK
	}

	// Copy frame data (GStreamer will reuse the buffer)
	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	seq := atomic.AddUint64(ctx.FrameCounter, 1)
	atomic.AddUint64(ctx.BytesRead, uint64(len(frameData)))

	now := time.Now()
	atomic.StoreInt64(ctx.LastFrameNano, now.UnixNano())

	frame := zbarcam.Frame{
		Seq:       seq,
		Timestamp: now,
		Width:     ctx.Width,
		Height:    ctx.Height,
		Format:    zbarcam.FormatRGBA32, // capsfilter locks RGBA
		Data:      frameData,
		TraceID:   uuid.New().String(),
	}

	// Send frame (non-blocking - drop if channel full)
	select {
	case ctx.FrameChan <- frame:
		slog.Debug("v4l2: frame sent",
			"seq", frame.Seq,
			"size_bytes", len(frameData),
			"trace_id", frame.TraceID,
		)
	default:
		atomic.AddUint64(ctx.FramesDropped, 1)
		slog.Debug("v4l2: dropping frame, channel full",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}

	return gst.FlowOK
}
