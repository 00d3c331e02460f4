// Package v4l2 builds and services the GStreamer capture pipeline for
// local video devices.
package v4l2

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// PipelineConfig contains configuration for GStreamer pipeline creation
type PipelineConfig struct {
	Device    string
	Width     int
	Height    int
	TargetFPS float64
}

// PipelineElements holds references to GStreamer pipeline elements,
// needed for cleanup.
type PipelineElements struct {
	Pipeline   *gst.Pipeline
	AppSink    *app.Sink
	VideoRate  *gst.Element
	CapsFilter *gst.Element
	Source     *gst.Element
}

// CreatePipeline creates and configures a GStreamer pipeline for webcam capture
//
// Pipeline structure:
//
//	v4l2src → videoconvert → videoscale → videorate → capsfilter → appsink
//
// The capsfilter locks RGBA output at the target resolution and framerate;
// videorate only drops (never duplicates), so the scanner sees at most
// TargetFPS fresh frames per second.
//
// The pipeline is configured but NOT started (state remains NULL).
// Caller must call pipeline.SetState(gst.StatePlaying) to start.
func CreatePipeline(cfg PipelineConfig) (*PipelineElements, error) {
	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, fmt.Errorf("failed to create v4l2src: %w", err)
	}
	src.SetProperty("device", cfg.Device)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0) // 0 = auto-detect cores

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("failed to create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)     // Only drop frames, never duplicate
	videorate.SetProperty("skip-to-first", true) // Skip to first frame on start

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsStr := buildCaps(cfg.Width, cfg.Height, cfg.TargetFPS)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))
	slog.Debug("v4l2: caps locked", "caps", capsStr)

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)    // No sync with clock (real-time)
	appsink.SetProperty("max-buffers", 1) // Keep only latest frame
	appsink.SetProperty("drop", true)     // Drop old frames
	appsink.SetProperty("qos", true)      // Notify upstream of drops

	pipeline.AddMany(
		src,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	)

	if err := gst.ElementLinkMany(
		src,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	slog.Info("v4l2: capture pipeline created",
		"device", cfg.Device,
		"resolution", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"target_fps", cfg.TargetFPS,
	)

	return &PipelineElements{
		Pipeline:   pipeline,
		AppSink:    appsink,
		VideoRate:  videorate,
		CapsFilter: capsfilter,
		Source:     src,
	}, nil
}

// DestroyPipeline stops the pipeline and releases GStreamer resources.
func DestroyPipeline(elements *PipelineElements) error {
	if elements == nil || elements.Pipeline == nil {
		return nil
	}
	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("failed to set pipeline to NULL state: %w", err)
	}
	return nil
}

// buildCaps builds the caps string locking RGBA format, resolution and
// framerate. Fractional FPS is expressed as a reduced fraction
// (0.5 → 1/2) as GStreamer requires.
func buildCaps(width, height int, fps float64) string {
	num, den := fpsToFraction(fps)
	return fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d,framerate=%d/%d",
		width, height, num, den)
}

// fpsToFraction converts an FPS value to a reduced integer fraction.
func fpsToFraction(fps float64) (num, den int) {
	num = int(fps * 10)
	den = 10
	for d := gcd(num, den); d > 1; d = gcd(num, den) {
		num /= d
		den /= d
	}
	return num, den
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
