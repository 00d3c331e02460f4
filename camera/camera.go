// Package camera provides local webcam frame acquisition using GStreamer,
// implementing the zbarcam.Source contract.
//
// # Quick Start
//
//	cam, err := camera.NewWebcam(camera.Config{
//	    Device:     "/dev/video0",
//	    Resolution: camera.Res480p,
//	    TargetFPS:  15,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cam.Stop()
//
//	frames, err := cam.Start(ctx)
//	if err != nil {
//	    log.Fatal(err) // device missing, permission denied, ...
//	}
//	for frame := range frames {
//	    // frame.Data contains raw RGBA bytes, frame.Width x frame.Height
//	}
//
// Frames are sent with a non-blocking pattern: when the consumer lags, new
// frames are dropped rather than queued, keeping the feed live.
package camera

import "time"

// Resolution represents supported capture resolutions
type Resolution int

const (
	// Res480p represents 640x480 resolution (VGA, the scanner default)
	Res480p Resolution = iota
	// Res720p represents 1280x720 resolution (HD)
	Res720p
	// Res1080p represents 1920x1080 resolution (Full HD)
	Res1080p
)

// Dimensions returns the width and height for the resolution
func (r Resolution) Dimensions() (width, height int) {
	switch r {
	case Res480p:
		return 640, 480
	case Res720p:
		return 1280, 720
	case Res1080p:
		return 1920, 1080
	default:
		// Safe default: 480p
		return 640, 480
	}
}

// String returns a human-readable string representation of the resolution
func (r Resolution) String() string {
	switch r {
	case Res480p:
		return "480p"
	case Res720p:
		return "720p"
	case Res1080p:
		return "1080p"
	default:
		return "480p"
	}
}

// Config contains configuration for webcam capture
type Config struct {
	// Device is the video device path (default "/dev/video0")
	Device string
	// Resolution is the target capture resolution
	Resolution Resolution
	// TargetFPS is the target frames per second (0.1 - 60.0)
	TargetFPS float64
}

// Stats contains current capture statistics
type Stats struct {
	// FrameCount is the total number of frames captured
	FrameCount uint64
	// FramesDropped is the total number of frames dropped (channel full)
	FramesDropped uint64
	// BytesRead is the total bytes read from the device
	BytesRead uint64
	// LastFrameAt is the timestamp of the most recent frame
	LastFrameAt time.Time
	// Device is the video device path
	Device string
	// Resolution is the capture resolution (e.g. "640x480")
	Resolution string
	// IsRunning indicates if capture is currently active
	IsRunning bool
}
