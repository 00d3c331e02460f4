package camera

import (
	"sync"
	"testing"
	"time"

	zbarcam "github.com/kivy-garden/garden.zbarcam"
)

// TestNewWebcam_Validation verifies fail-fast construction: bad FPS is
// rejected, an empty device defaults to /dev/video0.
func TestNewWebcam_Validation(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Device: "/dev/video1", Resolution: Res480p, TargetFPS: 15}, false},
		{"default device", Config{Resolution: Res720p, TargetFPS: 2}, false},
		{"fps too low", Config{TargetFPS: 0.05}, true},
		{"fps too high", Config{TargetFPS: 120}, true},
		{"fps zero", Config{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := NewWebcam(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Error("NewWebcam accepted invalid config")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewWebcam failed: %v", err)
			}
			if tc.cfg.Device == "" && w.device != "/dev/video0" {
				t.Errorf("device=%q, want default /dev/video0", w.device)
			}
		})
	}
}

// TestWebcam_Stop_Idempotent verifies that Stop() can be called multiple
// times safely on a non-started source (no pipeline, no panic).
func TestWebcam_Stop_Idempotent(t *testing.T) {
	w, err := NewWebcam(Config{Resolution: Res480p, TargetFPS: 15})
	if err != nil {
		t.Fatalf("NewWebcam failed: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() on non-started source failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() on non-started source failed: %v", err)
	}

	t.Log("✅ Double Stop() on non-started source successful (no panic)")
}

// TestWebcam_Stop_TimeoutKeepsChannelOpen verifies the unclean-shutdown
// path: when capture goroutines fail to drain within the stop bound, the
// frame channel must stay open so a straggling callback send cannot panic.
func TestWebcam_Stop_TimeoutKeepsChannelOpen(t *testing.T) {
	w, err := NewWebcam(Config{Resolution: Res480p, TargetFPS: 15})
	if err != nil {
		t.Fatalf("NewWebcam failed: %v", err)
	}
	w.stopWait = 20 * time.Millisecond
	w.cancel = func() {}

	// A capture goroutine that outlives Stop's wait.
	release := make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		<-release
	}()
	defer close(release)

	old := w.frames
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	select {
	case _, ok := <-old:
		if !ok {
			t.Fatal("frame channel closed while a capture goroutine was still running")
		}
		t.Fatal("unexpected frame on idle channel")
	default:
	}

	// The straggler's non-blocking send must not panic.
	select {
	case old <- zbarcam.Frame{}:
	default:
	}

	t.Log("✅ Timed-out Stop abandons the channel open instead of closing it")
}

// TestWaitTimeout verifies the bounded WaitGroup drain helper.
func TestWaitTimeout(t *testing.T) {
	var done sync.WaitGroup
	if !waitTimeout(&done, 10*time.Millisecond) {
		t.Error("empty WaitGroup reported as timed out")
	}

	var held sync.WaitGroup
	held.Add(1)
	if waitTimeout(&held, 10*time.Millisecond) {
		t.Error("held WaitGroup reported as drained")
	}
	held.Done()
}

// TestWebcam_Stats_NotRunning verifies the stats snapshot on an idle
// source.
func TestWebcam_Stats_NotRunning(t *testing.T) {
	w, err := NewWebcam(Config{Resolution: Res720p, TargetFPS: 10})
	if err != nil {
		t.Fatalf("NewWebcam failed: %v", err)
	}

	stats := w.Stats()
	if stats.IsRunning {
		t.Error("IsRunning=true before Start")
	}
	if stats.FrameCount != 0 || stats.FramesDropped != 0 {
		t.Errorf("counters non-zero before Start: %+v", stats)
	}
	if stats.Resolution != "1280x720" {
		t.Errorf("Resolution=%q, want 1280x720", stats.Resolution)
	}
}

// TestResolutionDimensions verifies the preset table and the safe
// default for out-of-range values.
func TestResolutionDimensions(t *testing.T) {
	cases := []struct {
		res  Resolution
		w, h int
		str  string
	}{
		{Res480p, 640, 480, "480p"},
		{Res720p, 1280, 720, "720p"},
		{Res1080p, 1920, 1080, "1080p"},
		{Resolution(42), 640, 480, "480p"},
	}

	for _, tc := range cases {
		w, h := tc.res.Dimensions()
		if w != tc.w || h != tc.h {
			t.Errorf("%v: dimensions %dx%d, want %dx%d", tc.res, w, h, tc.w, tc.h)
		}
		if tc.res.String() != tc.str {
			t.Errorf("%v: String()=%q, want %q", tc.res, tc.res.String(), tc.str)
		}
	}
}
