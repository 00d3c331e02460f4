package v4l2

import "testing"

// TestBuildCaps verifies the caps string locks RGBA at the requested
// geometry and framerate.
func TestBuildCaps(t *testing.T) {
	cases := []struct {
		width, height int
		fps           float64
		want          string
	}{
		{640, 480, 15, "video/x-raw,format=RGBA,width=640,height=480,framerate=15/1"},
		{1280, 720, 30, "video/x-raw,format=RGBA,width=1280,height=720,framerate=30/1"},
		{640, 480, 0.5, "video/x-raw,format=RGBA,width=640,height=480,framerate=1/2"},
		{640, 480, 7.5, "video/x-raw,format=RGBA,width=640,height=480,framerate=15/2"},
	}

	for _, tc := range cases {
		got := buildCaps(tc.width, tc.height, tc.fps)
		if got != tc.want {
			t.Errorf("buildCaps(%d, %d, %v)=%q, want %q", tc.width, tc.height, tc.fps, got, tc.want)
		}
	}
}

// TestFpsToFraction verifies fraction reduction.
func TestFpsToFraction(t *testing.T) {
	cases := []struct {
		fps      float64
		num, den int
	}{
		{30, 30, 1},
		{1, 1, 1},
		{0.5, 1, 2},
		{0.1, 1, 10},
		{2.5, 5, 2},
	}

	for _, tc := range cases {
		num, den := fpsToFraction(tc.fps)
		if num != tc.num || den != tc.den {
			t.Errorf("fpsToFraction(%v)=%d/%d, want %d/%d", tc.fps, num, den, tc.num, tc.den)
		}
	}
}
