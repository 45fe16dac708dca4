package depthfx

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-move", "after-move"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	e, _ := newTestEffect(t)
	e.Screenshot("a")
	e.Screenshot("b")
	e.Screenshot("c")
	if len(e.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(e.screenshotQueue))
	}
	if e.screenshotQueue[0] != "a" || e.screenshotQueue[1] != "b" || e.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", e.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	e, _ := newTestEffect(t)
	if e.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", e.ScreenshotDir, "screenshots")
	}
}

func TestUnpremultiply(t *testing.T) {
	// Opaque, half alpha, transparent, and over-bright values that clamp.
	pixels := []byte{
		100, 50, 0, 255,
		64, 32, 0, 128,
		0, 0, 0, 0,
		200, 200, 200, 100,
	}
	img := unpremultiply(pixels, 4, 1)
	want := [][4]uint8{
		{100, 50, 0, 255},
		{127, 63, 0, 128},
		{0, 0, 0, 0},
		{255, 255, 255, 100},
	}
	for i, w := range want {
		got := [4]uint8(img.Pix[i*4 : i*4+4])
		if got != w {
			t.Errorf("pixel %d = %v, want %v", i, got, w)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img := unpremultiply([]byte{10, 20, 30, 255, 40, 50, 60, 255}, 2, 1)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("decoded bounds = %v, want 2x1", b)
	}
	r, g, b, _ := decoded.At(1, 0).RGBA()
	if r>>8 != 40 || g>>8 != 50 || b>>8 != 60 {
		t.Errorf("pixel (1,0) = %d,%d,%d, want 40,50,60", r>>8, g>>8, b>>8)
	}
}

func TestWritePNGBadPath(t *testing.T) {
	img := unpremultiply(make([]byte, 4), 1, 1)
	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "out.png"), img); err == nil {
		t.Error("expected error for missing directory")
	}
}
