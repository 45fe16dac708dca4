package depthfx

import (
	"context"
	"errors"
	"image/color"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const testDT = 1.0 / 60

// startTestEffect starts an Effect on local PNG files with a fake GPU upload.
func startTestEffect(t *testing.T, upload func(context.Context, *Material, TextureSet) (GPUContext, error)) *Effect {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ColorSource = writeTestPNG(t, dir, "color.png", 8, 8, color.NRGBA{200, 100, 50, 255})
	cfg.DepthSource = writeTestPNG(t, dir, "depth.png", 4, 4, color.NRGBA{128, 128, 128, 255})
	e, err := NewEffect(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e.pointer = newPointerTracker(&fakePointer{})
	e.upload = upload
	e.Resize(800, 600)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Dispose)
	return e
}

// tickUntil ticks e until cond holds or the deadline passes.
func tickUntil(t *testing.T, e *Effect, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached; state = %s, err = %v", e.State(), e.Err())
		}
		e.tick(testDT)
		time.Sleep(time.Millisecond)
	}
}

func TestNewEffectValidates(t *testing.T) {
	if _, err := NewEffect(DefaultConfig()); err == nil {
		t.Error("expected error for config without sources")
	}
}

func TestEffectBecomesVisible(t *testing.T) {
	gc := &fakeContext{}
	var uploaded TextureSet
	e := startTestEffect(t, func(ctx context.Context, m *Material, set TextureSet) (GPUContext, error) {
		uploaded = set
		return gc, nil
	})

	if e.Visible() {
		t.Fatal("visible before textures loaded")
	}
	tickUntil(t, e, e.Visible)

	if e.State() != StateRunning {
		t.Errorf("state = %s, want running", e.State())
	}
	if e.Err() != nil {
		t.Errorf("Err = %v", e.Err())
	}
	if e.Material() == nil {
		t.Fatal("material not built")
	}
	if !uploaded.Ready() {
		t.Error("upload received an incomplete texture set")
	}
	// The tick that moves the loop to running also runs its first frame.
	if !approxEqual(e.driver.Elapsed(), testDT, epsilon) {
		t.Errorf("elapsed = %v, want %v", e.driver.Elapsed(), testDT)
	}

	e.tick(testDT)
	want := Progress(2*testDT, DefaultProgressSpeed)
	if got := e.Uniforms().Progress; !approxEqual(got, want, epsilon) {
		t.Errorf("progress = %v, want %v", got, want)
	}
	if got := e.Material().uniforms["Progress"]; got != float32(want) {
		t.Errorf("material Progress = %v, want %v", got, float32(want))
	}

	e.Dispose()
	if gc.disposed.Load() != 1 {
		t.Errorf("context disposed %d times, want 1", gc.disposed.Load())
	}
	if e.Visible() {
		t.Error("visible after Dispose")
	}
	e.Dispose()
	if gc.disposed.Load() != 1 {
		t.Errorf("second Dispose released the context again")
	}
}

func TestEffectPointerReachesUniforms(t *testing.T) {
	e := startTestEffect(t, func(context.Context, *Material, TextureSet) (GPUContext, error) {
		return &fakeContext{}, nil
	})
	tickUntil(t, e, e.Visible)

	e.InjectPointerMove(800, 0)
	e.tick(testDT)
	if got := e.Uniforms().Pointer; !approxEqual(got.X, 1, epsilon) || !approxEqual(got.Y, 1, epsilon) {
		t.Errorf("pointer = %+v, want (1, 1)", got)
	}
	buf, ok := e.Material().uniforms["Pointer"].([]float32)
	if !ok || len(buf) != 2 || buf[0] != 1 || buf[1] != 1 {
		t.Errorf("material Pointer = %v, want [1 1]", e.Material().uniforms["Pointer"])
	}
}

func TestEffectLoadFailureStaysHidden(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColorSource = filepath.Join(t.TempDir(), "missing.png")
	cfg.DepthSource = cfg.ColorSource
	e, err := NewEffect(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e.pointer = newPointerTracker(&fakePointer{})
	e.upload = func(context.Context, *Material, TextureSet) (GPUContext, error) {
		t.Error("upload called for failed textures")
		return nil, nil
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Dispose()

	tickUntil(t, e, func() bool { return e.Err() != nil })
	for range 5 {
		e.tick(testDT)
	}

	var le *LoadError
	if !errors.As(e.Err(), &le) {
		t.Fatalf("Err = %v, want *LoadError", e.Err())
	}
	if e.Visible() {
		t.Error("visible after load failure")
	}
	if e.State() != StateUninitialized {
		t.Errorf("state = %s, want uninitialized", e.State())
	}
}

func TestEffectContextFailure(t *testing.T) {
	cause := errors.New("no adapter")
	e := startTestEffect(t, func(context.Context, *Material, TextureSet) (GPUContext, error) {
		return nil, cause
	})

	tickUntil(t, e, func() bool { return e.State() == StateFailed })
	for range 5 {
		e.tick(testDT)
	}

	var ce *ContextInitError
	if !errors.As(e.Err(), &ce) {
		t.Fatalf("Err = %v, want *ContextInitError", e.Err())
	}
	if !errors.Is(e.Err(), cause) {
		t.Error("Err does not wrap the initializer error")
	}
	if e.Visible() {
		t.Error("visible after context failure")
	}
	if e.driver.Elapsed() != 0 {
		t.Errorf("frames ran after failure; elapsed = %v", e.driver.Elapsed())
	}
}

func TestEffectDisposeDuringInit(t *testing.T) {
	release := make(chan struct{})
	gc := &fakeContext{}
	e := startTestEffect(t, func(ctx context.Context, m *Material, set TextureSet) (GPUContext, error) {
		<-release
		return gc, nil
	})

	tickUntil(t, e, func() bool { return e.State() == StateInitializing })
	loop := e.loop
	e.Dispose()
	close(release)
	waitSettled(t, loop)

	if got := gc.disposed.Load(); got != 1 {
		t.Errorf("late context disposed %d times, want 1", got)
	}
	if e.State() != StateDisposed {
		t.Errorf("state = %s, want disposed", e.State())
	}
	e.tick(testDT)
	if e.driver.Elapsed() != 0 {
		t.Error("tick ran after Dispose")
	}
}

func TestEffectStartErrors(t *testing.T) {
	e, _ := newTestEffect(t)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
	e.Dispose()

	e2, _ := newTestEffect(t)
	e2.Dispose()
	if err := e2.Start(context.Background()); err == nil {
		t.Error("Start after Dispose should fail")
	}
	if e2.State() != StateDisposed {
		t.Errorf("state = %s, want disposed", e2.State())
	}
}

func TestEffectResize(t *testing.T) {
	e, _ := newTestEffect(t)

	tests := []struct {
		name   string
		w, h   int
		mobile bool
	}{
		{"desktop", 1600, 900, false},
		{"phone", 390, 844, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, h := e.Layout(tt.w, tt.h); w != tt.w || h != tt.h {
				t.Fatalf("Layout = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
			canvas := e.Canvas()
			if canvas.Width != float64(tt.w) || canvas.Height != float64(tt.h) {
				t.Errorf("canvas = %+v, want full surface", canvas)
			}
			quad := e.Quad()
			c, qc := canvas.Center(), quad.Center()
			if !approxEqual(c.X, qc.X, 1e-6) || !approxEqual(c.Y, qc.Y, 1e-6) {
				t.Errorf("quad %+v not centered in canvas %+v", quad, canvas)
			}
			wantScale := DefaultDesktopScale
			if tt.mobile {
				wantScale = DefaultMobileScale
			}
			if got := e.scaler.Scale(e.Viewport()); got != wantScale {
				t.Errorf("scale = %v, want %v", got, wantScale)
			}
		})
	}
}

func TestTickDelta(t *testing.T) {
	tests := []struct {
		name   string
		tps    int
		actual float64
		want   float64
	}{
		{"fixed rate", 60, 58, 1.0 / 60},
		{"fixed rate ignores measured", 120, 0, 1.0 / 120},
		{"sync with fps uses measured rate", ebiten.SyncWithFPS, 144, 1.0 / 144},
		{"sync with fps before first measurement", ebiten.SyncWithFPS, 0, 0},
		{"zero tps", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tickDelta(tt.tps, tt.actual); !approxEqual(got, tt.want, epsilon) {
				t.Errorf("tickDelta(%d, %v) = %v, want %v", tt.tps, tt.actual, got, tt.want)
			}
		})
	}
}

func TestEffectClockSyncWithFPS(t *testing.T) {
	e := startTestEffect(t, func(context.Context, *Material, TextureSet) (GPUContext, error) {
		return &fakeContext{}, nil
	})
	tickUntil(t, e, e.Visible)

	prev := e.driver.Elapsed()
	prevProgress := e.Uniforms().Progress
	for i, actual := range []float64{0, 60, 60, 59.5, 61} {
		e.tick(tickDelta(ebiten.SyncWithFPS, actual))
		got := e.driver.Elapsed()
		if got < prev {
			t.Fatalf("tick %d: clock ran backwards from %v to %v", i, prev, got)
		}
		// At about 60 ticks per second the band moves by well under 0.01.
		if p := e.Uniforms().Progress; math.Abs(p-prevProgress) > 0.01 {
			t.Errorf("tick %d: progress jumped from %v to %v", i, prevProgress, p)
		}
		prev, prevProgress = got, e.Uniforms().Progress
	}
}
