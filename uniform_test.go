package depthfx

import (
	"math"
	"testing"
)

func TestProgressRangeAndPeriod(t *testing.T) {
	const speed = DefaultProgressSpeed
	period := 2 * math.Pi / speed
	for i := 0; i < 500; i++ {
		tt := float64(i) * 0.37
		p := Progress(tt, speed)
		if p < 0 || p > 1 {
			t.Fatalf("Progress(%g) = %g out of [0, 1]", tt, p)
		}
		if q := Progress(tt+period, speed); !approxEqual(p, q, 1e-9) {
			t.Fatalf("Progress(%g) = %g, Progress(t+2π/speed) = %g", tt, p, q)
		}
		if q := Progress(tt+4*math.Pi/speed, speed); !approxEqual(p, q, 1e-9) {
			t.Fatalf("Progress(%g) = %g, Progress(t+4π/speed) = %g", tt, p, q)
		}
	}
}

func TestProgressKnownValues(t *testing.T) {
	tests := []struct {
		t, want float64
	}{
		{0, 0.5},
		{math.Pi, 1},     // sin(π/2)
		{3 * math.Pi, 0}, // sin(3π/2)
	}
	for _, tt := range tests {
		if got := Progress(tt.t, 0.5); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("Progress(%g) = %g, want %g", tt.t, got, tt.want)
		}
	}
}

func TestPointerNDC(t *testing.T) {
	canvas := Rect{X: 100, Y: 50, Width: 200, Height: 100}
	tests := []struct {
		x, y float64
		want Vec2
	}{
		{100, 50, Vec2{X: -1, Y: 1}},
		{300, 150, Vec2{X: 1, Y: -1}},
		{200, 100, Vec2{X: 0, Y: 0}},
		{250, 75, Vec2{X: 0.5, Y: 0.5}},
		{400, 50, Vec2{X: 2, Y: 1}},
	}
	for _, tt := range tests {
		got := PointerNDC(tt.x, tt.y, canvas)
		if !approxEqual(got.X, tt.want.X, epsilon) || !approxEqual(got.Y, tt.want.Y, epsilon) {
			t.Errorf("PointerNDC(%g, %g) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if got := PointerNDC(10, 10, Rect{}); got != (Vec2{}) {
		t.Errorf("empty canvas = %v, want origin", got)
	}
}

func TestUniformDriverDefaults(t *testing.T) {
	d := NewUniformDriver(DefaultProgressSpeed)
	u := d.Uniforms()
	if u.Pointer != (Vec2{}) {
		t.Errorf("initial pointer = %v, want origin", u.Pointer)
	}
	if u.Progress != 0.5 {
		t.Errorf("initial progress = %g, want 0.5", u.Progress)
	}
}

func TestUniformDriverLatestPointerWins(t *testing.T) {
	d := NewUniformDriver(DefaultProgressSpeed)
	d.PointerMoved(Vec2{X: 0.1, Y: 0.2})
	d.PointerMoved(Vec2{X: -0.5, Y: 0.9})
	if d.Uniforms().Pointer != (Vec2{}) {
		t.Error("pointer should not change before Update")
	}
	d.Update(0.5)
	if got := d.Uniforms().Pointer; got != (Vec2{X: -0.5, Y: 0.9}) {
		t.Errorf("pointer = %v, want latest move", got)
	}
	// No decay toward the origin without new moves.
	d.Update(1)
	if got := d.Uniforms().Pointer; got != (Vec2{X: -0.5, Y: 0.9}) {
		t.Errorf("pointer decayed to %v", got)
	}
}

func TestUniformDriverClock(t *testing.T) {
	d := NewUniformDriver(0.5)
	for i := 0; i < 60; i++ {
		d.Update(1.0 / 60)
	}
	if !approxEqual(d.Elapsed(), 1, 1e-9) {
		t.Errorf("elapsed = %g, want 1", d.Elapsed())
	}
	if want := Progress(d.Elapsed(), 0.5); d.Uniforms().Progress != want {
		t.Errorf("progress = %g, want %g", d.Uniforms().Progress, want)
	}
}

func TestUniformDriverNegativeDelta(t *testing.T) {
	d := NewUniformDriver(0.5)
	d.Update(0.5)
	for range 4 {
		d.Update(1.0 / float64(-1))
		if d.Elapsed() != 0.5 {
			t.Fatalf("elapsed = %g after a negative delta, want 0.5", d.Elapsed())
		}
	}
	if want := Progress(0.5, 0.5); d.Uniforms().Progress != want {
		t.Errorf("progress = %g, want %g", d.Uniforms().Progress, want)
	}
}
