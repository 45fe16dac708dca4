package depthfx

import "math"

// Progress returns the depth band center at elapsed seconds:
// sin(elapsed*speed)*0.5 + 0.5. The result is in [0, 1] with period 2π/speed.
func Progress(elapsed, speed float64) float64 {
	return math.Sin(elapsed*speed)*0.5 + 0.5
}

// PointerNDC maps a screen position to normalized device coordinates of the
// canvas rectangle: x from -1 (left) to 1 (right), y from -1 (bottom) to
// 1 (top). Positions outside the canvas map outside [-1, 1].
func PointerNDC(screenX, screenY float64, canvas Rect) Vec2 {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return Vec2{}
	}
	return Vec2{
		X: (screenX-canvas.X)/canvas.Width*2 - 1,
		Y: -((screenY-canvas.Y)/canvas.Height*2 - 1),
	}
}

// UniformDriver owns the hero uniforms. Update writes progress and the latest
// pointer once per frame; pointer moves between frames only record the
// latest position. There is no smoothing or decay.
type UniformDriver struct {
	speed    float64
	elapsed  float64
	latest   Vec2
	uniforms HeroUniforms
}

// NewUniformDriver returns a driver with the pointer at the origin.
func NewUniformDriver(speed float64) *UniformDriver {
	d := &UniformDriver{speed: speed}
	d.uniforms.Progress = Progress(0, speed)
	return d
}

// PointerMoved records a pointer position in NDC. The latest value wins.
func (d *UniformDriver) PointerMoved(ndc Vec2) {
	d.latest = ndc
}

// Update advances the clock by dt seconds and writes both uniforms. A
// negative dt leaves the clock where it is.
func (d *UniformDriver) Update(dt float64) {
	d.elapsed += max(dt, 0)
	d.uniforms.Progress = Progress(d.elapsed, d.speed)
	d.uniforms.Pointer = d.latest
}

// Elapsed returns the accumulated clock in seconds.
func (d *UniformDriver) Elapsed() float64 { return d.elapsed }

// Uniforms returns the values written by the last Update. The pointer is
// owned by the driver; callers must not modify it.
func (d *UniformDriver) Uniforms() *HeroUniforms { return &d.uniforms }
