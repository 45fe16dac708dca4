package depthfx

import "math"

// Viewport is the visible size of the quad plane in scene units.
type Viewport struct {
	Width, Height float64
}

// Aspect returns Width / Height, or 0 for an empty viewport.
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 0
	}
	return v.Width / v.Height
}

// ViewportFromPixels derives the scene-unit viewport seen by a perspective
// camera with the given vertical field of view (degrees) at distance from the
// plane, for a surface of pxW×pxH pixels.
func ViewportFromPixels(pxW, pxH int, fovDeg, distance float64) Viewport {
	if pxW <= 0 || pxH <= 0 {
		return Viewport{}
	}
	h := 2 * distance * math.Tan(fovDeg*math.Pi/360)
	return Viewport{Width: h * float64(pxW) / float64(pxH), Height: h}
}

// Scaler applies the responsive quad sizing policy.
type Scaler struct {
	params ScaleParams
}

// NewScaler returns a Scaler for the given policy.
func NewScaler(p ScaleParams) Scaler {
	return Scaler{params: p}
}

// Scale returns MobileScale when the viewport is narrower than the
// breakpoint and DesktopScale otherwise.
func (s Scaler) Scale(v Viewport) float64 {
	if v.Width < s.params.Breakpoint {
		return s.params.MobileScale
	}
	return s.params.DesktopScale
}

// Cover returns the base resolution resized to cover the viewport while
// keeping its aspect ratio.
func (s Scaler) Cover(v Viewport) (w, h float64) {
	bw, bh := s.params.BaseWidth, s.params.BaseHeight
	var factor float64
	if v.Aspect() > bw/bh {
		factor = v.Width / bw
	} else {
		factor = v.Height / bh
	}
	return bw * factor, bh * factor
}

// QuadSize returns the quad size in scene units: Cover times Scale.
func (s Scaler) QuadSize(v Viewport) (w, h float64) {
	w, h = s.Cover(v)
	k := s.Scale(v)
	return w * k, h * k
}

// QuadRect returns the quad centered in canvas, in pixels.
func (s Scaler) QuadRect(v Viewport, canvas Rect) Rect {
	if v.Height == 0 {
		return Rect{}
	}
	w, h := s.QuadSize(v)
	ppu := canvas.Height / v.Height
	w *= ppu
	h *= ppu
	c := canvas.Center()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}
