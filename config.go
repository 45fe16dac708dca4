package depthfx

import (
	"fmt"
	"time"
)

// Default tunables for the hero effect.
const (
	DefaultParallaxStrength = 0.01
	DefaultDotTiling        = 120.0
	DefaultBandWidth        = 0.02
	DefaultBaseWidth        = 300.0
	DefaultBaseHeight       = 300.0
	DefaultBreakpoint       = 5.0 // viewport width in scene units
	DefaultMobileScale      = 0.5
	DefaultDesktopScale     = 0.8
	DefaultProgressSpeed    = 0.5 // radians of sine phase per second
	DefaultCameraFOV        = 75.0
	DefaultCameraDistance   = 5.0
	DefaultFetchTimeout     = 30 * time.Second
)

// DefaultDotColor is the over-bright blue that dots blend toward. Values
// above 1 are intended to feed a downstream bloom pass.
var DefaultDotColor = [3]float64{0, 0, 10}

// GraphParams holds the constants baked into the hero shader graph.
type GraphParams struct {
	// ParallaxStrength scales the depth-weighted pointer offset in UV space.
	ParallaxStrength float64
	// DotTiling is the number of tiles per unit of aspect-corrected UV.
	DotTiling float64
	// BandWidth is the half-width of the traveling depth band.
	BandWidth float64
	// Aspect is baseWidth / baseHeight.
	Aspect float64
	// DotColor is the linear RGB color dots blend toward.
	DotColor [3]float64
}

// ScaleParams holds the viewport scaling policy.
type ScaleParams struct {
	BaseWidth, BaseHeight     float64
	Breakpoint                float64
	MobileScale, DesktopScale float64
}

// Config configures an Effect. Start from DefaultConfig and override fields.
type Config struct {
	// ColorSource and DepthSource are http(s) URLs or local file paths.
	ColorSource string
	DepthSource string

	ParallaxStrength float64
	DotTiling        float64
	BandWidth        float64
	DotColor         [3]float64

	BaseWidth    float64
	BaseHeight   float64
	Breakpoint   float64
	MobileScale  float64
	DesktopScale float64

	ProgressSpeed  float64
	CameraFOV      float64 // vertical field of view in degrees
	CameraDistance float64 // distance from camera to the quad plane

	FetchTimeout time.Duration

	// Debug enables per-frame timing logs and the FPS overlay.
	Debug bool
}

// DefaultConfig returns a Config populated with the default tunables and no
// image sources.
func DefaultConfig() Config {
	return Config{
		ParallaxStrength: DefaultParallaxStrength,
		DotTiling:        DefaultDotTiling,
		BandWidth:        DefaultBandWidth,
		DotColor:         DefaultDotColor,
		BaseWidth:        DefaultBaseWidth,
		BaseHeight:       DefaultBaseHeight,
		Breakpoint:       DefaultBreakpoint,
		MobileScale:      DefaultMobileScale,
		DesktopScale:     DefaultDesktopScale,
		ProgressSpeed:    DefaultProgressSpeed,
		CameraFOV:        DefaultCameraFOV,
		CameraDistance:   DefaultCameraDistance,
		FetchTimeout:     DefaultFetchTimeout,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.ColorSource == "":
		return fmt.Errorf("config: color source is empty")
	case c.DepthSource == "":
		return fmt.Errorf("config: depth source is empty")
	case c.BaseWidth <= 0 || c.BaseHeight <= 0:
		return fmt.Errorf("config: base resolution %gx%g must be positive", c.BaseWidth, c.BaseHeight)
	case c.DotTiling <= 0:
		return fmt.Errorf("config: dot tiling %g must be positive", c.DotTiling)
	case c.BandWidth <= 0:
		return fmt.Errorf("config: band width %g must be positive", c.BandWidth)
	case c.MobileScale <= 0 || c.DesktopScale <= 0:
		return fmt.Errorf("config: scales %g/%g must be positive", c.MobileScale, c.DesktopScale)
	case c.CameraFOV <= 0 || c.CameraFOV >= 180:
		return fmt.Errorf("config: camera fov %g out of range (0, 180)", c.CameraFOV)
	case c.CameraDistance <= 0:
		return fmt.Errorf("config: camera distance %g must be positive", c.CameraDistance)
	}
	return nil
}

// GraphParams returns the shader graph constants derived from the config.
func (c Config) GraphParams() GraphParams {
	return GraphParams{
		ParallaxStrength: c.ParallaxStrength,
		DotTiling:        c.DotTiling,
		BandWidth:        c.BandWidth,
		Aspect:           c.BaseWidth / c.BaseHeight,
		DotColor:         c.DotColor,
	}
}

// ScaleParams returns the viewport scaling policy derived from the config.
func (c Config) ScaleParams() ScaleParams {
	return ScaleParams{
		BaseWidth:    c.BaseWidth,
		BaseHeight:   c.BaseHeight,
		Breakpoint:   c.Breakpoint,
		MobileScale:  c.MobileScale,
		DesktopScale: c.DesktopScale,
	}
}

// DefaultGraphParams returns the graph constants of DefaultConfig.
func DefaultGraphParams() GraphParams {
	return DefaultConfig().GraphParams()
}
