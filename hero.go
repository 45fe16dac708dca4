package depthfx

// Slot names used by the hero graph. Uniform names are exported Kage globals,
// so they start with an upper-case letter.
const (
	UniformProgress = "Progress"
	UniformPointer  = "Pointer"
	TextureColor    = "Color"
	TextureDepth    = "Depth"
)

// Hero graph tap names.
const (
	TapDepth         = "depth"
	TapParallaxColor = "parallaxColor"
	TapBrightness    = "brightness"
	TapDots          = "dots"
	TapFlow          = "flow"
	TapHasDepth      = "hasDepth"
	TapDotIntensity  = "dotIntensity"
	TapObjectAlpha   = "objectAlpha"
	TapDotAlpha      = "dotAlpha"
)

// Fixed thresholds of the hero composite.
const (
	dotRadiusOuter  = 0.5
	dotRadiusInner  = 0.49
	hasDepthEdge    = 0.01
	objectAlphaLow  = 0.05
	objectAlphaHigh = 0.1
	dotAlphaLow     = 0.01
	dotAlphaHigh    = 0.1
)

// HeroUniforms is the per-frame state the Uniform Driver writes.
type HeroUniforms struct {
	// Progress is the depth band center in [0, 1].
	Progress float64
	// Pointer is in normalized device coordinates, y up.
	Pointer Vec2
}

// HeroGraph is the compositing graph for a color + depth pair.
type HeroGraph struct {
	*Graph
	progressSlot int
	pointerSlot  int
}

// Bind copies u into the graph's uniform slots.
func (h *HeroGraph) Bind(u *HeroUniforms, v *Values) {
	v.SetFloat(h.progressSlot, u.Progress)
	v.SetVec2(h.pointerSlot, u.Pointer)
}

// BuildHeroGraph constructs the depth-parallax dot composite:
//
//	d            = depth(uv).r
//	color        = color(uv + d*pointer*strength)
//	tUv          = (uv.x*aspect, uv.y) * tiling
//	dots         = smoothstep(0.5, 0.49, |mod(tUv, 2) - 1|) * cellNoise(tUv/2)
//	flow         = 1 - smoothstep(0, band, |d - progress|)
//	hasDepth     = smoothstep(0, 0.01, d)
//	dotIntensity = clamp(dots*flow*hasDepth, 0, 1)
//	rgb          = mix(color.rgb, dotColor, dotIntensity)
//	alpha        = max(smoothstep(0.05, 0.1, d), smoothstep(0.01, 0.1, dotIntensity))
//
// hasDepth keeps dots off the empty background when progress is near zero.
func BuildHeroGraph(p GraphParams) (*HeroGraph, error) {
	b := NewGraphBuilder()

	pointer := b.Uniform(UniformPointer, 2)
	progress := b.Uniform(UniformProgress, 1)
	colorTex := b.Texture(TextureColor)
	depthTex := b.Texture(TextureDepth)

	uv := b.UV()
	d := b.Tap(TapDepth, b.Sample(depthTex, uv).R())

	offset := d.Mul(pointer).Mul(b.Float(p.ParallaxStrength))
	color := b.Tap(TapParallaxColor, b.Sample(colorTex, uv.Add(offset)))

	tUv := b.Vec2Of(uv.X().Mul(b.Float(p.Aspect)), uv.Y())
	scaled := tUv.Mul(b.Vec2(p.DotTiling, p.DotTiling))
	tiled := b.Mod(scaled, b.Float(2)).Sub(b.Float(1))

	brightness := b.Tap(TapBrightness, b.CellNoise(scaled.Div(b.Float(2))))
	dots := b.Tap(TapDots, b.Smoothstep(b.Float(dotRadiusOuter), b.Float(dotRadiusInner), tiled.Length()).Mul(brightness))

	flow := b.Tap(TapFlow, b.Smoothstep(b.Float(0), b.Float(p.BandWidth), d.Sub(progress).Abs()).OneMinus())
	hasDepth := b.Tap(TapHasDepth, b.Smoothstep(b.Float(0), b.Float(hasDepthEdge), d))
	dotIntensity := b.Tap(TapDotIntensity, dots.Mul(flow).Mul(hasDepth).Clamp(b.Float(0), b.Float(1)))

	dotColor := b.Vec3(p.DotColor[0], p.DotColor[1], p.DotColor[2])
	finalColor := b.Mix(color.RGB(), dotColor, dotIntensity)

	objectAlpha := b.Tap(TapObjectAlpha, b.Smoothstep(b.Float(objectAlphaLow), b.Float(objectAlphaHigh), d))
	dotAlpha := b.Tap(TapDotAlpha, b.Smoothstep(b.Float(dotAlphaLow), b.Float(dotAlphaHigh), dotIntensity))
	finalAlpha := b.Max(objectAlpha, dotAlpha)

	g, err := b.Build(finalColor, finalAlpha)
	if err != nil {
		return nil, err
	}
	progressSlot, _ := g.UniformSlot(UniformProgress)
	pointerSlot, _ := g.UniformSlot(UniformPointer)
	return &HeroGraph{Graph: g, progressSlot: progressSlot, pointerSlot: pointerSlot}, nil
}
