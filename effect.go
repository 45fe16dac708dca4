package depthfx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Effect is the depth-parallax hero visual. It owns the texture loader, the
// compositing material, the uniform driver and the render loop, and exposes
// the Update/Draw/Layout hooks of an ebiten.Game.
//
// Errors never escape Update: a failed texture load keeps the effect hidden
// and a failed GPU context marks it unavailable. Err reports either.
type Effect struct {
	cfg    Config
	scaler Scaler
	driver *UniformDriver
	loader *TextureLoader

	ctx      context.Context
	hero     *HeroGraph
	material *Material
	loop     *RenderLoop

	pointer     *pointerTracker
	injectQueue []syntheticPointerEvent
	testRunner  *TestRunner

	// ScreenshotDir is the directory where queued screenshots are written.
	ScreenshotDir   string
	screenshotQueue []string

	width, height int
	viewport      Viewport
	canvas        Rect
	quad          Rect

	started  bool
	disposed bool
	loadErr  error
	buildErr error
	initErr  error

	debug bool
	fps   *fpsOverlay

	// upload creates the GPU context. Tests replace it.
	upload func(ctx context.Context, m *Material, set TextureSet) (GPUContext, error)
}

// NewEffect validates cfg and returns an Effect that has not started loading.
func NewEffect(cfg Config) (*Effect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Effect{
		cfg:           cfg,
		scaler:        NewScaler(cfg.ScaleParams()),
		driver:        NewUniformDriver(cfg.ProgressSpeed),
		loader:        NewTextureLoader(cfg.FetchTimeout),
		pointer:       newPointerTracker(ebitenInput{}),
		ScreenshotDir: "screenshots",
		debug:         cfg.Debug,
		upload:        uploadMaterial,
	}, nil
}

func uploadMaterial(ctx context.Context, m *Material, set TextureSet) (GPUContext, error) {
	res, err := m.Upload(ctx, set)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Start begins loading the textures. It returns immediately. ctx bounds
// texture fetches and GPU context creation.
func (e *Effect) Start(ctx context.Context) error {
	if e.disposed {
		return fmt.Errorf("effect: start after dispose")
	}
	if e.started {
		return fmt.Errorf("effect: already started")
	}
	e.started = true
	e.ctx = ctx
	e.loader.Start(ctx, e.cfg.ColorSource, e.cfg.DepthSource)
	return nil
}

// SetDebug toggles per-frame timing logs and the FPS overlay.
func (e *Effect) SetDebug(enabled bool) {
	e.debug = enabled
}

// SetTestRunner attaches a TestRunner. Its step runs at the start of every
// Update, before input is processed.
func (e *Effect) SetTestRunner(runner *TestRunner) {
	e.testRunner = runner
}

// Update advances the effect by one tick.
func (e *Effect) Update() {
	e.tick(tickDelta(ebiten.TPS(), ebiten.ActualTPS()))
}

// tickDelta returns the seconds covered by one Update. tps is the configured
// rate, which Ebitengine reports as ebiten.SyncWithFPS (negative) when ticks
// follow the display; the measured rate is used then, and zero until one is
// known.
func tickDelta(tps int, actualTPS float64) float64 {
	if tps > 0 {
		return 1 / float64(tps)
	}
	if actualTPS > 0 {
		return 1 / actualTPS
	}
	return 0
}

func (e *Effect) tick(dt float64) {
	if e.disposed {
		return
	}
	var stats debugStats
	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	e.processInput()

	if e.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	e.advance()
	ran := e.loop != nil && e.loop.Frame(dt)

	if e.debug {
		stats.frameTime = time.Since(t0)
		stats.ran = ran
		e.debugLog(stats)
	}
	if e.fps != nil {
		e.fps.update(dt)
	}
}

// advance moves the effect through loading, material construction and
// render loop start-up without blocking.
func (e *Effect) advance() {
	if !e.started {
		return
	}
	if e.loop == nil {
		if !e.loader.Ready() {
			if err := e.loader.Err(); err != nil && e.loadErr == nil {
				e.loadErr = err
				Logger().Warn("effect hidden: textures unavailable", "err", err)
			}
			return
		}
		if e.buildErr != nil {
			return
		}
		if err := e.build(); err != nil {
			e.buildErr = err
			Logger().Warn("effect unavailable: material build failed", "err", err)
			return
		}
	}
	if err := e.loop.Poll(); err != nil {
		e.initErr = err
		return
	}
}

// build constructs the graph and material and starts GPU initialization.
func (e *Effect) build() error {
	hero, err := BuildHeroGraph(e.cfg.GraphParams())
	if err != nil {
		return err
	}
	mat, err := NewMaterial(hero)
	if err != nil {
		return err
	}
	set := e.loader.Textures()
	upload := e.upload
	loop := NewRenderLoop(func(ctx context.Context) (GPUContext, error) {
		return upload(ctx, mat, set)
	}, e.frame)

	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := loop.Start(ctx); err != nil {
		return err
	}
	e.hero, e.material, e.loop = hero, mat, loop
	return nil
}

// frame is the render loop callback: the only per-frame mutation is the
// uniform write.
func (e *Effect) frame(_ GPUContext, dt float64) {
	e.driver.Update(dt)
	e.material.Update(e.driver.Uniforms())
}

// Draw composites the quad into screen once the effect is visible.
func (e *Effect) Draw(screen *ebiten.Image) {
	if e.Visible() {
		var t0 time.Time
		if e.debug {
			t0 = time.Now()
		}
		res, _ := e.loop.Context().(*GPUResources)
		e.material.Draw(screen, e.quad, res)
		if e.debug {
			Logger().Debug("draw", "quad", e.quad, "elapsed", time.Since(t0))
		}
	}
	if e.debug {
		if e.fps == nil {
			e.fps = newFPSOverlay()
		}
		e.fps.setState(e.State())
		e.fps.draw(screen)
	}
	e.flushScreenshots(screen)
}

// Layout implements the ebiten.Game layout hook and resizes the effect to
// the outside size.
func (e *Effect) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != e.width || outsideHeight != e.height {
		e.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Resize recomputes the viewport and the quad rectangle for a surface of w×h
// pixels. The canvas is the whole surface.
func (e *Effect) Resize(w, h int) {
	e.width, e.height = w, h
	e.canvas = Rect{Width: float64(w), Height: float64(h)}
	e.viewport = ViewportFromPixels(w, h, e.cfg.CameraFOV, e.cfg.CameraDistance)
	e.quad = e.scaler.QuadRect(e.viewport, e.canvas)
	Logger().Debug("effect resized",
		"px", fmt.Sprintf("%dx%d", w, h),
		"viewport", fmt.Sprintf("%.3fx%.3f", e.viewport.Width, e.viewport.Height),
		"scale", e.scaler.Scale(e.viewport))
}

// Dispose stops loading, tears down the render loop and releases GPU
// resources. It is safe to call more than once.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.loader.Stop()
	if e.loop != nil {
		e.loop.Dispose()
	}
	Logger().Debug("effect disposed")
}

// State returns the render loop state. Before the loop exists it is
// StateUninitialized, or StateDisposed after Dispose.
func (e *Effect) State() LoopState {
	if e.loop != nil {
		return e.loop.State()
	}
	if e.disposed {
		return StateDisposed
	}
	return StateUninitialized
}

// Visible reports whether the textures are loaded and the render loop is
// running.
func (e *Effect) Visible() bool {
	return !e.disposed && e.loop != nil && e.loader.Ready() && e.loop.State() == StateRunning
}

// Err returns the *ContextInitError, build error or *LoadError that made the
// effect unavailable, or nil.
func (e *Effect) Err() error {
	return errors.Join(e.initErr, e.buildErr, e.loadErr)
}

// Canvas returns the rectangle pointer positions are normalized against.
func (e *Effect) Canvas() Rect { return e.canvas }

// Quad returns the on-screen quad rectangle in pixels.
func (e *Effect) Quad() Rect { return e.quad }

// Viewport returns the current viewport in scene units.
func (e *Effect) Viewport() Viewport { return e.viewport }

// Uniforms returns the uniforms written by the last frame.
func (e *Effect) Uniforms() HeroUniforms { return *e.driver.Uniforms() }

// Material returns the compositing material, or nil before the textures are
// ready.
func (e *Effect) Material() *Material { return e.material }
