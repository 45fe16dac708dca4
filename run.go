package depthfx

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ClearColor fills the screen behind the effect. Zero means white.
	ClearColor Color
	// Headline, if set, is drawn over the effect at HeadlineOrigin.
	Headline       *Headline
	HeadlineOrigin Vec2
	// Resizable allows the window to be resized by the user.
	Resizable bool
}

// game adapts an Effect to ebiten.Game.
type game struct {
	effect   *Effect
	headline *Headline
	origin   Vec2
	clear    color.Color
}

func (g *game) Update() error {
	g.effect.Update()
	if g.headline != nil {
		g.headline.Update(tickDelta(ebiten.TPS(), ebiten.ActualTPS()))
	}
	if r := g.effect.testRunner; r != nil && r.Done() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.clear)
	g.effect.Draw(screen)
	if g.headline != nil {
		g.headline.Draw(screen, g.origin)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.effect.Layout(outsideWidth, outsideHeight)
}

// Run starts the effect and blocks running the Ebitengine game loop until the
// window closes or an attached test script finishes. The effect is disposed
// on return.
func Run(ctx context.Context, e *Effect, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("run: window size %dx%d must be positive", cfg.Width, cfg.Height)
	}
	if cfg.ClearColor == (Color{}) {
		cfg.ClearColor = Color{R: 1, G: 1, B: 1, A: 1}
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if !e.started {
		if err := e.Start(ctx); err != nil {
			return err
		}
	}
	defer e.Dispose()

	g := &game{
		effect:   e,
		headline: cfg.Headline,
		origin:   cfg.HeadlineOrigin,
		clear:    cfg.ClearColor.toRGBA(),
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
