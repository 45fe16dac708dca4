package depthfx

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay displays FPS, TPS and the loop state in the top-left corner.
// The text is redrawn every ~0.5 seconds.
type fpsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
	text       string
	dirty      bool
}

func newFPSOverlay() *fpsOverlay {
	// 140x48 fits three lines of debug text.
	return &fpsOverlay{img: ebiten.NewImage(140, 48), dirty: true}
}

func (f *fpsOverlay) update(dt float64) {
	f.lastUpdate += max(dt, 0)
	if f.lastUpdate < 0.5 {
		return
	}
	f.lastUpdate = 0
	f.dirty = true
}

// setState records the loop state line shown under the rates.
func (f *fpsOverlay) setState(s LoopState) {
	line := "state: " + s.String()
	if line != f.text {
		f.text = line
		f.dirty = true
	}
}

func (f *fpsOverlay) draw(screen *ebiten.Image) {
	if f.dirty {
		f.dirty = false
		f.img.Clear()
		// Semi-transparent background for readability
		f.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n%s",
			ebiten.ActualFPS(), ebiten.ActualTPS(), f.text))
	}
	screen.DrawImage(f.img, nil)
}
