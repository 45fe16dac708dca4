package depthfx

import "github.com/hajimehoshi/ebiten/v2"

// pointerSource abstracts the host input API so the tracker can be driven by
// tests without a running game loop.
type pointerSource interface {
	CursorPosition() (x, y int)
	AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID
	TouchPosition(id ebiten.TouchID) (x, y int)
}

// ebitenInput reads the live Ebitengine input state.
type ebitenInput struct{}

func (ebitenInput) CursorPosition() (int, int) { return ebiten.CursorPosition() }

func (ebitenInput) AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID {
	return ebiten.AppendTouchIDs(ids)
}

func (ebitenInput) TouchPosition(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }

// pointerTracker turns polled cursor and touch state into pointer-move
// events. Only changes are reported. The first active touch takes priority
// over the cursor.
type pointerTracker struct {
	src      pointerSource
	touchIDs []ebiten.TouchID

	lastX, lastY float64
	seen         bool
}

func newPointerTracker(src pointerSource) *pointerTracker {
	return &pointerTracker{src: src}
}

// poll returns the current pointer position in screen pixels and whether it
// differs from the previous poll.
func (p *pointerTracker) poll() (x, y float64, moved bool) {
	p.touchIDs = p.src.AppendTouchIDs(p.touchIDs[:0])
	if len(p.touchIDs) > 0 {
		tx, ty := p.src.TouchPosition(p.touchIDs[0])
		x, y = float64(tx), float64(ty)
	} else {
		cx, cy := p.src.CursorPosition()
		x, y = float64(cx), float64(cy)
	}
	return x, y, p.record(x, y)
}

// record stores (x, y) as the latest position and reports whether it moved.
// The first sample is only a baseline: a cursor that never moved leaves the
// pointer at the origin.
func (p *pointerTracker) record(x, y float64) bool {
	if !p.seen {
		p.lastX, p.lastY = x, y
		p.seen = true
		return false
	}
	if x == p.lastX && y == p.lastY {
		return false
	}
	p.lastX, p.lastY = x, y
	return true
}
