package depthfx

// syntheticPointerEvent is a queued pointer move in screen coordinates,
// matching what an automated client sees in screenshots.
type syntheticPointerEvent struct {
	screenX, screenY float64
}

// InjectPointerMove queues a pointer move at the given screen coordinates.
// One event is consumed per Update, and while events are queued real cursor
// and touch input is ignored.
func (e *Effect) InjectPointerMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{screenX: x, screenY: y})
}

// InjectPointerPath queues moves from (fromX, fromY) to (toX, toY) linearly
// interpolated over the given number of frames. Minimum frames is 1.
func (e *Effect) InjectPointerPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	if frames == 1 {
		e.InjectPointerMove(toX, toY)
		return
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		e.InjectPointerMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// processInjectedInput pops one event from the inject queue and feeds it to
// the driver. Returns true if an event was consumed. The pointer tracker is
// not updated, so a real cursor that stays put does not undo the injection.
func (e *Effect) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	e.pointerMoved(evt.screenX, evt.screenY)
	return true
}

// processInput handles injected, touch and cursor input for one tick.
func (e *Effect) processInput() {
	if e.processInjectedInput() {
		return
	}
	if e.pointer == nil || e.pointer.src == nil {
		return
	}
	if x, y, moved := e.pointer.poll(); moved {
		e.pointerMoved(x, y)
	}
}

func (e *Effect) pointerMoved(x, y float64) {
	e.driver.PointerMoved(PointerNDC(x, y, e.canvas))
}
