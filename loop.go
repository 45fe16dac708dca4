package depthfx

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// LoopState is the lifecycle stage of a RenderLoop.
type LoopState uint8

const (
	StateUninitialized LoopState = iota // Start not yet called
	StateInitializing                   // context creation in flight
	StateRunning                        // frame callback registered
	StateDisposed                       // torn down, terminal
	StateFailed                         // context creation failed, terminal
)

func (s LoopState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDisposed:
		return "disposed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("LoopState(%d)", uint8(s))
}

// ErrDisposed marks a context that finished initializing after its loop was
// disposed. It is absorbed by the loop and never returned from Poll.
var ErrDisposed = errors.New("render loop disposed")

// ContextInitError reports a failed GPU context creation. The effect is
// unavailable but the host keeps running.
type ContextInitError struct {
	Err error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("gpu context init: %v", e.Err)
}

func (e *ContextInitError) Unwrap() error { return e.Err }

// GPUContext is a set of GPU resources owned by a RenderLoop.
type GPUContext interface {
	Dispose()
}

// ContextInitializer creates a GPUContext. It runs on its own goroutine and
// should return promptly once ctx is cancelled.
type ContextInitializer func(ctx context.Context) (GPUContext, error)

// FrameFunc is invoked once per display frame while the loop is running.
type FrameFunc func(gc GPUContext, dt float64)

type initResult struct {
	gc  GPUContext
	err error
}

// RenderLoop owns asynchronous GPU context creation and the per-frame
// callback:
//
//	Uninitialized -> Initializing -> Running -> Disposed
//	                       \-> Failed
//
// Start, Poll, Frame and Dispose are called from the render thread. The
// initializer completes on another goroutine, so state is mutex guarded.
type RenderLoop struct {
	init  ContextInitializer
	frame FrameFunc

	mu      sync.Mutex
	state   LoopState
	gc      GPUContext
	result  *initResult
	cancel  context.CancelFunc
	settled chan struct{}
}

// NewRenderLoop returns a loop in StateUninitialized.
func NewRenderLoop(init ContextInitializer, frame FrameFunc) *RenderLoop {
	return &RenderLoop{
		init:    init,
		frame:   frame,
		settled: make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (l *RenderLoop) State() LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Settled is closed once the initializer has returned, whatever the outcome.
func (l *RenderLoop) Settled() <-chan struct{} { return l.settled }

// Start launches context creation and returns immediately.
func (l *RenderLoop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateUninitialized {
		s := l.state
		l.mu.Unlock()
		return fmt.Errorf("render loop: start in state %s", s)
	}
	ctx, cancel := context.WithCancel(ctx)
	l.state = StateInitializing
	l.cancel = cancel
	l.mu.Unlock()

	Logger().Debug("render loop initializing")
	go l.initialize(ctx)
	return nil
}

func (l *RenderLoop) initialize(ctx context.Context) {
	defer close(l.settled)
	gc, err := l.init(ctx)

	l.mu.Lock()
	if l.state == StateDisposed {
		l.mu.Unlock()
		if gc != nil {
			gc.Dispose()
		}
		Logger().Debug("render loop: discarded late context", "err", ErrDisposed)
		return
	}
	l.result = &initResult{gc: gc, err: err}
	l.mu.Unlock()
}

// Poll applies a finished initialization without blocking. It moves the loop
// to Running, or to Failed and returns a *ContextInitError exactly once.
func (l *RenderLoop) Poll() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateInitializing || l.result == nil {
		return nil
	}
	r := l.result
	l.result = nil
	l.cancel()
	if r.err != nil || r.gc == nil {
		if r.gc != nil {
			r.gc.Dispose()
		}
		err := r.err
		if err == nil {
			err = errors.New("initializer returned no context")
		}
		l.state = StateFailed
		Logger().Warn("render loop: context init failed", "err", err)
		return &ContextInitError{Err: err}
	}
	l.gc = r.gc
	l.state = StateRunning
	Logger().Debug("render loop running")
	return nil
}

// Frame invokes the frame callback if the loop is running and reports
// whether it did.
func (l *RenderLoop) Frame(dt float64) bool {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return false
	}
	gc := l.gc
	l.mu.Unlock()
	l.frame(gc, dt)
	return true
}

// Context returns the running GPU context, or nil.
func (l *RenderLoop) Context() GPUContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateRunning {
		return nil
	}
	return l.gc
}

// Dispose stops the frame callback and releases the context. A context still
// being created is released as soon as its initializer returns.
func (l *RenderLoop) Dispose() {
	l.mu.Lock()
	if l.state == StateDisposed {
		l.mu.Unlock()
		return
	}
	prev := l.state
	l.state = StateDisposed
	gc := l.gc
	l.gc = nil
	if l.result != nil && l.result.gc != nil && gc == nil {
		gc = l.result.gc
	}
	l.result = nil
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if gc != nil {
		gc.Dispose()
	}
	Logger().Debug("render loop disposed", "from", prev.String())
}
