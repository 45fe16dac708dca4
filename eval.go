package depthfx

import (
	"fmt"
	"image"
	"math"
)

// Sampler returns straight-alpha RGBA for a texture coordinate with origin at
// the bottom-left. Coordinates outside [0, 1] return transparent black.
type Sampler interface {
	Sample(u, v float64) [4]float64
}

// Values holds the uniform slot contents for one Graph. It is the only state
// that changes between frames.
type Values struct {
	slots [][4]float64
}

// NewValues returns zeroed slots for every uniform declared by g.
func NewValues(g *Graph) *Values {
	return &Values{slots: make([][4]float64, len(g.uniforms))}
}

// SetFloat stores a scalar in slot.
func (v *Values) SetFloat(slot int, x float64) {
	v.slots[slot] = [4]float64{x}
}

// SetVec2 stores a 2-component value in slot.
func (v *Values) SetVec2(slot int, p Vec2) {
	v.slots[slot] = [4]float64{p.X, p.Y}
}

// Slot returns the raw contents of slot.
func (v *Values) Slot(slot int) [4]float64 {
	return v.slots[slot]
}

// Fragment is the output of one graph evaluation.
type Fragment struct {
	Color [3]float64
	Alpha float64
}

// Evaluator interprets a Graph on the CPU. It reuses an internal register
// file and is not safe for concurrent use.
type Evaluator struct {
	g        *Graph
	samplers []Sampler
	regs     [][4]float64
	last     NodeID
}

// NewEvaluator binds one sampler per texture declared by g, in slot order.
func NewEvaluator(g *Graph, samplers ...Sampler) (*Evaluator, error) {
	if len(samplers) != len(g.textures) {
		return nil, fmt.Errorf("evaluator: got %d samplers for %d textures", len(samplers), len(g.textures))
	}
	for i, s := range samplers {
		if s == nil {
			return nil, fmt.Errorf("evaluator: sampler for texture %q is nil", g.textures[i].Name)
		}
	}
	last := g.color
	if g.alpha > last {
		last = g.alpha
	}
	return &Evaluator{
		g:        g,
		samplers: samplers,
		regs:     make([][4]float64, len(g.nodes)),
		last:     last,
	}, nil
}

// Eval computes the color and alpha outputs at uv.
func (e *Evaluator) Eval(uv Vec2, vals *Values) Fragment {
	e.run(e.last, true, uv, vals)
	c := e.regs[e.g.color]
	return Fragment{
		Color: [3]float64{c[0], c[1], c[2]},
		Alpha: e.regs[e.g.alpha][0],
	}
}

// EvalNode computes an arbitrary node at uv, including nodes that do not
// feed an output.
func (e *Evaluator) EvalNode(id NodeID, uv Vec2, vals *Values) [4]float64 {
	e.run(id, false, uv, vals)
	return e.regs[id]
}

// EvalTap computes a named tap at uv and returns its first component.
func (e *Evaluator) EvalTap(name string, uv Vec2, vals *Values) (float64, error) {
	id, ok := e.g.Tap(name)
	if !ok {
		return 0, fmt.Errorf("evaluator: no tap %q", name)
	}
	return e.EvalNode(id, uv, vals)[0], nil
}

func (e *Evaluator) run(limit NodeID, liveOnly bool, uv Vec2, vals *Values) {
	nodes := e.g.nodes
	for i := NodeID(0); i <= limit; i++ {
		if liveOnly && !e.g.live[i] {
			continue
		}
		e.regs[i] = e.step(&nodes[i], uv, vals)
	}
}

// lane reads component i of r, broadcasting scalars.
func lane(r [4]float64, width, i int) float64 {
	if width == 1 {
		return r[0]
	}
	return r[i]
}

func (e *Evaluator) step(n *Node, uv Vec2, vals *Values) [4]float64 {
	var out [4]float64
	arg := func(i int) ([4]float64, int) {
		id := n.Args[i]
		return e.regs[id], e.g.nodes[id].Width
	}
	switch n.Op {
	case OpConst:
		return n.Value
	case OpUV:
		return [4]float64{uv.X, uv.Y}
	case OpUniform:
		if vals == nil {
			return out
		}
		return vals.slots[n.Slot]
	case OpSample:
		a, _ := arg(0)
		return e.samplers[n.Slot].Sample(a[0], a[1])
	case OpSwizzle:
		a, _ := arg(0)
		for i := 0; i < n.Width; i++ {
			out[i] = a[n.Swizzle[i]]
		}
	case OpCompose:
		a, _ := arg(0)
		b, _ := arg(1)
		out[0], out[1] = a[0], b[0]
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpMax:
		a, wa := arg(0)
		b, wb := arg(1)
		for i := 0; i < n.Width; i++ {
			x, y := lane(a, wa, i), lane(b, wb, i)
			switch n.Op {
			case OpAdd:
				out[i] = x + y
			case OpSub:
				out[i] = x - y
			case OpMul:
				out[i] = x * y
			case OpDiv:
				out[i] = x / y
			case OpMod:
				out[i] = Mod(x, y)
			case OpMax:
				out[i] = math.Max(x, y)
			}
		}
	case OpAbs:
		a, _ := arg(0)
		for i := 0; i < n.Width; i++ {
			out[i] = math.Abs(a[i])
		}
	case OpOneMinus:
		a, _ := arg(0)
		for i := 0; i < n.Width; i++ {
			out[i] = 1 - a[i]
		}
	case OpLength:
		a, wa := arg(0)
		var sum float64
		for i := 0; i < wa; i++ {
			sum += a[i] * a[i]
		}
		out[0] = math.Sqrt(sum)
	case OpClamp:
		a, _ := arg(0)
		lo, _ := arg(1)
		hi, _ := arg(2)
		for i := 0; i < n.Width; i++ {
			out[i] = Clamp(a[i], lo[0], hi[0])
		}
	case OpSmoothstep:
		e0, _ := arg(0)
		e1, _ := arg(1)
		x, _ := arg(2)
		out[0] = Smoothstep(e0[0], e1[0], x[0])
	case OpMix:
		a, wa := arg(0)
		b, wb := arg(1)
		t, wt := arg(2)
		for i := 0; i < n.Width; i++ {
			out[i] = Mix(lane(a, wa, i), lane(b, wb, i), lane(t, wt, i))
		}
	case OpCellNoise:
		a, _ := arg(0)
		out[0] = CellNoise(a[0], a[1])
	}
	return out
}

// RenderImage evaluates g at every pixel center of a w×h frame and returns a
// straight-alpha image. Colors above 1 are clamped.
func RenderImage(g *Graph, vals *Values, w, h int, samplers ...Sampler) (*image.NRGBA, error) {
	ev, err := NewEvaluator(g, samplers...)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		v := 1 - (float64(y)+0.5)/float64(h)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w)
			f := ev.Eval(Vec2{X: u, Y: v}, vals)
			off := img.PixOffset(x, y)
			img.Pix[off+0] = uint8(clamp01(f.Color[0])*255 + 0.5)
			img.Pix[off+1] = uint8(clamp01(f.Color[1])*255 + 0.5)
			img.Pix[off+2] = uint8(clamp01(f.Color[2])*255 + 0.5)
			img.Pix[off+3] = uint8(clamp01(f.Alpha)*255 + 0.5)
		}
	}
	return img, nil
}
