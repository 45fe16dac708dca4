package depthfx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// dialect captures the syntax differences between shading languages. The
// emitter lowers every live node to one local binding in graph order.
type dialect interface {
	vecType(width int) string
	// bind formats a local declaration.
	bind(name, expr string) string
	uniformRef(name string) string
	sample(tex TextureDecl, slot int, uv string) string
	cellNoise(p string) string
}

type emitter struct {
	g    *Graph
	d    dialect
	body bytes.Buffer
	refs []string
}

func newEmitter(g *Graph, d dialect) *emitter {
	return &emitter{g: g, d: d, refs: make([]string, len(g.nodes))}
}

// formatFloat renders a float literal that every dialect parses as a float
// (never an integer literal).
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

func (e *emitter) literal(n *Node) string {
	if n.Width == 1 {
		return formatFloat(n.Value[0])
	}
	parts := make([]string, n.Width)
	for i := range parts {
		parts[i] = formatFloat(n.Value[i])
	}
	return e.d.vecType(n.Width) + "(" + strings.Join(parts, ", ") + ")"
}

// arg returns the reference for argument i widened to width.
func (e *emitter) arg(n *Node, i, width int) string {
	id := n.Args[i]
	ref := e.refs[id]
	if w := e.g.nodes[id].Width; w == 1 && width > 1 {
		return e.d.vecType(width) + "(" + ref + ")"
	}
	return ref
}

func (e *emitter) line(s string) {
	e.body.WriteString("\t")
	e.body.WriteString(s)
	e.body.WriteString("\n")
}

// emit lowers all live nodes. uvRef names the interpolated coordinate.
func (e *emitter) emit(uvRef string) error {
	const swz = "xyzw"
	for i := range e.g.nodes {
		if !e.g.live[i] {
			continue
		}
		n := &e.g.nodes[i]
		name := fmt.Sprintf("n%d", i)
		var expr string
		switch n.Op {
		case OpConst:
			e.refs[i] = e.literal(n)
			continue
		case OpUV:
			e.refs[i] = uvRef
			continue
		case OpUniform:
			e.refs[i] = e.d.uniformRef(e.g.uniforms[n.Slot].Name)
			continue
		case OpSample:
			expr = e.d.sample(e.g.textures[n.Slot], n.Slot, e.arg(n, 0, 2))
		case OpSwizzle:
			if e.g.nodes[n.Args[0]].Width == 1 {
				expr = e.arg(n, 0, n.Width)
				break
			}
			var sb strings.Builder
			for c := 0; c < n.Width; c++ {
				sb.WriteByte(swz[n.Swizzle[c]])
			}
			expr = e.arg(n, 0, 0) + "." + sb.String()
		case OpCompose:
			expr = e.d.vecType(2) + "(" + e.arg(n, 0, 1) + ", " + e.arg(n, 1, 1) + ")"
		case OpAdd, OpSub, OpMul, OpDiv:
			sym := map[Op]string{OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/"}[n.Op]
			expr = e.arg(n, 0, n.Width) + " " + sym + " " + e.arg(n, 1, n.Width)
		case OpMod:
			x, y := e.arg(n, 0, n.Width), e.arg(n, 1, n.Width)
			expr = x + " - " + y + " * floor(" + x + " / " + y + ")"
		case OpMax:
			expr = "max(" + e.arg(n, 0, n.Width) + ", " + e.arg(n, 1, n.Width) + ")"
		case OpAbs:
			expr = "abs(" + e.arg(n, 0, 0) + ")"
		case OpOneMinus:
			one := "1.0"
			if n.Width > 1 {
				one = e.d.vecType(n.Width) + "(1.0)"
			}
			expr = one + " - " + e.arg(n, 0, 0)
		case OpLength:
			if e.g.nodes[n.Args[0]].Width == 1 {
				expr = "abs(" + e.arg(n, 0, 0) + ")"
			} else {
				expr = "length(" + e.arg(n, 0, 0) + ")"
			}
		case OpClamp:
			expr = "clamp(" + e.arg(n, 0, 0) + ", " + e.arg(n, 1, n.Width) + ", " + e.arg(n, 2, n.Width) + ")"
		case OpSmoothstep:
			e0, e1, x := e.arg(n, 0, 1), e.arg(n, 1, 1), e.arg(n, 2, 1)
			t := fmt.Sprintf("t%d", i)
			e.line(e.d.bind(t, "clamp(("+x+" - "+e0+") / ("+e1+" - "+e0+"), 0.0, 1.0)"))
			expr = t + " * " + t + " * (3.0 - 2.0 * " + t + ")"
		case OpMix:
			expr = "mix(" + e.arg(n, 0, n.Width) + ", " + e.arg(n, 1, n.Width) + ", " + e.arg(n, 2, n.Width) + ")"
		case OpCellNoise:
			expr = e.d.cellNoise(e.arg(n, 0, 0))
		default:
			return fmt.Errorf("codegen: unsupported node kind %s", n.Op)
		}
		e.line(e.d.bind(name, expr))
		e.refs[i] = name
	}
	return nil
}

// usesUV reports whether the UV node feeds an output.
func usesUV(g *Graph) bool {
	for i := range g.nodes {
		if g.nodes[i].Op == OpUV && g.live[i] {
			return true
		}
	}
	return false
}

// liveTextures reports which texture slots feed an output.
func liveTextures(g *Graph) []bool {
	used := make([]bool, len(g.textures))
	for i := range g.nodes {
		if g.nodes[i].Op == OpSample && g.live[i] {
			used[g.nodes[i].Slot] = true
		}
	}
	return used
}

func usesCellNoise(g *Graph) bool {
	for i := range g.nodes {
		if g.nodes[i].Op == OpCellNoise && g.live[i] {
			return true
		}
	}
	return false
}
