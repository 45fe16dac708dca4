package depthfx

import (
	"fmt"
	"sort"
)

// Op identifies the kind of a graph node. The set is closed; backends switch
// over it exhaustively.
type Op uint8

const (
	OpConst      Op = iota // literal scalar or vector
	OpUV                   // interpolated texture coordinate, origin bottom-left
	OpUniform              // late-bound per-frame value
	OpSample               // texture lookup, yields RGBA
	OpSwizzle              // component selection
	OpCompose              // vector built from scalars
	OpAdd                  // a + b
	OpSub                  // a - b
	OpMul                  // a * b
	OpDiv                  // a / b
	OpMod                  // a - b*floor(a/b)
	OpMax                  // component-wise max
	OpAbs                  // |a|
	OpOneMinus             // 1 - a
	OpLength               // Euclidean length
	OpClamp                // clamp(x, lo, hi)
	OpSmoothstep           // smoothstep(edge0, edge1, x)
	OpMix                  // a*(1-t) + b*t
	OpCellNoise            // per-cell hash of floor(p)
)

var opNames = [...]string{
	OpConst:      "const",
	OpUV:         "uv",
	OpUniform:    "uniform",
	OpSample:     "sample",
	OpSwizzle:    "swizzle",
	OpCompose:    "compose",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpDiv:        "div",
	OpMod:        "mod",
	OpMax:        "max",
	OpAbs:        "abs",
	OpOneMinus:   "oneMinus",
	OpLength:     "length",
	OpClamp:      "clamp",
	OpSmoothstep: "smoothstep",
	OpMix:        "mix",
	OpCellNoise:  "cellNoise",
}

// String returns the node kind name.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// NodeID indexes a node inside its Graph. Arguments always have a smaller
// NodeID than the node that consumes them.
type NodeID int32

const invalidNode NodeID = -1

// Node is one expression in a Graph.
type Node struct {
	Op    Op
	Width int // component count, 1..4
	Args  [3]NodeID
	NArgs int
	// Value holds the literal for OpConst.
	Value [4]float64
	// Slot is the uniform index for OpUniform and the texture index for OpSample.
	Slot int
	// Swizzle holds component indices for OpSwizzle (Width entries).
	Swizzle [4]uint8
}

// Arg returns the i-th argument.
func (n Node) Arg(i int) NodeID { return n.Args[i] }

// UniformDecl declares a late-bound uniform slot.
type UniformDecl struct {
	Name  string
	Width int
}

// TextureDecl declares a sampled texture slot.
type TextureDecl struct {
	Name string
}

// GraphError reports an invalid graph construction.
type GraphError struct {
	Op     Op
	Reason string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("shader graph: %s: %s", e.Op, e.Reason)
}

// Graph is an immutable DAG of per-pixel expressions with two outputs:
// an RGB color and a scalar alpha.
type Graph struct {
	nodes    []Node
	uniforms []UniformDecl
	textures []TextureDecl
	color    NodeID
	alpha    NodeID
	taps     map[string]NodeID
	live     []bool
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) Node { return g.nodes[id] }

// Color returns the RGB output node.
func (g *Graph) Color() NodeID { return g.color }

// Alpha returns the alpha output node.
func (g *Graph) Alpha() NodeID { return g.alpha }

// Live reports whether the node contributes to an output.
func (g *Graph) Live(id NodeID) bool { return g.live[id] }

// Uniforms returns the declared uniform slots in slot order.
func (g *Graph) Uniforms() []UniformDecl {
	return append([]UniformDecl(nil), g.uniforms...)
}

// Textures returns the declared texture slots in slot order.
func (g *Graph) Textures() []TextureDecl {
	return append([]TextureDecl(nil), g.textures...)
}

// UniformSlot returns the slot index of the named uniform.
func (g *Graph) UniformSlot(name string) (int, bool) {
	for i, u := range g.uniforms {
		if u.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Tap returns the node registered under name with GraphBuilder.Tap.
func (g *Graph) Tap(name string) (NodeID, bool) {
	id, ok := g.taps[name]
	return id, ok
}

// TapNames returns the sorted tap names.
func (g *Graph) TapNames() []string {
	names := make([]string, 0, len(g.taps))
	for name := range g.taps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// markLive flags every node reachable from the outputs. Because arguments
// precede consumers, one reverse sweep suffices.
func (g *Graph) markLive() {
	g.live = make([]bool, len(g.nodes))
	g.live[g.color] = true
	g.live[g.alpha] = true
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if !g.live[i] {
			continue
		}
		n := &g.nodes[i]
		for a := 0; a < n.NArgs; a++ {
			g.live[n.Args[a]] = true
		}
	}
}

// --- Builder ---

// Expr is a handle to a node under construction. The zero Expr is invalid.
type Expr struct {
	b  *GraphBuilder
	id NodeID
}

// ID returns the node id the expression refers to.
func (e Expr) ID() NodeID { return e.id }

// Width returns the component count, or 0 for an invalid expression.
func (e Expr) Width() int {
	if e.b == nil || e.id < 0 {
		return 0
	}
	return e.b.nodes[e.id].Width
}

// Texture is a handle to a declared texture slot.
type Texture struct {
	b    *GraphBuilder
	slot int
}

// GraphBuilder constructs a Graph. Errors are recorded on the first invalid
// operation and returned from Build; later operations become no-ops.
type GraphBuilder struct {
	nodes    []Node
	uniforms []UniformDecl
	textures []TextureDecl
	taps     map[string]NodeID
	uv       NodeID
	err      error
	built    bool
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		nodes: make([]Node, 0, 64),
		taps:  make(map[string]NodeID),
		uv:    invalidNode,
	}
}

// Err returns the first construction error, if any.
func (b *GraphBuilder) Err() error { return b.err }

func (b *GraphBuilder) fail(op Op, format string, args ...any) Expr {
	if b.err == nil {
		b.err = &GraphError{Op: op, Reason: fmt.Sprintf(format, args...)}
	}
	return Expr{b: b, id: invalidNode}
}

func (b *GraphBuilder) valid(op Op, es ...Expr) bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.fail(op, "builder already built")
		return false
	}
	for _, e := range es {
		if e.b != b {
			b.fail(op, "expression belongs to another builder")
			return false
		}
		if e.id < 0 {
			b.fail(op, "invalid expression")
			return false
		}
	}
	return true
}

func (b *GraphBuilder) push(n Node) Expr {
	b.nodes = append(b.nodes, n)
	return Expr{b: b, id: NodeID(len(b.nodes) - 1)}
}

func (b *GraphBuilder) constant(width int, v [4]float64) Expr {
	if !b.valid(OpConst) {
		return Expr{b: b, id: invalidNode}
	}
	return b.push(Node{Op: OpConst, Width: width, Value: v})
}

// Float returns a scalar constant.
func (b *GraphBuilder) Float(v float64) Expr {
	return b.constant(1, [4]float64{v})
}

// Vec2 returns a 2-component constant.
func (b *GraphBuilder) Vec2(x, y float64) Expr {
	return b.constant(2, [4]float64{x, y})
}

// Vec3 returns a 3-component constant.
func (b *GraphBuilder) Vec3(x, y, z float64) Expr {
	return b.constant(3, [4]float64{x, y, z})
}

// UV returns the interpolated texture coordinate. Repeated calls share one node.
func (b *GraphBuilder) UV() Expr {
	if !b.valid(OpUV) {
		return Expr{b: b, id: invalidNode}
	}
	if b.uv == invalidNode {
		b.uv = b.push(Node{Op: OpUV, Width: 2}).id
	}
	return Expr{b: b, id: b.uv}
}

// Uniform declares a late-bound slot of the given width. Redeclaring a name
// with the same width returns the existing slot.
func (b *GraphBuilder) Uniform(name string, width int) Expr {
	if !b.valid(OpUniform) {
		return Expr{b: b, id: invalidNode}
	}
	if !isIdent(name) {
		return b.fail(OpUniform, "invalid uniform name %q", name)
	}
	if width < 1 || width > 4 {
		return b.fail(OpUniform, "uniform %q width %d out of range", name, width)
	}
	for slot, u := range b.uniforms {
		if u.Name != name {
			continue
		}
		if u.Width != width {
			return b.fail(OpUniform, "uniform %q redeclared with width %d (was %d)", name, width, u.Width)
		}
		for i := range b.nodes {
			if b.nodes[i].Op == OpUniform && b.nodes[i].Slot == slot {
				return Expr{b: b, id: NodeID(i)}
			}
		}
	}
	b.uniforms = append(b.uniforms, UniformDecl{Name: name, Width: width})
	return b.push(Node{Op: OpUniform, Width: width, Slot: len(b.uniforms) - 1})
}

// Texture declares a texture slot. At most four textures may be declared.
func (b *GraphBuilder) Texture(name string) Texture {
	if !b.valid(OpSample) {
		return Texture{b: b, slot: -1}
	}
	if !isIdent(name) {
		b.fail(OpSample, "invalid texture name %q", name)
		return Texture{b: b, slot: -1}
	}
	if len(b.textures) == 4 {
		b.fail(OpSample, "too many textures")
		return Texture{b: b, slot: -1}
	}
	b.textures = append(b.textures, TextureDecl{Name: name})
	return Texture{b: b, slot: len(b.textures) - 1}
}

// Sample looks up tex at uv and yields straight-alpha RGBA.
func (b *GraphBuilder) Sample(tex Texture, uv Expr) Expr {
	if !b.valid(OpSample, uv) {
		return Expr{b: b, id: invalidNode}
	}
	if tex.b != b || tex.slot < 0 {
		return b.fail(OpSample, "invalid texture")
	}
	if uv.Width() != 2 {
		return b.fail(OpSample, "uv width %d, want 2", uv.Width())
	}
	return b.push(Node{Op: OpSample, Width: 4, Slot: tex.slot, Args: [3]NodeID{uv.id}, NArgs: 1})
}

// Vec2Of composes a 2-component vector from two scalars.
func (b *GraphBuilder) Vec2Of(x, y Expr) Expr {
	if !b.valid(OpCompose, x, y) {
		return Expr{b: b, id: invalidNode}
	}
	if x.Width() != 1 || y.Width() != 1 {
		return b.fail(OpCompose, "components must be scalars")
	}
	return b.push(Node{Op: OpCompose, Width: 2, Args: [3]NodeID{x.id, y.id}, NArgs: 2})
}

// broadcast returns the result width of a component-wise operation.
func broadcast(a, c int) (int, bool) {
	switch {
	case a == c:
		return a, true
	case a == 1:
		return c, true
	case c == 1:
		return a, true
	}
	return 0, false
}

func (b *GraphBuilder) binary(op Op, x, y Expr) Expr {
	if !b.valid(op, x, y) {
		return Expr{b: b, id: invalidNode}
	}
	w, ok := broadcast(x.Width(), y.Width())
	if !ok {
		return b.fail(op, "width mismatch %d vs %d", x.Width(), y.Width())
	}
	return b.push(Node{Op: op, Width: w, Args: [3]NodeID{x.id, y.id}, NArgs: 2})
}

func (b *GraphBuilder) unary(op Op, x Expr, width int) Expr {
	if !b.valid(op, x) {
		return Expr{b: b, id: invalidNode}
	}
	if width == 0 {
		width = x.Width()
	}
	return b.push(Node{Op: op, Width: width, Args: [3]NodeID{x.id}, NArgs: 1})
}

// Add returns e + o.
func (e Expr) Add(o Expr) Expr { return e.b.binary(OpAdd, e, o) }

// Sub returns e - o.
func (e Expr) Sub(o Expr) Expr { return e.b.binary(OpSub, e, o) }

// Mul returns e * o.
func (e Expr) Mul(o Expr) Expr { return e.b.binary(OpMul, e, o) }

// Div returns e / o.
func (e Expr) Div(o Expr) Expr { return e.b.binary(OpDiv, e, o) }

// Abs returns |e|.
func (e Expr) Abs() Expr { return e.b.unary(OpAbs, e, 0) }

// OneMinus returns 1 - e.
func (e Expr) OneMinus() Expr { return e.b.unary(OpOneMinus, e, 0) }

// Length returns the Euclidean length of e.
func (e Expr) Length() Expr { return e.b.unary(OpLength, e, 1) }

// Clamp limits e to [lo, hi].
func (e Expr) Clamp(lo, hi Expr) Expr {
	b := e.b
	if !b.valid(OpClamp, e, lo, hi) {
		return Expr{b: b, id: invalidNode}
	}
	if lo.Width() != 1 || hi.Width() != 1 {
		return b.fail(OpClamp, "bounds must be scalars")
	}
	return b.push(Node{Op: OpClamp, Width: e.Width(), Args: [3]NodeID{e.id, lo.id, hi.id}, NArgs: 3})
}

// Swizzle selects components by name, e.g. "x", "xy", "rgb".
func (e Expr) Swizzle(comps string) Expr {
	b := e.b
	if !b.valid(OpSwizzle, e) {
		return Expr{b: b, id: invalidNode}
	}
	if len(comps) == 0 || len(comps) > 4 {
		return b.fail(OpSwizzle, "bad swizzle %q", comps)
	}
	n := Node{Op: OpSwizzle, Width: len(comps), Args: [3]NodeID{e.id}, NArgs: 1}
	for i := 0; i < len(comps); i++ {
		idx := swizzleIndex(comps[i])
		if idx < 0 || idx >= e.Width() {
			return b.fail(OpSwizzle, "component %q out of range for width %d", comps[i], e.Width())
		}
		n.Swizzle[i] = uint8(idx)
	}
	return b.push(n)
}

// X returns the first component.
func (e Expr) X() Expr { return e.Swizzle("x") }

// Y returns the second component.
func (e Expr) Y() Expr { return e.Swizzle("y") }

// R returns the red channel.
func (e Expr) R() Expr { return e.Swizzle("r") }

// RGB returns the color channels.
func (e Expr) RGB() Expr { return e.Swizzle("rgb") }

func swizzleIndex(c byte) int {
	switch c {
	case 'x', 'r':
		return 0
	case 'y', 'g':
		return 1
	case 'z', 'b':
		return 2
	case 'w', 'a':
		return 3
	}
	return -1
}

// Mod returns x - y*floor(x/y).
func (b *GraphBuilder) Mod(x, y Expr) Expr { return b.binary(OpMod, x, y) }

// Max returns the component-wise maximum.
func (b *GraphBuilder) Max(x, y Expr) Expr { return b.binary(OpMax, x, y) }

// Smoothstep returns the cubic threshold of scalar x between scalar edges.
// Constant edges must differ.
func (b *GraphBuilder) Smoothstep(edge0, edge1, x Expr) Expr {
	if !b.valid(OpSmoothstep, edge0, edge1, x) {
		return Expr{b: b, id: invalidNode}
	}
	if edge0.Width() != 1 || edge1.Width() != 1 || x.Width() != 1 {
		return b.fail(OpSmoothstep, "arguments must be scalars")
	}
	e0, e1 := b.nodes[edge0.id], b.nodes[edge1.id]
	if e0.Op == OpConst && e1.Op == OpConst && e0.Value[0] == e1.Value[0] {
		return b.fail(OpSmoothstep, "edges are both %g", e0.Value[0])
	}
	return b.push(Node{Op: OpSmoothstep, Width: 1, Args: [3]NodeID{edge0.id, edge1.id, x.id}, NArgs: 3})
}

// Mix blends a toward c by t. t is a scalar or matches the operand width.
func (b *GraphBuilder) Mix(a, c, t Expr) Expr {
	if !b.valid(OpMix, a, c, t) {
		return Expr{b: b, id: invalidNode}
	}
	w, ok := broadcast(a.Width(), c.Width())
	if !ok {
		return b.fail(OpMix, "width mismatch %d vs %d", a.Width(), c.Width())
	}
	if t.Width() != 1 && t.Width() != w {
		return b.fail(OpMix, "weight width %d, want 1 or %d", t.Width(), w)
	}
	return b.push(Node{Op: OpMix, Width: w, Args: [3]NodeID{a.id, c.id, t.id}, NArgs: 3})
}

// CellNoise returns a per-cell pseudo-random scalar in [0, 1) for a vec2 p.
func (b *GraphBuilder) CellNoise(p Expr) Expr {
	if !b.valid(OpCellNoise, p) {
		return Expr{b: b, id: invalidNode}
	}
	if p.Width() != 2 {
		return b.fail(OpCellNoise, "input width %d, want 2", p.Width())
	}
	return b.push(Node{Op: OpCellNoise, Width: 1, Args: [3]NodeID{p.id}, NArgs: 1})
}

// Tap names an intermediate expression so it can be inspected on a built Graph.
func (b *GraphBuilder) Tap(name string, e Expr) Expr {
	if !b.valid(OpConst, e) {
		return e
	}
	b.taps[name] = e.id
	return e
}

// Build freezes the builder into a Graph with the given outputs. color must
// have 3 components and alpha 1.
func (b *GraphBuilder) Build(color, alpha Expr) (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.valid(OpConst, color, alpha) {
		return nil, b.err
	}
	if color.Width() != 3 {
		return nil, &GraphError{Op: b.nodes[color.id].Op, Reason: fmt.Sprintf("color output width %d, want 3", color.Width())}
	}
	if alpha.Width() != 1 {
		return nil, &GraphError{Op: b.nodes[alpha.id].Op, Reason: fmt.Sprintf("alpha output width %d, want 1", alpha.Width())}
	}
	b.built = true
	g := &Graph{
		nodes:    append([]Node(nil), b.nodes...),
		uniforms: append([]UniformDecl(nil), b.uniforms...),
		textures: append([]TextureDecl(nil), b.textures...),
		color:    color.id,
		alpha:    alpha.id,
		taps:     make(map[string]NodeID, len(b.taps)),
	}
	for k, v := range b.taps {
		g.taps[k] = v
	}
	g.markLive()
	return g, nil
}

// isIdent reports whether s is an ASCII identifier starting with a letter.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '_'):
		default:
			return false
		}
	}
	return true
}
