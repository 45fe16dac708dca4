package depthfx

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// Material binds the hero graph to a single textured quad with fixed render
// state: transparent, no depth writes, standard alpha blending.
type Material struct {
	graph  *HeroGraph
	source []byte
	values *Values

	// Kage uniforms. Vector slots keep persistent float32 buffers so the map
	// entries never need to be reallocated per frame.
	uniforms map[string]any
	vecBufs  [][]float32

	shaderOp ebiten.DrawTrianglesShaderOptions
	verts    [4]ebiten.Vertex
	inds     [6]uint32
}

// NewMaterial generates the Kage program for g. No GPU work happens until
// Upload.
func NewMaterial(g *HeroGraph) (*Material, error) {
	src, err := GenerateKage(g.Graph)
	if err != nil {
		return nil, fmt.Errorf("material: %w", err)
	}
	m := &Material{
		graph:    g,
		source:   src,
		values:   NewValues(g.Graph),
		uniforms: make(map[string]any, len(g.uniforms)),
		vecBufs:  make([][]float32, len(g.uniforms)),
		inds:     [6]uint32{0, 1, 2, 1, 3, 2},
	}
	for i, u := range g.uniforms {
		if u.Width > 1 {
			m.vecBufs[i] = make([]float32, u.Width)
			m.uniforms[u.Name] = m.vecBufs[i]
		} else {
			m.uniforms[u.Name] = float32(0)
		}
	}
	for i := range m.verts {
		m.verts[i].ColorR, m.verts[i].ColorG, m.verts[i].ColorB, m.verts[i].ColorA = 1, 1, 1, 1
	}
	m.shaderOp.Blend = m.Blend().EbitenBlend()
	return m, nil
}

// Transparent reports that the quad is alpha blended.
func (m *Material) Transparent() bool { return true }

// DepthWrite reports whether the quad writes depth. It never does: the effect
// is a single full-screen quad and depth writes would z-fight with it.
func (m *Material) DepthWrite() bool { return false }

// Blend returns the compositing mode of the quad.
func (m *Material) Blend() BlendMode { return BlendNormal }

// Graph returns the compositing graph.
func (m *Material) Graph() *HeroGraph { return m.graph }

// Source returns the generated Kage program.
func (m *Material) Source() []byte { return m.source }

// Values returns the uniform slots last written by Update.
func (m *Material) Values() *Values { return m.values }

// Update copies the frame's uniforms into the graph slots and the Kage
// uniform map. It must run before the frame's Draw.
func (m *Material) Update(u *HeroUniforms) {
	m.graph.Bind(u, m.values)
	for i, decl := range m.graph.uniforms {
		v := m.values.Slot(i)
		if decl.Width == 1 {
			// Scalar float32 boxing is unavoidable with Ebitengine's uniform API.
			m.uniforms[decl.Name] = float32(v[0])
			continue
		}
		buf := m.vecBufs[i]
		for c := range buf {
			buf[c] = float32(v[c])
		}
	}
}

// GPUResources holds the compiled shader and uploaded textures for one
// Material. It is the GPU context managed by a RenderLoop.
type GPUResources struct {
	shader *ebiten.Shader
	color  *ebiten.Image
	depth  *ebiten.Image
}

// Upload compiles the Kage program and uploads the textures. The depth map is
// resampled to the color map's size because all shader sources must share
// one size. ctx is checked between steps so a cancelled effect stops early.
func (m *Material) Upload(ctx context.Context, set TextureSet) (*GPUResources, error) {
	if !set.Ready() {
		return nil, errors.New("upload: texture set is not ready")
	}
	depth := set.Depth
	if depth.Bounds().Size() != set.Color.Bounds().Size() {
		resized := image.NewNRGBA(image.Rect(0, 0, set.Color.Bounds().Dx(), set.Color.Bounds().Dy()))
		xdraw.BiLinear.Scale(resized, resized.Bounds(), depth, depth.Bounds(), xdraw.Src, nil)
		depth = resized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shader, err := ebiten.NewShader(m.source)
	if err != nil {
		return nil, fmt.Errorf("compile hero shader: %w", err)
	}
	res := &GPUResources{shader: shader}
	if err := ctx.Err(); err != nil {
		res.Dispose()
		return nil, err
	}
	res.color = ebiten.NewImageFromImage(set.Color)
	res.depth = ebiten.NewImageFromImage(depth)
	return res, nil
}

// Dispose releases the shader and textures. It is safe to call more than once.
func (r *GPUResources) Dispose() {
	if r.shader != nil {
		r.shader.Deallocate()
		r.shader = nil
	}
	if r.color != nil {
		r.color.Deallocate()
		r.color = nil
	}
	if r.depth != nil {
		r.depth.Deallocate()
		r.depth = nil
	}
}

// setQuad writes the quad corners in destination pixels and the full source
// image in texels.
func (m *Material) setQuad(quad Rect, texW, texH float32) {
	x0, y0 := float32(quad.X), float32(quad.Y)
	x1, y1 := float32(quad.X+quad.Width), float32(quad.Y+quad.Height)
	corners := [4][4]float32{
		{x0, y0, 0, 0},
		{x1, y0, texW, 0},
		{x0, y1, 0, texH},
		{x1, y1, texW, texH},
	}
	for i, c := range corners {
		v := &m.verts[i]
		v.DstX, v.DstY, v.SrcX, v.SrcY = c[0], c[1], c[2], c[3]
	}
}

// Draw renders the quad into dst using res.
func (m *Material) Draw(dst *ebiten.Image, quad Rect, res *GPUResources) {
	if res == nil || res.shader == nil || quad.Width <= 0 || quad.Height <= 0 {
		return
	}
	b := res.color.Bounds()
	m.setQuad(quad, float32(b.Dx()), float32(b.Dy()))
	m.shaderOp.Images[0] = res.color
	m.shaderOp.Images[1] = res.depth
	m.shaderOp.Uniforms = m.uniforms
	dst.DrawTrianglesShader32(m.verts[:], m.inds[:], res.shader, &m.shaderOp)
}
