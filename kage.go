package depthfx

import (
	"bytes"
	"fmt"
)

// kageDialect emits Kage for Ebitengine. Textures bind to imageSrcN in slot
// order and are sampled in pixel units. Ebitengine hands shaders
// premultiplied texels, so samples are un-premultiplied to match the
// straight-alpha contract of Sampler.
type kageDialect struct{}

func (kageDialect) vecType(width int) string {
	if width == 1 {
		return "float"
	}
	return fmt.Sprintf("vec%d", width)
}

func (kageDialect) bind(name, expr string) string { return name + " := " + expr }

func (kageDialect) uniformRef(name string) string { return name }

func (kageDialect) sample(tex TextureDecl, _ int, uv string) string {
	return "sample" + tex.Name + "(" + uv + ")"
}

func (kageDialect) cellNoise(p string) string { return "cellNoise(" + p + ")" }

// GenerateKage returns Kage source evaluating g for one quad. The fragment
// output is premultiplied, as Ebitengine expects.
func GenerateKage(g *Graph) ([]byte, error) {
	em := newEmitter(g, kageDialect{})
	if err := em.emit("uv"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("//kage:unit pixels\n\npackage main\n\n")
	for _, u := range g.uniforms {
		fmt.Fprintf(&buf, "var %s %s\n", u.Name, kageDialect{}.vecType(u.Width))
	}
	if len(g.uniforms) > 0 {
		buf.WriteString("\n")
	}

	if usesCellNoise(g) {
		fmt.Fprintf(&buf, `func cellNoise(p vec2) float {
	c := floor(p)
	return fract(sin(dot(c, vec2(%s, %s))) * %s)
}

`, formatFloat(cellHashX), formatFloat(cellHashY), formatFloat(cellHashScale))
	}

	for slot, used := range liveTextures(g) {
		if !used {
			continue
		}
		fmt.Fprintf(&buf, `func sample%[1]s(uv vec2) vec4 {
	c := imageSrc%[2]dAt(vec2(uv.x, 1-uv.y)*imageSrc0Size() + imageSrc%[2]dOrigin())
	if c.a > 0 {
		return vec4(c.rgb/c.a, c.a)
	}
	return c
}

`, g.textures[slot].Name, slot)
	}

	buf.WriteString("func Fragment(dst vec4, src vec2, color vec4) vec4 {\n")
	if usesUV(g) {
		buf.WriteString("\tt := (src - imageSrc0Origin()) / imageSrc0Size()\n")
		buf.WriteString("\tuv := vec2(t.x, 1-t.y)\n")
	}
	buf.Write(em.body.Bytes())
	rgb, a := em.refs[g.color], em.refs[g.alpha]
	fmt.Fprintf(&buf, "\treturn vec4(%s*%s, %s)\n}\n", rgb, a, a)
	return buf.Bytes(), nil
}
