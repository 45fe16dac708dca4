package depthfx

import (
	"bytes"
	"fmt"

	"github.com/gogpu/naga"
)

// wgslDialect emits WGSL. Bindings in group 0: 0 = uniform block (when the
// graph declares uniforms), 1 = sampler, 2+N = texture slot N.
type wgslDialect struct{}

func (wgslDialect) vecType(width int) string {
	if width == 1 {
		return "f32"
	}
	return fmt.Sprintf("vec%d<f32>", width)
}

func (wgslDialect) bind(name, expr string) string { return "let " + name + " = " + expr + ";" }

func (wgslDialect) uniformRef(name string) string { return "u." + name }

func (wgslDialect) sample(tex TextureDecl, _ int, uv string) string {
	return "textureSample(t" + tex.Name + ", texSampler, vec2<f32>(" + uv + ".x, 1.0 - " + uv + ".y))"
}

func (wgslDialect) cellNoise(p string) string { return "cell_noise(" + p + ")" }

const wgslVertex = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vertexIndex: u32) -> VertexOutput {
    var positions = array<vec2<f32>, 6>(
        vec2<f32>(-1.0,  1.0),
        vec2<f32>(-1.0, -1.0),
        vec2<f32>( 1.0, -1.0),
        vec2<f32>(-1.0,  1.0),
        vec2<f32>( 1.0, -1.0),
        vec2<f32>( 1.0,  1.0)
    );
    let p = positions[vertexIndex];
    var output: VertexOutput;
    output.position = vec4<f32>(p, 0.0, 1.0);
    output.uv = (p + vec2<f32>(1.0, 1.0)) * 0.5;
    return output;
}

`

// GenerateWGSL returns a WGSL module with a full-viewport quad vertex stage
// and a fragment stage evaluating g. The fragment output is straight alpha,
// intended for src-alpha / one-minus-src-alpha blending with depth writes
// disabled.
func GenerateWGSL(g *Graph) (string, error) {
	em := newEmitter(g, wgslDialect{})
	if err := em.emit("input.uv"); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if len(g.uniforms) > 0 {
		buf.WriteString("struct Uniforms {\n")
		for _, u := range g.uniforms {
			fmt.Fprintf(&buf, "    %s: %s,\n", u.Name, wgslDialect{}.vecType(u.Width))
		}
		buf.WriteString("}\n\n@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	}
	if len(g.textures) > 0 {
		buf.WriteString("@group(0) @binding(1) var texSampler: sampler;\n")
		for slot, t := range g.textures {
			fmt.Fprintf(&buf, "@group(0) @binding(%d) var t%s: texture_2d<f32>;\n", 2+slot, t.Name)
		}
	}
	buf.WriteString("\n")

	if usesCellNoise(g) {
		fmt.Fprintf(&buf, `fn cell_noise(p: vec2<f32>) -> f32 {
    let c = floor(p);
    return fract(sin(dot(c, vec2<f32>(%s, %s))) * %s);
}

`, formatFloat(cellHashX), formatFloat(cellHashY), formatFloat(cellHashScale))
	}

	buf.WriteString(wgslVertex)
	buf.WriteString("@fragment\nfn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {\n")
	buf.Write(em.body.Bytes())
	fmt.Fprintf(&buf, "\treturn vec4<f32>(%s, %s);\n}\n", em.refs[g.color], em.refs[g.alpha])
	return buf.String(), nil
}

// CompileWGSL validates WGSL source and compiles it to SPIR-V.
func CompileWGSL(src string) ([]byte, error) {
	spv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile wgsl: %w", err)
	}
	return spv, nil
}
