package depthfx

import (
	"strings"
	"testing"
)

func TestGenerateWGSLHero(t *testing.T) {
	hg, err := BuildHeroGraph(DefaultGraphParams())
	if err != nil {
		t.Fatal(err)
	}
	src, err := GenerateWGSL(hg.Graph)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"struct Uniforms",
		"Pointer: vec2<f32>",
		"Progress: f32",
		"@group(0) @binding(2) var tColor: texture_2d<f32>;",
		"@group(0) @binding(3) var tDepth: texture_2d<f32>;",
		"fn cell_noise(p: vec2<f32>) -> f32",
		"@vertex",
		"fn fs_main(",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("WGSL source missing %q", want)
		}
	}

	spv, err := CompileWGSL(src)
	if err != nil {
		if msg := err.Error(); strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("CompileWGSL: %v\n%s", err, src)
	}
	if len(spv) < 20 {
		t.Fatalf("SPIR-V is %d bytes", len(spv))
	}
	magic := uint32(spv[0]) | uint32(spv[1])<<8 | uint32(spv[2])<<16 | uint32(spv[3])<<24
	if magic != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", magic)
	}
}

func TestCompileWGSLRejectsInvalid(t *testing.T) {
	if _, err := CompileWGSL("fn broken( {"); err == nil {
		t.Error("expected error for invalid WGSL")
	}
}
