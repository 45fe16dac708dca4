// Command depthfx emits the hero shader or renders a frame of it on the CPU
// without opening a window.
//
//	depthfx -emit kage
//	depthfx -emit wgsl -spirv hero.spv
//	depthfx -render frame.png -color color.png -depth depth.webp -t 1.5 -px 0.3 -py -0.2
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phanxgames/depthfx"
)

func main() {
	emit := flag.String("emit", "", "print shader source: kage or wgsl")
	spirv := flag.String("spirv", "", "with -emit wgsl, also write the compiled SPIR-V to this file")
	render := flag.String("render", "", "render one frame on the CPU to this PNG file")
	colorSrc := flag.String("color", "", "color image URL or path")
	depthSrc := flag.String("depth", "", "depth map URL or path")
	width := flag.Int("width", 600, "render width in pixels")
	height := flag.Int("height", 600, "render height in pixels")
	elapsed := flag.Float64("t", 0, "elapsed seconds driving the depth band")
	px := flag.Float64("px", 0, "pointer x in [-1, 1]")
	py := flag.Float64("py", 0, "pointer y in [-1, 1]")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	depthfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *emit == "" && *render == "" {
		flag.Usage()
		os.Exit(2)
	}

	hero, err := depthfx.BuildHeroGraph(depthfx.DefaultGraphParams())
	if err != nil {
		log.Fatalf("build hero graph: %v", err)
	}

	switch *emit {
	case "":
	case "kage":
		src, err := depthfx.GenerateKage(hero.Graph)
		if err != nil {
			log.Fatalf("generate kage: %v", err)
		}
		os.Stdout.Write(src)
	case "wgsl":
		src, err := depthfx.GenerateWGSL(hero.Graph)
		if err != nil {
			log.Fatalf("generate wgsl: %v", err)
		}
		code, err := depthfx.CompileWGSL(src)
		if err != nil {
			log.Fatalf("validate wgsl: %v", err)
		}
		fmt.Print(src)
		if *spirv != "" {
			if err := os.WriteFile(*spirv, code, 0o644); err != nil {
				log.Fatalf("write spir-v: %v", err)
			}
		}
	default:
		log.Fatalf("unknown -emit %q (want kage or wgsl)", *emit)
	}

	if *render == "" {
		return
	}
	if *colorSrc == "" || *depthSrc == "" {
		log.Fatal("-render needs -color and -depth")
	}

	loader := depthfx.NewTextureLoader(depthfx.DefaultFetchTimeout)
	loader.Start(context.Background(), *colorSrc, *depthSrc)
	<-loader.Done()
	if err := loader.Err(); err != nil {
		log.Fatal(err)
	}
	set := loader.Textures()

	vals := depthfx.NewValues(hero.Graph)
	hero.Bind(&depthfx.HeroUniforms{
		Progress: depthfx.Progress(*elapsed, depthfx.DefaultProgressSpeed),
		Pointer:  depthfx.Vec2{X: *px, Y: *py},
	}, vals)

	img, err := depthfx.RenderImage(hero.Graph, vals, *width, *height,
		depthfx.NewImageSampler(set.Color), depthfx.NewImageSampler(set.Depth))
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := depthfx.WritePNG(*render, img); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%dx%d)", *render, *width, *height)
}
