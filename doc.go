// Package depthfx renders a depth-parallax hero visual with [Ebitengine].
//
// The effect fuses a color image and a matching depth map into a single
// textured quad. The pointer displaces texture lookups in proportion to local
// depth (parallax), and a field of soft blue dots lights up wherever the depth
// falls inside a thin band that sweeps back and forth through the depth range.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg := depthfx.DefaultConfig()
//	cfg.ColorSource = "assets/color.png"
//	cfg.DepthSource = "assets/depth.webp"
//	fx, err := depthfx.NewEffect(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	depthfx.Run(context.Background(), fx, depthfx.RunConfig{
//		Title: "Hero", Width: 960, Height: 640,
//	})
//
// For full control, drive [Effect.Update], [Effect.Draw] and [Effect.Resize]
// from your own [ebiten.Game].
//
// # Shader graph
//
// The per-pixel compositing function is described as an immutable node graph
// built with [GraphBuilder]. A [Graph] can be interpreted on the CPU with an
// [Evaluator], turned into Kage source with [GenerateKage], or into WGSL with
// [GenerateWGSL]. Uniform slots are the only values that change between
// frames; the topology is fixed once [GraphBuilder.Build] returns.
//
// # Lifecycle
//
// Textures load asynchronously. Once both are decoded the material is built
// and GPU resources are created on a background goroutine by a [RenderLoop].
// The quad stays hidden until the loop is running. Load and context failures
// are reported by [Effect.Err] and never stop the host game.
//
// [Ebitengine]: https://ebitengine.org
package depthfx
