package depthfx

import "math"

// Cell noise hash constants. The Kage and WGSL backends emit the same
// expression so every backend assigns each cell the same brightness up to
// float32 precision.
const (
	cellHashX     = 12.9898
	cellHashY     = 78.233
	cellHashScale = 43758.5453
)

// CellNoise returns a pseudo-random value in [0, 1) that is constant across
// each unit cell of p.
func CellNoise(x, y float64) float64 {
	cx := math.Floor(x)
	cy := math.Floor(y)
	return Fract(math.Sin(cx*cellHashX+cy*cellHashY) * cellHashScale)
}
