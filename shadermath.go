package depthfx

import "math"

// Scalar helpers with shading-language semantics. The graph interpreter and
// the property tests share these so CPU results match the generated shaders.

// Smoothstep returns the cubic Hermite interpolation of x between edge0 and
// edge1. Inverted edges (edge0 > edge1) are allowed and produce a falling
// curve. Equal edges are a step at the edge.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mod returns x - y*floor(x/y). Unlike math.Mod the result takes the sign of y.
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

// Mix linearly interpolates between a and b by t.
func Mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Fract returns the fractional part x - floor(x).
func Fract(x float64) float64 {
	return x - math.Floor(x)
}
