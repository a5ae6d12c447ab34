package geom

import "math"

// Curvature returns 1/radius of the circle through a, b and c, computed
// as 4·Area/(|ab|·|bc|·|ca|) with the triangle area from Heron's
// formula. A degenerate triple (any zero-length side, including
// coincident points) is treated as a straight and returns 0.
func Curvature(a, b, c Point) float64 {
	ab := Distance(a, b)
	bc := Distance(b, c)
	ca := Distance(c, a)
	if ab == 0 || bc == 0 || ca == 0 {
		return 0
	}

	s := (ab + bc + ca) / 2
	// Floating-point rounding can push the radicand slightly negative
	// for near-colinear triples.
	radicand := s * (s - ab) * (s - bc) * (s - ca)
	if radicand <= 0 {
		return 0
	}
	area := math.Sqrt(radicand)

	return 4 * area / (ab * bc * ca)
}

// RadiusOfCurvature returns the radius of the circle through a, b and
// c, or +Inf when the three points are colinear (zero curvature).
func RadiusOfCurvature(a, b, c Point) float64 {
	k := Curvature(a, b, c)
	if k == 0 {
		return math.Inf(1)
	}
	return 1 / k
}
