// Package geom provides the planar geometry kernel shared by the track
// model, the physics model and the racing-line optimizer: distances,
// curvature, Catmull-Rom interpolation and intersection tests over 2-D
// points in track-drawing units.
package geom

import "math"

// Point is a 2-D coordinate in track-drawing units. Points are plain
// values; slices of points are copied, never aliased, across component
// boundaries (see ClonePoints).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by v.
func (p Point) Add(v Point) Point {
	return Point{p.X + v.X, p.Y + v.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p with both coordinates multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Unit returns p normalised to length 1, or the zero point when p has
// no length.
func (p Point) Unit() Point {
	n := p.Norm()
	if n == 0 {
		return Point{}
	}
	return Point{p.X / n, p.Y / n}
}

// Normal returns p rotated 90° counter-clockwise. For a unit tangent
// this is the unit normal.
func (p Point) Normal() Point {
	return Point{-p.Y, p.X}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Cross returns the z-component of (b-a) × (c-a). Positive means c lies
// to the left of the directed line a→b.
func Cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// ClonePoints returns an independent copy of points. Every component
// boundary crossing goes through this so that a candidate line can be
// discarded without corrupting the line it branched from.
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Length returns the sum of consecutive point distances along the path.
func Length(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
