package raceline

import "github.com/banshee-data/raceline/internal/geom"

// duplicateEpsilon is the distance below which adjacent resampled
// points are collapsed, so the output never carries zero-length
// segments.
const duplicateEpsilon = 1e-6

// Smooth resamples a line through a Catmull-Rom spline at a density
// proportional to passes (higher means denser output, not repeated
// relaxation). The path is treated as open even for visually closed
// circuits, and near-duplicate adjacent samples are dropped. Unlike
// the optimizer's in-loop smoothing, this changes the point count.
func Smooth(points []geom.Point, passes int) []geom.Point {
	if len(points) < 3 {
		return geom.ClonePoints(points)
	}
	resolution := max(2, passes)

	sampled := geom.Interpolate(points, resolution)
	out := sampled[:1]
	for _, p := range sampled[1:] {
		if geom.Distance(out[len(out)-1], p) > duplicateEpsilon {
			out = append(out, p)
		}
	}
	return out
}

// localSmooth applies one weighted 1-2-1 average over interior points,
// leaving the endpoints anchored. The point count is unchanged: the
// annealing loop's step geometry depends on the search operating at the
// original cardinality.
func localSmooth(points []geom.Point) []geom.Point {
	out := geom.ClonePoints(points)
	for i := 1; i < len(points)-1; i++ {
		out[i] = geom.Point{
			X: (points[i-1].X + 2*points[i].X + points[i+1].X) / 4,
			Y: (points[i-1].Y + 2*points[i].Y + points[i+1].Y) / 4,
		}
	}
	return out
}
