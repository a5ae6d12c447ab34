// Package raceline computes racing lines: an outside-apex-outside
// heuristic seeds a candidate, a simulated-annealing search refines it
// against the physics model, and a spline smoother produces the final
// curve.
package raceline

import (
	"math"

	"github.com/banshee-data/raceline/internal/geom"
)

// Heuristic produces the classical outside-apex-outside starting line
// from a drawn centerline. Each interior point is offset perpendicular
// to the local tangent, away from the turn direction, by
// sin(|angle|/2)·halfWidth: zero on a straight, approaching the full
// half-width into a hairpin. Endpoints are left in place and the output
// has the same cardinality as the input.
//
// The result is a starting candidate, not a finished line: it may land
// outside the drawn boundary, and the optimizer and validator are
// responsible for pulling it back in bounds.
func Heuristic(points []geom.Point, halfWidth float64) []geom.Point {
	line := geom.ClonePoints(points)
	if len(points) < 3 {
		return line
	}

	for i := 1; i < len(points)-1; i++ {
		prev, cur, next := points[i-1], points[i], points[i+1]

		in := cur.Sub(prev)
		out := next.Sub(cur)
		if in.Norm() == 0 || out.Norm() == 0 {
			continue
		}

		// Signed turn angle at cur; cross sign gives the direction.
		cross := geom.Cross(prev, cur, next)
		dot := in.X*out.X + in.Y*out.Y
		angle := math.Atan2(math.Abs(cross), dot)

		offset := math.Sin(angle/2) * halfWidth
		if offset == 0 {
			continue
		}

		tangent := next.Sub(prev).Unit()
		normal := tangent.Normal()
		if cross > 0 {
			// Left turn: the outside is to the right.
			normal = normal.Scale(-1)
		}
		line[i] = cur.Add(normal.Scale(offset))
	}

	return line
}
