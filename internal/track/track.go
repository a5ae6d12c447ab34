// Package track holds the drawn-track aggregates: the centerline, the
// derived per-segment geometry, boundary polygons and the transport
// record shared with the drawing surface.
package track

import (
	"fmt"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/physics"
)

// MinCenterlinePoints is the fewest points a drawn centerline may have
// before any optimization work starts.
const MinCenterlinePoints = 3

// Data aggregates everything the optimizer needs to know about a
// track. Points is the drawn centerline, treated as an open path even
// for visually closed circuits. Boundaries are forbidden regions; a
// racing-line point inside any of them is out of bounds. Reference, if
// set, is the centerline used for the deviation penalty. HalfWidth is
// the track half-width in drawing units.
type Data struct {
	Points     []geom.Point
	Boundaries [][]geom.Point
	Reference  []geom.Point
	HalfWidth  float64
}

// New builds track Data from a drawn centerline, copying the points so
// later edits by the caller cannot reach into a running optimization.
// It rejects centerlines with fewer than MinCenterlinePoints points.
func New(points []geom.Point, halfWidth float64) (*Data, error) {
	if len(points) < MinCenterlinePoints {
		return nil, fmt.Errorf("centerline needs at least %d points, got %d", MinCenterlinePoints, len(points))
	}
	return &Data{
		Points:    geom.ClonePoints(points),
		Reference: geom.ClonePoints(points),
		HalfWidth: halfWidth,
	}, nil
}

// Clone returns an independent deep copy of d, suitable for handing to
// a background run.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := &Data{
		Points:    geom.ClonePoints(d.Points),
		Reference: geom.ClonePoints(d.Reference),
		HalfWidth: d.HalfWidth,
	}
	if d.Boundaries != nil {
		out.Boundaries = make([][]geom.Point, len(d.Boundaries))
		for i, b := range d.Boundaries {
			out.Boundaries[i] = geom.ClonePoints(b)
		}
	}
	return out
}

// Length returns the total centerline length.
func (d *Data) Length() float64 {
	return geom.Length(d.Points)
}

// InBounds reports whether p lies inside none of the boundary
// polygons.
func (d *Data) InBounds(p geom.Point) bool {
	for _, poly := range d.Boundaries {
		if geom.PointInPolygon(p, poly) {
			return false
		}
	}
	return true
}

// BuildSegments derives physics segments from consecutive point
// triples along a path: each interior point contributes its distance to
// the next point and the radius of the circle through its neighbours.
// The first point has no previous neighbour, so its radius is taken as
// infinite (a straight), matching how a standing start behaves.
func BuildSegments(points []geom.Point) []physics.Segment {
	if len(points) < 2 {
		return nil
	}
	segments := make([]physics.Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		seg := physics.Segment{
			Length: geom.Distance(points[i], points[i+1]),
			Radius: physics.InfiniteRadius,
		}
		if i > 0 {
			seg.Radius = geom.RadiusOfCurvature(points[i-1], points[i], points[i+1])
		}
		segments = append(segments, seg)
	}
	return segments
}
