package geom

// PointInPolygon reports whether p lies inside polygon using the
// even-odd ray-crossing rule. Points exactly on an edge may land on
// either side; callers treat boundary polygons as forbidden regions, so
// the ambiguity is one drawing unit wide at most.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// orientation classifies the turn a→b→c: 0 colinear, 1 clockwise,
// 2 counter-clockwise.
func orientation(a, b, c Point) int {
	v := (b.Y-a.Y)*(c.X-b.X) - (b.X-a.X)*(c.Y-b.Y)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return 2
	default:
		return 0
	}
}

// onSegment reports whether b lies on segment a-c, assuming the three
// points are colinear.
func onSegment(a, b, c Point) bool {
	return b.X <= max(a.X, c.X) && b.X >= min(a.X, c.X) &&
		b.Y <= max(a.Y, c.Y) && b.Y >= min(a.Y, c.Y)
}

// SegmentsIntersect reports whether segment p1-p2 intersects segment
// q1-q2, including colinear overlap.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Colinear special cases.
	if o1 == 0 && onSegment(p1, q1, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, p2) {
		return true
	}
	if o3 == 0 && onSegment(q1, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(q1, p2, q2) {
		return true
	}
	return false
}

// SelfIntersects reports whether the open path crosses itself. The
// check is O(n²) over non-adjacent segment pairs; segments closer than
// two apart share an endpoint and are skipped to avoid false positives.
func SelfIntersects(points []Point) bool {
	n := len(points) - 1 // segment count
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if SegmentsIntersect(points[i], points[i+1], points[j], points[j+1]) {
				return true
			}
		}
	}
	return false
}
