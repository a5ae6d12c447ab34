package geom

// catmullRom evaluates the uniform Catmull-Rom segment
// between p1 and p2 at parameter t in [0,1], with p0 and p3 as the
// neighbouring control points.
func catmullRom(p0, p1, p2, p3 Point, t float64) Point {
	t2 := t * t
	t3 := t2 * t
	return Point{
		X: 0.5 * ((2 * p1.X) +
			(-p0.X+p2.X)*t +
			(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
			(-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * ((2 * p1.Y) +
			(-p0.Y+p2.Y)*t +
			(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
			(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

// Interpolate resamples points through a Catmull-Rom spline, emitting
// resolution samples per input segment. Control points are clamped at
// the sequence ends, so the path stays open (no wraparound) and the
// original endpoints are preserved. It is a pure function of its input.
func Interpolate(points []Point, resolution int) []Point {
	if len(points) < 2 || resolution < 1 {
		return ClonePoints(points)
	}

	out := make([]Point, 0, (len(points)-1)*resolution+1)
	for i := 0; i < len(points)-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, len(points)-1)]

		for s := 0; s < resolution; s++ {
			t := float64(s) / float64(resolution)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	out = append(out, points[len(points)-1])
	return out
}
