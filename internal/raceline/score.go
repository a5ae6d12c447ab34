package raceline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/physics"
	"github.com/banshee-data/raceline/internal/track"
)

// InvalidScore marks a candidate that violates a hard constraint
// (too few points, self-intersection, or any out-of-bounds point).
// Effectively infinite: the annealing search routes away from it.
const InvalidScore = 1e9

// Penalty weights balancing lap time against geometry.
const (
	smoothnessWeight = 0.15
	deviationWeight  = 0.001
)

// LapTime builds segments from the line, runs the speed profile and
// sums segment traversal times. Lap time is undefined, reported as
// +Inf, for lines too short to carry a curvature segment (under three
// points) and for profiles that stall to zero speed on a real segment.
func LapTime(line []geom.Point, cfg physics.Config) float64 {
	if len(line) < 3 {
		return math.Inf(1)
	}
	segments := track.BuildSegments(line)
	speeds := cfg.SpeedProfile(segments)
	for i, seg := range segments {
		if speeds[i] == 0 && seg.Length > 0 {
			return math.Inf(1)
		}
	}
	return physics.EstimateLapTime(segments, speeds)
}

// smoothnessPenalty sums squared curvature over interior points.
// Straights contribute zero (curvature 0 by definition on degenerate
// triples).
func smoothnessPenalty(line []geom.Point) float64 {
	total := 0.0
	for i := 1; i < len(line)-1; i++ {
		k := geom.Curvature(line[i-1], line[i], line[i+1])
		total += k * k
	}
	return total
}

// deviationPenalty is the mean squared nearest-distance from line
// points to the reference centerline, or 0 when no reference is set.
func deviationPenalty(line, reference []geom.Point) float64 {
	if len(reference) == 0 || len(line) == 0 {
		return 0
	}
	sq := make([]float64, len(line))
	for i, p := range line {
		nearest := math.Inf(1)
		for _, r := range reference {
			if d := geom.Distance(p, r); d < nearest {
				nearest = d
			}
		}
		sq[i] = nearest * nearest
	}
	return stat.Mean(sq, nil)
}

// Score rates a candidate line: lower is better. Hard-constraint
// violations return InvalidScore; otherwise the score is lap time plus
// weighted smoothness and deviation penalties.
func Score(line []geom.Point, data *track.Data, cfg physics.Config) float64 {
	if len(line) < 2 {
		return InvalidScore
	}
	for _, p := range line {
		if !data.InBounds(p) {
			return InvalidScore
		}
	}
	if geom.SelfIntersects(line) {
		return InvalidScore
	}

	return LapTime(line, cfg) +
		smoothnessWeight*smoothnessPenalty(line) +
		deviationWeight*deviationPenalty(line, data.Reference)
}

// Validation reports the hard-constraint checks as a pass/fail
// diagnostic for a finished line, outside the hot scoring loop.
type Validation struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// Validate runs the same hard checks as Score but returns what failed
// rather than a sentinel, so the caller can log a degraded result
// instead of discarding it.
func Validate(line []geom.Point, data *track.Data) Validation {
	var problems []string
	if len(line) < 2 {
		problems = append(problems, fmt.Sprintf("line has %d points, need at least 2", len(line)))
	}
	for i, p := range line {
		if !data.InBounds(p) {
			problems = append(problems, fmt.Sprintf("point %d (%.2f, %.2f) is out of bounds", i, p.X, p.Y))
		}
	}
	if geom.SelfIntersects(line) {
		problems = append(problems, "line intersects itself")
	}
	return Validation{Valid: len(problems) == 0, Problems: problems}
}
