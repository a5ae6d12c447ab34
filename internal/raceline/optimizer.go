package raceline

import (
	"math"
	"math/rand"
	"time"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/monitoring"
	"github.com/banshee-data/raceline/internal/physics"
	"github.com/banshee-data/raceline/internal/track"
)

// Annealing schedule. Temperature decays geometrically from
// initialTemperature to finalTemperature over the iteration budget.
const (
	initialTemperature = 1.0
	finalTemperature   = 1e-4
	minIterations      = 40

	// DefaultIterations is the iteration count used when the caller
	// does not supply one.
	DefaultIterations = 30

	// DefaultSmoothingPasses sets the resample density of the one-off
	// global smoothing applied to the best candidate after the search,
	// used when the caller does not supply one.
	DefaultSmoothingPasses = 4
)

// Result is the outcome of one optimization run.
type Result struct {
	Line    []geom.Point
	Score   float64
	LapTime float64
}

// Options tunes one optimization run. The zero value uses
// DefaultIterations, a time-seeded random source and no progress
// reporting.
type Options struct {
	// Iterations is the requested annealing step count; values below
	// minIterations are raised to it.
	Iterations int

	// SmoothingPasses is the resample density of the final global
	// smoothing; non-positive values use DefaultSmoothingPasses.
	SmoothingPasses int

	// Rand, when non-nil, makes the run reproducible.
	Rand *rand.Rand

	// Progress, when non-nil, receives coarse phase labels
	// ("optimizing", "smoothing") as the run moves through them.
	Progress func(phase string)
}

// Optimize refines an initial candidate line by constrained simulated
// annealing. Each iteration copies the accepted candidate, perturbs a
// temperature-scaled handful of interior points along the local tangent
// and normal, lightly smooths the result and scores it; improvements
// are always accepted and regressions accepted with Metropolis
// probability exp(-Δ/t), which lets the search route around boundary
// geometry that traps pure greedy descent. The best candidate ever seen
// is tracked independently of acceptance and, after a final global
// spline smoothing, returned.
func Optimize(initial []geom.Point, data *track.Data, cfg physics.Config, opts Options) Result {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	smoothingPasses := opts.SmoothingPasses
	if smoothingPasses <= 0 {
		smoothingPasses = DefaultSmoothingPasses
	}

	steps := max(minIterations, iterations)
	progress("optimizing")

	current := geom.ClonePoints(initial)
	currentScore := Score(current, data, cfg)
	best := geom.ClonePoints(initial)
	bestScore := currentScore

	for k := 0; k < steps; k++ {
		t := initialTemperature *
			math.Pow(finalTemperature/initialTemperature, float64(k)/float64(steps-1))

		candidate := perturb(current, data, t, rng)
		candidate = localSmooth(candidate)
		candidateScore := Score(candidate, data, cfg)

		delta := candidateScore - currentScore
		if delta < 0 || rng.Float64() < math.Exp(-delta/max(t, 1e-9)) {
			current = candidate
			currentScore = candidateScore
		}
		if candidateScore < bestScore {
			best = candidate
			bestScore = candidateScore
		}
	}

	progress("smoothing")
	smoothed := Smooth(best, smoothingPasses)
	if v := Validate(smoothed, data); !v.Valid {
		// Best-effort: report the degraded line rather than failing.
		monitoring.Logf("[raceline] optimized line failed validation: %v", v.Problems)
	}

	return Result{
		Line:    smoothed,
		Score:   bestScore,
		LapTime: LapTime(smoothed, cfg),
	}
}

// perturb returns a copy of points with one to four interior points
// nudged.
// The nudge count and magnitude both scale with temperature, so the
// search explores widely early and settles late. A nudge that leaves
// the track bounds, or moves a point more than twice its local segment
// length, is skipped to keep steps locally bounded. Endpoints are never
// touched so the line stays anchored to the drawn track's ends.
func perturb(points []geom.Point, data *track.Data, t float64, rng *rand.Rand) []geom.Point {
	out := geom.ClonePoints(points)
	interior := len(points) - 2
	if interior < 1 {
		return out
	}

	count := 1 + rng.Intn(1+int(3*t))
	for n := 0; n < count; n++ {
		i := 1 + rng.Intn(interior)
		prev, cur, next := out[i-1], out[i], out[i+1]

		localLen := (geom.Distance(prev, cur) + geom.Distance(cur, next)) / 2
		if localLen == 0 {
			continue
		}
		magnitude := localLen * (0.1 + 4*t)

		tangent := next.Sub(prev).Unit()
		normal := tangent.Normal()
		moved := cur.
			Add(tangent.Scale((2*rng.Float64() - 1) * magnitude)).
			Add(normal.Scale((2*rng.Float64() - 1) * magnitude))

		if !data.InBounds(moved) || geom.Distance(cur, moved) > 2*localLen {
			continue
		}
		out[i] = moved
	}
	return out
}
