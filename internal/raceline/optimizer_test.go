package raceline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/physics"
	"github.com/banshee-data/raceline/internal/track"
)

func kinkedTrack(t *testing.T) *track.Data {
	t.Helper()
	// A wiggly open course with enough interior points to perturb.
	points := []geom.Point{
		{X: 0, Y: 0}, {X: 40, Y: 10}, {X: 80, Y: -10}, {X: 120, Y: 20},
		{X: 160, Y: -5}, {X: 200, Y: 15}, {X: 240, Y: 0},
	}
	data, err := track.New(points, 15)
	require.NoError(t, err)
	return data
}

func TestOptimizeNeverWorseThanHeuristic(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)
	initialScore := Score(initial, data, cfg)

	for _, seed := range []int64{1, 7, 42} {
		rng := rand.New(rand.NewSource(seed))
		result := Optimize(initial, data, cfg, Options{Iterations: 60, Rand: rng})
		assert.LessOrEqual(t, result.Score, initialScore, "seed %d regressed past the starting line", seed)
	}
}

func TestOptimizeDeterministicPerSeed(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)

	a := Optimize(initial, data, cfg, Options{Iterations: 50, Rand: rand.New(rand.NewSource(99))})
	b := Optimize(initial, data, cfg, Options{Iterations: 50, Rand: rand.New(rand.NewSource(99))})

	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Line, b.Line)
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)
	snapshot := geom.ClonePoints(initial)

	Optimize(initial, data, cfg, Options{Iterations: 40, Rand: rand.New(rand.NewSource(3))})
	assert.Equal(t, snapshot, initial, "candidates must branch from copies")
}

func TestOptimizePreservesEndpoints(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)

	result := Optimize(initial, data, cfg, Options{Iterations: 50, Rand: rand.New(rand.NewSource(5))})
	require.NotEmpty(t, result.Line)
	assert.Equal(t, initial[0], result.Line[0])
	assert.Equal(t, initial[len(initial)-1], result.Line[len(result.Line)-1])
}

func TestOptimizeReportsPhases(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)

	var phases []string
	Optimize(initial, data, cfg, Options{
		Iterations: 40,
		Rand:       rand.New(rand.NewSource(1)),
		Progress:   func(phase string) { phases = append(phases, phase) },
	})
	assert.Equal(t, []string{"optimizing", "smoothing"}, phases)
}

func TestOptimizeDefaultsIterations(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)

	// Zero and negative iteration counts fall back to the default
	// budget rather than skipping the search.
	result := Optimize(initial, data, cfg, Options{Rand: rand.New(rand.NewSource(2))})
	assert.NotEmpty(t, result.Line)
	assert.Less(t, result.Score, InvalidScore)
}

func TestOptimizeSmoothingPasses(t *testing.T) {
	data := kinkedTrack(t)
	cfg := physics.DefaultConfig()
	initial := Heuristic(data.Points, data.HalfWidth)

	// The same seeded search yields the same best candidate, so the
	// output density depends only on the requested smoothing passes.
	sparse := Optimize(initial, data, cfg, Options{Iterations: 40, SmoothingPasses: 2, Rand: rand.New(rand.NewSource(8))})
	dense := Optimize(initial, data, cfg, Options{Iterations: 40, SmoothingPasses: 8, Rand: rand.New(rand.NewSource(8))})
	assert.Greater(t, len(dense.Line), len(sparse.Line))

	// Unset falls back to the default density.
	fallback := Optimize(initial, data, cfg, Options{Iterations: 40, Rand: rand.New(rand.NewSource(8))})
	explicit := Optimize(initial, data, cfg, Options{Iterations: 40, SmoothingPasses: DefaultSmoothingPasses, Rand: rand.New(rand.NewSource(8))})
	assert.Equal(t, explicit.Line, fallback.Line)
}

func TestPerturbRespectsBounds(t *testing.T) {
	data := kinkedTrack(t)
	// Forbid everything above y=30 with a huge rectangle.
	data.Boundaries = [][]geom.Point{{{X: -1000, Y: 30}, {X: 1000, Y: 30}, {X: 1000, Y: 1000}, {X: -1000, Y: 1000}}}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		out := perturb(data.Points, data, 1.0, rng)
		for _, p := range out {
			assert.True(t, data.InBounds(p), "perturbation escaped the track bounds")
		}
	}
}
