package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGripClamps(t *testing.T) {
	cfg := DefaultConfig()

	cfg.SetGrip(0.1)
	assert.Equal(t, MinGrip, cfg.Grip)

	cfg.SetGrip(5.0)
	assert.Equal(t, MaxGrip, cfg.Grip)

	cfg.SetGrip(1.2)
	assert.Equal(t, 1.2, cfg.Grip)
}

func TestMaxCornerSpeed(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("straights return the speed cap", func(t *testing.T) {
		assert.Equal(t, cfg.MaxSpeed, cfg.MaxCornerSpeed(math.Inf(1)))
		assert.Equal(t, cfg.MaxSpeed, cfg.MaxCornerSpeed(0))
		assert.Equal(t, cfg.MaxSpeed, cfg.MaxCornerSpeed(-5))
	})

	t.Run("tight corner follows the grip law", func(t *testing.T) {
		got := cfg.MaxCornerSpeed(10)
		assert.InDelta(t, math.Sqrt(cfg.Grip*Gravity*10), got, 1e-9)
	})

	t.Run("monotone in radius", func(t *testing.T) {
		prev := 0.0
		for radius := 1.0; radius < 10000; radius *= 2 {
			v := cfg.MaxCornerSpeed(radius)
			assert.GreaterOrEqual(t, v, prev, "radius %v", radius)
			assert.LessOrEqual(t, v, cfg.MaxSpeed)
			prev = v
		}
	})

	t.Run("monotone in grip", func(t *testing.T) {
		prev := 0.0
		for grip := MinGrip; grip <= MaxGrip; grip += 0.1 {
			c := cfg
			c.SetGrip(grip)
			v := c.MaxCornerSpeed(50)
			assert.GreaterOrEqual(t, v, prev, "grip %v", grip)
			prev = v
		}
	})
}

func TestSpeedProfile(t *testing.T) {
	cfg := DefaultConfig()
	segments := []Segment{
		{Length: 50, Radius: InfiniteRadius},
		{Length: 50, Radius: InfiniteRadius},
		{Length: 10, Radius: 5}, // tight corner
		{Length: 50, Radius: InfiniteRadius},
	}

	speeds := cfg.SpeedProfile(segments)
	require.Len(t, speeds, len(segments))

	for i, v := range speeds {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, cfg.MaxCornerSpeed(segments[i].Radius)+1e-9,
			"segment %d exceeds its grip limit", i)
	}

	// The segment before the corner must be slow enough to brake down
	// to the corner speed within its length.
	corner := speeds[2]
	limit := math.Sqrt(corner*corner + 2*cfg.MaxBraking*segments[1].Length)
	assert.LessOrEqual(t, speeds[1], limit+1e-9, "profile carries too much speed into the corner")

	// Standing start: the first segment cannot exceed what full
	// acceleration over its length allows.
	assert.LessOrEqual(t, speeds[0], math.Sqrt(2*cfg.MaxAcceleration*segments[0].Length)+1e-9)
}

func TestSpeedProfileEmpty(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.SpeedProfile(nil))
}

func TestEstimateLapTime(t *testing.T) {
	segments := []Segment{{Length: 100}, {Length: 50}}

	t.Run("sums length over speed", func(t *testing.T) {
		got := EstimateLapTime(segments, []float64{10, 25})
		assert.InDelta(t, 12.0, got, 1e-9)
	})

	t.Run("zero speed contributes no time", func(t *testing.T) {
		got := EstimateLapTime(segments, []float64{0, 25})
		assert.InDelta(t, 2.0, got, 1e-9)
	})
}

func TestBrakingAndAccelerationDistance(t *testing.T) {
	cfg := DefaultConfig()

	// v² = v₀² + 2as: braking 20 → 10 m/s
	assert.InDelta(t, (400.0-100.0)/(2*cfg.MaxBraking), cfg.BrakingDistance(20, 10), 1e-9)
	assert.Equal(t, 0.0, cfg.BrakingDistance(10, 20), "speeding up needs no braking distance")

	assert.InDelta(t, (400.0-100.0)/(2*cfg.MaxAcceleration), cfg.AccelerationDistance(10, 20), 1e-9)
	assert.Equal(t, 0.0, cfg.AccelerationDistance(20, 10))
}

func TestLateralGForce(t *testing.T) {
	assert.Equal(t, 0.0, LateralGForce(30, InfiniteRadius))
	assert.InDelta(t, 400.0/(50*Gravity), LateralGForce(20, 50), 1e-9)
}

func TestCanMaintainSpeed(t *testing.T) {
	cfg := DefaultConfig()
	limit := cfg.MaxCornerSpeed(20)
	assert.True(t, cfg.CanMaintainSpeed(limit-0.1, 20))
	assert.False(t, cfg.CanMaintainSpeed(limit+0.1, 20))
}
