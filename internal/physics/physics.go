// Package physics models the simplified vehicle dynamics used for
// racing-line scoring: lateral grip bounds corner speed, longitudinal
// acceleration and braking bound how speed may change between segments.
package physics

import "math"

// Grip coefficient bounds. Grip is a unitless scalar modelling
// available lateral traction.
const (
	MinGrip = 0.6
	MaxGrip = 1.5
)

// Gravity is the gravitational constant in drawing-units/s² under the
// unit-per-metre convention.
const Gravity = 9.81

// Config holds the vehicle parameters for one optimization run. It is
// passed by value into every physics call: a run captures a snapshot at
// start, so concurrent edits from the caller cannot corrupt an
// in-flight computation.
type Config struct {
	Grip            float64 `json:"grip"`
	MaxAcceleration float64 `json:"max_acceleration"` // drawing-units/s²
	MaxBraking      float64 `json:"max_braking"`      // drawing-units/s², positive
	MaxSpeed        float64 `json:"max_speed"`        // drawing-units/s
}

// DefaultConfig returns the vehicle parameters used when the caller
// supplies none.
func DefaultConfig() Config {
	return Config{
		Grip:            1.0,
		MaxAcceleration: 8.0,
		MaxBraking:      12.0,
		MaxSpeed:        80.0,
	}
}

// SetGrip sets the grip coefficient, clamping it into
// [MinGrip, MaxGrip]. This is the only mutating entry point; everything
// else treats the config as read-only.
func (c *Config) SetGrip(grip float64) {
	c.Grip = min(max(grip, MinGrip), MaxGrip)
}

// InfiniteRadius marks a straight segment.
var InfiniteRadius = math.Inf(1)

// Segment is one stretch of path derived from three consecutive
// points: its length and its radius of curvature (+Inf on a straight).
type Segment struct {
	Length float64
	Radius float64
}

// MaxCornerSpeed returns the highest speed at which the configured grip
// can hold the vehicle on a circle of the given radius:
// sqrt(grip·g·radius), capped at MaxSpeed. Non-positive or infinite
// radii are straights and return the cap directly.
func (c Config) MaxCornerSpeed(radius float64) float64 {
	if radius <= 0 || math.IsInf(radius, 1) {
		return c.MaxSpeed
	}
	return min(c.MaxSpeed, math.Sqrt(c.Grip*Gravity*radius))
}

// SpeedProfile computes the achievable speed at each segment under
// grip, acceleration and braking constraints. The forward pass limits
// acceleration out of slow corners starting from rest; the backward
// pass then caps each segment so braking down to the next segment's
// speed is achievable within the segment length. The pass order
// matters: backward-then-forward would let the profile carry too much
// speed into a corner.
func (c Config) SpeedProfile(segments []Segment) []float64 {
	speeds := make([]float64, len(segments))
	if len(segments) == 0 {
		return speeds
	}

	prev := 0.0 // standing start
	for i, seg := range segments {
		limit := c.MaxCornerSpeed(seg.Radius)
		achievable := math.Sqrt(prev*prev + 2*c.MaxAcceleration*seg.Length)
		speeds[i] = min(limit, achievable)
		prev = speeds[i]
	}

	for i := len(segments) - 2; i >= 0; i-- {
		next := speeds[i+1]
		brakeable := math.Sqrt(next*next + 2*c.MaxBraking*segments[i].Length)
		speeds[i] = min(speeds[i], brakeable)
	}

	return speeds
}

// EstimateLapTime sums length/speed over the segments. A zero-speed
// segment contributes no time rather than dividing by zero; callers
// that consider a stalled profile undefined report +Inf themselves.
func EstimateLapTime(segments []Segment, speeds []float64) float64 {
	total := 0.0
	for i, seg := range segments {
		if i < len(speeds) && speeds[i] > 0 {
			total += seg.Length / speeds[i]
		}
	}
	return total
}

// BrakingDistance returns the distance needed to brake from v1 down to
// v2, floored at 0 when v2 ≥ v1.
func (c Config) BrakingDistance(v1, v2 float64) float64 {
	return max((v1*v1-v2*v2)/(2*c.MaxBraking), 0)
}

// AccelerationDistance returns the distance needed to accelerate from
// v1 up to v2, floored at 0 when v2 ≤ v1.
func (c Config) AccelerationDistance(v1, v2 float64) float64 {
	return max((v2*v2-v1*v1)/(2*c.MaxAcceleration), 0)
}

// LateralGForce returns the lateral acceleration, in multiples of g,
// of travelling the given radius at the given speed. Straights pull no
// lateral g.
func LateralGForce(speed, radius float64) float64 {
	if radius <= 0 || math.IsInf(radius, 1) {
		return 0
	}
	return speed * speed / (radius * Gravity)
}

// CanMaintainSpeed reports whether the configured grip can hold the
// given speed around the given radius.
func (c Config) CanMaintainSpeed(speed, radius float64) bool {
	return speed <= c.MaxCornerSpeed(radius)
}
