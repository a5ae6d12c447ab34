// Package units provides shared constants and conversion for the speed
// units the API and CLI display. The physics model works in
// drawing-units/s under the unit-per-metre convention, so m/s is the
// native unit.
package units

import (
	"fmt"
	"math"
	"time"
)

// Unit constants
const (
	MPS = "mps"
	MPH = "mph"
	KPH = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target
// units. Unknown units pass through unconverted.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.23694
	case KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// FormatLapTime renders a lap time in seconds for display, mapping the
// infinite sentinel to a dash.
func FormatLapTime(seconds float64) string {
	if math.IsInf(seconds, 1) || math.IsNaN(seconds) {
		return "—"
	}
	d := time.Duration(seconds * float64(time.Second))
	if d >= time.Minute {
		return fmt.Sprintf("%d:%06.3f", int(d.Minutes()), seconds-60*float64(int(d.Minutes())))
	}
	return fmt.Sprintf("%.3fs", seconds)
}
