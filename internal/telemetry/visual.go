package telemetry

import "math"

// Visual mapping constants. Fuel in [0,100] maps to a vertical offset of
// [10%, 90%]; a trajectory of 180° is upright and ±180° tilts ±36°.
const (
	baselineOffset    = 10.0
	fuelToPosition    = 0.8
	uprightTrajectory = 180.0
	trajectoryDivisor = 5.0
	minFlameIntensity = 0.3
	particleThreshold = 20.0
	fuelPerParticle   = 15.0
)

// VisualState is the set of rendering parameters derived from a Snapshot.
// It is recomputed on every frame and never stored.
type VisualState struct {
	// VerticalPosition is the rocket's offset from the baseline as a
	// percentage of the viewport height.
	VerticalPosition float64 `json:"verticalPosition"`
	// Rotation is the rocket's tilt in degrees; negative leans left.
	Rotation float64 `json:"rotation"`
	// FlameIntensity is the exhaust opacity in [0.3, ∞).
	FlameIntensity float64 `json:"flameIntensity"`
	ParticleCount  int     `json:"particleCount"`
	AlertActive    bool    `json:"alertActive"`
}

// Derive maps a snapshot to its visual state. Out-of-range fuel levels
// extrapolate linearly so the function stays total.
func Derive(s Snapshot) VisualState {
	return VisualState{
		VerticalPosition: VerticalPosition(s.FuelLevel),
		Rotation:         Rotation(s.Trajectory),
		FlameIntensity:   FlameIntensity(s.FuelLevel),
		ParticleCount:    ParticleCount(s.FuelLevel),
		AlertActive:      s.Status.IsWarning(),
	}
}

// VerticalPosition returns 10 + fuel*0.8.
func VerticalPosition(fuel float64) float64 {
	return baselineOffset + fuel*fuelToPosition
}

// Rotation returns (trajectory - 180) / 5.
func Rotation(trajectory float64) float64 {
	return (trajectory - uprightTrajectory) / trajectoryDivisor
}

// FlameIntensity returns fuel/100 floored at 0.3.
func FlameIntensity(fuel float64) float64 {
	return math.Max(minFlameIntensity, fuel/100)
}

// ParticleCount returns floor(fuel/15) above 20% fuel and 0 otherwise.
// Counts too large for an int saturate at math.MaxInt.
func ParticleCount(fuel float64) int {
	if !(fuel > particleThreshold) {
		return 0
	}
	q := math.Floor(fuel / fuelPerParticle)
	if q >= math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}
