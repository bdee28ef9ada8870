package orbital

import "math"

const (
	// SecondsPerOrbit is how many simulated seconds one Earth revolution (1 rad of
	// base orbital angle per 10 s) is scaled by.
	SecondsPerOrbit = 10.0
	// DaysPerOrbit converts the base orbital angle into the base spin angle.
	DaysPerOrbit = 365.0
)

// Angles is the per-frame orientation of one body.
type Angles struct {
	OrbitalRad     float64 `json:"orbitalAngleRad"`
	SpinRad        float64 `json:"spinAngleRad"`
	InclinationRad float64 `json:"inclinationRad"`
}

// Options tunes the computation. The zero value matches the reference scene.
type Options struct {
	// SunSpinEnabled spins star bodies at 1 rad per simulated second.
	SunSpinEnabled bool `yaml:"sun_spin_enabled" json:"sunSpinEnabled"`
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// BodyAngles computes the angles of a single orbiting body. Angles are not wrapped.
func BodyAngles(elapsed float64, b CelestialBody) Angles {
	orbital := (elapsed / SecondsPerOrbit) * b.OrbitalPeriodFactor
	return Angles{
		OrbitalRad:     orbital,
		SpinRad:        orbital * DaysPerOrbit * b.SpinPeriodFactor,
		InclinationRad: degToRad(b.InclinationDeg),
	}
}

// ComputeBodyAngles maps elapsed simulation seconds to the angles of every body in
// the table. Stars are left out unless opts.SunSpinEnabled is set.
func ComputeBodyAngles(elapsed float64, t *Table, opts Options) map[string]Angles {
	out := make(map[string]Angles, t.Len())
	for _, b := range t.bodies {
		if b.Star {
			if opts.SunSpinEnabled {
				out[b.Name] = Angles{SpinRad: elapsed}
			}
			continue
		}
		out[b.Name] = BodyAngles(elapsed, b)
	}
	return out
}
