// Package entity holds the procedurally generated scenery the ship flies
// through: asteroids, planets, nebulas and the starfield.
package entity

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Advancer is anything that animates over time
type Advancer interface {
	Advance(dt float64)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// sphericalPoint samples a direction uniformly on the unit sphere and
// scales it to a radius drawn from [rMin, rMax).
func sphericalPoint(rng *rand.Rand, rMin, rMax float64) physics.Vector3 {
	theta := uniform(rng, 0, 2*math.Pi)
	phi := math.Acos(2*rng.Float64() - 1)
	r := uniform(rng, rMin, rMax)

	return physics.Vector3{
		r * math.Sin(phi) * math.Cos(theta),
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi),
	}
}

func uniformVec(rng *rand.Rand, lo, hi float64) physics.Vector3 {
	return physics.Vector3{uniform(rng, lo, hi), uniform(rng, lo, hi), uniform(rng, lo, hi)}
}

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(1, 2))
}
