package entity

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

const (
	starMinRadius = 20.0
	starMaxRadius = 200.0
)

// StarPalette is the set of pale tints a star is drawn from
var StarPalette = []physics.Vector3{
	{1.0, 1.0, 1.0},
	{1.0, 0.95, 0.9},
	{0.9, 0.95, 1.0},
	{1.0, 0.9, 0.7},
	{0.8, 0.9, 1.0},
	{1.0, 0.8, 0.8},
	{0.9, 1.0, 0.8},
}

// Star is a background point light
type Star struct {
	Origin            physics.Vector3
	Position          physics.Vector3
	Color             physics.Vector3
	Size              float64
	Brightness        float64
	CurrentBrightness float64
	TwinkleSpeed      float64
	TwinklePhase      float64
	DriftSpeed        float64
}

// Starfield animates a fixed set of stars against its own clock
type Starfield struct {
	stars []Star
	time  float64
}

// NewStarfield scatters count stars over a full sphere
func NewStarfield(count int, rng *rand.Rand) *Starfield {
	rng = newRand(rng)
	sf := &Starfield{stars: make([]Star, 0, max(count, 0))}

	for i := 0; i < count; i++ {
		pos := sphericalPoint(rng, starMinRadius, starMaxRadius)
		sf.stars = append(sf.stars, Star{
			Origin:       pos,
			Position:     pos,
			Size:         uniform(rng, 0.01, 0.08),
			Brightness:   uniform(rng, 0.3, 1.0),
			TwinkleSpeed: uniform(rng, 0.1, 2.0),
			TwinklePhase: uniform(rng, 0, 2*math.Pi),
			DriftSpeed:   uniform(rng, 0.001, 0.01),
			Color:        StarPalette[rng.IntN(len(StarPalette))],
		})
	}
	sf.refresh()
	return sf
}

// Advance moves the starfield clock forward and recomputes twinkle and drift
func (sf *Starfield) Advance(dt float64) {
	sf.time += dt
	sf.refresh()
}

func (sf *Starfield) refresh() {
	for i := range sf.stars {
		s := &sf.stars[i]
		twinkle := (math.Sin(sf.time*s.TwinkleSpeed+s.TwinklePhase) + 1) * 0.5
		s.CurrentBrightness = s.Brightness * (0.6 + 0.4*twinkle)

		drift := math.Sin(sf.time*0.3+s.DriftSpeed) * 0.1
		s.Position = s.Origin.Add(physics.Vector3{drift, drift * 0.5, 0})
	}
}

// Stars returns the live star slice; callers must not modify it
func (sf *Starfield) Stars() []Star {
	return sf.stars
}

// Time returns the accumulated starfield clock
func (sf *Starfield) Time() float64 {
	return sf.time
}

// Pulse is the global shimmer applied to every star at the current time
func (sf *Starfield) Pulse() float64 {
	return 1.0 + 0.2*math.Sin(sf.time*2.0)
}
