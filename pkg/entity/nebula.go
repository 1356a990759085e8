package entity

import (
	"math"
	"math/rand/v2"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// NebulaParams describes a decorative gas cloud
type NebulaParams struct {
	Position physics.Vector3 `mapstructure:"position"`
	Size     float64         `mapstructure:"size"`
	Color    physics.Vector3 `mapstructure:"color"`
	Density  float64         `mapstructure:"density"`
}

// DefaultNebulas returns the stock purple and blue clouds
func DefaultNebulas() []NebulaParams {
	return []NebulaParams{
		{Position: physics.Vector3{-20, 5, 25}, Size: 8.0, Color: physics.Vector3{0.6, 0.3, 0.8}, Density: 0.4},
		{Position: physics.Vector3{15, -8, -20}, Size: 6.0, Color: physics.Vector3{0.3, 0.5, 0.9}, Density: 0.3},
	}
}

// Nebula is a slowly turning, pulsing cloud. It has no physical effect.
type Nebula struct {
	ecs.BasicEntity
	NebulaParams

	Rotation      float64
	RotationSpeed float64
	PulsePhase    float64
}

// NewNebula places a nebula with a random initial spin
func NewNebula(p NebulaParams, rng *rand.Rand) *Nebula {
	rng = newRand(rng)
	return &Nebula{
		BasicEntity:   ecs.NewBasic(),
		NebulaParams:  p,
		Rotation:      uniform(rng, 0, 360),
		RotationSpeed: uniform(rng, -0.5, 0.5),
		PulsePhase:    uniform(rng, 0, 2*math.Pi),
	}
}

// Advance turns the nebula
func (n *Nebula) Advance(dt float64) {
	n.Rotation = physics.WrapDegrees(n.Rotation + n.RotationSpeed*dt)
}

// Pulse returns the halo scale at scene time t, in [0.6,1.0]
func (n *Nebula) Pulse(t float64) float64 {
	return 0.8 + 0.2*math.Sin(t*0.5+n.PulsePhase)
}
