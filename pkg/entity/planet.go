// pkg/entity/planet.go
package entity

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// PlanetParams describes a planet to place in the scene
type PlanetParams struct {
	Name          string          `mapstructure:"name"`
	Position      physics.Vector3 `mapstructure:"position"`
	Radius        float64         `mapstructure:"radius"`
	Color         physics.Vector3 `mapstructure:"color"`
	RotationSpeed float64         `mapstructure:"rotationspeed"`
	HasRings      bool            `mapstructure:"hasrings"`
	HasClouds     bool            `mapstructure:"hasclouds"`
	Mass          float64         `mapstructure:"mass"`
}

// DefaultPlanets returns the stock three-planet system
func DefaultPlanets() []PlanetParams {
	return []PlanetParams{
		{
			Name:          "Gas Giant",
			Position:      physics.Vector3{25, 0, 0},
			Radius:        3.0,
			Color:         physics.Vector3{0.9, 0.7, 0.3},
			RotationSpeed: 0.3,
			HasRings:      true,
			HasClouds:     true,
			Mass:          5000,
		},
		{
			Name:          "Blue",
			Position:      physics.Vector3{-15, 2, -12},
			Radius:        1.8,
			Color:         physics.Vector3{0.2, 0.3, 0.8},
			RotationSpeed: 0.5,
			HasClouds:     true,
			Mass:          2000,
		},
		{
			Name:          "Red",
			Position:      physics.Vector3{10, -3, 18},
			Radius:        2.2,
			Color:         physics.Vector3{0.8, 0.3, 0.2},
			RotationSpeed: 0.4,
			HasRings:      true,
			Mass:          3000,
		},
	}
}

// Planet is a fixed, spinning body that also acts as a gravity source
type Planet struct {
	ecs.BasicEntity
	PlanetParams

	// Rotation is the spin angle in degrees, wrapped to [0,360)
	Rotation float64
}

// NewPlanet creates a planet from its parameters
func NewPlanet(p PlanetParams) *Planet {
	return &Planet{
		BasicEntity:  ecs.NewBasic(),
		PlanetParams: p,
	}
}

// Advance spins the planet
func (p *Planet) Advance(dt float64) {
	p.Rotation = physics.WrapDegrees(p.Rotation + p.RotationSpeed*dt)
}
