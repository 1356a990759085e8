package engine

import (
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/particle"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Snapshot is a copy of everything a renderer needs for one frame
type Snapshot struct {
	Frame      uint64
	GameTime   float64
	Running    bool
	Score      int
	Collisions int

	Ship      ShipState
	Camera    CameraState
	Particles []particle.Particle
	Asteroids []AsteroidState
	Planets   []PlanetState
	Nebulas   []NebulaState
	Stars     []entity.Star
	StarPulse float64
}

// ShipState is the renderable state of the ship
type ShipState struct {
	Position    physics.Vector3
	Velocity    physics.Vector3
	Rotation    physics.Vector3
	EnginePower float64
	EngineGlow  float64
	DamageFlash float64
	Health      float64
	Energy      float64
	Shield      float64
	State       physics.LifeState
	Respawns    int
}

// CameraState is the renderable state of the camera
type CameraState struct {
	Position physics.Vector3
	Target   physics.Vector3
	Roll     float64
	Shaking  bool
}

// AsteroidState is the renderable state of an asteroid
type AsteroidState struct {
	ID         uint64
	Position   physics.Vector3
	Rotation   physics.Vector3
	ShapeScale physics.Vector3
	Size       float64
	Material   entity.MaterialKind
}

// PlanetState is the renderable state of a planet
type PlanetState struct {
	ID        uint64
	Name      string
	Position  physics.Vector3
	Radius    float64
	Color     physics.Vector3
	Rotation  float64
	HasRings  bool
	HasClouds bool
}

// NebulaState is the renderable state of a nebula
type NebulaState struct {
	ID       uint64
	Position physics.Vector3
	Size     float64
	Color    physics.Vector3
	Density  float64
	Rotation float64
	Pulse    float64
}

// Snapshot copies the current scene. It is safe to call while another
// goroutine drives Update.
func (d *Director) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Snapshot{
		Frame:      d.frames,
		GameTime:   d.gameTime,
		Running:    d.running,
		Score:      d.score,
		Collisions: d.collisionCount,
		Ship:       d.shipState(),
		Camera: CameraState{
			Position: d.camera.Position,
			Target:   d.camera.Target,
			Roll:     d.camera.Roll,
			Shaking:  d.camera.Shaking(),
		},
		Particles: append([]particle.Particle(nil), d.particles.Particles()...),
		Asteroids: d.asteroidStates(),
		Planets:   d.planetStates(),
		Nebulas:   d.nebulaStates(),
		Stars:     append([]entity.Star(nil), d.stars.Stars()...),
		StarPulse: d.stars.Pulse(),
	}
}

func (d *Director) shipState() ShipState {
	s := d.ship
	return ShipState{
		Position:    s.Position,
		Velocity:    s.Velocity,
		Rotation:    s.Rotation,
		EnginePower: s.EnginePower,
		EngineGlow:  s.EngineGlow,
		DamageFlash: s.DamageFlash,
		Health:      s.Health,
		Energy:      s.Energy,
		Shield:      s.Shield,
		State:       s.State(),
		Respawns:    s.Respawns(),
	}
}

func (d *Director) asteroidStates() []AsteroidState {
	asteroids := d.asteroids.Asteroids()
	states := make([]AsteroidState, len(asteroids))
	for i := range asteroids {
		a := &asteroids[i]
		states[i] = AsteroidState{
			ID:         a.ID(),
			Position:   a.Position,
			Rotation:   a.Rotation,
			ShapeScale: a.ShapeScale,
			Size:       a.Size,
			Material:   a.Material,
		}
	}
	return states
}

func (d *Director) planetStates() []PlanetState {
	states := make([]PlanetState, len(d.planets))
	for i, p := range d.planets {
		states[i] = PlanetState{
			ID:        p.ID(),
			Name:      p.Name,
			Position:  p.Position,
			Radius:    p.Radius,
			Color:     p.Color,
			Rotation:  p.Rotation,
			HasRings:  p.HasRings,
			HasClouds: p.HasClouds,
		}
	}
	return states
}

func (d *Director) nebulaStates() []NebulaState {
	states := make([]NebulaState, len(d.nebulas))
	for i, n := range d.nebulas {
		states[i] = NebulaState{
			ID:       n.ID(),
			Position: n.Position,
			Size:     n.Size,
			Color:    n.Color,
			Density:  n.Density,
			Rotation: n.Rotation,
			Pulse:    n.Pulse(d.gameTime),
		}
	}
	return states
}
