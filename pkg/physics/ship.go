// pkg/physics/ship.go
package physics

import (
	"math"
)

const (
	// MaxHealth is the ceiling for ship health
	MaxHealth = 100.0

	engineGlowRampRate   = 5.0 // per second while thrusting
	engineGlowDecayRate  = 3.0 // per second while coasting
	damageFlashDecayRate = 2.0 // per second

	exhaustOffset         = 1.2
	exhaustVelocityFactor = -0.5
)

// LifeState is the ship's lifecycle stage
type LifeState int

const (
	Alive LifeState = iota
	Destroyed
	Respawning
)

func (s LifeState) String() string {
	switch s {
	case Alive:
		return "alive"
	case Destroyed:
		return "destroyed"
	case Respawning:
		return "respawning"
	default:
		return "unknown"
	}
}

// ShipParams are the tunable constants of a ShipBody
type ShipParams struct {
	Mass           float64
	ThrustPower    float64
	RotationPower  float64
	LinearDamping  float64
	AngularDamping float64
	Health         float64
	Energy         float64
	Shield         float64
}

// DefaultShipParams returns the stock flight model
func DefaultShipParams() ShipParams {
	return ShipParams{
		Mass:           1000,
		ThrustPower:    0.5,
		RotationPower:  2.0,
		LinearDamping:  0.98,
		AngularDamping: 0.95,
		Health:         MaxHealth,
		Energy:         100,
		Shield:         50,
	}
}

// TransitionFunc observes lifecycle changes
type TransitionFunc func(from, to LifeState)

// ShipBody is the player craft's rigid body. Rotation is Euler degrees
// (pitch, yaw, roll) kept in [0,360).
type ShipBody struct {
	Position        Vector3
	Velocity        Vector3
	Rotation        Vector3
	AngularVelocity Vector3

	Mass           float64
	ThrustPower    float64
	RotationPower  float64
	LinearDamping  float64
	AngularDamping float64

	// EnginePower is the magnitude of the last thrust intent, 0 when coasting
	EnginePower float64
	EngineGlow  float64
	DamageFlash float64

	Health float64
	Energy float64
	Shield float64

	state        LifeState
	respawns     int
	onTransition TransitionFunc
}

// NewShipBody creates a ship at the origin with the given parameters
func NewShipBody(p ShipParams) *ShipBody {
	health := p.Health
	if health <= 0 || health > MaxHealth {
		health = MaxHealth
	}
	return &ShipBody{
		Mass:           p.Mass,
		ThrustPower:    p.ThrustPower,
		RotationPower:  p.RotationPower,
		LinearDamping:  p.LinearDamping,
		AngularDamping: p.AngularDamping,
		Health:         health,
		Energy:         p.Energy,
		Shield:         p.Shield,
		state:          Alive,
	}
}

// OnTransition registers an observer for lifecycle changes. Pass nil to clear.
func (s *ShipBody) OnTransition(fn TransitionFunc) {
	s.onTransition = fn
}

// State returns the current lifecycle state
func (s *ShipBody) State() LifeState {
	return s.state
}

// Respawns returns how many times the ship has been destroyed and restored
func (s *ShipBody) Respawns() int {
	return s.respawns
}

// ApplyThrust adds local-frame thrust rotated by the current yaw.
// A zero intent marks the engine idle so the glow can decay.
func (s *ShipBody) ApplyThrust(direction Vector3, dt float64) {
	power := direction.Len()
	if power == 0 {
		s.EnginePower = 0
		return
	}

	local := direction.Mul(s.ThrustPower * dt)
	s.Velocity = s.Velocity.Add(RotateYaw(local, s.Rotation[1]))

	s.EnginePower = power
	s.EngineGlow = math.Min(1, s.EngineGlow+engineGlowRampRate*dt)
}

// CutThrust marks the engine idle without touching velocity
func (s *ShipBody) CutThrust() {
	s.EnginePower = 0
}

// ApplyRotation adds an angular impulse scaled by the rotation power
func (s *ShipBody) ApplyRotation(input Vector3, dt float64) {
	s.AngularVelocity = s.AngularVelocity.Add(input.Mul(s.RotationPower * dt))
}

// Integrate advances the body by dt under an optional external acceleration.
// Damping is applied per call, not per second.
func (s *ShipBody) Integrate(dt float64, acceleration Vector3) {
	s.Velocity = s.Velocity.Add(acceleration.Mul(dt))
	s.Position = s.Position.Add(s.Velocity.Mul(dt))
	s.Rotation = WrapEuler(s.Rotation.Add(s.AngularVelocity.Mul(dt)))

	s.Velocity = s.Velocity.Mul(s.LinearDamping)
	s.AngularVelocity = s.AngularVelocity.Mul(s.AngularDamping)

	if s.EnginePower <= 0 {
		s.EngineGlow = math.Max(0, s.EngineGlow-engineGlowDecayRate*dt)
	}
	if s.DamageFlash > 0 {
		s.DamageFlash = math.Max(0, s.DamageFlash-damageFlashDecayRate*dt)
	}
	s.EngineGlow = Clamp(s.EngineGlow, 0, 1)
}

// ApplyDamage subtracts health and flashes the hull. When health reaches
// zero the ship passes through Destroyed and Respawning back to Alive at
// the origin with full health. Returns true if the ship was destroyed.
// Negative amounts heal, capped at MaxHealth.
func (s *ShipBody) ApplyDamage(amount float64) bool {
	s.Health = math.Min(MaxHealth, s.Health-amount)
	s.DamageFlash = 1

	if s.Health > 0 {
		return false
	}

	s.Health = 0
	s.transition(Destroyed)
	s.transition(Respawning)
	s.Position = Vector3{}
	s.Velocity = Vector3{}
	s.Health = MaxHealth
	s.respawns++
	s.transition(Alive)
	return true
}

func (s *ShipBody) transition(to LifeState) {
	from := s.state
	s.state = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// EmitterPosition is the exhaust point behind the hull, following yaw
func (s *ShipBody) EmitterPosition() Vector3 {
	yaw := s.Rotation[1] * math.Pi / 180
	return s.Position.Add(Vector3{
		math.Sin(yaw) * -exhaustOffset,
		0,
		math.Cos(yaw) * exhaustOffset,
	})
}

// EmitterVelocity is the base velocity of exhaust particles
func (s *ShipBody) EmitterVelocity() Vector3 {
	return s.Velocity.Mul(exhaustVelocityFactor)
}

// Speed returns the magnitude of the ship's velocity
func (s *ShipBody) Speed() float64 {
	return s.Velocity.Len()
}
