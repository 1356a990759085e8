// Package particle implements timed particles fed by explosions and
// continuous trail emitters.
package particle

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

const (
	// DefaultMaxParticles bounds the active set unless configured otherwise
	DefaultMaxParticles = 10000

	explosionBaseCount = 50
	explosionSpeed     = 10.0
	velocityDamping    = 0.95
	minParticleSize    = 0.01

	// absorbs float drift so rate*T emissions come out whole
	accumulatorEpsilon = 1e-9
)

// ExplosionPalette holds the colours an explosion particle is drawn from
var ExplosionPalette = []physics.Vector3{
	{1.0, 0.5, 0.0}, // orange
	{1.0, 1.0, 0.0}, // yellow
	{1.0, 0.0, 0.0}, // red
	{0.8, 0.8, 0.8}, // grey-white
}

// Particle is a single timed point sprite
type Particle struct {
	Position physics.Vector3
	Velocity physics.Vector3
	Color    physics.Vector3
	Age      float64
	Lifetime float64
	Size     float64
	Growth   float64
}

// Alpha fades linearly from 1 at birth to 0 at the end of life
func (p Particle) Alpha() float64 {
	if p.Lifetime <= 0 {
		return 0
	}
	return physics.Clamp(1-p.Age/p.Lifetime, 0, 1)
}

// Source is polled by an emitter each time it spawns a particle
type Source interface {
	EmitterPosition() physics.Vector3
	EmitterVelocity() physics.Vector3
}

// SourceFuncs adapts a pair of functions to a Source
type SourceFuncs struct {
	Position func() physics.Vector3
	Velocity func() physics.Vector3
}

func (s SourceFuncs) EmitterPosition() physics.Vector3 { return s.Position() }
func (s SourceFuncs) EmitterVelocity() physics.Vector3 { return s.Velocity() }

// EmitterConfig describes the particles a continuous emitter spawns
type EmitterConfig struct {
	Rate          float64 // particles per second
	VelocityNoise float64 // uniform per-axis perturbation half-width
	LifetimeMin   float64
	LifetimeMax   float64
	SizeMin       float64
	SizeMax       float64
	Color         physics.Vector3
	Growth        float64
}

// TrailConfig is the engine exhaust emitter
func TrailConfig() EmitterConfig {
	return EmitterConfig{
		Rate:          20,
		VelocityNoise: 0.5,
		LifetimeMin:   0.3,
		LifetimeMax:   1.0,
		SizeMin:       0.05,
		SizeMax:       0.2,
		Color:         physics.Vector3{0.7, 0.8, 1.0},
		Growth:        -0.3,
	}
}

// Emitter is a continuous particle source
type Emitter struct {
	source      Source
	config      EmitterConfig
	accumulator float64
	emitted     int
}

// Emitted returns how many particles this emitter has spawned
func (e *Emitter) Emitted() int {
	return e.emitted
}

// Config returns the emitter's configuration
func (e *Emitter) Config() EmitterConfig {
	return e.config
}

// System owns the active particle set and its emitters. Not safe for
// concurrent use.
type System struct {
	particles    []Particle
	emitters     []*Emitter
	rng          *rand.Rand
	maxParticles int
	spawned      int
	dropped      int
}

// NewSystem creates an empty system drawing randomness from rng.
// maxParticles <= 0 disables the cap.
func NewSystem(rng *rand.Rand, maxParticles int) *System {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &System{
		rng:          rng,
		maxParticles: maxParticles,
	}
}

// SpawnExplosion bursts round(50*intensity) particles at origin
func (s *System) SpawnExplosion(origin physics.Vector3, intensity float64) int {
	count := int(math.Round(explosionBaseCount * intensity))
	if count <= 0 || math.IsNaN(intensity) {
		return 0
	}

	spawned := 0
	for i := 0; i < count; i++ {
		p := Particle{
			Position: origin,
			Velocity: physics.Vector3{
				s.uniform(-explosionSpeed, explosionSpeed) * intensity,
				s.uniform(-explosionSpeed, explosionSpeed) * intensity,
				s.uniform(-explosionSpeed, explosionSpeed) * intensity,
			},
			Lifetime: s.uniform(0.5, 2.0),
			Size:     s.uniform(0.1, 0.8) * intensity,
			Color:    ExplosionPalette[s.rng.IntN(len(ExplosionPalette))],
			Growth:   s.uniform(-0.5, 0.2),
		}
		if s.add(p) {
			spawned++
		}
	}
	return spawned
}

// AddTrailEmitter registers a 20/sec exhaust emitter polling src
func (s *System) AddTrailEmitter(src Source) *Emitter {
	return s.AddEmitter(src, TrailConfig())
}

// AddEmitter registers a continuous emitter with a custom configuration
func (s *System) AddEmitter(src Source, cfg EmitterConfig) *Emitter {
	e := &Emitter{source: src, config: cfg}
	s.emitters = append(s.emitters, e)
	return e
}

// Advance emits due particles, integrates every particle and removes the
// ones whose age reached their lifetime. Damping is per call. A zero or
// negative dt leaves all state unchanged.
func (s *System) Advance(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}

	for _, e := range s.emitters {
		s.emit(e, dt)
	}

	alive := s.particles[:0]
	for _, p := range s.particles {
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		p.Size = math.Max(minParticleSize, p.Size+p.Growth*dt)
		p.Velocity = p.Velocity.Mul(velocityDamping)
		p.Age += dt
		if p.Age >= p.Lifetime {
			continue
		}
		alive = append(alive, p)
	}
	s.particles = alive
}

func (s *System) emit(e *Emitter, dt float64) {
	e.accumulator += e.config.Rate * dt
	for e.accumulator+accumulatorEpsilon >= 1 {
		e.accumulator--
		base := e.source.EmitterVelocity()
		noise := e.config.VelocityNoise
		p := Particle{
			Position: e.source.EmitterPosition(),
			Velocity: physics.Vector3{
				base[0] + s.uniform(-noise, noise),
				base[1] + s.uniform(-noise, noise),
				base[2] + s.uniform(-noise, noise),
			},
			Lifetime: s.uniform(e.config.LifetimeMin, e.config.LifetimeMax),
			Size:     s.uniform(e.config.SizeMin, e.config.SizeMax),
			Color:    e.config.Color,
			Growth:   e.config.Growth,
		}
		if s.add(p) {
			e.emitted++
		}
	}
}

func (s *System) add(p Particle) bool {
	if s.maxParticles > 0 && len(s.particles) >= s.maxParticles {
		s.dropped++
		return false
	}
	s.particles = append(s.particles, p)
	s.spawned++
	return true
}

func (s *System) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Particles returns the active set. The slice is only valid until the
// next mutating call and must not be modified.
func (s *System) Particles() []Particle {
	return s.particles
}

// Count returns the number of active particles
func (s *System) Count() int {
	return len(s.particles)
}

// Spawned returns how many particles have ever been accepted
func (s *System) Spawned() int {
	return s.spawned
}

// Dropped returns how many particles were refused by the cap
func (s *System) Dropped() int {
	return s.dropped
}

// Emitters returns the registered emitters
func (s *System) Emitters() []*Emitter {
	return s.emitters
}

// Clear removes every particle, keeping emitters and their accumulators
func (s *System) Clear() {
	s.particles = s.particles[:0]
}
