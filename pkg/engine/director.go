// Package engine runs the flight simulation. The Director owns every
// simulation component and advances them in a fixed order once per frame;
// presentation layers feed it input and read snapshots back.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/event"
	"github.com/opd-ai/go-spaceflight/pkg/logging"
	"github.com/opd-ai/go-spaceflight/pkg/particle"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
	"github.com/opd-ai/go-spaceflight/pkg/telemetry"
)

// Random streams, one per consumer, so particle draws never shift the
// generated scene for a given seed.
const (
	streamAsteroids uint64 = iota + 1
	streamParticles
	streamScenery
	streamCamera
)

// FrameSampler receives the state of every finished frame
type FrameSampler interface {
	SampleFrame(gameTime float64, ship *physics.ShipBody, particles int) bool
}

// Option configures a Director
type Option func(*Director)

// WithEventBus publishes simulation events on bus instead of a private one
func WithEventBus(bus *event.Bus) Option {
	return func(d *Director) { d.bus = bus }
}

// WithMetrics records simulation metrics on m
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Director) { d.metrics = m }
}

// WithSampler hands every finished frame to s
func WithSampler(s FrameSampler) Option {
	return func(d *Director) { d.sampler = s }
}

// WithFlightID tags logs and events with id instead of a generated one
func WithFlightID(id string) Option {
	return func(d *Director) { d.flightID = id }
}

// Director is the scene director. All mutation happens inside HandleInput
// and Update; the read accessors and Snapshot may be called from other
// goroutines. Event handlers run inside Update and must not call back into
// the Director.
type Director struct {
	cfg      *config.Config
	logger   *logging.Logger
	ctx      context.Context
	flightID string
	seed     uint64

	gravity    *physics.GravityField
	ship       *physics.ShipBody
	particles  *particle.System
	asteroids  *entity.AsteroidField
	planets    []*entity.Planet
	nebulas    []*entity.Nebula
	stars      *entity.Starfield
	camera     *Camera
	collisions *CollisionSystem

	world   *ecs.World
	bus     *event.Bus
	metrics *telemetry.Metrics
	sampler FrameSampler

	mu             sync.RWMutex
	running        bool
	frameDT        float64
	gameTime       float64
	frames         uint64
	score          int
	collisionCount int
	lastHit        *Hit
}

// New builds the scene described by cfg: the ship, planets registered as
// gravity sources, nebulas, the starfield and the asteroid field, plus the
// ship's exhaust trail.
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Director, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid director config: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	d := &Director{
		cfg:    cfg,
		logger: logger,
		seed:   cfg.Seed,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.seed == 0 {
		d.seed = uint64(time.Now().UnixNano())
	}
	if d.flightID == "" {
		d.flightID = logging.GenerateFlightID()
	}
	if d.bus == nil {
		d.bus = event.NewEventBus()
	}
	if d.metrics == nil {
		d.metrics = telemetry.NewNop()
	}
	d.ctx = logging.WithFlightID(context.Background(), d.flightID)

	d.initScene()
	d.initSystems()

	d.logger.Info(d.ctx, "Scene ready",
		"seed", d.seed,
		"asteroids", d.asteroids.Len(),
		"planets", len(d.planets),
		"nebulas", len(d.nebulas),
		"stars", len(d.stars.Stars()),
	)
	return d, nil
}

func (d *Director) stream(id uint64) *rand.Rand {
	return rand.New(rand.NewPCG(d.seed, id))
}

// initScene creates every simulation component
func (d *Director) initScene() {
	cfg := d.cfg

	d.gravity = physics.NewGravityField(cfg.Simulation.GravityConstant)
	for _, p := range cfg.Planets {
		planet := entity.NewPlanet(p)
		d.planets = append(d.planets, planet)
		d.gravity.AddSource(p.Position, p.Mass)
	}

	scenery := d.stream(streamScenery)
	for _, n := range cfg.Nebulas {
		d.nebulas = append(d.nebulas, entity.NewNebula(n, scenery))
	}
	d.stars = entity.NewStarfield(cfg.Simulation.StarCount, scenery)

	d.asteroids = entity.NewAsteroidField(d.stream(streamAsteroids))
	d.asteroids.Generate(cfg.Simulation.AsteroidCount)

	d.ship = physics.NewShipBody(cfg.Ship.Params())
	d.ship.OnTransition(d.handleTransition)

	d.particles = particle.NewSystem(d.stream(streamParticles), cfg.Simulation.MaxParticles)
	if cfg.Simulation.TrailEnabled {
		d.particles.AddTrailEmitter(d.ship)
	}

	d.camera = NewCamera(cfg.Camera, d.stream(streamCamera))
	d.collisions = NewCollisionSystem(cfg.Collision)
}

// initSystems registers the per-frame systems with the ecs world
func (d *Director) initSystems() {
	base := frameSystem{d: d}
	d.world = &ecs.World{}
	d.world.AddSystem(&shipSystem{base})
	d.world.AddSystem(&collisionSystem{base})
	d.world.AddSystem(&particleSystem{base})
	d.world.AddSystem(&asteroidSystem{base})
	d.world.AddSystem(&scenerySystem{base})
	d.world.AddSystem(&cameraSystem{base})
	d.world.AddSystem(&instrumentationSystem{frameSystem: base})
}

// handleTransition republishes ship lifecycle changes on the bus
func (d *Director) handleTransition(from, to physics.LifeState) {
	d.bus.Publish(event.NewLifecycleEvent(event.ShipLifecycle, d, from, to, d.gameTime))

	switch {
	case to == physics.Destroyed:
		d.logger.Info(d.ctx, "Ship destroyed", "game_time", d.gameTime)
		d.bus.Publish(event.NewLifecycleEvent(event.ShipDestroyed, d, from, to, d.gameTime))
	case from == physics.Respawning && to == physics.Alive:
		d.metrics.RecordRespawn(d.ctx)
		d.logger.Info(d.ctx, "Ship respawned", "respawns", d.ship.Respawns())
		d.bus.Publish(event.NewLifecycleEvent(event.ShipRespawned, d, from, to, d.gameTime))
	}
}

// Start marks the simulation running and announces the flight
func (d *Director) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.logger.Info(d.ctx, "Simulation started", "seed", d.seed)
	d.bus.Publish(event.NewSimulationEvent(event.SimulationStarted, d, d.flightID, d.seed, d.gameTime))
}

// Stop clears the running flag and announces the end of the flight
func (d *Director) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.running = false
	d.logger.Info(d.ctx, "Simulation stopped",
		"game_time", d.gameTime,
		"frames", d.frames,
		"collisions", d.collisionCount,
	)
	d.bus.Publish(event.NewSimulationEvent(event.SimulationStopped, d, d.flightID, d.seed, d.gameTime))
}

// HandleInput feeds player intent into the ship. A zero thrust intent cuts
// engine power; a zero rotation intent leaves angular velocity alone.
func (d *Director) HandleInput(thrust, rotation physics.Vector3, dt float64) {
	dt = sanitizeDelta(dt)

	d.mu.Lock()
	defer d.mu.Unlock()

	if physics.IsZero(thrust) {
		d.ship.CutThrust()
	} else {
		d.ship.ApplyThrust(thrust, dt)
	}
	if !physics.IsZero(rotation) {
		d.ship.ApplyRotation(rotation, dt)
	}
}

// Update advances the simulation by dt seconds. Negative or non-finite dt
// is treated as zero.
func (d *Director) Update(dt float64) {
	dt = sanitizeDelta(dt)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.frameDT = dt
	d.gameTime += dt
	d.lastHit = nil
	d.world.Update(float32(dt))
	d.frames++
}

// Running reports whether Start has been called without a matching Stop
func (d *Director) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// GameTime returns the accumulated simulation time in seconds
func (d *Director) GameTime() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gameTime
}

// Frames returns how many updates have run
func (d *Director) Frames() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}

// Score is reserved for a scoring rule; nothing awards points yet
func (d *Director) Score() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.score
}

// Collisions returns how many collision responses have been applied
func (d *Director) Collisions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.collisionCount
}

// LastHit returns the collision applied by the most recent Update, if any
func (d *Director) LastHit() (Hit, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lastHit == nil {
		return Hit{}, false
	}
	return *d.lastHit, true
}

// Seed returns the seed the scene was generated from
func (d *Director) Seed() uint64 {
	return d.seed
}

// FlightID returns the ID attached to this run's logs and events
func (d *Director) FlightID() string {
	return d.flightID
}

// Context returns a context carrying the flight ID
func (d *Director) Context() context.Context {
	return d.ctx
}

// Bus returns the event bus simulation events are published on
func (d *Director) Bus() *event.Bus {
	return d.bus
}

// The component accessors below expose live state for tests and in-process
// tools. They are not synchronized; use Snapshot from other goroutines.

// Ship returns the live ship body
func (d *Director) Ship() *physics.ShipBody {
	return d.ship
}

// Camera returns the live camera
func (d *Director) Camera() *Camera {
	return d.camera
}

// Particles returns the live particle system
func (d *Director) Particles() *particle.System {
	return d.particles
}

// Asteroids returns the live asteroid field
func (d *Director) Asteroids() *entity.AsteroidField {
	return d.asteroids
}

// Gravity returns the gravity field built from the planets
func (d *Director) Gravity() *physics.GravityField {
	return d.gravity
}

// CollisionSystem returns the collision detector and responder
func (d *Director) CollisionSystem() *CollisionSystem {
	return d.collisions
}
