package engine

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spaceflight/pkg/event"
)

// System priorities. ecs runs higher priorities first, so these encode the
// per-frame order: ship, collisions, particles, asteroids, scenery, camera,
// then instrumentation. They must stay distinct since the world's sort is
// not stable.
const (
	priorityShip            = 700
	priorityCollision       = 600
	priorityParticles       = 500
	priorityAsteroids       = 400
	priorityScenery         = 300
	priorityCamera          = 200
	priorityInstrumentation = 100
)

// frameSystem is the part every director system shares. Systems read the
// director's float64 frame delta rather than the float32 the world passes.
type frameSystem struct {
	d *Director
}

// Remove is a no-op; director systems own no per-entity state
func (frameSystem) Remove(ecs.BasicEntity) {}

// shipSystem pulls the ship toward every mass source and integrates it
type shipSystem struct{ frameSystem }

func (s *shipSystem) Priority() int { return priorityShip }

func (s *shipSystem) Update(float32) {
	d := s.d
	accel := d.gravity.AccelerationAt(d.ship.Position, d.ship.Mass)
	d.ship.Integrate(d.frameDT, accel)
}

// collisionSystem applies at most one ship-asteroid collision response
type collisionSystem struct{ frameSystem }

func (s *collisionSystem) Priority() int { return priorityCollision }

func (s *collisionSystem) Update(float32) {
	d := s.d
	hit, ok := d.collisions.CheckAndRespond(d.ship, d.asteroids, d.particles, d.camera)
	if !ok {
		return
	}

	d.collisionCount++
	d.lastHit = &hit
	d.metrics.RecordCollision(d.ctx, hit.Material.String())
	d.logger.Debug(d.ctx, "Ship collided with asteroid",
		"asteroid_id", hit.AsteroidID,
		"size", hit.Size,
		"damage", hit.Damage,
		"health", hit.HealthAfter,
	)
	d.bus.Publish(event.NewCollisionEvent(d, hit.AsteroidID, hit.Index, hit.Position,
		hit.Size, hit.Damage, hit.HealthAfter, d.gameTime))
}

// particleSystem emits, integrates and prunes particles
type particleSystem struct{ frameSystem }

func (s *particleSystem) Priority() int { return priorityParticles }

func (s *particleSystem) Update(float32) {
	s.d.particles.Advance(s.d.frameDT)
}

// asteroidSystem tumbles and drifts the asteroid field
type asteroidSystem struct{ frameSystem }

func (s *asteroidSystem) Priority() int { return priorityAsteroids }

func (s *asteroidSystem) Update(float32) {
	s.d.asteroids.Advance(s.d.frameDT)
}

// scenerySystem animates planets, nebulas and the starfield
type scenerySystem struct{ frameSystem }

func (s *scenerySystem) Priority() int { return priorityScenery }

func (s *scenerySystem) Update(float32) {
	d := s.d
	for _, p := range d.planets {
		p.Advance(d.frameDT)
	}
	for _, n := range d.nebulas {
		n.Advance(d.frameDT)
	}
	d.stars.Advance(d.frameDT)
}

// cameraSystem moves the chase camera after everything else has settled
type cameraSystem struct{ frameSystem }

func (s *cameraSystem) Priority() int { return priorityCamera }

func (s *cameraSystem) Update(float32) {
	s.d.camera.Follow(s.d.ship, s.d.frameDT)
}

// instrumentationSystem reports the finished frame to metrics and the sampler
type instrumentationSystem struct {
	frameSystem
	spawned int
	dropped int
}

func (s *instrumentationSystem) Priority() int { return priorityInstrumentation }

func (s *instrumentationSystem) Update(float32) {
	d := s.d
	spawned, dropped := d.particles.Spawned(), d.particles.Dropped()
	d.metrics.RecordParticles(d.ctx, int64(spawned-s.spawned), int64(dropped-s.dropped))
	s.spawned, s.dropped = spawned, dropped

	d.metrics.RecordFrame(d.ctx, d.frameDT, d.particles.Count())
	if d.sampler != nil {
		d.sampler.SampleFrame(d.gameTime, d.ship, d.particles.Count())
	}
}
