package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/particle"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

func testCollisionConfig(broadPhase bool) config.CollisionConfig {
	cfg := config.DefaultConfig().Collision
	cfg.BroadPhase = broadPhase
	return cfg
}

func TestCollisionSystem_FirstHitWins(t *testing.T) {
	for _, broad := range []bool{false, true} {
		name := "linear"
		if broad {
			name = "broad_phase"
		}
		t.Run(name, func(t *testing.T) {
			field := entity.NewAsteroidField(nil)
			// both overlap the ship; the farther one comes first in field order
			field.Add(entity.Asteroid{Position: physics.Vector3{1.0, 0, 0}, Size: 0.5})
			field.Add(entity.Asteroid{Position: physics.Vector3{0.2, 0, 0}, Size: 0.5})

			ship := physics.NewShipBody(physics.DefaultShipParams())
			cs := NewCollisionSystem(testCollisionConfig(broad))

			i, ok := cs.Detect(ship, field)
			if !ok || i != 0 {
				t.Errorf("Detect = %d, %v; want 0, true", i, ok)
			}
		})
	}
}

func TestCollisionSystem_BroadPhaseMatchesLinear(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	field := entity.NewAsteroidField(rng)
	field.Generate(300)

	linear := NewCollisionSystem(testCollisionConfig(false))
	broad := NewCollisionSystem(testCollisionConfig(true))
	ship := physics.NewShipBody(physics.DefaultShipParams())

	points := []physics.Vector3{{}, {500, 0, 500}}
	for i := 0; i < 100; i++ {
		// near an asteroid so hits are common
		a := field.At(rng.IntN(field.Len()))
		points = append(points, a.Position.Add(physics.Vector3{
			rng.Float64()*6 - 3, rng.Float64()*2 - 1, rng.Float64()*6 - 3,
		}))
	}

	hits := 0
	for _, p := range points {
		ship.Position = p
		li, lok := linear.Detect(ship, field)
		bi, bok := broad.Detect(ship, field)
		if li != bi || lok != bok {
			t.Fatalf("At %v linear=(%d,%v) broad=(%d,%v)", p, li, lok, bi, bok)
		}
		if lok {
			hits++
		}
	}
	if hits == 0 {
		t.Error("Expected at least one point to collide")
	}
}

func TestCollisionSystem_EmptyField(t *testing.T) {
	for _, broad := range []bool{false, true} {
		cs := NewCollisionSystem(testCollisionConfig(broad))
		if _, ok := cs.Detect(physics.NewShipBody(physics.DefaultShipParams()), entity.NewAsteroidField(nil)); ok {
			t.Errorf("Collision reported in an empty field (broad=%v)", broad)
		}
	}
}

func TestCollisionSystem_CheckAndRespond(t *testing.T) {
	field := entity.NewAsteroidField(nil)
	field.Add(entity.Asteroid{Position: physics.Vector3{0, 0, 1.5}, Size: 1.0, Material: entity.Metal})

	ship := physics.NewShipBody(physics.DefaultShipParams())
	ship.Position = physics.Vector3{0, 0, 0.2}
	particles := particle.NewSystem(rand.New(rand.NewPCG(1, 1)), 0)
	cam := NewCamera(config.DefaultConfig().Camera, nil)
	cs := NewCollisionSystem(testCollisionConfig(false))

	hit, ok := cs.CheckAndRespond(ship, field, particles, cam)
	if !ok {
		t.Fatal("Expected a collision")
	}
	if hit.Spawned != 50 || particles.Count() != 50 {
		t.Errorf("Expected 50 explosion particles, got %d (%d live)", hit.Spawned, particles.Count())
	}
	for _, p := range particles.Particles() {
		if p.Position != (physics.Vector3{0, 0, 0.2}) {
			t.Fatalf("Explosion particle at %v, want the ship position", p.Position)
		}
	}
	if !approxEqual(cam.ShakeIntensity, 0.5) || !approxEqual(cam.ShakeTimer, 0.5) {
		t.Errorf("Unexpected shake %v / %v", cam.ShakeIntensity, cam.ShakeTimer)
	}
	if !approxEqual(hit.Damage, 10) || !approxEqual(ship.Health, 90) || hit.HealthAfter != ship.Health {
		t.Errorf("Unexpected damage %v, health %v, reported %v", hit.Damage, ship.Health, hit.HealthAfter)
	}
	if hit.Material != entity.Metal || hit.Destroyed {
		t.Errorf("Unexpected hit %+v", hit)
	}
	if ship.DamageFlash != 1 {
		t.Errorf("Expected full damage flash, got %v", ship.DamageFlash)
	}
}

func TestCollisionSystem_NilCamera(t *testing.T) {
	field := entity.NewAsteroidField(nil)
	field.Add(entity.Asteroid{Size: 1})
	ship := physics.NewShipBody(physics.DefaultShipParams())

	cs := NewCollisionSystem(testCollisionConfig(false))
	if _, ok := cs.CheckAndRespond(ship, field, particle.NewSystem(nil, 0), nil); !ok {
		t.Error("Expected a collision without a camera")
	}
}
