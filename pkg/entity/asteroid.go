// pkg/entity/asteroid.go
package entity

import (
	"math"
	"math/rand/v2"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

const (
	asteroidMinRadius = 30.0
	asteroidMaxRadius = 100.0
	asteroidFlatten   = 0.3
	driftAmplitude    = 0.1
)

// MaterialKind is the surface type of an asteroid
type MaterialKind int

const (
	Rock MaterialKind = iota
	Ice
	Metal
)

var materialNames = [...]string{"rock", "ice", "metal"}

func (m MaterialKind) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return "unknown"
	}
	return materialNames[m]
}

var materialDiffuse = [...]physics.Vector3{
	{0.5, 0.4, 0.3},
	{0.7, 0.8, 0.9},
	{0.6, 0.6, 0.6},
}

// Diffuse returns the base colour of the material
func (m MaterialKind) Diffuse() physics.Vector3 {
	if m < 0 || int(m) >= len(materialDiffuse) {
		return materialDiffuse[Rock]
	}
	return materialDiffuse[m]
}

// Asteroid is a drifting, tumbling obstacle. Asteroids are never created or
// destroyed after generation.
type Asteroid struct {
	ecs.BasicEntity

	Position      physics.Vector3
	Rotation      physics.Vector3 // Euler degrees in [0,360)
	RotationSpeed physics.Vector3 // degrees per second per axis
	ShapeScale    physics.Vector3
	Size          float64
	DriftSpeed    float64
	Material      MaterialKind
}

// Collider returns the asteroid's bounding sphere
func (a *Asteroid) Collider() physics.Sphere {
	return physics.Sphere{Center: a.Position, Radius: a.Size}
}

// AsteroidField owns the asteroid set
type AsteroidField struct {
	asteroids []Asteroid
	rng       *rand.Rand
}

// NewAsteroidField creates an empty field drawing randomness from rng
func NewAsteroidField(rng *rand.Rand) *AsteroidField {
	return &AsteroidField{rng: newRand(rng)}
}

// Generate appends count asteroids on a flattened spherical shell
func (f *AsteroidField) Generate(count int) {
	for i := 0; i < count; i++ {
		pos := sphericalPoint(f.rng, asteroidMinRadius, asteroidMaxRadius)
		pos[1] *= asteroidFlatten

		f.asteroids = append(f.asteroids, Asteroid{
			BasicEntity:   ecs.NewBasic(),
			Position:      pos,
			Rotation:      uniformVec(f.rng, 0, 360),
			RotationSpeed: uniformVec(f.rng, -30, 30),
			Size:          uniform(f.rng, 0.3, 2.5),
			ShapeScale:    uniformVec(f.rng, 0.7, 1.3),
			DriftSpeed:    uniform(f.rng, 0.01, 0.1),
			Material:      MaterialKind(f.rng.IntN(len(materialNames))),
		})
	}
}

// Add inserts a hand-placed asteroid and returns its index
func (f *AsteroidField) Add(a Asteroid) int {
	if a.ID() == 0 {
		a.BasicEntity = ecs.NewBasic()
	}
	a.Rotation = physics.WrapEuler(a.Rotation)
	f.asteroids = append(f.asteroids, a)
	return len(f.asteroids) - 1
}

// Advance tumbles every asteroid and applies the frame drift.
// The drift term depends on dt itself, not on elapsed time.
func (f *AsteroidField) Advance(dt float64) {
	for i := range f.asteroids {
		a := &f.asteroids[i]
		a.Rotation = physics.WrapEuler(a.Rotation.Add(a.RotationSpeed.Mul(dt)))

		drift := math.Sin(dt*a.DriftSpeed) * driftAmplitude
		a.Position[0] += drift
		a.Position[2] += drift * 0.5
	}
}

// Asteroids returns the live asteroid slice. Callers must not retain it
// across frames or modify it.
func (f *AsteroidField) Asteroids() []Asteroid {
	return f.asteroids
}

// At returns the asteroid at index i
func (f *AsteroidField) At(i int) *Asteroid {
	return &f.asteroids[i]
}

// Len returns the number of asteroids
func (f *AsteroidField) Len() int {
	return len(f.asteroids)
}
