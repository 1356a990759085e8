package engo

import (
	"image/color"
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/particle"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// fakeSink records what a common.RenderSystem would draw
type fakeSink struct {
	renders map[uint64]*common.RenderComponent
	spaces  map[uint64]*common.SpaceComponent
	removed int
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		renders: make(map[uint64]*common.RenderComponent),
		spaces:  make(map[uint64]*common.SpaceComponent),
	}
}

func (f *fakeSink) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	f.renders[basic.ID()] = render
	f.spaces[basic.ID()] = space
}

func (f *fakeSink) Remove(basic ecs.BasicEntity) {
	if _, ok := f.renders[basic.ID()]; ok {
		f.removed++
	}
	delete(f.renders, basic.ID())
	delete(f.spaces, basic.ID())
}

func (f *fakeSink) visible() int {
	n := 0
	for _, r := range f.renders {
		if !r.Hidden {
			n++
		}
	}
	return n
}

func sceneSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Ship: engine.ShipState{Position: physics.Vector3{1, 0, 2}, Rotation: physics.Vector3{0, 90, 0}},
		Asteroids: []engine.AsteroidState{
			{ID: 101, Position: physics.Vector3{4, 0, 4}, Size: 0.5, Material: entity.Ice},
			{ID: 102, Position: physics.Vector3{-4, 0, 4}, Size: 1.0, Material: entity.Metal},
		},
		Planets: []engine.PlanetState{
			{ID: 201, Radius: 3, Color: physics.Vector3{1, 0.5, 0}, HasRings: true},
			{ID: 202, Radius: 1, Color: physics.Vector3{0, 0, 1}},
		},
		Nebulas: []engine.NebulaState{
			{ID: 301, Size: 8, Pulse: 1, Density: 0.4, Color: physics.Vector3{0.6, 0.3, 0.8}},
		},
		Particles: []particle.Particle{
			{Lifetime: 1, Size: 0.1, Color: physics.Vector3{1, 1, 1}},
			{Lifetime: 1, Age: 0.5, Size: 0.2, Color: physics.Vector3{1, 0, 0}},
		},
		Stars: []entity.Star{
			{Size: 0.05, Color: physics.Vector3{1, 1, 1}, CurrentBrightness: 0.5},
		},
	}
}

func TestEngoRenderer_Render_CreatesSprites(t *testing.T) {
	sink := newFakeSink()
	r := NewEngoRenderer(sink, nil)

	if err := r.Render(sceneSnapshot()); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	// ship + 2 asteroids + 2 planets + 1 ring + 1 nebula + 2 particles + 1 star
	if len(sink.renders) != 10 {
		t.Errorf("Expected 10 sprites, got %d", len(sink.renders))
	}
	if len(r.asteroids) != 2 || len(r.planets) != 2 || len(r.rings) != 1 || len(r.nebulas) != 1 {
		t.Errorf("Unexpected keyed sprites: %d asteroids, %d planets, %d rings, %d nebulas",
			len(r.asteroids), len(r.planets), len(r.rings), len(r.nebulas))
	}
}

func TestEngoRenderer_Render_PlacesShip(t *testing.T) {
	r := NewEngoRenderer(newFakeSink(), nil)
	_ = r.Render(sceneSnapshot())

	ship := r.ship
	size := float32(1.6 * PixelsPerUnit)
	want := engo.Point{X: PixelsPerUnit - size/2, Y: 2*PixelsPerUnit - size/2}
	if ship.Position != want {
		t.Errorf("Ship sprite at %v, want %v", ship.Position, want)
	}
	if ship.Width != size || ship.Rotation != 90 {
		t.Errorf("Unexpected ship size %v / rotation %v", ship.Width, ship.Rotation)
	}
	if ship.Scale.X != size/shipSpriteSize {
		t.Errorf("Unexpected ship scale %v", ship.Scale)
	}
}

func TestEngoRenderer_Render_Colors(t *testing.T) {
	r := NewEngoRenderer(newFakeSink(), nil)
	_ = r.Render(sceneSnapshot())

	if got := r.asteroids[102].Color; got != (color.NRGBA{153, 153, 153, 255}) {
		t.Errorf("Expected metal diffuse colour, got %v", got)
	}
	if got := r.particles[1].Color.(color.NRGBA); got.A != 128 || got.R != 255 {
		t.Errorf("Expected a half-faded red particle, got %v", got)
	}
	if got := r.stars[0].Color; got != (color.NRGBA{128, 128, 128, 255}) {
		t.Errorf("Expected a half-bright star, got %v", got)
	}
}

func TestEngoRenderer_Render_PrunesAndPools(t *testing.T) {
	sink := newFakeSink()
	r := NewEngoRenderer(sink, nil)
	_ = r.Render(sceneSnapshot())

	next := sceneSnapshot()
	next.Asteroids = next.Asteroids[:1]
	next.Planets[0].HasRings = false
	next.Particles = next.Particles[:1]
	_ = r.Render(next)

	if _, ok := r.asteroids[102]; ok {
		t.Error("Expected the missing asteroid sprite to be removed")
	}
	if len(r.rings) != 0 {
		t.Error("Expected the ring sprite to be removed")
	}
	if sink.removed != 2 {
		t.Errorf("Expected 2 removals, got %d", sink.removed)
	}
	if len(r.particles) != 2 || !r.particles[1].Hidden || r.particles[0].Hidden {
		t.Error("Expected the particle pool to keep and hide the surplus sprite")
	}
	if sink.visible() != 7 {
		t.Errorf("Expected 7 visible sprites, got %d", sink.visible())
	}
}

func TestEngoRenderer_Close(t *testing.T) {
	sink := newFakeSink()
	r := NewEngoRenderer(sink, nil)
	_ = r.Render(sceneSnapshot())

	if err := r.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if len(sink.renders) != 0 {
		t.Errorf("Expected every sprite removed, %d left", len(sink.renders))
	}
	if err := r.Render(nil); err != nil {
		t.Errorf("Render(nil) returned error: %v", err)
	}
}

func TestShipColor(t *testing.T) {
	tests := []struct {
		name string
		ship engine.ShipState
		want color.NRGBA
	}{
		{"idle", engine.ShipState{}, color.NRGBA{204, 204, 230, 255}},
		{"flashing", engine.ShipState{DamageFlash: 1}, color.NRGBA{255, 51, 51, 255}},
		{"full_glow", engine.ShipState{EngineGlow: 1}, color.NRGBA{204, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shipColor(tt.ship); got != tt.want {
				t.Errorf("shipColor = %v, want %v", got, tt.want)
			}
		})
	}
}
