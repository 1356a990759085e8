package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/entity"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// TestNewTerminalRenderer tests the creation of a new terminal renderer
func TestNewTerminalRenderer_CreatesValidRenderer_WithCorrectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		scale  float64
	}{
		{"small renderer", 10, 5, 1.0},
		{"medium renderer", 80, 24, 10.0},
		{"large renderer", 120, 40, 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(tt.width, tt.height, tt.scale)

			if renderer.width != tt.width || renderer.height != tt.height {
				t.Errorf("expected %dx%d, got %dx%d", tt.width, tt.height, renderer.width, renderer.height)
			}
			if renderer.scale != tt.scale {
				t.Errorf("expected scale %f, got %f", tt.scale, renderer.scale)
			}
			if len(renderer.buffer) != tt.height {
				t.Fatalf("expected buffer height %d, got %d", tt.height, len(renderer.buffer))
			}
			for y, row := range renderer.buffer {
				if len(row) != tt.width {
					t.Fatalf("row %d: expected width %d, got %d", y, tt.width, len(row))
				}
				for x, c := range row {
					if c.ch != ' ' {
						t.Fatalf("cell (%d,%d) not blank: %q", x, y, c.ch)
					}
				}
			}
		})
	}
}

func TestSetCenter_UpdatesCenterPosition_Correctly(t *testing.T) {
	renderer := NewTerminalRenderer(10, 10, 1)
	pos := physics.Vector3{3, 4, 5}

	renderer.SetCenter(pos)

	if renderer.centerPos != pos {
		t.Errorf("expected center %v, got %v", pos, renderer.centerPos)
	}
}

func TestWorldToScreen_ConvertsCoordinates_Correctly(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		center physics.Vector3
		pos    physics.Vector3
		wantX  int
		wantY  int
	}{
		{"origin maps to middle", 1, physics.Vector3{}, physics.Vector3{}, 10, 5},
		{"forward is up", 1, physics.Vector3{}, physics.Vector3{5, 0, -3}, 15, 2},
		{"altitude ignored", 1, physics.Vector3{}, physics.Vector3{0, 50, 0}, 10, 5},
		{"negative rounds down", 1, physics.Vector3{}, physics.Vector3{-10.5, 0, 0}, -1, 5},
		{"scaled", 2, physics.Vector3{}, physics.Vector3{4, 0, 4}, 12, 7},
		{"offset center", 1, physics.Vector3{100, 0, 100}, physics.Vector3{101, 0, 99}, 11, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(20, 10, tt.scale)
			renderer.SetCenter(tt.center)

			x, y := renderer.worldToScreen(tt.pos)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("worldToScreen(%v) = (%d,%d), want (%d,%d)", tt.pos, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestClear_ClearsBuffer_WithSpaces(t *testing.T) {
	renderer := NewTerminalRenderer(5, 3, 1)
	renderer.set(1, 1, 'X', tcell.StyleDefault)
	renderer.set(99, 99, 'X', tcell.StyleDefault)

	renderer.Clear()

	if got := renderer.String(); got != strings.Repeat("     \n", 3) {
		t.Errorf("expected blank buffer, got %q", got)
	}
}

func TestRenderShip_DrawsHeadingGlyph(t *testing.T) {
	tests := []struct {
		yaw  float64
		want rune
	}{
		{0, '^'},
		{90, '>'},
		{180, 'v'},
		{270, '<'},
		{350, '^'},
		{-80, '<'},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			renderer := NewTerminalRenderer(10, 10, 1)
			renderer.RenderShip(engine.ShipState{Rotation: physics.Vector3{0, tt.yaw, 0}})

			if got := renderer.buffer[5][5].ch; got != tt.want {
				t.Errorf("yaw %v: expected %q, got %q", tt.yaw, tt.want, got)
			}
		})
	}
}

func TestRenderShip_DamageFlashIsRed(t *testing.T) {
	renderer := NewTerminalRenderer(10, 10, 1)
	renderer.RenderShip(engine.ShipState{DamageFlash: 1})

	fg, _, _ := renderer.buffer[5][5].style.Decompose()
	if fg != tcell.ColorRed {
		t.Errorf("expected red ship while flashing, got %v", fg)
	}
}

func TestRenderPlanet_DrawsDiscAndRings(t *testing.T) {
	renderer := NewTerminalRenderer(20, 20, 1)
	renderer.RenderPlanet(engine.PlanetState{
		Radius:   2,
		Color:    physics.Vector3{0.8, 0.6, 0.4},
		HasRings: true,
	})

	for _, p := range [][2]int{{10, 10}, {12, 10}, {8, 10}, {10, 12}, {10, 8}} {
		if got := renderer.buffer[p[1]][p[0]].ch; got != 'O' {
			t.Errorf("expected planet at %v, got %q", p, got)
		}
	}
	if got := renderer.buffer[12][12].ch; got != ' ' {
		t.Errorf("corner (12,12) lies outside the disc, got %q", got)
	}
	if renderer.buffer[10][6].ch != '(' || renderer.buffer[10][13].ch != ')' {
		t.Errorf("expected rings at x=6 and x=13, row is %q", renderer.String()[10*21:11*21])
	}
}

func TestRenderAsteroid_GlyphPerMaterial(t *testing.T) {
	tests := []struct {
		material entity.MaterialKind
		want     rune
	}{
		{entity.Rock, '#'},
		{entity.Ice, '*'},
		{entity.Metal, '%'},
		{entity.MaterialKind(7), '#'},
	}

	for _, tt := range tests {
		t.Run(tt.material.String(), func(t *testing.T) {
			renderer := NewTerminalRenderer(10, 10, 1)
			renderer.RenderAsteroid(engine.AsteroidState{
				Position: physics.Vector3{2, 0, 0},
				Size:     0.5,
				Material: tt.material,
			})
			if got := renderer.buffer[5][7].ch; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func testSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Frame:    3,
		GameTime: 12.5,
		Ship: engine.ShipState{
			Position: physics.Vector3{100, 0, 100},
			Health:   100,
			State:    physics.Alive,
		},
		Asteroids: []engine.AsteroidState{
			{Position: physics.Vector3{104, 0, 100}, Size: 0.5, Material: entity.Ice},
		},
		Particles: nil,
	}
}

func TestRender_CentersOnShip(t *testing.T) {
	renderer := NewTerminalRenderer(30, 12, 1)

	if err := renderer.Render(testSnapshot()); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if got := renderer.buffer[6][15].ch; got != '^' {
		t.Errorf("expected ship at the center, got %q", got)
	}
	if got := renderer.buffer[6][19].ch; got != '*' {
		t.Errorf("expected ice asteroid 4 cells right, got %q", got)
	}
	if hud := strings.SplitN(renderer.String(), "\n", 2)[0]; !strings.HasPrefix(hud, "HP 100") {
		t.Errorf("expected HUD on the top row, got %q", hud)
	}
}

func TestRender_NilSnapshot(t *testing.T) {
	renderer := NewTerminalRenderer(5, 5, 1)
	if err := renderer.Render(nil); err != nil {
		t.Errorf("Render(nil) returned error: %v", err)
	}
}

func TestPresent_WritesToScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(30, 12)

	renderer := NewScreenRenderer(screen, 1)
	defer renderer.Close()

	if w, h := renderer.Size(); w != 30 || h != 12 {
		t.Fatalf("expected renderer sized to screen, got %dx%d", w, h)
	}
	if err := renderer.Render(testSnapshot()); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if ch, _, _, _ := screen.GetContent(15, 6); ch != '^' {
		t.Errorf("expected ship on screen, got %q", ch)
	}
	if ch, _, _, _ := screen.GetContent(0, 0); ch != 'H' {
		t.Errorf("expected HUD on screen, got %q", ch)
	}
}

func TestPresent_WithoutScreen(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {1, 1}, {80, 24}} {
		renderer := NewTerminalRenderer(size[0], size[1], 1)
		if err := renderer.Present(); err != nil {
			t.Errorf("%v: Present returned error: %v", size, err)
		}
	}
}
