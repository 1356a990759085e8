package engo

import (
	"testing"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
)

func TestHUDSystem_Gauges(t *testing.T) {
	tests := []struct {
		name    string
		ship    engine.ShipState
		health  float32
		energy  float32
		shield  float32
		damaged bool
		flash   bool
	}{
		{"full", engine.ShipState{Health: 100, Energy: 100, Shield: 50}, 200, 200, 100, false, false},
		{"hit", engine.ShipState{Health: 20, Energy: 40, Shield: 0, DamageFlash: 0.5}, 40, 80, 0, true, true},
		{"clamped", engine.ShipState{Health: 150, Energy: -5, Shield: 500}, 200, 0, 200, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hud := NewHUDSystem(newFakeSink())
			hud.UpdateShip(tt.ship)

			if hud.health.Width != tt.health || hud.energy.Width != tt.energy || hud.shield.Width != tt.shield {
				t.Errorf("Bars %v/%v/%v, want %v/%v/%v",
					hud.health.Width, hud.energy.Width, hud.shield.Width, tt.health, tt.energy, tt.shield)
			}
			if damaged := hud.health.Color == hud.damagedColor; damaged != tt.damaged {
				t.Errorf("Expected damaged colour %v, got %v", tt.damaged, damaged)
			}
			if hud.flash.Hidden == tt.flash {
				t.Errorf("Expected flash visible=%v", tt.flash)
			}
		})
	}
}

func TestHUDSystem_Layout(t *testing.T) {
	sink := newFakeSink()
	hud := NewHUDSystem(sink)

	if len(sink.renders) != 4 {
		t.Fatalf("Expected 4 gauges registered, got %d", len(sink.renders))
	}
	if hud.energy.Position.Y <= hud.health.Position.Y || hud.shield.Position.Y <= hud.energy.Position.Y {
		t.Error("Expected gauges stacked top to bottom")
	}

	hud.Close()
	if len(sink.renders) != 0 {
		t.Errorf("Expected gauges removed on close, %d left", len(sink.renders))
	}

	NewHUDSystem(nil).Close()
}
