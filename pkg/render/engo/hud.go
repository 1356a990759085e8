// pkg/render/engo/hud.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// hud geometry in screen pixels
const (
	hudMargin    = 10
	hudBarWidth  = 200
	hudBarHeight = 8
	hudBarGap    = 4
	hudFullScale = 100
)

// hudBar is a gauge drawn with the HUD shader
type hudBar struct {
	sprite
	value float64
}

// HUDSystem draws the ship gauges: health, energy, shield, and a flash
// strip lit while the hull is taking damage
type HUDSystem struct {
	sink spriteSink

	health *hudBar
	energy *hudBar
	shield *hudBar
	flash  *hudBar

	// Colors
	healthyColor color.Color
	damagedColor color.Color
	energyColor  color.Color
	shieldColor  color.Color
	flashColor   color.Color
}

// NewHUDSystem creates the gauges and registers them with sink
func NewHUDSystem(sink spriteSink) *HUDSystem {
	hud := &HUDSystem{
		sink:         sink,
		healthyColor: color.RGBA{0, 220, 0, 255},
		damagedColor: color.RGBA{255, 40, 40, 255},
		energyColor:  color.RGBA{60, 120, 255, 255},
		shieldColor:  color.RGBA{0, 230, 230, 255},
		flashColor:   color.RGBA{255, 255, 255, 255},
	}
	hud.health = hud.newBar(0, hud.healthyColor)
	hud.energy = hud.newBar(1, hud.energyColor)
	hud.shield = hud.newBar(2, hud.shieldColor)
	hud.flash = hud.newBar(3, hud.flashColor)
	return hud
}

func (hud *HUDSystem) newBar(row int, c color.Color) *hudBar {
	bar := &hudBar{sprite: sprite{BasicEntity: ecs.NewBasic()}}
	bar.Drawable = common.Rectangle{}
	bar.Color = c
	bar.SetShader(common.HUDShader)
	bar.SetZIndex(layerHUD)
	bar.Position = engo.Point{X: hudMargin, Y: float32(hudMargin + row*(hudBarHeight+hudBarGap))}
	bar.Height = hudBarHeight
	bar.Scale = engo.Point{X: 1, Y: 1}
	if hud.sink != nil {
		hud.sink.Add(&bar.BasicEntity, &bar.RenderComponent, &bar.SpaceComponent)
	}
	return bar
}

// UpdateShip resizes the gauges for the ship state
func (hud *HUDSystem) UpdateShip(ship engine.ShipState) {
	setBar(hud.health, ship.Health)
	setBar(hud.energy, ship.Energy)
	setBar(hud.shield, ship.Shield)
	setBar(hud.flash, ship.DamageFlash*hudFullScale)

	if ship.Health < hudFullScale/4 {
		hud.health.Color = hud.damagedColor
	} else {
		hud.health.Color = hud.healthyColor
	}
	hud.flash.Hidden = ship.DamageFlash <= 0
}

func setBar(bar *hudBar, value float64) {
	bar.value = physics.Clamp(value, 0, hudFullScale)
	bar.Width = float32(bar.value / hudFullScale * hudBarWidth)
}

// Close removes the gauges
func (hud *HUDSystem) Close() {
	if hud.sink == nil {
		return
	}
	for _, bar := range []*hudBar{hud.health, hud.energy, hud.shield, hud.flash} {
		hud.sink.Remove(bar.BasicEntity)
	}
}
