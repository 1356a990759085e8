// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
	"github.com/opd-ai/go-spaceflight/pkg/render"
)

const (
	buttonZoomIn    = "zoomIn"
	buttonZoomOut   = "zoomOut"
	buttonResetZoom = "resetZoom"
	buttonQuit      = "quit"
)

// controlKeys binds every flight control to its keys
var controlKeys = map[render.Control][]engo.Key{
	render.ThrustForward:  {engo.KeyW},
	render.ThrustBackward: {engo.KeyS},
	render.StrafeLeft:     {engo.KeyA},
	render.StrafeRight:    {engo.KeyD},
	render.Rise:           {engo.KeyR},
	render.Sink:           {engo.KeyF},
	render.PitchUp:        {engo.KeyArrowUp},
	render.PitchDown:      {engo.KeyArrowDown},
	render.YawLeft:        {engo.KeyArrowLeft},
	render.YawRight:       {engo.KeyArrowRight},
	render.RollLeft:       {engo.KeyQ},
	render.RollRight:      {engo.KeyE},
}

// ButtonSource reports whether a named button is held
type ButtonSource func(name string) bool

// engoButtons reads held buttons from the engo input manager
func engoButtons(name string) bool {
	return engo.Input != nil && engo.Input.Button(name).Down()
}

// InputSystem turns held buttons into flight intents
type InputSystem struct {
	buttons ButtonSource
	quit    func()

	thrust   physics.Vector3
	rotation physics.Vector3
}

// NewInputSystem creates an input system reading buttons from source.
// A nil source reads the engo input manager.
func NewInputSystem(source ButtonSource) *InputSystem {
	if source == nil {
		source = engoButtons
	}
	return &InputSystem{buttons: source, quit: engo.Exit}
}

// Poll samples the buttons and returns the thrust and rotation intents
func (is *InputSystem) Poll() (thrust, rotation physics.Vector3) {
	is.thrust, is.rotation = render.Intent(func(c render.Control) bool {
		return is.buttons(c.String())
	})
	if is.buttons(buttonQuit) && is.quit != nil {
		is.quit()
	}
	return is.thrust, is.rotation
}

// Intent returns the intents from the last Poll
func (is *InputSystem) Intent() (thrust, rotation physics.Vector3) {
	return is.thrust, is.rotation
}

// SetupInputBindings registers the flight and camera buttons with engo
func SetupInputBindings() {
	for c, keys := range controlKeys {
		engo.Input.RegisterButton(c.String(), keys...)
	}
	engo.Input.RegisterButton(buttonZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(buttonZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(buttonResetZoom, engo.KeyZero)
	engo.Input.RegisterButton(buttonQuit, engo.KeyEscape)
}
