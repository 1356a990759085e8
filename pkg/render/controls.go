package render

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Control is one player input
type Control int

const (
	ThrustForward Control = iota
	ThrustBackward
	StrafeLeft
	StrafeRight
	Rise
	Sink
	PitchUp
	PitchDown
	YawLeft
	YawRight
	RollLeft
	RollRight
	NumControls
)

var controlNames = [NumControls]string{
	"thrust_forward", "thrust_backward", "strafe_left", "strafe_right",
	"rise", "sink", "pitch_up", "pitch_down", "yaw_left", "yaw_right",
	"roll_left", "roll_right",
}

func (c Control) String() string {
	if c < 0 || c >= NumControls {
		return "unknown"
	}
	return controlNames[c]
}

// controlAxis is the intent component a control drives
type controlAxis struct {
	rotation bool
	axis     int
	sign     float64
}

var controlAxes = [NumControls]controlAxis{
	ThrustForward:  {false, 2, -1},
	ThrustBackward: {false, 2, 1},
	StrafeLeft:     {false, 0, -1},
	StrafeRight:    {false, 0, 1},
	Rise:           {false, 1, 1},
	Sink:           {false, 1, -1},
	PitchUp:        {true, 0, -1},
	PitchDown:      {true, 0, 1},
	YawLeft:        {true, 1, -1},
	YawRight:       {true, 1, 1},
	RollLeft:       {true, 2, -1},
	RollRight:      {true, 2, 1},
}

// Intent folds the active controls into thrust and rotation intents.
// Opposing controls cancel out.
func Intent(active func(Control) bool) (thrust, rotation physics.Vector3) {
	for c := Control(0); c < NumControls; c++ {
		if !active(c) {
			continue
		}
		a := controlAxes[c]
		if a.rotation {
			rotation[a.axis] += a.sign
		} else {
			thrust[a.axis] += a.sign
		}
	}
	return thrust, rotation
}

var runeControls = map[rune]Control{
	'w': ThrustForward,
	's': ThrustBackward,
	'a': StrafeLeft,
	'd': StrafeRight,
	'r': Rise,
	'f': Sink,
	'q': RollLeft,
	'e': RollRight,
}

var keyControls = map[tcell.Key]Control{
	tcell.KeyUp:    PitchUp,
	tcell.KeyDown:  PitchDown,
	tcell.KeyLeft:  YawLeft,
	tcell.KeyRight: YawRight,
}

// KeyControl maps a terminal key event to a control
func KeyControl(ev *tcell.EventKey) (Control, bool) {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		c, ok := runeControls[r]
		return c, ok
	}
	c, ok := keyControls[ev.Key()]
	return c, ok
}

// IsQuitKey reports whether the event should end the session
func IsQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}

// DefaultHoldWindow is how long a key press counts as held. Terminals
// report presses and auto-repeats but never releases.
const DefaultHoldWindow = 150 * time.Millisecond

// KeyState tracks which controls are held from a stream of terminal key
// events. Safe for one input goroutine and one simulation goroutine.
type KeyState struct {
	mu      sync.Mutex
	hold    time.Duration
	pressed [NumControls]time.Time
}

// NewKeyState creates a tracker with the given hold window
func NewKeyState(hold time.Duration) *KeyState {
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &KeyState{hold: hold}
}

// Press marks c as held from at
func (k *KeyState) Press(c Control, at time.Time) {
	if c < 0 || c >= NumControls {
		return
	}
	k.mu.Lock()
	k.pressed[c] = at
	k.mu.Unlock()
}

// HandleKey records a key event. It returns true when the key asks to quit.
func (k *KeyState) HandleKey(ev *tcell.EventKey) bool {
	if IsQuitKey(ev) {
		return true
	}
	if c, ok := KeyControl(ev); ok {
		k.Press(c, ev.When())
	}
	return false
}

// Active reports whether c was pressed within the hold window before now
func (k *KeyState) Active(c Control, now time.Time) bool {
	if c < 0 || c >= NumControls {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	at := k.pressed[c]
	return !at.IsZero() && !now.Before(at) && now.Sub(at) <= k.hold
}

// Intent returns the thrust and rotation intents held at now
func (k *KeyState) Intent(now time.Time) (thrust, rotation physics.Vector3) {
	return Intent(func(c Control) bool { return k.Active(c, now) })
}

// Release forgets every held control
func (k *KeyState) Release() {
	k.mu.Lock()
	k.pressed = [NumControls]time.Time{}
	k.mu.Unlock()
}
