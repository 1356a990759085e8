// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// PixelsPerUnit is the top-down projection scale at zoom 1
const PixelsPerUnit = 16

// CameraSystem keeps the engo camera over the ship in the top-down view
type CameraSystem struct {
	// Target to follow, in world units on the X/Z plane
	target    physics.Vector3
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	// Current camera state
	currentPos physics.Vector3
}

// NewCameraSystem creates a new camera system
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     3.0,
		followSpeed: 5.0,
		smoothing:   true,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Priority runs the camera after the flight step has produced a target
func (cs *CameraSystem) Priority() int {
	return priorityCamera
}

// Update updates the camera position and zoom
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()

	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}

	cs.applyCameraTransform()
}

// handleZoomInput processes zoom-related input
func (cs *CameraSystem) handleZoomInput() {
	if engo.Input == nil {
		return
	}
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button(buttonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(buttonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(buttonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// updateCameraPosition moves the camera toward the target on the X/Z plane
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	blend := min(1, float64(cs.followSpeed)*float64(dt))
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Mul(blend))
}

// applyCameraTransform points the engo camera at the current position
func (cs *CameraSystem) applyCameraTransform() {
	if engo.Mailbox == nil {
		return
	}
	center := cs.toPixels(cs.currentPos)
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.XAxis, Value: center.X})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.YAxis, Value: center.Y})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.ZAxis, Value: 1 / cs.zoom})
}

// SetTarget sets the target position for the camera to follow
func (cs *CameraSystem) SetTarget(target physics.Vector3) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true

	if !cs.smoothing || first {
		cs.currentPos = target
	}
}

// ClearTarget clears the camera target
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	return min(max(zoom, cs.minZoom), cs.maxZoom)
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the current camera position
func (cs *CameraSystem) GetCurrentPosition() physics.Vector3 {
	return cs.currentPos
}

// toPixels projects a world position into engo world pixels. -Z is up.
func (cs *CameraSystem) toPixels(pos physics.Vector3) engo.Point {
	return WorldToPixels(pos)
}

// WorldToScreen converts world coordinates to screen coordinates for a
// viewport of the given size
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector3, width, height float32) engo.Point {
	rel := worldPos.Sub(cs.currentPos)
	return engo.Point{
		X: float32(rel[0]*PixelsPerUnit)*cs.zoom + width/2,
		Y: float32(rel[2]*PixelsPerUnit)*cs.zoom + height/2,
	}
}

// ScreenToWorld converts screen coordinates back onto the X/Z plane. The
// camera's altitude is kept.
func (cs *CameraSystem) ScreenToWorld(screen engo.Point, width, height float32) physics.Vector3 {
	x := float64((screen.X-width/2)/cs.zoom) / PixelsPerUnit
	z := float64((screen.Y-height/2)/cs.zoom) / PixelsPerUnit
	return physics.Vector3{cs.currentPos[0] + x, cs.currentPos[1], cs.currentPos[2] + z}
}

// WorldToPixels maps a world position to engo world pixels
func WorldToPixels(pos physics.Vector3) engo.Point {
	return engo.Point{X: float32(pos[0] * PixelsPerUnit), Y: float32(pos[2] * PixelsPerUnit)}
}
