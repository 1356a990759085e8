// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/logging"
	"github.com/opd-ai/go-spaceflight/pkg/render"
)

// system priorities inside the engo world; higher runs first
const (
	priorityFlight = 20
	priorityCamera = 10
)

// FlightScene runs the simulation inside an engo window
type FlightScene struct {
	director *engine.Director
	logger   *logging.Logger

	// Rendering components
	assets   *AssetManager
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
	driver   *render.Driver
}

// NewFlightScene creates a scene driving director
func NewFlightScene(director *engine.Director, logger *logging.Logger) *FlightScene {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FlightScene{
		director: director,
		logger:   logger,
		assets:   NewAssetManager(),
	}
}

// Type returns the scene type (required by Engo)
func (scene *FlightScene) Type() string {
	return "FlightScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *FlightScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *FlightScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		scene.logger.Error(context.Background(), "Unexpected engo updater", nil)
		return
	}
	common.SetBackground(color.Black)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	if err := scene.assets.LoadAssets(); err != nil {
		scene.logger.Error(scene.director.Context(), "Failed to load sprites", err)
	}
	SetupInputBindings()

	scene.attach(renderSystem, NewInputSystem(nil))
	world.AddSystem(&flightSystem{scene: scene})
	world.AddSystem(scene.camera)

	scene.director.Start()
	scene.logger.Info(scene.director.Context(), "Flight scene started", "seed", scene.director.Seed())
}

// attach builds the presentation pieces on top of sink
func (scene *FlightScene) attach(sink spriteSink, input *InputSystem) {
	scene.renderer = NewEngoRenderer(sink, scene.assets)
	scene.hud = NewHUDSystem(sink)
	scene.camera = NewCameraSystem()
	scene.input = input
	scene.driver = render.NewDriver(scene.director, scene.renderer, input.Poll)
	scene.driver.OnFrame(scene.syncFrame)
}

// syncFrame points the camera and gauges at the new snapshot
func (scene *FlightScene) syncFrame(snap *engine.Snapshot) {
	scene.camera.SetTarget(snap.Camera.Target)
	scene.hud.UpdateShip(snap.Ship)
}

// step advances the simulation by one engo frame
func (scene *FlightScene) step(dt float32) {
	if !scene.director.Running() {
		return
	}
	if err := scene.driver.Step(float64(dt)); err != nil {
		scene.logger.Error(scene.director.Context(), "Frame failed", err)
	}
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *FlightScene) Exit() {
	scene.director.Stop()
	if scene.renderer != nil {
		_ = scene.renderer.Close()
	}
	if scene.hud != nil {
		scene.hud.Close()
	}
	scene.logger.Info(scene.director.Context(), "Flight scene exited",
		"frames", scene.director.Frames(),
		"game_time", scene.director.GameTime(),
	)
}

// flightSystem steps the scene from inside the engo world
type flightSystem struct {
	scene *FlightScene
}

func (fs *flightSystem) Update(dt float32) { fs.scene.step(dt) }

func (fs *flightSystem) Remove(ecs.BasicEntity) {}

func (fs *flightSystem) Priority() int { return priorityFlight }
