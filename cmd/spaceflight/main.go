// cmd/spaceflight/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-spaceflight/pkg/config"
	"github.com/opd-ai/go-spaceflight/pkg/engine"
	"github.com/opd-ai/go-spaceflight/pkg/event"
	"github.com/opd-ai/go-spaceflight/pkg/logging"
	"github.com/opd-ai/go-spaceflight/pkg/physics"
	"github.com/opd-ai/go-spaceflight/pkg/recorder"
	"github.com/opd-ai/go-spaceflight/pkg/render"
	engorender "github.com/opd-ai/go-spaceflight/pkg/render/engo"
	"github.com/opd-ai/go-spaceflight/pkg/telemetry"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "", "Path to configuration file (yaml, json or toml)")
	createDefault := flag.String("default", "", "Write the default configuration to this path and exit")
	mode := flag.String("renderer", "", "Renderer: 'terminal', 'engo' or 'headless' (overrides config)")
	seed := flag.Uint64("seed", 0, "Scene seed (overrides config)")
	frames := flag.Uint64("frames", 0, "Stop after this many frames; 0 runs until quit (headless defaults to 600)")
	record := flag.Bool("record", false, "Record the flight to the configured database")
	logPath := flag.String("log", "spaceflight.log", "Log file used while the terminal renderer owns the screen")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode (Engo only)")
	width := flag.Int("width", 0, "Window width (Engo only, overrides config)")
	height := flag.Int("height", 0, "Window height (Engo only, overrides config)")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault != "" {
		if err := config.Save(config.DefaultConfig(), *createDefault); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *createDefault,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *createDefault)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	applyFlags(cfg, *mode, *seed, *record, *width, *height)

	// The terminal renderer owns stdout, so logs go to a file
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.Render.Mode == config.RenderTerminal {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Error(ctx, "Failed to open log file", err, "log_path", *logPath)
			os.Exit(1)
		}
		defer f.Close()
		logger = logging.NewLoggerWithWriter(f, level)
	} else {
		logger = logging.NewLoggerWithWriter(os.Stderr, level)
	}

	if err := run(ctx, cfg, logger, runOptions{frames: *frames, fullscreen: *fullscreen}); err != nil {
		logger.Error(ctx, "Flight failed", err)
		os.Exit(1)
	}
}

// runOptions carries the command-line settings that are not configuration
type runOptions struct {
	frames     uint64
	fullscreen bool
}

// applyFlags overrides configuration values with the ones given on the
// command line
func applyFlags(cfg *config.Config, mode string, seed uint64, record bool, width, height int) {
	if mode != "" {
		cfg.Render.Mode = mode
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if record {
		cfg.Recorder.Enabled = true
	}
	if width > 0 {
		cfg.Render.Width = width
	}
	if height > 0 {
		cfg.Render.Height = height
	}
}

// run wires the simulation services, flies until done and shuts them down
func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts runOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flightID := logging.GenerateFlightID()
	ctx = logging.WithFlightID(ctx, flightID)

	provider, metrics, err := setupTelemetry(cfg.Telemetry)
	if err != nil {
		return err
	}
	if provider != nil {
		defer shutdownTelemetry(ctx, logger, provider)
	}

	bus := event.NewEventBus()
	engineOpts := []engine.Option{
		engine.WithEventBus(bus),
		engine.WithMetrics(metrics),
		engine.WithFlightID(flightID),
	}

	if cfg.Recorder.Enabled {
		rec, err := recorder.Open(ctx, cfg.Recorder, cfg, logger)
		if err != nil {
			return err
		}
		// runs after director.Stop has ended the flight
		defer closeRecorder(ctx, logger, rec)
		rec.Attach(bus)
		engineOpts = append(engineOpts, engine.WithSampler(rec))
		logger.Info(ctx, "Flight recorder enabled", "dsn", cfg.Recorder.DSN)
	}

	director, err := engine.New(cfg, logger, engineOpts...)
	if err != nil {
		return err
	}

	switch cfg.Render.Mode {
	case config.RenderEngo:
		runEngo(director, logger, cfg.Render, opts.fullscreen)
	case config.RenderHeadless:
		err = runHeadless(ctx, director, logger, cfg.Render, opts.frames)
	default:
		err = runTerminal(ctx, director, logger, cfg, opts.frames)
	}
	err = logging.WrapError(err, "%s flight", cfg.Render.Mode)

	// Stopping publishes the end of the flight to the recorder
	director.Stop()
	logger.Info(ctx, "Flight finished",
		"frames", director.Frames(),
		"game_time", director.GameTime(),
		"score", director.Score(),
		"collisions", director.Collisions(),
	)
	return err
}

// shutdownTimeout bounds the final flush and metric collection
const shutdownTimeout = 5 * time.Second

// closeRecorder flushes and closes the recorder
func closeRecorder(ctx context.Context, logger *logging.Logger, rec *recorder.Recorder) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rec.Close(shutdownCtx); err != nil {
		logger.Error(ctx, "Failed to close flight recorder", err)
		return
	}
	logger.Info(ctx, "Flight recorder closed")
}

// shutdownTelemetry logs the metric totals and releases the provider
func shutdownTelemetry(ctx context.Context, logger *logging.Logger, provider *telemetry.Provider) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logMetrics(shutdownCtx, logger, provider)
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Failed to shut down telemetry", err)
	}
}

// setupTelemetry creates the metric instruments. Disabled telemetry records
// into no-op instruments and returns a nil provider.
func setupTelemetry(cfg config.TelemetryConfig) (*telemetry.Provider, *telemetry.Metrics, error) {
	if !cfg.Enabled {
		return nil, telemetry.NewNop(), nil
	}
	provider := telemetry.NewProvider()
	metrics, err := telemetry.New(provider.MeterProvider(), cfg.MeterName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	return provider, metrics, nil
}

// logMetrics writes the metric totals of the run
func logMetrics(ctx context.Context, logger *logging.Logger, provider *telemetry.Provider) {
	summary, err := provider.Summary(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to collect metrics", err)
		return
	}
	args := make([]any, 0, 2*len(summary))
	for name, value := range summary {
		args = append(args, name, value)
	}
	logger.Info(ctx, "Flight metrics", args...)
}

// frameInterval converts a target frame rate into a ticker interval
func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// runEngo opens a window and runs the flight scene until it is closed
func runEngo(director *engine.Director, logger *logging.Logger, cfg config.RenderConfig, fullscreen bool) {
	scene := engorender.NewFlightScene(director, logger)

	opts := engo.RunOptions{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: fullscreen,
		VSync:      true,
		FPSLimit:   cfg.TargetFPS,
	}

	// Run blocks until the window closes
	engo.Run(opts, scene)
}

// runHeadless steps the simulation at a fixed rate with no presentation
func runHeadless(ctx context.Context, director *engine.Director, logger *logging.Logger, cfg config.RenderConfig, frames uint64) error {
	if frames == 0 {
		frames = 600
	}
	dt := frameInterval(cfg.TargetFPS).Seconds()

	driver := render.NewDriver(director, render.NewNullRenderer(logger), nil)
	director.Start()
	for i := uint64(0); i < frames; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := driver.Step(dt); err != nil {
			return err
		}
	}
	return nil
}

// runTerminal flies in the terminal until the player quits or ctx is done
func runTerminal(ctx context.Context, director *engine.Director, logger *logging.Logger, cfg *config.Config, frames uint64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	screen.HideCursor()

	renderer := render.NewScreenRenderer(screen, cfg.Render.Scale)
	defer renderer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := render.NewKeyState(render.DefaultHoldWindow)
	var resized atomic.Bool
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				// screen finalized
				return
			case *tcell.EventKey:
				if keys.HandleKey(ev) {
					cancel()
					return
				}
			case *tcell.EventResize:
				screen.Sync()
				resized.Store(true)
			}
		}
	}()

	driver := render.NewDriver(director, renderer, func() (thrust, rotation physics.Vector3) {
		return keys.Intent(time.Now())
	})
	driver.OnFrame(func(*engine.Snapshot) {
		if resized.Swap(false) {
			renderer.Attach(screen)
		}
	})

	director.Start()
	logger.Info(ctx, "Terminal flight started",
		"fps", cfg.Render.TargetFPS,
		"scale", cfg.Render.Scale,
	)
	return driver.Run(ctx, frameInterval(cfg.Render.TargetFPS), cfg.Simulation.MaxFrameDelta, frames)
}
