package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"tetrisenv/environment"
	"tetrisenv/internal/gamestate"
	"tetrisenv/internal/graphics"
	"tetrisenv/internal/script"
)

// Application owns one environment and the backend that shows it
type Application struct {
	config *Config

	backendType graphics.BackendType
	backend     graphics.Backend
	window      graphics.Window
	video       *graphics.VideoProcessor

	env      *environment.Environment
	emulator *Emulator
	romPath  string

	running bool
	paused  bool

	// FPS over one-second windows
	startTime     time.Time
	lastFPSTime   time.Time
	fpsFrameCount int
	currentFPS    float64

	logFile *os.File
}

// ApplicationError represents application-level errors
type ApplicationError struct {
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application error during %s: %v", e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication loads the configuration at configPath and creates the
// application around it
func NewApplication(configPath string) (*Application, error) {
	config := NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, &ApplicationError{Operation: "config load", Err: err}
	}
	return NewApplicationWithConfig(config)
}

// NewApplicationWithConfig creates the application with the backend named
// in config.Video.Backend
func NewApplicationWithConfig(config *Config) (*Application, error) {
	if err := config.validate(); err != nil {
		return nil, &ApplicationError{Operation: "config validation", Err: err}
	}

	app := &Application{
		config:      config,
		backendType: graphics.BackendType(config.Video.Backend),
		video:       graphics.NewVideoProcessor(config.Video.Brightness, config.Video.Contrast, config.Video.Saturation),
	}

	if err := app.configureLogging(); err != nil {
		return nil, &ApplicationError{Operation: "logging setup", Err: err}
	}
	if err := app.initializeGraphicsBackend(); err != nil {
		app.Cleanup()
		return nil, &ApplicationError{Operation: "graphics initialization", Err: err}
	}
	return app, nil
}

func (app *Application) configureLogging() error {
	if !app.config.Debug.EnableLogging {
		log.SetOutput(io.Discard)
		return nil
	}
	if app.config.Paths.Logs == "" {
		return nil
	}
	if err := os.MkdirAll(app.config.Paths.Logs, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(app.config.Paths.Logs, "tetrisenv.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	app.logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

func (app *Application) initializeGraphicsBackend() error {
	backend, err := graphics.CreateBackend(app.backendType)
	if err != nil {
		return err
	}

	keyMap, err := app.config.KeyMap()
	if err != nil {
		return err
	}

	width, height := app.config.Window.Width, app.config.Window.Height
	gfxConfig := graphics.Config{
		WindowTitle:  "tetrisenv",
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Scale:        app.config.Window.Scale,
		KeyMap:       keyMap,
		Headless:     app.backendType == graphics.BackendHeadless,
		Debug:        app.config.IsDebug(),
	}
	if err := backend.Initialize(gfxConfig); err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", backend.GetName(), err)
	}
	app.backend = backend

	window, err := backend.CreateWindow(gfxConfig.WindowTitle, width, height)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	app.window = window

	log.Printf("[APP] Using %s backend", backend.GetName())
	return nil
}

// LoadROM initializes the environment for a cartridge and starts the first
// episode
func (app *Application) LoadROM(romPath string) error {
	opts, err := app.environmentOptions()
	if err != nil {
		return &ApplicationError{Operation: "ROM load", Err: err}
	}

	env, err := environment.Initialize(romPath, opts...)
	if err != nil {
		return &ApplicationError{Operation: "ROM load", Err: err}
	}
	if app.env != nil {
		if err := app.env.Destroy(); err != nil {
			log.Printf("[APP] Releasing previous environment: %v", err)
		}
	}
	app.env = env
	app.romPath = romPath
	app.emulator = NewEmulator(env, app.config)

	if err := app.emulator.StartEpisode(); err != nil {
		return &ApplicationError{Operation: "episode start", Err: err}
	}

	if header, err := env.Cartridge(); err == nil {
		app.window.SetTitle(fmt.Sprintf("tetrisenv - %s", header.Title))
	}
	if profile, err := env.Profile(); err == nil {
		log.Printf("[APP] Loaded %s (profile %s)", romPath, profile.Name)
	}
	return nil
}

func (app *Application) environmentOptions() ([]environment.Option, error) {
	opts := []environment.Option{
		environment.WithPalette(app.config.Palette()),
		environment.WithDebug(app.config.IsDebug()),
		environment.WithCPUTracing(app.config.Debug.CPUTracing),
	}

	if path := app.config.Emulation.BootROM; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read boot ROM: %w", err)
		}
		if len(data) != 0x100 {
			return nil, fmt.Errorf("boot ROM %s is %d bytes, want 256", path, len(data))
		}
		opts = append(opts, environment.WithBootROM(data))
	}

	if path := app.config.Emulation.ProfilesPath; path != "" {
		table, err := gamestate.LoadTable(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, environment.WithProfiles(table))
	}
	return opts, nil
}

// Run drives the loaded cartridge with the configured backend until the
// window closes, or for the configured number of frames when headless
func (app *Application) Run() error {
	if app.env == nil {
		return errors.New("no ROM loaded")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = app.startTime

	switch app.backendType {
	case graphics.BackendEbitengine:
		window, ok := graphics.AsEbitengineWindow(app.window)
		if !ok {
			return fmt.Errorf("window is %T, not an Ebitengine window", app.window)
		}
		window.SetEmulatorUpdateFunc(app.update)
		return window.Run()

	case graphics.BackendTerminal:
		ticker := time.NewTicker(app.emulator.GetTargetFrameTime())
		defer ticker.Stop()
		for app.running {
			if err := app.update(); err != nil {
				return err
			}
			if !app.emulator.IsRunning() {
				break
			}
			<-ticker.C
		}
		return nil
	}

	return app.RunFrames(app.config.Emulation.Frames)
}

// RunFrames runs up to n frames as fast as possible, stopping early when
// the episode ends
func (app *Application) RunFrames(n int) error {
	if app.env == nil {
		return errors.New("no ROM loaded")
	}
	for i := 0; i < n && app.emulator.IsRunning(); i++ {
		if err := app.emulator.Update(); err != nil {
			return err
		}
		if err := app.render(); err != nil {
			return err
		}
	}
	frames, _ := app.env.Frames()
	log.Printf("[APP] Ran %d frames, running=%t", frames, app.env.IsRunning())
	return nil
}

// RunScript runs a Lua agent against the environment. Every frame the
// script runs is rendered to the window.
func (app *Application) RunScript(ctx context.Context, path string) error {
	if app.env == nil {
		return errors.New("no ROM loaded")
	}

	runner := script.New(app.env, script.Options{
		MaxFrames: app.config.Emulation.Frames,
		OnFrame:   app.render,
	})
	defer runner.Close()

	err := runner.RunFile(ctx, path)
	log.Printf("[APP] Script %s ran %d frames", path, runner.Frames())
	if errors.Is(err, script.ErrFrameLimit) {
		return nil
	}
	return err
}

// update is one tick of an interactive viewer
func (app *Application) update() error {
	app.processInput()

	if !app.running {
		if app.window != nil {
			app.window.Cleanup()
		}
		return nil
	}

	if !app.paused {
		if err := app.emulator.Update(); err != nil {
			return err
		}
	}
	app.updateFPS()
	return app.render()
}

// processInput applies window events to the environment
func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()

		case graphics.InputEventTypeButton:
			key, ok := buttonKeys[event.Button]
			if !ok {
				continue
			}
			if err := app.env.SetKeyState(key, event.Pressed); err != nil {
				log.Printf("[APP] %v", err)
			}

		case graphics.InputEventTypeKey:
			if !event.Pressed {
				continue
			}
			switch event.Key {
			case graphics.KeyP:
				app.TogglePause()
			case graphics.KeyR:
				app.Reset()
			case graphics.KeyF12:
				if err := app.SaveScreenshot(""); err != nil {
					log.Printf("[APP] Screenshot failed: %v", err)
				}
			}
		}
	}
}

var buttonKeys = map[graphics.Button]environment.Key{
	graphics.ButtonUp:     environment.Up,
	graphics.ButtonDown:   environment.Down,
	graphics.ButtonLeft:   environment.Left,
	graphics.ButtonRight:  environment.Right,
	graphics.ButtonA:      environment.A,
	graphics.ButtonB:      environment.B,
	graphics.ButtonSelect: environment.Select,
	graphics.ButtonStart:  environment.Start,
}

// render shows the current frame and status
func (app *Application) render() error {
	pixels, err := app.env.Pixels()
	if err != nil {
		return err
	}
	app.window.SetStatus(app.Status())
	return app.window.RenderFrame(app.video.ProcessFrame(pixels))
}

// Status returns the text shown under the frame
func (app *Application) Status() string {
	if app.env == nil {
		return ""
	}

	var status string
	if view, err := app.env.View(); err == nil {
		status = fmt.Sprintf("SCORE %d  LINES %d", view.Score, view.Lines)
	} else {
		frames, _ := app.env.Frames()
		status = fmt.Sprintf("FRAME %d", frames)
	}

	switch {
	case app.env.State() == environment.Running && !app.env.IsRunning():
		status += "  GAME OVER (R)"
	case app.paused:
		status += "  PAUSED"
	}
	if app.config.Debug.ShowFPS {
		status += fmt.Sprintf("  %.0f FPS", app.currentFPS)
	}
	return status
}

func (app *Application) updateFPS() {
	app.fpsFrameCount++
	now := time.Now()
	if elapsed := now.Sub(app.lastFPSTime); elapsed >= time.Second {
		app.currentFPS = float64(app.fpsFrameCount) / elapsed.Seconds()
		app.fpsFrameCount = 0
		app.lastFPSTime = now
	}
}

// SaveScreenshot writes the current frame as a scaled PNG. An empty path
// picks a timestamped name in the screenshot directory.
func (app *Application) SaveScreenshot(path string) error {
	if app.env == nil {
		return errors.New("no ROM loaded")
	}
	if path == "" {
		dir := app.config.Paths.Screenshots
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		path = filepath.Join(dir, fmt.Sprintf("tetrisenv_%s.png", time.Now().Format("20060102_150405")))
	}

	pixels, err := app.env.Pixels()
	if err != nil {
		return err
	}
	if err := graphics.SavePNG(path, app.video.ProcessFrame(pixels), app.config.Window.Scale, app.config.Video.Filter); err != nil {
		return err
	}
	log.Printf("[APP] Saved screenshot %s", path)
	return nil
}

// Stop ends the run loop
func (app *Application) Stop() {
	app.running = false
}

// Pause stops advancing frames
func (app *Application) Pause() {
	app.paused = true
}

// Resume continues advancing frames
func (app *Application) Resume() {
	app.paused = false
}

// TogglePause toggles the pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// Reset starts a new episode with the next seed
func (app *Application) Reset() {
	if app.emulator == nil {
		return
	}
	if err := app.emulator.StartEpisode(); err != nil {
		log.Printf("[APP] Reset failed: %v", err)
		return
	}
	app.paused = false
	log.Printf("[APP] New episode (seed %d)", app.emulator.GetStats().Seed)
}

// IsRunning returns whether the run loop is active
func (app *Application) IsRunning() bool {
	return app.running
}

// IsPaused returns whether frames are paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFPS returns the measured frames per second of the viewer
func (app *Application) GetFPS() float64 {
	return app.currentFPS
}

// GetFrameCount returns the number of frames run across all episodes
func (app *Application) GetFrameCount() uint64 {
	if app.emulator == nil {
		return 0
	}
	return app.emulator.GetFrameCount()
}

// GetUptime returns the time since Run started
func (app *Application) GetUptime() time.Duration {
	if app.startTime.IsZero() {
		return 0
	}
	return time.Since(app.startTime)
}

// GetROMPath returns the loaded cartridge path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Environment returns the environment, nil before LoadROM
func (app *Application) Environment() *environment.Environment {
	return app.env
}

// Window returns the backend window
func (app *Application) Window() graphics.Window {
	return app.window
}

// Emulator returns the frame stepper, nil before LoadROM
func (app *Application) Emulator() *Emulator {
	return app.emulator
}

// Cleanup releases the environment and the graphics backend
func (app *Application) Cleanup() error {
	var errs []error

	if app.env != nil && app.env.State() != environment.Destroyed {
		if err := app.env.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("environment: %w", err))
		}
	}
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("window: %w", err))
		}
	}
	if app.backend != nil {
		if err := app.backend.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("backend: %w", err))
		}
	}
	if app.logFile != nil {
		log.SetOutput(os.Stderr)
		if err := app.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file: %w", err))
		}
		app.logFile = nil
	}
	return errors.Join(errs...)
}
