// Package environment exposes the emulated console as a frame-steppable
// environment: load a cartridge, start episodes, press keys, advance one
// frame at a time and read back pixels, score and cleared lines.
//
// An Environment is not safe for concurrent use.
package environment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log"

	"tetrisenv/internal/bus"
	"tetrisenv/internal/cartridge"
	"tetrisenv/internal/gamestate"
	"tetrisenv/internal/ppu"
)

// Screen size in pixels
const (
	Width  = ppu.ScreenWidth
	Height = ppu.ScreenHeight
)

// Lifecycle errors
var (
	ErrNotInitialized = errors.New("environment: not initialized")
	ErrNotStarted     = errors.New("environment: no episode started")
	ErrDestroyed      = errors.New("environment: destroyed")
	ErrInvalidKey     = errors.New("environment: invalid key")
)

// State is the lifecycle state of an Environment
type State int

const (
	Uninitialized State = iota
	Ready
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Destroyed:
		return "Destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Environment is one emulator session
type Environment struct {
	state   State
	running bool
	frames  uint64

	bus     *bus.Bus
	cart    *cartridge.Cartridge
	profile gamestate.Profile
	opts    settings

	rgba []byte
}

// Initialize loads the cartridge at path and returns a Ready environment
func Initialize(path string, opts ...Option) (*Environment, error) {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		log.Printf("[ENV] Initialize failed: %v", err)
		return nil, fmt.Errorf("initialize %s: %w", path, err)
	}
	return newEnvironment(cart, opts)
}

// InitializeImage is Initialize for an in-memory cartridge image
func InitializeImage(data []byte, opts ...Option) (*Environment, error) {
	cart, err := cartridge.New(data)
	if err != nil {
		log.Printf("[ENV] Initialize failed: %v", err)
		return nil, fmt.Errorf("initialize image: %w", err)
	}
	return newEnvironment(cart, opts)
}

func newEnvironment(cart *cartridge.Cartridge, opts []Option) (*Environment, error) {
	e := &Environment{cart: cart}
	for _, opt := range opts {
		opt(&e.opts)
	}

	profiles := e.opts.profiles
	if profiles == nil {
		profiles = gamestate.Builtin()
	}
	profile, ok := profiles.Lookup(cart.Header())
	if err := profile.Validate(); err != nil {
		log.Printf("[ENV] Initialize failed: %v", err)
		return nil, fmt.Errorf("initialize: %w", err)
	}
	e.profile = profile

	e.bus = bus.New(cart, bus.Options{BootROM: e.opts.bootROM, Palette: e.opts.palette})
	if e.opts.debug {
		e.bus.EnableDebug(true)
		e.watchProfile()
	}
	if e.opts.cpuTrace {
		e.bus.EnableCPUDebug(true)
	}

	e.state = Ready
	log.Printf("[ENV] Ready: %q (%s), profile %s (matched=%t)",
		cart.Header().Title, cart.Header().Type, profile.Name, ok)
	return e, nil
}

func (e *Environment) watchProfile() {
	watch := func(f gamestate.Field, label string) {
		for i := 0; i < f.Bytes; i++ {
			e.bus.AddMemoryWatchpoint(f.Address+uint16(i), fmt.Sprintf("%s byte %d", label, i))
		}
	}
	watch(e.profile.Score, "score")
	watch(e.profile.Lines, "lines")
	if e.profile.GameState != nil {
		e.bus.AddMemoryWatchpoint(*e.profile.GameState, "game state")
	}
	e.bus.EnableWatchpointLogging(true)
}

// check fails with the lifecycle error for the current state, if any.
// Operations other than StartEpisode need a started episode.
func (e *Environment) check(op string, needEpisode bool) error {
	var err error
	switch {
	case e == nil || e.state == Uninitialized:
		err = ErrNotInitialized
	case e.state == Destroyed:
		err = ErrDestroyed
	case needEpisode && e.state != Running:
		err = ErrNotStarted
	}
	if err != nil {
		log.Printf("[ENV] %s: %v", op, err)
	}
	return err
}

// State returns the lifecycle state
func (e *Environment) State() State {
	if e == nil {
		return Uninitialized
	}
	return e.state
}

// StartEpisode cold-boots the console and plays the cartridge profile's
// start sequence. It may be called again to begin a new episode.
func (e *Environment) StartEpisode() error {
	return e.StartEpisodeSeed(0)
}

// StartEpisodeSeed is StartEpisode with seed%SeedSpread extra idle frames
// before the profile's seeded step, which shifts the timer phase the game
// sees when it starts.
func (e *Environment) StartEpisodeSeed(seed uint64) error {
	if err := e.check("StartEpisode", false); err != nil {
		return err
	}

	e.bus.Reset()
	e.state = Running
	e.running = true
	e.frames = 0

	for _, step := range e.profile.Start {
		if step.Seeded && e.profile.SeedSpread > 0 {
			e.idle(int(seed % uint64(e.profile.SeedSpread)))
		}
		mask, _ := step.Mask() // validated in Initialize
		e.hold(mask)
		e.idle(step.Frames)
		e.hold(0)
	}

	log.Printf("[ENV] Episode started (seed %d, %d start steps, running=%t)",
		seed, len(e.profile.Start), e.running)
	return nil
}

func (e *Environment) hold(mask uint8) {
	for _, k := range Keys {
		b := k.Button()
		e.bus.SetButton(b, mask&uint8(b) != 0)
	}
}

func (e *Environment) idle(frames int) {
	for i := 0; i < frames && e.running; i++ {
		e.step()
	}
}

// step runs one frame and updates the running flag
func (e *Environment) step() {
	if e.bus.RunFrame() {
		e.running = false
		log.Printf("[ENV] Stalled after %d frames", e.frames)
		return
	}
	e.frames++
	if e.profile.IsGameOver(e.bus) {
		e.running = false
		log.Printf("[ENV] Game over after %d frames", e.frames)
	}
}

// RunFrame advances exactly one frame. Once the episode has ended it does
// nothing.
func (e *Environment) RunFrame() error {
	if err := e.check("RunFrame", true); err != nil {
		return err
	}
	if e.running {
		e.step()
	}
	return nil
}

// IsRunning reports whether the current episode can still advance
func (e *Environment) IsRunning() bool {
	return e != nil && e.state == Running && e.running
}

// SetKeyState presses or releases a key. The change is visible to the game
// at its next joypad read.
func (e *Environment) SetKeyState(k Key, pressed bool) error {
	if err := e.check("SetKeyState", true); err != nil {
		return err
	}
	if !k.Valid() {
		log.Printf("[ENV] SetKeyState: %v %d", ErrInvalidKey, int(k))
		return fmt.Errorf("%w: %d", ErrInvalidKey, int(k))
	}
	e.bus.SetButton(k.Button(), pressed)
	return nil
}

// Score returns the decoded score
func (e *Environment) Score() (int, error) {
	if err := e.check("Score", true); err != nil {
		return 0, err
	}
	return e.profile.Score.Read(e.bus)
}

// Lines returns the decoded count of cleared lines
func (e *Environment) Lines() (int, error) {
	if err := e.check("Lines", true); err != nil {
		return 0, err
	}
	return e.profile.Lines.Read(e.bus)
}

// View decodes score and lines together
func (e *Environment) View() (gamestate.View, error) {
	if err := e.check("View", true); err != nil {
		return gamestate.View{}, err
	}
	return e.profile.Read(e.bus)
}

// Pixels returns the last completed frame as Width*Height packed pixels,
// row-major, each laid out in memory as R, G, B, A bytes. The slice aliases
// the emulator's buffer and is only valid until the next mutating call.
func (e *Environment) Pixels() ([]uint32, error) {
	if err := e.check("Pixels", true); err != nil {
		return nil, err
	}
	return e.bus.GetFrameBuffer(), nil
}

// PixelsRGBA returns the last frame as R, G, B, A bytes. The slice is reused
// by later calls.
func (e *Environment) PixelsRGBA() ([]byte, error) {
	pixels, err := e.Pixels()
	if err != nil {
		return nil, err
	}
	if e.rgba == nil {
		e.rgba = make([]byte, len(pixels)*4)
	}
	for i, p := range pixels {
		binary.LittleEndian.PutUint32(e.rgba[i*4:], p)
	}
	return e.rgba, nil
}

// Image returns a copy of the last frame
func (e *Environment) Image() (*image.RGBA, error) {
	raw, err := e.PixelsRGBA()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	copy(img.Pix, raw)
	return img, nil
}

// Frames returns the number of frames run in the current episode, not
// counting the start sequence.
func (e *Environment) Frames() (uint64, error) {
	if err := e.check("Frames", false); err != nil {
		return 0, err
	}
	return e.frames, nil
}

// Peek reads a byte from the console's address space
func (e *Environment) Peek(address uint16) (uint8, error) {
	if err := e.check("Peek", true); err != nil {
		return 0, err
	}
	return e.bus.Peek(address), nil
}

// Cartridge returns the loaded cartridge's header
func (e *Environment) Cartridge() (cartridge.Header, error) {
	if err := e.check("Cartridge", false); err != nil {
		return cartridge.Header{}, err
	}
	return e.cart.Header(), nil
}

// Profile returns the game-state profile in use
func (e *Environment) Profile() (gamestate.Profile, error) {
	if err := e.check("Profile", false); err != nil {
		return gamestate.Generic, err
	}
	return e.profile, nil
}

// Destroy releases the emulator. Every later call fails with ErrDestroyed.
func (e *Environment) Destroy() error {
	if err := e.check("Destroy", false); err != nil {
		return err
	}
	e.state = Destroyed
	e.running = false
	e.bus = nil
	e.cart = nil
	e.rgba = nil
	log.Printf("[ENV] Destroyed")
	return nil
}
