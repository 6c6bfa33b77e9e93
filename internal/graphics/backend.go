// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"fmt"
	"strings"

	"tetrisenv/internal/ppu"
)

// Frame dimensions in pixels
const (
	FrameWidth  = ppu.ScreenWidth
	FrameHeight = ppu.ScreenHeight
)

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// SwapBuffers presents the rendered frame
	SwapBuffers()

	// PollEvents processes input events
	PollEvents() []InputEvent

	// RenderFrame renders a FrameWidth*FrameHeight buffer of packed
	// pixels (see ppu.RGBA) to the window
	RenderFrame(frame []uint32) error

	// SetStatus sets the status line shown with the frame
	SetStatus(status string)

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// Rendering configuration
	Filter string // "nearest", "linear"
	Scale  int

	// KeyMap maps keyboard keys to joypad buttons. Nil means DefaultKeyMap.
	KeyMap map[Key]Button

	// Backend-specific options
	Headless bool
	Debug    bool
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Button  Button
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyBackspace
	KeyShift
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	KeyP
	KeyR
	KeyF12
)

var keyNames = map[Key]string{
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeySpace:     "Space",
	KeyBackspace: "Backspace",
	KeyShift:     "Shift",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyW:         "W",
	KeyA:         "A",
	KeyS:         "S",
	KeyD:         "D",
	KeyJ:         "J",
	KeyK:         "K",
	KeyX:         "X",
	KeyZ:         "Z",
	KeyP:         "P",
	KeyR:         "R",
	KeyF12:       "F12",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKey returns the key with the given name, ignoring case
func ParseKey(name string) (Key, error) {
	for k, n := range keyNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// Button represents joypad buttons
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	}
	return "Unknown"
}

// ParseButton returns the button with the given name, ignoring case
func ParseButton(name string) (Button, error) {
	for b := ButtonA; b <= ButtonRight; b++ {
		if strings.EqualFold(b.String(), name) {
			return b, nil
		}
	}
	return ButtonUnknown, fmt.Errorf("unknown button %q", name)
}

// DefaultKeyMap returns the arrow keys plus Z/X for B/A, Backspace for
// Select and Enter for Start. WASD and J/K are accepted as alternatives.
func DefaultKeyMap() map[Key]Button {
	return map[Key]Button{
		KeyUp:        ButtonUp,
		KeyDown:      ButtonDown,
		KeyLeft:      ButtonLeft,
		KeyRight:     ButtonRight,
		KeyW:         ButtonUp,
		KeyS:         ButtonDown,
		KeyA:         ButtonLeft,
		KeyD:         ButtonRight,
		KeyX:         ButtonA,
		KeyZ:         ButtonB,
		KeyJ:         ButtonA,
		KeyK:         ButtonB,
		KeyEnter:     ButtonStart,
		KeyBackspace: ButtonSelect,
	}
}

// MapKeyEvents turns key events into button events using keyMap. Keys
// without a mapping are passed through unchanged.
func MapKeyEvents(events []InputEvent, keyMap map[Key]Button) []InputEvent {
	if keyMap == nil {
		keyMap = DefaultKeyMap()
	}
	out := make([]InputEvent, 0, len(events))
	for _, event := range events {
		if event.Type == InputEventTypeKey {
			if button, ok := keyMap[event.Key]; ok {
				out = append(out, InputEvent{
					Type:    InputEventTypeButton,
					Key:     event.Key,
					Button:  button,
					Pressed: event.Pressed,
				})
				continue
			}
		}
		out = append(out, event)
	}
	return out
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	}
	return nil, fmt.Errorf("unknown graphics backend %q", backendType)
}

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	headlessWindow, ok := window.(*HeadlessWindow)
	return headlessWindow, ok
}
