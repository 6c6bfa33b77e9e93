// Package input implements the DMG joypad register.
package input

import (
	"log"
	"strings"
)

// Button represents one of the eight DMG buttons
type Button uint8

// Button bits. The low nibble is the directional group, the high nibble the
// action group, each in the order the P1 register exposes them.
const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Convenience constants for shorter names
const (
	Right  = ButtonRight
	Left   = ButtonLeft
	Up     = ButtonUp
	Down   = ButtonDown
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
)

// Address of the P1/JOYP register
const Address = 0xFF00

// P1 select bits (active low)
const (
	selectDirections uint8 = 0x10
	selectActions    uint8 = 0x20
)

// String returns a readable button name
func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "Right"
	case ButtonLeft:
		return "Left"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	}
	return "Unknown"
}

// Buttons lists every button in P1 bit order
var Buttons = [8]Button{
	ButtonRight, ButtonLeft, ButtonUp, ButtonDown,
	ButtonA, ButtonB, ButtonSelect, ButtonStart,
}

// ParseButton maps a case-insensitive button name to its Button
func ParseButton(name string) (Button, bool) {
	for _, b := range Buttons {
		if strings.EqualFold(name, b.String()) {
			return b, true
		}
	}
	return 0, false
}

// Joypad tracks pressed buttons and the group currently selected through P1.
type Joypad struct {
	// Pressed buttons, 1 = pressed
	buttons uint8

	// P1 bits 4-5 as last written by the CPU
	selection uint8

	// Debug tracking
	readCount    uint64
	debugEnabled bool
}

// New creates a new Joypad instance
func New() *Joypad {
	j := &Joypad{}
	j.Reset()
	return j
}

// Reset releases every button and deselects both groups.
func (j *Joypad) Reset() {
	j.buttons = 0
	j.selection = selectDirections | selectActions
	j.readCount = 0
}

// lines returns the active-low input nibble for the current selection.
func (j *Joypad) lines() uint8 {
	nibble := uint8(0x0F)
	if j.selection&selectDirections == 0 {
		nibble &^= j.buttons & 0x0F
	}
	if j.selection&selectActions == 0 {
		nibble &^= j.buttons >> 4
	}
	return nibble
}

// SetButton records a button state. It reports whether the change pulled a
// selected input line low, which raises the joypad interrupt.
func (j *Joypad) SetButton(button Button, pressed bool) bool {
	before := j.lines()
	oldButtons := j.buttons

	if pressed {
		j.buttons |= uint8(button)
	} else {
		j.buttons &^= uint8(button)
	}

	if j.debugEnabled {
		log.Printf("[JOYPAD_DEBUG] SetButton: button=%s, pressed=%t, oldButtons=0x%02X, newButtons=0x%02X",
			button, pressed, oldButtons, j.buttons)
	}

	return before&^j.lines() != 0
}

// IsPressed returns true if the button is currently pressed
func (j *Joypad) IsPressed(button Button) bool {
	return j.buttons&uint8(button) != 0
}

// Buttons returns the raw pressed mask
func (j *Joypad) Buttons() uint8 {
	return j.buttons
}

// AnyPressed reports whether any button is held
func (j *Joypad) AnyPressed() bool {
	return j.buttons != 0
}

// Read returns the P1 register: bits 6-7 read as 1, bits 4-5 echo the
// selection, bits 0-3 are the active-low state of the selected group.
func (j *Joypad) Read() uint8 {
	j.readCount++
	result := 0xC0 | j.selection | j.lines()
	if j.debugEnabled && j.readCount%60 == 0 {
		log.Printf("[JOYPAD_DEBUG] P1 read #%d: result=0x%02X", j.readCount, result)
	}
	return result
}

// Write stores the group selection bits. Selecting a group in which a button
// is already held pulls a line low and reports an interrupt edge.
func (j *Joypad) Write(value uint8) bool {
	before := j.lines()
	j.selection = value & (selectDirections | selectActions)
	return before&^j.lines() != 0
}

// EnableDebug enables debug logging for this joypad
func (j *Joypad) EnableDebug(enable bool) {
	j.debugEnabled = enable
}
