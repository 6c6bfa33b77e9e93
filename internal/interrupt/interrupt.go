// Package interrupt implements the interrupt flag and enable registers of the DMG.
package interrupt

// Kind identifies one interrupt source by its bit in IF/IE.
type Kind uint8

const (
	VBlank Kind = 1 << iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Mask covers the five implemented interrupt lines.
const Mask uint8 = 0x1F

// Register addresses
const (
	FlagAddress   = 0xFF0F
	EnableAddress = 0xFFFF
)

// Vector returns the fixed service address for an interrupt.
func (k Kind) Vector() uint16 {
	switch k {
	case VBlank:
		return 0x0040
	case LCDStat:
		return 0x0048
	case Timer:
		return 0x0050
	case Serial:
		return 0x0058
	case Joypad:
		return 0x0060
	}
	return 0
}

// String returns the interrupt name for logging
func (k Kind) String() string {
	switch k {
	case VBlank:
		return "VBlank"
	case LCDStat:
		return "LCDStat"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	}
	return "None"
}

// Controller holds the pending-flags (IF) and enable (IE) registers.
type Controller struct {
	flags  uint8
	enable uint8
}

// New creates a controller in its power-up state
func New() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Reset restores the post-boot values (IF=0xE1, IE=0x00).
func (c *Controller) Reset() {
	c.flags = 0x01
	c.enable = 0x00
}

// Request marks an interrupt as pending.
func (c *Controller) Request(k Kind) {
	c.flags |= uint8(k) & Mask
}

// Clear acknowledges a pending interrupt.
func (c *Controller) Clear(k Kind) {
	c.flags &^= uint8(k)
}

// Pending returns the set of interrupts that are both requested and enabled.
func (c *Controller) Pending() uint8 {
	return c.flags & c.enable & Mask
}

// Highest returns the single highest-priority pending and enabled interrupt.
// Priority is fixed by bit position: VBlank first, Joypad last.
func (c *Controller) Highest() (Kind, bool) {
	pending := c.Pending()
	if pending == 0 {
		return 0, false
	}
	for bit := uint8(0); bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			return Kind(1 << bit), true
		}
	}
	return 0, false
}

// Enabled returns the raw IE value masked to implemented lines.
func (c *Controller) Enabled() uint8 {
	return c.enable & Mask
}

// Read handles reads from IF and IE.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case FlagAddress:
		// Upper three bits are unused and read as 1
		return c.flags | 0xE0
	case EnableAddress:
		return c.enable
	}
	return 0xFF
}

// Write handles writes to IF and IE.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case FlagAddress:
		c.flags = value & Mask
	case EnableAddress:
		c.enable = value
	}
}
