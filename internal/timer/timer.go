// Package timer implements the DMG divider and programmable timer.
package timer

// Register addresses
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// overflowDelay is the number of cycles TIMA reads 0x00 after overflowing
// before it is reloaded from TMA and the interrupt is raised.
const overflowDelay = 4

// rateBits maps TAC bits 0-1 to the divider bit whose falling edge clocks TIMA.
// 00: 4096 Hz (every 1024 cycles), 01: 262144 Hz (16), 10: 65536 Hz (64), 11: 16384 Hz (256).
var rateBits = [4]uint{9, 3, 5, 7}

// Timer represents the divider and TIMA counter
type Timer struct {
	counter uint16 // internal 16-bit divider, DIV is the upper byte
	tima    uint8
	tma     uint8
	tac     uint8

	reloadIn int // cycles until a pending overflow reload, 0 if none
}

// New creates a timer in its post-boot state
func New() *Timer {
	t := &Timer{}
	t.Reset()
	return t
}

// Reset restores the post-boot register values.
func (t *Timer) Reset() {
	t.counter = 0xABCC
	t.tima = 0
	t.tma = 0
	t.tac = 0x00
	t.reloadIn = 0
}

// ResetCounter sets the internal divider to an explicit value. Used when a
// boot ROM is run, which starts the divider from zero.
func (t *Timer) ResetCounter(value uint16) {
	t.counter = value
}

// Counter returns the internal 16-bit divider value.
func (t *Timer) Counter() uint16 {
	return t.counter
}

// signal returns the AND of the timer enable bit and the selected divider bit.
func (t *Timer) signal() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	return t.counter&(1<<rateBits[t.tac&0x03]) != 0
}

// Step advances the timer by the given number of cycles and reports
// whether a timer interrupt was raised.
func (t *Timer) Step(cycles int) bool {
	irq := false
	for i := 0; i < cycles; i++ {
		if t.tick() {
			irq = true
		}
	}
	return irq
}

func (t *Timer) tick() bool {
	irq := false
	if t.reloadIn > 0 {
		t.reloadIn--
		if t.reloadIn == 0 {
			t.tima = t.tma
			irq = true
		}
	}

	before := t.signal()
	t.counter++
	if before && !t.signal() {
		t.increment()
	}
	return irq
}

func (t *Timer) increment() {
	t.tima++
	if t.tima == 0 {
		t.reloadIn = overflowDelay
	}
}

// Read handles reads from the timer registers
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case DIV:
		return uint8(t.counter >> 8)
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

// Write handles writes to the timer registers
func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case DIV:
		// Any write clears the whole divider, which can produce a falling edge
		before := t.signal()
		t.counter = 0
		if before {
			t.increment()
		}
	case TIMA:
		// A write during the overflow delay cancels the reload
		t.reloadIn = 0
		t.tima = value
	case TMA:
		t.tma = value
	case TAC:
		before := t.signal()
		t.tac = value & 0x07
		if before && !t.signal() {
			t.increment()
		}
	}
}
