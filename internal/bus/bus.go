// Package bus implements the system bus that owns and clocks every DMG component.
package bus

import (
	"log"

	"tetrisenv/internal/cartridge"
	"tetrisenv/internal/cpu"
	"tetrisenv/internal/input"
	"tetrisenv/internal/interrupt"
	"tetrisenv/internal/memory"
	"tetrisenv/internal/ppu"
	"tetrisenv/internal/timer"
)

// CyclesPerFrame is the cycle budget of one RunFrame call
const CyclesPerFrame = ppu.CyclesPerFrame

// OAM DMA copies 160 bytes and keeps the bus busy for 160 cycles
const (
	dmaLength = 0xA0
	dmaCycles = 160
)

// Options configures a new Bus
type Options struct {
	// BootROM is mapped over 0x0000-0x00FF at every reset when set.
	// Without one the components start in their post-boot state.
	BootROM []uint8

	// Palette selects the output colours. The zero value means grey.
	Palette ppu.Palette
}

// Bus connects all DMG components together
type Bus struct {
	// Core components
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	Memory     *memory.Memory
	Timer      *timer.Timer
	Interrupts *interrupt.Controller
	Joypad     *input.Joypad
	Cartridge  *cartridge.Cartridge

	// System state
	cycles     uint64 // total cycles since reset
	frameClock uint64 // cycles of completed frames
	frameCount uint64
	budget     int // cycles left in the current frame, negative after overshoot
	dmaLeft    int
	stalled    bool

	// Execution logging for testing
	executionLog   []ExecutionEvent
	loggingEnabled bool

	// Memory monitoring for debugging
	watchpoints       map[uint16]watchpoint
	watchpointLogging bool
}

type watchpoint struct {
	label string
	value uint8
}

// New creates a new system bus around a loaded cartridge and resets it
func New(cart *cartridge.Cartridge, opts Options) *Bus {
	b := &Bus{
		PPU:         ppu.New(),
		Timer:       timer.New(),
		Interrupts:  interrupt.New(),
		Joypad:      input.New(),
		Cartridge:   cart,
		watchpoints: make(map[uint16]watchpoint),
	}

	if opts.Palette != (ppu.Palette{}) {
		b.PPU.SetPalette(opts.Palette)
	}

	b.Memory = memory.New(b.PPU, b.Timer, b.Interrupts, b.Joypad, cart)
	if len(opts.BootROM) > 0 {
		b.Memory.SetBootROM(opts.BootROM)
	}

	// CPU needs memory interface
	b.CPU = cpu.New(b.Memory)

	// Set up callbacks
	b.Memory.SetDMACallback(b.startDMA)
	b.Memory.SetJoypadCallback(func() {
		b.Interrupts.Request(interrupt.Joypad)
	})

	b.Reset()
	return b
}

// Reset restores the cold-boot state of every component
func (b *Bus) Reset() {
	b.Cartridge.Reset()
	b.Memory.Reset()
	b.PPU.Reset()
	b.Timer.Reset()
	b.Interrupts.Reset()
	b.Joypad.Reset()

	if b.Memory.BootROMMapped() {
		b.CPU.ResetForBootROM()
		b.Timer.ResetCounter(0)
		b.Interrupts.Write(interrupt.FlagAddress, 0)
	} else {
		b.CPU.Reset()
		b.PPU.SetPostBootState()
	}

	b.cycles = 0
	b.frameClock = 0
	b.frameCount = 0
	b.budget = 0
	b.dmaLeft = 0
	b.stalled = false

	b.executionLog = make([]ExecutionEvent, 0)
	for address, wp := range b.watchpoints {
		wp.value = b.Memory.Peek(address)
		b.watchpoints[address] = wp
	}
}

// Step executes one CPU step and advances the other components by the
// cycles it took.
func (b *Bus) Step() int {
	pc := b.CPU.PC

	cycles := b.CPU.Step()
	b.tick(cycles)

	if b.loggingEnabled {
		b.executionLog = append(b.executionLog, ExecutionEvent{
			StepNumber: len(b.executionLog) + 1,
			PC:         pc,
			Cycles:     cycles,
			TotalCycle: b.cycles,
			LY:         b.PPU.LY(),
		})
	}
	return cycles
}

func (b *Bus) tick(cycles int) {
	if b.Timer.Step(cycles) {
		b.Interrupts.Request(interrupt.Timer)
	}

	events := b.PPU.Step(cycles)
	if events&ppu.EventVBlank != 0 {
		b.Interrupts.Request(interrupt.VBlank)
	}
	if events&ppu.EventSTAT != 0 {
		b.Interrupts.Request(interrupt.LCDStat)
	}

	if b.dmaLeft > 0 {
		b.dmaLeft -= cycles
		if b.dmaLeft <= 0 {
			b.dmaLeft = 0
			b.Memory.SetDMAActive(false)
		}
	}

	b.cycles += uint64(cycles)
}

// RunFrame runs one frame worth of cycles. Overshoot of the last
// instruction is carried into the next frame's budget. It reports true,
// without completing the frame, once the CPU can never make progress.
func (b *Bus) RunFrame() bool {
	if b.stalled {
		return true
	}

	b.budget += CyclesPerFrame
	for b.budget > 0 {
		if b.CPU.Stalled(b.Interrupts.Enabled()) {
			b.stalled = true
			log.Printf("[BUS] CPU stalled at PC=$%04X (ROM bank %d) after %d frames (locked=%t halted=%t)",
				b.CPU.PC, b.Cartridge.ROMBank(), b.frameCount, b.CPU.Locked(), b.CPU.Halted())
			return true
		}
		b.budget -= b.Step()
	}

	// With the LCD off the PPU never presents, so the frame boundary does
	if !b.PPU.Enabled() {
		b.PPU.PresentBlank()
	}

	b.frameClock += CyclesPerFrame
	b.frameCount++

	if b.watchpointLogging {
		b.CheckMemoryWatchpoints()
	}
	return false
}

// Run runs the emulator for a number of frames and reports whether it stalled
func (b *Bus) Run(frames int) bool {
	for i := 0; i < frames; i++ {
		if b.RunFrame() {
			return true
		}
	}
	return false
}

// startDMA copies a page into OAM immediately and locks the bus for the
// duration of the transfer.
func (b *Bus) startDMA(page uint8) {
	if page >= 0xE0 {
		page -= 0x20 // sources above WRAM read the echo
	}
	source := uint16(page) << 8
	for i := 0; i < dmaLength; i++ {
		b.PPU.WriteOAMDirect(i, b.Memory.Peek(source+uint16(i)))
	}

	b.dmaLeft = dmaCycles
	b.Memory.SetDMAActive(true)
}

// SetButton sets the state of a joypad button. A press also wakes the CPU
// from STOP.
func (b *Bus) SetButton(button input.Button, pressed bool) {
	if b.Joypad.SetButton(button, pressed) {
		b.Interrupts.Request(interrupt.Joypad)
	}
	if b.CPU.Stopped() && b.Joypad.AnyPressed() {
		b.CPU.Resume()
	}
}

// Peek reads a routed byte without side effects on the DMA lock
func (b *Bus) Peek(address uint16) uint8 {
	return b.Memory.Peek(address)
}

// GetFrameBuffer returns the last completed frame
func (b *Bus) GetFrameBuffer() []uint32 {
	return b.PPU.Frame()[:]
}

// Cycles returns the total number of cycles executed since reset
func (b *Bus) Cycles() uint64 {
	return b.cycles
}

// FrameClock returns the cycles of all completed frames. It advances by
// exactly CyclesPerFrame per RunFrame that did not stall.
func (b *Bus) FrameClock() uint64 {
	return b.frameClock
}

// GetFrameCount returns the number of completed frames
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// Stalled reports whether a previous RunFrame detected a stall
func (b *Bus) Stalled() bool {
	return b.stalled
}

// IsDMAInProgress returns whether DMA is currently in progress
func (b *Bus) IsDMAInProgress() bool {
	return b.dmaLeft > 0
}

// GetExecutionLog returns execution log for integration testing
func (b *Bus) GetExecutionLog() []ExecutionEvent {
	return b.executionLog
}

// EnableExecutionLogging enables execution logging for testing
func (b *Bus) EnableExecutionLogging() {
	b.loggingEnabled = true
}

// DisableExecutionLogging disables execution logging
func (b *Bus) DisableExecutionLogging() {
	b.loggingEnabled = false
}

// ClearExecutionLog clears the execution log
func (b *Bus) ClearExecutionLog() {
	b.executionLog = make([]ExecutionEvent, 0)
}

// ExecutionEvent represents a single execution step for testing
type ExecutionEvent struct {
	StepNumber int
	PC         uint16
	Cycles     int
	TotalCycle uint64
	LY         uint8
}

// GetCPUState returns the current CPU state for testing
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		SP:     b.CPU.SP,
		AF:     b.CPU.AF(),
		BC:     b.CPU.BC(),
		DE:     b.CPU.DE(),
		HL:     b.CPU.HL(),
		IME:    b.CPU.IME(),
		Halted: b.CPU.Halted(),
		Cycles: b.cycles,
	}
}

// CPUState represents CPU state snapshot for testing
type CPUState struct {
	PC, SP         uint16
	AF, BC, DE, HL uint16
	IME, Halted    bool
	Cycles         uint64
}

// AddMemoryWatchpoint adds a memory address to monitor for changes
func (b *Bus) AddMemoryWatchpoint(address uint16, label string) {
	b.watchpoints[address] = watchpoint{label: label, value: b.Memory.Peek(address)}
}

// EnableWatchpointLogging enables/disables memory watchpoint logging
func (b *Bus) EnableWatchpointLogging(enabled bool) {
	b.watchpointLogging = enabled
}

// CheckMemoryWatchpoints checks all watchpoints for changes and logs them
func (b *Bus) CheckMemoryWatchpoints() {
	for address, wp := range b.watchpoints {
		current := b.Memory.Peek(address)
		if current != wp.value {
			log.Printf("[MEMORY_WATCH] Frame %d: $%04X changed from $%02X to $%02X (%s)",
				b.frameCount, address, wp.value, current, wp.label)
			wp.value = current
			b.watchpoints[address] = wp
		}
	}
}

// EnableCPUDebug enables/disables CPU debug logging and loop detection
func (b *Bus) EnableCPUDebug(enable bool) {
	b.CPU.EnableDebugLogging(enable)
	b.CPU.EnableLoopDetection(enable)
}

// EnableDebug toggles debug logging in the PPU, memory and joypad
func (b *Bus) EnableDebug(enable bool) {
	b.PPU.EnableDebug(enable)
	b.Memory.EnableDebug(enable)
	b.Joypad.EnableDebug(enable)
}
