// Package memory implements the DMG address decoder: it owns work RAM and
// high RAM and routes every other access to the component that owns it.
package memory

import (
	"fmt"
	"log"

	"tetrisenv/internal/interrupt"
)

// Memory map boundaries
const (
	romEnd      = 0x8000
	vramEnd     = 0xA000
	eramEnd     = 0xC000
	wramEnd     = 0xE000
	echoEnd     = 0xFE00
	oamEnd      = 0xFEA0
	unusableEnd = 0xFF00
	ioEnd       = 0xFF80
	hramEnd     = 0xFFFF

	// BootROMDisable unmaps the boot ROM when written with a non-zero value
	BootROMDisable = 0xFF50
	// DMA starts an OAM transfer from value<<8
	DMA = 0xFF46
)

// I/O register addresses owned by memory itself
const (
	serialData    = 0xFF01
	serialControl = 0xFF02
	soundStart    = 0xFF10
	soundEnd      = 0xFF40
)

// PPUInterface defines the interface for LCD register, VRAM and OAM access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	ReadVRAM(address uint16) uint8
	WriteVRAM(address uint16, value uint8)
	ReadOAM(address uint16) uint8
	WriteOAM(address uint16, value uint8)
}

// TimerInterface defines the interface for the DIV/TIMA/TMA/TAC registers
type TimerInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptInterface defines the interface for IF/IE access and priority
// arbitration
type InterruptInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Highest() (interrupt.Kind, bool)
	Clear(k interrupt.Kind)
}

// InputInterface defines the interface for the P1 register. Write reports
// whether the new selection exposed a held button.
type InputInterface interface {
	Read() uint8
	Write(value uint8) bool
}

// CartridgeInterface defines the interface for cartridge access
type CartridgeInterface interface {
	ReadROM(address uint16) uint8
	WriteROM(address uint16, value uint8)
	ReadRAM(address uint16) uint8
	WriteRAM(address uint16, value uint8)
}

// DecodeError is raised when an address matches no region. Every 16-bit
// address is mapped, so this indicates a bug in the decoder.
type DecodeError struct {
	Address uint16
	Write   bool
}

func (e *DecodeError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("memory: %s of undecoded address 0x%04X", op, e.Address)
}

// Memory represents the DMG memory map
type Memory struct {
	wram [0x2000]uint8 // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]uint8   // 0xFF80-0xFFFE

	// Plain I/O bytes with no behaviour behind them
	serialData    uint8
	serialControl uint8
	sound         [soundEnd - soundStart]uint8

	ppu        PPUInterface
	timer      TimerInterface
	interrupts InterruptInterface
	input      InputInterface
	cartridge  CartridgeInterface

	bootROM    []uint8
	bootMapped bool

	// DMA callback and the last value written to 0xFF46
	dmaCallback func(uint8)
	dmaSource   uint8
	dmaActive   bool

	// Called when a P1 write pulls a line low
	joypadCallback func()

	debugEnabled bool
}

// New creates a new Memory instance
func New(ppu PPUInterface, timer TimerInterface, interrupts InterruptInterface,
	input InputInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppu:        ppu,
		timer:      timer,
		interrupts: interrupts,
		input:      input,
		cartridge:  cart,
	}
}

// Reset zero-fills RAM and remaps the boot ROM if one is installed.
func (m *Memory) Reset() {
	m.wram = [0x2000]uint8{}
	m.hram = [0x7F]uint8{}
	m.serialData = 0
	m.serialControl = 0
	m.sound = [soundEnd - soundStart]uint8{}
	m.dmaSource = 0xFF
	m.dmaActive = false
	m.bootMapped = len(m.bootROM) > 0
}

// SetBootROM installs a boot ROM overlay for 0x0000-0x00FF. It is mapped
// from the next Reset until the program writes 0xFF50.
func (m *Memory) SetBootROM(data []uint8) {
	m.bootROM = append([]uint8(nil), data...)
	m.bootMapped = len(m.bootROM) > 0
}

// BootROMMapped reports whether the boot ROM overlay is active
func (m *Memory) BootROMMapped() bool {
	return m.bootMapped
}

// SetDMACallback sets the DMA callback function
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// SetJoypadCallback sets the function called when a P1 write raises the
// joypad interrupt
func (m *Memory) SetJoypadCallback(callback func()) {
	m.joypadCallback = callback
}

// SetDMAActive blocks CPU reads below the I/O window while a transfer runs.
// I/O registers and HRAM stay readable.
func (m *Memory) SetDMAActive(active bool) {
	m.dmaActive = active
}

// EnableDebug enables logging of writes to unmapped I/O
func (m *Memory) EnableDebug(enabled bool) {
	m.debugEnabled = enabled
}

// PendingInterrupt returns the interrupt the CPU services next
func (m *Memory) PendingInterrupt() (interrupt.Kind, bool) {
	return m.interrupts.Highest()
}

// AcknowledgeInterrupt clears a serviced request
func (m *Memory) AcknowledgeInterrupt(k interrupt.Kind) {
	m.interrupts.Clear(k)
}

// Read reads a byte as the CPU sees it
func (m *Memory) Read(address uint16) uint8 {
	if m.dmaActive && address < unusableEnd {
		return 0xFF
	}
	return m.Peek(address)
}

// Peek reads a byte without the DMA bus conflict. The DMA engine and
// debugging tools use it.
func (m *Memory) Peek(address uint16) uint8 {
	switch {
	case address < romEnd:
		if m.bootMapped && int(address) < len(m.bootROM) {
			return m.bootROM[address]
		}
		return m.cartridge.ReadROM(address)
	case address < vramEnd:
		return m.ppu.ReadVRAM(address)
	case address < eramEnd:
		return m.cartridge.ReadRAM(address)
	case address < wramEnd:
		return m.wram[address-0xC000]
	case address < echoEnd:
		return m.wram[address-0xE000]
	case address < oamEnd:
		return m.ppu.ReadOAM(address)
	case address < unusableEnd:
		return 0xFF
	case address < ioEnd:
		return m.readIO(address)
	case address < hramEnd:
		return m.hram[address-0xFF80]
	case address == hramEnd:
		return m.interrupts.Read(address)
	}
	panic(&DecodeError{Address: address})
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < romEnd:
		m.cartridge.WriteROM(address, value)
	case address < vramEnd:
		m.ppu.WriteVRAM(address, value)
	case address < eramEnd:
		m.cartridge.WriteRAM(address, value)
	case address < wramEnd:
		m.wram[address-0xC000] = value
	case address < echoEnd:
		m.wram[address-0xE000] = value
	case address < oamEnd:
		m.ppu.WriteOAM(address, value)
	case address < unusableEnd:
		// unusable region, writes are dropped
	case address < ioEnd:
		m.writeIO(address, value)
	case address < hramEnd:
		m.hram[address-0xFF80] = value
	case address == hramEnd:
		m.interrupts.Write(address, value)
	default:
		panic(&DecodeError{Address: address, Write: true})
	}
}

func (m *Memory) readIO(address uint16) uint8 {
	switch {
	case address == 0xFF00:
		return m.input.Read()
	case address == serialData:
		return m.serialData
	case address == serialControl:
		return m.serialControl | 0x7E
	case address >= 0xFF04 && address <= 0xFF07:
		return m.timer.Read(address)
	case address == 0xFF0F:
		return m.interrupts.Read(address)
	case address >= soundStart && address < soundEnd:
		return m.sound[address-soundStart]
	case address == DMA:
		return m.dmaSource
	case address >= 0xFF40 && address <= 0xFF4B:
		return m.ppu.ReadRegister(address)
	}
	return 0xFF
}

func (m *Memory) writeIO(address uint16, value uint8) {
	switch {
	case address == 0xFF00:
		if m.input.Write(value) && m.joypadCallback != nil {
			m.joypadCallback()
		}
	case address == serialData:
		m.serialData = value
	case address == serialControl:
		m.serialControl = value & 0x81
	case address >= 0xFF04 && address <= 0xFF07:
		m.timer.Write(address, value)
	case address == 0xFF0F:
		m.interrupts.Write(address, value)
	case address >= soundStart && address < soundEnd:
		m.sound[address-soundStart] = value
	case address == DMA:
		m.dmaSource = value
		if m.dmaCallback != nil {
			m.dmaCallback(value)
		}
	case address >= 0xFF40 && address <= 0xFF4B:
		m.ppu.WriteRegister(address, value)
	case address == BootROMDisable:
		if value != 0 && m.bootMapped {
			m.bootMapped = false
			if m.debugEnabled {
				log.Printf("[MEMORY_DEBUG] Boot ROM unmapped")
			}
		}
	default:
		if m.debugEnabled {
			log.Printf("[MEMORY_DEBUG] Write to unmapped I/O 0x%04X = 0x%02X", address, value)
		}
	}
}
