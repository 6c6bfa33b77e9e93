// Package ppu implements the DMG Picture Processing Unit: the LCD mode state
// machine, STAT/VBlank interrupt sources and a scanline compositor.
package ppu

import (
	"log"
	"sort"
)

// Screen geometry and timing
const (
	ScreenWidth    = 160
	ScreenHeight   = 144
	CyclesPerLine  = 456
	LinesPerFrame  = 154
	CyclesPerFrame = CyclesPerLine * LinesPerFrame // 70224

	oamScanCycles     = 80
	transferCycles    = 172
	maxTransferCycles = 289
	maxLineSprites    = 10
)

// Register addresses
const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

// LCDC bits
const (
	lcdcBGEnable     = 1 << 0
	lcdcOBJEnable    = 1 << 1
	lcdcOBJSize      = 1 << 2
	lcdcBGMap        = 1 << 3
	lcdcTileData     = 1 << 4
	lcdcWindowEnable = 1 << 5
	lcdcWindowMap    = 1 << 6
	lcdcEnable       = 1 << 7
)

// STAT interrupt select bits
const (
	statHBlank = 1 << 3
	statVBlank = 1 << 4
	statOAM    = 1 << 5
	statLYC    = 1 << 6
)

// Mode is the LCD controller mode reported in STAT bits 0-1
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

// Events reported by Step for the bus to act on
type Events uint8

const (
	EventVBlank Events = 1 << iota // request the VBlank interrupt
	EventSTAT                      // request the LCD STAT interrupt
	EventFrame                     // a completed frame is in the front buffer
)

type sprite struct {
	y, x  int
	tile  uint8
	flags uint8
	index int
}

// PPU represents the DMG LCD controller
type PPU struct {
	// Registers (CPU-visible)
	lcdc uint8 // 0xFF40
	stat uint8 // 0xFF41, interrupt select bits 3-6 only
	scy  uint8 // 0xFF42
	scx  uint8 // 0xFF43
	ly   uint8 // 0xFF44
	lyc  uint8 // 0xFF45
	bgp  uint8 // 0xFF47
	obp0 uint8 // 0xFF48
	obp1 uint8 // 0xFF49
	wy   uint8 // 0xFF4A
	wx   uint8 // 0xFF4B

	// Timing state
	mode         Mode
	dot          int // cycles into the current line
	transferLen  int // length of mode 3 on this line
	windowLine   int // internal window line counter
	statLine     bool
	events       Events // raised by register writes, returned by the next Step
	frameCount   uint64
	debugEnabled bool

	// Memory
	vram [0x2000]uint8
	oam  [0xA0]uint8

	// Sprites selected during mode 2
	lineSprites [maxLineSprites]sprite
	spriteCount int

	// Background colour indices of the current line, for sprite priority
	bgIndex [ScreenWidth]uint8

	back    [ScreenWidth * ScreenHeight]uint32
	front   [ScreenWidth * ScreenHeight]uint32
	palette Palette
}

// New creates a new PPU instance with the grey palette
func New() *PPU {
	p := &PPU{palette: GreyPalette}
	p.Reset()
	return p
}

// Reset returns the PPU to its power-on state: LCD off, memory cleared.
func (p *PPU) Reset() {
	p.lcdc, p.stat, p.scy, p.scx = 0, 0, 0, 0
	p.ly, p.lyc, p.wy, p.wx = 0, 0, 0, 0
	p.bgp, p.obp0, p.obp1 = 0, 0, 0

	p.mode = ModeHBlank
	p.dot = 0
	p.transferLen = transferCycles
	p.windowLine = 0
	p.statLine = false
	p.events = 0
	p.frameCount = 0
	p.spriteCount = 0

	p.vram = [0x2000]uint8{}
	p.oam = [0xA0]uint8{}
	p.clearBuffers()
}

// SetPostBootState loads the register values the boot ROM leaves behind and
// starts the LCD at line 0.
func (p *PPU) SetPostBootState() {
	p.lcdc = 0x91
	p.bgp = 0xFC
	p.obp0 = 0xFF
	p.obp1 = 0xFF
	p.startLCD()
}

// SetPalette selects the four output colours
func (p *PPU) SetPalette(palette Palette) {
	p.palette = palette
}

// EnableDebug toggles mode change logging
func (p *PPU) EnableDebug(enabled bool) {
	p.debugEnabled = enabled
}

// Enabled reports whether the LCD is on
func (p *PPU) Enabled() bool {
	return p.lcdc&lcdcEnable != 0
}

// Mode returns the current LCD mode
func (p *PPU) Mode() Mode {
	return p.mode
}

// LY returns the current line
func (p *PPU) LY() uint8 {
	return p.ly
}

// FrameCount returns the number of frames presented since reset
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Frame returns the front buffer, which only ever holds completed frames
func (p *PPU) Frame() *[ScreenWidth * ScreenHeight]uint32 {
	return &p.front
}

// PresentBlank fills the front buffer with colour 0. The bus calls it at a
// frame boundary while the LCD is off.
func (p *PPU) PresentBlank() {
	for i := range p.front {
		p.front[i] = p.palette[0]
	}
	p.frameCount++
}

func (p *PPU) clearBuffers() {
	for i := range p.back {
		p.back[i] = p.palette[0]
		p.front[i] = p.palette[0]
	}
}

// Step advances the PPU by the given number of cycles and reports the
// interrupts and frame completions that happened along the way.
func (p *PPU) Step(cycles int) Events {
	ev := p.events
	p.events = 0

	if !p.Enabled() {
		return ev
	}

	for cycles > 0 {
		n := p.untilTransition()
		if n > cycles {
			n = cycles
		}
		p.dot += n
		cycles -= n
		if p.dot == p.transitionDot() {
			ev |= p.transition()
		}
	}
	return ev
}

// transitionDot returns the dot at which the current mode ends
func (p *PPU) transitionDot() int {
	switch p.mode {
	case ModeOAMScan:
		return oamScanCycles
	case ModeTransfer:
		return oamScanCycles + p.transferLen
	}
	return CyclesPerLine
}

func (p *PPU) untilTransition() int {
	return p.transitionDot() - p.dot
}

func (p *PPU) transition() Events {
	var ev Events

	switch p.mode {
	case ModeOAMScan:
		p.transferLen = p.mode3Length()
		p.setMode(ModeTransfer)
	case ModeTransfer:
		p.renderLine()
		p.setMode(ModeHBlank)
	case ModeHBlank:
		p.dot = 0
		p.ly++
		if p.ly == ScreenHeight {
			p.setMode(ModeVBlank)
			p.front = p.back
			p.frameCount++
			ev |= EventVBlank | EventFrame
		} else {
			p.beginLine()
		}
	case ModeVBlank:
		p.dot = 0
		p.ly++
		if p.ly == LinesPerFrame {
			p.ly = 0
			p.windowLine = 0
			p.beginLine()
		}
	}

	if p.updateStatLine() {
		ev |= EventSTAT
	}
	return ev
}

func (p *PPU) setMode(mode Mode) {
	if p.debugEnabled && mode == ModeVBlank {
		log.Printf("[PPU_DEBUG] Frame %d complete", p.frameCount)
	}
	p.mode = mode
}

// beginLine starts mode 2 on a visible line
func (p *PPU) beginLine() {
	p.setMode(ModeOAMScan)
	p.selectSprites()
}

func (p *PPU) startLCD() {
	p.ly = 0
	p.dot = 0
	p.windowLine = 0
	p.beginLine()
	p.statLine = false
	if p.updateStatLine() {
		p.events |= EventSTAT
	}
}

func (p *PPU) stopLCD() {
	if p.debugEnabled {
		log.Printf("[PPU_DEBUG] LCD off at LY=%d", p.ly)
	}
	p.ly = 0
	p.dot = 0
	p.mode = ModeHBlank
	p.statLine = false
}

// updateStatLine recomputes the STAT interrupt line and reports a rising edge
func (p *PPU) updateStatLine() bool {
	line := (p.ly == p.lyc && p.stat&statLYC != 0) ||
		(p.mode == ModeHBlank && p.stat&statHBlank != 0) ||
		(p.mode == ModeVBlank && p.stat&statVBlank != 0) ||
		(p.mode == ModeOAMScan && p.stat&statOAM != 0)

	rising := line && !p.statLine
	p.statLine = line
	return rising
}

// mode3Length returns the transfer length for the current line
func (p *PPU) mode3Length() int {
	length := transferCycles + int(p.scx&7) + 6*p.spriteCount
	if p.windowVisible() {
		length += 6
	}
	if length > maxTransferCycles {
		length = maxTransferCycles
	}
	return length
}

func (p *PPU) spriteHeight() int {
	if p.lcdc&lcdcOBJSize != 0 {
		return 16
	}
	return 8
}

// selectSprites picks up to ten sprites overlapping the current line in OAM
// order, then orders them by drawing priority: smaller X first, OAM index
// breaking ties.
func (p *PPU) selectSprites() {
	p.spriteCount = 0
	height := p.spriteHeight()
	line := int(p.ly)

	for i := 0; i < 40 && p.spriteCount < maxLineSprites; i++ {
		y := int(p.oam[i*4]) - 16
		if line < y || line >= y+height {
			continue
		}
		p.lineSprites[p.spriteCount] = sprite{
			y:     y,
			x:     int(p.oam[i*4+1]) - 8,
			tile:  p.oam[i*4+2],
			flags: p.oam[i*4+3],
			index: i,
		}
		p.spriteCount++
	}

	selected := p.lineSprites[:p.spriteCount]
	sort.SliceStable(selected, func(a, b int) bool {
		return selected[a].x < selected[b].x
	})
}

// ReadRegister reads an LCD register
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case LCDC:
		return p.lcdc
	case STAT:
		value := 0x80 | p.stat | uint8(p.mode)
		if p.ly == p.lyc {
			value |= 0x04
		}
		return value
	case SCY:
		return p.scy
	case SCX:
		return p.scx
	case LY:
		return p.ly
	case LYC:
		return p.lyc
	case BGP:
		return p.bgp
	case OBP0:
		return p.obp0
	case OBP1:
		return p.obp1
	case WY:
		return p.wy
	case WX:
		return p.wx
	}
	return 0xFF
}

// WriteRegister writes an LCD register. LY is read only.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case LCDC:
		wasOn := p.Enabled()
		p.lcdc = value
		switch {
		case wasOn && !p.Enabled():
			p.stopLCD()
		case !wasOn && p.Enabled():
			p.startLCD()
		}
	case STAT:
		p.stat = value & 0x78
		if p.Enabled() && p.updateStatLine() {
			p.events |= EventSTAT
		}
	case SCY:
		p.scy = value
	case SCX:
		p.scx = value
	case LYC:
		p.lyc = value
		if p.Enabled() && p.updateStatLine() {
			p.events |= EventSTAT
		}
	case BGP:
		p.bgp = value
	case OBP0:
		p.obp0 = value
	case OBP1:
		p.obp1 = value
	case WY:
		p.wy = value
	case WX:
		p.wx = value
	}
}

// vramLocked reports whether the CPU is cut off from VRAM
func (p *PPU) vramLocked() bool {
	return p.Enabled() && p.mode == ModeTransfer
}

// oamLocked reports whether the CPU is cut off from OAM
func (p *PPU) oamLocked() bool {
	return p.Enabled() && (p.mode == ModeOAMScan || p.mode == ModeTransfer)
}

// ReadVRAM reads 0x8000-0x9FFF
func (p *PPU) ReadVRAM(address uint16) uint8 {
	if p.vramLocked() {
		return 0xFF
	}
	return p.vram[address&0x1FFF]
}

// WriteVRAM writes 0x8000-0x9FFF
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	if p.vramLocked() {
		return
	}
	p.vram[address&0x1FFF] = value
}

// ReadOAM reads 0xFE00-0xFE9F
func (p *PPU) ReadOAM(address uint16) uint8 {
	if p.oamLocked() {
		return 0xFF
	}
	return p.oam[address-0xFE00]
}

// WriteOAM writes 0xFE00-0xFE9F
func (p *PPU) WriteOAM(address uint16, value uint8) {
	if p.oamLocked() {
		return
	}
	p.oam[address-0xFE00] = value
}

// WriteOAMDirect stores an OAM byte regardless of mode (for DMA)
func (p *PPU) WriteOAMDirect(index int, value uint8) {
	p.oam[index] = value
}
