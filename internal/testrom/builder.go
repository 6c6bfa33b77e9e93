// Package testrom builds small synthetic cartridge images for tests.
package testrom

import (
	"fmt"
)

const (
	bankSize    = 0x4000
	entryPoint  = 0x0100
	codeStart   = 0x0150
	titleOffset = 0x0134
)

// Config represents configuration for test ROM generation
type Config struct {
	Title          string
	Type           uint8              // cartridge type byte (0x147)
	Banks          int                // ROM size in 16KB banks, power of two >= 2
	RAMSizeCode    uint8              // RAM size code (0x149)
	Code           []uint8            // program placed at 0x0150, entry jumps there
	Data           map[int][]uint8    // raw bytes at image offsets
	Vectors        map[uint16][]uint8 // interrupt/RST handlers
	GlobalChecksum *uint16            // nil computes the real one
	BadChecksum    bool
}

// Builder provides a fluent interface for building test ROMs
type Builder struct {
	config Config
}

// NewBuilder creates a builder for a 32KB ROM-only image that loops forever
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Title:   "TESTROM",
			Type:    0x00,
			Banks:   2,
			Code:    []uint8{0x18, 0xFE}, // JR -2
			Data:    make(map[int][]uint8),
			Vectors: make(map[uint16][]uint8),
		},
	}
}

// WithTitle sets the header title (truncated to 16 bytes)
func (b *Builder) WithTitle(title string) *Builder {
	b.config.Title = title
	return b
}

// WithType sets the cartridge type byte
func (b *Builder) WithType(t uint8) *Builder {
	b.config.Type = t
	return b
}

// WithMBC1 makes an MBC1 image with the given number of 16KB banks
func (b *Builder) WithMBC1(banks int) *Builder {
	b.config.Type = 0x01
	b.config.Banks = banks
	return b
}

// WithRAM sets the RAM size code and switches ROM-only images to ROM+RAM
func (b *Builder) WithRAM(code uint8) *Builder {
	b.config.RAMSizeCode = code
	switch b.config.Type {
	case 0x00:
		b.config.Type = 0x08
	case 0x01:
		b.config.Type = 0x02
	}
	return b
}

// WithCode sets the program that runs after the entry point
func (b *Builder) WithCode(code []uint8) *Builder {
	b.config.Code = append([]uint8(nil), code...)
	return b
}

// WithHandler places code at an interrupt or RST vector
func (b *Builder) WithHandler(vector uint16, code []uint8) *Builder {
	b.config.Vectors[vector] = append([]uint8(nil), code...)
	return b
}

// WithData writes raw bytes at an image offset
func (b *Builder) WithData(offset int, data []uint8) *Builder {
	b.config.Data[offset] = append([]uint8(nil), data...)
	return b
}

// WithGlobalChecksum overrides the global checksum stored at 0x14E
func (b *Builder) WithGlobalChecksum(sum uint16) *Builder {
	b.config.GlobalChecksum = &sum
	return b
}

// WithBadChecksum corrupts the header checksum
func (b *Builder) WithBadChecksum() *Builder {
	b.config.BadChecksum = true
	return b
}

// Build generates the image
func (b *Builder) Build() ([]uint8, error) {
	cfg := b.config

	sizeCode := -1
	for code := 0; code <= 8; code++ {
		if 2<<code == cfg.Banks {
			sizeCode = code
			break
		}
	}
	if sizeCode < 0 {
		return nil, fmt.Errorf("bank count %d is not a power of two between 2 and 512", cfg.Banks)
	}
	if len(cfg.Code) > bankSize-codeStart {
		return nil, fmt.Errorf("program is %d bytes, too large for bank 0", len(cfg.Code))
	}

	rom := make([]uint8, cfg.Banks*bankSize)

	// Every bank starts with its own number so bank switching is visible
	for bank := 0; bank < cfg.Banks; bank++ {
		rom[bank*bankSize] = uint8(bank)
	}

	for vector, code := range cfg.Vectors {
		copy(rom[vector:], code)
	}

	// Entry: NOP; JP 0x0150
	copy(rom[entryPoint:], []uint8{0x00, 0xC3, codeStart & 0xFF, codeStart >> 8})

	title := cfg.Title
	if len(title) > 16 {
		title = title[:16]
	}
	copy(rom[titleOffset:], title)
	rom[0x147] = cfg.Type
	rom[0x148] = uint8(sizeCode)
	rom[0x149] = cfg.RAMSizeCode

	copy(rom[codeStart:], cfg.Code)
	for offset, data := range cfg.Data {
		copy(rom[offset:], data)
	}

	var sum uint8
	for addr := 0x134; addr < 0x14D; addr++ {
		sum = sum - rom[addr] - 1
	}
	if cfg.BadChecksum {
		sum++
	}
	rom[0x14D] = sum

	if cfg.GlobalChecksum != nil {
		rom[0x14E] = uint8(*cfg.GlobalChecksum >> 8)
		rom[0x14F] = uint8(*cfg.GlobalChecksum)
	} else {
		var global uint16
		for i, v := range rom {
			if i != 0x14E && i != 0x14F {
				global += uint16(v)
			}
		}
		rom[0x14E] = uint8(global >> 8)
		rom[0x14F] = uint8(global)
	}

	return rom, nil
}

// MustBuild is Build for tests that construct known-good images
func (b *Builder) MustBuild() []uint8 {
	rom, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rom
}
