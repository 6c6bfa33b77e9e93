// Package cartridge implements cartridge loading, header parsing and the
// memory bank controllers the emulator supports.
package cartridge

import (
	"errors"
	"fmt"
	"log"

	"tetrisenv/internal/romloader"
)

var (
	// ErrMalformedHeader is returned for images whose header cannot be trusted
	ErrMalformedHeader = errors.New("malformed cartridge header")

	// ErrUnsupportedMapper is returned for cartridge types without a mapper
	ErrUnsupportedMapper = errors.New("unsupported cartridge type")
)

// Mapper interface for the cartridge's bank controller. Addresses are CPU
// addresses in 0x0000-0x7FFF (ROM and control registers) and 0xA000-0xBFFF
// (external RAM).
type Mapper interface {
	ReadROM(address uint16) uint8
	WriteControl(address uint16, value uint8)
	ReadRAM(address uint16) uint8
	WriteRAM(address uint16, value uint8)
	Reset()
	// Bank returns the ROM bank mapped at 0x4000-0x7FFF
	Bank() int
}

// Cartridge represents a loaded cartridge image
type Cartridge struct {
	header Header
	rom    []uint8
	ram    []uint8
	mapper Mapper

	// Name of the file the image came from
	source string
}

// LoadFromFile loads a cartridge from a raw image or an archive containing one
func LoadFromFile(path string) (*Cartridge, error) {
	data, name, err := romloader.Load(path)
	if err != nil {
		return nil, err
	}

	cart, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	cart.source = name

	log.Printf("[CART] Loaded %s: title=%q type=%s rom=%dKB ram=%dKB",
		name, cart.header.Title, cart.header.Type, cart.header.ROMSize/1024, cart.header.RAMSize/1024)
	return cart, nil
}

// New creates a cartridge from raw image bytes. The image is copied.
func New(data []byte) (*Cartridge, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	cart := &Cartridge{
		header: header,
		rom:    append([]uint8(nil), data...),
	}

	switch header.Type {
	case TypeROMOnly, TypeROMRAM, TypeROMRAMBattery:
		if header.Type != TypeROMOnly {
			cart.ram = make([]uint8, header.RAMSize)
		}
		cart.mapper = newROMOnly(cart)
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBatt:
		if header.Type != TypeMBC1 {
			cart.ram = make([]uint8, header.RAMSize)
		}
		cart.mapper = newMBC1(cart)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMapper, header.Type)
	}

	return cart, nil
}

// Header returns the parsed cartridge header
func (c *Cartridge) Header() Header {
	return c.header
}

// Source returns the file name the image was loaded from
func (c *Cartridge) Source() string {
	return c.source
}

// Reset restores the mapper's power-on bank selection and clears external RAM.
func (c *Cartridge) Reset() {
	c.mapper.Reset()
	for i := range c.ram {
		c.ram[i] = 0
	}
}

// ReadROM reads from the 0x0000-0x7FFF window
func (c *Cartridge) ReadROM(address uint16) uint8 {
	return c.mapper.ReadROM(address)
}

// ROMBank returns the bank currently in the switchable ROM window
func (c *Cartridge) ROMBank() int {
	return c.mapper.Bank()
}

// WriteROM handles writes to the ROM window, which only reach the mapper's
// control registers.
func (c *Cartridge) WriteROM(address uint16, value uint8) {
	c.mapper.WriteControl(address, value)
}

// ReadRAM reads from the 0xA000-0xBFFF window
func (c *Cartridge) ReadRAM(address uint16) uint8 {
	return c.mapper.ReadRAM(address)
}

// WriteRAM writes to the 0xA000-0xBFFF window
func (c *Cartridge) WriteRAM(address uint16, value uint8) {
	c.mapper.WriteRAM(address, value)
}
