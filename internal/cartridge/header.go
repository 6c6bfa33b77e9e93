package cartridge

import (
	"fmt"
	"strings"
)

// Header field offsets
const (
	headerTitle          = 0x0134
	headerTitleEnd       = 0x0144
	headerCGBFlag        = 0x0143
	headerType           = 0x0147
	headerROMSize        = 0x0148
	headerRAMSize        = 0x0149
	headerVersion        = 0x014C
	headerChecksum       = 0x014D
	headerGlobalChecksum = 0x014E

	// HeaderEnd is the first byte past the cartridge header
	HeaderEnd = 0x0150
)

// Type is the cartridge type byte at 0x147
type Type uint8

const (
	TypeROMOnly       Type = 0x00
	TypeMBC1          Type = 0x01
	TypeMBC1RAM       Type = 0x02
	TypeMBC1RAMBatt   Type = 0x03
	TypeROMRAM        Type = 0x08
	TypeROMRAMBattery Type = 0x09
)

// String returns a readable cartridge type
func (t Type) String() string {
	switch t {
	case TypeROMOnly:
		return "ROM ONLY"
	case TypeMBC1:
		return "MBC1"
	case TypeMBC1RAM:
		return "MBC1+RAM"
	case TypeMBC1RAMBatt:
		return "MBC1+RAM+BATTERY"
	case TypeROMRAM:
		return "ROM+RAM"
	case TypeROMRAMBattery:
		return "ROM+RAM+BATTERY"
	}
	return fmt.Sprintf("type 0x%02X", uint8(t))
}

// ramSizes maps the RAM size code at 0x149 to a byte count.
var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header holds the fields of the cartridge header that the emulator uses
type Header struct {
	Title          string
	Type           Type
	ROMSize        int // bytes
	RAMSize        int // bytes
	Version        uint8
	Checksum       uint8
	GlobalChecksum uint16
}

// ROMBanks returns the number of 16KB banks declared by the header
func (h Header) ROMBanks() int {
	return h.ROMSize / 0x4000
}

// HeaderChecksum computes the checksum over 0x134-0x14C the way the boot
// ROM does.
func HeaderChecksum(rom []byte) uint8 {
	var sum uint8
	for addr := headerTitle; addr < headerChecksum; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

// ParseHeader reads and validates the header of a raw image.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < HeaderEnd {
		return Header{}, fmt.Errorf("%w: image is %d bytes", ErrMalformedHeader, len(rom))
	}

	if sum := HeaderChecksum(rom); sum != rom[headerChecksum] {
		return Header{}, fmt.Errorf("%w: header checksum 0x%02X, computed 0x%02X",
			ErrMalformedHeader, rom[headerChecksum], sum)
	}

	sizeCode := rom[headerROMSize]
	if sizeCode > 0x08 {
		return Header{}, fmt.Errorf("%w: ROM size code 0x%02X", ErrMalformedHeader, sizeCode)
	}
	ramSize, ok := ramSizes[rom[headerRAMSize]]
	if !ok {
		return Header{}, fmt.Errorf("%w: RAM size code 0x%02X", ErrMalformedHeader, rom[headerRAMSize])
	}

	// The title area shrinks to 15 bytes when the CGB flag is used
	titleEnd := headerTitleEnd
	if rom[headerCGBFlag]&0x80 != 0 {
		titleEnd = headerCGBFlag
	}
	title := strings.TrimRight(string(rom[headerTitle:titleEnd]), "\x00 ")

	h := Header{
		Title:          title,
		Type:           Type(rom[headerType]),
		ROMSize:        0x8000 << sizeCode,
		RAMSize:        ramSize,
		Version:        rom[headerVersion],
		Checksum:       rom[headerChecksum],
		GlobalChecksum: uint16(rom[headerGlobalChecksum])<<8 | uint16(rom[headerGlobalChecksum+1]),
	}

	if len(rom) != h.ROMSize {
		return Header{}, fmt.Errorf("%w: header declares %d bytes, image is %d",
			ErrMalformedHeader, h.ROMSize, len(rom))
	}
	return h, nil
}
