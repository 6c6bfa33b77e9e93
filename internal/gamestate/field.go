package gamestate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBCD is returned when a packed decimal byte holds a nibble above 9
	ErrInvalidBCD = errors.New("gamestate: invalid BCD digit")
	// ErrNoProfile is returned when the profile does not define the field
	ErrNoProfile = errors.New("gamestate: value not defined for this cartridge")
)

// Encoding is how a field's bytes represent its value
type Encoding string

const (
	BCD    Encoding = "bcd"
	Binary Encoding = "binary"
)

// ByteOrder is the order of a multi-byte field in memory
type ByteOrder string

const (
	LittleEndian ByteOrder = "little"
	BigEndian    ByteOrder = "big"
)

// Reader exposes routed memory reads without side effects
type Reader interface {
	Peek(address uint16) uint8
}

// Field locates one value in cartridge memory
type Field struct {
	Address  uint16    `json:"address"`
	Bytes    int       `json:"bytes"`
	Encoding Encoding  `json:"encoding"`
	Order    ByteOrder `json:"order"`
}

// Defined reports whether the field points at any memory
func (f Field) Defined() bool {
	return f.Bytes > 0
}

func (f Field) validate() error {
	if !f.Defined() {
		return nil
	}
	if f.Bytes > 4 {
		return fmt.Errorf("field at 0x%04X: %d bytes is too wide", f.Address, f.Bytes)
	}
	if int(f.Address)+f.Bytes > 0x10000 {
		return fmt.Errorf("field at 0x%04X: runs past the address space", f.Address)
	}
	switch f.Encoding {
	case BCD, Binary:
	default:
		return fmt.Errorf("field at 0x%04X: unknown encoding %q", f.Address, f.Encoding)
	}
	switch f.Order {
	case LittleEndian, BigEndian:
	default:
		return fmt.Errorf("field at 0x%04X: unknown byte order %q", f.Address, f.Order)
	}
	return nil
}

// Read decodes the field from memory
func (f Field) Read(mem Reader) (int, error) {
	if !f.Defined() {
		return 0, ErrNoProfile
	}

	raw := make([]uint8, f.Bytes)
	for i := range raw {
		raw[i] = mem.Peek(f.Address + uint16(i))
	}

	if f.Encoding == BCD {
		return DecodeBCD(raw, f.Order)
	}
	return decodeBinary(raw, f.Order), nil
}

// DecodeBCD decodes packed decimal bytes, two digits per byte with the high
// nibble being the more significant digit.
func DecodeBCD(raw []uint8, order ByteOrder) (int, error) {
	value := 0
	for i := range raw {
		b := raw[mostSignificantFirst(i, len(raw), order)]
		hi, lo := int(b>>4), int(b&0x0F)
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidBCD, b)
		}
		value = value*100 + hi*10 + lo
	}
	return value, nil
}

func decodeBinary(raw []uint8, order ByteOrder) int {
	value := 0
	for i := range raw {
		value = value<<8 | int(raw[mostSignificantFirst(i, len(raw), order)])
	}
	return value
}

// mostSignificantFirst maps the i-th most significant byte to its index
func mostSignificantFirst(i, n int, order ByteOrder) int {
	if order == LittleEndian {
		return n - 1 - i
	}
	return i
}
