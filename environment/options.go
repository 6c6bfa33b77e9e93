package environment

import (
	"tetrisenv/internal/gamestate"
	"tetrisenv/internal/ppu"
)

type settings struct {
	bootROM  []byte
	palette  ppu.Palette
	profiles *gamestate.Table
	debug    bool
	cpuTrace bool
}

// Option configures an Environment at initialization
type Option func(*settings)

// WithBootROM maps a boot ROM image at the start of every episode instead of
// starting from the post-boot register state.
func WithBootROM(data []byte) Option {
	return func(s *settings) {
		s.bootROM = append([]byte(nil), data...)
	}
}

// WithPalette selects the output colours
func WithPalette(p ppu.Palette) Option {
	return func(s *settings) {
		s.palette = p
	}
}

// WithProfiles replaces the built-in cartridge profile table
func WithProfiles(t *gamestate.Table) Option {
	return func(s *settings) {
		s.profiles = t
	}
}

// WithDebug enables component debug logging and watchpoints on the
// profile's score and lines.
func WithDebug(enable bool) Option {
	return func(s *settings) {
		s.debug = enable
	}
}

// WithCPUTracing enables per-instruction CPU logging and loop detection
func WithCPUTracing(enable bool) Option {
	return func(s *settings) {
		s.cpuTrace = enable
	}
}
