package testrom

// WRAM bytes written by the test programs
const (
	CounterAddress = 0xC000 // FrameCounter
	EchoAddress    = 0xC001 // JoypadEcho
)

// FrameCounter returns a builder for a program that increments
// CounterAddress once per VBlank interrupt and otherwise sits in HALT.
func FrameCounter() *Builder {
	return NewBuilder().
		WithTitle("FRAMECOUNT").
		WithCode([]uint8{
			0xF3,             // DI
			0x31, 0xFE, 0xFF, // LD SP,0xFFFE
			0x3E, 0x01, // LD A,0x01
			0xE0, 0xFF, // LDH (0xFF),A   IE = VBlank
			0xAF,             // XOR A
			0xEA, 0x00, 0xC0, // LD (0xC000),A
			0xE0, 0x0F, // LDH (0x0F),A   IF = 0
			0xFB,       // EI
			0x76,       // HALT
			0x00,       // NOP
			0x18, 0xFC, // JR -4
		}).
		WithHandler(0x0040, []uint8{
			0xFA, 0x00, 0xC0, // LD A,(0xC000)
			0x3C,             // INC A
			0xEA, 0x00, 0xC0, // LD (0xC000),A
			0xD9,             // RETI
		})
}

// JoypadEcho returns a builder for a program that selects the direction
// group, then copies P1 into EchoAddress in a loop.
func JoypadEcho() *Builder {
	return NewBuilder().
		WithTitle("JOYECHO").
		WithCode([]uint8{
			0x3E, 0x20, // LD A,0x20      select directions
			0xE0, 0x00, // LDH (0x00),A
			0xF0, 0x00, // LDH A,(0x00)
			0xEA, 0x01, 0xC0, // LD (0xC001),A
			0x18, 0xF9, // JR -7
		})
}

// Stall returns a builder for a program that disables every interrupt and
// halts, which never resumes.
func Stall() *Builder {
	return NewBuilder().
		WithTitle("STALL").
		WithCode([]uint8{
			0xF3,       // DI
			0xAF,       // XOR A
			0xE0, 0xFF, // LDH (0xFF),A
			0x76,       // HALT
			0x18, 0xFD, // JR -3
		})
}
