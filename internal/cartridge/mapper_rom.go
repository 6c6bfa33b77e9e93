package cartridge

// romOnly implements cartridges without a bank controller: 32KB of ROM
// mapped directly and, for the ROM+RAM types, up to 8KB of external RAM
// that is always enabled.
type romOnly struct {
	cart *Cartridge
}

func newROMOnly(cart *Cartridge) *romOnly {
	return &romOnly{cart: cart}
}

func (m *romOnly) ReadROM(address uint16) uint8 {
	if int(address) < len(m.cart.rom) {
		return m.cart.rom[address]
	}
	return 0xFF
}

// WriteControl ignores writes; there are no control registers
func (m *romOnly) WriteControl(address uint16, value uint8) {}

func (m *romOnly) ReadRAM(address uint16) uint8 {
	offset := int(address - 0xA000)
	if offset < len(m.cart.ram) {
		return m.cart.ram[offset]
	}
	return 0xFF
}

func (m *romOnly) WriteRAM(address uint16, value uint8) {
	offset := int(address - 0xA000)
	if offset < len(m.cart.ram) {
		m.cart.ram[offset] = value
	}
}

func (m *romOnly) Reset() {}

func (m *romOnly) Bank() int { return 1 }
