package cartridge

// mbc1 implements the MBC1 controller.
//
// Control registers (write only):
//
//	0x0000-0x1FFF  RAM enable, 0x0A in the low nibble enables
//	0x2000-0x3FFF  ROM bank, low 5 bits (0 is treated as 1)
//	0x4000-0x5FFF  2-bit register: ROM bank bits 5-6 or RAM bank
//	0x6000-0x7FFF  banking mode (0 simple, 1 advanced)
//
// Bank numbers wider than the image wrap by masking with the bank count,
// which is always a power of two.
type mbc1 struct {
	cart *Cartridge

	romMask int // ROM bank count - 1
	ramMask int // RAM bank count - 1, -1 without RAM

	ramEnabled bool
	bankLow    uint8 // 5 bits
	bankHigh   uint8 // 2 bits
	mode       uint8 // 1 bit
}

func newMBC1(cart *Cartridge) *mbc1 {
	m := &mbc1{
		cart:    cart,
		romMask: len(cart.rom)/0x4000 - 1,
		ramMask: len(cart.ram)/0x2000 - 1,
	}
	m.Reset()
	return m
}

func (m *mbc1) Reset() {
	m.ramEnabled = false
	m.bankLow = 1
	m.bankHigh = 0
	m.mode = 0
}

// lowBank returns the bank mapped at 0x0000-0x3FFF
func (m *mbc1) lowBank() int {
	if m.mode == 0 {
		return 0
	}
	return int(m.bankHigh<<5) & m.romMask
}

// highBank returns the bank mapped at 0x4000-0x7FFF
func (m *mbc1) highBank() int {
	return int(m.bankHigh<<5|m.bankLow) & m.romMask
}

// ramBank returns the external RAM bank in use
func (m *mbc1) ramBank() int {
	if m.mode == 0 || m.ramMask <= 0 {
		return 0
	}
	return int(m.bankHigh) & m.ramMask
}

func (m *mbc1) ReadROM(address uint16) uint8 {
	bank := m.lowBank()
	if address >= 0x4000 {
		bank = m.highBank()
	}
	return m.cart.rom[bank*0x4000+int(address&0x3FFF)]
}

func (m *mbc1) WriteControl(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.bankLow = value & 0x1F
		if m.bankLow == 0 {
			m.bankLow = 1
		}
	case address < 0x6000:
		m.bankHigh = value & 0x03
	case address < 0x8000:
		m.mode = value & 0x01
	}
}

func (m *mbc1) ramOffset(address uint16) (int, bool) {
	if !m.ramEnabled || len(m.cart.ram) == 0 {
		return 0, false
	}
	offset := m.ramBank()*0x2000 + int(address-0xA000)
	// 2KB parts mirror inside the 8KB window
	offset %= len(m.cart.ram)
	return offset, true
}

func (m *mbc1) ReadRAM(address uint16) uint8 {
	if offset, ok := m.ramOffset(address); ok {
		return m.cart.ram[offset]
	}
	return 0xFF
}

func (m *mbc1) WriteRAM(address uint16, value uint8) {
	if offset, ok := m.ramOffset(address); ok {
		m.cart.ram[offset] = value
	}
}

func (m *mbc1) Bank() int {
	return m.highBank()
}
