package cpu

// alu applies one of the eight accumulator operations selected by bits 3-5
// of the opcode: ADD ADC SUB SBC AND XOR OR CP.
func (cpu *CPU) alu(op uint8, value uint8) {
	switch op {
	case 0:
		cpu.add(value, false)
	case 1:
		cpu.add(value, true)
	case 2:
		cpu.A = cpu.sub(value, false)
	case 3:
		cpu.A = cpu.sub(value, true)
	case 4:
		cpu.A &= value
		cpu.setFlags(cpu.A == 0, false, true, false)
	case 5:
		cpu.A ^= value
		cpu.setFlags(cpu.A == 0, false, false, false)
	case 6:
		cpu.A |= value
		cpu.setFlags(cpu.A == 0, false, false, false)
	case 7:
		cpu.sub(value, false)
	}
}

func (cpu *CPU) add(value uint8, withCarry bool) {
	carry := 0
	if withCarry && cpu.flag(flagC) {
		carry = 1
	}
	result := int(cpu.A) + int(value) + carry
	half := int(cpu.A&0x0F)+int(value&0x0F)+carry > 0x0F
	cpu.A = uint8(result)
	cpu.setFlags(cpu.A == 0, false, half, result > 0xFF)
}

// sub computes A - value (- carry) and sets flags; CP discards the result
func (cpu *CPU) sub(value uint8, withCarry bool) uint8 {
	carry := 0
	if withCarry && cpu.flag(flagC) {
		carry = 1
	}
	result := int(cpu.A) - int(value) - carry
	half := int(cpu.A&0x0F)-int(value&0x0F)-carry < 0
	cpu.setFlags(uint8(result) == 0, true, half, result < 0)
	return uint8(result)
}

func (cpu *CPU) inc(value uint8) uint8 {
	result := value + 1
	cpu.setFlag(flagZ, result == 0)
	cpu.setFlag(flagN, false)
	cpu.setFlag(flagH, value&0x0F == 0x0F)
	return result
}

func (cpu *CPU) dec(value uint8) uint8 {
	result := value - 1
	cpu.setFlag(flagZ, result == 0)
	cpu.setFlag(flagN, true)
	cpu.setFlag(flagH, value&0x0F == 0)
	return result
}

func (cpu *CPU) addHL(value uint16) {
	hl := cpu.HL()
	result := uint32(hl) + uint32(value)
	cpu.setFlag(flagN, false)
	cpu.setFlag(flagH, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	cpu.setFlag(flagC, result > 0xFFFF)
	cpu.SetHL(uint16(result))
}

// addSPOffset returns SP + offset. Flags come from the unsigned addition of
// the low byte.
func (cpu *CPU) addSPOffset(offset int8) uint16 {
	u := uint16(uint8(offset))
	half := (cpu.SP&0x0F)+(u&0x0F) > 0x0F
	carry := (cpu.SP&0xFF)+u > 0xFF
	cpu.setFlags(false, false, half, carry)
	return uint16(int32(cpu.SP) + int32(offset))
}

func (cpu *CPU) daa() {
	a := cpu.A
	carry := cpu.flag(flagC)

	if !cpu.flag(flagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if cpu.flag(flagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if cpu.flag(flagH) {
			a -= 0x06
		}
	}

	cpu.A = a
	cpu.setFlag(flagZ, a == 0)
	cpu.setFlag(flagH, false)
	cpu.setFlag(flagC, carry)
}

// Rotates and shifts. Each sets Z from the result, clears N and H and
// moves the shifted-out bit into C.

func (cpu *CPU) shiftFlags(result uint8, carry bool) uint8 {
	cpu.setFlags(result == 0, false, false, carry)
	return result
}

func (cpu *CPU) rlc(v uint8) uint8 {
	return cpu.shiftFlags(v<<1|v>>7, v&0x80 != 0)
}

func (cpu *CPU) rrc(v uint8) uint8 {
	return cpu.shiftFlags(v>>1|v<<7, v&0x01 != 0)
}

func (cpu *CPU) rl(v uint8) uint8 {
	var in uint8
	if cpu.flag(flagC) {
		in = 1
	}
	return cpu.shiftFlags(v<<1|in, v&0x80 != 0)
}

func (cpu *CPU) rr(v uint8) uint8 {
	var in uint8
	if cpu.flag(flagC) {
		in = 0x80
	}
	return cpu.shiftFlags(v>>1|in, v&0x01 != 0)
}

func (cpu *CPU) sla(v uint8) uint8 {
	return cpu.shiftFlags(v<<1, v&0x80 != 0)
}

func (cpu *CPU) sra(v uint8) uint8 {
	return cpu.shiftFlags(v>>1|v&0x80, v&0x01 != 0)
}

func (cpu *CPU) srl(v uint8) uint8 {
	return cpu.shiftFlags(v>>1, v&0x01 != 0)
}

func (cpu *CPU) swap(v uint8) uint8 {
	return cpu.shiftFlags(v<<4|v>>4, false)
}
