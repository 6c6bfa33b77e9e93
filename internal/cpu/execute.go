package cpu

// reg reads an 8-bit operand by its 3-bit encoding: B C D E H L (HL) A
func (cpu *CPU) reg(index uint8) uint8 {
	switch index {
	case 0:
		return cpu.B
	case 1:
		return cpu.C
	case 2:
		return cpu.D
	case 3:
		return cpu.E
	case 4:
		return cpu.H
	case 5:
		return cpu.L
	case 6:
		return cpu.memory.Read(cpu.HL())
	}
	return cpu.A
}

func (cpu *CPU) setReg(index uint8, value uint8) {
	switch index {
	case 0:
		cpu.B = value
	case 1:
		cpu.C = value
	case 2:
		cpu.D = value
	case 3:
		cpu.E = value
	case 4:
		cpu.H = value
	case 5:
		cpu.L = value
	case 6:
		cpu.memory.Write(cpu.HL(), value)
	default:
		cpu.A = value
	}
}

// pair reads a 16-bit register by its 2-bit encoding: BC DE HL SP
func (cpu *CPU) pair(index uint8) uint16 {
	switch index {
	case 0:
		return cpu.BC()
	case 1:
		return cpu.DE()
	case 2:
		return cpu.HL()
	}
	return cpu.SP
}

func (cpu *CPU) setPair(index uint8, value uint16) {
	switch index {
	case 0:
		cpu.SetBC(value)
	case 1:
		cpu.SetDE(value)
	case 2:
		cpu.SetHL(value)
	default:
		cpu.SP = value
	}
}

// condition evaluates the 2-bit condition code: NZ Z NC C
func (cpu *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !cpu.flag(flagZ)
	case 1:
		return cpu.flag(flagZ)
	case 2:
		return !cpu.flag(flagC)
	}
	return cpu.flag(flagC)
}

// executeInstruction runs one base opcode. It reports whether a conditional
// branch was taken.
func (cpu *CPU) executeInstruction(pc uint16, opcode uint8) bool {
	switch {
	case opcode == 0x76: // HALT
		cpu.halt()
		return false
	case opcode >= 0x40 && opcode < 0x80: // LD r,r'
		cpu.setReg(opcode>>3&7, cpu.reg(opcode&7))
		return false
	case opcode >= 0x80 && opcode < 0xC0: // ALU A,r
		cpu.alu(opcode>>3&7, cpu.reg(opcode&7))
		return false
	}

	switch opcode {
	case 0x00: // NOP

	// 16-bit loads and arithmetic
	case 0x01, 0x11, 0x21, 0x31: // LD rr,d16
		cpu.setPair(opcode>>4, cpu.fetchWord())
	case 0x03, 0x13, 0x23, 0x33: // INC rr
		cpu.setPair(opcode>>4, cpu.pair(opcode>>4)+1)
	case 0x0B, 0x1B, 0x2B, 0x3B: // DEC rr
		cpu.setPair(opcode>>4, cpu.pair(opcode>>4)-1)
	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rr
		cpu.addHL(cpu.pair(opcode >> 4))
	case 0x08: // LD (a16),SP
		address := cpu.fetchWord()
		cpu.memory.Write(address, uint8(cpu.SP))
		cpu.memory.Write(address+1, uint8(cpu.SP>>8))
	case 0xF9: // LD SP,HL
		cpu.SP = cpu.HL()
	case 0xE8: // ADD SP,r8
		cpu.SP = cpu.addSPOffset(int8(cpu.fetch()))
	case 0xF8: // LD HL,SP+r8
		cpu.SetHL(cpu.addSPOffset(int8(cpu.fetch())))

	// 8-bit loads through pointers
	case 0x02:
		cpu.memory.Write(cpu.BC(), cpu.A)
	case 0x12:
		cpu.memory.Write(cpu.DE(), cpu.A)
	case 0x22:
		cpu.memory.Write(cpu.HL(), cpu.A)
		cpu.SetHL(cpu.HL() + 1)
	case 0x32:
		cpu.memory.Write(cpu.HL(), cpu.A)
		cpu.SetHL(cpu.HL() - 1)
	case 0x0A:
		cpu.A = cpu.memory.Read(cpu.BC())
	case 0x1A:
		cpu.A = cpu.memory.Read(cpu.DE())
	case 0x2A:
		cpu.A = cpu.memory.Read(cpu.HL())
		cpu.SetHL(cpu.HL() + 1)
	case 0x3A:
		cpu.A = cpu.memory.Read(cpu.HL())
		cpu.SetHL(cpu.HL() - 1)
	case 0xE0: // LDH (a8),A
		cpu.memory.Write(0xFF00|uint16(cpu.fetch()), cpu.A)
	case 0xF0: // LDH A,(a8)
		cpu.A = cpu.memory.Read(0xFF00 | uint16(cpu.fetch()))
	case 0xE2: // LD (C),A
		cpu.memory.Write(0xFF00|uint16(cpu.C), cpu.A)
	case 0xF2: // LD A,(C)
		cpu.A = cpu.memory.Read(0xFF00 | uint16(cpu.C))
	case 0xEA: // LD (a16),A
		cpu.memory.Write(cpu.fetchWord(), cpu.A)
	case 0xFA: // LD A,(a16)
		cpu.A = cpu.memory.Read(cpu.fetchWord())

	// 8-bit INC/DEC/LD d8
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		index := opcode >> 3 & 7
		cpu.setReg(index, cpu.inc(cpu.reg(index)))
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		index := opcode >> 3 & 7
		cpu.setReg(index, cpu.dec(cpu.reg(index)))
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
		cpu.setReg(opcode>>3&7, cpu.fetch())

	// ALU with immediate operand
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		cpu.alu(opcode>>3&7, cpu.fetch())

	// Accumulator rotates and flag operations
	case 0x07:
		cpu.A = cpu.rlc(cpu.A)
		cpu.setFlag(flagZ, false)
	case 0x0F:
		cpu.A = cpu.rrc(cpu.A)
		cpu.setFlag(flagZ, false)
	case 0x17:
		cpu.A = cpu.rl(cpu.A)
		cpu.setFlag(flagZ, false)
	case 0x1F:
		cpu.A = cpu.rr(cpu.A)
		cpu.setFlag(flagZ, false)
	case 0x27:
		cpu.daa()
	case 0x2F: // CPL
		cpu.A = ^cpu.A
		cpu.setFlag(flagN, true)
		cpu.setFlag(flagH, true)
	case 0x37: // SCF
		cpu.setFlag(flagN, false)
		cpu.setFlag(flagH, false)
		cpu.setFlag(flagC, true)
	case 0x3F: // CCF
		cpu.setFlag(flagN, false)
		cpu.setFlag(flagH, false)
		cpu.setFlag(flagC, !cpu.flag(flagC))

	// Jumps
	case 0x18: // JR r8
		offset := int8(cpu.fetch())
		cpu.PC = uint16(int32(cpu.PC) + int32(offset))
	case 0x20, 0x28, 0x30, 0x38: // JR cc,r8
		offset := int8(cpu.fetch())
		if cpu.condition(opcode >> 3 & 3) {
			cpu.PC = uint16(int32(cpu.PC) + int32(offset))
			return true
		}
	case 0xC3: // JP a16
		cpu.PC = cpu.fetchWord()
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		address := cpu.fetchWord()
		if cpu.condition(opcode >> 3 & 3) {
			cpu.PC = address
			return true
		}
	case 0xE9: // JP HL
		cpu.PC = cpu.HL()

	// Calls and returns
	case 0xCD: // CALL a16
		address := cpu.fetchWord()
		cpu.pushWord(cpu.PC)
		cpu.PC = address
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,a16
		address := cpu.fetchWord()
		if cpu.condition(opcode >> 3 & 3) {
			cpu.pushWord(cpu.PC)
			cpu.PC = address
			return true
		}
	case 0xC9: // RET
		cpu.PC = cpu.popWord()
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		if cpu.condition(opcode >> 3 & 3) {
			cpu.PC = cpu.popWord()
			return true
		}
	case 0xD9: // RETI
		cpu.PC = cpu.popWord()
		cpu.ime = true
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST
		cpu.pushWord(cpu.PC)
		cpu.PC = uint16(opcode & 0x38)

	// Stack
	case 0xC1, 0xD1, 0xE1:
		cpu.setPair(opcode>>4&3, cpu.popWord())
	case 0xF1: // POP AF
		cpu.SetAF(cpu.popWord())
	case 0xC5, 0xD5, 0xE5:
		cpu.pushWord(cpu.pair(opcode >> 4 & 3))
	case 0xF5: // PUSH AF
		cpu.pushWord(cpu.AF())

	// Control
	case 0xF3: // DI
		cpu.ime = false
		cpu.imePending = false
	case 0xFB: // EI
		cpu.imePending = true
	case 0x10: // STOP
		cpu.fetch()
		cpu.stopped = true
		cpu.memory.Write(divAddress, 0)

	default:
		panic(&FaultError{PC: pc, Opcode: opcode})
	}
	return false
}

// halt enters HALT, or triggers the HALT bug when IME is clear and an
// interrupt is already pending.
func (cpu *CPU) halt() {
	if _, pending := cpu.memory.PendingInterrupt(); !cpu.ime && pending {
		cpu.haltBug = true
		return
	}
	cpu.halted = true
}

// executeCB runs one CB-prefixed opcode
func (cpu *CPU) executeCB(pc uint16, opcode uint8) {
	index := opcode & 7
	bit := opcode >> 3 & 7

	switch opcode >> 6 {
	case 0:
		value := cpu.reg(index)
		switch bit {
		case 0:
			value = cpu.rlc(value)
		case 1:
			value = cpu.rrc(value)
		case 2:
			value = cpu.rl(value)
		case 3:
			value = cpu.rr(value)
		case 4:
			value = cpu.sla(value)
		case 5:
			value = cpu.sra(value)
		case 6:
			value = cpu.swap(value)
		case 7:
			value = cpu.srl(value)
		}
		cpu.setReg(index, value)
	case 1: // BIT
		cpu.setFlag(flagZ, cpu.reg(index)&(1<<bit) == 0)
		cpu.setFlag(flagN, false)
		cpu.setFlag(flagH, true)
	case 2: // RES
		cpu.setReg(index, cpu.reg(index)&^(1<<bit))
	case 3: // SET
		cpu.setReg(index, cpu.reg(index)|1<<bit)
	default:
		panic(&FaultError{PC: pc, Opcode: opcode, Prefixed: true})
	}
}
