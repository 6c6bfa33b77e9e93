// Package cpu implements the SM83 core used by the DMG.
package cpu

import (
	"fmt"
	"log"

	"tetrisenv/internal/interrupt"
)

// Flag bits in F
const (
	flagZ = 0x80
	flagN = 0x40
	flagH = 0x20
	flagC = 0x10
)

const (
	divAddress = 0xFF04

	interruptCycles = 20
	idleCycles      = 4
)

// CPU represents the SM83 processor
type CPU struct {
	// Registers
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16

	memory MemoryInterface

	// Cycle counter
	cycles uint64

	// Instruction lookup tables
	instructions   [256]*Instruction
	cbInstructions [256]*Instruction

	// Interrupt master enable and the one-instruction EI delay
	ime        bool
	imePending bool

	halted  bool
	haltBug bool // next opcode fetch does not advance PC
	stopped bool
	locked  bool // illegal opcode executed

	// Debug and loop detection fields
	enableDebugLogging  bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// MemoryInterface defines the interface for CPU memory access. Interrupt
// arbitration is reached through the same view.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	// PendingInterrupt returns the highest-priority interrupt that is both
	// requested and enabled
	PendingInterrupt() (interrupt.Kind, bool)

	// AcknowledgeInterrupt clears a request as it is serviced
	AcknowledgeInterrupt(k interrupt.Kind)
}

// FaultError reports an opcode that reached no implementation. It is raised
// with panic and indicates a bug in the core, never a guest program error.
type FaultError struct {
	PC       uint16
	Opcode   uint8
	Prefixed bool
}

func (e *FaultError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("cpu: no implementation for CB 0x%02X at PC=0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("cpu: no implementation for opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// New creates a new CPU instance
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{memory: memory}
	cpu.initInstructions()
	cpu.Reset()
	return cpu
}

// Reset loads the register values the boot ROM leaves behind, with
// execution starting at the cartridge entry point.
func (cpu *CPU) Reset() {
	cpu.resetState()
	cpu.SetAF(0x01B0)
	cpu.SetBC(0x0013)
	cpu.SetDE(0x00D8)
	cpu.SetHL(0x014D)
	cpu.SP = 0xFFFE
	cpu.PC = 0x0100
}

// ResetForBootROM clears every register so a boot ROM runs from 0x0000.
func (cpu *CPU) ResetForBootROM() {
	cpu.resetState()
	cpu.A, cpu.F, cpu.B, cpu.C = 0, 0, 0, 0
	cpu.D, cpu.E, cpu.H, cpu.L = 0, 0, 0, 0
	cpu.SP = 0
	cpu.PC = 0
}

func (cpu *CPU) resetState() {
	cpu.cycles = 0
	cpu.ime = false
	cpu.imePending = false
	cpu.halted = false
	cpu.haltBug = false
	cpu.stopped = false
	cpu.locked = false
	cpu.pcStayCount = 0
}

// Register pair accessors
func (cpu *CPU) AF() uint16 { return uint16(cpu.A)<<8 | uint16(cpu.F) }
func (cpu *CPU) BC() uint16 { return uint16(cpu.B)<<8 | uint16(cpu.C) }
func (cpu *CPU) DE() uint16 { return uint16(cpu.D)<<8 | uint16(cpu.E) }
func (cpu *CPU) HL() uint16 { return uint16(cpu.H)<<8 | uint16(cpu.L) }

func (cpu *CPU) SetAF(v uint16) { cpu.A, cpu.F = uint8(v>>8), uint8(v)&0xF0 }
func (cpu *CPU) SetBC(v uint16) { cpu.B, cpu.C = uint8(v>>8), uint8(v) }
func (cpu *CPU) SetDE(v uint16) { cpu.D, cpu.E = uint8(v>>8), uint8(v) }
func (cpu *CPU) SetHL(v uint16) { cpu.H, cpu.L = uint8(v>>8), uint8(v) }

// Flag accessors
func (cpu *CPU) flag(mask uint8) bool { return cpu.F&mask != 0 }

func (cpu *CPU) setFlag(mask uint8, on bool) {
	if on {
		cpu.F |= mask
	} else {
		cpu.F &^= mask
	}
}

func (cpu *CPU) setFlags(z, n, h, c bool) {
	cpu.F = 0
	cpu.setFlag(flagZ, z)
	cpu.setFlag(flagN, n)
	cpu.setFlag(flagH, h)
	cpu.setFlag(flagC, c)
}

// IME reports the interrupt master enable
func (cpu *CPU) IME() bool { return cpu.ime }

// Halted reports whether the CPU is waiting in HALT
func (cpu *CPU) Halted() bool { return cpu.halted }

// Stopped reports whether the CPU is in STOP mode
func (cpu *CPU) Stopped() bool { return cpu.stopped }

// Locked reports whether an illegal opcode hung the CPU
func (cpu *CPU) Locked() bool { return cpu.locked }

// Cycles returns the total T-cycles executed since reset
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

// Stalled reports whether the CPU can never make progress again: halted
// with every interrupt disabled in ie, or locked by an illegal opcode.
func (cpu *CPU) Stalled(ie uint8) bool {
	return cpu.locked || (cpu.halted && ie&interrupt.Mask == 0)
}

// Resume leaves STOP mode. The bus calls it when a joypad line goes low.
func (cpu *CPU) Resume() {
	cpu.stopped = false
}

// Step executes one instruction, one interrupt dispatch or one idle slot
// and returns the T-cycles it took.
func (cpu *CPU) Step() int {
	cycles := cpu.step()
	cpu.cycles += uint64(cycles)
	return cycles
}

func (cpu *CPU) step() int {
	if cpu.locked || cpu.stopped {
		return idleCycles
	}

	kind, pending := cpu.memory.PendingInterrupt()
	if cpu.halted {
		if !pending {
			return idleCycles
		}
		cpu.halted = false
	}

	if cpu.ime && pending {
		return cpu.serviceInterrupt(kind)
	}

	enableAfter := cpu.imePending
	cycles := cpu.execute()
	if enableAfter && cpu.imePending {
		cpu.ime = true
		cpu.imePending = false
	}
	return cycles
}

// serviceInterrupt pushes the return address and jumps to the vector of kind
func (cpu *CPU) serviceInterrupt(kind interrupt.Kind) int {
	cpu.ime = false
	cpu.imePending = false
	cpu.memory.AcknowledgeInterrupt(kind)

	// A HALT that hit the bug (EI; HALT with a request pending) is returned
	// to and executes again
	returnPC := cpu.PC
	if cpu.haltBug {
		cpu.haltBug = false
		returnPC--
	}
	cpu.pushWord(returnPC)
	cpu.PC = kind.Vector()

	if cpu.enableDebugLogging {
		log.Printf("[CPU_DEBUG] Interrupt %s -> $%04X (return $%04X)", kind, cpu.PC, returnPC)
	}
	return interruptCycles
}

// fetch reads the byte at PC and advances it, except right after the HALT
// bug triggered.
func (cpu *CPU) fetch() uint8 {
	value := cpu.memory.Read(cpu.PC)
	if cpu.haltBug {
		cpu.haltBug = false
	} else {
		cpu.PC++
	}
	return value
}

func (cpu *CPU) fetchWord() uint16 {
	low := uint16(cpu.fetch())
	high := uint16(cpu.fetch())
	return high<<8 | low
}

func (cpu *CPU) execute() int {
	currentPC := cpu.PC
	opcode := cpu.fetch()
	instruction := cpu.instructions[opcode]

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(currentPC, opcode)
	}
	if cpu.enableDebugLogging {
		cpu.logInstruction(currentPC, opcode, instruction)
	}

	if instruction == nil {
		if isIllegal(opcode) {
			cpu.locked = true
			log.Printf("[CPU] Illegal opcode 0x%02X at $%04X, CPU locked", opcode, currentPC)
			return idleCycles
		}
		panic(&FaultError{PC: currentPC, Opcode: opcode})
	}

	if opcode == 0xCB {
		op := cpu.fetch()
		cpu.executeCB(currentPC, op)
		return int(cpu.cbInstructions[op].Cycles)
	}

	if cpu.executeInstruction(currentPC, opcode) {
		return int(instruction.CyclesTaken)
	}
	return int(instruction.Cycles)
}

// Stack helpers
func (cpu *CPU) push(value uint8) {
	cpu.SP--
	cpu.memory.Write(cpu.SP, value)
}

func (cpu *CPU) pop() uint8 {
	value := cpu.memory.Read(cpu.SP)
	cpu.SP++
	return value
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return high<<8 | low
}

// EnableDebugLogging enables per-instruction trace output
func (cpu *CPU) EnableDebugLogging(enable bool) {
	cpu.enableDebugLogging = enable
}

// EnableLoopDetection enables reporting of tight loops
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
}

// detectInfiniteLoop reports when PC keeps landing on the same address
func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint8) {
	if pc == cpu.lastPC {
		cpu.pcStayCount++
		if cpu.pcStayCount%10000 == 0 {
			log.Printf("[CPU_LOOP] PC=$%04X opcode=0x%02X repeated %d times", pc, opcode, cpu.pcStayCount)
			cpu.logCPUState(pc, opcode)
		}
	} else {
		cpu.pcStayCount = 0
	}
	cpu.lastPC = pc
}

// logInstruction logs CPU instruction execution
func (cpu *CPU) logInstruction(pc uint16, opcode uint8, instruction *Instruction) {
	name := "ILLEGAL"
	if instruction != nil {
		name = instruction.Name
	}
	log.Printf("[CPU_DEBUG] PC=$%04X: %-12s (0x%02X) | AF=$%04X BC=$%04X DE=$%04X HL=$%04X SP=$%04X | %s",
		pc, name, opcode, cpu.AF(), cpu.BC(), cpu.DE(), cpu.HL(), cpu.SP, cpu.getFlagsString())
}

// logCPUState logs detailed CPU state during loops
func (cpu *CPU) logCPUState(pc uint16, opcode uint8) {
	log.Printf("[CPU_STATE] PC=$%04X: 0x%02X | IME=%t halted=%t | %s | Cycles=%d",
		pc, opcode, cpu.ime, cpu.halted, cpu.getFlagsString(), cpu.cycles)
}

// getFlagsString returns the flags as ZNHC with '-' for clear bits
func (cpu *CPU) getFlagsString() string {
	flags := []byte("----")
	for i, f := range []struct {
		mask uint8
		name byte
	}{{flagZ, 'Z'}, {flagN, 'N'}, {flagH, 'H'}, {flagC, 'C'}} {
		if cpu.F&f.mask != 0 {
			flags[i] = f.name
		}
	}
	return string(flags)
}
