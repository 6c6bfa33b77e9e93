package cpu

import "fmt"

// Instruction describes one opcode: its mnemonic, length and T-cycle cost.
// Conditional jumps, calls and returns cost CyclesTaken when the branch is
// taken and Cycles otherwise.
type Instruction struct {
	Name        string
	Opcode      uint8
	Bytes       uint8
	Cycles      uint8
	CyclesTaken uint8
	Prefixed    bool
}

// Opcodes that lock up the CPU when executed
var illegalOpcodes = [...]uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

var baseTable = [...]Instruction{
	{Name: "NOP", Opcode: 0x00, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD BC,d16", Opcode: 0x01, Bytes: 3, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (BC),A", Opcode: 0x02, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC BC", Opcode: 0x03, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC B", Opcode: 0x04, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC B", Opcode: 0x05, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,d8", Opcode: 0x06, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RLCA", Opcode: 0x07, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD (a16),SP", Opcode: 0x08, Bytes: 3, Cycles: 20, CyclesTaken: 20},
	{Name: "ADD HL,BC", Opcode: 0x09, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,(BC)", Opcode: 0x0A, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "DEC BC", Opcode: 0x0B, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC C", Opcode: 0x0C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC C", Opcode: 0x0D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,d8", Opcode: 0x0E, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RRCA", Opcode: 0x0F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "STOP", Opcode: 0x10, Bytes: 2, Cycles: 4, CyclesTaken: 4},
	{Name: "LD DE,d16", Opcode: 0x11, Bytes: 3, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (DE),A", Opcode: 0x12, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC DE", Opcode: 0x13, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC D", Opcode: 0x14, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC D", Opcode: 0x15, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,d8", Opcode: 0x16, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RLA", Opcode: 0x17, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "JR r8", Opcode: 0x18, Bytes: 2, Cycles: 12, CyclesTaken: 12},
	{Name: "ADD HL,DE", Opcode: 0x19, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,(DE)", Opcode: 0x1A, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "DEC DE", Opcode: 0x1B, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC E", Opcode: 0x1C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC E", Opcode: 0x1D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,d8", Opcode: 0x1E, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RRA", Opcode: 0x1F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "JR NZ,r8", Opcode: 0x20, Bytes: 2, Cycles: 8, CyclesTaken: 12},
	{Name: "LD HL,d16", Opcode: 0x21, Bytes: 3, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (HL+),A", Opcode: 0x22, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC HL", Opcode: 0x23, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC H", Opcode: 0x24, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC H", Opcode: 0x25, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,d8", Opcode: 0x26, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "DAA", Opcode: 0x27, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "JR Z,r8", Opcode: 0x28, Bytes: 2, Cycles: 8, CyclesTaken: 12},
	{Name: "ADD HL,HL", Opcode: 0x29, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,(HL+)", Opcode: 0x2A, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "DEC HL", Opcode: 0x2B, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC L", Opcode: 0x2C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC L", Opcode: 0x2D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,d8", Opcode: 0x2E, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "CPL", Opcode: 0x2F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "JR NC,r8", Opcode: 0x30, Bytes: 2, Cycles: 8, CyclesTaken: 12},
	{Name: "LD SP,d16", Opcode: 0x31, Bytes: 3, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (HL-),A", Opcode: 0x32, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC SP", Opcode: 0x33, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC (HL)", Opcode: 0x34, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "DEC (HL)", Opcode: 0x35, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (HL),d8", Opcode: 0x36, Bytes: 2, Cycles: 12, CyclesTaken: 12},
	{Name: "SCF", Opcode: 0x37, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "JR C,r8", Opcode: 0x38, Bytes: 2, Cycles: 8, CyclesTaken: 12},
	{Name: "ADD HL,SP", Opcode: 0x39, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,(HL-)", Opcode: 0x3A, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "DEC SP", Opcode: 0x3B, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "INC A", Opcode: 0x3C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "DEC A", Opcode: 0x3D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,d8", Opcode: 0x3E, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "CCF", Opcode: 0x3F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,B", Opcode: 0x40, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,C", Opcode: 0x41, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,D", Opcode: 0x42, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,E", Opcode: 0x43, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,H", Opcode: 0x44, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,L", Opcode: 0x45, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD B,(HL)", Opcode: 0x46, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD B,A", Opcode: 0x47, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,B", Opcode: 0x48, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,C", Opcode: 0x49, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,D", Opcode: 0x4A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,E", Opcode: 0x4B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,H", Opcode: 0x4C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,L", Opcode: 0x4D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD C,(HL)", Opcode: 0x4E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD C,A", Opcode: 0x4F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,B", Opcode: 0x50, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,C", Opcode: 0x51, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,D", Opcode: 0x52, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,E", Opcode: 0x53, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,H", Opcode: 0x54, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,L", Opcode: 0x55, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD D,(HL)", Opcode: 0x56, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD D,A", Opcode: 0x57, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,B", Opcode: 0x58, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,C", Opcode: 0x59, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,D", Opcode: 0x5A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,E", Opcode: 0x5B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,H", Opcode: 0x5C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,L", Opcode: 0x5D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD E,(HL)", Opcode: 0x5E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD E,A", Opcode: 0x5F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,B", Opcode: 0x60, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,C", Opcode: 0x61, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,D", Opcode: 0x62, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,E", Opcode: 0x63, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,H", Opcode: 0x64, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,L", Opcode: 0x65, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD H,(HL)", Opcode: 0x66, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD H,A", Opcode: 0x67, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,B", Opcode: 0x68, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,C", Opcode: 0x69, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,D", Opcode: 0x6A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,E", Opcode: 0x6B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,H", Opcode: 0x6C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,L", Opcode: 0x6D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD L,(HL)", Opcode: 0x6E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD L,A", Opcode: 0x6F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD (HL),B", Opcode: 0x70, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD (HL),C", Opcode: 0x71, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD (HL),D", Opcode: 0x72, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD (HL),E", Opcode: 0x73, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD (HL),H", Opcode: 0x74, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD (HL),L", Opcode: 0x75, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "HALT", Opcode: 0x76, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD (HL),A", Opcode: 0x77, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,B", Opcode: 0x78, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,C", Opcode: 0x79, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,D", Opcode: 0x7A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,E", Opcode: 0x7B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,H", Opcode: 0x7C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,L", Opcode: 0x7D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD A,(HL)", Opcode: 0x7E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,A", Opcode: 0x7F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,B", Opcode: 0x80, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,C", Opcode: 0x81, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,D", Opcode: 0x82, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,E", Opcode: 0x83, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,H", Opcode: 0x84, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,L", Opcode: 0x85, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADD A,(HL)", Opcode: 0x86, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "ADD A,A", Opcode: 0x87, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,B", Opcode: 0x88, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,C", Opcode: 0x89, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,D", Opcode: 0x8A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,E", Opcode: 0x8B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,H", Opcode: 0x8C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,L", Opcode: 0x8D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "ADC A,(HL)", Opcode: 0x8E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "ADC A,A", Opcode: 0x8F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB B", Opcode: 0x90, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB C", Opcode: 0x91, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB D", Opcode: 0x92, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB E", Opcode: 0x93, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB H", Opcode: 0x94, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB L", Opcode: 0x95, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SUB (HL)", Opcode: 0x96, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "SUB A", Opcode: 0x97, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,B", Opcode: 0x98, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,C", Opcode: 0x99, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,D", Opcode: 0x9A, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,E", Opcode: 0x9B, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,H", Opcode: 0x9C, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,L", Opcode: 0x9D, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "SBC A,(HL)", Opcode: 0x9E, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "SBC A,A", Opcode: 0x9F, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND B", Opcode: 0xA0, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND C", Opcode: 0xA1, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND D", Opcode: 0xA2, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND E", Opcode: 0xA3, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND H", Opcode: 0xA4, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND L", Opcode: 0xA5, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "AND (HL)", Opcode: 0xA6, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "AND A", Opcode: 0xA7, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR B", Opcode: 0xA8, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR C", Opcode: 0xA9, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR D", Opcode: 0xAA, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR E", Opcode: 0xAB, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR H", Opcode: 0xAC, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR L", Opcode: 0xAD, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "XOR (HL)", Opcode: 0xAE, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "XOR A", Opcode: 0xAF, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR B", Opcode: 0xB0, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR C", Opcode: 0xB1, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR D", Opcode: 0xB2, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR E", Opcode: 0xB3, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR H", Opcode: 0xB4, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR L", Opcode: 0xB5, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "OR (HL)", Opcode: 0xB6, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "OR A", Opcode: 0xB7, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP B", Opcode: 0xB8, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP C", Opcode: 0xB9, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP D", Opcode: 0xBA, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP E", Opcode: 0xBB, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP H", Opcode: 0xBC, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP L", Opcode: 0xBD, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP (HL)", Opcode: 0xBE, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "CP A", Opcode: 0xBF, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "RET NZ", Opcode: 0xC0, Bytes: 1, Cycles: 8, CyclesTaken: 20},
	{Name: "POP BC", Opcode: 0xC1, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "JP NZ,a16", Opcode: 0xC2, Bytes: 3, Cycles: 12, CyclesTaken: 16},
	{Name: "JP a16", Opcode: 0xC3, Bytes: 3, Cycles: 16, CyclesTaken: 16},
	{Name: "CALL NZ,a16", Opcode: 0xC4, Bytes: 3, Cycles: 12, CyclesTaken: 24},
	{Name: "PUSH BC", Opcode: 0xC5, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "ADD A,d8", Opcode: 0xC6, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 00H", Opcode: 0xC7, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "RET Z", Opcode: 0xC8, Bytes: 1, Cycles: 8, CyclesTaken: 20},
	{Name: "RET", Opcode: 0xC9, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "JP Z,a16", Opcode: 0xCA, Bytes: 3, Cycles: 12, CyclesTaken: 16},
	{Name: "PREFIX CB", Opcode: 0xCB, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CALL Z,a16", Opcode: 0xCC, Bytes: 3, Cycles: 12, CyclesTaken: 24},
	{Name: "CALL a16", Opcode: 0xCD, Bytes: 3, Cycles: 24, CyclesTaken: 24},
	{Name: "ADC A,d8", Opcode: 0xCE, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 08H", Opcode: 0xCF, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "RET NC", Opcode: 0xD0, Bytes: 1, Cycles: 8, CyclesTaken: 20},
	{Name: "POP DE", Opcode: 0xD1, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "JP NC,a16", Opcode: 0xD2, Bytes: 3, Cycles: 12, CyclesTaken: 16},
	{Name: "CALL NC,a16", Opcode: 0xD4, Bytes: 3, Cycles: 12, CyclesTaken: 24},
	{Name: "PUSH DE", Opcode: 0xD5, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "SUB d8", Opcode: 0xD6, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 10H", Opcode: 0xD7, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "RET C", Opcode: 0xD8, Bytes: 1, Cycles: 8, CyclesTaken: 20},
	{Name: "RETI", Opcode: 0xD9, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "JP C,a16", Opcode: 0xDA, Bytes: 3, Cycles: 12, CyclesTaken: 16},
	{Name: "CALL C,a16", Opcode: 0xDC, Bytes: 3, Cycles: 12, CyclesTaken: 24},
	{Name: "SBC A,d8", Opcode: 0xDE, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 18H", Opcode: 0xDF, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "LDH (a8),A", Opcode: 0xE0, Bytes: 2, Cycles: 12, CyclesTaken: 12},
	{Name: "POP HL", Opcode: 0xE1, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "LD (C),A", Opcode: 0xE2, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "PUSH HL", Opcode: 0xE5, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "AND d8", Opcode: 0xE6, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 20H", Opcode: 0xE7, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "ADD SP,r8", Opcode: 0xE8, Bytes: 2, Cycles: 16, CyclesTaken: 16},
	{Name: "JP HL", Opcode: 0xE9, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "LD (a16),A", Opcode: 0xEA, Bytes: 3, Cycles: 16, CyclesTaken: 16},
	{Name: "XOR d8", Opcode: 0xEE, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 28H", Opcode: 0xEF, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "LDH A,(a8)", Opcode: 0xF0, Bytes: 2, Cycles: 12, CyclesTaken: 12},
	{Name: "POP AF", Opcode: 0xF1, Bytes: 1, Cycles: 12, CyclesTaken: 12},
	{Name: "LD A,(C)", Opcode: 0xF2, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "DI", Opcode: 0xF3, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "PUSH AF", Opcode: 0xF5, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "OR d8", Opcode: 0xF6, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 30H", Opcode: 0xF7, Bytes: 1, Cycles: 16, CyclesTaken: 16},
	{Name: "LD HL,SP+r8", Opcode: 0xF8, Bytes: 2, Cycles: 12, CyclesTaken: 12},
	{Name: "LD SP,HL", Opcode: 0xF9, Bytes: 1, Cycles: 8, CyclesTaken: 8},
	{Name: "LD A,(a16)", Opcode: 0xFA, Bytes: 3, Cycles: 16, CyclesTaken: 16},
	{Name: "EI", Opcode: 0xFB, Bytes: 1, Cycles: 4, CyclesTaken: 4},
	{Name: "CP d8", Opcode: 0xFE, Bytes: 2, Cycles: 8, CyclesTaken: 8},
	{Name: "RST 38H", Opcode: 0xFF, Bytes: 1, Cycles: 16, CyclesTaken: 16},
}

var cbOperations = [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

var registerNames = [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// initInstructions builds the base and CB-prefixed lookup tables
func (cpu *CPU) initInstructions() {
	for i := range baseTable {
		inst := &baseTable[i]
		cpu.instructions[inst.Opcode] = inst
	}

	for op := 0; op < 256; op++ {
		reg := op & 7
		bit := (op >> 3) & 7

		var name string
		switch op >> 6 {
		case 0:
			name = cbOperations[bit] + " " + registerNames[reg]
		case 1:
			name = fmt.Sprintf("BIT %d,%s", bit, registerNames[reg])
		case 2:
			name = fmt.Sprintf("RES %d,%s", bit, registerNames[reg])
		case 3:
			name = fmt.Sprintf("SET %d,%s", bit, registerNames[reg])
		}

		// Totals include the prefix fetch
		cycles := uint8(8)
		if reg == 6 {
			cycles = 16
			if op>>6 == 1 {
				cycles = 12
			}
		}

		cpu.cbInstructions[op] = &Instruction{
			Name:        name,
			Opcode:      uint8(op),
			Bytes:       2,
			Cycles:      cycles,
			CyclesTaken: cycles,
			Prefixed:    true,
		}
	}
}

// isIllegal reports whether an opcode locks the CPU
func isIllegal(opcode uint8) bool {
	for _, op := range illegalOpcodes {
		if op == opcode {
			return true
		}
	}
	return false
}
