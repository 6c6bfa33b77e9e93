package cpu

import (
	"errors"
	"testing"

	"tetrisenv/internal/interrupt"
)

// IF and IE live in the mock address space
const (
	ifAddress = interrupt.FlagAddress
	ieAddress = interrupt.EnableAddress
)

// MockMemory implements MemoryInterface for testing
type MockMemory struct {
	data       [0x10000]uint8 // 64KB address space
	readCount  map[uint16]int
	writeCount map[uint16]int
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{
		readCount:  make(map[uint16]int),
		writeCount: make(map[uint16]int),
	}
}

// Read implements the MemoryInterface Read method
func (m *MockMemory) Read(address uint16) uint8 {
	m.readCount[address]++
	return m.data[address]
}

// Write implements the MemoryInterface Write method
func (m *MockMemory) Write(address uint16, value uint8) {
	m.writeCount[address]++
	m.data[address] = value
}

// PendingInterrupt arbitrates the IF and IE bytes of the mock address space
func (m *MockMemory) PendingInterrupt() (interrupt.Kind, bool) {
	c := interrupt.New()
	c.Write(interrupt.FlagAddress, m.data[ifAddress])
	c.Write(interrupt.EnableAddress, m.data[ieAddress])
	return c.Highest()
}

// AcknowledgeInterrupt clears the serviced bit of IF
func (m *MockMemory) AcknowledgeInterrupt(k interrupt.Kind) {
	m.writeCount[ifAddress]++
	m.data[ifAddress] &^= uint8(k)
}

// SetBytes sets multiple bytes starting at the given address
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// GetWriteCount returns the number of times an address was written
func (m *MockMemory) GetWriteCount(address uint16) int {
	return m.writeCount[address]
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

// NewCPUTestHelper creates a helper with the CPU in its post-boot state
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	return &CPUTestHelper{
		CPU:    New(memory),
		Memory: memory,
	}
}

// LoadProgram loads a program and points PC at it
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
	h.CPU.PC = address
}

// Run executes n steps and returns the total cycles
func (h *CPUTestHelper) Run(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += h.CPU.Step()
	}
	return total
}

// SetInterrupts stores IE and IF in the mock address space
func (h *CPUTestHelper) SetInterrupts(ie, flags uint8) {
	h.Memory.data[ieAddress] = ie
	h.Memory.data[ifAddress] = flags
}

// AssertFlags checks Z, N, H and C
func (h *CPUTestHelper) AssertFlags(t *testing.T, testName string, z, n, hc, c bool) {
	t.Helper()

	flags := []struct {
		name     string
		actual   bool
		expected bool
	}{
		{"Z", h.CPU.flag(flagZ), z},
		{"N", h.CPU.flag(flagN), n},
		{"H", h.CPU.flag(flagH), hc},
		{"C", h.CPU.flag(flagC), c},
	}

	for _, flag := range flags {
		if flag.actual != flag.expected {
			t.Errorf("%s: Expected %s=%v, got %v", testName, flag.name, flag.expected, flag.actual)
		}
	}
}

// AssertMemory checks if memory at address matches expected value
func (h *CPUTestHelper) AssertMemory(t *testing.T, testName string, address uint16, expected uint8) {
	t.Helper()
	if actual := h.Memory.data[address]; actual != expected {
		t.Errorf("%s: Expected memory[0x%04X]=0x%02X, got 0x%02X", testName, address, expected, actual)
	}
}

func TestCPUReset(t *testing.T) {
	h := NewCPUTestHelper()
	cpu := h.CPU

	if cpu.AF() != 0x01B0 || cpu.BC() != 0x0013 || cpu.DE() != 0x00D8 || cpu.HL() != 0x014D {
		t.Errorf("Unexpected post-boot registers AF=%04X BC=%04X DE=%04X HL=%04X",
			cpu.AF(), cpu.BC(), cpu.DE(), cpu.HL())
	}
	if cpu.SP != 0xFFFE || cpu.PC != 0x0100 {
		t.Errorf("Expected SP=FFFE PC=0100, got SP=%04X PC=%04X", cpu.SP, cpu.PC)
	}
	if cpu.IME() || cpu.Halted() || cpu.Locked() {
		t.Error("Expected IME off and CPU running after reset")
	}

	cpu.ResetForBootROM()
	if cpu.PC != 0 || cpu.SP != 0 || cpu.AF() != 0 {
		t.Errorf("Expected zeroed registers for boot ROM, got PC=%04X SP=%04X AF=%04X", cpu.PC, cpu.SP, cpu.AF())
	}
}

func TestRegisterPairs(t *testing.T) {
	h := NewCPUTestHelper()
	cpu := h.CPU

	cpu.SetBC(0x1234)
	cpu.SetDE(0x5678)
	cpu.SetHL(0x9ABC)
	cpu.SetAF(0xDEFF)

	if cpu.B != 0x12 || cpu.C != 0x34 || cpu.D != 0x56 || cpu.E != 0x78 || cpu.H != 0x9A || cpu.L != 0xBC {
		t.Error("Register pair halves not stored correctly")
	}
	if cpu.F != 0xF0 {
		t.Errorf("Expected F low nibble masked, got 0x%02X", cpu.F)
	}
}

func TestCPUStepCountsCycles(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0xC000, 0x00, 0x01, 0x34, 0x12) // NOP; LD BC,0x1234

	cycles := h.Run(2)
	if cycles != 16 {
		t.Errorf("Expected 16 cycles, got %d", cycles)
	}
	if h.CPU.Cycles() != 16 {
		t.Errorf("Expected cycle counter 16, got %d", h.CPU.Cycles())
	}
	if h.CPU.BC() != 0x1234 {
		t.Errorf("Expected BC=0x1234, got 0x%04X", h.CPU.BC())
	}
}

func TestIllegalOpcodeLocksCPU(t *testing.T) {
	for _, op := range illegalOpcodes {
		h := NewCPUTestHelper()
		h.LoadProgram(0xC000, op, 0x3C)

		if cycles := h.CPU.Step(); cycles != 4 {
			t.Errorf("0x%02X: expected 4 cycles, got %d", op, cycles)
		}
		if !h.CPU.Locked() || !h.CPU.Stalled(0x1F) {
			t.Errorf("0x%02X: expected CPU locked and stalled", op)
		}

		h.Run(10)
		if h.CPU.A != 0x01 {
			t.Errorf("0x%02X: locked CPU executed further instructions", op)
		}
	}
}

func TestFaultError(t *testing.T) {
	var err error = &FaultError{PC: 0x1234, Opcode: 0x40, Prefixed: true}
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatal("errors.As failed")
	}
	if err.Error() != "cpu: no implementation for CB 0x40 at PC=0x1234" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestEveryLegalOpcodeIsImplemented(t *testing.T) {
	for op := 0; op < 256; op++ {
		opcode := uint8(op)
		if isIllegal(opcode) {
			if h := NewCPUTestHelper(); h.CPU.instructions[opcode] != nil {
				t.Errorf("0x%02X: illegal opcode has a table entry", op)
			}
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("0x%02X: panicked: %v", op, r)
				}
			}()
			h := NewCPUTestHelper()
			h.CPU.SP = 0xDFF0
			h.LoadProgram(0xC000, opcode, 0x00, 0xD0)
			h.CPU.Step()
		}()
	}
}

func TestLoopDetectionAndTrace(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.EnableLoopDetection(true)
	h.LoadProgram(0xC000, 0x18, 0xFE) // JR -2

	h.Run(100)
	if h.CPU.PC != 0xC000 {
		t.Errorf("Expected PC to stay at 0xC000, got 0x%04X", h.CPU.PC)
	}
	if h.CPU.pcStayCount != 99 {
		t.Errorf("Expected 99 repeats, got %d", h.CPU.pcStayCount)
	}
	if got := h.CPU.getFlagsString(); got != "Z-HC" {
		t.Errorf("Expected flags Z-HC after reset, got %s", got)
	}
}
