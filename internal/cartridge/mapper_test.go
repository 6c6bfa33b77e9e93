package cartridge

import (
	"testing"

	"tetrisenv/internal/testrom"
)

func newMBC1Cart(t *testing.T, banks int, ramCode uint8) *Cartridge {
	t.Helper()
	b := testrom.NewBuilder().WithMBC1(banks)
	if ramCode != 0 {
		b = b.WithRAM(ramCode)
	}
	cart, err := New(b.MustBuild())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return cart
}

func TestMBC1_ShouldSwitchROMBanks(t *testing.T) {
	cart := newMBC1Cart(t, 8, 0)

	if got := cart.ReadROM(0x4000); got != 1 {
		t.Errorf("Expected bank 1 at power on, got %d", got)
	}

	for bank := uint8(1); bank < 8; bank++ {
		cart.WriteROM(0x2000, bank)
		if got := cart.ReadROM(0x4000); got != bank {
			t.Errorf("Bank %d: marker read %d", bank, got)
		}
		if got := cart.ROMBank(); got != int(bank) {
			t.Errorf("Bank %d: ROMBank reported %d", bank, got)
		}
		if got := cart.ReadROM(0x0000); got != 0 {
			t.Errorf("Bank %d: fixed bank changed to %d", bank, got)
		}
	}
}

func TestMBC1_ShouldTreatBankZeroAsOne(t *testing.T) {
	cart := newMBC1Cart(t, 4, 0)

	cart.WriteROM(0x2000, 0x00)
	if got := cart.ReadROM(0x4000); got != 1 {
		t.Errorf("Expected bank 1 after selecting 0, got %d", got)
	}
	cart.WriteROM(0x3FFF, 0x20) // low 5 bits are zero
	if got := cart.ReadROM(0x4000); got != 1 {
		t.Errorf("Expected bank 1 after selecting 0x20, got %d", got)
	}
}

func TestMBC1_ShouldWrapBanksBeyondImage(t *testing.T) {
	cart := newMBC1Cart(t, 4, 0)

	cart.WriteROM(0x2000, 0x06) // 6 & 3 = 2
	if got := cart.ReadROM(0x4000); got != 2 {
		t.Errorf("Expected bank 2 after wraparound, got %d", got)
	}
	if cart.ROMBank() != 2 {
		t.Errorf("ROMBank = %d, want 2", cart.ROMBank())
	}
}

func TestMBC1_BankSelectionShouldBeIdempotent(t *testing.T) {
	cart := newMBC1Cart(t, 8, 0)

	cart.WriteROM(0x2000, 0x03)
	first := cart.ReadROM(0x4000)
	cart.WriteROM(0x2000, 0x03)
	second := cart.ReadROM(0x4000)

	if first != second || first != 3 {
		t.Errorf("Expected bank 3 twice, got %d then %d", first, second)
	}
}

func TestMBC1_ShouldUseUpperBitsForLargeImages(t *testing.T) {
	cart := newMBC1Cart(t, 64, 0)

	cart.WriteROM(0x2000, 0x01)
	cart.WriteROM(0x4000, 0x01)
	if got := cart.ReadROM(0x4000); got != 0x21 {
		t.Errorf("Expected bank 0x21, got 0x%02X", got)
	}

	// Mode 1 maps the upper bits into the fixed window as well
	cart.WriteROM(0x6000, 0x01)
	if got := cart.ReadROM(0x0000); got != 0x20 {
		t.Errorf("Expected bank 0x20 in low window, got 0x%02X", got)
	}
}

func TestMBC1_ShouldGateRAM(t *testing.T) {
	cart := newMBC1Cart(t, 4, 0x03)

	cart.WriteRAM(0xA000, 0x11)
	if got := cart.ReadRAM(0xA000); got != 0xFF {
		t.Errorf("Expected 0xFF while RAM disabled, got 0x%02X", got)
	}

	cart.WriteROM(0x0000, 0x0A)
	cart.WriteRAM(0xA000, 0x11)
	if got := cart.ReadRAM(0xA000); got != 0x11 {
		t.Errorf("Expected 0x11, got 0x%02X", got)
	}

	// Switch RAM banks in mode 1
	cart.WriteROM(0x6000, 0x01)
	cart.WriteROM(0x4000, 0x02)
	cart.WriteRAM(0xA000, 0x22)
	cart.WriteROM(0x4000, 0x00)
	if got := cart.ReadRAM(0xA000); got != 0x11 {
		t.Errorf("Expected bank 0 value 0x11, got 0x%02X", got)
	}
	cart.WriteROM(0x4000, 0x02)
	if got := cart.ReadRAM(0xA000); got != 0x22 {
		t.Errorf("Expected bank 2 value 0x22, got 0x%02X", got)
	}

	cart.WriteROM(0x0000, 0x00)
	if got := cart.ReadRAM(0xA000); got != 0xFF {
		t.Errorf("Expected 0xFF after disabling RAM, got 0x%02X", got)
	}
}

func TestMBC1_ResetShouldRestorePowerOnBanks(t *testing.T) {
	cart := newMBC1Cart(t, 8, 0)

	cart.WriteROM(0x2000, 0x05)
	cart.Reset()
	if got := cart.ReadROM(0x4000); got != 1 {
		t.Errorf("Expected bank 1 after reset, got %d", got)
	}
	if cart.ROMBank() != 1 {
		t.Errorf("ROMBank after reset = %d, want 1", cart.ROMBank())
	}
}
