package input

import (
	"testing"
)

func TestNew_ShouldCreateJoypadWithDefaultState(t *testing.T) {
	joypad := New()

	if joypad == nil {
		t.Fatal("Expected joypad, got nil")
	}
	if joypad.Buttons() != 0 {
		t.Errorf("Expected no pressed buttons, got 0x%02X", joypad.Buttons())
	}
	if value := joypad.Read(); value != 0xFF {
		t.Errorf("Expected P1 0xFF with nothing selected, got 0x%02X", value)
	}
}

func TestSetButton_ShouldUpdateButtonState(t *testing.T) {
	joypad := New()

	buttons := []Button{
		ButtonA, ButtonB, ButtonSelect, ButtonStart,
		ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	}

	for _, button := range buttons {
		joypad.SetButton(button, true)

		if !joypad.IsPressed(button) {
			t.Errorf("Button %s should be pressed after SetButton(true)", button)
		}
		if joypad.Buttons() != uint8(button) {
			t.Errorf("Expected buttons state 0x%02X, got 0x%02X", uint8(button), joypad.Buttons())
		}

		joypad.SetButton(button, false)

		if joypad.IsPressed(button) {
			t.Errorf("Button %s should not be pressed after SetButton(false)", button)
		}
	}
}

func TestSetButton_MultipleButtons_ShouldCombineStates(t *testing.T) {
	joypad := New()

	joypad.SetButton(ButtonA, true)
	joypad.SetButton(ButtonDown, true)
	joypad.SetButton(ButtonStart, true)

	expected := uint8(ButtonA | ButtonDown | ButtonStart)
	if joypad.Buttons() != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, joypad.Buttons())
	}
	if !joypad.AnyPressed() {
		t.Error("AnyPressed should report held buttons")
	}

	joypad.SetButton(ButtonDown, false)
	expected = uint8(ButtonA | ButtonStart)
	if joypad.Buttons() != expected {
		t.Errorf("Expected 0x%02X after release, got 0x%02X", expected, joypad.Buttons())
	}
}

func TestRead_ShouldReflectSelectedGroup(t *testing.T) {
	joypad := New()
	joypad.SetButton(ButtonRight, true)
	joypad.SetButton(ButtonA, true)
	joypad.SetButton(ButtonStart, true)

	tests := []struct {
		name     string
		write    uint8
		expected uint8
	}{
		{"Directions", 0x20, 0xEE},
		{"Actions", 0x10, 0xD6},
		{"Both", 0x00, 0xC6},
		{"None", 0x30, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joypad.Write(tt.write)
			if value := joypad.Read(); value != tt.expected {
				t.Errorf("Expected P1 0x%02X, got 0x%02X", tt.expected, value)
			}
		})
	}
}

func TestWrite_ShouldIgnoreLowBits(t *testing.T) {
	joypad := New()
	joypad.Write(0xEF)

	if value := joypad.Read(); value != 0xEF {
		t.Errorf("Expected P1 0xEF, got 0x%02X", value)
	}
}

func TestSetButton_ShouldReportInterruptEdges(t *testing.T) {
	joypad := New()
	joypad.Write(0x20) // directions

	if !joypad.SetButton(ButtonUp, true) {
		t.Error("Pressing a selected button should report an edge")
	}
	if joypad.SetButton(ButtonUp, true) {
		t.Error("Holding a pressed button should not report an edge")
	}
	if joypad.SetButton(ButtonB, true) {
		t.Error("Pressing a button in the unselected group should not report an edge")
	}
	if joypad.SetButton(ButtonUp, false) {
		t.Error("Releasing a button should not report an edge")
	}
}

func TestWrite_ShouldReportEdgeForHeldButton(t *testing.T) {
	joypad := New()
	joypad.SetButton(ButtonStart, true)

	if !joypad.Write(0x10) {
		t.Error("Selecting a group with a held button should report an edge")
	}
	if joypad.Write(0x10) {
		t.Error("Rewriting the same selection should not report an edge")
	}
}

func TestReset_ShouldReleaseButtons(t *testing.T) {
	joypad := New()
	joypad.SetButton(ButtonA, true)
	joypad.Write(0x00)

	joypad.Reset()

	if joypad.Buttons() != 0 {
		t.Error("Reset should release every button")
	}
	if value := joypad.Read(); value != 0xFF {
		t.Errorf("Expected P1 0xFF after reset, got 0x%02X", value)
	}
}

func TestButtonString(t *testing.T) {
	if ButtonSelect.String() != "Select" || Button(0).String() != "Unknown" {
		t.Errorf("Unexpected button names: %s, %s", ButtonSelect, Button(0))
	}
}

func TestParseButton(t *testing.T) {
	for _, b := range Buttons {
		parsed, ok := ParseButton(b.String())
		if !ok || parsed != b {
			t.Errorf("ParseButton(%q) = %s, %t", b.String(), parsed, ok)
		}
	}
	if b, ok := ParseButton("start"); !ok || b != ButtonStart {
		t.Error("ParseButton should ignore case")
	}
	if _, ok := ParseButton("turbo"); ok {
		t.Error("Unknown names should not parse")
	}
}
