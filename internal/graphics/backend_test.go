package graphics

import (
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
		ok   bool
	}{
		{"Up", KeyUp, true},
		{"enter", KeyEnter, true},
		{"BACKSPACE", KeyBackspace, true},
		{"x", KeyX, true},
		{"F12", KeyF12, true},
		{"Q", KeyUnknown, false},
		{"", KeyUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.name)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseKey(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	for k := range keyNames {
		got, err := ParseKey(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKey(%q) = %v, %v", k.String(), got, err)
		}
	}
	if KeyUnknown.String() != "Unknown" {
		t.Errorf("KeyUnknown.String() = %q", KeyUnknown.String())
	}
}

func TestParseButton(t *testing.T) {
	for b := ButtonA; b <= ButtonRight; b++ {
		got, err := ParseButton(b.String())
		if err != nil || got != b {
			t.Errorf("ParseButton(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseButton("Turbo"); err == nil {
		t.Error("expected error for unknown button")
	}
}

func TestDefaultKeyMapCoversAllButtons(t *testing.T) {
	seen := make(map[Button]bool)
	for _, b := range DefaultKeyMap() {
		seen[b] = true
	}
	for b := ButtonA; b <= ButtonRight; b++ {
		if !seen[b] {
			t.Errorf("no default key for %v", b)
		}
	}
}

func TestMapKeyEvents(t *testing.T) {
	events := []InputEvent{
		{Type: InputEventTypeKey, Key: KeyDown, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyP, Pressed: true},
		{Type: InputEventTypeQuit, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyX, Pressed: false},
	}

	got := MapKeyEvents(events, nil)
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}

	if got[0].Type != InputEventTypeButton || got[0].Button != ButtonDown || !got[0].Pressed {
		t.Errorf("event 0 = %+v, want Down pressed", got[0])
	}
	if got[1].Type != InputEventTypeKey || got[1].Key != KeyP {
		t.Errorf("event 1 = %+v, want unmapped P key", got[1])
	}
	if got[2].Type != InputEventTypeQuit {
		t.Errorf("event 2 = %+v, want quit", got[2])
	}
	if got[3].Button != ButtonA || got[3].Pressed {
		t.Errorf("event 3 = %+v, want A released", got[3])
	}
}

func TestMapKeyEventsCustomMap(t *testing.T) {
	keyMap := map[Key]Button{KeySpace: ButtonStart}
	got := MapKeyEvents([]InputEvent{
		{Type: InputEventTypeKey, Key: KeySpace, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyEnter, Pressed: true},
	}, keyMap)

	if got[0].Button != ButtonStart {
		t.Errorf("Space mapped to %v, want Start", got[0].Button)
	}
	if got[1].Type != InputEventTypeKey {
		t.Errorf("Enter should stay a key event with a custom map, got %+v", got[1])
	}
}

func TestCreateBackend(t *testing.T) {
	for _, tt := range []struct {
		kind BackendType
		name string
	}{
		{BackendHeadless, "Headless"},
		{BackendTerminal, "Terminal"},
	} {
		backend, err := CreateBackend(tt.kind)
		if err != nil {
			t.Fatalf("CreateBackend(%s): %v", tt.kind, err)
		}
		if backend.GetName() != tt.name {
			t.Errorf("CreateBackend(%s).GetName() = %q, want %q", tt.kind, backend.GetName(), tt.name)
		}
	}

	if _, err := CreateBackend("vulkan"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
