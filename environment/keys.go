package environment

import (
	"fmt"
	"strings"

	"tetrisenv/internal/input"
)

// Key identifies a button at the environment boundary. The values are part
// of the external interface and must not be reordered.
type Key int

const (
	Up Key = iota
	Down
	Left
	Right
	B
	A
	Select
	Start
)

// Keys lists every key in boundary order
var Keys = [8]Key{Up, Down, Left, Right, B, A, Select, Start}

var keyButtons = [8]input.Button{
	Up:     input.ButtonUp,
	Down:   input.ButtonDown,
	Left:   input.ButtonLeft,
	Right:  input.ButtonRight,
	B:      input.ButtonB,
	A:      input.ButtonA,
	Select: input.ButtonSelect,
	Start:  input.ButtonStart,
}

// Valid reports whether k is one of the eight keys
func (k Key) Valid() bool {
	return k >= Up && k <= Start
}

// Button returns the joypad button behind the key
func (k Key) Button() input.Button {
	return keyButtons[k]
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return k.Button().String()
}

// ParseKey maps a case-insensitive key name to its Key
func ParseKey(name string) (Key, error) {
	for _, k := range Keys {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKey, name)
}
