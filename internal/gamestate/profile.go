// Package gamestate decodes game values such as score and cleared lines from
// cartridge memory, using per-cartridge offset profiles.
package gamestate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"tetrisenv/internal/cartridge"
	"tetrisenv/internal/input"
)

// View is a decoded snapshot of the game values
type View struct {
	Score int
	Lines int
}

// Step holds a set of buttons for a number of frames. An empty button list
// idles.
type Step struct {
	Buttons []string `json:"buttons,omitempty"`
	Frames  int      `json:"frames"`

	// Seeded marks the step that absorbs the episode seed as extra idle
	// frames before it runs.
	Seeded bool `json:"seeded,omitempty"`
}

// Mask returns the buttons of the step as a joypad mask
func (s Step) Mask() (uint8, error) {
	var mask uint8
	for _, name := range s.Buttons {
		b, ok := input.ParseButton(name)
		if !ok {
			return 0, fmt.Errorf("unknown button %q", name)
		}
		mask |= uint8(b)
	}
	return mask, nil
}

// Profile describes where a cartridge keeps its game values and how to get
// from power-on to a running game.
type Profile struct {
	Name string `json:"name"`

	// Identity: the header title and, optionally, the accepted global
	// checksums of its revisions. No checksums matches every revision.
	Title           string   `json:"title"`
	GlobalChecksums []uint16 `json:"global_checksums,omitempty"`

	Score Field `json:"score"`
	Lines Field `json:"lines"`

	// Game over is reached when the byte at GameState holds one of GameOver
	GameState *uint16 `json:"game_state,omitempty"`
	GameOver  []uint8 `json:"game_over,omitempty"`

	Start      []Step `json:"start,omitempty"`
	SeedSpread int    `json:"seed_spread,omitempty"`
}

// Generic is used for cartridges without a profile. It defines no values.
var Generic = Profile{Name: "generic"}

// Matches reports whether the profile applies to a cartridge header
func (p Profile) Matches(h cartridge.Header) bool {
	if p.Title == "" || !strings.EqualFold(strings.TrimSpace(h.Title), p.Title) {
		return false
	}
	if len(p.GlobalChecksums) == 0 {
		return true
	}
	for _, sum := range p.GlobalChecksums {
		if sum == h.GlobalChecksum {
			return true
		}
	}
	return false
}

// Read decodes score and lines
func (p Profile) Read(mem Reader) (View, error) {
	score, err := p.Score.Read(mem)
	if err != nil {
		return View{}, fmt.Errorf("score: %w", err)
	}
	lines, err := p.Lines.Read(mem)
	if err != nil {
		return View{}, fmt.Errorf("lines: %w", err)
	}
	return View{Score: score, Lines: lines}, nil
}

// IsGameOver reports whether the game-state byte holds a game-over value
func (p Profile) IsGameOver(mem Reader) bool {
	if p.GameState == nil {
		return false
	}
	state := mem.Peek(*p.GameState)
	for _, v := range p.GameOver {
		if state == v {
			return true
		}
	}
	return false
}

// Validate checks the fields and start sequence
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile has no name")
	}
	if err := p.Score.validate(); err != nil {
		return fmt.Errorf("profile %s: score %w", p.Name, err)
	}
	if err := p.Lines.validate(); err != nil {
		return fmt.Errorf("profile %s: lines %w", p.Name, err)
	}
	for i, step := range p.Start {
		if step.Frames < 0 {
			return fmt.Errorf("profile %s: start step %d has negative frames", p.Name, i)
		}
		if _, err := step.Mask(); err != nil {
			return fmt.Errorf("profile %s: start step %d: %w", p.Name, i, err)
		}
	}
	if p.SeedSpread < 0 {
		return fmt.Errorf("profile %s: negative seed spread", p.Name)
	}
	return nil
}

// Table is an ordered set of profiles; the first match wins
type Table struct {
	Profiles []Profile `json:"profiles"`
}

// Lookup finds the profile for a cartridge header
func (t *Table) Lookup(h cartridge.Header) (Profile, bool) {
	for _, p := range t.Profiles {
		if p.Matches(h) {
			return p, true
		}
	}
	return Generic, false
}

// LoadTable reads a profile table from a JSON file
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	for _, p := range table.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	log.Printf("[GAMESTATE] Loaded %d profiles from %s", len(table.Profiles), path)
	return &table, nil
}

// Builtin returns the table of known cartridges
func Builtin() *Table {
	return &Table{Profiles: []Profile{Tetris()}}
}

// Tetris returns the profile for the falling-block puzzle cartridge.
// Score is three packed decimal bytes, lowest digits first; cleared lines
// are two. hGameState at 0xFFE1 holds 0x01 on the game-over screen and 0x0D
// while the board fills after topping out.
func Tetris() Profile {
	gameState := uint16(0xFFE1)
	return Profile{
		Name:  "tetris",
		Title: "TETRIS",
		Score: Field{Address: 0xC0A0, Bytes: 3, Encoding: BCD, Order: LittleEndian},
		Lines: Field{Address: 0xFF9E, Bytes: 2, Encoding: BCD, Order: LittleEndian},

		GameState: &gameState,
		GameOver:  []uint8{0x01, 0x0D},

		// Copyright screen, title, game type A, music, level 0
		Start: []Step{
			{Frames: 180},
			{Buttons: []string{"Start"}, Frames: 2},
			{Frames: 40},
			{Buttons: []string{"Start"}, Frames: 2},
			{Frames: 20},
			{Buttons: []string{"Start"}, Frames: 2},
			{Frames: 20},
			{Buttons: []string{"Start"}, Frames: 2},
			{Frames: 20},
			{Buttons: []string{"Start"}, Frames: 2, Seeded: true},
			{Frames: 10},
		},
		SeedSpread: 60,
	}
}
