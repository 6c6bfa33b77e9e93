package graphics

import (
	"bytes"
	"strings"
	"testing"

	"tetrisenv/internal/ppu"
)

func TestCellSize(t *testing.T) {
	tests := []struct {
		cols, rows   int
		stepX, stepY int
	}{
		{80, 23, 2, 7},
		{160, 72, 1, 2},
		{200, 200, 1, 2},
		{40, 10, 4, 15},
		{0, 0, 160, 320},
	}
	for _, tt := range tests {
		x, y := cellSize(tt.cols, tt.rows)
		if x != tt.stepX || y != tt.stepY {
			t.Errorf("cellSize(%d, %d) = %d, %d, want %d, %d", tt.cols, tt.rows, x, y, tt.stepX, tt.stepY)
		}
	}
}

func TestShade(t *testing.T) {
	if got := shade(ppu.GreyPalette[0]); got != " " {
		t.Errorf("white shade = %q, want space", got)
	}
	if got := shade(ppu.GreyPalette[3]); got != "█" {
		t.Errorf("black shade = %q, want full block", got)
	}
}

func TestTerminalRenderFrame(t *testing.T) {
	backend := NewTerminalBackend()
	if err := backend.Initialize(Config{}); err != nil {
		t.Fatal(err)
	}
	window, err := backend.CreateWindow("test", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	tw := window.(*TerminalWindow)

	var buf bytes.Buffer
	tw.SetOutput(&buf)
	tw.SetStatus("LINES 3")

	frame := make([]uint32, FrameWidth*FrameHeight)
	for i := range frame {
		frame[i] = ppu.GreyPalette[3]
	}
	if err := tw.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	// Not a terminal, so the fallback 80x24 grid is used
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 22 {
		t.Fatalf("got %d lines, want 21 frame rows and a status line", len(lines))
	}
	row := strings.TrimPrefix(lines[0], "\033[H\033[2J")
	if row != strings.Repeat("█", 80) {
		t.Errorf("first row = %q", row)
	}
	if lines[21] != "LINES 3" {
		t.Errorf("status line = %q", lines[21])
	}
}
