package graphics

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"tetrisenv/internal/ppu"
)

// Fallback size when the output is not a terminal
const (
	defaultTerminalColumns = 80
	defaultTerminalRows    = 24
)

// Shades from darkest to lightest
var terminalShades = []string{"█", "▓", "░", " "}

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow renders frames as block characters sized to the terminal
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool
	status  string
	out     io.Writer
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a terminal "window" writing to stdout
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     os.Stdout,
	}, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns the character grid the frame is drawn into
func (w *TerminalWindow) GetSize() (width, height int) {
	if f, ok := w.out.(*os.File); ok {
		if cols, rows, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 && rows > 1 {
			return cols, rows
		}
	}
	return defaultTerminalColumns, defaultTerminalRows
}

// SetOutput redirects rendering, mainly for tests
func (w *TerminalWindow) SetOutput(out io.Writer) {
	w.out = out
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing for terminal
func (w *TerminalWindow) SwapBuffers() {}

// PollEvents returns empty events list (no input handling for now)
func (w *TerminalWindow) PollEvents() []InputEvent {
	return nil
}

// SetStatus sets the line printed under the frame
func (w *TerminalWindow) SetStatus(status string) {
	w.status = status
}

// RenderFrame draws the frame with one character per cell of pixels. Cells
// are twice as tall as they are wide to make up for the character shape.
func (w *TerminalWindow) RenderFrame(frame []uint32) error {
	if len(frame) != FrameWidth*FrameHeight {
		return fmt.Errorf("frame has %d pixels, want %d", len(frame), FrameWidth*FrameHeight)
	}

	cols, rows := w.GetSize()
	stepX, stepY := cellSize(cols, rows-1)

	out := bufio.NewWriter(w.out)
	out.WriteString("\033[H\033[2J")
	for y := 0; y < FrameHeight; y += stepY {
		for x := 0; x < FrameWidth; x += stepX {
			out.WriteString(shade(frame[y*FrameWidth+x]))
		}
		out.WriteByte('\n')
	}
	if w.status != "" {
		out.WriteString(w.status)
		out.WriteByte('\n')
	}
	return out.Flush()
}

// cellSize returns the pixel block drawn as one character
func cellSize(cols, rows int) (stepX, stepY int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	stepX = (FrameWidth + cols - 1) / cols
	stepY = (FrameHeight + rows - 1) / rows
	if stepY < 2*stepX {
		stepY = 2 * stepX
	}
	if stepX < 1 {
		stepX = 1
	}
	return stepX, stepY
}

func shade(pixel uint32) string {
	r, g, b, _ := ppu.Unpack(pixel)
	luma := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	return terminalShades[luma*len(terminalShades)/256]
}

// Cleanup releases window resources
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	return nil
}
