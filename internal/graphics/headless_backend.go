package graphics

import (
	"fmt"
	"log"
	"path/filepath"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow keeps the last rendered frame in memory and can dump
// frames as PNG files
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	status     string
	scale      int
	filter     string

	lastFrame []uint32

	// Frames listed in dumpFrames are written to outputDir as they render
	outputDir  string
	dumpFrames map[int]bool
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	scale := b.config.Scale
	if scale < 1 {
		scale = 1
	}
	return &HeadlessWindow{
		title:      title,
		width:      width,
		height:     height,
		running:    true,
		scale:      scale,
		filter:     b.config.Filter,
		lastFrame:  make([]uint32, FrameWidth*FrameHeight),
		dumpFrames: make(map[int]bool),
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame keeps a copy of the frame and dumps it when requested
func (w *HeadlessWindow) RenderFrame(frame []uint32) error {
	if len(frame) != len(w.lastFrame) {
		return fmt.Errorf("frame has %d pixels, want %d", len(frame), len(w.lastFrame))
	}
	w.frameCount++
	copy(w.lastFrame, frame)

	if w.outputDir != "" && w.dumpFrames[w.frameCount] {
		path := filepath.Join(w.outputDir, fmt.Sprintf("frame_%05d.png", w.frameCount))
		if err := w.SaveScreenshot(path); err != nil {
			return err
		}
		log.Printf("[HEADLESS] Saved frame %d to %s", w.frameCount, path)
	}
	return nil
}

// SetStatus records the status line
func (w *HeadlessWindow) SetStatus(status string) {
	w.status = status
}

// Status returns the last status line
func (w *HeadlessWindow) Status() string {
	return w.status
}

// SaveScreenshot writes the last rendered frame to path as a PNG
func (w *HeadlessWindow) SaveScreenshot(path string) error {
	return SavePNG(path, w.lastFrame, w.scale, w.filter)
}

// DumpFrames writes the given frame numbers (1-based) to dir as they render
func (w *HeadlessWindow) DumpFrames(dir string, frames ...int) {
	w.outputDir = dir
	for _, f := range frames {
		w.dumpFrames[f] = true
	}
}

// LastFrame returns the last rendered frame
func (w *HeadlessWindow) LastFrame() []uint32 {
	return w.lastFrame
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the number of rendered frames
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}
