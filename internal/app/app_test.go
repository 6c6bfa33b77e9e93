package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tetrisenv/environment"
	"tetrisenv/internal/graphics"
	"tetrisenv/internal/testrom"
)

const counterProfiles = `{"profiles": [{
	"name": "counter",
	"title": "FRAMECOUNT",
	"score": {"address": 49152, "bytes": 1, "encoding": "binary", "order": "little"},
	"lines": {"address": 49152, "bytes": 1, "encoding": "binary", "order": "little"}
}]}`

// newHeadlessApp writes a test cartridge and a profile table to a temp dir
// and loads them into a headless application
func newHeadlessApp(t *testing.T, builder *testrom.Builder, withProfiles bool) *Application {
	t.Helper()
	dir := t.TempDir()

	romPath := filepath.Join(dir, "test.gb")
	if err := os.WriteFile(romPath, builder.MustBuild(), 0644); err != nil {
		t.Fatal(err)
	}

	config := NewConfig()
	config.Video.Backend = string(graphics.BackendHeadless)
	config.Paths.Screenshots = filepath.Join(dir, "shots")
	config.Window.Scale = 2
	if withProfiles {
		profilesPath := filepath.Join(dir, "profiles.json")
		if err := os.WriteFile(profilesPath, []byte(counterProfiles), 0644); err != nil {
			t.Fatal(err)
		}
		config.Emulation.ProfilesPath = profilesPath
	}

	app, err := NewApplicationWithConfig(config)
	if err != nil {
		t.Fatalf("NewApplicationWithConfig: %v", err)
	}
	t.Cleanup(func() { app.Cleanup() })

	if err := app.LoadROM(romPath); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	return app
}

func episodeFrames(t *testing.T, app *Application) uint64 {
	t.Helper()
	frames, err := app.Environment().Frames()
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	return frames
}

func TestRunHeadless(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), true)
	app.GetConfig().Emulation.Frames = 30

	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := episodeFrames(t, app); got != 30 {
		t.Errorf("frames = %d, want 30", got)
	}
	score, err := app.Environment().Score()
	if err != nil || score != 30 {
		t.Errorf("score = %d, %v, want 30", score, err)
	}

	window, ok := graphics.AsHeadlessWindow(app.Window())
	if !ok {
		t.Fatalf("window is %T", app.Window())
	}
	if window.GetFrameCount() != 30 {
		t.Errorf("rendered %d frames, want 30", window.GetFrameCount())
	}
	if window.Status() != "SCORE 30  LINES 30" {
		t.Errorf("status = %q", window.Status())
	}
}

func TestStatusWithoutProfile(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), false)
	if err := app.RunFrames(3); err != nil {
		t.Fatal(err)
	}
	if got := app.Status(); got != "FRAME 3" {
		t.Errorf("status = %q, want FRAME 3", got)
	}

	app.Pause()
	if !strings.HasSuffix(app.Status(), "PAUSED") {
		t.Errorf("paused status = %q", app.Status())
	}
	app.TogglePause()
	if app.IsPaused() {
		t.Error("TogglePause did not resume")
	}
}

func TestRunStopsWhenEpisodeEnds(t *testing.T) {
	app := newHeadlessApp(t, testrom.Stall(), false)
	if err := app.RunFrames(100); err != nil {
		t.Fatal(err)
	}
	if app.GetFrameCount() != 1 {
		t.Errorf("frame count = %d, want 1 stalled frame", app.GetFrameCount())
	}
	if !strings.Contains(app.Status(), "GAME OVER") {
		t.Errorf("status = %q", app.Status())
	}
}

func TestResetUsesNextSeed(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), true)
	if err := app.RunFrames(10); err != nil {
		t.Fatal(err)
	}

	app.Reset()
	stats := app.Emulator().GetStats()
	if stats.Episodes != 2 || stats.Seed != 1 {
		t.Errorf("stats = %+v, want 2 episodes and seed 1", stats)
	}
	if got := episodeFrames(t, app); got != 0 {
		t.Errorf("frames after reset = %d", got)
	}
	if !app.Emulator().IsRunning() {
		t.Error("emulator not running after reset")
	}
}

func TestSaveScreenshot(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), false)
	if err := app.RunFrames(2); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := app.SaveScreenshot(path); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}

	if err := app.SaveScreenshot(""); err != nil {
		t.Fatalf("SaveScreenshot default path: %v", err)
	}
	entries, _ := os.ReadDir(app.GetConfig().Paths.Screenshots)
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Errorf("screenshot dir = %v", entries)
	}
}

func TestRunScript(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), true)
	app.GetConfig().Emulation.Frames = 20

	path := filepath.Join(t.TempDir(), "agent.lua")
	src := "env.press('Down')\nwhile env.frame() do end\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	// The frame limit ends the endless loop without an error
	if err := app.RunScript(context.Background(), path); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got := episodeFrames(t, app); got != 20 {
		t.Errorf("frames = %d, want 20", got)
	}
	window, _ := graphics.AsHeadlessWindow(app.Window())
	if window.GetFrameCount() != 20 {
		t.Errorf("rendered %d frames, want 20", window.GetFrameCount())
	}
}

func TestButtonKeysCoverEveryKey(t *testing.T) {
	seen := make(map[environment.Key]bool)
	for _, k := range buttonKeys {
		seen[k] = true
	}
	for _, k := range environment.Keys {
		if !seen[k] {
			t.Errorf("no button for %v", k)
		}
	}
}

func TestLoadROMErrors(t *testing.T) {
	config := NewConfig()
	config.Video.Backend = string(graphics.BackendHeadless)
	app, err := NewApplicationWithConfig(config)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	if err := app.Run(); err == nil {
		t.Error("Run without a ROM should fail")
	}

	err = app.LoadROM(filepath.Join(t.TempDir(), "missing.gb"))
	var appErr *ApplicationError
	if !errors.As(err, &appErr) || appErr.Operation != "ROM load" {
		t.Errorf("error = %v, want ROM load ApplicationError", err)
	}

	bootPath := filepath.Join(t.TempDir(), "boot.bin")
	os.WriteFile(bootPath, make([]byte, 10), 0644)
	config.Emulation.BootROM = bootPath
	if err := app.LoadROM("unused.gb"); err == nil || !strings.Contains(err.Error(), "want 256") {
		t.Errorf("short boot ROM error = %v", err)
	}
}

func TestLoadROMReleasesPreviousEnvironment(t *testing.T) {
	app := newHeadlessApp(t, testrom.FrameCounter(), true)

	first := app.Environment()
	if err := app.LoadROM(app.romPath); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if first.State() != environment.Destroyed {
		t.Errorf("previous environment state = %s, want Destroyed", first.State())
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	// A failed release is logged and the reload still succeeds
	if err := app.Environment().Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := app.LoadROM(app.romPath); err != nil {
		t.Fatalf("LoadROM after destroy: %v", err)
	}
	if !strings.Contains(buf.String(), "[APP] Releasing previous environment: environment: destroyed") {
		t.Errorf("release error not logged:\n%s", buf.String())
	}
	if app.Environment().State() != environment.Running {
		t.Errorf("reloaded state = %s, want Running", app.Environment().State())
	}
}

func TestNewApplicationRejectsBadBackend(t *testing.T) {
	config := NewConfig()
	config.Video.Backend = "sdl2"
	if _, err := NewApplicationWithConfig(config); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestCircularTimingBuffer(t *testing.T) {
	buf := NewCircularTimingBuffer(3)
	if buf.GetAverage() != 0 || buf.GetVariance() != 0 {
		t.Error("empty buffer should report zero")
	}
	for _, d := range []int{10, 20, 30, 40} {
		buf.Add(timeMs(d))
	}
	// 10 was overwritten
	if got := buf.GetAverage(); got != timeMs(30) {
		t.Errorf("average = %v, want 30ms", got)
	}
	if got := buf.GetVariance(); got != timeMs(20)/3 {
		t.Errorf("deviation = %v, want %v", got, timeMs(20)/3)
	}
	buf.Reset()
	if buf.GetAverage() != 0 {
		t.Error("Reset did not clear the buffer")
	}
}

func timeMs(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
