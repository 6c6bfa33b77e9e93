package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tetrisenv/environment"
	"tetrisenv/internal/gamestate"
	"tetrisenv/internal/testrom"
)

func newRunner(t *testing.T, builder *testrom.Builder, opts Options) (*Runner, *environment.Environment) {
	t.Helper()

	counter := gamestate.Field{Address: testrom.CounterAddress, Bytes: 1, Encoding: gamestate.Binary, Order: gamestate.LittleEndian}
	table := &gamestate.Table{Profiles: []gamestate.Profile{{
		Name:  "counter",
		Title: "FRAMECOUNT",
		Score: counter,
		Lines: counter,
	}}}

	env, err := environment.InitializeImage(builder.MustBuild(), environment.WithProfiles(table))
	if err != nil {
		t.Fatalf("InitializeImage: %v", err)
	}
	if err := env.StartEpisode(); err != nil {
		t.Fatalf("StartEpisode: %v", err)
	}

	r := New(env, opts)
	t.Cleanup(func() {
		r.Close()
		env.Destroy()
	})
	return r, env
}

func TestFrameAndScore(t *testing.T) {
	r, _ := newRunner(t, testrom.FrameCounter(), Options{})

	err := r.RunString(context.Background(), `
		local running = env.frame(10)
		assert(running, "episode ended early")
		assert(env.score() == 10, "score " .. env.score())
		assert(env.lines() == 10, "lines " .. env.lines())
		assert(env.frames() == 10, "frames " .. env.frames())
		env.frame()
		assert(env.score() == 11)
	`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if r.Frames() != 11 {
		t.Errorf("Frames() = %d, want 11", r.Frames())
	}
}

func TestPressRelease(t *testing.T) {
	r, env := newRunner(t, testrom.JoypadEcho(), Options{})

	err := r.RunString(context.Background(), `
		env.frame()
		assert(env.peek(0xC001) == 0xEF, string.format("idle %02X", env.peek(0xC001)))
		env.press("Down")
		env.frame()
		assert(env.peek(0xC001) == 0xE7, string.format("down %02X", env.peek(0xC001)))
		env.release(env.keys.Down)
		env.frame()
		assert(env.peek(0xC001) == 0xEF)
	`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if v, _ := env.Peek(testrom.EchoAddress); v != 0xEF {
		t.Errorf("echo after script = %02X, want EF", v)
	}
}

func TestInvalidKey(t *testing.T) {
	r, _ := newRunner(t, testrom.JoypadEcho(), Options{})

	for _, src := range []string{`env.press("Turbo")`, `env.press(9)`, `env.release({})`} {
		if err := r.RunString(context.Background(), src); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}
}

func TestReset(t *testing.T) {
	r, _ := newRunner(t, testrom.FrameCounter(), Options{})

	err := r.RunString(context.Background(), `
		env.frame(5)
		env.reset()
		assert(env.frames() == 0)
		env.frame(3)
		assert(env.score() == 3, "score " .. env.score())
	`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

func TestRunningAfterStall(t *testing.T) {
	r, env := newRunner(t, testrom.Stall(), Options{})

	err := r.RunString(context.Background(), `
		local running = env.frame(5)
		assert(not running)
		assert(not env.running())
	`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if env.IsRunning() {
		t.Error("environment still running after stall")
	}
}

func TestFrameLimit(t *testing.T) {
	r, _ := newRunner(t, testrom.FrameCounter(), Options{MaxFrames: 5})

	err := r.RunString(context.Background(), `while true do env.frame() end`)
	if !errors.Is(err, ErrFrameLimit) {
		t.Fatalf("error = %v, want ErrFrameLimit", err)
	}
	if r.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", r.Frames())
	}
}

func TestOnFrame(t *testing.T) {
	calls := 0
	r, _ := newRunner(t, testrom.FrameCounter(), Options{OnFrame: func() error {
		calls++
		if calls == 3 {
			return errors.New("viewer closed")
		}
		return nil
	}})

	err := r.RunString(context.Background(), `env.frame(10)`)
	if err == nil || !strings.Contains(err.Error(), "viewer closed") {
		t.Fatalf("error = %v, want viewer closed", err)
	}
	if calls != 3 {
		t.Errorf("OnFrame called %d times, want 3", calls)
	}
}

func TestContextCancel(t *testing.T) {
	r, _ := newRunner(t, testrom.FrameCounter(), Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := r.RunString(ctx, `while true do end`); err == nil {
		t.Fatal("expected error from cancelled script")
	}
}

func TestRunFile(t *testing.T) {
	r, _ := newRunner(t, testrom.FrameCounter(), Options{})

	path := filepath.Join(t.TempDir(), "agent.lua")
	src := "env.log('starting')\nenv.frame(2)\nassert(env.score() == 2)\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile: %v", err)
	}

	if err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestErrorsAfterDestroy(t *testing.T) {
	r, env := newRunner(t, testrom.FrameCounter(), Options{})
	env.Destroy()

	if err := r.RunString(context.Background(), `env.score()`); err == nil {
		t.Error("expected error reading score of destroyed environment")
	}
}
