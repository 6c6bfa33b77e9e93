// Package script runs Lua agents against an environment. A script drives
// the game through the global env table:
//
//	env.press("Down")      -- hold a key
//	env.release("Down")    -- let it go
//	env.frame(n)           -- run n frames (default 1), returns env.running()
//	env.score(), env.lines(), env.frames(), env.running()
//	env.reset(seed)        -- start a new episode
//	env.peek(address)      -- read a byte of memory
//	env.log(message)
package script

import (
	"context"
	"errors"
	"fmt"
	"log"

	lua "github.com/yuin/gopher-lua"

	"tetrisenv/environment"
)

// ErrFrameLimit is returned when a script runs more frames than allowed
var ErrFrameLimit = errors.New("script: frame limit reached")

// Options configures a Runner
type Options struct {
	// MaxFrames stops the script once it has run this many frames. Zero
	// means no limit.
	MaxFrames int

	// OnFrame is called after every frame the script runs
	OnFrame func() error
}

// Runner hosts one Lua state bound to an environment
type Runner struct {
	L    *lua.LState
	env  *environment.Environment
	opts Options

	frames int
}

// New creates a runner. Close must be called when done.
func New(env *environment.Environment, opts Options) *Runner {
	r := &Runner{
		L:    lua.NewState(),
		env:  env,
		opts: opts,
	}
	r.register()
	return r
}

func (r *Runner) register() {
	api := r.L.NewTable()
	r.L.SetFuncs(api, map[string]lua.LGFunction{
		"press":   r.press,
		"release": r.release,
		"frame":   r.frame,
		"score":   r.score,
		"lines":   r.lines,
		"frames":  r.framesRun,
		"running": r.running,
		"reset":   r.reset,
		"peek":    r.peek,
		"log":     r.log,
	})

	keys := r.L.NewTable()
	for _, k := range environment.Keys {
		keys.RawSetString(k.String(), lua.LNumber(k))
	}
	api.RawSetString("keys", keys)

	r.L.SetGlobal("env", api)
}

// RunFile executes the script at path
func (r *Runner) RunFile(ctx context.Context, path string) error {
	r.L.SetContext(ctx)
	if err := r.L.DoFile(path); err != nil {
		return r.wrap(err)
	}
	return nil
}

// RunString executes a script held in memory
func (r *Runner) RunString(ctx context.Context, source string) error {
	r.L.SetContext(ctx)
	if err := r.L.DoString(source); err != nil {
		return r.wrap(err)
	}
	return nil
}

// wrap keeps ErrFrameLimit visible to errors.Is through the Lua error
func (r *Runner) wrap(err error) error {
	if r.opts.MaxFrames > 0 && r.frames >= r.opts.MaxFrames {
		return fmt.Errorf("%w: %v", ErrFrameLimit, err)
	}
	return fmt.Errorf("script: %w", err)
}

// Frames returns the number of frames the script has run
func (r *Runner) Frames() int {
	return r.frames
}

// Close releases the Lua state
func (r *Runner) Close() {
	r.L.Close()
}

func (r *Runner) check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

// key accepts a key name or one of the env.keys numbers
func (r *Runner) key(L *lua.LState) environment.Key {
	switch v := L.Get(1).(type) {
	case lua.LNumber:
		k := environment.Key(int(v))
		if !k.Valid() {
			L.ArgError(1, fmt.Sprintf("invalid key %d", int(v)))
		}
		return k
	case lua.LString:
		k, err := environment.ParseKey(string(v))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		return k
	}
	L.TypeError(1, lua.LTString)
	return 0
}

func (r *Runner) press(L *lua.LState) int {
	r.check(L, r.env.SetKeyState(r.key(L), true))
	return 0
}

func (r *Runner) release(L *lua.LState) int {
	r.check(L, r.env.SetKeyState(r.key(L), false))
	return 0
}

func (r *Runner) frame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n && r.env.IsRunning(); i++ {
		if r.opts.MaxFrames > 0 && r.frames >= r.opts.MaxFrames {
			L.RaiseError("%v after %d frames", ErrFrameLimit, r.frames)
		}
		r.check(L, r.env.RunFrame())
		r.frames++
		if r.opts.OnFrame != nil {
			r.check(L, r.opts.OnFrame())
		}
	}
	L.Push(lua.LBool(r.env.IsRunning()))
	return 1
}

func (r *Runner) score(L *lua.LState) int {
	score, err := r.env.Score()
	r.check(L, err)
	L.Push(lua.LNumber(score))
	return 1
}

func (r *Runner) lines(L *lua.LState) int {
	lines, err := r.env.Lines()
	r.check(L, err)
	L.Push(lua.LNumber(lines))
	return 1
}

func (r *Runner) framesRun(L *lua.LState) int {
	frames, err := r.env.Frames()
	r.check(L, err)
	L.Push(lua.LNumber(frames))
	return 1
}

func (r *Runner) running(L *lua.LState) int {
	L.Push(lua.LBool(r.env.IsRunning()))
	return 1
}

func (r *Runner) reset(L *lua.LState) int {
	seed := L.OptInt64(1, 0)
	if seed < 0 {
		L.ArgError(1, "seed must not be negative")
	}
	r.check(L, r.env.StartEpisodeSeed(uint64(seed)))
	return 0
}

func (r *Runner) peek(L *lua.LState) int {
	address := L.CheckInt(1)
	if address < 0 || address > 0xFFFF {
		L.ArgError(1, "address out of range")
	}
	value, err := r.env.Peek(uint16(address))
	r.check(L, err)
	L.Push(lua.LNumber(value))
	return 1
}

func (r *Runner) log(L *lua.LState) int {
	log.Printf("[SCRIPT] %s", L.CheckString(1))
	return 0
}
