package environment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tetrisenv/internal/cartridge"
	"tetrisenv/internal/gamestate"
	"tetrisenv/internal/ppu"
	"tetrisenv/internal/testrom"
)

// newTestEnvironment builds a cartridge image and initializes a Ready environment
func newTestEnvironment(t *testing.T, builder *testrom.Builder, opts ...Option) *Environment {
	t.Helper()
	env, err := InitializeImage(builder.MustBuild(), opts...)
	if err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	t.Cleanup(func() {
		if env.State() != Destroyed {
			env.Destroy()
		}
	})
	return env
}

// counterProfile reads the FrameCounter byte as both score and lines
func counterProfile() gamestate.Profile {
	counter := gamestate.Field{
		Address:  testrom.CounterAddress,
		Bytes:    1,
		Encoding: gamestate.Binary,
		Order:    gamestate.LittleEndian,
	}
	return gamestate.Profile{
		Name:  "counter",
		Title: "FRAMECOUNT",
		Score: counter,
		Lines: counter,
	}
}

func withProfile(p gamestate.Profile) Option {
	return WithProfiles(&gamestate.Table{Profiles: []gamestate.Profile{p}})
}

func runFrames(t *testing.T, env *Environment, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := env.RunFrame(); err != nil {
			t.Fatalf("RunFrame %d: %v", i, err)
		}
	}
}

func frames(t *testing.T, env *Environment) uint64 {
	t.Helper()
	n, err := env.Frames()
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	return n
}

func peek(t *testing.T, env *Environment, address uint16) uint8 {
	t.Helper()
	value, err := env.Peek(address)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	return value
}

func TestInitialize_ShouldReturnReadyEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.gb")
	if err := os.WriteFile(path, testrom.FrameCounter().MustBuild(), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := Initialize(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer env.Destroy()

	if env.State() != Ready {
		t.Errorf("Expected Ready, got %s", env.State())
	}
	if env.IsRunning() {
		t.Error("Environment should not run before an episode")
	}
	header, err := env.Cartridge()
	if err != nil || header.Title != "FRAMECOUNT" {
		t.Errorf("Unexpected header %+v (%v)", header, err)
	}
}

func TestInitialize_ShouldFailOnBadInput(t *testing.T) {
	dir := t.TempDir()

	if env, err := Initialize(filepath.Join(dir, "missing.gb")); err == nil || env != nil {
		t.Error("Expected failure for a missing file")
	}

	malformed := filepath.Join(dir, "bad.gb")
	os.WriteFile(malformed, testrom.NewBuilder().WithBadChecksum().MustBuild(), 0644)
	if _, err := Initialize(malformed); !errors.Is(err, cartridge.ErrMalformedHeader) {
		t.Errorf("Expected ErrMalformedHeader, got %v", err)
	}

	if _, err := InitializeImage(testrom.NewBuilder().WithType(0x13).MustBuild()); !errors.Is(err, cartridge.ErrUnsupportedMapper) {
		t.Errorf("Expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestInitialize_ShouldRejectInvalidProfile(t *testing.T) {
	profile := counterProfile()
	profile.Start = []gamestate.Step{{Buttons: []string{"Turbo"}, Frames: 1}}

	if _, err := InitializeImage(testrom.FrameCounter().MustBuild(), withProfile(profile)); err == nil {
		t.Error("Expected error for a profile with an unknown button")
	}
}

func TestLifecycle_ShouldRequireEpisode(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter(), withProfile(counterProfile()))

	if err := env.RunFrame(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("RunFrame: expected ErrNotStarted, got %v", err)
	}
	if err := env.SetKeyState(Down, true); !errors.Is(err, ErrNotStarted) {
		t.Errorf("SetKeyState: expected ErrNotStarted, got %v", err)
	}
	if _, err := env.Score(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Score: expected ErrNotStarted, got %v", err)
	}
	if _, err := env.Lines(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Lines: expected ErrNotStarted, got %v", err)
	}
	if _, err := env.Pixels(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Pixels: expected ErrNotStarted, got %v", err)
	}
	if env.State() != Ready {
		t.Errorf("Failed calls must not change state, got %s", env.State())
	}

	if err := env.StartEpisode(); err != nil {
		t.Fatalf("StartEpisode: %v", err)
	}
	if env.State() != Running || !env.IsRunning() {
		t.Error("Expected a running episode")
	}
}

func TestLifecycle_ShouldFailAfterDestroy(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter())
	env.StartEpisode()

	if err := env.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	checks := map[string]error{
		"StartEpisode": env.StartEpisode(),
		"RunFrame":     env.RunFrame(),
		"SetKeyState":  env.SetKeyState(A, true),
		"Destroy":      env.Destroy(),
	}
	_, checks["Score"] = env.Score()
	_, checks["Pixels"] = env.Pixels()
	_, checks["Peek"] = env.Peek(0xC000)
	_, checks["Cartridge"] = env.Cartridge()
	_, checks["Frames"] = env.Frames()
	_, checks["Profile"] = env.Profile()
	_, checks["View"] = env.View()

	for name, err := range checks {
		if !errors.Is(err, ErrDestroyed) {
			t.Errorf("%s: expected ErrDestroyed, got %v", name, err)
		}
	}
	if env.IsRunning() {
		t.Error("Destroyed environment is not running")
	}
}

func TestLifecycle_UninitializedHandle(t *testing.T) {
	var nilEnv *Environment
	if err := nilEnv.RunFrame(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	zero := &Environment{}
	if err := zero.StartEpisode(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if zero.State() != Uninitialized || zero.IsRunning() {
		t.Error("Zero environment should be uninitialized")
	}
}

func TestRunFrame_CounterReachesSixty(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter())
	env.StartEpisode()

	runFrames(t, env, 60)

	if value := peek(t, env, testrom.CounterAddress); value != 60 {
		t.Errorf("Expected counter 60, got %d", value)
	}
	if n := frames(t, env); n != 60 {
		t.Errorf("Expected 60 frames, got %d", n)
	}
}

func TestStartEpisode_ShouldBeRepeatable(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter())
	env.StartEpisode()
	runFrames(t, env, 25)

	if err := env.StartEpisode(); err != nil {
		t.Fatalf("StartEpisode: %v", err)
	}
	if value := peek(t, env, testrom.CounterAddress); value != 0 {
		t.Errorf("Expected counter reset, got %d", value)
	}
	if n := frames(t, env); n != 0 {
		t.Errorf("Expected frame count reset, got %d", n)
	}

	runFrames(t, env, 60)
	if value := peek(t, env, testrom.CounterAddress); value != 60 {
		t.Errorf("Expected counter 60 in the second episode, got %d", value)
	}
}

func TestDeterminism_TwoSessionsMatch(t *testing.T) {
	a := newTestEnvironment(t, testrom.JoypadEcho())
	b := newTestEnvironment(t, testrom.JoypadEcho())
	a.StartEpisode()
	b.StartEpisode()

	for frame := 0; frame < 30; frame++ {
		key := Keys[frame%len(Keys)]
		pressed := frame%2 == 0
		a.SetKeyState(key, pressed)
		b.SetKeyState(key, pressed)
		runFrames(t, a, 1)
		runFrames(t, b, 1)

		pa, _ := a.Pixels()
		pb, _ := b.Pixels()
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("Frame %d: pixel %d differs", frame, i)
			}
		}
		if peek(t, a, testrom.EchoAddress) != peek(t, b, testrom.EchoAddress) {
			t.Fatalf("Frame %d: joypad state differs", frame)
		}
	}
}

func TestSetKeyState_DownRoundTrip(t *testing.T) {
	env := newTestEnvironment(t, testrom.JoypadEcho())
	env.StartEpisode()

	env.SetKeyState(Down, true)
	runFrames(t, env, 1)
	if value := peek(t, env, testrom.EchoAddress); value&0x0F != 0x07 {
		t.Errorf("Expected only Down low, got P1 0x%02X", value)
	}

	env.SetKeyState(Down, false)
	runFrames(t, env, 1)
	if value := peek(t, env, testrom.EchoAddress); value&0x0F != 0x0F {
		t.Errorf("Expected all lines high, got P1 0x%02X", value)
	}
}

func TestSetKeyState_ShouldRejectInvalidKey(t *testing.T) {
	env := newTestEnvironment(t, testrom.JoypadEcho())
	env.StartEpisode()

	for _, k := range []Key{-1, 8} {
		if err := env.SetKeyState(k, true); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Key %d: expected ErrInvalidKey, got %v", int(k), err)
		}
	}
}

func TestKeys_ShouldKeepBoundaryValues(t *testing.T) {
	names := []string{"Up", "Down", "Left", "Right", "B", "A", "Select", "Start"}
	for i, name := range names {
		k, err := ParseKey(name)
		if err != nil || int(k) != i {
			t.Errorf("%s: expected %d, got %d (%v)", name, i, int(k), err)
		}
	}
	if _, err := ParseKey("turbo"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestRunFrame_StallClearsRunning(t *testing.T) {
	env := newTestEnvironment(t, testrom.Stall())
	env.StartEpisode()

	if err := env.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if env.IsRunning() {
		t.Fatal("Expected stall to clear the running flag")
	}

	before := frames(t, env)
	if err := env.RunFrame(); err != nil {
		t.Errorf("RunFrame after stall should be a no-op, got %v", err)
	}
	if frames(t, env) != before {
		t.Error("RunFrame after stall advanced the episode")
	}

	// A new episode runs again until the next stall
	env.StartEpisode()
	if !env.IsRunning() {
		t.Error("StartEpisode should restore the running flag")
	}
}

func TestScoreAndLines_ShouldUseProfile(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter(), withProfile(counterProfile()))
	env.StartEpisode()
	runFrames(t, env, 12)

	score, err := env.Score()
	if err != nil || score != 12 {
		t.Errorf("Expected score 12, got %d (%v)", score, err)
	}
	lines, err := env.Lines()
	if err != nil || lines != 12 {
		t.Errorf("Expected lines 12, got %d (%v)", lines, err)
	}

	view, err := env.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view != (gamestate.View{Score: 12, Lines: 12}) {
		t.Errorf("View = %+v, want score and lines 12", view)
	}
}

func TestProfile_ShouldReportMatchedProfile(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter(), withProfile(counterProfile()))

	profile, err := env.Profile()
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Name != "counter" {
		t.Errorf("Profile = %q, want counter", profile.Name)
	}
}

func TestScore_WithoutProfileFails(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter())
	env.StartEpisode()

	if _, err := env.Score(); !errors.Is(err, gamestate.ErrNoProfile) {
		t.Errorf("Expected ErrNoProfile, got %v", err)
	}
	if _, err := env.View(); !errors.Is(err, gamestate.ErrNoProfile) {
		t.Errorf("View: expected ErrNoProfile, got %v", err)
	}
}

func TestStartEpisodeSeed_ShouldRunStartSequence(t *testing.T) {
	profile := counterProfile()
	profile.Start = []gamestate.Step{
		{Frames: 5},
		{Buttons: []string{"Start"}, Frames: 1, Seeded: true},
	}
	profile.SeedSpread = 10

	env := newTestEnvironment(t, testrom.FrameCounter(), withProfile(profile))

	env.StartEpisodeSeed(13)
	if value := peek(t, env, testrom.CounterAddress); value != 9 {
		t.Errorf("Expected 5+3+1 start frames, counter=%d", value)
	}
	if n := frames(t, env); n != 0 {
		t.Errorf("Start sequence frames should not count, got %d", n)
	}

	env.StartEpisode()
	if value := peek(t, env, testrom.CounterAddress); value != 6 {
		t.Errorf("Expected 6 start frames with seed 0, counter=%d", value)
	}
}

func TestRunFrame_GameOverClearsRunning(t *testing.T) {
	profile := counterProfile()
	state := uint16(testrom.CounterAddress)
	profile.GameState = &state
	profile.GameOver = []uint8{3}

	env := newTestEnvironment(t, testrom.FrameCounter(), withProfile(profile))
	env.StartEpisode()

	runFrames(t, env, 5)

	if env.IsRunning() {
		t.Error("Expected game over to end the episode")
	}
	if n := frames(t, env); n != 3 {
		t.Errorf("Expected the episode to end at frame 3, got %d", n)
	}
}

func TestPixels_ShouldUseRGBALayout(t *testing.T) {
	env := newTestEnvironment(t, testrom.FrameCounter(), WithPalette(ppu.GreenPalette))
	env.StartEpisode()
	runFrames(t, env, 1)

	pixels, err := env.Pixels()
	if err != nil {
		t.Fatal(err)
	}
	if len(pixels) != Width*Height {
		t.Fatalf("Expected %d pixels, got %d", Width*Height, len(pixels))
	}

	raw, err := env.PixelsRGBA()
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{0x9B, 0xBC, 0x0F, 0xFF}
	for i, b := range expected {
		if raw[i] != b {
			t.Fatalf("Byte %d: expected 0x%02X, got 0x%02X", i, b, raw[i])
		}
	}

	img, err := env.Image()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != Width || img.Bounds().Dy() != Height {
		t.Errorf("Unexpected image bounds %v", img.Bounds())
	}
	r, g, b, a := img.At(Width-1, Height-1).RGBA()
	if r>>8 != 0x9B || g>>8 != 0xBC || b>>8 != 0x0F || a>>8 != 0xFF {
		t.Errorf("Unexpected corner colour %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

// TestTargetCartridge_DownMovesPiece needs the real cartridge image, which
// is not part of the repository.
func TestTargetCartridge_DownMovesPiece(t *testing.T) {
	path := os.Getenv("TETRISENV_ROM")
	if path == "" {
		t.Skip("TETRISENV_ROM not set")
	}

	env, err := Initialize(path)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer env.Destroy()
	if err := env.StartEpisode(); err != nil {
		t.Fatal(err)
	}

	score0, _ := env.Score()
	lines0, _ := env.Lines()
	top0 := pieceTop(t, env)

	env.SetKeyState(Down, true)
	runFrames(t, env, 10)
	env.SetKeyState(Down, false)

	if top := pieceTop(t, env); top <= top0 {
		t.Errorf("Expected the piece to move down from row %d, now at %d", top0, top)
	}
	score, _ := env.Score()
	lines, _ := env.Lines()
	if score != score0 || lines != lines0 {
		t.Errorf("Score/lines changed: %d/%d -> %d/%d", score0, lines0, score, lines)
	}
}

// pieceTop returns the first pixel row in the playfield that is not the
// lightest shade.
func pieceTop(t *testing.T, env *Environment) int {
	t.Helper()
	pixels, err := env.Pixels()
	if err != nil {
		t.Fatal(err)
	}
	background := ppu.GreyPalette[0]
	for y := 0; y < Height; y++ {
		for x := 16; x < 96; x++ {
			if pixels[y*Width+x] != background {
				return y
			}
		}
	}
	return Height
}
