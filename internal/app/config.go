// Package app provides configuration management and the run loops of the
// tetrisenv command.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tetrisenv/internal/graphics"
	"tetrisenv/internal/ppu"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // screenshot and default window multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	VSync      bool    `json:"vsync"`
	Filter     string  `json:"filter"`  // "nearest", "linear"
	Backend    string  `json:"backend"` // "ebitengine", "headless", "terminal"
	Palette    string  `json:"palette"` // "grey", "green"
	Brightness float32 `json:"brightness"`
	Contrast   float32 `json:"contrast"`
	Saturation float32 `json:"saturation"`
}

// InputConfig contains input configuration
type InputConfig struct {
	Keys KeyMapping `json:"keys"`
}

// KeyMapping maps each joypad button to a keyboard key name
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	BootROM      string  `json:"boot_rom"`      // optional 256-byte boot ROM image
	Seed         uint64  `json:"seed"`          // seed of the first episode
	Frames       int     `json:"frames"`        // frames per headless run
	FrameRate    float64 `json:"frame_rate"`    // pace of the interactive viewers
	ProfilesPath string  `json:"profiles_path"` // JSON profile table replacing the built-in one
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	ShowFPS       bool   `json:"show_fps"`
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO"
	CPUTracing    bool   `json:"cpu_tracing"`
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	Screenshots string `json:"screenshots"`
	Logs        string `json:"logs"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      640,
			Height:     594, // 160x144 * 4 plus the status bar
			Fullscreen: false,
			Scale:      4,
		},
		Video: VideoConfig{
			VSync:      true,
			Filter:     "nearest",
			Backend:    string(graphics.BackendHeadless),
			Palette:    "grey",
			Brightness: 1.0,
			Contrast:   1.0,
			Saturation: 1.0,
		},
		Input: InputConfig{
			Keys: KeyMapping{
				Up:     "Up",
				Down:   "Down",
				Left:   "Left",
				Right:  "Right",
				A:      "X",
				B:      "Z",
				Start:  "Enter",
				Select: "Backspace",
			},
		},
		Emulation: EmulationConfig{
			Frames:    600,
			FrameRate: 60.0,
		},
		Debug: DebugConfig{
			ShowFPS:       false,
			EnableLogging: true,
			LogLevel:      "INFO",
			CPUTracing:    false,
		},
		Paths: PathsConfig{
			Screenshots: "./screenshots",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}
	return c.SaveToFile(c.configPath)
}

// validate rejects values that cannot be used and resets out-of-range
// tuning values to their defaults
func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ConfigError{Field: "window", Value: fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			Err: fmt.Errorf("invalid window dimensions")}
	}
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendHeadless, graphics.BackendTerminal:
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: fmt.Errorf("unknown backend")}
	}
	if _, ok := ppu.PaletteByName(c.Video.Palette); !ok {
		return &ConfigError{Field: "video.palette", Value: c.Video.Palette, Err: fmt.Errorf("unknown palette")}
	}
	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		c.Video.Filter = "nearest"
	}
	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}
	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}
	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if _, err := c.KeyMap(); err != nil {
		return err
	}

	if c.Emulation.Frames < 0 {
		return &ConfigError{Field: "emulation.frames", Value: c.Emulation.Frames, Err: fmt.Errorf("negative frame count")}
	}
	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60.0
	}

	switch strings.ToUpper(c.Debug.LogLevel) {
	case "DEBUG", "INFO":
	default:
		c.Debug.LogLevel = "INFO"
	}
	return nil
}

// KeyMap resolves the key names of the input section
func (c *Config) KeyMap() (map[graphics.Key]graphics.Button, error) {
	k := c.Input.Keys
	bindings := []struct {
		field  string
		name   string
		button graphics.Button
	}{
		{"up", k.Up, graphics.ButtonUp},
		{"down", k.Down, graphics.ButtonDown},
		{"left", k.Left, graphics.ButtonLeft},
		{"right", k.Right, graphics.ButtonRight},
		{"a", k.A, graphics.ButtonA},
		{"b", k.B, graphics.ButtonB},
		{"start", k.Start, graphics.ButtonStart},
		{"select", k.Select, graphics.ButtonSelect},
	}

	keyMap := make(map[graphics.Key]graphics.Button, len(bindings))
	for _, b := range bindings {
		key, err := graphics.ParseKey(b.name)
		if err != nil {
			return nil, &ConfigError{Field: "input.keys." + b.field, Value: b.name, Err: err}
		}
		if other, taken := keyMap[key]; taken {
			return nil, &ConfigError{Field: "input.keys." + b.field, Value: b.name,
				Err: fmt.Errorf("key already bound to %s", other)}
		}
		keyMap[key] = b.button
	}
	return keyMap, nil
}

// Palette returns the configured output palette
func (c *Config) Palette() ppu.Palette {
	palette, _ := ppu.PaletteByName(c.Video.Palette)
	return palette
}

// IsDebug reports whether component debug logging is requested
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.Debug.LogLevel, "DEBUG")
}

// createDirectories creates required directories
func (c *Config) createDirectories() error {
	for _, dir := range []string{c.Paths.Screenshots, c.Paths.Logs} {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// GetScreenResolution returns the native LCD resolution
func (c *Config) GetScreenResolution() (int, int) {
	return graphics.FrameWidth, graphics.FrameHeight
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	w, h := c.GetScreenResolution()
	return w * c.Window.Scale, h * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded
	return clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/tetrisenv.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
