package app

import (
	"fmt"
	"sync"
	"time"

	"tetrisenv/environment"
)

// Emulator steps an environment one frame per Update and keeps timing
// statistics for the viewers
type Emulator struct {
	env *environment.Environment

	targetFrameTime time.Duration
	timingBuffer    *CircularTimingBuffer

	lastFrameTime time.Duration
	frameCount    uint64
	episodes      int
	seed          uint64
	isRunning     bool
	startTime     time.Time
}

// EmulatorStats is a snapshot of the emulator's counters
type EmulatorStats struct {
	FrameCount       uint64
	Episodes         int
	Seed             uint64
	LastFrameTime    time.Duration
	AverageFrameTime time.Duration
	FrameJitter      time.Duration
	Uptime           time.Duration
}

// NewEmulator wraps an initialized environment
func NewEmulator(env *environment.Environment, config *Config) *Emulator {
	frameRate := config.Emulation.FrameRate
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Emulator{
		env:             env,
		targetFrameTime: time.Duration(float64(time.Second) / frameRate),
		timingBuffer:    NewCircularTimingBuffer(120),
		seed:            config.Emulation.Seed,
		startTime:       time.Now(),
	}
}

// StartEpisode begins an episode with the current seed. Each later call
// moves to the next seed so repeated resets give different games.
func (e *Emulator) StartEpisode() error {
	if e.episodes > 0 {
		e.seed++
	}
	if err := e.env.StartEpisodeSeed(e.seed); err != nil {
		return fmt.Errorf("start episode: %w", err)
	}
	e.episodes++
	e.isRunning = true
	e.timingBuffer.Reset()
	return nil
}

// Update runs one frame if the episode is still going
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	start := time.Now()
	if err := e.env.RunFrame(); err != nil {
		return fmt.Errorf("frame execution error: %w", err)
	}
	e.lastFrameTime = time.Since(start)
	e.timingBuffer.Add(e.lastFrameTime)
	e.frameCount++

	if !e.env.IsRunning() {
		e.isRunning = false
	}
	return nil
}

// Stop stops stepping until the next StartEpisode
func (e *Emulator) Stop() {
	e.isRunning = false
}

// IsRunning returns whether Update advances the game
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// Environment returns the wrapped environment
func (e *Emulator) Environment() *environment.Environment {
	return e.env
}

// GetTargetFrameTime returns the frame period of the viewers
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// GetFrameCount returns the frames run over all episodes
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetStats returns the current counters
func (e *Emulator) GetStats() EmulatorStats {
	return EmulatorStats{
		FrameCount:       e.frameCount,
		Episodes:         e.episodes,
		Seed:             e.seed,
		LastFrameTime:    e.lastFrameTime,
		AverageFrameTime: e.timingBuffer.GetAverage(),
		FrameJitter:      e.timingBuffer.GetVariance(),
		Uptime:           time.Since(e.startTime),
	}
}

// CircularTimingBuffer keeps the most recent frame durations
type CircularTimingBuffer struct {
	mu       sync.RWMutex
	buffer   []time.Duration
	capacity int
	index    int
	size     int
}

// NewCircularTimingBuffer creates a new circular timing buffer
func NewCircularTimingBuffer(capacity int) *CircularTimingBuffer {
	return &CircularTimingBuffer{
		buffer:   make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add adds a timing measurement to the buffer
func (ctb *CircularTimingBuffer) Add(duration time.Duration) {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()

	ctb.buffer[ctb.index] = duration
	ctb.index = (ctb.index + 1) % ctb.capacity
	if ctb.size < ctb.capacity {
		ctb.size++
	}
}

// GetAverage calculates the average of stored durations
func (ctb *CircularTimingBuffer) GetAverage() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()
	return ctb.average()
}

func (ctb *CircularTimingBuffer) average() time.Duration {
	if ctb.size == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		total += ctb.buffer[i]
	}
	return total / time.Duration(ctb.size)
}

// GetVariance returns the mean absolute deviation of stored durations
func (ctb *CircularTimingBuffer) GetVariance() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()

	if ctb.size < 2 {
		return 0
	}
	avg := ctb.average()
	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		diff := ctb.buffer[i] - avg
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	return total / time.Duration(ctb.size)
}

// Reset clears the buffer
func (ctb *CircularTimingBuffer) Reset() {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()
	ctb.index = 0
	ctb.size = 0
}
