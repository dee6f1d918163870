// Package-level tick driver for the day-based simulation loop.
package engine

import (
	"log/slog"
	"time"
)

// DaysPerWeek is how many day ticks make a policy week.
const DaysPerWeek = 7

// Engine drives the simulation forward one day at a time.
type Engine struct {
	Day      uint64        // Current day counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = one day per Interval, 0 = paused
	Interval time.Duration // Base day interval (default 1 second)
	Running  bool

	// Callbacks for each tick layer — populated during setup.
	OnDay  func(day uint64) // Every day
	OnWeek func(day uint64) // Every 7 days
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the paced simulation loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "day", e.Day, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "day", e.Day)
}

// RunDays advances the simulation n days synchronously, with no pacing.
// Used by the CLI's batch mode.
func (e *Engine) RunDays(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// Stop halts the paced loop after the current day completes.
func (e *Engine) Stop() {
	e.Running = false
}

func (e *Engine) step() {
	e.Day++
	if e.OnDay != nil {
		e.OnDay(e.Day)
	}
	if e.Day%DaysPerWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Day)
	}
}
