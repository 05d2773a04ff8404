// Package timer provides elapsed-time tracking for CLI activities.
//
// A [Timer] tracks both the total runtime since Start and the runtime of the
// current stage, so success notifications can report per-stage and overall
// timing.
package timer

import "time"

// Timer tracks total and per-stage elapsed time.
type Timer interface {
	// Start begins timing. It resets both the total and the stage clock.
	Start()
	// NewStage resets the stage clock while keeping the total clock running.
	NewStage()
	// GetTiming returns the elapsed total and current-stage durations.
	GetTiming() (time.Duration, time.Duration)
}

// New creates a Timer backed by the wall clock.
func New() Timer {
	return &stopwatch{}
}

type stopwatch struct {
	start      time.Time
	stageStart time.Time
}

func (s *stopwatch) Start() {
	now := time.Now()
	s.start = now
	s.stageStart = now
}

func (s *stopwatch) NewStage() {
	s.stageStart = time.Now()
}

func (s *stopwatch) GetTiming() (time.Duration, time.Duration) {
	if s.start.IsZero() {
		return 0, 0
	}

	return time.Since(s.start), time.Since(s.stageStart)
}
