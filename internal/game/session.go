// internal/game/session.go
//
// Session bookkeeping for one attempt at a puzzle: timing, mistake and
// hint counters, pause accounting, and the terminal result snapshot
// handed to the statistics sink.

package game

import "time"

// Session tracks one attempt at a puzzle. The zero value of StartTime
// means the player has not interacted yet; timing starts on the first
// input or hint, not at puzzle load.
type Session struct {
	StartTime    time.Time     `json:"startTime,omitempty"`
	EndTime      time.Time     `json:"endTime,omitempty"`
	MistakeCount int           `json:"mistakeCount"`
	HintCount    int           `json:"hintCount"`
	IsComplete   bool          `json:"isComplete"`
	IsFailed     bool          `json:"isFailed"`
	IsPaused     bool          `json:"isPaused"`
	PausedAt     time.Time     `json:"pausedAt,omitempty"`
	TotalPaused  time.Duration `json:"totalPaused"`
}

// Started reports whether the player has interacted with the puzzle.
func (s Session) Started() bool { return !s.StartTime.IsZero() }

// Terminal reports whether the session reached a final state.
func (s Session) Terminal() bool { return s.IsComplete || s.IsFailed }

// Elapsed computes play time as of now, excluding paused stretches.
// Computed on read; the engine runs no timers.
func (s Session) Elapsed(now time.Time) time.Duration {
	if !s.Started() {
		return 0
	}
	end := now
	if !s.EndTime.IsZero() {
		end = s.EndTime
	}
	d := end.Sub(s.StartTime) - s.TotalPaused
	if s.IsPaused && !s.PausedAt.IsZero() {
		d -= end.Sub(s.PausedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// Result is the terminal snapshot emitted once per completed or failed
// session, consumed by the progress/statistics collaborator.
type Result struct {
	PuzzleID  string `json:"puzzleId"`
	Completed bool   `json:"completed"`
	Mistakes  int    `json:"mistakes"`
	Hints     int    `json:"hints"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// ResultSink receives terminal results. Implementations may persist them;
// delivery is immediate and never retried.
type ResultSink interface {
	RecordResult(r Result)
}
