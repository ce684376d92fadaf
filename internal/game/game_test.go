package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rohanluthra13/cryptogram-sub001/internal/cipher"
)

// fakeClock is a manually advanced clock for deterministic timing tests.
type fakeClock struct {
	t time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}
func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// captureSink records terminal results for assertions.
type captureSink struct {
	results []Result
}

func (s *captureSink) RecordResult(r Result) { s.results = append(s.results, r) }

// newTestGame builds a deterministic expert-mode game (no pre-fills) over
// encoded "AB CD" / solution "HI, JK": cells H I , ␠ J K.
func newTestGame(t *testing.T, clk *fakeClock) *Game {
	t.Helper()
	g, err := NewWithClock(
		cipher.Input{EncodedText: "AB CD", SolutionText: "HI, JK", Scheme: cipher.SchemeLetters, PuzzleID: "t1"},
		DifficultyConfig{Mode: ModeExpert, MaxMistakes: 3},
		clk.Now,
		rand.New(rand.NewSource(1)),
	)
	if err != nil {
		t.Fatalf("NewWithClock failed: %v", err)
	}
	return g
}

func TestAlignmentErrorPropagates(t *testing.T) {
	_, err := New(
		cipher.Input{EncodedText: "ABCDEF", SolutionText: "HI", Scheme: cipher.SchemeLetters, PuzzleID: "bad"},
		DefaultConfig(),
	)
	if err == nil {
		t.Fatal("want alignment error, got nil")
	}
}

func TestInputCorrectAdvancesCursor(t *testing.T) {
	g := newTestGame(t, newClock())
	if g.Cursor() != 0 {
		t.Fatalf("initial cursor = %d, want 0", g.Cursor())
	}
	g.InputLetter(0, "h")
	cells := g.Cells()
	if cells[0].UserInput != "H" || cells[0].IsError {
		t.Fatalf("cell 0 = %+v", cells[0])
	}
	if g.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", g.Cursor())
	}
	// Advancing from cell 1 must skip the comma and space symbols.
	g.InputLetter(1, "I")
	if g.Cursor() != 4 {
		t.Fatalf("cursor = %d, want 4 (symbols skipped)", g.Cursor())
	}
}

func TestInputWrongCountsMistake(t *testing.T) {
	g := newTestGame(t, newClock())
	g.InputLetter(0, "Z")
	cells := g.Cells()
	if !cells[0].IsError || cells[0].UserInput != "Z" {
		t.Fatalf("cell 0 = %+v", cells[0])
	}
	if got := g.Session().MistakeCount; got != 1 {
		t.Fatalf("mistakes = %d, want 1", got)
	}
	// Cursor stays put on a wrong guess.
	if g.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", g.Cursor())
	}
}

func TestInputNoOps(t *testing.T) {
	g := newTestGame(t, newClock())
	g.InputLetter(-1, "A")
	g.InputLetter(99, "A")
	g.InputLetter(2, "A")  // symbol cell
	g.InputLetter(0, "!")  // not a letter/digit
	g.InputLetter(0, "ab") // more than one character
	if s := g.Session(); s.MistakeCount != 0 || s.Started() {
		t.Fatalf("no-ops mutated session: %+v", s)
	}
	for i, c := range g.Cells() {
		if c.UserInput != "" {
			t.Fatalf("cell %d mutated: %+v", i, c)
		}
	}
}

func TestFailureAfterMaxMistakes(t *testing.T) {
	clk := newClock()
	g := newTestGame(t, clk)
	sink := &captureSink{}
	g.SetResultSink(sink)

	g.InputLetter(0, "X")
	g.InputLetter(1, "Y")
	if g.IsFailed() {
		t.Fatal("failed too early")
	}
	g.InputLetter(4, "Z")
	if !g.IsFailed() {
		t.Fatal("not failed after 3 mistakes")
	}
	if g.Session().EndTime.IsZero() {
		t.Fatal("end time not set on failure")
	}

	// Board is frozen until the caller clears the failure state.
	g.InputLetter(5, "K")
	if g.Cells()[5].UserInput != "" {
		t.Fatal("input accepted after failure")
	}
	g.HandleDelete(0)
	if g.Cells()[0].UserInput == "" {
		t.Fatal("delete accepted after failure")
	}

	if len(sink.results) != 1 {
		t.Fatalf("got %d results, want 1", len(sink.results))
	}
	if r := sink.results[0]; r.Completed || r.Mistakes != 3 || r.PuzzleID != "t1" {
		t.Fatalf("result = %+v", r)
	}
}

func TestClearFailureStateAllowsContinuation(t *testing.T) {
	g := newTestGame(t, newClock())
	sink := &captureSink{}
	g.SetResultSink(sink)
	for _, ch := range []string{"X", "Y", "Z"} {
		g.InputLetter(0, ch)
	}
	if !g.IsFailed() {
		t.Fatal("not failed")
	}
	g.ClearFailureState()
	if g.IsFailed() || !g.Session().EndTime.IsZero() {
		t.Fatalf("failure state not cleared: %+v", g.Session())
	}

	for i, ch := range []string{"H", "I", "", "", "J", "K"} {
		if ch != "" {
			g.InputLetter(i, ch)
		}
	}
	if !g.IsComplete() {
		t.Fatal("not complete after solving past failure")
	}
	// Failure result plus the later completion result.
	if len(sink.results) != 2 {
		t.Fatalf("got %d results, want 2", len(sink.results))
	}
	if !sink.results[1].Completed {
		t.Fatalf("second result = %+v", sink.results[1])
	}
}

func TestCompletionSetsTerminalStateOnce(t *testing.T) {
	clk := newClock()
	g := newTestGame(t, clk)
	sink := &captureSink{}
	g.SetResultSink(sink)

	g.InputLetter(0, "H")
	g.InputLetter(1, "I")
	g.InputLetter(4, "J")
	if g.IsComplete() {
		t.Fatal("complete too early")
	}
	g.InputLetter(5, "K")
	if !g.IsComplete() {
		t.Fatal("not complete")
	}
	end := g.Session().EndTime
	if end.IsZero() {
		t.Fatal("end time not set")
	}

	// Further operations are no-ops and do not re-emit.
	g.InputLetter(0, "Z")
	g.RevealHint()
	if len(sink.results) != 1 {
		t.Fatalf("got %d results, want 1", len(sink.results))
	}
	if r := sink.results[0]; !r.Completed || r.Mistakes != 0 || r.Hints != 0 {
		t.Fatalf("result = %+v", r)
	}
}

func TestDeleteClearsInputNotMistakes(t *testing.T) {
	g := newTestGame(t, newClock())
	g.InputLetter(0, "Z")
	g.HandleDelete(0)
	cells := g.Cells()
	if cells[0].UserInput != "" || cells[0].IsError {
		t.Fatalf("cell 0 = %+v", cells[0])
	}
	if g.Session().MistakeCount != 1 {
		t.Fatalf("mistakes = %d, want 1 (delete must not touch the count)", g.Session().MistakeCount)
	}
	// Deleting a symbol cell is a no-op, not a panic.
	g.HandleDelete(2)
}

func TestRevealHint(t *testing.T) {
	g := newTestGame(t, newClock())
	g.RevealHint()
	s := g.Session()
	if s.HintCount != 1 {
		t.Fatalf("hints = %d, want 1", s.HintCount)
	}
	if !s.Started() {
		t.Fatal("hint must start the session clock")
	}
	revealed := 0
	for _, c := range g.Cells() {
		if c.IsRevealed {
			revealed++
			if c.UserInput != c.SolutionChar || c.IsError {
				t.Fatalf("revealed cell = %+v", c)
			}
		}
	}
	if revealed != 1 {
		t.Fatalf("revealed %d cells, want 1", revealed)
	}

	// Revealed cells are locked against input and delete.
	for i, c := range g.Cells() {
		if !c.IsRevealed {
			continue
		}
		g.InputLetter(i, "Z")
		g.HandleDelete(i)
		if got := g.Cells()[i]; got.UserInput != got.SolutionChar {
			t.Fatalf("revealed cell %d mutated: %+v", i, got)
		}
	}

	// Revealing everything completes the puzzle and then no-ops.
	for i := 0; i < 8; i++ {
		g.RevealHint()
	}
	if !g.IsComplete() {
		t.Fatal("not complete after revealing all cells")
	}
	if got := g.Session().HintCount; got != 4 {
		t.Fatalf("hints = %d, want 4 (one per letter cell)", got)
	}
}

func TestPrefillCounts(t *testing.T) {
	// 10 unique solution letters at fraction 0.20 → exactly 2 letters
	// pre-filled, one occurrence each.
	g, err := NewWithClock(
		cipher.Input{
			EncodedText:  "QWERTYUIOP ASD",
			SolutionText: "ABCDEFGHIJ ABC",
			Scheme:       cipher.SchemeLetters,
			PuzzleID:     "prefill",
		},
		DifficultyConfig{Mode: ModeNormal, PrefillFraction: 0.20, MaxMistakes: 3},
		newClock().Now,
		rand.New(rand.NewSource(7)),
	)
	if err != nil {
		t.Fatalf("NewWithClock failed: %v", err)
	}

	byLetter := map[string]int{}
	for _, c := range g.Cells() {
		if c.IsPreFilled {
			if c.UserInput != c.SolutionChar {
				t.Fatalf("pre-filled cell = %+v", c)
			}
			byLetter[c.SolutionChar]++
		}
	}
	if len(byLetter) != 2 {
		t.Fatalf("pre-filled %d unique letters, want 2", len(byLetter))
	}
	for l, n := range byLetter {
		if n != 1 {
			t.Fatalf("letter %s pre-filled %d times, want 1", l, n)
		}
	}
	// Session clock does not start on pre-fill.
	if g.Session().Started() {
		t.Fatal("prefill started the session")
	}
}

func TestExpertModeHasNoPrefill(t *testing.T) {
	g := newTestGame(t, newClock())
	for _, c := range g.Cells() {
		if c.IsPreFilled {
			t.Fatalf("expert mode pre-filled %+v", c)
		}
	}
}

func TestResetIsStructurallyIdempotent(t *testing.T) {
	clk := newClock()
	g, err := NewWithClock(
		cipher.Input{EncodedText: "AB CD", SolutionText: "HI, JK", Scheme: cipher.SchemeLetters, PuzzleID: "r1"},
		DefaultConfig(),
		clk.Now,
		rand.New(rand.NewSource(3)),
	)
	if err != nil {
		t.Fatalf("NewWithClock failed: %v", err)
	}
	g.InputLetter(0, "H")
	g.RevealHint()

	before := g.Cells()
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	after := g.Cells()
	if len(before) != len(after) {
		t.Fatalf("cell count changed on reset: %d vs %d", len(before), len(after))
	}
	for i := range after {
		if after[i].ID != before[i].ID {
			t.Fatalf("cell %d id changed on reset", i)
		}
		if after[i].IsRevealed || after[i].IsError {
			t.Fatalf("cell %d kept progress across reset: %+v", i, after[i])
		}
	}
	if s := g.Session(); s.Started() || s.HintCount != 0 {
		t.Fatalf("session survived reset: %+v", s)
	}
}

func TestPauseExcludedFromElapsed(t *testing.T) {
	clk := newClock()
	g := newTestGame(t, clk)

	// Pause before start is a no-op.
	g.TogglePause()
	if g.Session().IsPaused {
		t.Fatal("paused before first interaction")
	}

	g.InputLetter(0, "H")
	clk.Advance(10 * time.Second)
	g.TogglePause()
	clk.Advance(5 * time.Second)
	if got := g.Elapsed(); got != 10*time.Second {
		t.Fatalf("elapsed while paused = %v, want 10s", got)
	}
	g.TogglePause()
	clk.Advance(2 * time.Second)
	if got := g.Elapsed(); got != 12*time.Second {
		t.Fatalf("elapsed after resume = %v, want 12s", got)
	}
	if got := g.Session().TotalPaused; got != 5*time.Second {
		t.Fatalf("total paused = %v, want 5s", got)
	}
}

func TestSelectCellAndManualNavigation(t *testing.T) {
	g := newTestGame(t, newClock())
	g.SelectCell(4)
	if g.Cursor() != 4 {
		t.Fatalf("cursor = %d, want 4", g.Cursor())
	}
	g.SelectCell(2) // symbol → no-op
	if g.Cursor() != 4 {
		t.Fatalf("cursor moved to symbol cell: %d", g.Cursor())
	}
	g.SelectCell(99)
	if g.Cursor() != 4 {
		t.Fatalf("cursor moved out of range: %d", g.Cursor())
	}

	// Manual navigation skips the same symbols auto-advance skips.
	g.MoveCursor(-1)
	if g.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", g.Cursor())
	}
	g.MoveCursor(-1)
	g.MoveCursor(-1) // at the left edge, stays put
	if g.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", g.Cursor())
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	clk := newClock()
	g := newTestGame(t, clk)
	g.InputLetter(0, "H")
	g.InputLetter(1, "X")
	clk.Advance(3 * time.Second)

	cells, sess := g.Cells(), g.Session()

	g2 := newTestGame(t, clk)
	g2.Restore(cells, sess)
	if got := g2.Session().MistakeCount; got != 1 {
		t.Fatalf("mistakes after restore = %d, want 1", got)
	}
	if got := g2.Cells()[0].UserInput; got != "H" {
		t.Fatalf("cell 0 input after restore = %q", got)
	}
	if got := g2.Elapsed(); got != 3*time.Second {
		t.Fatalf("elapsed after restore = %v, want 3s", got)
	}

	// Restoring a terminal session must not re-emit its result.
	g.ClearFailureState()
	g.InputLetter(1, "I")
	g.InputLetter(4, "J")
	g.InputLetter(5, "K")
	if !g.IsComplete() {
		t.Fatal("not complete")
	}
	sink := &captureSink{}
	g3 := newTestGame(t, clk)
	g3.SetResultSink(sink)
	g3.Restore(g.Cells(), g.Session())
	g3.InputLetter(0, "Z")
	if len(sink.results) != 0 {
		t.Fatalf("restore re-emitted %d results", len(sink.results))
	}
}

func TestSymbolCellsStayInert(t *testing.T) {
	g := newTestGame(t, newClock())
	for i, c := range g.Cells() {
		if !c.IsSymbol {
			continue
		}
		g.InputLetter(i, "A")
		g.HandleDelete(i)
		got := g.Cells()[i]
		if got.UserInput != "" || got.SolutionChar != "" {
			t.Fatalf("symbol cell %d mutated: %+v", i, got)
		}
	}
}
