// internal/game/game.go
//
// Game state machine for a single cryptogram session.
// Responsibilities:
//   - Own the live cell array and session (sole owner; collaborators get
//     read-only copies).
//   - Process input/delete/hint/select/pause events.
//   - Apply difficulty pre-fills at puzzle start.
//   - Evaluate mistakes, completion, and failure.
//
// Notes:
//   - Invalid indices and operations on locked cells are silent no-ops:
//     they represent races between UI events and fast-changing state, not
//     programmer errors.
//   - Alignment errors are the one hard failure, surfaced at construction.
//   - Validation is per-cell (userInput == solutionChar); one guess does
//     not propagate to other cells sharing the same encoded token.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	mrand "math/rand"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rohanluthra13/cryptogram-sub001/internal/cipher"
)

// Game holds all state for one cryptogram being played.
type Game struct {
	ID string

	input cipher.Input // kept so Reset can re-run alignment
	cfg   DifficultyConfig

	cells  []cipher.Cell
	sess   Session
	cursor int

	resultSent bool
	sink       ResultSink

	now func() time.Time
	rng *mrand.Rand
}

// New constructs a game: runs the alignment engine, applies difficulty
// pre-fills, and starts a fresh session. The only error is a content
// (alignment) error.
func New(in cipher.Input, cfg DifficultyConfig) (*Game, error) {
	seed := time.Now().UnixNano()
	return NewWithClock(in, cfg, time.Now, mrand.New(mrand.NewSource(seed)))
}

// NewWithClock is New with an injected clock and randomness source,
// used by tests to make prefill/hint selection and timing deterministic.
func NewWithClock(in cipher.Input, cfg DifficultyConfig, now func() time.Time, rng *mrand.Rand) (*Game, error) {
	g := &Game{
		ID:    randomID(),
		input: in,
		cfg:   cfg.normalized(),
		now:   now,
		rng:   rng,
	}
	if err := g.start(); err != nil {
		return nil, err
	}
	return g, nil
}

// SetResultSink registers the statistics collaborator. Terminal results
// are delivered to it immediately, once per terminal transition.
func (g *Game) SetResultSink(s ResultSink) { g.sink = s }

// start aligns the puzzle, applies pre-fills, and resets the session.
func (g *Game) start() error {
	cells, err := cipher.Align(g.input)
	if err != nil {
		return err
	}
	g.cells = cells
	g.sess = Session{}
	g.resultSent = false
	g.applyPrefill()
	g.cursor = g.firstEligible()
	return nil
}

// Reset discards all progress and rebuilds the puzzle from its input.
func (g *Game) Reset() error { return g.start() }

// Restore replaces live state with a persisted snapshot without re-running
// alignment, so a resumable session picks up exactly where it stopped.
func (g *Game) Restore(cells []cipher.Cell, sess Session) {
	g.cells = append([]cipher.Cell(nil), cells...)
	g.sess = sess
	// A restored terminal session already reported its result.
	g.resultSent = sess.Terminal()
	g.cursor = g.firstEligible()
}

// ---------------------------- accessors ------------------------------------

// Cells returns a copy of the cell array; callers cannot mutate engine state.
func (g *Game) Cells() []cipher.Cell { return append([]cipher.Cell(nil), g.cells...) }

// Session returns the current session snapshot.
func (g *Game) Session() Session { return g.sess }

// Cursor returns the index of the currently selected cell, or -1 when the
// puzzle has no selectable cells.
func (g *Game) Cursor() int { return g.cursor }

// IsComplete reports whether every letter cell holds its solution.
func (g *Game) IsComplete() bool { return g.sess.IsComplete }

// IsFailed reports whether the mistake limit was reached.
func (g *Game) IsFailed() bool { return g.sess.IsFailed }

// Scheme returns the encoding scheme of the underlying puzzle.
func (g *Game) Scheme() cipher.Scheme { return g.input.Scheme }

// PuzzleID returns the id of the underlying puzzle.
func (g *Game) PuzzleID() string { return g.input.PuzzleID }

// Config returns the difficulty configuration in effect.
func (g *Game) Config() DifficultyConfig { return g.cfg }

// Elapsed returns pause-adjusted play time as of the engine clock.
func (g *Game) Elapsed() time.Duration { return g.sess.Elapsed(g.now()) }

// ---------------------------- operations -----------------------------------

// SelectCell moves the cursor to index if it refers to a letter cell.
// Pure state change; never touches cell content.
func (g *Game) SelectCell(index int) {
	if index < 0 || index >= len(g.cells) || g.cells[index].IsSymbol {
		return
	}
	g.cursor = index
}

// InputLetter records a guess for the cell at index. No-op on invalid
// indices, symbol cells, locked (revealed/pre-filled) cells, terminal
// sessions, and unusable characters. A wrong guess counts a mistake and
// may end the game; a correct guess advances the cursor and may complete
// it.
func (g *Game) InputLetter(index int, char string) {
	if g.sess.Terminal() {
		return
	}
	if index < 0 || index >= len(g.cells) {
		return
	}
	cell := &g.cells[index]
	if !cell.Editable() {
		return
	}
	guess, ok := normalizeGuess(char)
	if !ok {
		return
	}

	g.touch()
	cell.UserInput = guess
	if strings.EqualFold(guess, cell.SolutionChar) {
		cell.IsError = false
		if next, ok := g.NextEligible(index, +1); ok {
			g.cursor = next
		}
		g.checkCompletion()
		return
	}

	cell.IsError = true
	g.sess.MistakeCount++
	if g.sess.MistakeCount >= g.cfg.MaxMistakes {
		g.fail()
	}
}

// HandleDelete clears the guess and error flag on an editable cell.
// Never affects the mistake count.
func (g *Game) HandleDelete(index int) {
	if g.sess.Terminal() {
		return
	}
	if index < 0 || index >= len(g.cells) {
		return
	}
	cell := &g.cells[index]
	if !cell.Editable() {
		return
	}
	cell.UserInput = ""
	cell.IsError = false
}

// RevealHint fills one random unsolved, unrevealed letter cell with its
// solution letter. Each occurrence of an encoded token is revealed
// independently. No-op when nothing is left to reveal.
func (g *Game) RevealHint() {
	if g.sess.Terminal() {
		return
	}
	var eligible []int
	for i, c := range g.cells {
		if c.IsSymbol || c.IsRevealed || c.Solved() {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return
	}

	g.touch()
	idx := eligible[g.rng.Intn(len(eligible))]
	cell := &g.cells[idx]
	cell.UserInput = cell.SolutionChar
	cell.IsRevealed = true
	cell.IsError = false
	g.sess.HintCount++
	if next, ok := g.NextEligible(idx, +1); ok {
		g.cursor = next
	}
	g.checkCompletion()
}

// TogglePause flips the pause flag once play has started. Paused time is
// excluded from elapsed-time computation.
func (g *Game) TogglePause() {
	if !g.sess.Started() || g.sess.Terminal() {
		return
	}
	if g.sess.IsPaused {
		g.sess.TotalPaused += g.now().Sub(g.sess.PausedAt)
		g.sess.PausedAt = time.Time{}
		g.sess.IsPaused = false
		return
	}
	g.sess.IsPaused = true
	g.sess.PausedAt = g.now()
}

// ClearFailureState lifts the failed flag so play can continue past the
// mistake limit ("keep playing" is the caller's decision, never automatic).
// A later completion reports a fresh terminal result.
func (g *Game) ClearFailureState() {
	if !g.sess.IsFailed {
		return
	}
	g.sess.IsFailed = false
	g.sess.EndTime = time.Time{}
	g.resultSent = false
}

// ---------------------------- internals ------------------------------------

// touch stamps the session start on the first interaction.
func (g *Game) touch() {
	if !g.sess.Started() {
		g.sess.StartTime = g.now()
	}
}

// fail transitions to the failed terminal state.
func (g *Game) fail() {
	g.sess.IsFailed = true
	if g.sess.EndTime.IsZero() {
		g.sess.EndTime = g.now()
	}
	g.emitResult()
}

// checkCompletion transitions to the completed terminal state when every
// letter cell holds its solution. Symbol cells never count.
func (g *Game) checkCompletion() {
	for _, c := range g.cells {
		if !c.Solved() {
			return
		}
	}
	if g.sess.IsComplete {
		return
	}
	g.sess.IsComplete = true
	if g.sess.EndTime.IsZero() {
		g.sess.EndTime = g.now()
	}
	g.emitResult()
}

// emitResult delivers the terminal snapshot to the sink, at most once per
// terminal transition.
func (g *Game) emitResult() {
	if g.resultSent {
		return
	}
	g.resultSent = true
	if g.sink == nil {
		return
	}
	g.sink.RecordResult(Result{
		PuzzleID:  g.input.PuzzleID,
		Completed: g.sess.IsComplete,
		Mistakes:  g.sess.MistakeCount,
		Hints:     g.sess.HintCount,
		ElapsedMs: g.sess.Elapsed(g.now()).Milliseconds(),
	})
}

// applyPrefill reveals max(1, ceil(unique*fraction)) distinct solution
// letters, one random occurrence each, in normal mode only.
func (g *Game) applyPrefill() {
	if g.cfg.Mode != ModeNormal {
		return
	}

	byLetter := make(map[string][]int)
	for i, c := range g.cells {
		if c.IsSymbol {
			continue
		}
		byLetter[c.SolutionChar] = append(byLetter[c.SolutionChar], i)
	}
	if len(byLetter) == 0 {
		return
	}

	letters := make([]string, 0, len(byLetter))
	for l := range byLetter {
		letters = append(letters, l)
	}
	sort.Strings(letters) // map order is random; sort so only rng decides
	g.rng.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })

	count := int(math.Ceil(float64(len(letters)) * g.cfg.PrefillFraction))
	if count < 1 {
		count = 1
	}
	if count > len(letters) {
		count = len(letters)
	}

	for _, l := range letters[:count] {
		occ := byLetter[l]
		idx := occ[g.rng.Intn(len(occ))]
		cell := &g.cells[idx]
		cell.IsPreFilled = true
		cell.UserInput = cell.SolutionChar
	}
}

// firstEligible returns the first letter-cell index, or -1.
func (g *Game) firstEligible() int {
	if next, ok := g.NextEligible(-1, +1); ok {
		return next
	}
	return -1
}

// normalizeGuess reduces raw input to a single uppercase letter or digit.
func normalizeGuess(char string) (string, bool) {
	runes := []rune(strings.TrimSpace(char))
	if len(runes) != 1 {
		return "", false
	}
	r := unicode.ToUpper(runes[0])
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return "", false
	}
	return string(r), true
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
