// internal/cipher/cell.go
//
// Core type definitions for the cryptogram cell model.
// Defines:
//   - Scheme: how the puzzle is encoded (letter or number substitution).
//   - Cell: one position in the rendered puzzle grid.
//   - Input: the raw puzzle pair consumed by Align.

package cipher

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Scheme selects the substitution alphabet used by a puzzle.
// Possible values:
//   - "letters": each ciphertext letter stands for one plaintext letter.
//   - "numbers": whitespace-delimited numbers stand for plaintext letters.
type Scheme string

const (
	SchemeLetters Scheme = "letters"
	SchemeNumbers Scheme = "numbers"
)

// Valid reports whether s is a known scheme.
func (s Scheme) Valid() bool { return s == SchemeLetters || s == SchemeNumbers }

// Cell is the smallest addressable unit of a puzzle: one encoded token
// paired with the plaintext letter it must resolve to, or a fixed symbol
// (space/punctuation) that is never editable.
type Cell struct {
	ID           string `json:"id"`                     // stable, derived from puzzle+position+content
	Position     int    `json:"position"`               // 0-based, contiguous
	EncodedToken string `json:"encodedToken"`           // letter, number string, or literal symbol
	SolutionChar string `json:"solutionChar,omitempty"` // uppercase plaintext letter; empty for symbols
	IsSymbol     bool   `json:"isSymbol"`
	UserInput    string `json:"userInput,omitempty"` // player's current guess, 0 or 1 character
	IsRevealed   bool   `json:"isRevealed,omitempty"`
	IsPreFilled  bool   `json:"isPreFilled,omitempty"`
	IsError      bool   `json:"isError,omitempty"`
}

// Solved reports whether the cell holds its own solution letter.
// Symbol cells are vacuously solved.
func (c Cell) Solved() bool {
	if c.IsSymbol {
		return true
	}
	return c.UserInput != "" && strings.EqualFold(c.UserInput, c.SolutionChar)
}

// Editable reports whether player input may change this cell.
// Hint-revealed and pre-filled cells are locked.
func (c Cell) Editable() bool {
	return !c.IsSymbol && !c.IsRevealed && !c.IsPreFilled
}

// Input is the raw puzzle pair consumed by Align.
type Input struct {
	EncodedText  string `json:"encodedText"`
	SolutionText string `json:"solutionText"`
	Scheme       Scheme `json:"scheme"`
	PuzzleID     string `json:"puzzleId"`
}

// cellID derives a stable identifier from the fields that define a cell's
// identity, so re-aligning the same puzzle yields identical ids.
func cellID(puzzleID string, position int, encodedToken, solutionChar string, isSymbol bool) string {
	h := sha256.New()
	h.Write([]byte(puzzleID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(position)))
	h.Write([]byte{0})
	h.Write([]byte(encodedToken))
	h.Write([]byte{0})
	h.Write([]byte(solutionChar))
	h.Write([]byte{0})
	if isSymbol {
		h.Write([]byte{1})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
