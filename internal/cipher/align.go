// internal/cipher/align.go
//
// Alignment engine: reconciles an encoded ciphertext with its plaintext
// solution into one canonical cell sequence.
// Responsibilities:
//   - Pair encoded tokens with solution letters, in order.
//   - Re-derive symbol placement from the solution text, which is the only
//     string that reliably carries correct spacing/punctuation.
//   - Fail hard on malformed pairs (more encoded tokens than solution
//     letters, empty inputs) rather than emit a partially built puzzle.
//
// Notes:
//   - Letters scheme: every alphanumeric character of the encoded text is
//     one token; encoded punctuation is dropped and symbols are re-created
//     from the solution.
//   - Numbers scheme: tokens are whitespace-delimited; encoded punctuation
//     is kept verbatim and only word spacing is synthesized from the
//     solution.

package cipher

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Alignment errors. Any of these means the puzzle content is malformed and
// must not be played; they are load-time content errors, not gameplay errors.
var (
	ErrEmptyEncoded                = errors.New("cipher: encoded text is empty")
	ErrEmptySolution               = errors.New("cipher: solution text is empty")
	ErrInsufficientSolutionLetters = errors.New("cipher: encoded text has more tokens than solution has letters")
	ErrUnknownScheme               = errors.New("cipher: unknown scheme")
)

// Align converts an encoded/solution pair into the canonical cell sequence.
// Both texts are uppercase-normalized before comparison. The returned cells
// have dense positions 0..N-1 and deterministic ids.
func Align(in Input) ([]Cell, error) {
	if strings.TrimSpace(in.SolutionText) == "" {
		return nil, ErrEmptySolution
	}
	if strings.TrimSpace(in.EncodedText) == "" {
		return nil, ErrEmptyEncoded
	}

	encoded := strings.ToUpper(in.EncodedText)
	solution := strings.ToUpper(in.SolutionText)

	var cells []Cell
	var err error
	switch in.Scheme {
	case SchemeLetters:
		cells, err = alignLetters(encoded, solution)
	case SchemeNumbers:
		cells, err = alignNumbers(encoded, solution)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, in.Scheme)
	}
	if err != nil {
		return nil, err
	}

	// Reassign dense positions and derive ids after interleaving.
	for i := range cells {
		cells[i].Position = i
		cells[i].ID = cellID(in.PuzzleID, i, cells[i].EncodedToken, cells[i].SolutionChar, cells[i].IsSymbol)
	}
	return cells, nil
}

// alignLetters pairs each alphanumeric encoded character with the next
// solution letter, then walks the solution to interleave its symbols.
func alignLetters(encoded, solution string) ([]Cell, error) {
	var tokens []string
	for _, r := range encoded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			tokens = append(tokens, string(r))
		}
		// Non-alphanumeric encoded characters carry no information; drop them.
	}

	letterCount := 0
	for _, r := range solution {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if len(tokens) > letterCount {
		return nil, fmt.Errorf("%w: %d tokens, %d letters",
			ErrInsufficientSolutionLetters, len(tokens), letterCount)
	}

	// Walk the solution: letters consume paired tokens, everything else
	// becomes a symbol cell rendered exactly as it appears in the plaintext.
	// Once tokens run out, trailing symbols are kept up to the next
	// (unpaired) letter.
	cells := make([]Cell, 0, len(solution))
	next := 0
	for _, r := range solution {
		if unicode.IsLetter(r) {
			if next >= len(tokens) {
				break
			}
			cells = append(cells, Cell{
				EncodedToken: tokens[next],
				SolutionChar: string(r),
			})
			next++
			continue
		}
		cells = append(cells, Cell{
			EncodedToken: string(r),
			IsSymbol:     true,
		})
	}
	return cells, nil
}

// alignNumbers pairs whitespace-delimited numeric components with solution
// letters. Encoded punctuation is preserved verbatim (number encodings do
// not separate letters from punctuation without the whitespace delimiting),
// while word spacing is synthesized from the solution text.
func alignNumbers(encoded, solution string) ([]Cell, error) {
	letters, spaceBefore := solutionLetters(solution)

	var cells []Cell
	next := 0
	for _, field := range strings.Fields(encoded) {
		for _, run := range splitRuns(field) {
			if !isDigits(run) {
				cells = append(cells, Cell{EncodedToken: run, IsSymbol: true})
				continue
			}
			if next >= len(letters) {
				return nil, fmt.Errorf("%w: ran out of solution letters",
					ErrInsufficientSolutionLetters)
			}
			if spaceBefore[next] && len(cells) > 0 {
				cells = append(cells, Cell{EncodedToken: " ", IsSymbol: true})
			}
			cells = append(cells, Cell{
				EncodedToken: run,
				SolutionChar: string(letters[next]),
			})
			next++
		}
	}
	return cells, nil
}

// solutionLetters extracts the solution's letters plus, for each, whether
// the skipped characters before it contained whitespace (word boundary).
func solutionLetters(solution string) (letters []rune, spaceBefore []bool) {
	gap := false
	for _, r := range solution {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			spaceBefore = append(spaceBefore, gap)
			gap = false
			continue
		}
		if unicode.IsSpace(r) {
			gap = true
		}
	}
	return letters, spaceBefore
}

// splitRuns breaks a field into maximal runs of digits and non-digits,
// e.g. "12," → ["12", ","] and "(5)" → ["(", "5", ")"].
func splitRuns(field string) []string {
	var runs []string
	var cur []rune
	curDigit := false
	for _, r := range field {
		d := unicode.IsDigit(r)
		if len(cur) > 0 && d != curDigit {
			runs = append(runs, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
		curDigit = d
	}
	if len(cur) > 0 {
		runs = append(runs, string(cur))
	}
	return runs
}

// isDigits reports whether s is entirely decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
