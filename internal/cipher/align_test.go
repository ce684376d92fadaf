package cipher

import (
	"errors"
	"strings"
	"testing"
)

// render joins cell tokens the way the UI would lay them out, using the
// solution char for letter cells so alignment is easy to eyeball in tests.
func render(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if c.IsSymbol {
			b.WriteString(c.EncodedToken)
		} else {
			b.WriteString(c.SolutionChar)
		}
	}
	return b.String()
}

func TestAlignLettersBasic(t *testing.T) {
	cells, err := Align(Input{
		EncodedText:  "AB CD",
		SolutionText: "HI, JK",
		Scheme:       SchemeLetters,
		PuzzleID:     "p1",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(cells) != 6 {
		t.Fatalf("got %d cells, want 6", len(cells))
	}
	if got := render(cells); got != "HI, JK" {
		t.Fatalf("rendered %q, want %q", got, "HI, JK")
	}

	letters := 0
	for i, c := range cells {
		if c.Position != i {
			t.Errorf("cell %d has position %d", i, c.Position)
		}
		if c.IsSymbol {
			if c.SolutionChar != "" || c.UserInput != "" {
				t.Errorf("symbol cell %d carries letter state: %+v", i, c)
			}
		} else {
			letters++
		}
	}
	if letters != 4 {
		t.Fatalf("got %d letter cells, want 4", letters)
	}
	// Symbol placement mirrors the solution, not the encoded text.
	if !cells[2].IsSymbol || cells[2].EncodedToken != "," {
		t.Errorf("cell 2 = %+v, want comma symbol", cells[2])
	}
	if !cells[3].IsSymbol || cells[3].EncodedToken != " " {
		t.Errorf("cell 3 = %+v, want space symbol", cells[3])
	}
}

func TestAlignLettersPunctuationMismatch(t *testing.T) {
	// Encoded text carries different punctuation than the solution; only
	// the solution's punctuation may appear in the output.
	cells, err := Align(Input{
		EncodedText:  "QX.Z- W!",
		SolutionText: "ABC, D",
		Scheme:       SchemeLetters,
		PuzzleID:     "p2",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if got := render(cells); got != "ABC, D" {
		t.Fatalf("rendered %q, want %q", got, "ABC, D")
	}
}

func TestAlignLettersTrailingSymbols(t *testing.T) {
	cells, err := Align(Input{
		EncodedText:  "AB",
		SolutionText: "HI!",
		Scheme:       SchemeLetters,
		PuzzleID:     "p3",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if got := render(cells); got != "HI!" {
		t.Fatalf("rendered %q, want %q", got, "HI!")
	}
	if !cells[2].IsSymbol {
		t.Fatalf("trailing punctuation not kept as symbol: %+v", cells[2])
	}
}

func TestAlignLettersDigitsAreTokens(t *testing.T) {
	// Alphanumeric characters in the encoded text are all tokens.
	cells, err := Align(Input{
		EncodedText:  "A1B2",
		SolutionText: "WORD",
		Scheme:       SchemeLetters,
		PuzzleID:     "p4",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}
	if cells[1].EncodedToken != "1" || cells[1].SolutionChar != "O" {
		t.Errorf("cell 1 = %+v", cells[1])
	}
}

func TestAlignInsufficientSolutionLetters(t *testing.T) {
	_, err := Align(Input{
		EncodedText:  "ABCDE",
		SolutionText: "HI",
		Scheme:       SchemeLetters,
		PuzzleID:     "p5",
	})
	if !errors.Is(err, ErrInsufficientSolutionLetters) {
		t.Fatalf("got %v, want ErrInsufficientSolutionLetters", err)
	}
}

func TestAlignEmptyInputs(t *testing.T) {
	if _, err := Align(Input{EncodedText: "AB", SolutionText: "  ", Scheme: SchemeLetters}); !errors.Is(err, ErrEmptySolution) {
		t.Errorf("empty solution: got %v", err)
	}
	if _, err := Align(Input{EncodedText: "", SolutionText: "HI", Scheme: SchemeLetters}); !errors.Is(err, ErrEmptyEncoded) {
		t.Errorf("empty encoded: got %v", err)
	}
	if _, err := Align(Input{EncodedText: "AB", SolutionText: "HI", Scheme: "morse"}); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("unknown scheme: got %v", err)
	}
}

func TestAlignNumbersBasic(t *testing.T) {
	cells, err := Align(Input{
		EncodedText:  "8 9 , 10 11",
		SolutionText: "HI, JK",
		Scheme:       SchemeNumbers,
		PuzzleID:     "n1",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if got := render(cells); got != "HI, JK" {
		t.Fatalf("rendered %q, want %q", got, "HI, JK")
	}
	if cells[0].EncodedToken != "8" || cells[0].SolutionChar != "H" {
		t.Errorf("cell 0 = %+v", cells[0])
	}
	// The comma comes verbatim from the encoded text, the word space is
	// synthesized from the solution.
	if !cells[2].IsSymbol || cells[2].EncodedToken != "," {
		t.Errorf("cell 2 = %+v, want encoded comma", cells[2])
	}
	if !cells[3].IsSymbol || cells[3].EncodedToken != " " {
		t.Errorf("cell 3 = %+v, want synthesized space", cells[3])
	}
}

func TestAlignNumbersAttachedPunctuation(t *testing.T) {
	// "9," is one whitespace field: the number pairs with a letter, the
	// comma stays a verbatim symbol in place.
	cells, err := Align(Input{
		EncodedText:  "8 9, 10 11",
		SolutionText: "HI, JK",
		Scheme:       SchemeNumbers,
		PuzzleID:     "n2",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if got := render(cells); got != "HI, JK" {
		t.Fatalf("rendered %q, want %q", got, "HI, JK")
	}
}

func TestAlignNumbersRunsOut(t *testing.T) {
	_, err := Align(Input{
		EncodedText:  "1 2 3",
		SolutionText: "HI",
		Scheme:       SchemeNumbers,
		PuzzleID:     "n3",
	})
	if !errors.Is(err, ErrInsufficientSolutionLetters) {
		t.Fatalf("got %v, want ErrInsufficientSolutionLetters", err)
	}
}

func TestAlignDeterministicIDs(t *testing.T) {
	in := Input{
		EncodedText:  "AB CD",
		SolutionText: "HI, JK",
		Scheme:       SchemeLetters,
		PuzzleID:     "stable",
	}
	a, err := Align(in)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	b, err := Align(in)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	for i := range a {
		if a[i].ID == "" {
			t.Fatalf("cell %d has empty id", i)
		}
		if a[i].ID != b[i].ID {
			t.Fatalf("cell %d id differs across runs: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}

	// Different puzzle id must not collide.
	in.PuzzleID = "other"
	c, err := Align(in)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if c[0].ID == a[0].ID {
		t.Fatalf("ids should depend on puzzle id")
	}
}

func TestAlignLowercaseNormalized(t *testing.T) {
	cells, err := Align(Input{
		EncodedText:  "ab cd",
		SolutionText: "hi, jk",
		Scheme:       SchemeLetters,
		PuzzleID:     "p6",
	})
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if got := render(cells); got != "HI, JK" {
		t.Fatalf("rendered %q, want uppercase %q", got, "HI, JK")
	}
	if cells[0].EncodedToken != "A" {
		t.Errorf("encoded token not uppercased: %+v", cells[0])
	}
}
