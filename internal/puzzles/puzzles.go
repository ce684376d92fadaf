// internal/puzzles/puzzles.go
//
// Puzzle source for the cryptogram engine.
//
// Responsibilities:
//   - Load pre-encoded quote puzzles from the quotes database, or fall
//     back to the small embedded list so the server runs with no DB.
//   - Pick random puzzles by difficulty and deterministic puzzles by date
//     for the daily mode.
//
// Puzzles are supplied pre-encoded; this package performs no encryption
// or puzzle generation.

package puzzles

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rohanluthra13/cryptogram-sub001/assets"
	"github.com/rohanluthra13/cryptogram-sub001/internal/cipher"
	"github.com/rohanluthra13/cryptogram-sub001/internal/daily"
)

// ErrNoPuzzles means neither the database nor the embedded fallback could
// supply a puzzle for the request.
var ErrNoPuzzles = errors.New("puzzles: no puzzles available")

// Puzzle is one pre-encoded quote ready for alignment.
type Puzzle struct {
	ID         string        `json:"id"`
	Encoded    string        `json:"encodedText"`
	Solution   string        `json:"solutionText"`
	Author     string        `json:"author"`
	Difficulty string        `json:"difficulty"`
	Scheme     cipher.Scheme `json:"scheme"`
}

// Input converts the puzzle into the alignment engine's input shape.
func (p Puzzle) Input() cipher.Input {
	return cipher.Input{
		EncodedText:  p.Encoded,
		SolutionText: p.Solution,
		Scheme:       p.Scheme,
		PuzzleID:     p.ID,
	}
}

// Source supplies puzzles from the quotes table, falling back to the
// embedded list when the DB is absent or empty.
type Source struct {
	db       *sql.DB
	fallback []Puzzle
}

// NewSource builds a Source. db may be nil (embedded puzzles only).
func NewSource(db *sql.DB) (*Source, error) {
	lines, err := assets.QuoteLines()
	if err != nil {
		return nil, fmt.Errorf("load embedded quotes: %w", err)
	}
	fb := make([]Puzzle, 0, len(lines))
	for i, line := range lines {
		p, err := parseLine(line, i)
		if err != nil {
			return nil, err
		}
		fb = append(fb, p)
	}
	if len(fb) == 0 {
		return nil, ErrNoPuzzles
	}
	return &Source{db: db, fallback: fb}, nil
}

// parseLine parses one encodedText|solutionText|author|difficulty line.
func parseLine(line string, i int) (Puzzle, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 4 {
		return Puzzle{}, fmt.Errorf("puzzles: bad embedded line %d: %q", i+1, line)
	}
	return Puzzle{
		ID:         fmt.Sprintf("embedded-%d", i+1),
		Encoded:    strings.TrimSpace(parts[0]),
		Solution:   strings.TrimSpace(parts[1]),
		Author:     strings.TrimSpace(parts[2]),
		Difficulty: strings.TrimSpace(parts[3]),
		Scheme:     cipher.SchemeLetters,
	}, nil
}

// Random picks a random puzzle, optionally filtered by difficulty.
func (s *Source) Random(ctx context.Context, difficulty string) (Puzzle, error) {
	if s.db != nil {
		p, err := s.randomFromDB(ctx, difficulty)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Puzzle{}, err
		}
	}
	return s.randomFallback(difficulty)
}

func (s *Source) randomFromDB(ctx context.Context, difficulty string) (Puzzle, error) {
	q := `SELECT id, encoded_text, solution_text, author, difficulty, scheme
	      FROM quotes`
	args := []any{}
	if difficulty != "" {
		q += ` WHERE difficulty=?`
		args = append(args, difficulty)
	}
	q += ` ORDER BY RANDOM() LIMIT 1`
	return scanPuzzle(s.db.QueryRowContext(ctx, q, args...))
}

func (s *Source) randomFallback(difficulty string) (Puzzle, error) {
	pool := s.fallback
	if difficulty != "" {
		pool = nil
		for _, p := range s.fallback {
			if p.Difficulty == difficulty {
				pool = append(pool, p)
			}
		}
	}
	if len(pool) == 0 {
		return Puzzle{}, ErrNoPuzzles
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	return pool[nBig.Int64()], nil
}

// ByID loads one puzzle by id, checking the DB first.
func (s *Source) ByID(ctx context.Context, id string) (Puzzle, error) {
	if s.db != nil {
		p, err := scanPuzzle(s.db.QueryRowContext(ctx,
			`SELECT id, encoded_text, solution_text, author, difficulty, scheme
			 FROM quotes WHERE id=?`, id))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Puzzle{}, err
		}
	}
	for _, p := range s.fallback {
		if p.ID == id {
			return p, nil
		}
	}
	return Puzzle{}, fmt.Errorf("%w: id %s", ErrNoPuzzles, id)
}

// ForDate returns the daily puzzle for date. A curated daily_puzzles row
// wins; otherwise the pick is a deterministic HMAC(salt, date) index over
// the available puzzles, so every player sees the same quote without a
// schedule being populated.
func (s *Source) ForDate(ctx context.Context, date time.Time, salt string) (Puzzle, error) {
	if s.db != nil {
		p, err := scanPuzzle(s.db.QueryRowContext(ctx,
			`SELECT q.id, q.encoded_text, q.solution_text, q.author, q.difficulty, q.scheme
			 FROM daily_puzzles d JOIN quotes q ON q.id = d.quote_id
			 WHERE d.puzzle_date=?`, daily.DateKey(date)))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Puzzle{}, err
		}

		ids, err := s.quoteIDs(ctx)
		if err != nil {
			return Puzzle{}, err
		}
		if len(ids) > 0 {
			return s.ByID(ctx, ids[daily.QuoteIndex(date, salt, len(ids))])
		}
	}
	return s.fallback[daily.QuoteIndex(date, salt, len(s.fallback))], nil
}

// quoteIDs lists quote ids in stable order for deterministic indexing.
func (s *Source) quoteIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM quotes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// scanPuzzle converts one quotes row into a Puzzle.
func scanPuzzle(row *sql.Row) (Puzzle, error) {
	var p Puzzle
	var scheme string
	if err := row.Scan(&p.ID, &p.Encoded, &p.Solution, &p.Author, &p.Difficulty, &scheme); err != nil {
		return Puzzle{}, err
	}
	p.Scheme = cipher.Scheme(scheme)
	if !p.Scheme.Valid() {
		p.Scheme = cipher.SchemeLetters
	}
	return p, nil
}

// Stats returns the fallback puzzle count (diagnostics endpoint).
func (s *Source) Stats() int { return len(s.fallback) }
