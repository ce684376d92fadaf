package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rohanluthra13/cryptogram-sub001/internal/cipher"
	"github.com/rohanluthra13/cryptogram-sub001/internal/game"
)

func newGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.New(
		cipher.Input{EncodedText: "AB", SolutionText: "HI", Scheme: cipher.SchemeLetters, PuzzleID: "p"},
		game.DefaultConfig(),
	)
	if err != nil {
		t.Fatalf("game.New failed: %v", err)
	}
	return g
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := newGame(t)

	if err := st.Save(ctx, g); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := st.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != g {
		t.Fatal("Get returned a different game")
	}

	if err := st.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete got %v, want ErrNotFound", err)
	}
	// Deleting again is fine.
	if err := st.Delete(ctx, g.ID); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	if _, err := NewMemoryStore().Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
