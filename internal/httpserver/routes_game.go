// internal/httpserver/routes_game.go
//
// HTTP routes for free-play cryptogram games.
// Exposes:
//   - POST /game/new          → pick a quote, align it, apply pre-fills
//   - GET  /game/{id}         → current snapshot (restores from DB if needed)
//   - POST /game/{id}/select  → move the cursor
//   - POST /game/{id}/input   → guess a letter
//   - POST /game/{id}/delete  → clear a guess
//   - POST /game/{id}/hint    → reveal one cell
//   - POST /game/{id}/pause   → toggle the pause clock
//   - POST /game/{id}/reset   → rebuild the same puzzle from scratch
//   - POST /game/{id}/keep-playing → continue past the mistake limit
//
// Live games are held in the memory store; every operation also writes a
// resumable snapshot row, and terminal transitions persist results and
// user stats immediately through the engine's result sink.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram-sub001/internal/cipher"
	"github.com/rohanluthra13/cryptogram-sub001/internal/daily"
	"github.com/rohanluthra13/cryptogram-sub001/internal/game"
	"github.com/rohanluthra13/cryptogram-sub001/internal/store"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Post("/select", s.gameOp(s.applySelect))
		r.Post("/input", s.gameOp(s.applyInput))
		r.Post("/delete", s.gameOp(s.applyDelete))
		r.Post("/hint", s.gameOp(s.applyHint))
		r.Post("/pause", s.gameOp(s.applyPause))
		r.Post("/reset", s.gameOp(s.applyReset))
		r.Post("/keep-playing", s.gameOp(s.applyKeepPlaying))
	})
}

// ------------------------------ snapshots ----------------------------------

// cellView is the client-facing cell shape. Solution letters are withheld
// unless the cell was revealed/pre-filled or the game is over; the client
// only ever learns what it earned.
type cellView struct {
	ID           string `json:"id"`
	Position     int    `json:"position"`
	EncodedToken string `json:"encodedToken"`
	IsSymbol     bool   `json:"isSymbol"`
	UserInput    string `json:"userInput,omitempty"`
	IsRevealed   bool   `json:"isRevealed,omitempty"`
	IsPreFilled  bool   `json:"isPreFilled,omitempty"`
	IsError      bool   `json:"isError,omitempty"`
	SolutionChar string `json:"solutionChar,omitempty"`
}

// snapshotRes is returned by every game endpoint.
type snapshotRes struct {
	GameID       string     `json:"gameId"`
	PuzzleID     string     `json:"puzzleId"`
	Scheme       string     `json:"scheme"`
	Author       string     `json:"author,omitempty"` // revealed once the game ends
	Cells        []cellView `json:"cells"`
	Cursor       int        `json:"cursor"`
	MistakeCount int        `json:"mistakeCount"`
	MaxMistakes  int        `json:"maxMistakes"`
	HintCount    int        `json:"hintCount"`
	ElapsedMs    int64      `json:"elapsedMs"`
	IsPaused     bool       `json:"isPaused"`
	IsComplete   bool       `json:"isComplete"`
	IsFailed     bool       `json:"isFailed"`
}

// snapshot builds the masked client view of a game.
func (s *Server) snapshot(ctx context.Context, g *game.Game) snapshotRes {
	sess := g.Session()
	terminal := sess.Terminal()
	cells := g.Cells()
	views := make([]cellView, len(cells))
	for i, c := range cells {
		v := cellView{
			ID:           c.ID,
			Position:     c.Position,
			EncodedToken: c.EncodedToken,
			IsSymbol:     c.IsSymbol,
			UserInput:    c.UserInput,
			IsRevealed:   c.IsRevealed,
			IsPreFilled:  c.IsPreFilled,
			IsError:      c.IsError,
		}
		if terminal || c.IsRevealed || c.IsPreFilled {
			v.SolutionChar = c.SolutionChar
		}
		views[i] = v
	}

	res := snapshotRes{
		GameID:       g.ID,
		PuzzleID:     g.PuzzleID(),
		Scheme:       string(g.Scheme()),
		Cells:        views,
		Cursor:       g.Cursor(),
		MistakeCount: sess.MistakeCount,
		MaxMistakes:  g.Config().MaxMistakes,
		HintCount:    sess.HintCount,
		ElapsedMs:    g.Elapsed().Milliseconds(),
		IsPaused:     sess.IsPaused,
		IsComplete:   sess.IsComplete,
		IsFailed:     sess.IsFailed,
	}
	if terminal {
		if p, err := s.src.ByID(ctx, g.PuzzleID()); err == nil {
			res.Author = p.Author
		}
	}
	return res
}

// savedState is the resumable snapshot persisted in games.snapshot.
type savedState struct {
	Cells   []cipher.Cell `json:"cells"`
	Session game.Session  `json:"session"`
}

// ------------------------------ /game/new ----------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Difficulty      string  `json:"difficulty"`      // easy | medium | hard | "" (any)
	Mode            string  `json:"mode"`            // normal | expert
	MaxMistakes     int     `json:"maxMistakes"`     // optional override
	PrefillFraction float64 `json:"prefillFraction"` // optional override
}

// handleNewGame picks a quote, builds an engine instance, wires its result
// sink to the DB, and persists an owner row for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	p, err := s.src.Random(r.Context(), req.Difficulty)
	if err != nil {
		http.Error(w, `{"error":"no_puzzle"}`, http.StatusNotFound)
		return
	}

	cfg := game.DifficultyConfig{
		Mode:            game.Mode(req.Mode),
		MaxMistakes:     req.MaxMistakes,
		PrefillFraction: req.PrefillFraction,
	}
	g, err := game.New(p.Input(), cfg)
	if err != nil {
		// Malformed puzzle content; a content error, not a gameplay error.
		log.Error().Err(err).Str("puzzleId", p.ID).Msg("alignment failed")
		http.Error(w, `{"error":"bad_puzzle"}`, http.StatusUnprocessableEntity)
		return
	}

	owner := s.ownerOf(w, r)
	g.SetResultSink(&resultRecorder{srv: s, gameID: g.ID, owner: owner})

	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`INSERT INTO games (id, user_id, anonymous_id, puzzle_id, scheme, difficulty, mode, max_mistakes, status, started_at)
	                    VALUES (?,?,?,?,?,?,?,?,?,?)`,
		g.ID, owner.userID(), owner.anonID(), p.ID, string(p.Scheme), p.Difficulty,
		string(g.Config().Mode), g.Config().MaxMistakes, "playing", now)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}

	_ = json.NewEncoder(w).Encode(s.snapshot(r.Context(), g))
}

// ------------------------------ operations ---------------------------------

// opReq carries the parameters for all per-game operations; unused fields
// are ignored by each op.
type opReq struct {
	Index     int    `json:"index"`
	Char      string `json:"char"`
	Direction int    `json:"direction"`
}

// gameOp wraps one engine operation: load, apply, persist, respond.
// Unknown games 404; everything else answers with the fresh snapshot —
// ineligible operations are engine no-ops, not HTTP errors.
func (s *Server) gameOp(apply func(g *game.Game, req opReq)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req opReq
		_ = json.NewDecoder(r.Body).Decode(&req)

		g, err := s.loadGame(w, r)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		apply(g, req)

		if err := s.store.Save(r.Context(), g); err != nil {
			http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
			return
		}
		s.persistSnapshot(r.Context(), g)
		_ = json.NewEncoder(w).Encode(s.snapshot(r.Context(), g))
	}
}

func (s *Server) applySelect(g *game.Game, req opReq) {
	if req.Direction != 0 {
		g.MoveCursor(req.Direction)
		return
	}
	g.SelectCell(req.Index)
}
func (s *Server) applyInput(g *game.Game, req opReq)  { g.InputLetter(req.Index, req.Char) }
func (s *Server) applyDelete(g *game.Game, req opReq) { g.HandleDelete(req.Index) }
func (s *Server) applyHint(g *game.Game, req opReq)   { g.RevealHint() }
func (s *Server) applyPause(g *game.Game, req opReq)  { g.TogglePause() }
func (s *Server) applyReset(g *game.Game, req opReq) {
	if err := g.Reset(); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("reset failed")
	}
}
func (s *Server) applyKeepPlaying(g *game.Game, req opReq) { g.ClearFailureState() }

// handleGetGame returns the snapshot for a live or persisted game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGame(w, r)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(s.snapshot(r.Context(), g))
}

// loadGame fetches a live game from the store, falling back to rebuilding
// one from its persisted snapshot row (resumable sessions).
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (*game.Game, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, store.ErrNotFound
	}
	g, err := s.store.Get(r.Context(), id)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.restoreGame(w, r, id)
}

// restoreGame rebuilds an engine instance from the games row: re-aligns the
// original puzzle, then replaces live state with the stored snapshot.
func (s *Server) restoreGame(w http.ResponseWriter, r *http.Request, id string) (*game.Game, error) {
	var puzzleID, mode, dailyDate string
	var maxMistakes int
	var snapshot sql.NullString
	err := s.db.QueryRowContext(r.Context(),
		`SELECT puzzle_id, mode, max_mistakes, COALESCE(daily_date,''), snapshot
		 FROM games WHERE id=?`, id,
	).Scan(&puzzleID, &mode, &maxMistakes, &dailyDate, &snapshot)
	if err != nil {
		return nil, store.ErrNotFound
	}

	p, err := s.src.ByID(r.Context(), puzzleID)
	if err != nil {
		return nil, err
	}
	g, err := game.New(p.Input(), game.DifficultyConfig{Mode: game.Mode(mode), MaxMistakes: maxMistakes})
	if err != nil {
		return nil, err
	}
	g.ID = id

	if snapshot.Valid && snapshot.String != "" {
		var st savedState
		if err := json.Unmarshal([]byte(snapshot.String), &st); err == nil {
			g.Restore(st.Cells, st.Session)
		} else {
			log.Warn().Err(err).Str("gameId", id).Msg("bad snapshot, restarting puzzle")
		}
	}

	g.SetResultSink(&resultRecorder{srv: s, gameID: id, owner: s.ownerOf(w, r), dailyDate: dailyDate})
	if err := s.store.Save(r.Context(), g); err != nil {
		return nil, err
	}
	return g, nil
}

// persistSnapshot writes the resumable snapshot + counters (best effort).
func (s *Server) persistSnapshot(ctx context.Context, g *game.Game) {
	st := savedState{Cells: g.Cells(), Session: g.Session()}
	buf, err := json.Marshal(st)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("marshal snapshot")
		return
	}
	sess := g.Session()
	_, err = s.db.ExecContext(ctx,
		`UPDATE games SET snapshot=?, mistakes=?, hints=?, elapsed_ms=? WHERE id=?`,
		string(buf), sess.MistakeCount, sess.HintCount, g.Elapsed().Milliseconds(), g.ID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("persist snapshot")
	}
}

// ------------------------------ ownership ----------------------------------

// gameOwner identifies who a game belongs to: a user or an anonymous cookie.
type gameOwner struct {
	user string
	anon string
}

func (o gameOwner) userID() any {
	if o.user == "" {
		return nil
	}
	return o.user
}
func (o gameOwner) anonID() any {
	if o.user != "" || o.anon == "" {
		return nil
	}
	return o.anon
}

// ownerOf resolves the current owner, minting an anon cookie for guests.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) gameOwner {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return gameOwner{user: me.ID}
	}
	return gameOwner{anon: s.ensureAnonID(w, r)}
}

// ---------------------------- result sink ----------------------------------

// resultRecorder is the engine's terminal-result sink: a completion or
// failure is persisted immediately (never debounced) so a just-finished
// game cannot be lost.
type resultRecorder struct {
	srv       *Server
	gameID    string
	owner     gameOwner
	dailyDate string // non-empty for daily games
}

// RecordResult finishes the games row, bumps user stats, and (for daily
// games) records the daily result. Best effort: failures are logged, the
// session itself is unaffected.
func (rec *resultRecorder) RecordResult(res game.Result) {
	ctx := context.Background()
	status := "failed"
	if res.Completed {
		status = "completed"
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := rec.srv.db.Begin()
	if err != nil {
		log.Warn().Err(err).Str("gameId", rec.gameID).Msg("result tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=?, mistakes=?, hints=?, elapsed_ms=? WHERE id=?`,
		status, now, res.Mistakes, res.Hints, res.ElapsedMs, rec.gameID); err != nil {
		log.Warn().Err(err).Str("gameId", rec.gameID).Msg("finish game")
	}
	if rec.owner.user != "" {
		if err := rec.srv.bumpStats(tx, rec.owner.user, res.Completed); err != nil {
			log.Warn().Err(err).Str("user", rec.owner.user).Msg("bump stats")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Str("gameId", rec.gameID).Msg("commit result")
		return
	}

	if rec.dailyDate != "" {
		uid := rec.owner.user
		if uid == "" {
			uid = rec.owner.anon
		}
		err := daily.NewStore(rec.srv.db).InsertResult(ctx, daily.Result{
			UserID:    uid,
			Date:      rec.dailyDate,
			PuzzleID:  res.PuzzleID,
			Completed: res.Completed,
			Mistakes:  res.Mistakes,
			Hints:     res.Hints,
			ElapsedMs: res.ElapsedMs,
		})
		if err != nil {
			log.Warn().Err(err).Str("date", rec.dailyDate).Msg("insert daily result")
		}
	}
}
