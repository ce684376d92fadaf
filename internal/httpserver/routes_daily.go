// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's puzzle
//   - GET  /daily/leaderboard → top finishers for today (or a given date)
//
// Each user gets one attempt per day (enforced by DB + in-memory session).
// The quote is deterministic per date: a curated daily_puzzles row if one
// exists, otherwise HMAC(salt, date) over the quote list. In-progress daily
// games are resumable through the regular /game/{id} routes via the
// persisted snapshot.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram-sub001/internal/daily"
	"github.com/rohanluthra13/cryptogram-sub001/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]string // userID|date → gameID
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	Date     string       `json:"date"`
	Played   bool         `json:"played"`
	Snapshot *snapshotRes `json:"snapshot,omitempty"`
}

// handleNew starts or resumes the daily puzzle for the current date.
// - If the user already has a finished daily result → Played=true.
// - If a session exists in memory or in the DB → return its snapshot.
// - Otherwise align today's quote and start a fresh game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.ownerOf(w, r)
	uid := owner.user
	if uid == "" {
		uid = owner.anon
	}
	now := time.Now()
	date := daily.DateKey(now)

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	// Reuse an in-memory session for today.
	key := uid + "|" + date
	d.mu.Lock()
	gameID, ok := d.sessions[key]
	d.mu.Unlock()
	if ok {
		if g, err := d.srv.store.Get(r.Context(), gameID); err == nil {
			snap := d.srv.snapshot(r.Context(), g)
			_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Snapshot: &snap})
			return
		}
	}

	p, err := d.srv.src.ForDate(r.Context(), now, d.salt)
	if err != nil {
		http.Error(w, `{"error":"no_puzzle"}`, http.StatusNotFound)
		return
	}
	g, err := game.New(p.Input(), game.DefaultConfig())
	if err != nil {
		log.Error().Err(err).Str("puzzleId", p.ID).Msg("daily alignment failed")
		http.Error(w, `{"error":"bad_puzzle"}`, http.StatusUnprocessableEntity)
		return
	}
	g.SetResultSink(&resultRecorder{srv: d.srv, gameID: g.ID, owner: owner, dailyDate: date})

	if err := d.srv.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	started := time.Now().UTC().Format(time.RFC3339)
	_, err = d.srv.db.Exec(`INSERT INTO games (id, user_id, anonymous_id, puzzle_id, scheme, difficulty, mode, max_mistakes, status, daily_date, started_at)
	                        VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		g.ID, owner.userID(), owner.anonID(), p.ID, string(p.Scheme), p.Difficulty,
		string(g.Config().Mode), g.Config().MaxMistakes, "playing", date, started)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert daily game row")
	}

	d.mu.Lock()
	d.sessions[key] = g.ID
	d.mu.Unlock()

	snap := d.srv.snapshot(r.Context(), g)
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Snapshot: &snap})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
