// internal/httpserver/server.go
//
// HTTP server wiring for the solver backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: POST /game/new, POST /game/guess, POST /game/bot,
//     GET /game/{id}. Every call after /game/new carries the game token.
//   - Daily endpoints: mounted under /daily.
//   - Bot autoplay stream: GET /game/{id}/autoplay (WebSocket).
//
// Notes:
//   - CORS is origin-aware for a single configured client origin.
//   - Bot requests run under their own solve deadline; a timed-out solve
//     leaves the game exactly as it was.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/store"
)

// Options carries the server settings that come from configuration.
type Options struct {
	SolveTimeout time.Duration
	SessionTTL   time.Duration
	JWTSecret    string
	ClientOrigin string
	DailySalt    string
}

// Server bundles the router, the game store and the shared solver.
type Server struct {
	r      *chi.Mux
	store  store.Store
	solver *solver.Solver
	opts   Options
	now    func() time.Time
}

// defaultClientOrigin is the dev frontend, allowed when no origin is configured.
const defaultClientOrigin = "http://localhost:5173"

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, sv *solver.Solver, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = defaultClientOrigin
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = 10 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), store: st, solver: sv, opts: opts, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)

	// The autoplay stream lives as long as the game, so it stays outside the
	// request timeout.
	s.r.Get("/game/{id}/autoplay", s.handleAutoplay)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.opts.SolveTimeout + 5*time.Second))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordlebot","endpoints":["/health","POST /game/new","POST /game/guess","POST /game/bot","GET /game/{id}","GET /game/{id}/autoplay","POST /daily/new"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", s.handleDebugWords)

		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/bot", s.handleBot)
		r.Get("/game/{id}", s.handleGetGame)

		s.mountDaily(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode   game.Mode `json:"mode"`   // "random" (default) | "daily" | "fixed"
	Answer string    `json:"answer"` // required for "fixed"
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Token  string    `json:"token"`
	Mode   game.Mode `json:"mode"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Date   string    `json:"date,omitempty"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("bad_json", err))
			return
		}
	}

	var answer, date string
	switch req.Mode {
	case "", game.ModeRandom:
		req.Mode = game.ModeRandom
	case game.ModeDaily:
		date, answer = s.dailyTarget()
	case game.ModeFixed:
		if answer = req.Answer; answer == "" {
			writeError(w, r, badRequest("missing_answer", nil))
			return
		}
	default:
		writeError(w, r, badRequest("bad_mode", nil))
		return
	}
	s.startGame(w, r, answer, req.Mode, date)
}

// startGame creates and stores a game and answers with its token.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, answer string, mode game.Mode, date string) {
	g, err := game.New(s.solver, answer, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, r, err)
		return
	}
	tok, err := s.signGameToken(g.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("gameId", g.ID).Str("mode", string(g.Mode)).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{
		GameID: g.ID, Token: tok, Mode: g.Mode, Rows: g.Rows, Cols: g.Cols, Date: date,
	})
}

// guessReq is the payload for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// handleGuess applies a player guess and returns the resulting turn.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("bad_json", err))
		return
	}
	g, err := s.authorizedGame(r, req.GameID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	turn, err := g.ApplyGuess(req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

// botReq is the payload for POST /game/bot. With Play unset the bot only
// suggests its next guess; with Play set it also submits it.
type botReq struct {
	GameID string `json:"gameId"`
	Play   bool   `json:"play"`
}
type botRes struct {
	Guess     string `json:"guess"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	var req botReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("bad_json", err))
		return
	}
	g, err := s.authorizedGame(r, req.GameID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.SolveTimeout)
	defer cancel()
	start := s.now()

	if req.Play {
		turn, err := g.BotTurn(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Debug().Str("gameId", g.ID).Str("guess", turn.Guess).Dur("took", time.Since(start)).Msg("bot played")
		writeJSON(w, http.StatusOK, turn)
		return
	}

	guess, err := g.BotGuess(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Debug().Str("gameId", g.ID).Str("guess", guess).Dur("took", time.Since(start)).Msg("bot suggested")
	writeJSON(w, http.StatusOK, botRes{Guess: guess, Remaining: g.Snapshot().Remaining})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.authorizedGame(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// authorizedGame loads a game after checking the request's game token.
func (s *Server) authorizedGame(r *http.Request, id string) (*game.Game, error) {
	if id == "" {
		return nil, badRequest("missing_game_id", nil)
	}
	if err := s.checkGameToken(tokenFrom(r), id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) handleDebugWords(w http.ResponseWriter, r *http.Request) {
	d := s.solver.Dictionary()
	writeJSON(w, http.StatusOK, map[string]any{
		"words":       d.Len(),
		"wordLength":  d.WordLength(),
		"opener":      s.solver.Opener(),
		"maxAttempts": s.solver.MaxAttempts(),
		"games":       s.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
