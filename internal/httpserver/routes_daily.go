// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - GET  /daily     → today's date key and puzzle shape (never the answer)
//   - POST /daily/new → start a game against today's word
//
// Deterministic word selection is based on date + salt, so every player (and
// every server instance sharing the salt) gets the same word on the same day.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordlebot/internal/daily"
	"github.com/robalobadob/wordlebot/internal/game"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

// dailyTarget returns today's date key and answer.
func (s *Server) dailyTarget() (date, answer string) {
	now := s.now().UTC()
	return daily.DateKey(now), daily.Target(s.solver.Dictionary(), now, s.opts.DailySalt)
}

type dailyInfoRes struct {
	Date string `json:"date"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	date, _ := s.dailyTarget()
	writeJSON(w, http.StatusOK, dailyInfoRes{
		Date: date,
		Rows: s.solver.MaxAttempts(),
		Cols: s.solver.Dictionary().WordLength(),
	})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	date, answer := s.dailyTarget()
	s.startGame(w, r, answer, game.ModeDaily, date)
}
