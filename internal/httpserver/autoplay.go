// internal/httpserver/autoplay.go
//
// GET /game/{id}/autoplay?token=...&delay=250ms upgrades to a WebSocket and
// lets the bot finish the game, sending one message per turn:
//
//	{"type":"turn","turn":{...}}     after every bot guess
//	{"type":"done","game":{...}}     final snapshot (answer revealed)
//	{"type":"error","error":"...",...} if a turn fails; the stream then closes
//
// Each turn gets its own solve deadline. Closing the socket cancels the
// solve in progress; the game keeps whatever turns were already played.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/game"
)

const (
	maxAutoplayDelay = 2 * time.Second
	writeWait        = 5 * time.Second
)

type streamMsg struct {
	Type    string         `json:"type"`
	Turn    *game.Turn     `json:"turn,omitempty"`
	Game    *game.Snapshot `json:"game,omitempty"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.opts.ClientOrigin
		},
	}
}

func (s *Server) handleAutoplay(w http.ResponseWriter, r *http.Request) {
	g, err := s.authorizedGame(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var delay time.Duration
	if v := r.URL.Query().Get("delay"); v != "" {
		if delay, err = time.ParseDuration(v); err != nil || delay < 0 {
			writeError(w, r, badRequest("bad_delay", err))
			return
		}
		delay = min(delay, maxAutoplayDelay)
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Warn().Err(err).Str("gameId", g.ID).Msg("autoplay upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// The client never sends anything we need; reading only notices the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(m streamMsg) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}

	for g.State() == game.StatePlaying {
		turnCtx, turnCancel := context.WithTimeout(ctx, s.opts.SolveTimeout)
		turn, err := g.BotTurn(turnCtx)
		turnCancel()
		if err != nil {
			_, code := statusOf(err)
			log.Warn().Err(err).Str("gameId", g.ID).Msg("autoplay turn failed")
			_ = send(streamMsg{Type: "error", Error: code, Message: err.Error()})
			s.closeStream(conn, websocket.CloseInternalServerErr, code)
			return
		}
		if err := send(streamMsg{Type: "turn", Turn: &turn}); err != nil {
			log.Debug().Err(err).Str("gameId", g.ID).Msg("autoplay client gone")
			return
		}
		if delay > 0 && g.State() == game.StatePlaying {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}

	snap := g.Snapshot()
	if err := send(streamMsg{Type: "done", Game: &snap}); err != nil {
		return
	}
	s.closeStream(conn, websocket.CloseNormalClosure, string(snap.State))
}

func (s *Server) closeStream(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}
