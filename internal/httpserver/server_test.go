package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordlebot/internal/daily"
	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/store"
	"github.com/robalobadob/wordlebot/internal/words"
)

var toyWords = []string{"CRANE", "TRACE", "SLATE", "CRATE", "PLUMB", "FJORD"}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	d, err := words.New(5, toyWords)
	require.NoError(t, err)
	sv, err := solver.New(d, solver.Config{Opener: "CRANE", Workers: 2})
	require.NoError(t, err)
	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	return New(store.NewMemoryStore(), sv, opts)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newFixedGame(t *testing.T, s *Server, answer string) newGameRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", "", newGameReq{Mode: game.ModeFixed, Answer: answer})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[newGameRes](t, rec)
	require.NotEmpty(t, res.GameID)
	require.NotEmpty(t, res.Token)
	return res
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = do(t, s, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wordlebot")

	rec = do(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Error)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Options{ClientOrigin: "https://play.example"})
	rec := do(t, s, http.MethodOptions, "/game/new", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://play.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultOriginAllowsAutoplay(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodOptions, "/game/new", "", nil)
	assert.Equal(t, defaultClientOrigin, rec.Header().Get("Access-Control-Allow-Origin"))

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	g := newFixedGame(t, s, "FJORD")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/autoplay?token=" + g.Token

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {defaultClientOrigin}})
	require.NoError(t, err)
	conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://elsewhere.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPlayFixedGame(t *testing.T) {
	s := newTestServer(t, Options{})
	g := newFixedGame(t, s, "crate")
	assert.Equal(t, game.ModeFixed, g.Mode)
	assert.Equal(t, 6, g.Rows)
	assert.Equal(t, 5, g.Cols)

	rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: "crane"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	turn := decode[game.Turn](t, rec)
	assert.Equal(t, "GGG-G", turn.Pattern.String())
	assert.Equal(t, game.StatePlaying, turn.State)
	assert.Equal(t, 1, turn.Remaining)

	rec = do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[game.Snapshot](t, rec).Answer)

	rec = do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: "CRATE"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StateWon, decode[game.Turn](t, rec).State)

	rec = do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	snap := decode[game.Snapshot](t, rec)
	assert.Equal(t, "CRATE", snap.Answer)
	assert.Len(t, snap.Turns, 2)

	rec = do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: "PLUMB"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "finished", decode[errorBody](t, rec).Error)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, Options{})
	a := newFixedGame(t, s, "CRATE")
	b := newFixedGame(t, s, "SLATE")
	ghost, err := s.signGameToken("ghost")
	require.NoError(t, err)

	cases := []struct {
		name   string
		token  string
		body   any
		status int
		code   string
	}{
		{"no token", "", guessReq{GameID: a.GameID, Guess: "CRANE"}, http.StatusUnauthorized, "unauthorized"},
		{"other game's token", b.Token, guessReq{GameID: a.GameID, Guess: "CRANE"}, http.StatusForbidden, "forbidden"},
		{"garbage token", "not-a-jwt", guessReq{GameID: a.GameID, Guess: "CRANE"}, http.StatusForbidden, "forbidden"},
		{"unknown game", ghost, guessReq{GameID: "ghost", Guess: "CRANE"}, http.StatusNotFound, "not_found"},
		{"missing id", a.Token, guessReq{Guess: "CRANE"}, http.StatusBadRequest, "missing_game_id"},
		{"short guess", a.Token, guessReq{GameID: a.GameID, Guess: "CRAN"}, http.StatusBadRequest, "invalid_length"},
		{"long guess", a.Token, guessReq{GameID: a.GameID, Guess: "CRANES"}, http.StatusBadRequest, "invalid_length"},
		{"not a word", a.Token, guessReq{GameID: a.GameID, Guess: "QQQQQ"}, http.StatusBadRequest, "unknown_word"},
		{"digits", a.Token, guessReq{GameID: a.GameID, Guess: "CR4NE"}, http.StatusBadRequest, "invalid_guess"},
		{"short guess with digit", a.Token, guessReq{GameID: a.GameID, Guess: "AB1"}, http.StatusBadRequest, "invalid_length"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/game/guess", tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Error)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/game/guess", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", decode[errorBody](t, rec).Error)

	rec = do(t, s, http.MethodPost, "/game/new", "", newGameReq{Mode: game.ModeFixed, Answer: "QQQQQ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/game/new", "", newGameReq{Mode: "hard"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_mode", decode[errorBody](t, rec).Error)
}

func TestExpiredToken(t *testing.T) {
	s := newTestServer(t, Options{SessionTTL: time.Hour})
	g := newFixedGame(t, s, "CRATE")
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	rec := do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewRandomGameWithoutBody(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/game/new", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, game.ModeRandom, decode[newGameRes](t, rec).Mode)
}

func TestBotSuggestAndPlay(t *testing.T) {
	s := newTestServer(t, Options{})
	g := newFixedGame(t, s, "PLUMB")

	rec := do(t, s, http.MethodPost, "/game/bot", g.Token, botReq{GameID: g.GameID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sug := decode[botRes](t, rec)
	assert.Equal(t, "CRANE", sug.Guess)
	assert.Equal(t, len(toyWords), sug.Remaining)

	rec = do(t, s, http.MethodPost, "/game/bot", g.Token, botReq{GameID: g.GameID, Play: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	turn := decode[game.Turn](t, rec)
	assert.Equal(t, "CRANE", turn.Guess)
	assert.True(t, turn.Bot)

	// Only PLUMB is consistent with CRANE scoring all misses.
	rec = do(t, s, http.MethodPost, "/game/bot", g.Token, botReq{GameID: g.GameID, Play: true})
	require.Equal(t, http.StatusOK, rec.Code)
	turn = decode[game.Turn](t, rec)
	assert.Equal(t, "PLUMB", turn.Guess)
	assert.Equal(t, game.StateWon, turn.State)
}

func TestBotTimeoutLeavesGameUnchanged(t *testing.T) {
	s := newTestServer(t, Options{SolveTimeout: time.Nanosecond})
	g := newFixedGame(t, s, "CRATE")

	// PLUMB scores all misses against CRATE and leaves four candidates, so
	// the next bot guess needs a full ranking.
	rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: "PLUMB"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 4, decode[game.Turn](t, rec).Remaining)

	rec = do(t, s, http.MethodPost, "/game/bot", g.Token, botReq{GameID: g.GameID, Play: true})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code, rec.Body.String())
	assert.Equal(t, "timeout", decode[errorBody](t, rec).Error)

	rec = do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, nil)
	snap := decode[game.Snapshot](t, rec)
	assert.Len(t, snap.Turns, 1)
	assert.Equal(t, 4, snap.Remaining)
	assert.Equal(t, game.StatePlaying, snap.State)
}

func TestDaily(t *testing.T) {
	s := newTestServer(t, Options{DailySalt: "pepper"})
	day := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	rec := do(t, s, http.MethodGet, "/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, dailyInfoRes{Date: "2024-06-01", Rows: 6, Cols: 5}, decode[dailyInfoRes](t, rec))

	rec = do(t, s, http.MethodPost, "/daily/new", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	g := decode[newGameRes](t, rec)
	assert.Equal(t, game.ModeDaily, g.Mode)
	assert.Equal(t, "2024-06-01", g.Date)

	want := daily.Target(s.solver.Dictionary(), day, "pepper")
	rec = do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: want})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, game.StateWon, decode[game.Turn](t, rec).State)

	// Same day through /game/new.
	rec = do(t, s, http.MethodPost, "/game/new", "", newGameReq{Mode: game.ModeDaily})
	require.Equal(t, http.StatusOK, rec.Code)
	g = decode[newGameRes](t, rec)
	rec = do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{GameID: g.GameID, Guess: want})
	assert.Equal(t, game.StateWon, decode[game.Turn](t, rec).State)
}

func TestDebugWords(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/debug/words", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]any](t, rec)
	assert.EqualValues(t, len(toyWords), info["words"])
	assert.Equal(t, "CRANE", info["opener"])
}

func TestAutoplayStream(t *testing.T) {
	s := newTestServer(t, Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	g := newFixedGame(t, s, "FJORD")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + g.GameID + "/autoplay?token=" + g.Token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	var turns []game.Turn
	var final *game.Snapshot
	for final == nil {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
		var m streamMsg
		require.NoError(t, conn.ReadJSON(&m))
		switch m.Type {
		case "turn":
			require.NotNil(t, m.Turn)
			turns = append(turns, *m.Turn)
		case "done":
			final = m.Game
		default:
			t.Fatalf("unexpected message %+v", m)
		}
	}
	require.NotEmpty(t, turns)
	assert.Equal(t, "CRANE", turns[0].Guess)
	assert.Equal(t, "FJORD", turns[len(turns)-1].Guess)
	assert.Equal(t, game.StateWon, final.State)
	assert.Equal(t, "FJORD", final.Answer)
	assert.Len(t, final.Turns, len(turns))

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestAutoplayRequiresToken(t *testing.T) {
	s := newTestServer(t, Options{})
	g := newFixedGame(t, s, "FJORD")
	rec := do(t, s, http.MethodGet, "/game/"+g.GameID+"/autoplay", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/game/"+g.GameID+"/autoplay?delay=soon", g.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
