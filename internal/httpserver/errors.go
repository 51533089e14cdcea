package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/store"
)

var (
	errUnauthorized = errors.New("missing game token")
	errForbidden    = errors.New("token does not grant access to this game")
)

// requestError is a 400 with a stable error code.
type requestError struct {
	code string
	err  error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.code
	}
	return e.code + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(code string, err error) error { return &requestError{code: code, err: err} }

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusOf maps domain errors to an HTTP status and a stable error code.
func statusOf(err error) (int, string) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest, re.code
	case errors.Is(err, solver.ErrInvalidGuessLength):
		return http.StatusBadRequest, "invalid_length"
	case errors.Is(err, solver.ErrUnknownWord):
		return http.StatusBadRequest, "unknown_word"
	case errors.Is(err, solver.ErrInvalidPattern):
		return http.StatusBadRequest, "invalid_pattern"
	case errors.Is(err, game.ErrInvalidGuess):
		return http.StatusBadRequest, "invalid_guess"
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrFinished), errors.Is(err, solver.ErrAttemptsExhausted):
		return http.StatusConflict, "finished"
	case errors.Is(err, solver.ErrInconsistentFeedback):
		return http.StatusUnprocessableEntity, "inconsistent_feedback"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("requestId", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	body := errorBody{Error: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		body.Message = ""
	}
	writeJSON(w, status, body)
}
