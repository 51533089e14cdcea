// internal/game/engine.go
//
// Core game engine for a single Wordle session.
// Responsibilities:
//   - Create new games with a hidden target chosen at random, by date, or fixed.
//   - Validate and apply guesses (alphabetic, length, dictionary).
//   - Score guesses with solver.Evaluate and feed the feedback to the
//     game's solver session so the bot always knows what the player knows.
//   - Track state transitions: playing → won/lost.
//   - Answer bot-guess requests without revealing the target to the solver.
//
// A Game is safe for concurrent use; every method takes the game's lock.

package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/solver"
)

var (
	ErrFinished     = errors.New("game finished")
	ErrInvalidGuess = errors.New("invalid guess")
)

// Game holds the state of a single game session.
type Game struct {
	ID        string
	Mode      Mode
	Rows      int // maximum number of guesses
	Cols      int // letters per word
	CreatedAt time.Time

	mu       sync.Mutex
	answer   string
	turns    []Turn
	finished bool
	won      bool
	solver   *solver.Solver
	session  *solver.Session

	// lastActive is unix nanoseconds of the last accepted guess. It is read
	// without mu so that idle sweeps never wait behind a running bot solve.
	lastActive atomic.Int64
}

// New starts a game against answer. An empty answer picks a uniformly random
// dictionary word.
func New(s *solver.Solver, answer string, mode Mode) (*Game, error) {
	dict := s.Dictionary()
	ans := strings.ToUpper(strings.TrimSpace(answer))
	if ans == "" {
		ans = dict.Random()
		mode = ModeRandom
	} else if err := s.ValidateGuess(ans); err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	now := time.Now().UTC()
	g := &Game{
		ID:        uuid.NewString(),
		Mode:      mode,
		Rows:      s.MaxAttempts(),
		Cols:      dict.WordLength(),
		CreatedAt: now,
		answer:    ans,
		solver:    s,
		session:   s.NewSession(),
	}
	g.lastActive.Store(now.UnixNano())
	return g, nil
}

// Normalize trims and uppercases a user-supplied guess.
func Normalize(guess string) string {
	return strings.ToUpper(strings.TrimSpace(guess))
}

// ApplyGuess validates and scores a guess, mutating the game state.
//
// Validation rules:
//   - Game must not be finished.
//   - Guess must be alphabetic, exactly Cols letters and in the dictionary.
//
// State transitions:
//   - All letters hit → won.
//   - Otherwise, once Rows guesses are used → lost.
func (g *Game) ApplyGuess(guess string) (Turn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applyLocked(Normalize(guess), false)
}

func (g *Game) applyLocked(guess string, bot bool) (Turn, error) {
	if g.finished {
		return Turn{}, ErrFinished
	}
	if len(guess) != g.Cols {
		return Turn{}, fmt.Errorf("%w: %q has %d letters, want %d", solver.ErrInvalidGuessLength, guess, len(guess), g.Cols)
	}
	if !isAlpha(guess) {
		return Turn{}, fmt.Errorf("%w: %q", ErrInvalidGuess, guess)
	}

	if err := g.solver.ValidateGuess(guess); err != nil {
		return Turn{}, err
	}

	p := solver.Evaluate(guess, g.answer)
	if err := g.session.Submit(guess, p); err != nil {
		return Turn{}, err
	}

	turn := Turn{
		Guess:     guess,
		Marks:     marksFor(p),
		Pattern:   p,
		Remaining: g.session.Remaining(),
		Attempts:  g.session.Attempts(),
		Bot:       bot,
	}
	if p.AllMatch() {
		g.finished, g.won = true, true
	} else if turn.Attempts >= g.Rows {
		g.finished = true
	}
	turn.State = g.stateLocked()
	g.turns = append(g.turns, turn)
	g.lastActive.Store(time.Now().UnixNano())

	if g.finished {
		log.Info().
			Str("gameId", g.ID).
			Str("state", string(turn.State)).
			Int("attempts", turn.Attempts).
			Msg("game finished")
	}
	return turn, nil
}

// BotGuess asks the solver for the next guess without submitting it.
func (g *Game) BotGuess(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished {
		return "", ErrFinished
	}
	return g.session.NextGuess(ctx)
}

// BotTurn computes the bot's next guess and plays it.
func (g *Game) BotTurn(ctx context.Context) (Turn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished {
		return Turn{}, ErrFinished
	}
	guess, err := g.session.NextGuess(ctx)
	if err != nil {
		return Turn{}, err
	}
	return g.applyLocked(guess, true)
}

// Snapshot is a read-only view of a game. Answer is only set once the game is over.
type Snapshot struct {
	ID        string    `json:"gameId"`
	Mode      Mode      `json:"mode"`
	State     State     `json:"state"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Turns     []Turn    `json:"turns"`
	Remaining int       `json:"remaining"`
	Answer    string    `json:"answer,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		ID:        g.ID,
		Mode:      g.Mode,
		State:     g.stateLocked(),
		Rows:      g.Rows,
		Cols:      g.Cols,
		Turns:     append([]Turn{}, g.turns...),
		Remaining: g.session.Remaining(),
		CreatedAt: g.CreatedAt,
	}
	if g.finished {
		s.Answer = g.answer
	}
	return s
}

// State reports the coarse state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// UpdatedAt is the time of the last accepted guess (or creation). It does
// not take the game lock.
func (g *Game) UpdatedAt() time.Time {
	return time.Unix(0, g.lastActive.Load()).UTC()
}

func (g *Game) stateLocked() State {
	if g.finished {
		if g.won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
