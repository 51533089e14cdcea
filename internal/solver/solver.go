// internal/solver/solver.go
//
// Solver and per-game Session.
//
// A Solver holds everything that is fixed for one dictionary: the word list,
// the pattern space, the entropy engine, the opening word and the attempt
// limit. It is immutable and may be shared by any number of sessions.
//
// A Session is the mutable part: the candidate set and the attempt counter.
// Submit replaces the candidate set with a filtered copy; NextGuess only
// reads it, so a cancelled or failed NextGuess leaves the session unchanged.
// A Session is not safe for concurrent use; callers serialize access.

package solver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/words"
)

// DefaultMaxAttempts is the number of guesses in a standard game.
const DefaultMaxAttempts = 6

// Config carries the per-solver constants.
type Config struct {
	// Opener is returned as the first guess while no feedback exists. It must
	// be a dictionary word. See openers.Resolve for computing it.
	Opener string
	// MaxAttempts bounds the attempt counter. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// Workers sizes the entropy worker pool. Zero means runtime.NumCPU().
	Workers int
}

// Solver is the immutable, shareable part of the guess optimizer.
type Solver struct {
	dict        *words.Dictionary
	space       *PatternSpace
	engine      *Engine
	opener      string
	maxAttempts int
}

// New builds a Solver for dict.
func New(dict *words.Dictionary, cfg Config) (*Solver, error) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("solver: max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	if !dict.Contains(cfg.Opener) {
		return nil, fmt.Errorf("solver: opening word %q: %w", cfg.Opener, ErrUnknownWord)
	}
	space := NewPatternSpace(dict.WordLength())
	return &Solver{
		dict:        dict,
		space:       space,
		engine:      NewEngine(dict, space, cfg.Workers),
		opener:      cfg.Opener,
		maxAttempts: cfg.MaxAttempts,
	}, nil
}

func (s *Solver) Dictionary() *words.Dictionary { return s.dict }
func (s *Solver) Patterns() *PatternSpace       { return s.space }
func (s *Solver) Engine() *Engine               { return s.engine }
func (s *Solver) Opener() string                { return s.opener }
func (s *Solver) MaxAttempts() int              { return s.maxAttempts }

// ValidateGuess checks length and dictionary membership. guess must be uppercase.
func (s *Solver) ValidateGuess(guess string) error {
	if len(guess) != s.dict.WordLength() {
		return fmt.Errorf("%w: %q has %d letters, want %d", ErrInvalidGuessLength, guess, len(guess), s.dict.WordLength())
	}
	if !s.dict.Contains(guess) {
		return fmt.Errorf("%w: %q", ErrUnknownWord, guess)
	}
	return nil
}

// NewSession starts a session with every dictionary word as a candidate.
func (s *Solver) NewSession() *Session {
	return &Session{solver: s, candidates: FullSet(s.dict)}
}

// Session tracks the candidates and attempts for one game.
type Session struct {
	solver     *Solver
	candidates *CandidateSet
	attempts   int
	err        error // sticky once feedback turned out inconsistent
}

// Candidates is the current candidate set. It is never modified in place.
func (ss *Session) Candidates() *CandidateSet { return ss.candidates }

// Remaining is the number of candidates left.
func (ss *Session) Remaining() int { return ss.candidates.Len() }

// Attempts is the number of feedback submissions so far.
func (ss *Session) Attempts() int { return ss.attempts }

// Err reports whether the session has been invalidated by inconsistent feedback.
func (ss *Session) Err() error { return ss.err }

// Submit records that guessing guess produced p. On success the candidate
// set is replaced by its filtered copy and the attempt counter increments.
// If no candidate survives, the session is invalidated and every later call
// returns ErrInconsistentFeedback.
func (ss *Session) Submit(guess string, p Pattern) error {
	if ss.err != nil {
		return ss.err
	}
	if err := ss.solver.ValidateGuess(guess); err != nil {
		return err
	}
	if len(p) != len(guess) {
		return fmt.Errorf("%w: %d statuses for a %d-letter guess", ErrInvalidPattern, len(p), len(guess))
	}
	if ss.attempts >= ss.solver.maxAttempts {
		return ErrAttemptsExhausted
	}

	next := ss.candidates.Filter(guess, p)
	ss.attempts++
	if next.Len() == 0 {
		ss.err = fmt.Errorf("%w: %s after %d attempts", ErrInconsistentFeedback, describe(guess, p), ss.attempts)
		log.Error().Err(ss.err).Msg("session invalidated")
		return ss.err
	}
	log.Debug().
		Str("feedback", describe(guess, p)).
		Int("before", ss.candidates.Len()).
		Int("after", next.Len()).
		Int("attempt", ss.attempts).
		Msg("candidates filtered")
	ss.candidates = next
	return nil
}

// NextGuess picks the next guess:
//  1. no feedback yet: the configured opening word;
//  2. one candidate left: that candidate;
//  3. last allowed attempt: a remaining candidate (first in dictionary order);
//  4. otherwise the dictionary word with the most expected information
//     against the current candidates.
func (ss *Session) NextGuess(ctx context.Context) (string, error) {
	if ss.err != nil {
		return "", ss.err
	}
	s := ss.solver
	n := ss.candidates.Len()
	switch {
	case n == 0:
		return "", ErrInconsistentFeedback
	case n == s.dict.Len():
		return s.opener, nil
	case n == 1, ss.attempts >= s.maxAttempts-1:
		w, _ := ss.candidates.First()
		return w, nil
	}
	best, err := s.engine.Best(ctx, ss.candidates)
	if err != nil {
		return "", fmt.Errorf("solver: ranking guesses: %w", err)
	}
	return best.Word, nil
}
