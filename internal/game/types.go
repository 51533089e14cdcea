// internal/game/types.go
//
// Core type definitions for a game session.
// Defines:
//   - Mark: per-letter result of a guess as sent to clients (hit/present/miss).
//   - State: playing/won/lost.
//   - Turn: everything a caller learns from one submitted guess.

package game

import "github.com/robalobadob/wordlebot/internal/solver"

// Mark represents the evaluation result for a single letter in a guess.
type Mark string

const (
	MarkHit     Mark = "hit"
	MarkPresent Mark = "present"
	MarkMiss    Mark = "miss"
)

// State is the coarse game state.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Mode records how the target was chosen.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeDaily  Mode = "daily"
	ModeFixed  Mode = "fixed"
)

// Turn is the outcome of one guess.
type Turn struct {
	Guess     string         `json:"guess"`
	Marks     []Mark         `json:"marks"`
	Pattern   solver.Pattern `json:"pattern"`   // 0=none, 1=contains, 2=match
	State     State          `json:"state"`
	Remaining int            `json:"remaining"` // candidates left after this guess
	Attempts  int            `json:"attempts"`
	Bot       bool           `json:"bot,omitempty"`
}

// marksFor converts solver statuses to client marks.
func marksFor(p solver.Pattern) []Mark {
	out := make([]Mark, len(p))
	for i, s := range p {
		switch s {
		case solver.Match:
			out[i] = MarkHit
		case solver.Contains:
			out[i] = MarkPresent
		default:
			out[i] = MarkMiss
		}
	}
	return out
}
