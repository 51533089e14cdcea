// internal/solver/pattern.go
//
// Feedback types and the pattern space.
// Defines:
//   - LetterStatus: per-position outcome of comparing a guessed letter to a target.
//   - Pattern: the ordered statuses for a whole guess.
//   - PatternSpace: every distinct Pattern for one word length, with a stable index.
//
// Index encoding (mixed radix, position 0 least significant):
//   index = Σ rank(p[i]) * 3^i   where rank(None)=0, rank(Contains)=1, rank(Match)=2
//
// The same encoding is used when enumerating the space and when the entropy
// engine buckets a freshly evaluated pattern.

package solver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LetterStatus is the outcome for one letter. Its numeric value is its rank
// in the pattern index encoding.
type LetterStatus uint8

const (
	None     LetterStatus = iota // letter absent (or budget used up)
	Contains                     // letter present elsewhere
	Match                        // letter in the right position
)

// statusCount is the radix of the pattern encoding.
const statusCount = 3

func (s LetterStatus) String() string {
	switch s {
	case Match:
		return "match"
	case Contains:
		return "contains"
	default:
		return "none"
	}
}

// glyph is the compact one-character form used by Pattern.String and ParsePattern.
func (s LetterStatus) glyph() byte {
	switch s {
	case Match:
		return 'G'
	case Contains:
		return 'Y'
	default:
		return '-'
	}
}

// Pattern is the per-letter feedback for one guess.
type Pattern []LetterStatus

// AllMatch reports whether every position is Match (the guess was the target).
func (p Pattern) AllMatch() bool {
	if len(p) == 0 {
		return false
	}
	for _, s := range p {
		if s != Match {
			return false
		}
	}
	return true
}

// Equal reports whether p and q hold the same statuses.
func (p Pattern) Equal(q Pattern) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// String renders the pattern as G (match), Y (contains) and - (none).
func (p Pattern) String() string {
	b := make([]byte, len(p))
	for i, s := range p {
		b[i] = s.glyph()
	}
	return string(b)
}

// MarshalJSON writes the statuses as an array of ranks, e.g. [2,2,2,0,2].
func (p Pattern) MarshalJSON() ([]byte, error) {
	ranks := make([]int, len(p))
	for i, s := range p {
		ranks[i] = int(s)
	}
	return json.Marshal(ranks)
}

// UnmarshalJSON accepts either the rank array or the String form.
func (p *Pattern) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := ParsePattern(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var ranks []int
	if err := json.Unmarshal(b, &ranks); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	out := make(Pattern, len(ranks))
	for i, r := range ranks {
		if r < int(None) || r > int(Match) {
			return fmt.Errorf("%w: rank %d at position %d", ErrInvalidPattern, r, i)
		}
		out[i] = LetterStatus(r)
	}
	*p = out
	return nil
}

// ParsePattern reads the String form back. Lowercase g/y and '.', 'x', '_' for
// none are accepted as well.
func ParsePattern(s string) (Pattern, error) {
	p := make(Pattern, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'G', 'g':
			p[i] = Match
		case 'Y', 'y':
			p[i] = Contains
		case '-', '.', 'x', 'X', '_':
			p[i] = None
		default:
			return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidPattern, s[i], i)
		}
	}
	return p, nil
}

// PatternSpace holds all 3^L patterns for word length L. It is built once and
// only read afterwards, so it can be shared between goroutines without locks.
type PatternSpace struct {
	length   int
	weights  []int // weights[i] = 3^i
	patterns []Pattern
}

// NewPatternSpace enumerates every pattern for words of the given length.
func NewPatternSpace(length int) *PatternSpace {
	if length < 1 {
		panic(fmt.Sprintf("solver: invalid word length %d", length))
	}
	weights := make([]int, length)
	size := 1
	for i := 0; i < length; i++ {
		weights[i] = size
		size *= statusCount
	}
	ps := &PatternSpace{length: length, weights: weights}
	ps.patterns = make([]Pattern, size)
	for idx := range ps.patterns {
		ps.patterns[idx] = ps.Decode(idx)
	}
	return ps
}

// WordLength is L.
func (ps *PatternSpace) WordLength() int { return ps.length }

// Len is the number of distinct patterns (3^L).
func (ps *PatternSpace) Len() int { return len(ps.patterns) }

// At returns the pattern stored at idx. The returned slice must not be modified.
func (ps *PatternSpace) At(idx int) Pattern { return ps.patterns[idx] }

// Index encodes p into [0, Len()).
func (ps *PatternSpace) Index(p Pattern) int {
	idx := 0
	for i, s := range p {
		idx += int(s) * ps.weights[i]
	}
	return idx
}

// Decode is the inverse of Index. It allocates a fresh Pattern.
func (ps *PatternSpace) Decode(idx int) Pattern {
	p := make(Pattern, ps.length)
	for i := 0; i < ps.length; i++ {
		p[i] = LetterStatus(idx % statusCount)
		idx /= statusCount
	}
	return p
}

// describe is used in log lines.
func describe(guess string, p Pattern) string {
	var sb strings.Builder
	sb.WriteString(guess)
	sb.WriteByte('=')
	sb.WriteString(p.String())
	return sb.String()
}
