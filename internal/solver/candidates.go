package solver

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/robalobadob/wordlebot/internal/words"
)

// CandidateSet is the subset of the dictionary still consistent with every
// piece of feedback. Members are tracked as a bitset over dictionary indices.
// A CandidateSet is never modified once built; Filter returns a new one.
type CandidateSet struct {
	dict *words.Dictionary
	bits *bitset.BitSet
}

// FullSet contains every dictionary word.
func FullSet(dict *words.Dictionary) *CandidateSet {
	n := uint(dict.Len())
	b := bitset.New(n)
	b.FlipRange(0, n)
	return &CandidateSet{dict: dict, bits: b}
}

// NewCandidateSet builds a set from explicit members. Words not in the
// dictionary are reported with ErrUnknownWord.
func NewCandidateSet(dict *words.Dictionary, members ...string) (*CandidateSet, error) {
	b := bitset.New(uint(dict.Len()))
	for _, w := range members {
		i := dict.Index(w)
		if i < 0 {
			return nil, ErrUnknownWord
		}
		b.Set(uint(i))
	}
	return &CandidateSet{dict: dict, bits: b}, nil
}

// Len is the number of candidates.
func (c *CandidateSet) Len() int { return int(c.bits.Count()) }

// Contains reports whether w is still a candidate.
func (c *CandidateSet) Contains(w string) bool {
	i := c.dict.Index(w)
	return i >= 0 && c.bits.Test(uint(i))
}

// Words lists the candidates in dictionary order.
func (c *CandidateSet) Words() []string {
	out := make([]string, 0, c.Len())
	for i, ok := c.bits.NextSet(0); ok; i, ok = c.bits.NextSet(i + 1) {
		out = append(out, c.dict.Word(int(i)))
	}
	return out
}

// First returns the first candidate in dictionary order.
func (c *CandidateSet) First() (string, bool) {
	i, ok := c.bits.NextSet(0)
	if !ok {
		return "", false
	}
	return c.dict.Word(int(i)), true
}

// Filter keeps the candidates consistent with guess having produced p.
// The receiver is left untouched.
func (c *CandidateSet) Filter(guess string, p Pattern) *CandidateSet {
	next := bitset.New(uint(c.dict.Len()))
	for i, ok := c.bits.NextSet(0); ok; i, ok = c.bits.NextSet(i + 1) {
		if IsConsistent(c.dict.Word(int(i)), guess, p) {
			next.Set(i)
		}
	}
	return &CandidateSet{dict: c.dict, bits: next}
}
