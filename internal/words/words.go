// internal/words/words.go
//
// Dictionary management for the solver and the game engine.
//
// Responsibilities:
//   - Load a word list from a file (one token per line) or fall back to the
//     embedded default list in assets.
//   - Normalize to uppercase and drop malformed or duplicate entries before
//     they reach the solver.
//   - Provide an immutable Dictionary with index lookups and random target
//     selection.
//
// Constraints:
//   • Every word has exactly the configured length and only letters A–Z.
//   • Word order is the order of first appearance in the source list.
//   • A Dictionary is never modified after construction.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/assets"
)

// DefaultLength is the word length of the embedded list.
const DefaultLength = 5

var (
	ErrMalformedWord = errors.New("words: malformed word")
	ErrDuplicateWord = errors.New("words: duplicate word")
	ErrEmpty         = errors.New("words: dictionary is empty")
)

// Dictionary is a fixed set of unique, same-length uppercase words.
type Dictionary struct {
	length int
	list   []string
	index  map[string]int
}

// New validates list and builds a Dictionary. Unlike Load it does not
// normalize or skip anything: a malformed or duplicate entry is an error.
func New(length int, list []string) (*Dictionary, error) {
	if len(list) == 0 {
		return nil, ErrEmpty
	}
	d := &Dictionary{
		length: length,
		list:   make([]string, 0, len(list)),
		index:  make(map[string]int, len(list)),
	}
	for _, w := range list {
		if !valid(w, length) {
			return nil, fmt.Errorf("%w: %q", ErrMalformedWord, w)
		}
		if _, dup := d.index[w]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, w)
		}
		d.index[w] = len(d.list)
		d.list = append(d.list, w)
	}
	return d, nil
}

// Load reads one word per line from r. Blank lines and lines starting with
// '#' are skipped; words are trimmed and uppercased. Entries of the wrong
// length, non-letters and repeats are dropped with a warning.
func Load(r io.Reader, length int) (*Dictionary, error) {
	var (
		out      []string
		seen     = make(map[string]struct{})
		rejected int
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		w := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if !valid(w, length) {
			rejected++
			log.Debug().Int("line", line).Str("word", w).Msg("dropping malformed word")
			continue
		}
		if _, dup := seen[w]; dup {
			rejected++
			log.Debug().Int("line", line).Str("word", w).Msg("dropping duplicate word")
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("words: read: %w", err)
	}
	if rejected > 0 {
		log.Warn().Int("rejected", rejected).Int("kept", len(out)).Msg("word list contained invalid entries")
	}
	return New(length, out)
}

// LoadFile loads a dictionary from path. An empty path selects the embedded list.
func LoadFile(path string, length int) (*Dictionary, error) {
	if path == "" {
		return Default(length)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	defer f.Close()
	return Load(f, length)
}

// Default loads the embedded dictionary.
func Default(length int) (*Dictionary, error) {
	f, err := assets.Dictionary()
	if err != nil {
		return nil, fmt.Errorf("words: embedded list: %w", err)
	}
	defer f.Close()
	return Load(f, length)
}

// valid reports whether w is exactly length uppercase ASCII letters.
func valid(w string, length int) bool {
	if len(w) != length {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}

// WordLength is L.
func (d *Dictionary) WordLength() int { return d.length }

// Len is the number of words.
func (d *Dictionary) Len() int { return len(d.list) }

// Word returns the i-th word in dictionary order.
func (d *Dictionary) Word(i int) string { return d.list[i] }

// Words returns a copy of the word list in dictionary order.
func (d *Dictionary) Words() []string {
	return append([]string(nil), d.list...)
}

// Index returns the position of w, or -1 if w is not a member.
func (d *Dictionary) Index(w string) int {
	if i, ok := d.index[w]; ok {
		return i
	}
	return -1
}

// Contains reports whether w is a member. w must already be uppercase.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.index[w]
	return ok
}

// Random returns a uniformly random member using crypto/rand.
func (d *Dictionary) Random() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.list))))
	if err != nil {
		// crypto/rand failing is not recoverable in any useful way here.
		panic(fmt.Sprintf("words: crypto/rand: %v", err))
	}
	return d.list[n.Int64()]
}
