// internal/openers/cache.go
//
// The opening word depends only on the dictionary, yet ranking every word
// against the full candidate set is the most expensive solve there is. The
// result is therefore computed once per dictionary and stored in SQLite,
// keyed by a fingerprint of the word list.

package openers

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/words"
)

// Entry is one cached opener.
type Entry struct {
	Fingerprint    string
	Word           string
	Bits           float64
	WordLength     int
	DictionarySize int
	ComputedAt     time.Time
}

// Cache stores openers in a SQLite database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path and migrates it.
func Open(path string) (*Cache, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("openers: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("openers: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get looks up the opener for a fingerprint. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, fingerprint string) (e Entry, ok bool, err error) {
	var computed string
	err = c.db.QueryRowContext(ctx, `
        SELECT fingerprint, word, bits, word_length, dictionary_size, computed_at
        FROM openers WHERE fingerprint=?`, fingerprint,
	).Scan(&e.Fingerprint, &e.Word, &e.Bits, &e.WordLength, &e.DictionarySize, &computed)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("openers: get %s: %w", fingerprint, err)
	}
	e.ComputedAt, _ = time.Parse(time.RFC3339, computed)
	return e, true, nil
}

// Put stores e, replacing any previous entry for the same fingerprint.
func (c *Cache) Put(ctx context.Context, e Entry) error {
	if e.ComputedAt.IsZero() {
		e.ComputedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO openers
            (fingerprint, word, bits, word_length, dictionary_size, computed_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		e.Fingerprint, e.Word, e.Bits, e.WordLength, e.DictionarySize,
		e.ComputedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("openers: put %s: %w", e.Fingerprint, err)
	}
	return nil
}

// Fingerprint identifies a dictionary by its word length and word set. The
// order of words in the source file does not matter.
func Fingerprint(dict *words.Dictionary) string {
	list := dict.Words()
	sort.Strings(list)
	h, _ := blake2b.New256(nil)
	h.Write([]byte(strconv.Itoa(dict.WordLength())))
	h.Write([]byte{'\n'})
	h.Write([]byte(strings.Join(list, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

// Compute ranks every word against the full dictionary and returns the best.
func Compute(ctx context.Context, engine *solver.Engine, dict *words.Dictionary) (Entry, error) {
	start := time.Now()
	best, err := engine.Best(ctx, solver.FullSet(dict))
	if err != nil {
		return Entry{}, fmt.Errorf("openers: compute: %w", err)
	}
	log.Info().
		Str("word", best.Word).
		Float64("bits", best.Bits).
		Int("dictionary", dict.Len()).
		Dur("took", time.Since(start)).
		Msg("computed opening word")
	return Entry{
		Fingerprint:    Fingerprint(dict),
		Word:           best.Word,
		Bits:           best.Bits,
		WordLength:     dict.WordLength(),
		DictionarySize: dict.Len(),
		ComputedAt:     time.Now(),
	}, nil
}

// Resolve decides the opening word:
//  1. configured, when non-empty (must be a dictionary word);
//  2. the cached entry for this dictionary, when c is non-nil and has one;
//  3. otherwise Compute, storing the result in c.
func Resolve(ctx context.Context, c *Cache, engine *solver.Engine, dict *words.Dictionary, configured string) (string, error) {
	if w := strings.ToUpper(strings.TrimSpace(configured)); w != "" {
		if !dict.Contains(w) {
			return "", fmt.Errorf("openers: configured opening word %q: %w", w, solver.ErrUnknownWord)
		}
		return w, nil
	}

	fp := Fingerprint(dict)
	if c != nil {
		e, ok, err := c.Get(ctx, fp)
		if err != nil {
			log.Warn().Err(err).Msg("opener cache unavailable; computing")
		} else if ok && dict.Contains(e.Word) {
			log.Info().Str("word", e.Word).Float64("bits", e.Bits).Msg("opening word from cache")
			return e.Word, nil
		}
	}

	e, err := Compute(ctx, engine, dict)
	if err != nil {
		return "", err
	}
	if c != nil {
		if err := c.Put(ctx, e); err != nil {
			log.Warn().Err(err).Msg("store opening word")
		}
	}
	return e.Word, nil
}
