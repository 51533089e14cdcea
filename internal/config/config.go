// Package config loads server and CLI settings from flags, with every flag
// also readable from an environment variable of the same name in upper
// snake case (PORT, LOG_LEVEL, OPENING_WORD, ...).
package config

import (
	"fmt"
	"time"

	"github.com/namsral/flag"

	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/words"
)

type Config struct {
	Port     string
	LogLevel string

	// DictionaryFile is a one-word-per-line list. Empty uses the embedded list.
	DictionaryFile string
	WordLength     int
	MaxAttempts    int
	// OpeningWord overrides the cached/computed opener when set.
	OpeningWord string
	DBPath      string
	Workers     int

	SolveTimeout time.Duration
	SessionTTL   time.Duration

	DailySalt    string
	JWTSecret    string
	ClientOrigin string
}

// Load loads the configs from the given arguments
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("wordlebot", flag.ContinueOnError)

	fs.StringVar(&c.Port, "port", "5175", "HTTP listen port")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level")

	fs.StringVar(&c.DictionaryFile, "dictionary-file", "", "word list file; empty uses the built-in list")
	fs.IntVar(&c.WordLength, "word-length", words.DefaultLength, "letters per word")
	fs.IntVar(&c.MaxAttempts, "max-attempts", solver.DefaultMaxAttempts, "guesses per game")
	fs.StringVar(&c.OpeningWord, "opening-word", "", "fixed first guess; empty computes it once and caches it")
	fs.StringVar(&c.DBPath, "db-path", "./data/wordlebot.db", "SQLite file for the opening-word cache")
	fs.IntVar(&c.Workers, "workers", 0, "entropy worker pool size; 0 means one per CPU")

	fs.DurationVar(&c.SolveTimeout, "solve-timeout", 10*time.Second, "upper bound for one bot guess")
	fs.DurationVar(&c.SessionTTL, "session-ttl", 24*time.Hour, "idle games are evicted after this long")

	fs.StringVar(&c.DailySalt, "daily-salt", "local_dev_salt", "salt for the daily word")
	fs.StringVar(&c.JWTSecret, "jwt-secret", "dev_secret_change_me", "HMAC key for game tokens")
	fs.StringVar(&c.ClientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin")

	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch {
	case c.WordLength < 1:
		return fmt.Errorf("config: word-length must be positive, got %d", c.WordLength)
	case c.MaxAttempts < 1:
		return fmt.Errorf("config: max-attempts must be positive, got %d", c.MaxAttempts)
	case c.Workers < 0:
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	case c.SolveTimeout <= 0:
		return fmt.Errorf("config: solve-timeout must be positive, got %s", c.SolveTimeout)
	}
	return nil
}
