// Command opener ranks every dictionary word as a first guess, prints the
// best few and stores the winner in the opener cache the server reads.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/robalobadob/wordlebot/internal/openers"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/words"
)

type Config struct {
	dictionaryFile string
	wordLength     int
	dbPath         string
	workers        int
	top            int
	noStore        bool
	logLevel       string
}

// Load loads the configs from the given arguments
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("opener", flag.ContinueOnError)
	fs.StringVar(&c.dictionaryFile, "dictionary-file", "", "word list file; empty uses the built-in list")
	fs.IntVar(&c.wordLength, "word-length", words.DefaultLength, "letters per word")
	fs.StringVar(&c.dbPath, "db-path", "./data/wordlebot.db", "SQLite file for the opening-word cache")
	fs.IntVar(&c.workers, "workers", 0, "worker pool size; 0 means one per CPU")
	fs.IntVar(&c.top, "top", 10, "how many ranked words to print")
	fs.BoolVar(&c.noStore, "dry-run", false, "print only; do not write the cache")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if c.top < 0 {
		return fmt.Errorf("-top must not be negative, got %d", c.top)
	}
	return nil
}

func main() {
	cfg := &Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(cfg.logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := words.LoadFile(cfg.dictionaryFile, cfg.wordLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := solver.NewEngine(dict, solver.NewPatternSpace(dict.WordLength()), cfg.workers)
	bar := progressbar.Default(int64(dict.Len()), "ranking")
	engine.OnWordDone = func() { _ = bar.Add(1) }

	start := time.Now()
	results, err := engine.Rank(ctx, solver.FullSet(dict))
	_ = bar.Finish()
	if err != nil {
		log.Fatal().Err(err).Msg("ranking failed")
	}
	solver.SortResults(results)

	fmt.Printf("%d words ranked in %s with %d workers\n", len(results), time.Since(start).Round(time.Millisecond), engine.Workers())
	for i, r := range results[:min(cfg.top, len(results))] {
		fmt.Printf("%3d. %s  %.4f bits\n", i+1, r.Word, r.Bits)
	}

	if cfg.noStore {
		return
	}
	cache, err := openers.Open(cfg.dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open cache")
	}
	best := results[0]
	err = cache.Put(ctx, openers.Entry{
		Fingerprint:    openers.Fingerprint(dict),
		Word:           best.Word,
		Bits:           best.Bits,
		WordLength:     dict.WordLength(),
		DictionarySize: dict.Len(),
	})
	// log.Fatal exits without running defers.
	if cerr := cache.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal().Err(err).Msg("store opener")
	}
	log.Info().Str("word", best.Word).Str("db", cfg.dbPath).Msg("opening word stored")
}
