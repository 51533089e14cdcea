package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/config"
	"github.com/robalobadob/wordlebot/internal/httpserver"
	"github.com/robalobadob/wordlebot/internal/openers"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/store"
	"github.com/robalobadob/wordlebot/internal/words"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
	sweepInterval           = 5 * time.Minute
	// openerTimeout bounds the one full-dictionary ranking done on a cold cache.
	openerTimeout = 10 * time.Minute
)

func main() {
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := words.LoadFile(cfg.DictionaryFile, cfg.WordLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", dict.Len()).Int("length", dict.WordLength()).Msg("dictionary loaded")

	opener := resolveOpener(cfg, dict)

	sv, err := solver.New(dict, solver.Config{
		Opener:      opener,
		MaxAttempts: cfg.MaxAttempts,
		Workers:     cfg.Workers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build solver")
	}

	mem := store.NewMemoryStore()
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go store.RunSweeper(sweepCtx, mem, sweepInterval, cfg.SessionTTL)

	api := httpserver.New(mem, sv, httpserver.Options{
		SolveTimeout: cfg.SolveTimeout,
		SessionTTL:   cfg.SessionTTL,
		JWTSecret:    cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
	})
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.Handler(),
	}
	idleConnsClosed := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		stopSweep()
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown")
		}
		cancel()
		close(idleConnsClosed)
	}()

	log.Info().Str("port", cfg.Port).Str("opener", opener).Msg("starting wordlebot")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server exited")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shut down")
}

// resolveOpener returns the configured opening word, or the cached one for
// this dictionary, computing and caching it when neither exists. A cache that
// cannot be opened only costs the computation.
func resolveOpener(cfg *config.Config, dict *words.Dictionary) string {
	var cache *openers.Cache
	if cfg.OpeningWord == "" && cfg.DBPath != "" {
		c, err := openers.Open(cfg.DBPath)
		if err != nil {
			log.Warn().Err(err).Str("db", cfg.DBPath).Msg("opener cache disabled")
		} else {
			cache = c
			defer cache.Close()
		}
	}

	engine := solver.NewEngine(dict, solver.NewPatternSpace(dict.WordLength()), cfg.Workers)
	ctx, cancel := context.WithTimeout(context.Background(), openerTimeout)
	defer cancel()
	w, err := openers.Resolve(ctx, cache, engine, dict, cfg.OpeningWord)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to determine opening word")
	}
	return w
}
