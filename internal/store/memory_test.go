package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/solver"
	"github.com/robalobadob/wordlebot/internal/words"
)

func newGame(t *testing.T) *game.Game {
	t.Helper()
	is := is.New(t)
	d, err := words.New(5, []string{"CRANE", "CRATE", "PLUMB"})
	is.NoErr(err)
	s, err := solver.New(d, solver.Config{Opener: "CRANE", Workers: 1})
	is.NoErr(err)
	g, err := game.New(s, "CRATE", game.ModeFixed)
	is.NoErr(err)
	return g
}

func TestSaveGetDelete(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	st := NewMemoryStore()
	g := newGame(t)

	is.NoErr(st.Save(ctx, g))
	is.Equal(st.Len(), 1)

	got, err := st.Get(ctx, g.ID)
	is.NoErr(err)
	is.Equal(got, g)

	is.NoErr(st.Delete(ctx, g.ID))
	_, err = st.Get(ctx, g.ID)
	is.True(errors.Is(err, ErrNotFound))
	is.NoErr(st.Delete(ctx, "missing"))
}

func TestSweepEvictsIdleGames(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	st := NewMemoryStore().(*memory)

	a, b := newGame(t), newGame(t)
	is.NoErr(st.Save(ctx, a))
	is.NoErr(st.Save(ctx, b))

	is.Equal(st.Sweep(ctx, time.Hour), 0) // both just created
	is.Equal(st.Len(), 2)

	st.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	is.Equal(st.Sweep(ctx, time.Hour), 2)
	is.Equal(st.Len(), 0)

	_, err := st.Get(ctx, a.ID)
	is.True(errors.Is(err, ErrNotFound))
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	is := is.New(t)
	st := NewMemoryStore().(*memory)
	is.NoErr(st.Save(context.Background(), newGame(t)))
	st.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, st, time.Millisecond, time.Hour)
		close(done)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for st.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	is.Equal(st.Len(), 0)
}

func TestSweepDoesNotWaitForBotSolve(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	st := NewMemoryStore()

	d, err := words.New(5, []string{"CRATE", "GRATE", "IRATE", "PLUMB", "FJORD"})
	is.NoErr(err)
	s, err := solver.New(d, solver.Config{Opener: "PLUMB", Workers: 1})
	is.NoErr(err)

	// Park the ranking inside the first scored word until released.
	started, release := make(chan struct{}), make(chan struct{})
	var once sync.Once
	s.Engine().OnWordDone = func() {
		once.Do(func() { close(started) })
		<-release
	}

	busy, err := game.New(s, "CRATE", game.ModeFixed)
	is.NoErr(err)
	_, err = busy.ApplyGuess("PLUMB") // four candidates left, so the next guess is ranked
	is.NoErr(err)
	other := newGame(t)
	is.NoErr(st.Save(ctx, busy))
	is.NoErr(st.Save(ctx, other))

	botDone := make(chan error, 1)
	go func() {
		_, err := busy.BotGuess(ctx)
		botDone <- err
	}()
	<-started
	defer func() {
		close(release)
		is.NoErr(<-botDone)
	}()

	swept := make(chan int, 1)
	go func() { swept <- st.Sweep(ctx, time.Hour) }()
	select {
	case n := <-swept:
		is.Equal(n, 0)
	case <-time.After(time.Second):
		t.Fatal("sweep blocked behind a running bot solve")
	}

	got := make(chan *game.Game, 1)
	go func() {
		g, _ := st.Get(ctx, other.ID)
		got <- g
	}()
	select {
	case g := <-got:
		is.Equal(g, other)
	case <-time.After(time.Second):
		t.Fatal("get blocked behind a running bot solve")
	}
}
