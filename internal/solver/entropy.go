// internal/solver/entropy.go
//
// Entropy engine: expected information (in bits) of every dictionary word as
// the next guess, measured against the current candidate set.
//
// For a guess W each candidate c is scored with Evaluate(W, c), the pattern
// is encoded with PatternSpace.Index and a per-pattern counter is bumped.
// With n candidates and k_P candidates behind pattern P:
//
//   bits(W) = Σ_P (k_P/n) * log2(n/k_P)      over patterns with k_P > 0
//
// Ranking fans out one task per dictionary word over a bounded errgroup.
// Tasks only read the dictionary, the pattern space and the candidate list,
// and each writes a single slot of the result slice.

package solver

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordlebot/internal/words"
)

// tieEpsilon is how close two scores must be to count as equal.
const tieEpsilon = 1e-9

// Result is one word's expected information.
type Result struct {
	Word      string  `json:"word"`
	Bits      float64 `json:"bits"`
	Candidate bool    `json:"candidate"` // word is itself still a possible answer
}

// Engine ranks guesses by expected information.
type Engine struct {
	dict    *words.Dictionary
	space   *PatternSpace
	workers int

	// OnWordDone, when set, is called once per scored word from the worker
	// goroutines. It must be safe for concurrent use.
	OnWordDone func()

	// beforeTask runs at the start of every task; tests use it to perturb scheduling.
	beforeTask func(i int)
}

// NewEngine builds an engine. workers <= 0 means runtime.NumCPU().
func NewEngine(dict *words.Dictionary, space *PatternSpace, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{dict: dict, space: space, workers: workers}
}

// Workers is the size of the worker pool.
func (e *Engine) Workers() int { return e.workers }

// ExpectedBits scores a single guess against set.
func (e *Engine) ExpectedBits(word string, set *CandidateSet) float64 {
	return e.score(word, set.Words(), make([]int, e.space.Len()), make(Pattern, e.space.WordLength()))
}

// score does the per-word work. counts and buf are owned by the caller's task.
func (e *Engine) score(word string, candidates []string, counts []int, buf Pattern) float64 {
	n := len(candidates)
	if n == 0 {
		return 0
	}
	for i := range counts {
		counts[i] = 0
	}
	for _, c := range candidates {
		evaluateInto(buf, word, c)
		counts[e.space.Index(buf)]++
	}

	total := float64(n)
	bits := 0.0
	for _, k := range counts {
		if k == 0 {
			continue
		}
		p := float64(k) / total
		bits += p * math.Log2(1/p)
	}
	return bits
}

// Rank scores every dictionary word against set. The slice is in dictionary
// order. Any task failure or context cancellation fails the whole ranking;
// partial results are never returned.
func (e *Engine) Rank(ctx context.Context, set *CandidateSet) ([]Result, error) {
	candidates := set.Words()
	results := make([]Result, e.dict.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.dict.Len(); i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("solver: scoring %s: %v", e.dict.Word(i), r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.beforeTask != nil {
				e.beforeTask(i)
			}
			word := e.dict.Word(i)
			counts := make([]int, e.space.Len())
			buf := make(Pattern, e.space.WordLength())
			results[i] = Result{
				Word:      word,
				Bits:      e.score(word, candidates, counts, buf),
				Candidate: set.Contains(word),
			}
			if e.OnWordDone != nil {
				e.OnWordDone()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Best ranks the dictionary and reduces to the single best guess.
func (e *Engine) Best(ctx context.Context, set *CandidateSet) (Result, error) {
	start := time.Now()
	results, err := e.Rank(ctx, set)
	if err != nil {
		return Result{}, err
	}
	best := results[0]
	for _, r := range results[1:] {
		if better(r, best) {
			best = r
		}
	}
	log.Debug().
		Str("word", best.Word).
		Float64("bits", best.Bits).
		Int("candidates", set.Len()).
		Dur("took", time.Since(start)).
		Msg("entropy ranking done")
	return best, nil
}

// better orders results: more bits first; on a tie a word that is still a
// candidate wins; then the alphabetically smaller word. The order does not
// depend on dictionary order or task scheduling.
func better(a, b Result) bool {
	if d := a.Bits - b.Bits; math.Abs(d) > tieEpsilon {
		return d > 0
	}
	if a.Candidate != b.Candidate {
		return a.Candidate
	}
	return a.Word < b.Word
}

// SortResults orders results best first using the same rule as Best.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool { return better(results[i], results[j]) })
}
