// internal/solver/feedback.go
//
// Feedback evaluation and the candidate filter.
//
// Both functions work on uppercase A–Z words of equal length and keep their
// letter counts in a fresh [26]int per call, so they are safe to run from
// many goroutines at once.

package solver

// letterIndex maps an uppercase ASCII letter to 0..25.
func letterIndex(b byte) int { return int(b - 'A') }

// Evaluate scores guess against target with the standard two-pass rule.
//
// Pass 1 marks exact matches and consumes one count of that letter.
// Pass 2 walks the remaining positions left to right: a letter with count
// left is Contains (and consumes it), otherwise None. Pass 1 must complete
// before pass 2 starts so that a later Match is not stolen by an earlier
// Contains.
func Evaluate(guess, target string) Pattern {
	p := make(Pattern, len(guess))
	evaluateInto(p, guess, target)
	return p
}

// evaluateInto is Evaluate writing into a caller-owned buffer of len(guess).
func evaluateInto(p Pattern, guess, target string) {
	var counts [26]int
	for i := 0; i < len(target); i++ {
		counts[letterIndex(target[i])]++
	}

	for i := 0; i < len(guess); i++ {
		if guess[i] == target[i] {
			p[i] = Match
			counts[letterIndex(guess[i])]--
		} else {
			p[i] = None
		}
	}

	for i := 0; i < len(guess); i++ {
		if p[i] == Match {
			continue
		}
		j := letterIndex(guess[i])
		if counts[j] > 0 {
			p[i] = Contains
			counts[j]--
		}
	}
}

// IsConsistent reports whether candidate could be the hidden target, given that
// guessing guess produced p. It returns the same answer as
// Evaluate(guess, candidate).Equal(p) without building a pattern, and stops at
// the first position that rules the candidate out.
func IsConsistent(candidate, guess string, p Pattern) bool {
	if len(candidate) != len(guess) || len(p) != len(guess) {
		return false
	}

	var counts [26]int
	for i := 0; i < len(candidate); i++ {
		counts[letterIndex(candidate[i])]++
	}

	// Match positions first: they consume budget before any Contains is judged.
	for i := 0; i < len(guess); i++ {
		if p[i] != Match {
			continue
		}
		if candidate[i] != guess[i] {
			return false
		}
		counts[letterIndex(guess[i])]--
	}

	for i := 0; i < len(guess); i++ {
		j := letterIndex(guess[i])
		switch p[i] {
		case Match:
			continue
		case Contains:
			if candidate[i] == guess[i] || counts[j] == 0 {
				return false
			}
			counts[j]--
		case None:
			// The letter must be used up here, and an equal letter would
			// have scored Match instead.
			if candidate[i] == guess[i] || counts[j] > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
