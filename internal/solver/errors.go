package solver

import "errors"

var (
	// ErrInvalidGuessLength is returned when a guess is not exactly L letters.
	ErrInvalidGuessLength = errors.New("invalid guess length")

	// ErrUnknownWord is returned when a guess (or the opening word) is not in the dictionary.
	ErrUnknownWord = errors.New("not in word list")

	// ErrInvalidPattern is returned for feedback of the wrong length or with unknown statuses.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInconsistentFeedback means no dictionary word could have produced the
	// feedback received so far. The session cannot continue.
	ErrInconsistentFeedback = errors.New("feedback inconsistent with every dictionary word")

	// ErrAttemptsExhausted is returned when feedback is submitted after the last attempt.
	ErrAttemptsExhausted = errors.New("no attempts left")
)
