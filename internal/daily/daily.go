// internal/daily/daily.go
//
// Deterministic "word of the day" selection. Every server sharing a salt and
// a dictionary picks the same target for the same UTC date.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/wordlebot/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as a big-endian integer
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Target is the dictionary word for date.
func Target(dict *words.Dictionary, date time.Time, salt string) string {
	return dict.Word(WordIndex(date, salt, dict.Len()))
}
