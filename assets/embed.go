package assets

import (
	"embed"
	"io/fs"
)

//go:embed words.txt
var FS embed.FS

// Dictionary opens the embedded default word list (one word per line).
func Dictionary() (fs.File, error) {
	return FS.Open("words.txt")
}
