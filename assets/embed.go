package assets

import (
	"embed"
)

//go:embed words.json
var FS embed.FS

// DefaultWords returns the embedded word list (a JSON array of strings).
func DefaultWords() ([]byte, error) {
	return FS.ReadFile("words.json")
}
