// internal/words/load.go
//
// Readers for external word lists.
//   - FormatJSON:  a JSON array of strings, e.g. ["crane","slate"].
//   - FormatLines: one word per line; blank lines and "#" comments are skipped.

package words

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the on-disk layout of a word list.
type Format int

const (
	FormatLines Format = iota
	FormatJSON
)

// FormatFor guesses the format from a file extension (.json → JSON, else lines).
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatLines
}

// Load reads a list from r and appends it to, or replaces, the current contents.
func (d *Dictionary) Load(r io.Reader, format Format, appendMode bool) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read word list: %w", err)
	}
	var list []string
	switch format {
	case FormatJSON:
		if list, err = decodeJSON(raw); err != nil {
			return err
		}
	default:
		if list, err = readLines(bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("scan word list: %w", err)
		}
	}
	return d.replace(list, appendMode)
}

// LoadFile opens path and loads it with the format implied by its extension.
func (d *Dictionary) LoadFile(path string, appendMode bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.Load(f, FormatFor(path), appendMode); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func decodeJSON(raw []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}
	return list, nil
}

// readLines collects non-blank, non-comment lines.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
