// internal/words/words.go
//
// Dictionary of playable words.
//
// Responsibilities:
//   - Hold the word list used both for picking secrets and for checking guesses.
//   - Load lists from JSON arrays or line files, appending to or replacing the current contents.
//   - Pick a random member through an injected Source.
//
// Constraints:
//   • Words are normalised (trimmed, lower-cased) and must be letters only.
//   • When a word length is configured, entries of any other length are dropped.
//   • Contents are guarded by an RWMutex; a reload applies to the next lookup.

package words

import (
	"errors"
	"sync"

	"github.com/robalobadob/wordle/apps/rusdle-server/assets"
)

// ErrEmptyDictionary is returned when a dictionary would end up with no words.
var ErrEmptyDictionary = errors.New("words: dictionary is empty")

// Dictionary is a set of valid words with stable ordering for random picks.
type Dictionary struct {
	mu     sync.RWMutex
	list   []string            // ordered members, for uniform selection
	set    map[string]struct{} // membership lookups
	length int                 // required letter count; 0 accepts any
	src    Source
}

// Option configures a Dictionary at construction.
type Option func(*Dictionary)

// WithSource sets the random source used by Random.
func WithSource(src Source) Option {
	return func(d *Dictionary) { d.src = src }
}

// WithWordLength restricts members to words of exactly n letters.
func WithWordLength(n int) Option {
	return func(d *Dictionary) { d.length = n }
}

// New builds a dictionary from list. Invalid entries are dropped silently;
// an empty result is allowed so callers can Load afterwards.
func New(list []string, opts ...Option) *Dictionary {
	d := &Dictionary{src: CryptoSource{}, set: map[string]struct{}{}}
	for _, o := range opts {
		o(d)
	}
	d.list, d.set = d.merge(nil, nil, list)
	return d
}

// Default builds a dictionary from the embedded word list.
func Default(opts ...Option) (*Dictionary, error) {
	raw, err := assets.DefaultWords()
	if err != nil {
		return nil, err
	}
	list, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	d := New(list, opts...)
	if d.Len() == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// merge appends the valid, unseen entries of add to list/set and returns them.
func (d *Dictionary) merge(list []string, set map[string]struct{}, add []string) ([]string, map[string]struct{}) {
	if set == nil {
		set = make(map[string]struct{}, len(add))
	}
	for _, raw := range add {
		w := Normalize(raw)
		if !IsWord(w) {
			continue
		}
		if d.length > 0 && Length(w) != d.length {
			continue
		}
		if _, dup := set[w]; dup {
			continue
		}
		set[w] = struct{}{}
		list = append(list, w)
	}
	return list, set
}

// replace swaps in add (or merges it when appendMode is set).
// The dictionary is left unchanged if the result would be empty.
func (d *Dictionary) replace(add []string, appendMode bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var list []string
	var set map[string]struct{}
	if appendMode {
		list = append([]string(nil), d.list...)
		set = make(map[string]struct{}, len(d.set)+len(add))
		for w := range d.set {
			set[w] = struct{}{}
		}
	}
	list, set = d.merge(list, set, add)
	if len(list) == 0 {
		return ErrEmptyDictionary
	}
	d.list, d.set = list, set
	return nil
}

// Contains reports whether w (normalised) is a member.
func (d *Dictionary) Contains(w string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.set[Normalize(w)]
	return ok
}

// Random returns a uniformly chosen member.
func (d *Dictionary) Random() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.list) == 0 {
		return "", ErrEmptyDictionary
	}
	return d.list[d.src.IntN(len(d.list))], nil
}

// Words returns a copy of the members in load order.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.list...)
}

// Len returns the number of members.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.list)
}

// WordLength returns the configured letter count (0 = unrestricted).
func (d *Dictionary) WordLength() int { return d.length }
