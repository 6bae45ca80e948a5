// Package daily derives the word of the day.
//
// A Schedule maps a UTC calendar day to a list position with
// HMAC-SHA256(salt, "YYYY-MM-DD"), so every server sharing a salt and a word
// list agrees on the word without coordination.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrNoWords is returned by Word for an empty list.
var ErrNoWords = errors.New("daily: no words to pick from")

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// ParseDateKey is the inverse of DateKey.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("daily: bad date %q: %w", key, err)
	}
	return t, nil
}

// Schedule picks one word per UTC day.
type Schedule struct {
	salt []byte
}

func NewSchedule(salt string) Schedule {
	return Schedule{salt: []byte(salt)}
}

// Index returns the position of day t in a list of n words, or 0 when n <= 0.
func (s Schedule) Index(t time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, s.salt)
	mac.Write([]byte(DateKey(t)))
	v := binary.BigEndian.Uint64(mac.Sum(nil)) // leading 8 bytes
	return int(v % uint64(n))
}

// Word returns the word of day t from list.
func (s Schedule) Word(list []string, t time.Time) (string, error) {
	if len(list) == 0 {
		return "", ErrNoWords
	}
	return list[s.Index(t, len(list))], nil
}
