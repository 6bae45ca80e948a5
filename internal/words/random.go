// internal/words/random.go
//
// Random sources used to pick secret words.
// The dictionary never reaches for a global generator; a Source is injected
// so tests can pin selection with a fixed seed.

package words

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniformly distributed indexes in [0, n).
// n is always > 0 when called by Dictionary.
type Source interface {
	IntN(n int) int
}

// CryptoSource draws indexes from crypto/rand. It is the production default.
type CryptoSource struct{}

// IntN returns a cryptographically random index in [0, n).
// Falls back to 0 if the system entropy source fails.
func (CryptoSource) IntN(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

// seeded wraps a PCG generator; math/rand/v2 generators are not goroutine safe.
type seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSource returns a deterministic Source for tests and replays.
func NewSeededSource(seed uint64) Source {
	return &seeded{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
