package game

// LetterPool maps each letter of a secret to how many copies are still
// available for crediting while one guess is scored.
type LetterPool map[rune]int

// NewLetterPool counts the letters of secret.
func NewLetterPool(secret string) LetterPool {
	p := make(LetterPool)
	for _, r := range secret {
		p[r]++
	}
	return p
}

func (p LetterPool) clone() LetterPool {
	c := make(LetterPool, len(p))
	for r, n := range p {
		c[r] = n
	}
	return c
}

// Score compares guess against secret using the two-pass algorithm.
//
// Pass 1 marks exact matches Correct and takes them out of the pool.
// Pass 2 visits the remaining positions in order: a letter still in the pool
// is Misplaced (and consumes one copy), anything else is Absent.
//
// Exact matches are credited first, so a letter guessed more often than it
// occurs in the secret is never credited more times than it occurs.
//
// secret and guess must have the same number of letters; callers check this.
func Score(secret, guess string) GuessResult {
	return score([]rune(secret), []rune(guess), NewLetterPool(secret))
}

// score consumes pool; pass a copy when the pool is reused.
func score(secret, guess []rune, pool LetterPool) GuessResult {
	res := make(GuessResult, len(guess))

	for i, r := range guess {
		if r == secret[i] {
			res[i] = LetterVerdict{Letter: r, Verdict: VerdictCorrect}
			pool[r]--
		}
	}

	for i, r := range guess {
		if res[i].Verdict == VerdictCorrect {
			continue
		}
		if pool[r] > 0 {
			res[i] = LetterVerdict{Letter: r, Verdict: VerdictMisplaced}
			pool[r]--
		} else {
			res[i] = LetterVerdict{Letter: r, Verdict: VerdictAbsent}
		}
	}
	return res
}

// Accuracy rates a finished history: +2 per Correct letter, +1 per Misplaced,
// -0.5 per Absent, averaged over guesses and divided by the best possible
// per-guess score. An empty history rates 0.
func Accuracy(history []GuessResult) float64 {
	if len(history) == 0 || len(history[0]) == 0 {
		return 0
	}
	var points float64
	for _, g := range history {
		for _, lv := range g {
			switch lv.Verdict {
			case VerdictCorrect:
				points += 2
			case VerdictMisplaced:
				points++
			default:
				points -= 0.5
			}
		}
	}
	best := float64(2 * len(history[0]))
	return points / float64(len(history)) / best
}
