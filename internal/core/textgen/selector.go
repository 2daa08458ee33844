// Package textgen builds practice texts from a word corpus.
package textgen

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/scoring"
)

var (
	ErrInvalidRange = errors.New("min length cannot be greater than max length")
)

// Options bounds a generation request. A zero length bound means unbounded.
type Options struct {
	WordLimit int
	MinLen    int
	MaxLen    int
}

func (o Options) Validate() error {
	if o.MinLen < 0 || o.MaxLen < 0 {
		return ErrInvalidRange
	}
	if o.MaxLen > 0 && o.MinLen > o.MaxLen {
		return ErrInvalidRange
	}
	return nil
}

// Selector picks practice words. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Selector seeded with the current time.
func New() *Selector {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

func NewWithSource(src rand.Source) *Selector {
	return &Selector{rnd: rand.New(src)}
}

// Generate returns the selected words joined by single spaces.
func (s *Selector) Generate(corpus []string, summary *domain.UserStatsSummary, opts Options) (string, error) {
	words, err := s.Select(corpus, summary, opts)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

// Select filters the corpus by length and picks up to opts.WordLimit words.
// Without ngram data the pick is uniform; otherwise the highest scoring words win.
// The result is shuffled either way.
func (s *Selector) Select(corpus []string, summary *domain.UserStatsSummary, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	words := FilterByLength(corpus, opts.MinLen, opts.MaxLen)
	limit := min(opts.WordLimit, len(words))
	if limit <= 0 {
		return []string{}, nil
	}

	var selected []string
	if !summary.HasNgramData() {
		selected = s.sample(words, limit)
	} else {
		selected = TopScored(words, scoring.NewProfileFromSummary(summary), limit)
	}

	s.shuffle(selected)
	return selected, nil
}

// FilterByLength keeps words whose rune length lies in [minLen, maxLen].
func FilterByLength(words []string, minLen, maxLen int) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n == 0 || n < minLen {
			continue
		}
		if maxLen > 0 && n > maxLen {
			continue
		}
		out = append(out, w)
	}
	return out
}

// TopScored returns the limit highest scoring words. Ties keep corpus order.
func TopScored(words []string, profile *scoring.Profile, limit int) []string {
	type scored struct {
		word  string
		score float64
	}
	ranked := make([]scored, len(words))
	for i, w := range words {
		ranked[i] = scored{word: w, score: profile.Score(w)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit = min(limit, len(ranked))
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = ranked[i].word
	}
	return out
}

// sample draws k distinct positions with a partial Fisher-Yates pass.
func (s *Selector) sample(words []string, k int) []string {
	pool := make([]string, len(words))
	copy(pool, words)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + s.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func (s *Selector) shuffle(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
}
