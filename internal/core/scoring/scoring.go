// Package scoring rates how much practice value a word offers a given user.
package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

// Stat is the normalized view of one ngram.
type Stat struct {
	Accuracy float64
	Count    int
	Seen     bool
}

// Difficulty rewards low accuracy and low exposure; both terms lie in [0, 1].
func (s Stat) Difficulty() float64 {
	return (1.0 - s.Accuracy) + 1.0/float64(s.Count+1)
}

// Profile is a dense lookup covering every canonical unigraph and digraph.
// Keys the user never typed are present with zero accuracy and zero count.
type Profile struct {
	unigraphs map[string]Stat
	digraphs  map[string]Stat
}

// AllUnigraphs lists the canonical single-character keys.
func AllUnigraphs() []string {
	keys := make([]string, 0, len(domain.Alphabet))
	for _, r := range domain.Alphabet {
		keys = append(keys, string(r))
	}
	return keys
}

// AllDigraphs lists every ordered pair of canonical characters, including the
// space-prefixed and space-suffixed word boundary pairs.
func AllDigraphs() []string {
	keys := make([]string, 0, len(domain.Alphabet)*len(domain.Alphabet))
	for _, a := range domain.Alphabet {
		for _, b := range domain.Alphabet {
			keys = append(keys, string(a)+string(b))
		}
	}
	return keys
}

// NewProfile normalizes the user's records once per scoring pass.
func NewProfile(unigraphs map[string]*domain.Unigraph, digraphs map[string]*domain.Digraph) *Profile {
	p := &Profile{
		unigraphs: make(map[string]Stat, len(domain.Alphabet)),
		digraphs:  make(map[string]Stat, len(domain.Alphabet)*len(domain.Alphabet)),
	}
	for _, key := range AllUnigraphs() {
		var st Stat
		if u, ok := unigraphs[key]; ok && u != nil {
			st = normalize(u.Accuracy, u.Count)
		}
		p.unigraphs[key] = st
	}
	for _, key := range AllDigraphs() {
		var st Stat
		if d, ok := digraphs[key]; ok && d != nil {
			st = normalize(d.Accuracy, d.Count)
		}
		p.digraphs[key] = st
	}
	return p
}

// NewProfileFromSummary is NewProfile over a summary's collections; a nil summary yields
// a profile where every ngram is unseen.
func NewProfileFromSummary(s *domain.UserStatsSummary) *Profile {
	if s == nil {
		return NewProfile(nil, nil)
	}
	return NewProfile(s.Unigraphs, s.Digraphs)
}

func normalize(accuracy, count int) Stat {
	return Stat{
		Accuracy: clamp(float64(accuracy)/100.0, 0, 1),
		Count:    count,
		Seen:     count > 0,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Unigraph returns the normalized stat for key and whether key is canonical.
func (p *Profile) Unigraph(key string) (Stat, bool) {
	st, ok := p.unigraphs[key]
	return st, ok
}

// Digraph returns the normalized stat for key and whether key is canonical.
func (p *Profile) Digraph(key string) (Stat, bool) {
	st, ok := p.digraphs[key]
	return st, ok
}

// Score returns the mean difficulty over the word's characters and its space-padded
// character pairs. Characters outside the alphabet add nothing but still count toward
// the divisor. Empty words score zero.
func (p *Profile) Score(word string) float64 {
	word = strings.ToLower(word)
	n := utf8.RuneCountInString(word)
	if n == 0 {
		return 0
	}

	var score float64
	for _, r := range word {
		if st, ok := p.unigraphs[string(r)]; ok {
			score += st.Difficulty()
		}
	}

	padded := []rune(" " + word + " ")
	for i := 0; i < len(padded)-1; i++ {
		if st, ok := p.digraphs[string(padded[i:i+2])]; ok {
			score += st.Difficulty()
		}
	}

	return score / float64(NgramCount(word))
}

// NgramCount is the number of ngrams Score considers: every character plus the
// len+1 pairs of the space-padded word.
func NgramCount(word string) int {
	n := utf8.RuneCountInString(word)
	return n + n + 1
}
