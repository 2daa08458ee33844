// Package wordlist loads the practice corpus from line-delimited files.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

//go:embed words.txt
var defaultWords string

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	return ReadWords(file)
}

// ReadWords reads one word per line, trimming whitespace and skipping blank lines.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// KeepFunc reports whether a word belongs in the corpus.
type KeepFunc func(word string) bool

// LangFilter returns the corpus filter for lang, or nil when every word is kept.
// English (also the default) keeps only words made of the letters a-z.
func LangFilter(lang string) KeepFunc {
	if lang != "" && !strings.EqualFold(lang, "en") {
		return nil
	}
	return func(word string) bool {
		return word != "" && strings.IndexFunc(word, notLowerLatin) < 0
	}
}

func notLowerLatin(r rune) bool {
	return r < 'a' || r > 'z'
}

// Prepare applies filter and drops repeated words, keeping first occurrences.
func Prepare(words []string, filter KeepFunc) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if filter != nil && !filter(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Corpus loads the word list on first use and serves the same slice afterwards.
// An empty path selects the built-in list.
type Corpus struct {
	path string
	lang string

	once  sync.Once
	words []string
	err   error
}

func NewCorpus(path, lang string) *Corpus {
	return &Corpus{path: path, lang: lang}
}

// Words returns the filtered corpus. Callers must not modify the result.
func (c *Corpus) Words() ([]string, error) {
	c.once.Do(func() {
		var raw []string
		if c.path == "" {
			raw, c.err = ReadWords(strings.NewReader(defaultWords))
		} else {
			raw, c.err = LoadWords(c.path)
		}
		if c.err != nil {
			c.err = fmt.Errorf("wordlist: failed to load corpus: %w", c.err)
			return
		}
		c.words = Prepare(raw, LangFilter(c.lang))
		log.Printf("[CORPUS] Loaded %d words (%d raw)", len(c.words), len(raw))
	})
	return c.words, c.err
}
