package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLangFilter(t *testing.T) {
	for _, lang := range []string{"en", "EN", ""} {
		keep := LangFilter(lang)
		require.NotNil(t, keep, "lang %q", lang)
		assert.True(t, keep("hello"))
		for _, word := range []string{"résumé", "naïve", "don’t", "co-op", "Hello", "h3llo", ""} {
			assert.False(t, keep(word), "expected %q to be rejected for %q", word, lang)
		}
	}

	t.Run("Other languages keep every word", func(t *testing.T) {
		assert.Nil(t, LangFilter("de"))
		assert.Equal(t, []string{"Straße", "über", "ja"},
			Prepare([]string{"Straße", "über", "Straße", "ja"}, LangFilter("de")))
	})
}

func TestReadWords(t *testing.T) {
	t.Run("Success: Trims and skips blank lines", func(t *testing.T) {
		words, err := ReadWords(strings.NewReader("  alpha \n\n beta\n\t\ngamma"))

		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, words)
	})

	t.Run("Fail: Empty list", func(t *testing.T) {
		_, err := ReadWords(strings.NewReader("\n \n"))

		assert.Error(t, err)
	})
}

func TestPrepare(t *testing.T) {
	got := Prepare([]string{"cat", "Dog", "cat", "bird", "co-op", "bird"}, LangFilter("en"))

	assert.Equal(t, []string{"cat", "bird"}, got)
}

func TestCorpus_Words(t *testing.T) {
	t.Run("Success: Built-in list", func(t *testing.T) {
		c := NewCorpus("", "en")

		words, err := c.Words()

		require.NoError(t, err)
		assert.NotEmpty(t, words)
		seen := make(map[string]bool)
		for _, w := range words {
			assert.False(t, seen[w], "duplicate %q", w)
			seen[w] = true
		}
	})

	t.Run("Success: File is read once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "words.txt")
		require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o600))
		c := NewCorpus(path, "en")

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.Words()
			}()
		}
		wg.Wait()

		require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0o600))
		words, err := c.Words()
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, words)
	})

	t.Run("Fail: Missing file", func(t *testing.T) {
		c := NewCorpus(filepath.Join(t.TempDir(), "missing.txt"), "en")

		_, err := c.Words()

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
