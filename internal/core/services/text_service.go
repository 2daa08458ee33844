package services

import (
	"context"
	"errors"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
)

type CorpusProvider interface {
	Words() ([]string, error)
}

type TextDefaults struct {
	WordLimit int
	MinLen    int
	MaxLen    int
}

type TextService struct {
	summaries domain.SummaryRepository
	corpus    CorpusProvider
	selector  *textgen.Selector
	defaults  TextDefaults
}

func NewTextService(summaries domain.SummaryRepository, corpus CorpusProvider, selector *textgen.Selector, defaults TextDefaults) *TextService {
	return &TextService{
		summaries: summaries,
		corpus:    corpus,
		selector:  selector,
		defaults:  defaults,
	}
}

// GenerateTextInput carries the optional request bounds; nil or zero means "use the default".
type GenerateTextInput struct {
	UserID    string
	WordLimit *int
	MinLen    *int
	MaxLen    *int
}

func (s *TextService) options(input GenerateTextInput) textgen.Options {
	return textgen.Options{
		WordLimit: orDefault(input.WordLimit, s.defaults.WordLimit),
		MinLen:    orDefault(input.MinLen, s.defaults.MinLen),
		MaxLen:    orDefault(input.MaxLen, s.defaults.MaxLen),
	}
}

func orDefault(v *int, def int) int {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

// Generate builds a practice text biased toward the user's weak ngrams.
// Users without a summary get a uniformly sampled text.
func (s *TextService) Generate(ctx context.Context, input GenerateTextInput) (string, error) {
	opts := s.options(input)
	if err := opts.Validate(); err != nil {
		return "", err
	}

	words, err := s.corpus.Words()
	if err != nil {
		return "", err
	}

	var summary *domain.UserStatsSummary
	if input.UserID != "" {
		summary, err = s.summaries.GetByUserID(ctx, input.UserID)
		if err != nil && !errors.Is(err, domain.ErrSummaryNotFound) {
			return "", err
		}
	}

	return s.selector.Generate(words, summary, opts)
}
