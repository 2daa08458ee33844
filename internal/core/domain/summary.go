package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSummaryNotFound = errors.New("stats summary not found")
	ErrSummaryConflict = errors.New("stats summary was modified concurrently")
)

type UserStatsSummary struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	TotalSessions         int   `json:"total_sessions" db:"total_sessions"`
	TotalPracticeDuration int64 `json:"total_practice_duration" db:"total_practice_duration"`

	AverageWPM         float64         `json:"average_wpm" db:"average_wpm"`
	FastestWPM         float64         `json:"fastest_wpm" db:"fastest_wpm"`
	AverageAccuracy    decimal.Decimal `json:"average_accuracy" db:"average_accuracy"`
	AverageRawAccuracy decimal.Decimal `json:"average_raw_accuracy" db:"average_raw_accuracy"`

	PracticeStreak int `json:"practice_streak" db:"practice_streak"`
	LongestStreak  int `json:"longest_streak" db:"longest_streak"`

	TotalCorrectedCharCount int64 `json:"total_corrected_char_count" db:"total_corrected_char_count"`
	TotalDeletedCharCount   int64 `json:"total_deleted_char_count" db:"total_deleted_char_count"`
	TotalKeystrokes         int64 `json:"total_keystrokes" db:"total_keystrokes"`
	TotalCharCount          int64 `json:"total_char_count" db:"total_char_count"`
	ErrorCharCount          int64 `json:"error_char_count" db:"error_char_count"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Unigraphs map[string]*Unigraph `json:"unigraphs" db:"-"`
	Digraphs  map[string]*Digraph  `json:"digraphs" db:"-"`
}

func NewUserStatsSummary(userID string, now time.Time) *UserStatsSummary {
	return &UserStatsSummary{
		ID:        uuid.NewString(),
		UserID:    userID,
		Version:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Unigraphs: make(map[string]*Unigraph),
		Digraphs:  make(map[string]*Digraph),
	}
}

// HasNgramData reports whether any unigraph or digraph has been recorded.
func (s *UserStatsSummary) HasNgramData() bool {
	return s != nil && (len(s.Unigraphs) > 0 || len(s.Digraphs) > 0)
}

// UpsertUnigraph inserts the observation as a new record, or merges it into the
// existing one using count-weighted accuracy.
func (s *UserStatsSummary) UpsertUnigraph(key string, obs UnigraphObservation) *Unigraph {
	if s.Unigraphs == nil {
		s.Unigraphs = make(map[string]*Unigraph)
	}
	if u, ok := s.Unigraphs[key]; ok {
		u.merge(obs)
		return u
	}

	u := &Unigraph{
		ID:        uuid.NewString(),
		SummaryID: s.ID,
		Key:       key,
		Count:     obs.Count,
		Accuracy:  obs.Accuracy,
	}
	if len(obs.Mistyped) > 0 {
		u.Mistyped = make(map[string]int, len(obs.Mistyped))
		for wrong, n := range obs.Mistyped {
			u.Mistyped[wrong] = n
		}
	}
	s.Unigraphs[key] = u
	return u
}

// UpsertDigraph is the digraph counterpart of UpsertUnigraph. MeanInterval is
// merged with the same count weighting as accuracy.
func (s *UserStatsSummary) UpsertDigraph(key string, obs DigraphObservation) *Digraph {
	if s.Digraphs == nil {
		s.Digraphs = make(map[string]*Digraph)
	}
	if d, ok := s.Digraphs[key]; ok {
		d.merge(obs)
		return d
	}

	d := &Digraph{
		ID:           uuid.NewString(),
		SummaryID:    s.ID,
		Key:          key,
		Count:        obs.Count,
		Accuracy:     obs.Accuracy,
		MeanInterval: obs.MeanInterval,
	}
	s.Digraphs[key] = d
	return d
}

// Clone returns a deep copy, so callers can merge into it without touching the original.
func (s *UserStatsSummary) Clone() *UserStatsSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.Unigraphs = make(map[string]*Unigraph, len(s.Unigraphs))
	for k, u := range s.Unigraphs {
		c.Unigraphs[k] = u.clone()
	}
	c.Digraphs = make(map[string]*Digraph, len(s.Digraphs))
	for k, d := range s.Digraphs {
		c.Digraphs[k] = d.clone()
	}
	return &c
}

// UpdateStreak sets the current streak. The longest streak never shrinks.
func (s *UserStatsSummary) UpdateStreak(current, longest int) {
	s.PracticeStreak = current
	if longest > s.LongestStreak {
		s.LongestStreak = longest
	}
}
