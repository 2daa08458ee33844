package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AccuracyPlaces is the fixed-point precision of the summary accuracy averages.
const AccuracyPlaces = 1

// SummaryUpdate is the outcome of folding one session into a summary.
// Unigraphs and Digraphs hold only the records the session touched.
type SummaryUpdate struct {
	Summary   *UserStatsSummary
	Created   bool
	Unigraphs []*Unigraph
	Digraphs  []*Digraph
}

// MergeFunc folds a session into the currently stored summary (nil on first session).
type MergeFunc func(existing *UserStatsSummary) (*SummaryUpdate, error)

// Aggregate folds one session result into existing and returns the merged copy.
// existing is never modified; pass nil for the user's first session.
func Aggregate(existing *UserStatsSummary, userID string, r SessionResult, now time.Time) *SummaryUpdate {
	now = now.UTC()
	update := &SummaryUpdate{}

	accuracy := decimal.NewFromFloat(r.Accuracy)
	rawAccuracy := accuracy
	if r.RawAccuracy != nil {
		rawAccuracy = decimal.NewFromFloat(*r.RawAccuracy)
	}

	var s *UserStatsSummary
	if existing == nil {
		s = NewUserStatsSummary(userID, now)
		s.TotalSessions = 1
		s.TotalPracticeDuration = r.PracticeDuration
		s.AverageWPM = r.WPM
		s.FastestWPM = r.WPM
		s.AverageAccuracy = accuracy.RoundBank(AccuracyPlaces)
		s.AverageRawAccuracy = rawAccuracy.RoundBank(AccuracyPlaces)
		update.Created = true
	} else {
		s = existing.Clone()
		s.TotalSessions++
		n := s.TotalSessions

		s.TotalPracticeDuration += r.PracticeDuration
		s.AverageWPM = runningMean(s.AverageWPM, r.WPM, n)
		s.AverageAccuracy = runningDecimalMean(s.AverageAccuracy, accuracy, n)
		s.AverageRawAccuracy = runningDecimalMean(s.AverageRawAccuracy, rawAccuracy, n)
		if r.WPM > s.FastestWPM {
			s.FastestWPM = r.WPM
		}
		s.UpdatedAt = now
	}

	s.TotalCorrectedCharCount += r.CorrectedCharCount
	s.TotalDeletedCharCount += r.DeletedCharCount
	s.TotalKeystrokes += r.TotalKeystrokes
	s.TotalCharCount += r.TotalCharCount
	s.ErrorCharCount += r.ErrorCharCount

	for _, key := range sortedKeys(r.Unigraphs) {
		update.Unigraphs = append(update.Unigraphs, s.UpsertUnigraph(key, r.Unigraphs[key]))
	}
	for _, key := range sortedKeys(r.Digraphs) {
		update.Digraphs = append(update.Digraphs, s.UpsertDigraph(key, r.Digraphs[key]))
	}

	update.Summary = s
	return update
}

// runningMean applies new_avg = (old_avg*(n-1) + value) / n, n being the post-increment count.
func runningMean(avg, value float64, n int) float64 {
	if n <= 1 {
		return value
	}
	return (avg*float64(n-1) + value) / float64(n)
}

func runningDecimalMean(avg, value decimal.Decimal, n int) decimal.Decimal {
	if n <= 1 {
		return value.RoundBank(AccuracyPlaces)
	}
	prev := decimal.NewFromInt(int64(n - 1))
	return avg.Mul(prev).Add(value).Div(decimal.NewFromInt(int64(n))).RoundBank(AccuracyPlaces)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
