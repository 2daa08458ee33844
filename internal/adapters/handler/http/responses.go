package http

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type unigraphResponse struct {
	Key      string         `json:"key"`
	Count    int            `json:"count"`
	Accuracy int            `json:"accuracy"`
	Mistyped map[string]int `json:"mistyped,omitempty"`
}

type digraphResponse struct {
	Key          string `json:"key"`
	Count        int    `json:"count"`
	Accuracy     int    `json:"accuracy"`
	MeanInterval int    `json:"mean_interval"`
}

// summaryResponse flattens the ngram maps into key-ordered lists and renders
// the decimal accuracies as JSON numbers.
type summaryResponse struct {
	UserID                  string             `json:"user_id"`
	TotalSessions           int                `json:"total_sessions"`
	TotalPracticeDuration   int64              `json:"total_practice_duration"`
	AverageWPM              float64            `json:"average_wpm"`
	FastestWPM              float64            `json:"fastest_wpm"`
	AverageAccuracy         float64            `json:"average_accuracy"`
	AverageRawAccuracy      float64            `json:"average_raw_accuracy"`
	PracticeStreak          int                `json:"practice_streak"`
	LongestStreak           int                `json:"longest_streak"`
	TotalCorrectedCharCount int64              `json:"total_corrected_char_count"`
	TotalDeletedCharCount   int64              `json:"total_deleted_char_count"`
	TotalKeystrokes         int64              `json:"total_keystrokes"`
	TotalCharCount          int64              `json:"total_char_count"`
	ErrorCharCount          int64              `json:"error_char_count"`
	Unigraphs               []unigraphResponse `json:"unigraphs"`
	Digraphs                []digraphResponse  `json:"digraphs"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

func toSummaryResponse(s *domain.UserStatsSummary) summaryResponse {
	resp := summaryResponse{
		UserID:                  s.UserID,
		TotalSessions:           s.TotalSessions,
		TotalPracticeDuration:   s.TotalPracticeDuration,
		AverageWPM:              s.AverageWPM,
		FastestWPM:              s.FastestWPM,
		AverageAccuracy:         s.AverageAccuracy.InexactFloat64(),
		AverageRawAccuracy:      s.AverageRawAccuracy.InexactFloat64(),
		PracticeStreak:          s.PracticeStreak,
		LongestStreak:           s.LongestStreak,
		TotalCorrectedCharCount: s.TotalCorrectedCharCount,
		TotalDeletedCharCount:   s.TotalDeletedCharCount,
		TotalKeystrokes:         s.TotalKeystrokes,
		TotalCharCount:          s.TotalCharCount,
		ErrorCharCount:          s.ErrorCharCount,
		Unigraphs:               make([]unigraphResponse, 0, len(s.Unigraphs)),
		Digraphs:                make([]digraphResponse, 0, len(s.Digraphs)),
		UpdatedAt:               s.UpdatedAt,
	}

	for _, u := range s.Unigraphs {
		resp.Unigraphs = append(resp.Unigraphs, unigraphResponse{
			Key:      u.Key,
			Count:    u.Count,
			Accuracy: u.Accuracy,
			Mistyped: u.Mistyped,
		})
	}
	sort.Slice(resp.Unigraphs, func(i, j int) bool { return resp.Unigraphs[i].Key < resp.Unigraphs[j].Key })

	for _, d := range s.Digraphs {
		resp.Digraphs = append(resp.Digraphs, digraphResponse{
			Key:          d.Key,
			Count:        d.Count,
			Accuracy:     d.Accuracy,
			MeanInterval: d.MeanInterval,
		})
	}
	sort.Slice(resp.Digraphs, func(i, j int) bool { return resp.Digraphs[i].Key < resp.Digraphs[j].Key })

	return resp
}

type sessionListResponse struct {
	Sessions []*domain.PracticeSession `json:"sessions"`
	Count    int                       `json:"count"`
}
