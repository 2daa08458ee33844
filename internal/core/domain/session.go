package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session result")
)

// SessionResult is the telemetry of one completed practice session.
type SessionResult struct {
	WPM              float64  `json:"wpm"`
	Accuracy         float64  `json:"accuracy"`
	RawAccuracy      *float64 `json:"raw_accuracy,omitempty"`
	PracticeDuration int64    `json:"practice_duration"`

	CorrectedCharCount int64 `json:"corrected_char_count"`
	DeletedCharCount   int64 `json:"deleted_char_count"`
	TotalKeystrokes    int64 `json:"total_keystrokes"`
	TotalCharCount     int64 `json:"total_char_count"`
	ErrorCharCount     int64 `json:"error_char_count"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Unigraphs map[string]UnigraphObservation `json:"unigraphs,omitempty"`
	Digraphs  map[string]DigraphObservation  `json:"digraphs,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSession, fmt.Sprintf(format, args...))
}

func (r SessionResult) Validate() error {
	if r.WPM < 0 {
		return invalid("wpm cannot be negative")
	}
	if r.Accuracy < 0 || r.Accuracy > 100 {
		return invalid("accuracy must be between 0 and 100")
	}
	if r.RawAccuracy != nil && (*r.RawAccuracy < 0 || *r.RawAccuracy > 100) {
		return invalid("raw_accuracy must be between 0 and 100")
	}
	if r.PracticeDuration < 0 {
		return invalid("practice_duration cannot be negative")
	}
	if r.CorrectedCharCount < 0 || r.DeletedCharCount < 0 || r.TotalKeystrokes < 0 ||
		r.TotalCharCount < 0 || r.ErrorCharCount < 0 {
		return invalid("char counts cannot be negative")
	}
	if r.EndTime != nil && !r.StartTime.IsZero() && r.EndTime.Before(r.StartTime) {
		return invalid("end_time cannot be before start_time")
	}

	for key, obs := range r.Unigraphs {
		if !IsUnigraphKey(key) {
			return invalid("unknown unigraph key %q", key)
		}
		if obs.Count < 0 || obs.Accuracy < 0 || obs.Accuracy > 100 {
			return invalid("unigraph %q has out of range stats", key)
		}
		for wrong, n := range obs.Mistyped {
			if n < 0 {
				return invalid("unigraph %q has negative mistyped count for %q", key, wrong)
			}
		}
	}
	for key, obs := range r.Digraphs {
		if !IsDigraphKey(key) {
			return invalid("unknown digraph key %q", key)
		}
		if obs.Count < 0 || obs.Accuracy < 0 || obs.Accuracy > 100 || obs.MeanInterval < 0 {
			return invalid("digraph %q has out of range stats", key)
		}
	}
	return nil
}

// PracticeSession is the stored history row of a submitted session.
type PracticeSession struct {
	ID          string   `json:"id" db:"id"`
	UserID      string   `json:"user_id" db:"user_id"`
	WPM         float64  `json:"wpm" db:"wpm"`
	Accuracy    float64  `json:"accuracy" db:"accuracy"`
	RawAccuracy *float64 `json:"raw_accuracy,omitempty" db:"raw_accuracy"`

	PracticeDuration   int64 `json:"practice_duration" db:"practice_duration"`
	CorrectedCharCount int64 `json:"corrected_char_count" db:"corrected_char_count"`
	DeletedCharCount   int64 `json:"deleted_char_count" db:"deleted_char_count"`
	TotalKeystrokes    int64 `json:"total_keystrokes" db:"total_keystrokes"`
	TotalCharCount     int64 `json:"total_char_count" db:"total_char_count"`
	ErrorCharCount     int64 `json:"error_char_count" db:"error_char_count"`

	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func NewPracticeSession(userID string, r SessionResult, now time.Time) *PracticeSession {
	now = now.UTC()

	start := r.StartTime.UTC()
	if r.StartTime.IsZero() {
		start = now
	}
	var end *time.Time
	if r.EndTime != nil {
		t := r.EndTime.UTC()
		end = &t
	}

	return &PracticeSession{
		ID:                 uuid.NewString(),
		UserID:             userID,
		WPM:                r.WPM,
		Accuracy:           r.Accuracy,
		RawAccuracy:        r.RawAccuracy,
		PracticeDuration:   r.PracticeDuration,
		CorrectedCharCount: r.CorrectedCharCount,
		DeletedCharCount:   r.DeletedCharCount,
		TotalKeystrokes:    r.TotalKeystrokes,
		TotalCharCount:     r.TotalCharCount,
		ErrorCharCount:     r.ErrorCharCount,
		StartTime:          start,
		EndTime:            end,
		CreatedAt:          now,
	}
}

// PracticedOn is the UTC day the session counts toward for streaks.
func (s *PracticeSession) PracticedOn() time.Time {
	t := s.StartTime
	if s.EndTime != nil {
		t = *s.EndTime
	}
	return t.UTC().Truncate(24 * time.Hour)
}
