package domain

import (
	"context"
	"time"
)

type SummaryRepository interface {
	// GetByUserID returns the user's summary together with its unigraph and digraph records.
	GetByUserID(ctx context.Context, userID string) (*UserStatsSummary, error)

	// RecordSession stores the session history row and folds it into the user's summary
	// in a single unit of work. The stored summary is locked for the whole read-merge-write
	// cycle; merge receives nil when the user has no summary yet.
	// Either every change is persisted or none is.
	RecordSession(ctx context.Context, session *PracticeSession, merge MergeFunc) (*UserStatsSummary, error)

	// UpdateStreaks overwrites the practice streak columns only.
	UpdateStreaks(ctx context.Context, userID string, current, longest int) error

	// DeleteByUserID removes the summary and, by cascade, its ngram records.
	DeleteByUserID(ctx context.Context, userID string) error
}

type SessionRepository interface {
	// ListByUserIDAndDateRange returns sessions started within [from, to], oldest first.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*PracticeSession, error)

	// ListByUserID returns the whole session history of a user, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*PracticeSession, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Delete removes the user; summaries, ngrams and sessions go with it.
	Delete(ctx context.Context, id string) error
}
