package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

// maxMergeAttempts bounds how often a session is re-merged after losing a race
// against another submission of the same user.
const maxMergeAttempts = 3

type StreakScheduler interface {
	Enqueue(userID string)
}

type SessionExporter interface {
	Export(session *domain.PracticeSession)
}

type SummaryService struct {
	summaries domain.SummaryRepository
	sessions  domain.SessionRepository
	streaks   StreakScheduler
	exporter  SessionExporter
	now       func() time.Time
}

func NewSummaryService(summaries domain.SummaryRepository, sessions domain.SessionRepository, streaks StreakScheduler, exporter SessionExporter) *SummaryService {
	return &SummaryService{
		summaries: summaries,
		sessions:  sessions,
		streaks:   streaks,
		exporter:  exporter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type SubmitSessionInput struct {
	UserID string
	Result domain.SessionResult
}

// SubmitSession validates the telemetry and folds it into the user's summary.
// The summary is created on the user's first session.
func (s *SummaryService) SubmitSession(ctx context.Context, input SubmitSessionInput) (*domain.UserStatsSummary, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidSession)
	}
	if err := input.Result.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	session := domain.NewPracticeSession(input.UserID, input.Result, now)
	merge := func(existing *domain.UserStatsSummary) (*domain.SummaryUpdate, error) {
		return domain.Aggregate(existing, input.UserID, input.Result, now), nil
	}

	var (
		summary *domain.UserStatsSummary
		err     error
	)
	for attempt := 1; attempt <= maxMergeAttempts; attempt++ {
		summary, err = s.summaries.RecordSession(ctx, session, merge)
		if !errors.Is(err, domain.ErrSummaryConflict) {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("[AGGREGATOR] Conflict on summary of user %s (attempt %d/%d), re-merging", input.UserID, attempt, maxMergeAttempts)
	}
	if err != nil {
		return nil, err
	}

	if s.streaks != nil {
		s.streaks.Enqueue(input.UserID)
	}
	if s.exporter != nil {
		s.exporter.Export(session)
	}

	return summary, nil
}

func (s *SummaryService) GetSummary(ctx context.Context, userID string) (*domain.UserStatsSummary, error) {
	return s.summaries.GetByUserID(ctx, userID)
}

func (s *SummaryService) ListSessions(ctx context.Context, userID string, from, to time.Time) ([]*domain.PracticeSession, error) {
	return s.sessions.ListByUserIDAndDateRange(ctx, userID, from, to)
}
