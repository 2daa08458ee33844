package services

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserStatsSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStatsSummary), args.Error(1)
}

// RecordSession runs merge against the summary registered through the "existing"
// return value, mimicking a repository that loads, merges and stores.
func (m *MockSummaryRepository) RecordSession(ctx context.Context, session *domain.PracticeSession, merge domain.MergeFunc) (*domain.UserStatsSummary, error) {
	args := m.Called(ctx, session)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	var existing *domain.UserStatsSummary
	if args.Get(0) != nil {
		existing = args.Get(0).(*domain.UserStatsSummary)
	}
	update, err := merge(existing)
	if err != nil {
		return nil, err
	}
	return update.Summary, nil
}

func (m *MockSummaryRepository) UpdateStreaks(ctx context.Context, userID string, current, longest int) error {
	return m.Called(ctx, userID, current, longest).Error(0)
}

func (m *MockSummaryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.PracticeSession, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PracticeSession), args.Error(1)
}

func (m *MockSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PracticeSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PracticeSession), args.Error(1)
}

type recordingScheduler struct {
	mu      sync.Mutex
	userIDs []string
}

func (r *recordingScheduler) Enqueue(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
}

type recordingExporter struct {
	mu       sync.Mutex
	sessions []*domain.PracticeSession
}

func (r *recordingExporter) Export(session *domain.PracticeSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, session)
}

type staticCorpus struct {
	words []string
	err   error
}

func (s staticCorpus) Words() ([]string, error) {
	return s.words, s.err
}

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}
