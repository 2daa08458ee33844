package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

var (
	_ domain.SummaryRepository = (*InMemorySummaryRepository)(nil)
	_ domain.SessionRepository = (*InMemorySummaryRepository)(nil)
	_ domain.UserRepository    = (*InMemoryUserRepository)(nil)
)

// InMemorySummaryRepository keeps summaries and session history in process memory.
// Submissions of the same user are serialized by a per-user lock.
type InMemorySummaryRepository struct {
	summaries map[string]*domain.UserStatsSummary
	sessions  map[string][]*domain.PracticeSession
	userLocks map[string]*sync.Mutex

	mu sync.RWMutex
}

func NewInMemorySummaryRepository() *InMemorySummaryRepository {
	return &InMemorySummaryRepository{
		summaries: make(map[string]*domain.UserStatsSummary),
		sessions:  make(map[string][]*domain.PracticeSession),
		userLocks: make(map[string]*sync.Mutex),
	}
}

func (r *InMemorySummaryRepository) lockUser(userID string) func() {
	r.mu.Lock()
	l, ok := r.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.userLocks[userID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (r *InMemorySummaryRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserStatsSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.summaries[userID]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	return s.Clone(), nil
}

func (r *InMemorySummaryRepository) RecordSession(ctx context.Context, session *domain.PracticeSession, merge domain.MergeFunc) (*domain.UserStatsSummary, error) {
	unlock := r.lockUser(session.UserID)
	defer unlock()

	r.mu.RLock()
	current := r.summaries[session.UserID].Clone()
	r.mu.RUnlock()

	update, err := merge(current)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := update.Summary
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.summaries[session.UserID]
	switch {
	case update.Created && stored != nil:
		return nil, domain.ErrSummaryConflict
	case !update.Created && (stored == nil || stored.Version != summary.Version):
		return nil, domain.ErrSummaryConflict
	}

	if update.Created {
		summary.Version = 1
	} else {
		summary.Version++
		summary.PracticeStreak = stored.PracticeStreak
		summary.LongestStreak = stored.LongestStreak
	}

	r.summaries[session.UserID] = summary.Clone()
	copied := *session
	r.sessions[session.UserID] = append(r.sessions[session.UserID], &copied)

	return summary, nil
}

func (r *InMemorySummaryRepository) UpdateStreaks(ctx context.Context, userID string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.summaries[userID]
	if !ok {
		return domain.ErrSummaryNotFound
	}
	s.UpdateStreak(current, longest)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteByUserID also drops the session history, matching the cascade of a user deletion.
func (r *InMemorySummaryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.summaries[userID]
	delete(r.summaries, userID)
	delete(r.sessions, userID)
	if !ok {
		return domain.ErrSummaryNotFound
	}
	return nil
}

func (r *InMemorySummaryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.PracticeSession, error) {
	all, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PracticeSession, 0, len(all))
	for _, s := range all {
		if s.StartTime.Before(from) || s.StartTime.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *InMemorySummaryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PracticeSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.PracticeSession, 0, len(r.sessions[userID]))
	for _, s := range r.sessions[userID] {
		copied := *s
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return domain.ErrUsernameAlreadyExists
		}
	}

	copied := *user
	r.store[user.ID] = &copied
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.store {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}

	delete(r.store, id)
	return nil
}
