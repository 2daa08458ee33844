package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

func sessionResult(acc int, count int) domain.SessionResult {
	return domain.SessionResult{
		WPM:              50,
		Accuracy:         90,
		PracticeDuration: 1000,
		TotalKeystrokes:  10,
		StartTime:        testNow,
		Unigraphs: map[string]domain.UnigraphObservation{
			"e": {Count: count, Accuracy: acc},
		},
		Digraphs: map[string]domain.DigraphObservation{
			"th": {Count: count, Accuracy: acc, MeanInterval: 100},
		},
	}
}

func submit(ctx context.Context, repo domain.SummaryRepository, userID string, r domain.SessionResult) (*domain.UserStatsSummary, error) {
	session := domain.NewPracticeSession(userID, r, testNow)
	return repo.RecordSession(ctx, session, func(existing *domain.UserStatsSummary) (*domain.SummaryUpdate, error) {
		return domain.Aggregate(existing, userID, r, testNow), nil
	})
}

func TestInMemorySummaryRepository_RecordSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Creates then merges", func(t *testing.T) {
		repo := NewInMemorySummaryRepository()

		first, err := submit(ctx, repo, "user-1", sessionResult(80, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, first.Version)

		second, err := submit(ctx, repo, "user-1", sessionResult(50, 5))
		require.NoError(t, err)
		assert.Equal(t, 2, second.Version)
		assert.Equal(t, 2, second.TotalSessions)
		assert.Equal(t, 15, second.Unigraphs["e"].Count)
		assert.Equal(t, 70, second.Unigraphs["e"].Accuracy)

		stored, err := repo.GetByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.TotalSessions)
		assert.Len(t, stored.Unigraphs, 1)
		assert.Len(t, stored.Digraphs, 1)

		history, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("Success: Concurrent submissions are all counted", func(t *testing.T) {
		repo := NewInMemorySummaryRepository()
		const workers = 25

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := submit(ctx, repo, "user-1", sessionResult(100, 2))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := repo.GetByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, workers, stored.TotalSessions)
		assert.Equal(t, 2*workers, stored.Unigraphs["e"].Count)
		assert.Equal(t, int64(10*workers), stored.TotalKeystrokes)
	})

	t.Run("Fail: Merge error leaves state untouched", func(t *testing.T) {
		repo := NewInMemorySummaryRepository()
		_, err := submit(ctx, repo, "user-1", sessionResult(80, 10))
		require.NoError(t, err)

		boom := errors.New("merge failed")
		session := domain.NewPracticeSession("user-1", sessionResult(10, 10), testNow)
		_, err = repo.RecordSession(ctx, session, func(existing *domain.UserStatsSummary) (*domain.SummaryUpdate, error) {
			existing.TotalSessions = 999
			existing.Unigraphs["e"].Count = 999
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := repo.GetByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.TotalSessions)
		assert.Equal(t, 10, stored.Unigraphs["e"].Count)

		history, _ := repo.ListByUserID(ctx, "user-1")
		assert.Len(t, history, 1)
	})

	t.Run("Fail: Cancelled context commits nothing", func(t *testing.T) {
		repo := NewInMemorySummaryRepository()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := submit(cctx, repo, "user-1", sessionResult(80, 10))

		assert.ErrorIs(t, err, context.Canceled)
		_, err = repo.GetByUserID(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrSummaryNotFound)
	})

	t.Run("Fail: Stale merge result is a conflict", func(t *testing.T) {
		repo := NewInMemorySummaryRepository()
		_, err := submit(ctx, repo, "user-1", sessionResult(80, 10))
		require.NoError(t, err)

		session := domain.NewPracticeSession("user-1", sessionResult(80, 1), testNow)
		_, err = repo.RecordSession(ctx, session, func(existing *domain.UserStatsSummary) (*domain.SummaryUpdate, error) {
			update := domain.Aggregate(existing, "user-1", sessionResult(80, 1), testNow)
			update.Summary.Version = 42
			return update, nil
		})

		assert.ErrorIs(t, err, domain.ErrSummaryConflict)
	})
}

func TestInMemorySummaryRepository_Streaks(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemorySummaryRepository()

	assert.ErrorIs(t, repo.UpdateStreaks(ctx, "user-1", 1, 1), domain.ErrSummaryNotFound)

	_, err := submit(ctx, repo, "user-1", sessionResult(80, 10))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStreaks(ctx, "user-1", 4, 4))
	require.NoError(t, repo.UpdateStreaks(ctx, "user-1", 1, 1))

	_, err = submit(ctx, repo, "user-1", sessionResult(80, 10))
	require.NoError(t, err)

	stored, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.PracticeStreak)
	assert.Equal(t, 4, stored.LongestStreak)
}

func TestInMemorySummaryRepository_ListByUserIDAndDateRange(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemorySummaryRepository()

	for _, offset := range []int{0, 1, 5} {
		r := sessionResult(90, 1)
		r.StartTime = testNow.AddDate(0, 0, -offset)
		_, err := submit(ctx, repo, "user-1", r)
		require.NoError(t, err)
	}

	got, err := repo.ListByUserIDAndDateRange(ctx, "user-1", testNow.AddDate(0, 0, -2), testNow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].StartTime.Before(got[1].StartTime))
}

func TestInMemorySummaryRepository_DeleteByUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemorySummaryRepository()

	assert.ErrorIs(t, repo.DeleteByUserID(ctx, "user-1"), domain.ErrSummaryNotFound)

	_, err := submit(ctx, repo, "user-1", sessionResult(80, 10))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByUserID(ctx, "user-1"))
	_, err = repo.GetByUserID(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrSummaryNotFound)
	history, _ := repo.ListByUserID(ctx, "user-1")
	assert.Empty(t, history)
}

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	u, err := domain.NewUser("id-1", "Mixed@Case.dev", "mixer")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	dup, _ := domain.NewUser("id-2", "mixed@case.dev", "other")
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailAlreadyExists)

	sameName, _ := domain.NewUser("id-3", "new@case.dev", "mixer")
	assert.ErrorIs(t, repo.Create(ctx, sameName), domain.ErrUsernameAlreadyExists)

	got, err := repo.GetByEmail(ctx, " MIXED@case.dev ")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)

	require.NoError(t, repo.Delete(ctx, "id-1"))
	_, err = repo.GetByID(ctx, "id-1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "id-1"), domain.ErrUserNotFound)
}
