package workers

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

type SummaryRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserStatsSummary, error)
	UpdateStreaks(ctx context.Context, userID string, current, longest int) error
}

type SessionRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]*domain.PracticeSession, error)
}

type StreakJob struct {
	UserID string
}

// StreakWorker recomputes daily practice streaks off the request path.
type StreakWorker struct {
	summaryRepo SummaryRepository
	sessionRepo SessionRepository
	jobs        chan StreakJob
	now         func() time.Time
}

func NewStreakWorker(sRepo SummaryRepository, pRepo SessionRepository) *StreakWorker {
	return &StreakWorker{
		summaryRepo: sRepo,
		sessionRepo: pRepo,
		jobs:        make(chan StreakJob, 100),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(userID string) {
	select {
	case w.jobs <- StreakJob{UserID: userID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for user %s", userID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	summary, err := w.summaryRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrSummaryNotFound) {
			log.Printf("Worker Error fetching summary of %s: %v", job.UserID, err)
		}
		return
	}

	sessions, err := w.sessionRepo.ListByUserID(ctx, job.UserID)
	if err != nil {
		log.Printf("Worker Error fetching sessions of %s: %v", job.UserID, err)
		return
	}

	days := make([]time.Time, 0, len(sessions))
	for _, s := range sessions {
		days = append(days, s.PracticedOn())
	}
	current, longest := calculateStreaks(days, w.now())

	before := *summary
	summary.UpdateStreak(current, longest)
	if before.PracticeStreak == summary.PracticeStreak && before.LongestStreak == summary.LongestStreak {
		return
	}

	if err := w.summaryRepo.UpdateStreaks(ctx, job.UserID, summary.PracticeStreak, summary.LongestStreak); err != nil {
		log.Printf("Worker Failed to update streak of %s: %v", job.UserID, err)
		return
	}
	log.Printf("Streak updated for %s: Current=%d, Longest=%d", job.UserID, summary.PracticeStreak, summary.LongestStreak)
}

// calculateStreaks counts runs of consecutive UTC days. The current run stays alive
// until a full day passes without practice.
func calculateStreaks(days []time.Time, now time.Time) (int, int) {
	seen := make(map[time.Time]bool, len(days))
	unique := make([]time.Time, 0, len(days))
	for _, d := range days {
		day := d.UTC().Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			unique = append(unique, day)
		}
	}
	if len(unique) == 0 {
		return 0, 0
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].After(unique[j])
	})

	const day = 24 * time.Hour
	today := now.UTC().Truncate(day)

	current := 0
	if today.Sub(unique[0]) <= day {
		current = 1
		for i := 0; i < len(unique)-1 && unique[i].Sub(unique[i+1]) == day; i++ {
			current++
		}
	}

	longest, run := 1, 1
	for i := 0; i < len(unique)-1; i++ {
		if unique[i].Sub(unique[i+1]) == day {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return current, longest
}
