package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.SummaryRepository = (*CachedSummaryRepository)(nil)

const defaultSummaryTTL = 30 * time.Minute

// CachedSummaryRepository serves summary reads from redis and drops the entry on every write.
type CachedSummaryRepository struct {
	next  domain.SummaryRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedSummaryRepository(next domain.SummaryRepository, cache *redis.Client, ttl time.Duration) *CachedSummaryRepository {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &CachedSummaryRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (r *CachedSummaryRepository) cacheKey(userID string) string {
	return fmt.Sprintf("summary:%s", userID)
}

// generationKey is bumped on every write. Fills watch it, so a read that raced a
// commit never stores its stale copy.
func (r *CachedSummaryRepository) generationKey(userID string) string {
	return fmt.Sprintf("summary_gen:%s", userID)
}

func (r *CachedSummaryRepository) invalidate(ctx context.Context, userID string) {
	genKey := r.generationKey(userID)
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.cacheKey(userID))
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.ttl)
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate summary for user %s: %v", userID, err)
	}
}

func (r *CachedSummaryRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserStatsSummary, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var summary domain.UserStatsSummary
		if err := json.Unmarshal(val, &summary); err == nil {
			return &summary, nil
		}

		log.Printf("[CACHE] Corrupted summary for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	return r.loadAndFill(ctx, userID, key)
}

// loadAndFill reads through to the store and caches the result unless a write
// bumped the user's generation in between.
func (r *CachedSummaryRepository) loadAndFill(ctx context.Context, userID, key string) (*domain.UserStatsSummary, error) {
	var (
		summary *domain.UserStatsSummary
		loadErr error
		loaded  bool
	)
	err := r.cache.Watch(ctx, func(tx *redis.Tx) error {
		summary, loadErr = r.next.GetByUserID(ctx, userID)
		loaded = true
		if loadErr != nil {
			return nil
		}
		data, err := json.Marshal(summary)
		if err != nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, r.generationKey(userID))

	switch {
	case !loaded:
		log.Printf("[CACHE] Redis watch error: %v", err)
		return r.next.GetByUserID(ctx, userID)
	case loadErr != nil:
		return nil, loadErr
	case errors.Is(err, redis.TxFailedErr):
		log.Printf("[CACHE] Summary for user %s changed while loading, not cached", userID)
	case err != nil:
		log.Printf("[CACHE] Redis set error: %v", err)
	}
	return summary, nil
}

func (r *CachedSummaryRepository) RecordSession(ctx context.Context, session *domain.PracticeSession, merge domain.MergeFunc) (*domain.UserStatsSummary, error) {
	summary, err := r.next.RecordSession(ctx, session, merge)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, session.UserID)
	return summary, nil
}

func (r *CachedSummaryRepository) UpdateStreaks(ctx context.Context, userID string, current, longest int) error {
	if err := r.next.UpdateStreaks(ctx, userID, current, longest); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedSummaryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	defer r.invalidate(ctx, userID)
	return r.next.DeleteByUserID(ctx, userID)
}
