package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.SummaryRepository = (*PostgresSummaryRepository)(nil)

const summaryColumns = `
    id, user_id, total_sessions, total_practice_duration,
    average_wpm, fastest_wpm, average_accuracy, average_raw_accuracy,
    practice_streak, longest_streak,
    total_corrected_char_count, total_deleted_char_count, total_keystrokes,
    total_char_count, error_char_count,
    version, created_at, updated_at`

type PostgresSummaryRepository struct {
	db *sqlx.DB
}

func NewPostgresSummaryRepository(db *sqlx.DB) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{db: db}
}

type unigraphRow struct {
	domain.Unigraph
	MistypedJSON []byte `db:"mistyped"`
}

func (r *PostgresSummaryRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserStatsSummary, error) {
	return r.load(ctx, r.db, `SELECT `+summaryColumns+` FROM stats_summaries WHERE user_id = $1`, userID)
}

// load reads the summary row selected by query plus its ngram records.
func (r *PostgresSummaryRepository) load(ctx context.Context, q sqlx.QueryerContext, query string, userID string) (*domain.UserStatsSummary, error) {
	var s domain.UserStatsSummary
	if err := sqlx.GetContext(ctx, q, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("summary query failed: %w", err)
	}

	var unigraphs []unigraphRow
	if err := sqlx.SelectContext(ctx, q, &unigraphs,
		`SELECT id, summary_id, key, count, accuracy, mistyped FROM unigraphs WHERE summary_id = $1`, s.ID); err != nil {
		return nil, fmt.Errorf("unigraph query failed: %w", err)
	}
	s.Unigraphs = make(map[string]*domain.Unigraph, len(unigraphs))
	for i := range unigraphs {
		u := unigraphs[i].Unigraph
		if len(unigraphs[i].MistypedJSON) > 0 {
			if err := json.Unmarshal(unigraphs[i].MistypedJSON, &u.Mistyped); err != nil {
				return nil, fmt.Errorf("failed to unmarshal mistyped for %q: %w", u.Key, err)
			}
			if len(u.Mistyped) == 0 {
				u.Mistyped = nil
			}
		}
		s.Unigraphs[u.Key] = &u
	}

	var digraphs []*domain.Digraph
	if err := sqlx.SelectContext(ctx, q, &digraphs,
		`SELECT id, summary_id, key, count, accuracy, mean_interval FROM digraphs WHERE summary_id = $1`, s.ID); err != nil {
		return nil, fmt.Errorf("digraph query failed: %w", err)
	}
	s.Digraphs = make(map[string]*domain.Digraph, len(digraphs))
	for _, d := range digraphs {
		s.Digraphs[d.Key] = d
	}

	return &s, nil
}

// RecordSession runs the whole submission in one transaction. The summary row is
// locked with FOR UPDATE and the write is additionally guarded by the version column;
// a concurrent first insert surfaces as a unique violation on user_id.
func (r *PostgresSummaryRepository) RecordSession(ctx context.Context, session *domain.PracticeSession, merge domain.MergeFunc) (*domain.UserStatsSummary, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertSession(ctx, tx, session); err != nil {
		return nil, err
	}

	existing, err := r.load(ctx, tx, `SELECT `+summaryColumns+` FROM stats_summaries WHERE user_id = $1 FOR UPDATE`, session.UserID)
	if err != nil && !errors.Is(err, domain.ErrSummaryNotFound) {
		return nil, err
	}

	update, err := merge(existing)
	if err != nil {
		return nil, err
	}
	summary := update.Summary

	if update.Created {
		err = r.insertSummary(ctx, tx, summary)
	} else {
		err = r.updateSummary(ctx, tx, summary)
	}
	if err != nil {
		return nil, err
	}

	for _, u := range update.Unigraphs {
		if err := upsertUnigraph(ctx, tx, u); err != nil {
			return nil, err
		}
	}
	for _, d := range update.Digraphs {
		if err := upsertDigraph(ctx, tx, d); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return summary, nil
}

func (r *PostgresSummaryRepository) insertSummary(ctx context.Context, tx *sqlx.Tx, s *domain.UserStatsSummary) error {
	query := `
        INSERT INTO stats_summaries (
            id, user_id, total_sessions, total_practice_duration,
            average_wpm, fastest_wpm, average_accuracy, average_raw_accuracy,
            practice_streak, longest_streak,
            total_corrected_char_count, total_deleted_char_count, total_keystrokes,
            total_char_count, error_char_count,
            version, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8,
            $9, $10,
            $11, $12, $13,
            $14, $15,
            1, $16, $17
        )`

	_, err := tx.ExecContext(ctx, query,
		s.ID, s.UserID, s.TotalSessions, s.TotalPracticeDuration,
		s.AverageWPM, s.FastestWPM, s.AverageAccuracy, s.AverageRawAccuracy,
		s.PracticeStreak, s.LongestStreak,
		s.TotalCorrectedCharCount, s.TotalDeletedCharCount, s.TotalKeystrokes,
		s.TotalCharCount, s.ErrorCharCount,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolationConstraint(err); ok {
			return domain.ErrSummaryConflict
		}
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	s.Version = 1
	return nil
}

// updateSummary leaves the streak columns alone; they belong to the streak worker.
func (r *PostgresSummaryRepository) updateSummary(ctx context.Context, tx *sqlx.Tx, s *domain.UserStatsSummary) error {
	query := `
        UPDATE stats_summaries SET
            total_sessions=$1, total_practice_duration=$2,
            average_wpm=$3, fastest_wpm=$4, average_accuracy=$5, average_raw_accuracy=$6,
            total_corrected_char_count=$7, total_deleted_char_count=$8, total_keystrokes=$9,
            total_char_count=$10, error_char_count=$11,
            updated_at=$12, version = version + 1
        WHERE id=$13 AND version=$14
        RETURNING version`

	var newVersion int
	err := tx.QueryRowxContext(ctx, query,
		s.TotalSessions, s.TotalPracticeDuration,
		s.AverageWPM, s.FastestWPM, s.AverageAccuracy, s.AverageRawAccuracy,
		s.TotalCorrectedCharCount, s.TotalDeletedCharCount, s.TotalKeystrokes,
		s.TotalCharCount, s.ErrorCharCount,
		s.UpdatedAt,
		s.ID, s.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSummaryConflict
		}
		return fmt.Errorf("update summary failed: %w", err)
	}

	s.Version = newVersion
	return nil
}

func upsertUnigraph(ctx context.Context, tx *sqlx.Tx, u *domain.Unigraph) error {
	mistyped := u.Mistyped
	if mistyped == nil {
		mistyped = map[string]int{}
	}
	mistypedJSON, err := json.Marshal(mistyped)
	if err != nil {
		return fmt.Errorf("failed to marshal mistyped: %w", err)
	}

	query := `
        INSERT INTO unigraphs (id, summary_id, key, count, accuracy, mistyped)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (summary_id, key) DO UPDATE SET
            count = EXCLUDED.count,
            accuracy = EXCLUDED.accuracy,
            mistyped = EXCLUDED.mistyped`

	if _, err := tx.ExecContext(ctx, query, u.ID, u.SummaryID, u.Key, u.Count, u.Accuracy, mistypedJSON); err != nil {
		return fmt.Errorf("failed to upsert unigraph %q: %w", u.Key, err)
	}
	return nil
}

func upsertDigraph(ctx context.Context, tx *sqlx.Tx, d *domain.Digraph) error {
	query := `
        INSERT INTO digraphs (id, summary_id, key, count, accuracy, mean_interval)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (summary_id, key) DO UPDATE SET
            count = EXCLUDED.count,
            accuracy = EXCLUDED.accuracy,
            mean_interval = EXCLUDED.mean_interval`

	if _, err := tx.ExecContext(ctx, query, d.ID, d.SummaryID, d.Key, d.Count, d.Accuracy, d.MeanInterval); err != nil {
		return fmt.Errorf("failed to upsert digraph %q: %w", d.Key, err)
	}
	return nil
}

// UpdateStreaks never lowers the stored longest streak.
func (r *PostgresSummaryRepository) UpdateStreaks(ctx context.Context, userID string, current, longest int) error {
	query := `
        UPDATE stats_summaries
        SET practice_streak = $1, longest_streak = GREATEST(longest_streak, $2), updated_at = NOW()
        WHERE user_id = $3`

	res, err := r.db.ExecContext(ctx, query, current, longest, userID)
	if err != nil {
		return fmt.Errorf("update streaks failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSummaryNotFound
	}
	return nil
}

func (r *PostgresSummaryRepository) DeleteByUserID(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stats_summaries WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete summary failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSummaryNotFound
	}
	return nil
}
