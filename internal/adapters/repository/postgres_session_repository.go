package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.SessionRepository = (*PostgresSessionRepository)(nil)

const sessionColumns = `
    id, user_id, wpm, accuracy, raw_accuracy, practice_duration,
    corrected_char_count, deleted_char_count, total_keystrokes, total_char_count, error_char_count,
    start_time, end_time, created_at`

type PostgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func insertSession(ctx context.Context, tx *sqlx.Tx, s *domain.PracticeSession) error {
	query := `
        INSERT INTO practice_sessions (` + sessionColumns + `)
        VALUES (
            :id, :user_id, :wpm, :accuracy, :raw_accuracy, :practice_duration,
            :corrected_char_count, :deleted_char_count, :total_keystrokes, :total_char_count, :error_char_count,
            :start_time, :end_time, :created_at
        )`

	if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.PracticeSession, error) {
	query := `
        SELECT ` + sessionColumns + ` FROM practice_sessions
        WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
        ORDER BY start_time ASC`

	sessions := []*domain.PracticeSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("session range query failed: %w", err)
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PracticeSession, error) {
	query := `
        SELECT ` + sessionColumns + ` FROM practice_sessions
        WHERE user_id = $1
        ORDER BY start_time ASC`

	sessions := []*domain.PracticeSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("session query failed: %w", err)
	}
	return sessions, nil
}
