// Package analytics ships finished practice sessions to ClickHouse for offline reporting.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

const createSessionsTable = `
    CREATE TABLE IF NOT EXISTS practice_sessions (
        session_id           String,
        user_id              String,
        wpm                  Float64,
        accuracy             Float64,
        raw_accuracy         Nullable(Float64),
        practice_duration    Int64,
        corrected_char_count Int64,
        deleted_char_count   Int64,
        total_keystrokes     Int64,
        total_char_count     Int64,
        error_char_count     Int64,
        start_time           DateTime64(3, 'UTC'),
        end_time             Nullable(DateTime64(3, 'UTC')),
        created_at           DateTime64(3, 'UTC')
    ) ENGINE = MergeTree
    ORDER BY (user_id, start_time)`

const insertSessions = `
    INSERT INTO practice_sessions (
        session_id, user_id, wpm, accuracy, raw_accuracy, practice_duration,
        corrected_char_count, deleted_char_count, total_keystrokes, total_char_count, error_char_count,
        start_time, end_time, created_at
    )`

// ClickHouseSessionSink implements workers.SessionSink.
type ClickHouseSessionSink struct {
	conn clickhouse.Conn
}

func NewClickHouseSessionSink(ctx context.Context, cfg Config) (*ClickHouseSessionSink, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "keystroke-engine", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Println("[ANALYTICS] Connected to ClickHouse")
	return &ClickHouseSessionSink{conn: conn}, nil
}

func (s *ClickHouseSessionSink) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create practice_sessions table: %w", err)
	}
	return nil
}

func (s *ClickHouseSessionSink) WriteSessions(ctx context.Context, sessions []*domain.PracticeSession) error {
	if len(sessions) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, insertSessions)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, session := range sessions {
		if err := batch.Append(sessionRow(session)...); err != nil {
			log.Printf("[ANALYTICS] Skipping session %s: %v", session.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("[ANALYTICS] Exported %d sessions", len(sessions))
	return nil
}

// CountByUser returns how many sessions of userID have reached the analytics store.
func (s *ClickHouseSessionSink) CountByUser(ctx context.Context, userID string) (uint64, error) {
	var n uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM practice_sessions WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func (s *ClickHouseSessionSink) Close() error {
	return s.conn.Close()
}

// sessionRow lists the column values in insertSessions order.
func sessionRow(s *domain.PracticeSession) []any {
	return []any{
		s.ID,
		s.UserID,
		s.WPM,
		s.Accuracy,
		s.RawAccuracy,
		s.PracticeDuration,
		s.CorrectedCharCount,
		s.DeletedCharCount,
		s.TotalKeystrokes,
		s.TotalCharCount,
		s.ErrorCharCount,
		s.StartTime.UTC(),
		s.EndTime,
		s.CreatedAt.UTC(),
	}
}
