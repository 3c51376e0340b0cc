package audit

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LogSink は監査イベントを標準ログに書き出します。
// データベースを使わないローカル開発向けのフォールバックです。
type LogSink struct {
	Logger *log.Logger
}

// Write はイベントを1行のログとして記録します。
func (s *LogSink) Write(ctx context.Context, entry *Entry) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("audit event=%s username=%s ip=%s id=%s", entry.Event, entry.Username, entry.RemoteIP, entry.ID)
	return nil
}

// PostgresSink は監査イベントを auth_audit テーブルへ保存します。
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink は PostgresSink を作成します。
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// EnsureSchema は auth_audit テーブルを作成します（存在する場合は何もしません）。
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS auth_audit (
		id         UUID PRIMARY KEY,
		event      TEXT NOT NULL,
		username   TEXT NOT NULL DEFAULT '',
		remote_ip  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure auth_audit schema: %w", err)
	}
	return nil
}

// Write はイベントを1行挿入します。再試行で同じ ID が来た場合は無視します。
func (s *PostgresSink) Write(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO auth_audit (id, event, username, remote_ip, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO NOTHING`
	_, err := s.pool.Exec(ctx, query, entry.ID, string(entry.Event), entry.Username, entry.RemoteIP, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
