package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore は PostgreSQL をバックエンドとするユーザーストアです。
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema は users テーブルを作成します（存在する場合は何もしません）。
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS users (
		user_id       BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure users schema: %w", err)
	}
	return nil
}

// FindByUsername はユーザー名の完全一致でレコードを検索します。
// TEXT 型の比較は大文字小文字を区別します。
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT user_id, username, password_hash FROM users WHERE username = $1`
	err := s.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// Add は新しいレコードを挿入し、採番済みのレコードを返します。
// 事前チェックとの競合で一意制約に違反した場合は ErrUsernameTaken を返します。
func (s *PostgresStore) Add(ctx context.Context, username, passwordHash string) (*User, error) {
	user := User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING user_id`
	err := s.pool.QueryRow(ctx, query, username, passwordHash).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

// FindAll は全ユーザーを ID 順で返します。パスワードハッシュは SELECT 対象に含めません。
func (s *PostgresStore) FindAll(ctx context.Context) ([]User, error) {
	query := `SELECT user_id, username FROM users ORDER BY user_id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return list, nil
}
