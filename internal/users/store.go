package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound は指定されたユーザー名のレコードが存在しないことを表します。
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken はユーザー名の一意制約に違反したことを表します。
	ErrUsernameTaken = errors.New("username already taken")
)

// Store はユーザーレコードの保管先です。
// FindByUsername はユーザー名の完全一致（大文字小文字を区別）で検索します。
// Add は重複チェック後の挿入でも競合し得るため、ストア側の一意制約を最終的な番人とし、
// 制約違反は ErrUsernameTaken として報告します。
// FindAll が返すレコードにパスワードハッシュは含まれません。
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Add(ctx context.Context, username, passwordHash string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
}
