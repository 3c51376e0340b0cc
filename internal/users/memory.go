package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore はメモリ上のユーザーストアです。
// DATABASE_URL を設定しないローカル開発とテストで使用します。
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]User
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byName: make(map[string]User),
	}
}

// FindByUsername はユーザー名の完全一致でレコードを検索します。
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// Add は新しいレコードを挿入し、採番済みのレコードを返します。
func (s *MemoryStore) Add(ctx context.Context, username, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return nil, ErrUsernameTaken
	}

	user := User{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.nextID++
	s.byName[username] = user
	return &user, nil
}

// FindAll は全ユーザーを ID 順で返します。パスワードハッシュは含めません。
func (s *MemoryStore) FindAll(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]User, 0, len(s.byName))
	for _, user := range s.byName {
		user.PasswordHash = ""
		list = append(list, user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
