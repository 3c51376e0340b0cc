// Package session は Redis をバックエンドとするサーバーサイドセッションを提供します。
// クライアントには不透明なトークンだけを Cookie で渡し、ペイロードはサーバー側に保持します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "sess:"

// ErrNoSession はアクティブなセッションが存在しないことを表します。
// バックエンド障害とは区別して扱います。
var ErrNoSession = errors.New("no active session")

// Payload はログイン時点のユーザースナップショットです。
// ログイン後にユーザーレコードが変化してもセッション内容は追随しません。
type Payload struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Manager はセッションの作成・参照・破棄と Cookie の発行を担います。
type Manager struct {
	rdb        *redis.Client
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewManager は Manager を作成します。
func NewManager(rdb *redis.Client, ttl time.Duration, cookieName string, secure bool) *Manager {
	return &Manager{
		rdb:        rdb,
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Create は新しいセッションを作成し、トークンを返します。
// トークンはログインごとに採番し、破棄済みトークンを再利用することはありません。
// 有効期限は Redis の TTL に委ねます。
func (m *Manager) Create(ctx context.Context, payload *Payload) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("payload is nil")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode session payload: %w", err)
	}

	token := uuid.NewString()
	if err := m.rdb.Set(ctx, sessionKey(token), data, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// Get はトークンに対応するセッションペイロードを返します。
// トークンが未提示・期限切れ・破棄済みの場合は ErrNoSession を返します。
func (m *Manager) Get(ctx context.Context, token string) (*Payload, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	data, err := m.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode session payload: %w", err)
	}
	return &payload, nil
}

// Destroy はセッションを破棄します。
// 対象が存在しない場合は ErrNoSession、バックエンド障害の場合はその他のエラーを返します。
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}

	deleted, err := m.rdb.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if deleted == 0 {
		return ErrNoSession
	}
	return nil
}

// Token はリクエストの Cookie からセッショントークンを取り出します。
// Cookie が無い場合は空文字を返します。
func (m *Manager) Token(c *gin.Context) string {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return token
}

// Current は現在のリクエストに紐づくセッションペイロードを返します。
func (m *Manager) Current(c *gin.Context) (*Payload, error) {
	return m.Get(c.Request.Context(), m.Token(c))
}

// IssueCookie はセッショントークンを Cookie としてレスポンスに載せます。
func (m *Manager) IssueCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

// ClearCookie はセッション Cookie を失効させます。
func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
