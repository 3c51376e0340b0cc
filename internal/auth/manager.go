package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gatehouse/internal/audit"
	"github.com/yourusername/gatehouse/internal/httperr"
	"github.com/yourusername/gatehouse/internal/session"
	"github.com/yourusername/gatehouse/internal/users"
)

// Manager は認証フローをまとめた構造体です。
// ガードが前提条件を検査し、フローはハッシュ化・保存・セッション操作だけを行います。
type Manager struct {
	store             users.Store
	hasher            *PasswordHasher
	sessions          *session.Manager
	errs              *httperr.Responder
	audit             *audit.Manager // nil の場合は監査ログ無効
	minPasswordLength int
}

// NewManager は認証マネージャーを作成します。auditManager は nil を許容します。
func NewManager(
	store users.Store,
	hasher *PasswordHasher,
	sessions *session.Manager,
	errs *httperr.Responder,
	auditManager *audit.Manager,
	minPasswordLength int,
) *Manager {
	return &Manager{
		store:             store,
		hasher:            hasher,
		sessions:          sessions,
		errs:              errs,
		audit:             auditManager,
		minPasswordLength: minPasswordLength,
	}
}

// Register は POST /api/auth/register のハンドラーです。
// ガード（ユーザー名重複・パスワード長）を通過済みの前提で、ハッシュ化と保存を行います。
func (m *Manager) Register(c *gin.Context) {
	creds := credentialsFromContext(c)

	hash, err := m.hasher.Hash(creds.Password)
	if err != nil {
		m.errs.Internal(c, err)
		return
	}

	user, err := m.store.Add(c.Request.Context(), creds.Username, hash)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			// 事前チェックの後に別リクエストが同名で登録したケース。
			// ストアの一意制約が最終的な番人なので、事前チェックと同じ応答に揃える
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Username taken"})
			return
		}
		m.errs.Internal(c, err)
		return
	}

	m.recordAudit(c, audit.EventRegister, user.Username)
	c.JSON(http.StatusOK, user)
}

// Login は POST /api/auth/login のハンドラーです。
// CheckUsernameExists がコンテキストに載せたレコードを使って検証するため、ストアへの再問い合わせはしません。
func (m *Manager) Login(c *gin.Context) {
	creds := credentialsFromContext(c)
	user := userFromContext(c)

	if !m.hasher.Check(creds.Password, user.PasswordHash) {
		// ユーザー名不一致（ガード側）と同じ応答にして、どちらが誤りかを外部に明かさない
		m.recordAudit(c, audit.EventLoginFailed, user.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := m.sessions.Create(c.Request.Context(), &session.Payload{
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		m.errs.Internal(c, err)
		return
	}

	m.sessions.IssueCookie(c, token)
	m.recordAudit(c, audit.EventLogin, user.Username)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Welcome %s!", user.Username)})
}

// Logout は GET /api/auth/logout のハンドラーです。
// セッションが無い場合も 200 で応答し、500 は破棄自体の失敗に限ります。
func (m *Manager) Logout(c *gin.Context) {
	token := m.sessions.Token(c)

	// 監査ログ用にユーザー名を先に控えておく（無くても破棄は続行）
	var username string
	if payload, err := m.sessions.Get(c.Request.Context(), token); err == nil {
		username = payload.Username
	}

	err := m.sessions.Destroy(c.Request.Context(), token)
	switch {
	case err == nil:
		m.sessions.ClearCookie(c)
		m.recordAudit(c, audit.EventLogout, username)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	case errors.Is(err, session.ErrNoSession):
		c.JSON(http.StatusOK, gin.H{"message": "no session"})
	default:
		// 破棄に失敗したセッションはまだ有効な可能性があるため Cookie は消さない
		m.errs.Internal(c, err)
	}
}

// recordAudit は監査イベントを記録します。監査が無効な場合は何もしません。
func (m *Manager) recordAudit(c *gin.Context, event audit.Event, username string) {
	if m.audit == nil {
		return
	}
	m.audit.Record(c.Request.Context(), &audit.Entry{
		Event:    event,
		Username: username,
		RemoteIP: c.ClientIP(),
	})
}
