package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gatehouse/internal/session"
	"github.com/yourusername/gatehouse/internal/users"
)

// コンテキストキー。ガードが取得した値を後段のフローへ引き渡すために使います。
const (
	// ContextUserKey は CheckUsernameExists が取得したユーザーレコードのキーです。
	ContextUserKey = "auth.user"
	// ContextSessionKey は Restricted が取得したセッションペイロードのキーです。
	ContextSessionKey = "auth.session"

	contextCredentialsKey = "auth.credentials"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// BindCredentials は JSON ボディを検証してコンテキストに載せるガードです。
// ボディは一度しか読めないため、後段のガードとフローはここで載せた値を参照します。
func (m *Manager) BindCredentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "username and password are required",
			})
			return
		}
		c.Set(contextCredentialsKey, &req)
		c.Next()
	}
}

// CheckUsernameFree は登録時のユーザー名重複を検査するガードです。
// 既存レコードが見つかった場合は 422 でフローを打ち切ります。
func (m *Manager) CheckUsernameFree() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentialsFromContext(c)

		_, err := m.store.FindByUsername(c.Request.Context(), creds.Username)
		switch {
		case err == nil:
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Username taken",
			})
		case errors.Is(err, users.ErrNotFound):
			c.Next()
		default:
			m.errs.Internal(c, err)
		}
	}
}

// CheckUsernameExists はログイン対象のユーザーを検索するガードです。
// 見つかったレコードはコンテキストへ載せ、後段のフローが再検索せずに使えるようにします。
// 見つからない場合は「ユーザーが存在しない」とは明かさず 401 の汎用メッセージを返します。
func (m *Manager) CheckUsernameExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentialsFromContext(c)

		user, err := m.store.FindByUsername(c.Request.Context(), creds.Username)
		switch {
		case err == nil:
			c.Set(ContextUserKey, user)
			c.Next()
		case errors.Is(err, users.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid credentials",
			})
		default:
			m.errs.Internal(c, err)
		}
	}
}

// CheckPasswordLength はパスワードポリシーを検査するガードです。
// 最小文字数は設定値（デフォルト 4 = 「3文字より長い」）です。
func (m *Manager) CheckPasswordLength() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentialsFromContext(c)

		if len(creds.Password) < m.minPasswordLength {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"message": fmt.Sprintf("Password must be longer than %d chars", m.minPasswordLength-1),
			})
			return
		}
		if len(creds.Password) > MaxPasswordLength {
			// bcrypt の入力上限。ここで弾いておけばハッシュ化が入力起因で失敗することはない
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"message": fmt.Sprintf("Password must be %d chars or fewer", MaxPasswordLength),
			})
			return
		}
		c.Next()
	}
}

// Restricted はアクティブなセッションを要求するガードです。
func (m *Manager) Restricted() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := m.sessions.Current(c)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message": "You shall not pass!",
				})
				return
			}
			m.errs.Internal(c, err)
			return
		}
		c.Set(ContextSessionKey, payload)
		c.Next()
	}
}

// credentialsFromContext は BindCredentials が載せた資格情報を取り出します。
// ガードの並び順が正しければ必ず存在します。
func credentialsFromContext(c *gin.Context) *credentials {
	value, ok := c.Get(contextCredentialsKey)
	if !ok {
		panic("auth: credentials missing from context; BindCredentials must run first")
	}
	return value.(*credentials)
}

// userFromContext は CheckUsernameExists が載せたユーザーレコードを取り出します。
func userFromContext(c *gin.Context) *users.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		panic("auth: user record missing from context; CheckUsernameExists must run first")
	}
	return value.(*users.User)
}
