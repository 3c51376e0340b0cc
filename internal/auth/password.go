// Package auth は認証フロー（登録・ログイン・ログアウト）とそのガードを提供します。
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength は bcrypt が受け付ける平文の上限（バイト）です。
const MaxPasswordLength = 72

// ErrInvalidPassword はハッシュ化できない平文が渡されたことを表します。
// 上流のガードで検証しているため、通常はここまで到達しません。
var ErrInvalidPassword = errors.New("invalid password input")

// PasswordHasher は bcrypt によるパスワードのハッシュ化と検証を行います。
// コストファクターは設定から与えます（デフォルト 8）。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher は PasswordHasher を作成します。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードからソルト付きハッシュを生成します。
// ソルトは毎回採番されるため、同じ平文でも呼び出しごとに異なるハッシュ文字列になります。
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" || len(password) > MaxPasswordLength {
		return "", ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Check は平文とハッシュの一致を検証します。
func (h *PasswordHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
