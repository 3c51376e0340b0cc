// Package users はユーザーレコードの永続化と一覧取得を提供します。
package users

// User は永続化されるユーザーレコードです。
// パスワードハッシュは json タグで除外しているため、レスポンスに混入することはありません。
type User struct {
	ID           int64  `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
