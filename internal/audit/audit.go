// Package audit は認証イベントの監査証跡を非同期に記録します。
// 記録は fire-and-forget で、認証フローの応答には影響しません。
package audit

import (
	"context"
	"time"
)

// Event は監査対象の認証イベント種別です。
type Event string

const (
	EventRegister    Event = "register"
	EventLogin       Event = "login"
	EventLoginFailed Event = "login_failed"
	EventLogout      Event = "logout"
)

// Entry は1件の監査イベントです。
type Entry struct {
	ID        string    `json:"id"`
	Event     Event     `json:"event"`
	Username  string    `json:"username,omitempty"`
	RemoteIP  string    `json:"remoteIp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink は監査イベントの保存先です。
type Sink interface {
	Write(ctx context.Context, entry *Entry) error
}
