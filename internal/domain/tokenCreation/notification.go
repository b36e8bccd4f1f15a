// internal/domain/tokenCreation/notification.go
package tokenCreation

import "context"

// Level is the three-level user-facing signal.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification は UI 層（HTTP レスポンス / CLI 出力 / メール）に渡す通知です。
type Notification struct {
	Level       Level  `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	TxID        string `json:"txid,omitempty"`
}

// Notifier receives workflow notifications. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }
