// internal/adapters/out/notify/notifier.go
package notify

import (
	"context"
	"log"
	"sync"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

// LogNotifier は通知をログに出すだけの実装です。
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n tcdom.Notification) {
	if n.TxID != "" {
		log.Printf("[notify] %s: %s tx=%s %s", n.Level, n.Message, n.TxID, n.Description)
		return
	}
	log.Printf("[notify] %s: %s %s", n.Level, n.Message, n.Description)
}

// Collector は 1 回のリクエスト分の通知を貯めて、レスポンスに含めるために使います。
type Collector struct {
	mu    sync.Mutex
	items []tcdom.Notification
}

func (c *Collector) Notify(ctx context.Context, n tcdom.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Drain returns collected notifications and resets the collector.
func (c *Collector) Drain() []tcdom.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}

// Multi は複数の通知先に順番に配ります。nil は無視します。
type Multi []tcdom.Notifier

func NewMulti(ns ...tcdom.Notifier) Multi {
	out := make(Multi, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m Multi) Notify(ctx context.Context, n tcdom.Notification) {
	for _, x := range m {
		x.Notify(ctx, n)
	}
}
