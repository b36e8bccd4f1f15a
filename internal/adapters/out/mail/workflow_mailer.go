// internal/adapters/out/mail/workflow_mailer.go
package mail

import (
	"context"
	"fmt"
	"log"
	"strings"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

// WorkflowMailer は成功・失敗の通知だけを運用者宛にメールします（info は送らない）。
type WorkflowMailer struct {
	client  EmailClient
	from    string
	to      string
	cluster string
}

func NewWorkflowMailer(client EmailClient, from, to, cluster string) *WorkflowMailer {
	return &WorkflowMailer{client: client, from: from, to: to, cluster: cluster}
}

func (m *WorkflowMailer) Notify(ctx context.Context, n tcdom.Notification) {
	if m == nil || m.client == nil || n.Level == tcdom.LevelInfo {
		return
	}

	subject := "[tokenforge] " + n.Message
	if err := m.client.Send(ctx, m.from, m.to, subject, m.body(n)); err != nil {
		log.Printf("[workflow_mailer] send failed level=%s err=%v", n.Level, err)
	}
}

func (m *WorkflowMailer) body(n tcdom.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(n.Level)), n.Message)
	if n.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Description)
	}
	if n.TxID != "" {
		fmt.Fprintf(&b, "\ntx: %s\n", n.TxID)
		fmt.Fprintf(&b, "explorer: %s\n", explorerTxURL(n.TxID, m.cluster))
	}
	return b.String()
}

func explorerTxURL(sig, cluster string) string {
	u := "https://explorer.solana.com/tx/" + sig
	if c := strings.TrimSpace(cluster); c != "" && c != "mainnet-beta" && c != "mainnet" {
		u += "?cluster=" + c
	}
	return u
}
