package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

type sentMail struct{ from, to, subject, body string }

type fakeClient struct {
	sent []sentMail
	err  error
}

func (f *fakeClient) Send(ctx context.Context, from, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{from, to, subject, body})
	return f.err
}

func TestWorkflowMailer(t *testing.T) {
	c := &fakeClient{}
	m := NewWorkflowMailer(c, "ops@example.com", "team@example.com", "devnet")

	m.Notify(context.Background(), tcdom.Notification{Level: tcdom.LevelInfo, Message: "Uploading metadata to IPFS..."})
	assert.Empty(t, c.sent)

	m.Notify(context.Background(), tcdom.Notification{Level: tcdom.LevelSuccess, Message: "Token created successfully!", TxID: "5abc"})
	require.Len(t, c.sent, 1)
	assert.Equal(t, "[tokenforge] Token created successfully!", c.sent[0].subject)
	assert.Contains(t, c.sent[0].body, "https://explorer.solana.com/tx/5abc?cluster=devnet")
	assert.Equal(t, "team@example.com", c.sent[0].to)

	c.err = errors.New("quota")
	assert.NotPanics(t, func() {
		m.Notify(context.Background(), tcdom.Notification{Level: tcdom.LevelError, Message: "Failed to create token", Description: "boom"})
	})
	assert.Contains(t, c.sent[1].body, "boom")
}

func TestExplorerTxURL(t *testing.T) {
	assert.Equal(t, "https://explorer.solana.com/tx/s", explorerTxURL("s", "mainnet-beta"))
	assert.Equal(t, "https://explorer.solana.com/tx/s?cluster=testnet", explorerTxURL("s", "testnet"))
}

func TestSendGridClient_Validation(t *testing.T) {
	assert.Error(t, NewSendGridClient("").Send(context.Background(), "a", "b", "s", "x"))
	assert.Error(t, NewSendGridClient("k").Send(context.Background(), "", "b", "s", "x"))
	assert.Error(t, NewSendGridClient("k").Send(context.Background(), "a", "", "s", "x"))
}
