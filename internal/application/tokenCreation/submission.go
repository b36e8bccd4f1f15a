// internal/application/tokenCreation/submission.go
package tokenCreation

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

var (
	ErrWalletNotConfigured = errors.New("submission: wallet not configured")
	ErrChainNotConfigured  = errors.New("submission: chain rpc not configured")
	ErrEmptyBatch          = errors.New("submission: instruction batch is empty")
	ErrEmptySignature      = errors.New("submission: wallet returned empty signature")
)

// SubmissionCoordinator は組み立て済みバッチをウォレットに渡し、確認まで待ちます。
// 失敗は SubmissionError にまとめ、自動リトライはしません。
type SubmissionCoordinator struct {
	wallet     Wallet
	chain      Chain
	commitment rpc.Commitment
}

func NewSubmissionCoordinator(wallet Wallet, chain Chain, commitment rpc.Commitment) *SubmissionCoordinator {
	if strings.TrimSpace(string(commitment)) == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &SubmissionCoordinator{wallet: wallet, chain: chain, commitment: commitment}
}

// Submit sends the batch co-signed by coSigners, calls onSent once the wallet returns a
// signature, then awaits confirmation at the configured commitment.
func (c *SubmissionCoordinator) Submit(
	ctx context.Context,
	batch Batch,
	onSent func(signature string),
	coSigners ...types.Account,
) (string, error) {
	if c == nil || c.wallet == nil {
		return "", &tcdom.SubmissionError{Err: ErrWalletNotConfigured}
	}
	if c.chain == nil {
		return "", &tcdom.SubmissionError{Err: ErrChainNotConfigured}
	}
	if len(batch.Steps) == 0 {
		return "", &tcdom.SubmissionError{Err: ErrEmptyBatch}
	}

	sig, err := c.wallet.SendTransaction(ctx, batch.Instructions(), coSigners...)
	if err != nil {
		log.Printf("[submission] send FAILED steps=%d err=%v", len(batch.Steps), err)
		return "", &tcdom.SubmissionError{Err: err}
	}
	if strings.TrimSpace(sig) == "" {
		return "", &tcdom.SubmissionError{Err: ErrEmptySignature}
	}
	if onSent != nil {
		onSent(sig)
	}

	if err := c.chain.ConfirmTransaction(ctx, sig, c.commitment); err != nil {
		log.Printf("[submission] confirm FAILED tx=%s err=%v", maskShort(sig), err)
		return sig, &tcdom.SubmissionError{Signature: sig, Err: err}
	}

	log.Printf("[submission] confirmed tx=%s commitment=%s", maskShort(sig), c.commitment)
	return sig, nil
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
