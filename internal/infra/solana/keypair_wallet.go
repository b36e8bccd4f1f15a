// internal/infra/solana/keypair_wallet.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"tokenforge/internal/infra/metrics"
)

var ErrNoInstructions = errors.New("keypair_wallet: no instructions")

// KeypairWallet はサーバ側で保持する鍵で署名・送信するウォレットです。
// fee payer 兼 mint authority として振る舞い、追加の共同署名者（新規 Mint 鍵など）を受け取ります。
type KeypairWallet struct {
	account types.Account
	rpc     rpcAPI
}

func NewKeypairWallet(account types.Account, chain *RPCClient) *KeypairWallet {
	w := &KeypairWallet{account: account}
	if chain != nil {
		w.rpc = chain.rpc
	}
	return w
}

// PublicKey returns nil when no key has been loaded.
func (w *KeypairWallet) PublicKey() *common.PublicKey {
	if w == nil || w.account.PublicKey == (common.PublicKey{}) {
		return nil
	}
	pk := w.account.PublicKey
	return &pk
}

// SendTransaction は最新 blockhash でメッセージを作り、自分と coSigners で署名して送信します。
func (w *KeypairWallet) SendTransaction(ctx context.Context, ins []types.Instruction, coSigners ...types.Account) (string, error) {
	if w == nil || w.rpc == nil {
		return "", ErrRPCNotConfigured
	}
	if w.PublicKey() == nil {
		return "", errors.New("keypair_wallet: signer not loaded")
	}
	if len(ins) == 0 {
		return "", ErrNoInstructions
	}

	bh, err := w.rpc.GetLatestBlockhash(ctx)
	metrics.RecordRPC("getLatestBlockhash", err)
	if err != nil {
		return "", fmt.Errorf("keypair_wallet: get latest blockhash: %w", err)
	}

	signers := append([]types.Account{w.account}, coSigners...)
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        w.account.PublicKey,
			RecentBlockhash: bh.Blockhash,
			Instructions:    ins,
		}),
		Signers: signers,
	})
	if err != nil {
		return "", fmt.Errorf("keypair_wallet: build transaction: %w", err)
	}

	sig, err := w.rpc.SendTransaction(ctx, tx)
	metrics.RecordRPC("sendTransaction", err)
	if err != nil {
		return "", fmt.Errorf("keypair_wallet: send transaction: %w", err)
	}

	log.Printf(
		"[keypair_wallet] sent tx=%s payer=%s instructions=%d signers=%d",
		maskShort(sig), maskShort(w.account.PublicKey.ToBase58()), len(ins), len(signers),
	)
	return sig, nil
}
