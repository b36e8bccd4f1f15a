// internal/application/tokenCreation/ports.go
package tokenCreation

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// AssetStore は画像と metadata.json を保存し、公開 URI を返すストレージです。
// 実装: Pinata / kubo (IPFS) / GCS / Irys(Arweave)
type AssetStore interface {
	PinFile(ctx context.Context, name, contentType string, data []byte) (string, error)
	PinJSON(ctx context.Context, name string, doc []byte) (string, error)
}

// AssetSessionStarter は 1 リクエスト分のオブジェクトを同じ場所にまとめたいストアが実装します（GCS など）。
// Upload は画像と metadata.json を NewSession が返したストアに対して書きます。
type AssetSessionStarter interface {
	NewSession() AssetStore
}

// Wallet は署名者の能力です。PublicKey が nil の場合は未接続とみなします。
// SendTransaction は自分を fee payer としてメッセージを組み、coSigners と一緒に署名して送信します。
type Wallet interface {
	PublicKey() *common.PublicKey
	SendTransaction(ctx context.Context, instructions []types.Instruction, coSigners ...types.Account) (string, error)
}

// Chain is the read/confirm side of the RPC capability.
type Chain interface {
	AccountExists(ctx context.Context, address common.PublicKey) (bool, error)
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	// ConfirmTransaction blocks until the signature reaches commitment, fails, or ctx ends.
	ConfirmTransaction(ctx context.Context, signature string, commitment rpc.Commitment) error
	MintDecimals(ctx context.Context, mint common.PublicKey) (uint8, error)
}

// StateObserver receives every state transition of a workflow run.
type StateObserver func(from, to State)
