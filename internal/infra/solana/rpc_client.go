// internal/infra/solana/rpc_client.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	"tokenforge/internal/infra/metrics"
)

const defaultDevnetRPC = "https://api.devnet.solana.com"

var (
	ErrRPCNotConfigured   = errors.New("solana_rpc: client not configured")
	ErrMintAccountMissing = errors.New("solana_rpc: mint account not found")
	ErrMintAccountOwner   = errors.New("solana_rpc: account is not owned by the token program")
	ErrTransactionFailed  = errors.New("solana_rpc: transaction failed on chain")
)

// rpcAPI は blocto client のうち使うメソッドだけを切り出したものです。
type rpcAPI interface {
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}

// RPCClient は Chain capability（口座存在確認・rent・確認待ち・Mint 読み取り）の実装です。
type RPCClient struct {
	rpc          rpcAPI
	pollInterval time.Duration
}

// NewRPCClient resolves an empty URL to devnet.
func NewRPCClient(rpcURL string) *RPCClient {
	u := strings.TrimSpace(rpcURL)
	if u == "" {
		u = defaultDevnetRPC
	}
	return &RPCClient{
		rpc:          client.NewClient(u),
		pollInterval: 1 * time.Second,
	}
}

// AccountExists は口座の有無を返します。存在しない口座は nil エラー + ゼロ値で返るか、
// ノードによっては "not found" 系のエラーになるので両方を false に寄せます。
func (c *RPCClient) AccountExists(ctx context.Context, addr common.PublicKey) (bool, error) {
	if c == nil || c.rpc == nil {
		return false, ErrRPCNotConfigured
	}

	info, err := c.rpc.GetAccountInfo(ctx, addr.ToBase58())
	metrics.RecordRPC("getAccountInfo", err)
	if err != nil {
		if isAccountNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("solana_rpc: getAccountInfo %s: %w", maskShort(addr.ToBase58()), err)
	}
	return info.Owner != (common.PublicKey{}) || info.Lamports > 0, nil
}

func isAccountNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "account does not exist")
}

func (c *RPCClient) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if c == nil || c.rpc == nil {
		return 0, ErrRPCNotConfigured
	}
	v, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size)
	metrics.RecordRPC("getMinimumBalanceForRentExemption", err)
	if err != nil {
		return 0, fmt.Errorf("solana_rpc: rent exemption(size=%d): %w", size, err)
	}
	return v, nil
}

// ConfirmTransaction polls the signature status until it reaches commitment, fails on chain,
// or ctx is done.
func (c *RPCClient) ConfirmTransaction(ctx context.Context, sig string, commitment rpc.Commitment) error {
	if c == nil || c.rpc == nil {
		return ErrRPCNotConfigured
	}
	want := commitmentRank(commitment)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		st, err := c.rpc.GetSignatureStatus(ctx, sig)
		metrics.RecordRPC("getSignatureStatuses", err)
		switch {
		case err != nil:
			// 一時的な RPC 失敗は ctx の期限まで待ち続ける
			log.Printf("[solana_rpc] signature status error tx=%s err=%v", maskShort(sig), err)
		case st == nil:
			// まだノードに届いていない
		case st.Err != nil:
			return fmt.Errorf("%w: %v", ErrTransactionFailed, st.Err)
		case st.ConfirmationStatus != nil && commitmentRank(*st.ConfirmationStatus) >= want:
			log.Printf("[solana_rpc] tx=%s reached %s slot=%d", maskShort(sig), *st.ConfirmationStatus, st.Slot)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("solana_rpc: confirm tx=%s: %w", maskShort(sig), ctx.Err())
		case <-ticker.C:
		}
	}
}

func commitmentRank(c rpc.Commitment) int {
	switch c {
	case rpc.CommitmentProcessed:
		return 1
	case rpc.CommitmentConfirmed:
		return 2
	case rpc.CommitmentFinalized:
		return 3
	default:
		return 2
	}
}

// MintDecimals は Mint 口座を読み、decimals を返します。
func (c *RPCClient) MintDecimals(ctx context.Context, mint common.PublicKey) (uint8, error) {
	if c == nil || c.rpc == nil {
		return 0, ErrRPCNotConfigured
	}
	info, err := c.rpc.GetAccountInfo(ctx, mint.ToBase58())
	metrics.RecordRPC("getAccountInfo", err)
	if err != nil {
		if isAccountNotFound(err) {
			return 0, ErrMintAccountMissing
		}
		return 0, fmt.Errorf("solana_rpc: getAccountInfo %s: %w", maskShort(mint.ToBase58()), err)
	}
	if len(info.Data) == 0 {
		return 0, ErrMintAccountMissing
	}
	if info.Owner != common.TokenProgramID {
		return 0, ErrMintAccountOwner
	}

	m, err := token.MintAccountFromData(info.Data)
	if err != nil {
		return 0, fmt.Errorf("solana_rpc: decode mint %s: %w", maskShort(mint.ToBase58()), err)
	}
	return m.Decimals, nil
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
