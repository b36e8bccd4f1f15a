// internal/infra/solana/keypair_loader.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
)

var ErrKeypairFormat = errors.New("keypair: unsupported key format")

// SecretSource は Secret Manager などから生の値を取り出すものです。
type SecretSource interface {
	Get(ctx context.Context, secretID string) ([]byte, error)
}

// ParseKeypair は solana-keygen 形式の [int,...]（64 要素）または base58 文字列を復元します。
func ParseKeypair(raw []byte) (types.Account, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return types.Account{}, fmt.Errorf("%w: empty", ErrKeypairFormat)
	}

	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return types.Account{}, fmt.Errorf("%w: %v", ErrKeypairFormat, err)
		}
		if len(ints) != ed25519.PrivateKeySize {
			return types.Account{}, fmt.Errorf("%w: got %d bytes, want %d", ErrKeypairFormat, len(ints), ed25519.PrivateKeySize)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return types.Account{}, fmt.Errorf("%w: byte %d out of range", ErrKeypairFormat, i)
			}
			b[i] = byte(v)
		}
		return types.AccountFromBytes(b)
	}

	acc, err := types.AccountFromBase58(s)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrKeypairFormat, err)
	}
	return acc, nil
}

// EncodeKeypair は solana-keygen 互換の JSON 配列にします。
func EncodeKeypair(acc types.Account) ([]byte, error) {
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// LoadKeypair は secretID があれば Secret Manager、無ければローカルファイルから読み込みます。
func LoadKeypair(ctx context.Context, secrets SecretSource, secretID, path string) (types.Account, error) {
	if id := strings.TrimSpace(secretID); id != "" {
		if secrets == nil {
			return types.Account{}, fmt.Errorf("keypair: secret %q requested but secret manager is not configured", id)
		}
		raw, err := secrets.Get(ctx, id)
		if err != nil {
			return types.Account{}, fmt.Errorf("keypair: load secret: %w", err)
		}
		return ParseKeypair(raw)
	}

	p := strings.TrimSpace(path)
	if p == "" {
		return types.Account{}, errors.New("keypair: neither secret nor file configured")
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return types.Account{}, fmt.Errorf("keypair: read file: %w", err)
	}
	return ParseKeypair(raw)
}
