// internal/domain/tokenCreation/ports.go
package tokenCreation

import "context"

// RecordRepository は作成済みトークンの記録先です。
// GetByMint は見つからない場合 ErrRecordNotFound を返します。
type RecordRepository interface {
	Save(ctx context.Context, rec TokenRecord) error
	GetByMint(ctx context.Context, mintAddress string) (TokenRecord, error)
}
