// internal/adapters/out/db/tokenRecord_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

// TokenRecordsDDL は token_records テーブルの定義です（起動時に EnsureSchema で適用）。
const TokenRecordsDDL = `
CREATE TABLE IF NOT EXISTS token_records (
  id              TEXT PRIMARY KEY,
  mint_address    TEXT NOT NULL UNIQUE,
  signature       TEXT NOT NULL,
  owner           TEXT NOT NULL,
  name            TEXT NOT NULL,
  symbol          TEXT NOT NULL,
  decimals        SMALLINT NOT NULL,
  initial_supply  TEXT NOT NULL,
  metadata_uri    TEXT NOT NULL,
  image_uri       TEXT NOT NULL,
  revoked_mint    BOOLEAN NOT NULL DEFAULT FALSE,
  revoked_freeze  BOOLEAN NOT NULL DEFAULT FALSE,
  fee_lamports    BIGINT NOT NULL,
  requested_by    TEXT NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// TokenRecordRepositoryPG implements tcdom.RecordRepository using PostgreSQL.
type TokenRecordRepositoryPG struct {
	DB *sql.DB
}

func NewTokenRecordRepositoryPG(db *sql.DB) *TokenRecordRepositoryPG {
	return &TokenRecordRepositoryPG{DB: db}
}

func (r *TokenRecordRepositoryPG) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, TokenRecordsDDL)
	return err
}

func (r *TokenRecordRepositoryPG) Save(ctx context.Context, v tcdom.TokenRecord) error {
	if r == nil || r.DB == nil {
		return errors.New("tokenRecord: db is nil")
	}

	const q = `
INSERT INTO token_records (
  id, mint_address, signature, owner, name, symbol, decimals, initial_supply,
  metadata_uri, image_uri, revoked_mint, revoked_freeze, fee_lamports, requested_by, created_at
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
)
ON CONFLICT (mint_address) DO NOTHING
`
	_, err := r.DB.ExecContext(ctx, q,
		strings.TrimSpace(v.ID),
		strings.TrimSpace(v.MintAddress),
		v.Signature,
		v.Owner,
		v.Name,
		v.Symbol,
		v.Decimals,
		v.InitialSupply,
		v.MetadataURI,
		v.ImageURI,
		v.RevokedMint,
		v.RevokedFreeze,
		int64(v.FeeLamports),
		v.RequestedBy,
		v.CreatedAt.UTC(),
	)
	return err
}

func (r *TokenRecordRepositoryPG) GetByMint(ctx context.Context, mint string) (tcdom.TokenRecord, error) {
	if r == nil || r.DB == nil {
		return tcdom.TokenRecord{}, errors.New("tokenRecord: db is nil")
	}

	const q = `
SELECT
  id, mint_address, signature, owner, name, symbol, decimals, initial_supply,
  metadata_uri, image_uri, revoked_mint, revoked_freeze, fee_lamports, requested_by, created_at
FROM token_records
WHERE mint_address = $1
LIMIT 1
`
	row := r.DB.QueryRowContext(ctx, q, strings.TrimSpace(mint))
	rec, err := scanTokenRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tcdom.TokenRecord{}, tcdom.ErrRecordNotFound
		}
		return tcdom.TokenRecord{}, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTokenRecord(s rowScanner) (tcdom.TokenRecord, error) {
	var (
		v   tcdom.TokenRecord
		fee int64
	)
	if err := s.Scan(
		&v.ID,
		&v.MintAddress,
		&v.Signature,
		&v.Owner,
		&v.Name,
		&v.Symbol,
		&v.Decimals,
		&v.InitialSupply,
		&v.MetadataURI,
		&v.ImageURI,
		&v.RevokedMint,
		&v.RevokedFreeze,
		&fee,
		&v.RequestedBy,
		&v.CreatedAt,
	); err != nil {
		return tcdom.TokenRecord{}, err
	}
	if fee > 0 {
		v.FeeLamports = uint64(fee)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}
