// internal/adapters/out/firestore/tokenRecord_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

const tokenRecordsCollection = "token_records"

// TokenRecordRepositoryFS は mint アドレスをドキュメント ID にして記録します。
type TokenRecordRepositoryFS struct {
	Client *firestore.Client
}

func NewTokenRecordRepositoryFS(client *firestore.Client) *TokenRecordRepositoryFS {
	return &TokenRecordRepositoryFS{Client: client}
}

func (r *TokenRecordRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(tokenRecordsCollection)
}

type tokenRecordDoc struct {
	ID            string    `firestore:"id"`
	MintAddress   string    `firestore:"mintAddress"`
	Signature     string    `firestore:"signature"`
	Owner         string    `firestore:"owner"`
	Name          string    `firestore:"name"`
	Symbol        string    `firestore:"symbol"`
	Decimals      int       `firestore:"decimals"`
	InitialSupply string    `firestore:"initialSupply"`
	MetadataURI   string    `firestore:"metadataUri"`
	ImageURI      string    `firestore:"imageUri"`
	RevokedMint   bool      `firestore:"revokedMint"`
	RevokedFreeze bool      `firestore:"revokedFreeze"`
	FeeLamports   int64     `firestore:"feeLamports"`
	RequestedBy   string    `firestore:"requestedBy,omitempty"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

func toDoc(v tcdom.TokenRecord) tokenRecordDoc {
	return tokenRecordDoc{
		ID:            v.ID,
		MintAddress:   v.MintAddress,
		Signature:     v.Signature,
		Owner:         v.Owner,
		Name:          v.Name,
		Symbol:        v.Symbol,
		Decimals:      v.Decimals,
		InitialSupply: v.InitialSupply,
		MetadataURI:   v.MetadataURI,
		ImageURI:      v.ImageURI,
		RevokedMint:   v.RevokedMint,
		RevokedFreeze: v.RevokedFreeze,
		FeeLamports:   int64(v.FeeLamports),
		RequestedBy:   v.RequestedBy,
		CreatedAt:     v.CreatedAt.UTC(),
	}
}

func fromDoc(d tokenRecordDoc) tcdom.TokenRecord {
	fee := uint64(0)
	if d.FeeLamports > 0 {
		fee = uint64(d.FeeLamports)
	}
	return tcdom.TokenRecord{
		ID:            d.ID,
		MintAddress:   d.MintAddress,
		Signature:     d.Signature,
		Owner:         d.Owner,
		Name:          d.Name,
		Symbol:        d.Symbol,
		Decimals:      d.Decimals,
		InitialSupply: d.InitialSupply,
		MetadataURI:   d.MetadataURI,
		ImageURI:      d.ImageURI,
		RevokedMint:   d.RevokedMint,
		RevokedFreeze: d.RevokedFreeze,
		FeeLamports:   fee,
		RequestedBy:   d.RequestedBy,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *TokenRecordRepositoryFS) Save(ctx context.Context, v tcdom.TokenRecord) error {
	if r == nil || r.Client == nil {
		return errors.New("tokenRecord: firestore client is nil")
	}
	mint := strings.TrimSpace(v.MintAddress)
	if mint == "" {
		return errors.New("tokenRecord: mintAddress is empty")
	}
	_, err := r.col().Doc(mint).Set(ctx, toDoc(v))
	return err
}

func (r *TokenRecordRepositoryFS) GetByMint(ctx context.Context, mint string) (tcdom.TokenRecord, error) {
	if r == nil || r.Client == nil {
		return tcdom.TokenRecord{}, errors.New("tokenRecord: firestore client is nil")
	}
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return tcdom.TokenRecord{}, tcdom.ErrRecordNotFound
	}

	snap, err := r.col().Doc(mint).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return tcdom.TokenRecord{}, tcdom.ErrRecordNotFound
	}
	if err != nil {
		return tcdom.TokenRecord{}, err
	}

	var d tokenRecordDoc
	if err := snap.DataTo(&d); err != nil {
		return tcdom.TokenRecord{}, err
	}
	return fromDoc(d), nil
}
