// internal/application/tokenCreation/usecase.go
package tokenCreation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"

	tcdom "tokenforge/internal/domain/tokenCreation"
	"tokenforge/internal/infra/metrics"
)

// Config は 1 つのオーケストレータを構成する値です（手数料表・確認レベル・クラスタ）。
type Config struct {
	Fees       tcdom.FeeSchedule
	Commitment rpc.Commitment
	Cluster    string
}

// TokenCreationUsecase はトークン作成ワークフローの唯一の実装です。
//
//	Idle → Validating → UploadingMetadata → AssemblingTransaction
//	     → AwaitingSignature → Confirming → Succeeded | Failed
//
// 1 回の呼び出しの中で全ての非同期処理を順番に待ちます。
// 同時に複数走らせないことは呼び出し側（HTTP ハンドラ / CLI）の責務です。
type TokenCreationUsecase struct {
	cfg Config

	uploader  *MetadataUploader
	wallet    Wallet
	chain     Chain
	submitter *SubmissionCoordinator

	notifier tcdom.Notifier
	records  tcdom.RecordRepository
	observer StateObserver

	newMintIdentity func() types.Account
	now             func() time.Time
}

func NewTokenCreationUsecase(cfg Config, uploader *MetadataUploader, wallet Wallet, chain Chain) *TokenCreationUsecase {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	return &TokenCreationUsecase{
		cfg:             cfg,
		uploader:        uploader,
		wallet:          wallet,
		chain:           chain,
		submitter:       NewSubmissionCoordinator(wallet, chain, cfg.Commitment),
		newMintIdentity: types.NewAccount,
		now:             time.Now,
	}
}

// SetNotifier は通知先を差し替えます（nil 可）。
func (u *TokenCreationUsecase) SetNotifier(n tcdom.Notifier) { u.notifier = n }

// SetRecordRepository enables persisting a TokenRecord after each confirmed creation.
func (u *TokenCreationUsecase) SetRecordRepository(r tcdom.RecordRepository) { u.records = r }

func (u *TokenCreationUsecase) SetStateObserver(o StateObserver) { u.observer = o }

// SetMintIdentityGenerator はテスト用に Mint 鍵の生成関数を差し替えます。
func (u *TokenCreationUsecase) SetMintIdentityGenerator(f func() types.Account) {
	if f != nil {
		u.newMintIdentity = f
	}
}

func (u *TokenCreationUsecase) Fees() tcdom.FeeSchedule { return u.cfg.Fees }

// Quote は送信前に表示する手数料合計です。
func (u *TokenCreationUsecase) Quote(revokeMint, revokeFreeze bool) tcdom.FeeQuote {
	return u.cfg.Fees.Quote(revokeMint, revokeFreeze)
}

// SignerAddress returns the connected wallet address, or "" when not connected.
func (u *TokenCreationUsecase) SignerAddress() string {
	if u == nil || u.wallet == nil {
		return ""
	}
	pk := u.wallet.PublicKey()
	if pk == nil {
		return ""
	}
	return pk.ToBase58()
}

func (u *TokenCreationUsecase) notify(ctx context.Context, n tcdom.Notification) {
	if u.notifier == nil {
		return
	}
	u.notifier.Notify(ctx, n)
}

func (u *TokenCreationUsecase) signer() *common.PublicKey {
	if u.wallet == nil {
		return nil
	}
	return u.wallet.PublicKey()
}

// Create runs the whole token-creation workflow once. requestedBy is recorded as-is (may be empty).
func (u *TokenCreationUsecase) Create(ctx context.Context, req tcdom.TokenCreationRequest, requestedBy string) (tcdom.WorkflowResult, error) {
	r := newRun("create", u.observer)

	res, err := u.create(ctx, r, req, requestedBy)
	if err != nil {
		r.fail()
		metrics.WorkflowsTotal.WithLabelValues("create", tcdom.Classify(err)).Inc()

		n := tcdom.Notification{Level: tcdom.LevelError, Message: tcdom.UserMessage(err)}
		if c := tcdom.Classify(err); c == "upload" || c == "internal" {
			n.Description = err.Error()
		}
		if se, ok := asSubmissionError(err); ok {
			n.TxID = se.Signature
		}
		u.notify(ctx, n)

		log.Printf("[token_workflow] create FAILED class=%s err=%v", tcdom.Classify(err), err)
		return tcdom.WorkflowResult{}, err
	}

	r.must(StateSucceeded)
	metrics.WorkflowsTotal.WithLabelValues("create", "succeeded").Inc()
	metrics.FeesLamportsTotal.WithLabelValues("create").Add(float64(res.FeeLamports))

	u.notify(ctx, tcdom.Notification{
		Level:   tcdom.LevelSuccess,
		Message: "Token created successfully!",
		TxID:    res.Signature,
	})
	return res, nil
}

func (u *TokenCreationUsecase) create(ctx context.Context, r *run, req tcdom.TokenCreationRequest, requestedBy string) (tcdom.WorkflowResult, error) {
	// 1) 検証
	r.must(StateValidating)
	signer := u.signer()
	valid, err := tcdom.Validate(req, signer != nil)
	if err != nil {
		return tcdom.WorkflowResult{}, err
	}

	if u.chain == nil {
		return tcdom.WorkflowResult{}, &tcdom.SubmissionError{Err: ErrChainNotConfigured}
	}

	// 2) 画像 + metadata.json アップロード
	r.must(StateUploadingMetadata)
	u.notify(ctx, tcdom.Notification{Level: tcdom.LevelInfo, Message: "Uploading metadata to IPFS..."})
	uploaded, err := u.uploader.Upload(ctx, valid)
	if err != nil {
		return tcdom.WorkflowResult{}, err
	}

	// 3) 命令列の組み立て（Mint 鍵はここで 1 回だけ生成）
	r.must(StateAssemblingTransaction)
	u.notify(ctx, tcdom.Notification{Level: tcdom.LevelInfo, Message: "Creating token on blockchain..."})
	mint := u.newMintIdentity()

	rent, err := u.chain.MinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return tcdom.WorkflowResult{}, &tcdom.SubmissionError{Err: fmt.Errorf("rent exemption: %w", err)}
	}
	ata, err := AssociatedAccountFor(*signer, mint.PublicKey)
	if err != nil {
		return tcdom.WorkflowResult{}, err
	}
	ataExists, err := u.chain.AccountExists(ctx, ata)
	if err != nil {
		return tcdom.WorkflowResult{}, &tcdom.SubmissionError{Err: fmt.Errorf("associated account lookup: %w", err)}
	}

	batch, err := Assemble(AssembleInput{
		Request:                 valid,
		Metadata:                uploaded,
		Mint:                    mint.PublicKey,
		Signer:                  *signer,
		Fees:                    u.cfg.Fees,
		MintRentLamports:        rent,
		AssociatedAccountExists: ataExists,
	})
	if err != nil {
		return tcdom.WorkflowResult{}, err
	}

	log.Printf(
		"[token_workflow] assembled mint=%s steps=%v fee=%d",
		maskShort(mint.PublicKey.ToBase58()), batch.Kinds(), batch.FeeLamports,
	)

	// 4) 署名・送信 → 5) 確認
	r.must(StateAwaitingSignature)
	sig, err := u.submitter.Submit(ctx, batch, func(string) { r.must(StateConfirming) }, mint)
	if err != nil {
		return tcdom.WorkflowResult{}, err
	}

	mintAddr := mint.PublicKey.ToBase58()
	res := tcdom.WorkflowResult{
		MintAddress: mintAddr,
		Signature:   sig,
		ImageURI:    uploaded.ImageURI,
		MetadataURI: uploaded.MetadataJSONURI,
		FeeLamports: batch.FeeLamports,
		ExplorerURL: tcdom.ExplorerAddressURL(mintAddr, u.cfg.Cluster),
	}

	u.saveRecord(ctx, tcdom.TokenRecord{
		ID:            uuid.NewString(),
		MintAddress:   mintAddr,
		Signature:     sig,
		Owner:         signer.ToBase58(),
		Name:          valid.Name,
		Symbol:        valid.Symbol,
		Decimals:      valid.Decimals,
		InitialSupply: valid.InitialSupply,
		MetadataURI:   uploaded.MetadataJSONURI,
		ImageURI:      uploaded.ImageURI,
		RevokedMint:   valid.RevokeMint,
		RevokedFreeze: valid.RevokeFreeze,
		FeeLamports:   batch.FeeLamports,
		RequestedBy:   strings.TrimSpace(requestedBy),
		CreatedAt:     u.now().UTC(),
	})

	return res, nil
}

// saveRecord は記録の失敗をログのみに留めます（オンチェーンは確定済みのため）。
func (u *TokenCreationUsecase) saveRecord(ctx context.Context, rec tcdom.TokenRecord) {
	if u.records == nil {
		return
	}
	if err := u.records.Save(ctx, rec); err != nil {
		log.Printf("[token_workflow] WARN: save record failed mint=%s err=%v", maskShort(rec.MintAddress), err)
	}
}

// GetRecord は作成済みトークンの記録を返します。記録先が無い場合は ErrRecordNotFound。
func (u *TokenCreationUsecase) GetRecord(ctx context.Context, mintAddress string) (tcdom.TokenRecord, error) {
	if u.records == nil {
		return tcdom.TokenRecord{}, tcdom.ErrRecordNotFound
	}
	if err := tcdom.ValidateMintAddress(mintAddress); err != nil {
		return tcdom.TokenRecord{}, err
	}
	return u.records.GetByMint(ctx, strings.TrimSpace(mintAddress))
}
