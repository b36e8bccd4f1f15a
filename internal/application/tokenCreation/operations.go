// internal/application/tokenCreation/operations.go
package tokenCreation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/blocto/solana-go-sdk/common"

	tcdom "tokenforge/internal/domain/tokenCreation"
	"tokenforge/internal/infra/metrics"
)

// OperationResult は単発操作（権限放棄 / 追加ミント）の結果です。
type OperationResult struct {
	MintAddress string `json:"mintAddress"`
	Signature   string `json:"signature"`
	FeeLamports uint64 `json:"feeLamports"`
	// CreatedAssociatedAccount is true when the receiver ATA was created by this transaction.
	CreatedAssociatedAccount bool `json:"createdAssociatedAccount,omitempty"`
}

func asSubmissionError(err error) (*tcdom.SubmissionError, bool) {
	var se *tcdom.SubmissionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ParseAuthorityKind accepts "mint"/"freeze" (case-insensitive) and the SPL names.
func ParseAuthorityKind(s string) (AuthorityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mint", "minttokens", "mint_tokens":
		return AuthorityMint, nil
	case "freeze", "freezeaccount", "freeze_account":
		return AuthorityFreeze, nil
	default:
		return "", fmt.Errorf("unknown authority type %q", s)
	}
}

// operationFailed は単発操作の失敗を 1 回だけ通知します。
func (u *TokenCreationUsecase) operationFailed(ctx context.Context, op string, r *run, err error) error {
	r.fail()
	metrics.WorkflowsTotal.WithLabelValues(op, tcdom.Classify(err)).Inc()

	n := tcdom.Notification{Level: tcdom.LevelError, Message: "Transaction failed!"}
	var ve *tcdom.ValidationError
	if errors.As(err, &ve) {
		n.Message = ve.UserMessage()
	} else {
		n.Description = err.Error()
	}
	if se, ok := asSubmissionError(err); ok {
		n.TxID = se.Signature
	}
	u.notify(ctx, n)

	log.Printf("[token_workflow] %s FAILED class=%s err=%v", op, tcdom.Classify(err), err)
	return err
}

// RevokeAuthority は既存トークンの mint / freeze 権限を放棄します（手数料付き、不可逆）。
func (u *TokenCreationUsecase) RevokeAuthority(ctx context.Context, mintAddress string, kind AuthorityKind) (OperationResult, error) {
	r := newRun("revoke", u.observer)

	r.must(StateValidating)
	signer := u.signer()
	if err := tcdom.RequireWallet(signer != nil); err != nil {
		return OperationResult{}, u.operationFailed(ctx, "revoke", r, err)
	}
	if err := tcdom.ValidateMintAddress(mintAddress); err != nil {
		return OperationResult{}, u.operationFailed(ctx, "revoke", r, err)
	}
	mint := common.PublicKeyFromString(strings.TrimSpace(mintAddress))

	r.must(StateAssemblingTransaction)
	batch, err := AssembleRevoke(*signer, mint, kind, u.cfg.Fees)
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "revoke", r, err)
	}

	r.must(StateAwaitingSignature)
	sig, err := u.submitter.Submit(ctx, batch, func(string) { r.must(StateConfirming) })
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "revoke", r, err)
	}

	r.must(StateSucceeded)
	metrics.WorkflowsTotal.WithLabelValues("revoke", "succeeded").Inc()
	metrics.FeesLamportsTotal.WithLabelValues("revoke").Add(float64(batch.FeeLamports))
	u.notify(ctx, tcdom.Notification{Level: tcdom.LevelSuccess, Message: "Authority revoked successfully!", TxID: sig})

	return OperationResult{MintAddress: mint.ToBase58(), Signature: sig, FeeLamports: batch.FeeLamports}, nil
}

// MintSupply mints amount (UI units) of an existing token to receiver, creating the receiver's
// associated account when it does not exist yet. The signer must still hold mint authority.
func (u *TokenCreationUsecase) MintSupply(ctx context.Context, mintAddress, receiverAddress, amount string) (OperationResult, error) {
	r := newRun("mint", u.observer)

	r.must(StateValidating)
	signer := u.signer()
	if err := tcdom.RequireWallet(signer != nil); err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}
	if err := tcdom.ValidateMintAddress(mintAddress); err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}
	if err := tcdom.RequireReceiver(receiverAddress); err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}
	mint := common.PublicKeyFromString(strings.TrimSpace(mintAddress))
	receiver := common.PublicKeyFromString(strings.TrimSpace(receiverAddress))

	r.must(StateAssemblingTransaction)
	if u.chain == nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, &tcdom.SubmissionError{Err: ErrChainNotConfigured})
	}
	decimals, err := u.chain.MintDecimals(ctx, mint)
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, &tcdom.SubmissionError{Err: fmt.Errorf("read mint: %w", err)})
	}
	units, err := tcdom.ValidateAmount(amount, int(decimals))
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}

	ata, err := AssociatedAccountFor(receiver, mint)
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}
	exists, err := u.chain.AccountExists(ctx, ata)
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, &tcdom.SubmissionError{Err: fmt.Errorf("associated account lookup: %w", err)})
	}

	batch, err := AssembleMintSupply(*signer, mint, receiver, exists, units)
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}

	r.must(StateAwaitingSignature)
	sig, err := u.submitter.Submit(ctx, batch, func(string) { r.must(StateConfirming) })
	if err != nil {
		return OperationResult{}, u.operationFailed(ctx, "mint", r, err)
	}

	r.must(StateSucceeded)
	metrics.WorkflowsTotal.WithLabelValues("mint", "succeeded").Inc()
	u.notify(ctx, tcdom.Notification{Level: tcdom.LevelSuccess, Message: "Transaction successful!", TxID: sig})

	return OperationResult{
		MintAddress:              mint.ToBase58(),
		Signature:                sig,
		CreatedAssociatedAccount: !exists,
	}, nil
}
