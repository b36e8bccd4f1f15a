// internal/application/tokenCreation/assembler.go
package tokenCreation

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

var (
	ErrInvalidFeeReceiver = errors.New("assembler: fee receiver is invalid")
	ErrInvalidSigner      = errors.New("assembler: signer is empty")
)

// StepKind は命令バッチ内の各命令の役割です。
type StepKind string

const (
	StepFeeTransfer             StepKind = "FeeTransfer"
	StepCreateMintAccount       StepKind = "CreateMintAccount"
	StepInitializeMint          StepKind = "InitializeMint"
	StepCreateMetadata          StepKind = "CreateMetadata"
	StepCreateAssociatedAccount StepKind = "CreateAssociatedAccount"
	StepMintTo                  StepKind = "MintTo"
	StepRevokeMintAuthority     StepKind = "RevokeMintAuthority"
	StepRevokeFreezeAuthority   StepKind = "RevokeFreezeAuthority"
)

type Step struct {
	Kind        StepKind
	Instruction types.Instruction
}

// Batch は 1 回の送信で使う順序付き命令列です。
type Batch struct {
	Steps []Step

	Mint              common.PublicKey
	Metadata          common.PublicKey
	AssociatedAccount common.PublicKey
	SupplyBaseUnits   uint64
	FeeLamports       uint64
}

func (b Batch) Instructions() []types.Instruction {
	out := make([]types.Instruction, 0, len(b.Steps))
	for _, s := range b.Steps {
		out = append(out, s.Instruction)
	}
	return out
}

func (b Batch) Kinds() []StepKind {
	out := make([]StepKind, 0, len(b.Steps))
	for _, s := range b.Steps {
		out = append(out, s.Kind)
	}
	return out
}

func (b *Batch) add(kind StepKind, ins types.Instruction) {
	b.Steps = append(b.Steps, Step{Kind: kind, Instruction: ins})
}

// AssembleInput はトークン作成バッチの入力です。RPC から取得する値（rent / ATA 有無）は事前に解決して渡します。
type AssembleInput struct {
	Request  tcdom.TokenCreationRequest
	Metadata tcdom.UploadedMetadata
	Mint     common.PublicKey
	Signer   common.PublicKey
	Fees     tcdom.FeeSchedule

	MintRentLamports        uint64
	AssociatedAccountExists bool
}

// AssociatedAccountFor は (mint, owner) の ATA を導出します。
func AssociatedAccountFor(owner, mint common.PublicKey) (common.PublicKey, error) {
	ata, _, err := common.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("%w: associated account: %v", tcdom.ErrAddressDerivation, err)
	}
	return ata, nil
}

// MetadataAccountFor derives the metadata PDA ["metadata", program id, mint].
func MetadataAccountFor(mint common.PublicKey) (common.PublicKey, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("%w: metadata account: %v", tcdom.ErrAddressDerivation, err)
	}
	return pda, nil
}

func feeReceiver(fees tcdom.FeeSchedule) (common.PublicKey, error) {
	if !tcdom.IsBase58Pubkey(fees.Receiver) {
		return common.PublicKey{}, ErrInvalidFeeReceiver
	}
	pk := common.PublicKeyFromString(fees.Receiver)
	if pk == (common.PublicKey{}) {
		return common.PublicKey{}, ErrInvalidFeeReceiver
	}
	return pk, nil
}

func feeTransfer(from, to common.PublicKey, lamports uint64) types.Instruction {
	return system.Transfer(system.TransferParam{
		From:   from,
		To:     to,
		Amount: lamports,
	})
}

func revokeAuthority(mint, signer common.PublicKey, authType token.AuthorityType) types.Instruction {
	return token.SetAuthority(token.SetAuthorityParam{
		Account:  mint,
		NewAuth:  nil,
		AuthType: authType,
		Auth:     signer,
	})
}

// Assemble はトークン作成の命令列を依存順に組み立てます（I/O なし）。
//
//  1. 手数料送金 (base)
//  2. Mint アカウント作成
//  3. Mint 初期化 (mint/freeze authority = signer)
//  4. Metadata アカウント作成 (immutable)
//  5. ATA 作成（未作成の場合のみ）
//  6. MintTo
//  7. revokeMint:   手数料送金 → SetAuthority(MintTokens, none)
//  8. revokeFreeze: 手数料送金 → SetAuthority(FreezeAccount, none)
func Assemble(in AssembleInput) (Batch, error) {
	signer := in.Signer
	if signer == (common.PublicKey{}) {
		return Batch{}, ErrInvalidSigner
	}
	receiver, err := feeReceiver(in.Fees)
	if err != nil {
		return Batch{}, err
	}

	req := in.Request
	units, err := tcdom.BaseUnits(req.InitialSupply, req.Decimals)
	if err != nil {
		return Batch{}, fmt.Errorf("assembler: supply: %w", err)
	}

	metadataPDA, err := MetadataAccountFor(in.Mint)
	if err != nil {
		return Batch{}, err
	}
	ata, err := AssociatedAccountFor(signer, in.Mint)
	if err != nil {
		return Batch{}, err
	}

	b := Batch{
		Steps:             make([]Step, 0, 10),
		Mint:              in.Mint,
		Metadata:          metadataPDA,
		AssociatedAccount: ata,
		SupplyBaseUnits:   units,
		FeeLamports:       in.Fees.Total(req.RevokeMint, req.RevokeFreeze),
	}

	b.add(StepFeeTransfer, feeTransfer(signer, receiver, in.Fees.Base))

	b.add(StepCreateMintAccount, system.CreateAccount(system.CreateAccountParam{
		From:     signer,
		New:      in.Mint,
		Owner:    common.TokenProgramID,
		Lamports: in.MintRentLamports,
		Space:    token.MintAccountSize,
	}))

	freezeAuth := signer
	b.add(StepInitializeMint, token.InitializeMint(token.InitializeMintParam{
		Decimals:   uint8(req.Decimals),
		Mint:       in.Mint,
		MintAuth:   signer,
		FreezeAuth: &freezeAuth,
	}))

	b.add(StepCreateMetadata, token_metadata.CreateMetadataAccountV3(
		token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadataPDA,
			Mint:                    in.Mint,
			MintAuthority:           signer,
			UpdateAuthority:         signer,
			Payer:                   signer,
			UpdateAuthorityIsSigner: true,
			IsMutable:               false,
			Data: token_metadata.DataV2{
				Name:                 req.Name,
				Symbol:               req.Symbol,
				Uri:                  in.Metadata.MetadataJSONURI,
				SellerFeeBasisPoints: 0,
				Creators:             nil,
				Collection:           nil,
				Uses:                 nil,
			},
			CollectionDetails: nil,
		},
	))

	if !in.AssociatedAccountExists {
		b.add(StepCreateAssociatedAccount, associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 signer,
				Owner:                  signer,
				Mint:                   in.Mint,
				AssociatedTokenAccount: ata,
			},
		))
	}

	b.add(StepMintTo, token.MintTo(token.MintToParam{
		Mint:   in.Mint,
		To:     ata,
		Auth:   signer,
		Amount: units,
	}))

	if req.RevokeMint {
		b.add(StepFeeTransfer, feeTransfer(signer, receiver, in.Fees.RevokeMint))
		b.add(StepRevokeMintAuthority, revokeAuthority(in.Mint, signer, token.AuthorityTypeMintTokens))
	}
	if req.RevokeFreeze {
		b.add(StepFeeTransfer, feeTransfer(signer, receiver, in.Fees.RevokeFreeze))
		b.add(StepRevokeFreezeAuthority, revokeAuthority(in.Mint, signer, token.AuthorityTypeFreezeAccount))
	}

	return b, nil
}

// AuthorityKind selects which mint authority a standalone revocation removes.
type AuthorityKind string

const (
	AuthorityMint   AuthorityKind = "mint"
	AuthorityFreeze AuthorityKind = "freeze"
)

// AssembleRevoke は既存 Mint の権限放棄（手数料送金 → SetAuthority）を組み立てます。
func AssembleRevoke(signer, mint common.PublicKey, kind AuthorityKind, fees tcdom.FeeSchedule) (Batch, error) {
	if signer == (common.PublicKey{}) {
		return Batch{}, ErrInvalidSigner
	}
	receiver, err := feeReceiver(fees)
	if err != nil {
		return Batch{}, err
	}

	b := Batch{Mint: mint}
	switch kind {
	case AuthorityMint:
		b.FeeLamports = fees.RevokeMint
		b.add(StepFeeTransfer, feeTransfer(signer, receiver, fees.RevokeMint))
		b.add(StepRevokeMintAuthority, revokeAuthority(mint, signer, token.AuthorityTypeMintTokens))
	case AuthorityFreeze:
		b.FeeLamports = fees.RevokeFreeze
		b.add(StepFeeTransfer, feeTransfer(signer, receiver, fees.RevokeFreeze))
		b.add(StepRevokeFreezeAuthority, revokeAuthority(mint, signer, token.AuthorityTypeFreezeAccount))
	default:
		return Batch{}, fmt.Errorf("assembler: unknown authority kind %q", kind)
	}
	return b, nil
}

// AssembleMintSupply builds [create receiver ATA if missing] + MintTo for an existing mint.
func AssembleMintSupply(signer, mint, receiver common.PublicKey, receiverAccountExists bool, units uint64) (Batch, error) {
	if signer == (common.PublicKey{}) {
		return Batch{}, ErrInvalidSigner
	}
	ata, err := AssociatedAccountFor(receiver, mint)
	if err != nil {
		return Batch{}, err
	}

	b := Batch{Mint: mint, AssociatedAccount: ata, SupplyBaseUnits: units}
	if !receiverAccountExists {
		b.add(StepCreateAssociatedAccount, associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 signer,
				Owner:                  receiver,
				Mint:                   mint,
				AssociatedTokenAccount: ata,
			},
		))
	}
	b.add(StepMintTo, token.MintTo(token.MintToParam{
		Mint:   mint,
		To:     ata,
		Auth:   signer,
		Amount: units,
	}))
	return b, nil
}
