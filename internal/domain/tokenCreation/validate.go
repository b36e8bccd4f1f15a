// internal/domain/tokenCreation/validate.go
package tokenCreation

import (
	"strings"

	"github.com/mr-tron/base58"
)

// Validate はワークフロー開始前のフォーム検証です。
// 判定順: wallet → icon → name → symbol → decimals → supply
// name / symbol の長さは UTF-8 のバイト数で Metaplex の上限と比較します。
// 副作用はなく、成功時は正規化済みのコピーを返します。
func Validate(req TokenCreationRequest, walletConnected bool) (TokenCreationRequest, error) {
	r := req.normalized()

	if !walletConnected {
		return TokenCreationRequest{}, newValidationError(WalletNotConnected)
	}
	if r.Icon.IsEmpty() {
		return TokenCreationRequest{}, newValidationError(MissingIcon)
	}
	if r.Name == "" {
		return TokenCreationRequest{}, newValidationError(MissingName)
	}
	if r.Symbol == "" {
		return TokenCreationRequest{}, newValidationError(MissingSymbol)
	}
	if len(r.Name) > MaxNameLen {
		return TokenCreationRequest{}, newValidationError(InvalidName)
	}
	if len(r.Symbol) > MaxSymbolLen {
		return TokenCreationRequest{}, newValidationError(InvalidSymbol)
	}
	if r.Decimals < MinDecimals || r.Decimals > MaxDecimals {
		return TokenCreationRequest{}, newValidationError(InvalidDecimals)
	}
	if _, err := BaseUnits(r.InitialSupply, r.Decimals); err != nil {
		return TokenCreationRequest{}, newValidationError(InvalidSupply)
	}

	// アップロード側で使い回すため、画像バイト列は共有せずコピーしておく
	r.Icon.Data = append([]byte(nil), req.Icon.Data...)
	if r.Icon.FileName == "" {
		r.Icon.FileName = "icon"
	}
	if r.Icon.ContentType == "" {
		r.Icon.ContentType = "application/octet-stream"
	}
	return r, nil
}

// ValidateMintAddress checks presence and base58 shape of a mint (or wallet) address.
func ValidateMintAddress(addr string) error {
	a := strings.TrimSpace(addr)
	if a == "" {
		return newValidationError(MissingMintAddress)
	}
	if !IsBase58Pubkey(a) {
		return newValidationError(InvalidMintAddress)
	}
	return nil
}

// ValidateAmount は追加ミント量（正の 10 進数）を検証します。
func ValidateAmount(amount string, decimals int) (uint64, error) {
	units, err := BaseUnits(amount, decimals)
	if err != nil || units == 0 {
		return 0, newValidationError(InvalidAmount)
	}
	return units, nil
}

// RequireWallet returns WalletNotConnected when the signer is absent.
func RequireWallet(connected bool) error {
	if !connected {
		return newValidationError(WalletNotConnected)
	}
	return nil
}

// RequireReceiver は受取先アドレスの存在と形式を検証します。
func RequireReceiver(addr string) error {
	a := strings.TrimSpace(addr)
	if a == "" || !IsBase58Pubkey(a) {
		return newValidationError(MissingReceiver)
	}
	return nil
}

// IsBase58Pubkey は base58 として復号でき、32 バイトになる文字列かどうかを返します。
func IsBase58Pubkey(s string) bool {
	b, err := base58.Decode(strings.TrimSpace(s))
	return err == nil && len(b) == 32
}
