// internal/domain/tokenCreation/errors.go
package tokenCreation

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("tokenCreation: record not found")
	ErrAddressDerivation = errors.New("tokenCreation: address derivation failed")
	ErrURITooLong        = errors.New("tokenCreation: metadata uri exceeds 200 bytes")
)

// ValidationKind はフォーム検証エラーの種類です。
type ValidationKind string

const (
	WalletNotConnected ValidationKind = "WalletNotConnected"
	MissingIcon        ValidationKind = "MissingIcon"
	MissingName        ValidationKind = "MissingName"
	MissingSymbol      ValidationKind = "MissingSymbol"
	InvalidName        ValidationKind = "InvalidName"
	InvalidSymbol      ValidationKind = "InvalidSymbol"
	InvalidDecimals    ValidationKind = "InvalidDecimals"
	InvalidSupply      ValidationKind = "InvalidSupply"

	// standalone revoke / mint 用
	MissingMintAddress ValidationKind = "MissingMintAddress"
	InvalidMintAddress ValidationKind = "InvalidMintAddress"
	MissingReceiver    ValidationKind = "MissingReceiver"
	InvalidAmount      ValidationKind = "InvalidAmount"
)

var validationMessages = map[ValidationKind]string{
	WalletNotConnected: "Wallet not connected!",
	MissingIcon:        "Please upload token image!",
	MissingName:        "Token name and symbol are required!",
	MissingSymbol:      "Token name and symbol are required!",
	InvalidName:        "Token name must be at most 32 bytes!",
	InvalidSymbol:      "Token symbol must be at most 10 bytes!",
	InvalidDecimals:    "Token decimals must be between 0 and 18!",
	InvalidSupply:      "Initial supply is invalid!",
	MissingMintAddress: "Token mint address is required!",
	InvalidMintAddress: "Token mint address is invalid!",
	MissingReceiver:    "Missing required fields!",
	InvalidAmount:      "Invalid amount value!",
}

// ValidationError はユーザーが入力を直すまで再試行できないエラーです。
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tokenCreation: validation failed (%s)", e.Kind)
}

// UserMessage は通知に表示する文言です。
func (e *ValidationError) UserMessage() string {
	if m, ok := validationMessages[e.Kind]; ok {
		return m
	}
	return string(e.Kind)
}

func newValidationError(k ValidationKind) error {
	return &ValidationError{Kind: k}
}

// UploadKind はアップロード失敗の段階です。
type UploadKind string

const (
	ImageUploadFailed    UploadKind = "ImageUploadFailed"
	MetadataUploadFailed UploadKind = "MetadataUploadFailed"
)

// UploadError はストレージへのアップロード失敗です。アップロード全体をやり直す必要があります。
type UploadError struct {
	Kind UploadKind
	Err  error
}

func (e *UploadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tokenCreation: upload failed (%s)", e.Kind)
	}
	return fmt.Sprintf("tokenCreation: upload failed (%s): %v", e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// SubmissionError は署名拒否・残高不足・RPC 失敗・プログラムエラーなどの送信失敗です。
// Signature は送信済みで確認に失敗した場合のみ入ります。
type SubmissionError struct {
	Signature string
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return "tokenCreation: submission failed"
	}
	return "tokenCreation: submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// UserMessage returns the underlying message shown to the user.
func (e *SubmissionError) UserMessage() string {
	if e.Err == nil {
		return "Transaction failed!"
	}
	return "Error: " + e.Err.Error()
}

// Classify maps an error onto the taxonomy: "validation", "upload", "submission" or "internal".
func Classify(err error) string {
	var ve *ValidationError
	var ue *UploadError
	var se *SubmissionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ue):
		return "upload"
	case errors.As(err, &se):
		return "submission"
	default:
		return "internal"
	}
}

// UserMessage は任意のエラーからユーザー向けの文言を取り出します。
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.UserMessage()
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		if ue.Kind == ImageUploadFailed {
			return "Failed to upload image to IPFS"
		}
		return "Failed to upload metadata to IPFS"
	}
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	if err == nil {
		return ""
	}
	return "Failed to create token"
}
