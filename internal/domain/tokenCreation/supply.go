// internal/domain/tokenCreation/supply.go
package tokenCreation

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrSupplyNotNumber  = errors.New("tokenCreation: supply is not a decimal number")
	ErrSupplyNegative   = errors.New("tokenCreation: supply is negative")
	ErrSupplyFractional = errors.New("tokenCreation: supply has more fractional digits than decimals")
	ErrSupplyOverflow   = errors.New("tokenCreation: supply overflows u64 base units")
)

// BaseUnits は amount × 10^decimals を丸めなしで計算します。
// 小数点以下が decimals を超える値や u64 に収まらない値はエラーにします。
// 指数表記（"1e3" など）はフォームの 10 進入力ではないので受け付けません。
func BaseUnits(amount string, decimals int) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" || strings.ContainsAny(s, "eE") {
		return 0, ErrSupplyNotNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrSupplyNotNumber
	}
	if d.IsNegative() {
		return 0, ErrSupplyNegative
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrSupplyFractional
	}

	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return 0, ErrSupplyOverflow
	}
	return bi.Uint64(), nil
}
