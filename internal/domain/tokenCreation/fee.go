// internal/domain/tokenCreation/fee.go
package tokenCreation

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// 既定の手数料（各 0.1 SOL）
const (
	DefaultBaseFeeLamports         uint64 = LamportsPerSOL / 10
	DefaultRevokeMintFeeLamports   uint64 = LamportsPerSOL / 10
	DefaultRevokeFreezeFeeLamports uint64 = LamportsPerSOL / 10
)

// FeeSchedule はステップごとの固定手数料と受取アドレスです。
// プロセス内では読み取り専用として共有されます。
type FeeSchedule struct {
	Receiver     string // base58
	Base         uint64
	RevokeMint   uint64
	RevokeFreeze uint64
}

func DefaultFeeSchedule(receiver string) FeeSchedule {
	return FeeSchedule{
		Receiver:     receiver,
		Base:         DefaultBaseFeeLamports,
		RevokeMint:   DefaultRevokeMintFeeLamports,
		RevokeFreeze: DefaultRevokeFreezeFeeLamports,
	}
}

// Total = Base + 有効な revoke ごとの手数料
func (f FeeSchedule) Total(revokeMint, revokeFreeze bool) uint64 {
	total := f.Base
	if revokeMint {
		total += f.RevokeMint
	}
	if revokeFreeze {
		total += f.RevokeFreeze
	}
	return total
}

// FeeQuote is the fee breakdown shown before submission.
type FeeQuote struct {
	Receiver      string `json:"receiver"`
	BaseLamports  uint64 `json:"baseLamports"`
	RevokeMint    uint64 `json:"revokeMintLamports"`
	RevokeFreeze  uint64 `json:"revokeFreezeLamports"`
	TotalLamports uint64 `json:"totalLamports"`
	TotalSOL      string `json:"totalSol"`
}

func (f FeeSchedule) Quote(revokeMint, revokeFreeze bool) FeeQuote {
	q := FeeQuote{
		Receiver:     f.Receiver,
		BaseLamports: f.Base,
	}
	if revokeMint {
		q.RevokeMint = f.RevokeMint
	}
	if revokeFreeze {
		q.RevokeFreeze = f.RevokeFreeze
	}
	q.TotalLamports = f.Total(revokeMint, revokeFreeze)
	q.TotalSOL = FormatSOL(q.TotalLamports)
	return q
}

// FormatSOL は lamports を SOL の 10 進文字列にします（float を経由しない）。
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
