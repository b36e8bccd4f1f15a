// internal/domain/tokenCreation/entity.go
package tokenCreation

import (
	"strings"
	"time"
)

// Decimals の許容範囲（SPL Token の慣例に合わせて 0..18）
const (
	MinDecimals = 0
	MaxDecimals = 18
)

// Metaplex Token Metadata のフィールド上限（バイト数）
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
)

// Icon はフォームで選択されたトークン画像です。
type Icon struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (i Icon) IsEmpty() bool {
	return len(i.Data) == 0
}

// TokenCreationRequest はフォーム入力から組み立てる作成リクエストです。
// ワークフローに渡した後は値コピーとして扱い、呼び出し側の変更は反映されません。
type TokenCreationRequest struct {
	Name          string
	Symbol        string
	Description   string
	Decimals      int
	InitialSupply string // 10 進文字列（例: "1000", "12.5"）
	Icon          Icon

	RevokeMint   bool
	RevokeFreeze bool
}

// normalized は前後の空白を取り除いたコピーを返します。
func (r TokenCreationRequest) normalized() TokenCreationRequest {
	out := r
	out.Name = strings.TrimSpace(r.Name)
	out.Symbol = strings.TrimSpace(r.Symbol)
	out.Description = strings.TrimSpace(r.Description)
	out.InitialSupply = strings.TrimSpace(r.InitialSupply)
	out.Icon.FileName = strings.TrimSpace(r.Icon.FileName)
	out.Icon.ContentType = strings.TrimSpace(r.Icon.ContentType)
	return out
}

// UploadedMetadata はストレージへのアップロード結果（画像 URI と metadata.json の URI）。
type UploadedMetadata struct {
	ImageURI        string
	MetadataJSONURI string
}

// MetadataDocument は metadata.json の中身です。
// description は空でも必ず出力します。
type MetadataDocument struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// WorkflowResult は成功時の終端状態です。
type WorkflowResult struct {
	MintAddress string
	Signature   string
	ImageURI    string
	MetadataURI string
	FeeLamports uint64
	ExplorerURL string
}

// TokenRecord は作成済みトークンの履歴です（任意の保存先に記録）。
type TokenRecord struct {
	ID            string
	MintAddress   string
	Signature     string
	Owner         string
	Name          string
	Symbol        string
	Decimals      int
	InitialSupply string
	MetadataURI   string
	ImageURI      string
	RevokedMint   bool
	RevokedFreeze bool
	FeeLamports   uint64
	RequestedBy   string
	CreatedAt     time.Time
}

// ExplorerAddressURL は Solana Explorer のアドレスページ URL を返します。
// mainnet-beta の場合は cluster クエリを付けません。
func ExplorerAddressURL(address, cluster string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	u := "https://explorer.solana.com/address/" + address
	c := strings.TrimSpace(cluster)
	if c == "" || c == "mainnet-beta" || c == "mainnet" {
		return u
	}
	return u + "?cluster=" + c
}
