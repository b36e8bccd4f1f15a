// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Upload providers
const (
	UploadProviderPinata  = "pinata"
	UploadProviderGCS     = "gcs"
	UploadProviderArweave = "arweave"
	UploadProviderKubo    = "kubo"
)

// Record stores
const (
	RecordStoreNone      = "none"
	RecordStoreFirestore = "firestore"
	RecordStorePostgres  = "postgres"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port               string
	CORSAllowedOrigins []string

	GCPProjectID string

	// Solana
	SolanaRPCURL         string
	SolanaCluster        string
	PayerKeySecret       string // Secret Manager の secret ID or フルパス
	PayerKeyFile         string // ローカル開発用の keypair JSON
	FeeReceiverAddress   string
	BaseFeeLamports      uint64
	RevokeMintLamports   uint64
	RevokeFreezeLamports uint64

	// アップロード先
	UploadProvider  string
	PinataAPIURL    string
	PinataJWT       string // 環境変数から直接（ローカル用）
	PinataJWTSecret string
	IPFSGateway     string
	IPFSAPIAddr     string // kubo の HTTP API（host:port）
	GCSBucket       string
	ArweaveBaseURL  string
	ArweaveAPIKey   string

	// 記録先
	RecordStore              string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	DatabaseURL              string

	// 通知メール（任意）
	SendGridAPIKey string
	MailFrom       string
	MailTo         string

	// Firebase Auth（空なら認証なし）
	FirebaseProjectID string
}

// Load は .env（あれば）と環境変数を読み込み Config を返します。
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] .env load skipped: %v", err)
	}

	project := getenvDefault("GCP_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT"))

	return &Config{
		Port:               getenvDefault("PORT", "8080"),
		CORSAllowedOrigins: splitCSV(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),

		GCPProjectID: project,

		SolanaRPCURL:         getenvDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		SolanaCluster:        getenvDefault("SOLANA_CLUSTER", "devnet"),
		PayerKeySecret:       os.Getenv("SOLANA_PAYER_KEY_SECRET"),
		PayerKeyFile:         os.Getenv("SOLANA_PAYER_KEY_FILE"),
		FeeReceiverAddress:   strings.TrimSpace(os.Getenv("FEE_RECEIVER_ADDRESS")),
		BaseFeeLamports:      getenvUint("FEE_BASE_LAMPORTS", 100_000_000),
		RevokeMintLamports:   getenvUint("FEE_REVOKE_MINT_LAMPORTS", 100_000_000),
		RevokeFreezeLamports: getenvUint("FEE_REVOKE_FREEZE_LAMPORTS", 100_000_000),

		UploadProvider:  strings.ToLower(getenvDefault("UPLOAD_PROVIDER", UploadProviderPinata)),
		PinataAPIURL:    getenvDefault("PINATA_API_URL", "https://api.pinata.cloud"),
		PinataJWT:       os.Getenv("PINATA_JWT"),
		PinataJWTSecret: os.Getenv("PINATA_JWT_SECRET"),
		IPFSGateway:     getenvDefault("IPFS_GATEWAY", "https://ipfs.io"),
		IPFSAPIAddr:     getenvDefault("IPFS_API_ADDR", "localhost:5001"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		ArweaveBaseURL:  os.Getenv("ARWEAVE_BASE_URL"),
		ArweaveAPIKey:   os.Getenv("ARWEAVE_API_KEY"),

		RecordStore:              strings.ToLower(getenvDefault("RECORD_STORE", RecordStoreNone)),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", project),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("NOTIFY_MAIL_FROM"),
		MailTo:         os.Getenv("NOTIFY_MAIL_TO"),

		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}
}

// Validate は起動時に必須設定の欠落を検出します。
func (c *Config) Validate() error {
	var problems []string

	if c.FeeReceiverAddress == "" {
		problems = append(problems, "FEE_RECEIVER_ADDRESS is required")
	}
	if c.PayerKeySecret == "" && c.PayerKeyFile == "" {
		problems = append(problems, "SOLANA_PAYER_KEY_SECRET or SOLANA_PAYER_KEY_FILE is required")
	}
	if c.PayerKeySecret != "" && !strings.HasPrefix(c.PayerKeySecret, "projects/") && c.GCPProjectID == "" {
		problems = append(problems, "GCP_PROJECT_ID is required to resolve SOLANA_PAYER_KEY_SECRET")
	}

	switch c.UploadProvider {
	case UploadProviderPinata:
		if c.PinataJWT == "" && c.PinataJWTSecret == "" {
			problems = append(problems, "PINATA_JWT or PINATA_JWT_SECRET is required for pinata uploads")
		}
	case UploadProviderGCS:
		if c.GCSBucket == "" {
			problems = append(problems, "GCS_BUCKET is required for gcs uploads")
		}
	case UploadProviderArweave:
		if c.ArweaveBaseURL == "" {
			problems = append(problems, "ARWEAVE_BASE_URL is required for arweave uploads")
		}
	case UploadProviderKubo:
		if c.IPFSAPIAddr == "" {
			problems = append(problems, "IPFS_API_ADDR is required for kubo uploads")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown UPLOAD_PROVIDER %q", c.UploadProvider))
	}

	switch c.RecordStore {
	case RecordStoreNone:
	case RecordStoreFirestore:
		if c.FirestoreProjectID == "" {
			problems = append(problems, "FIRESTORE_PROJECT_ID is required for firestore records")
		}
	case RecordStorePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for postgres records")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown RECORD_STORE %q", c.RecordStore))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// MailEnabled は SendGrid 通知が構成されているかを返します。
func (c *Config) MailEnabled() bool {
	return c.SendGridAPIKey != "" && c.MailFrom != "" && c.MailTo != ""
}

// AuthEnabled reports whether Firebase ID-token verification should guard the API.
func (c *Config) AuthEnabled() bool {
	return c.FirebaseProjectID != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint(key string, def uint64) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Printf("[config] WARN: %s=%q is not an unsigned integer, using %d", key, v, def)
		return def
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
