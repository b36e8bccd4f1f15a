package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEE_RECEIVER_ADDRESS", " HHN3raM19q3kuVb8hQwFG8mi4rUR8ztbxX4vG8XudFNB ")
	t.Setenv("UPLOAD_PROVIDER", "")
	t.Setenv("RECORD_STORE", "")
	t.Setenv("FEE_BASE_LAMPORTS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "devnet", cfg.SolanaCluster)
	assert.Equal(t, UploadProviderPinata, cfg.UploadProvider)
	assert.Equal(t, RecordStoreNone, cfg.RecordStore)
	assert.Equal(t, "HHN3raM19q3kuVb8hQwFG8mi4rUR8ztbxX4vG8XudFNB", cfg.FeeReceiverAddress)
	assert.Equal(t, uint64(100_000_000), cfg.BaseFeeLamports)
	assert.Equal(t, "https://ipfs.io", cfg.IPFSGateway)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEE_BASE_LAMPORTS", "5000")
	t.Setenv("FEE_REVOKE_MINT_LAMPORTS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("UPLOAD_PROVIDER", "GCS")

	cfg := Load()
	assert.Equal(t, uint64(5000), cfg.BaseFeeLamports)
	assert.Equal(t, uint64(100_000_000), cfg.RevokeMintLamports)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, UploadProviderGCS, cfg.UploadProvider)
}

func validConfig() *Config {
	return &Config{
		FeeReceiverAddress: "HHN3raM19q3kuVb8hQwFG8mi4rUR8ztbxX4vG8XudFNB",
		PayerKeyFile:       "/tmp/payer.json",
		UploadProvider:     UploadProviderPinata,
		PinataJWT:          "jwt-from-env",
		RecordStore:        RecordStoreNone,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok"},
		{name: "missing fee receiver", mutate: func(c *Config) { c.FeeReceiverAddress = "" }, wantErr: "FEE_RECEIVER_ADDRESS"},
		{name: "missing payer", mutate: func(c *Config) { c.PayerKeyFile = "" }, wantErr: "SOLANA_PAYER_KEY"},
		{
			name:    "secret id without project",
			mutate:  func(c *Config) { c.PayerKeyFile = ""; c.PayerKeySecret = "payer" },
			wantErr: "GCP_PROJECT_ID",
		},
		{name: "pinata without jwt", mutate: func(c *Config) { c.PinataJWT = "" }, wantErr: "PINATA_JWT"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.UploadProvider = UploadProviderGCS }, wantErr: "GCS_BUCKET"},
		{
			name:    "kubo without api addr",
			mutate:  func(c *Config) { c.UploadProvider = UploadProviderKubo; c.IPFSAPIAddr = "" },
			wantErr: "IPFS_API_ADDR",
		},
		{name: "unknown provider", mutate: func(c *Config) { c.UploadProvider = "ftp" }, wantErr: "UPLOAD_PROVIDER"},
		{name: "postgres without url", mutate: func(c *Config) { c.RecordStore = RecordStorePostgres }, wantErr: "DATABASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			if tt.mutate != nil {
				tt.mutate(c)
			}
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFeatureToggles(t *testing.T) {
	c := validConfig()
	assert.False(t, c.MailEnabled())
	assert.False(t, c.AuthEnabled())

	c.SendGridAPIKey, c.MailFrom, c.MailTo = "k", "from@example.com", "to@example.com"
	c.FirebaseProjectID = "proj"
	assert.True(t, c.MailEnabled())
	assert.True(t, c.AuthEnabled())
}
