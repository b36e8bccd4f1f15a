package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenforge/internal/infra/config"
	solanainfra "tokenforge/internal/infra/solana"
)

func writeKeyfile(t *testing.T) (string, types.Account) {
	t.Helper()
	acc := types.NewAccount()
	data, err := solanainfra.EncodeKeypair(acc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signer.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, acc
}

func offlineConfig(keyfile string) *config.Config {
	return &config.Config{
		SolanaRPCURL:         "http://127.0.0.1:8899",
		SolanaCluster:        "devnet",
		PayerKeyFile:         keyfile,
		FeeReceiverAddress:   "HHN3raM19q3kuVb8hQwFG8mi4rUR8ztbxX4vG8XudFNB",
		BaseFeeLamports:      100_000_000,
		RevokeMintLamports:   100_000_000,
		RevokeFreezeLamports: 100_000_000,
		UploadProvider:       config.UploadProviderArweave,
		ArweaveBaseURL:       "http://127.0.0.1:1984",
		RecordStore:          config.RecordStoreNone,
		CORSAllowedOrigins:   []string{"http://localhost:5173"},
	}
}

func TestBuild_Offline(t *testing.T) {
	path, acc := writeKeyfile(t)
	cfg := offlineConfig(path)
	require.NoError(t, cfg.Validate())

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, acc.PublicKey.ToBase58(), c.TokenUC.SignerAddress())
	assert.Equal(t, uint64(300_000_000), c.TokenUC.Quote(true, true).TotalLamports)

	// メール無効: ログ + Collector
	require.Len(t, c.Notifier, 2)
	assert.Same(t, c.Notifications, c.Notifier[1])

	deps, err := c.RouterDeps(context.Background())
	require.NoError(t, err)
	assert.Nil(t, deps.FirebaseAuth)
	assert.Same(t, c.Notifications, deps.Notifications)
	assert.Equal(t, []string{"http://localhost:5173"}, deps.AllowedOrigins)
}

func TestBuild_MissingKeyfile(t *testing.T) {
	cfg := offlineConfig(filepath.Join(t.TempDir(), "nope.json"))
	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payer keypair")
}

func TestClose_RunsInReverseOrder(t *testing.T) {
	var order []int
	c := &Container{}
	c.onClose(func() { order = append(order, 1) })
	c.onClose(func() { order = append(order, 2) })
	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)

	var nilC *Container
	assert.NotPanics(t, nilC.Close)
}
