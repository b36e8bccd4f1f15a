package solana

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	accounts   map[string]client.AccountInfo
	accountErr error
	statuses   []*rpc.SignatureStatus
	statusIdx  int
	sent       []types.Transaction
	sendErr    error
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, addr string) (client.AccountInfo, error) {
	if f.accountErr != nil {
		return client.AccountInfo{}, f.accountErr
	}
	return f.accounts[addr], nil
}

func (f *fakeRPC) GetMinimumBalanceForRentExemption(ctx context.Context, n uint64) (uint64, error) {
	return n * 10, nil
}

func (f *fakeRPC) GetSignatureStatus(ctx context.Context, sig string) (*rpc.SignatureStatus, error) {
	if f.statusIdx >= len(f.statuses) {
		return nil, nil
	}
	st := f.statuses[f.statusIdx]
	f.statusIdx++
	return st, nil
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error) {
	return rpc.GetLatestBlockhashValue{Blockhash: "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"}, nil
}

func (f *fakeRPC) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)
	return "sig-from-node-0000000000", nil
}

func newTestClient(f *fakeRPC) *RPCClient {
	return &RPCClient{rpc: f, pollInterval: time.Millisecond}
}

func commitmentPtr(c rpc.Commitment) *rpc.Commitment { return &c }

func TestAccountExists(t *testing.T) {
	present := types.NewAccount().PublicKey
	absent := types.NewAccount().PublicKey
	f := &fakeRPC{accounts: map[string]client.AccountInfo{
		present.ToBase58(): {Lamports: 2039280, Owner: common.TokenProgramID},
	}}
	c := newTestClient(f)

	ok, err := c.AccountExists(context.Background(), present)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AccountExists(context.Background(), absent)
	require.NoError(t, err)
	assert.False(t, ok)

	f.accountErr = errors.New("rpc error: could not find account")
	ok, err = c.AccountExists(context.Background(), present)
	require.NoError(t, err)
	assert.False(t, ok)

	f.accountErr = errors.New("connection refused")
	_, err = c.AccountExists(context.Background(), present)
	assert.Error(t, err)
}

func TestConfirmTransaction(t *testing.T) {
	f := &fakeRPC{statuses: []*rpc.SignatureStatus{
		nil,
		{Slot: 10, ConfirmationStatus: commitmentPtr(rpc.CommitmentProcessed)},
		{Slot: 11, ConfirmationStatus: commitmentPtr(rpc.CommitmentConfirmed)},
	}}
	err := newTestClient(f).ConfirmTransaction(context.Background(), "sig", rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 3, f.statusIdx)
}

func TestConfirmTransaction_OnChainError(t *testing.T) {
	f := &fakeRPC{statuses: []*rpc.SignatureStatus{
		{Slot: 10, Err: map[string]any{"InstructionError": []any{3, "Custom"}}},
	}}
	err := newTestClient(f).ConfirmTransaction(context.Background(), "sig", rpc.CommitmentConfirmed)
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestConfirmTransaction_ContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := newTestClient(&fakeRPC{}).ConfirmTransaction(ctx, "sig", rpc.CommitmentConfirmed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMintDecimals(t *testing.T) {
	mint := types.NewAccount().PublicKey
	data := make([]byte, token.MintAccountSize)
	data[44] = 6
	data[45] = 1

	f := &fakeRPC{accounts: map[string]client.AccountInfo{
		mint.ToBase58(): {Owner: common.TokenProgramID, Data: data, Lamports: 1461600},
	}}
	d, err := newTestClient(f).MintDecimals(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)

	_, err = newTestClient(f).MintDecimals(context.Background(), types.NewAccount().PublicKey)
	assert.ErrorIs(t, err, ErrMintAccountMissing)

	f.accounts[mint.ToBase58()] = client.AccountInfo{Owner: common.SystemProgramID, Data: data}
	_, err = newTestClient(f).MintDecimals(context.Background(), mint)
	assert.ErrorIs(t, err, ErrMintAccountOwner)
}

func TestKeypairWallet_SignsWithCoSigners(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount()
	f := &fakeRPC{}
	w := NewKeypairWallet(payer, newTestClient(f))

	require.NotNil(t, w.PublicKey())
	assert.Equal(t, payer.PublicKey, *w.PublicKey())

	ins := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer.PublicKey,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: 1461600,
			Space:    token.MintAccountSize,
		}),
	}
	sig, err := w.SendTransaction(context.Background(), ins, mint)
	require.NoError(t, err)
	assert.Equal(t, "sig-from-node-0000000000", sig)

	require.Len(t, f.sent, 1)
	assert.Len(t, f.sent[0].Signatures, 2)
	assert.Equal(t, payer.PublicKey, f.sent[0].Message.Accounts[0])

	_, err = w.SendTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoInstructions)
}

func TestKeypairWallet_Unloaded(t *testing.T) {
	w := NewKeypairWallet(types.Account{}, nil)
	assert.Nil(t, w.PublicKey())
}

func TestParseKeypair_RoundTrip(t *testing.T) {
	acc := types.NewAccount()
	raw, err := EncodeKeypair(acc)
	require.NoError(t, err)

	got, err := ParseKeypair(raw)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)

	_, err = ParseKeypair([]byte("[1,2,3]"))
	assert.ErrorIs(t, err, ErrKeypairFormat)
	_, err = ParseKeypair([]byte("  "))
	assert.ErrorIs(t, err, ErrKeypairFormat)
}

type mapSecrets map[string][]byte

func (m mapSecrets) Get(ctx context.Context, id string) ([]byte, error) {
	v, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func TestLoadKeypair(t *testing.T) {
	acc := types.NewAccount()
	raw, err := EncodeKeypair(acc)
	require.NoError(t, err)

	got, err := LoadKeypair(context.Background(), mapSecrets{"payer": raw}, "payer", "")
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)

	path := filepath.Join(t.TempDir(), "payer.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	got, err = LoadKeypair(context.Background(), nil, "", path)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)

	_, err = LoadKeypair(context.Background(), nil, "payer", "")
	assert.Error(t, err)
	_, err = LoadKeypair(context.Background(), nil, "", "")
	assert.Error(t, err)
}
