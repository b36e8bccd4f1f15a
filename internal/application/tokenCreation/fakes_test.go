package tokenCreation

import (
	"context"
	"errors"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

const testFeeReceiver = "HHN3raM19q3kuVb8hQwFG8mi4rUR8ztbxX4vG8XudFNB"

type fakeStore struct {
	mu        sync.Mutex
	fileCalls int
	jsonCalls int
	lastJSON  []byte
	jsonName  string
	fileErr   error
	jsonErr   error
}

func (s *fakeStore) PinFile(ctx context.Context, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileCalls++
	if s.fileErr != nil {
		return "", s.fileErr
	}
	return "https://ipfs.io/ipfs/QmImage", nil
}

func (s *fakeStore) PinJSON(ctx context.Context, name string, doc []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jsonCalls++
	s.jsonName = name
	s.lastJSON = append([]byte(nil), doc...)
	if s.jsonErr != nil {
		return "", s.jsonErr
	}
	return "https://ipfs.io/ipfs/QmMeta", nil
}

type fakeWallet struct {
	account   *types.Account
	sent      [][]types.Instruction
	coSigners [][]types.Account
	sig       string
	err       error
}

func newFakeWallet() *fakeWallet {
	acc := types.NewAccount()
	return &fakeWallet{account: &acc, sig: "5sigSimulated1111111111111111111111111111111111"}
}

func (w *fakeWallet) PublicKey() *common.PublicKey {
	if w.account == nil {
		return nil
	}
	pk := w.account.PublicKey
	return &pk
}

func (w *fakeWallet) SendTransaction(ctx context.Context, ins []types.Instruction, coSigners ...types.Account) (string, error) {
	w.sent = append(w.sent, ins)
	w.coSigners = append(w.coSigners, coSigners)
	if w.err != nil {
		return "", w.err
	}
	return w.sig, nil
}

type fakeChain struct {
	rent       uint64
	existing   map[common.PublicKey]bool
	decimals   uint8
	confirmErr error
	lookupErr  error
	confirmed  []string
	commitment rpc.Commitment
}

func newFakeChain() *fakeChain {
	return &fakeChain{rent: 1461600, existing: map[common.PublicKey]bool{}, decimals: 6}
}

func (c *fakeChain) AccountExists(ctx context.Context, addr common.PublicKey) (bool, error) {
	if c.lookupErr != nil {
		return false, c.lookupErr
	}
	return c.existing[addr], nil
}

func (c *fakeChain) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return c.rent, nil
}

func (c *fakeChain) ConfirmTransaction(ctx context.Context, sig string, commitment rpc.Commitment) error {
	c.confirmed = append(c.confirmed, sig)
	c.commitment = commitment
	return c.confirmErr
}

func (c *fakeChain) MintDecimals(ctx context.Context, mint common.PublicKey) (uint8, error) {
	return c.decimals, nil
}

type recordingNotifier struct {
	got []tcdom.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, x tcdom.Notification) {
	n.got = append(n.got, x)
}

type memRecords struct {
	saved []tcdom.TokenRecord
	err   error
}

func (m *memRecords) Save(ctx context.Context, rec tcdom.TokenRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, rec)
	return nil
}

func (m *memRecords) GetByMint(ctx context.Context, mint string) (tcdom.TokenRecord, error) {
	for _, r := range m.saved {
		if r.MintAddress == mint {
			return r, nil
		}
	}
	return tcdom.TokenRecord{}, tcdom.ErrRecordNotFound
}

var errBoom = errors.New("boom")
