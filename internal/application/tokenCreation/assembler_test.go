package tokenCreation

import (
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcdom "tokenforge/internal/domain/tokenCreation"
)

func assembleInput(t *testing.T, revokeMint, revokeFreeze bool) AssembleInput {
	t.Helper()
	return AssembleInput{
		Request: tcdom.TokenCreationRequest{
			Name:          "MyToken",
			Symbol:        "MTK",
			Decimals:      9,
			InitialSupply: "1000",
			RevokeMint:    revokeMint,
			RevokeFreeze:  revokeFreeze,
		},
		Metadata:         tcdom.UploadedMetadata{ImageURI: "https://ipfs.io/ipfs/img", MetadataJSONURI: "https://ipfs.io/ipfs/meta"},
		Mint:             types.NewAccount().PublicKey,
		Signer:           types.NewAccount().PublicKey,
		Fees:             tcdom.DefaultFeeSchedule(testFeeReceiver),
		MintRentLamports: 1461600,
	}
}

func indexOf(kinds []StepKind, k StepKind) int {
	for i, x := range kinds {
		if x == k {
			return i
		}
	}
	return -1
}

func TestAssemble_BaseOrder(t *testing.T) {
	b, err := Assemble(assembleInput(t, false, false))
	require.NoError(t, err)

	assert.Equal(t, []StepKind{
		StepFeeTransfer,
		StepCreateMintAccount,
		StepInitializeMint,
		StepCreateMetadata,
		StepCreateAssociatedAccount,
		StepMintTo,
	}, b.Kinds())
	assert.Len(t, b.Instructions(), 6)

	assert.Equal(t, common.SystemProgramID, b.Steps[0].Instruction.ProgramID)
	assert.Equal(t, common.SystemProgramID, b.Steps[1].Instruction.ProgramID)
	assert.Equal(t, common.TokenProgramID, b.Steps[2].Instruction.ProgramID)
	assert.Equal(t, common.MetaplexTokenMetaProgramID, b.Steps[3].Instruction.ProgramID)
	assert.Equal(t, common.SPLAssociatedTokenAccountProgramID, b.Steps[4].Instruction.ProgramID)
	assert.Equal(t, common.TokenProgramID, b.Steps[5].Instruction.ProgramID)
	assert.Equal(t, uint64(100_000_000), b.FeeLamports)
}

func TestAssemble_MintToAmountIsExact(t *testing.T) {
	b, err := Assemble(assembleInput(t, false, false))
	require.NoError(t, err)

	mintTo := b.Steps[indexOf(b.Kinds(), StepMintTo)].Instruction
	require.GreaterOrEqual(t, len(mintTo.Data), 9)
	assert.Equal(t, byte(7), mintTo.Data[0])
	assert.Equal(t, uint64(1_000_000_000_000), binary.LittleEndian.Uint64(mintTo.Data[1:9]))
	assert.Equal(t, uint64(1_000_000_000_000), b.SupplyBaseUnits)
}

func TestAssemble_FeeTransferAmounts(t *testing.T) {
	b, err := Assemble(assembleInput(t, true, true))
	require.NoError(t, err)

	for i, s := range b.Steps {
		if s.Kind != StepFeeTransfer {
			continue
		}
		require.Len(t, s.Instruction.Data, 12, "step %d", i)
		assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(s.Instruction.Data[0:4]))
		assert.Equal(t, uint64(100_000_000), binary.LittleEndian.Uint64(s.Instruction.Data[4:12]))
	}
	assert.Equal(t, uint64(300_000_000), b.FeeLamports)
}

func TestAssemble_RevokeOrdering(t *testing.T) {
	tests := []struct {
		name         string
		revokeMint   bool
		revokeFreeze bool
		wantTail     []StepKind
	}{
		{name: "mint only", revokeMint: true, wantTail: []StepKind{StepFeeTransfer, StepRevokeMintAuthority}},
		{name: "freeze only", revokeFreeze: true, wantTail: []StepKind{StepFeeTransfer, StepRevokeFreezeAuthority}},
		{
			name: "both", revokeMint: true, revokeFreeze: true,
			wantTail: []StepKind{StepFeeTransfer, StepRevokeMintAuthority, StepFeeTransfer, StepRevokeFreezeAuthority},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Assemble(assembleInput(t, tt.revokeMint, tt.revokeFreeze))
			require.NoError(t, err)

			kinds := b.Kinds()
			mintTo := indexOf(kinds, StepMintTo)
			require.Equal(t, 5, mintTo)
			assert.Equal(t, tt.wantTail, kinds[mintTo+1:])

			// 初期化は metadata / mint-to より前
			assert.Less(t, indexOf(kinds, StepInitializeMint), indexOf(kinds, StepCreateMetadata))
			assert.Less(t, indexOf(kinds, StepInitializeMint), mintTo)

			// 各 revoke の直前は手数料送金
			for i, k := range kinds {
				if k == StepRevokeMintAuthority || k == StepRevokeFreezeAuthority {
					assert.Equal(t, StepFeeTransfer, kinds[i-1])
				}
			}
		})
	}
}

func TestAssemble_ExistingAssociatedAccount(t *testing.T) {
	in := assembleInput(t, false, false)
	in.AssociatedAccountExists = true

	b, err := Assemble(in)
	require.NoError(t, err)
	assert.Equal(t, -1, indexOf(b.Kinds(), StepCreateAssociatedAccount))
	assert.Len(t, b.Steps, 5)
}

func TestAssemble_DerivedAddresses(t *testing.T) {
	in := assembleInput(t, false, false)
	b, err := Assemble(in)
	require.NoError(t, err)

	wantATA, _, err := common.FindAssociatedTokenAddress(in.Signer, in.Mint)
	require.NoError(t, err)
	assert.Equal(t, wantATA, b.AssociatedAccount)

	wantPDA, _, err := common.FindProgramAddress(
		[][]byte{[]byte("metadata"), common.MetaplexTokenMetaProgramID.Bytes(), in.Mint.Bytes()},
		common.MetaplexTokenMetaProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, wantPDA, b.Metadata)
}

func TestAssemble_RejectsBadInput(t *testing.T) {
	in := assembleInput(t, false, false)
	in.Fees.Receiver = ""
	_, err := Assemble(in)
	assert.ErrorIs(t, err, ErrInvalidFeeReceiver)

	in = assembleInput(t, false, false)
	in.Signer = common.PublicKey{}
	_, err = Assemble(in)
	assert.ErrorIs(t, err, ErrInvalidSigner)
}

func TestAssembleRevoke(t *testing.T) {
	signer := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	fees := tcdom.DefaultFeeSchedule(testFeeReceiver)

	b, err := AssembleRevoke(signer, mint, AuthorityFreeze, fees)
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepFeeTransfer, StepRevokeFreezeAuthority}, b.Kinds())

	setAuth := b.Steps[1].Instruction
	require.GreaterOrEqual(t, len(setAuth.Data), 3)
	assert.Equal(t, byte(6), setAuth.Data[0])
	assert.Equal(t, byte(1), setAuth.Data[1])
	assert.Equal(t, byte(0), setAuth.Data[2])

	_, err = AssembleRevoke(signer, mint, AuthorityKind("owner"), fees)
	assert.Error(t, err)
}

func TestAssembleMintSupply(t *testing.T) {
	signer := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	receiver := types.NewAccount().PublicKey

	b, err := AssembleMintSupply(signer, mint, receiver, false, 42)
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepCreateAssociatedAccount, StepMintTo}, b.Kinds())

	b, err = AssembleMintSupply(signer, mint, receiver, true, 42)
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepMintTo}, b.Kinds())
}
