package assets

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInstructionEncoding(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	tests := []struct {
		name string
		inst solana.Instruction
		code uint8
	}{
		{"transfer", buildTransferInstruction(source, dest, owner, 123456), tokenInstructionTransfer},
		{"burn", buildBurnInstruction(source, dest, owner, 123456), tokenInstructionBurn},
		{"mint_to", buildMintToInstruction(source, dest, owner, 123456), tokenInstructionMintTo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, solana.TokenProgramID, tt.inst.ProgramID())

			data, err := tt.inst.Data()
			require.NoError(t, err)
			require.Len(t, data, 9)
			assert.Equal(t, tt.code, data[0])
			assert.Equal(t, uint64(123456), binary.LittleEndian.Uint64(data[1:]))
		})
	}
}

func TestInitializeMintEncoding(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	inst := buildInitializeMintInstruction(mint, authority, 9)
	data, err := inst.Data()
	require.NoError(t, err)

	// code + decimals + 32-byte authority + COption::None freeze authority
	require.Len(t, data, 35)
	assert.Equal(t, tokenInstructionInitializeMint, data[0])
	assert.Equal(t, uint8(9), data[1])
	assert.Equal(t, authority.Bytes(), []byte(data[2:34]))
	assert.Equal(t, uint8(0), data[34])
}

func TestCloseAccountEncoding(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	inst := buildCloseAccountInstruction(account, dest, owner)
	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{tokenInstructionCloseAccount}, data)
}

func TestCreateATAIdempotentTargetsATAProgram(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	inst := buildCreateATAIdempotentInstruction(payer, owner, mint)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, inst.ProgramID())

	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, inst.Accounts()[1].PublicKey)
}
