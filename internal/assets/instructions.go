// internal/assets/instructions.go
package assets

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SPL token program instruction codes.
const (
	tokenInstructionInitializeMint uint8 = 0
	tokenInstructionTransfer       uint8 = 3
	tokenInstructionMintTo         uint8 = 7
	tokenInstructionBurn           uint8 = 8
	tokenInstructionCloseAccount   uint8 = 9
)

// mintAccountSize is the serialized size of an SPL mint account.
const mintAccountSize = 82

func amountData(code uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = code
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// buildTransferInstruction moves raw token units between token accounts.
func buildTransferInstruction(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: source, IsWritable: true, IsSigner: false},
			{PublicKey: destination, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: true},
		},
		amountData(tokenInstructionTransfer, amount),
	)
}

// buildBurnInstruction destroys raw token units held by a token account.
func buildBurnInstruction(account, mint, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: account, IsWritable: true, IsSigner: false},
			{PublicKey: mint, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: true},
		},
		amountData(tokenInstructionBurn, amount),
	)
}

// buildMintToInstruction mints new supply into a token account.
func buildMintToInstruction(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: mint, IsWritable: true, IsSigner: false},
			{PublicKey: destination, IsWritable: true, IsSigner: false},
			{PublicKey: authority, IsWritable: false, IsSigner: true},
		},
		amountData(tokenInstructionMintTo, amount),
	)
}

// buildInitializeMintInstruction initializes a freshly created mint account.
// The freeze authority is left unset.
func buildInitializeMintInstruction(mint, mintAuthority solana.PublicKey, decimals uint8) solana.Instruction {
	data := make([]byte, 0, 67)
	data = append(data, tokenInstructionInitializeMint, decimals)
	data = append(data, mintAuthority.Bytes()...)
	data = append(data, 0) // freeze authority: COption::None

	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: mint, IsWritable: true, IsSigner: false},
			{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
		},
		data,
	)
}

// buildCloseAccountInstruction closes a token account, sweeping its lamports
// to destination.
func buildCloseAccountInstruction(account, destination, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: account, IsWritable: true, IsSigner: false},
			{PublicKey: destination, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: true},
		},
		[]byte{tokenInstructionCloseAccount},
	)
}

// buildCreateATAIdempotentInstruction creates the associated token account
// for (owner, mint) if it does not exist yet.
func buildCreateATAIdempotentInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)

	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
		},
		[]byte{1}, // CreateIdempotent
	)
}
