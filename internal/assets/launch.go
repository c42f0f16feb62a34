// internal/assets/launch.go
package assets

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// Launch creates a new SPL token: image and metadata are uploaded through
// the funded pipeline first, then a single transaction creates the mint,
// initializes it, creates the creator's associated token account and mints
// the initial supply. Storage runs first so a failed upload costs nothing
// on-chain.
func (s *Service) Launch(ctx context.Context, w *wallet.Wallet, params LaunchParams) (*LaunchReceipt, error) {
	if params.Name == "" || params.Symbol == "" {
		return nil, fmt.Errorf("token name and symbol are required")
	}
	if params.InitialSupply == 0 {
		return nil, ErrInvalidAmount
	}

	var imageURI string
	if len(params.ImageBytes) > 0 {
		imageResult := s.storage.UploadImage(ctx, params.ImageBytes, params.ImageContentType)
		if !imageResult.Success {
			return nil, fmt.Errorf("%w: %s", ErrImageUpload, imageResult.Error)
		}
		imageURI = imageResult.URI
	}

	metadata := TokenMetadata{
		Name:        params.Name,
		Symbol:      params.Symbol,
		Description: params.Description,
		Image:       imageURI,
	}
	metadataResult := s.storage.UploadMetadata(ctx, metadata)
	if !metadataResult.Success {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUpload, metadataResult.Error)
	}

	mintKeypair := solana.NewWallet()
	mint := mintKeypair.PublicKey()

	rent, err := s.chain.GetMinimumBalanceForRentExemption(ctx, mintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("get rent exemption: %w", err)
	}

	creatorATA, err := w.GetATA(mint)
	if err != nil {
		return nil, fmt.Errorf("derive creator token account: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(rent, mintAccountSize, solana.TokenProgramID, w.PublicKey, mint).Build(),
		buildInitializeMintInstruction(mint, w.PublicKey, params.Decimals),
		buildCreateATAIdempotentInstruction(w.PublicKey, w.PublicKey, mint),
		buildMintToInstruction(mint, creatorATA, w.PublicKey, params.InitialSupply),
	}

	blockhash, err := s.chain.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(w.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("build launch transaction: %w", err)
	}

	// The new mint account signs its own creation alongside the payer.
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		switch {
		case key.Equals(w.PublicKey):
			return &w.PrivateKey
		case key.Equals(mint):
			return &mintKeypair.PrivateKey
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign launch transaction: %w", err)
	}

	status, err := s.sender.SendAndConfirm(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("launch transaction: %w", err)
	}

	s.logger.Info("token launched",
		zap.String("mint", mint.String()),
		zap.String("metadata_uri", metadataResult.URI),
		zap.String("signature", status.Signature))

	return &LaunchReceipt{
		Mint:        mint,
		MetadataURI: metadataResult.URI,
		ImageURI:    imageURI,
		Signature:   status.Signature,
	}, nil
}
