// internal/assets/liquidate.go
package assets

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// Liquidate burns any remaining balance of the given mints and closes their
// token accounts, sweeping the freed lamports to destination. Mints are
// processed independently: one failing mint does not stop the others, and
// the first error is returned after the sweep completes.
func (s *Service) Liquidate(ctx context.Context, w *wallet.Wallet, mints []solana.PublicKey,
	destination solana.PublicKey) ([]string, error) {
	if len(mints) == 0 {
		return nil, ErrNothingToLiquidate
	}

	var signatures []string
	var firstErr error

	for _, mint := range mints {
		sig, err := s.liquidateMint(ctx, w, mint, destination)
		if err != nil {
			s.logger.Warn("failed to liquidate mint",
				zap.String("mint", mint.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("liquidate %s: %w", mint, err)
			}
			continue
		}
		signatures = append(signatures, sig)
	}

	return signatures, firstErr
}

func (s *Service) liquidateMint(ctx context.Context, w *wallet.Wallet, mint, destination solana.PublicKey) (string, error) {
	ata, err := w.GetATA(mint)
	if err != nil {
		return "", fmt.Errorf("derive token account: %w", err)
	}

	balance, err := s.chain.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		return "", fmt.Errorf("read token balance: %w", err)
	}

	instructions := make([]solana.Instruction, 0, 2)
	if balance > 0 {
		instructions = append(instructions, buildBurnInstruction(ata, mint, w.PublicKey, balance))
	}
	instructions = append(instructions, buildCloseAccountInstruction(ata, destination, w.PublicKey))

	status, err := s.buildAndSend(ctx, w, instructions)
	if err != nil {
		return "", err
	}

	s.logger.Info("token account liquidated",
		zap.String("mint", mint.String()),
		zap.Uint64("burned", balance),
		zap.String("signature", status.Signature))

	return status.Signature, nil
}
