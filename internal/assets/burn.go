// internal/assets/burn.go
package assets

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// Burn destroys amount raw token units from the owner's associated token
// account.
func (s *Service) Burn(ctx context.Context, w *wallet.Wallet, mint solana.PublicKey, amount uint64) (string, error) {
	if amount == 0 {
		return "", ErrInvalidAmount
	}

	ata, err := w.GetATA(mint)
	if err != nil {
		return "", fmt.Errorf("derive token account: %w", err)
	}

	s.logger.Info("burning tokens",
		zap.String("mint", mint.String()),
		zap.String("owner", w.PublicKey.String()),
		zap.Uint64("amount", amount))

	status, err := s.buildAndSend(ctx, w, []solana.Instruction{
		buildBurnInstruction(ata, mint, w.PublicKey, amount),
	})
	if err != nil {
		return "", fmt.Errorf("burn transaction: %w", err)
	}

	return status.Signature, nil
}
