// internal/assets/transfer.go
package assets

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// MultiHopTransfer routes amount raw token units through the given wallets
// in order. Hops are strictly sequential: hop n+1 only starts after hop n
// confirmed, since it spends the balance hop n delivered.
func (s *Service) MultiHopTransfer(ctx context.Context, route []*wallet.Wallet,
	mint solana.PublicKey, amount uint64) ([]string, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if len(route) < 2 {
		return nil, ErrRouteTooShort
	}

	s.logger.Info("starting multi-hop transfer",
		zap.String("mint", mint.String()),
		zap.Int("hops", len(route)-1),
		zap.Uint64("amount", amount))

	signatures := make([]string, 0, len(route)-1)
	for i := 0; i < len(route)-1; i++ {
		sender, receiver := route[i], route[i+1]

		sourceATA, err := sender.GetATA(mint)
		if err != nil {
			return signatures, fmt.Errorf("hop %d: derive source token account: %w", i+1, err)
		}
		destATA, err := receiver.GetATA(mint)
		if err != nil {
			return signatures, fmt.Errorf("hop %d: derive destination token account: %w", i+1, err)
		}

		status, err := s.buildAndSend(ctx, sender, []solana.Instruction{
			buildCreateATAIdempotentInstruction(sender.PublicKey, receiver.PublicKey, mint),
			buildTransferInstruction(sourceATA, destATA, sender.PublicKey, amount),
		})
		if err != nil {
			return signatures, fmt.Errorf("hop %d (%s -> %s): %w", i+1, sender.PublicKey, receiver.PublicKey, err)
		}

		signatures = append(signatures, status.Signature)
		s.logger.Debug("hop confirmed",
			zap.Int("hop", i+1),
			zap.String("signature", status.Signature))
	}

	return signatures, nil
}
