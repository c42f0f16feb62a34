// internal/assets/distribute.go
package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// distributeConcurrency caps the parallel per-recipient transactions so the
// RPC pool is not flooded.
const distributeConcurrency = 4

// Distribute sends amountEach raw token units from the source wallet to
// every recipient, creating the recipient's associated token account when
// missing. Each recipient gets its own transaction; a failure for one
// recipient aborts the rest but already-confirmed transfers stand.
func (s *Service) Distribute(ctx context.Context, w *wallet.Wallet, mint solana.PublicKey,
	recipients []solana.PublicKey, amountEach uint64) (*DistributionResult, error) {
	if amountEach == 0 {
		return nil, ErrInvalidAmount
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	sourceATA, err := w.GetATA(mint)
	if err != nil {
		return nil, fmt.Errorf("derive source token account: %w", err)
	}

	s.logger.Info("distributing tokens",
		zap.String("mint", mint.String()),
		zap.Int("recipients", len(recipients)),
		zap.Uint64("amount_each", amountEach))

	result := &DistributionResult{Signatures: make(map[string]string, len(recipients))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(distributeConcurrency)

	for _, recipient := range recipients {
		g.Go(func() error {
			destATA, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
			if err != nil {
				return fmt.Errorf("derive token account for %s: %w", recipient, err)
			}

			status, err := s.buildAndSend(gctx, w, []solana.Instruction{
				buildCreateATAIdempotentInstruction(w.PublicKey, recipient, mint),
				buildTransferInstruction(sourceATA, destATA, w.PublicKey, amountEach),
			})
			if err != nil {
				return fmt.Errorf("transfer to %s: %w", recipient, err)
			}

			mu.Lock()
			result.Signatures[recipient.String()] = status.Signature
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
