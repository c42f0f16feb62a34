// internal/assets/service.go
package assets

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/solana/transaction"
	"github.com/rovshanmuradov/solana-assets/internal/storage/irys"
	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// ChainClient is the slice of the RPC pool the asset operations need.
type ChainClient interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// TxSender sends a signed transaction and waits for confirmation.
type TxSender interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*transaction.Status, error)
}

// Storage is the narrow upload-pipeline contract asset operations consume.
type Storage interface {
	UploadMetadata(ctx context.Context, v interface{}) *irys.UploadResult
	UploadImage(ctx context.Context, data []byte, contentType string) *irys.UploadResult
	GetUploadCost(ctx context.Context, dataSize uint64) (*irys.PriceQuote, error)
}

// Service implements token asset operations: launches, burns, distributions,
// multi-hop transfers and liquidations. Metadata and images go through the
// funded-upload pipeline; everything on-chain goes through the transaction
// manager.
type Service struct {
	chain   ChainClient
	sender  TxSender
	storage Storage
	logger  *zap.Logger
}

func NewService(chain ChainClient, sender TxSender, storage Storage, logger *zap.Logger) *Service {
	return &Service{
		chain:   chain,
		sender:  sender,
		storage: storage,
		logger:  logger.Named("assets"),
	}
}

// buildAndSend assembles, signs with the owner wallet and confirms one
// transaction.
func (s *Service) buildAndSend(ctx context.Context, w *wallet.Wallet, instructions []solana.Instruction) (*transaction.Status, error) {
	blockhash, err := s.chain.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(w.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	if err := w.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	return s.sender.SendAndConfirm(ctx, tx)
}
