// internal/solana/transaction/manager.go
package transaction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Sender is the slice of the RPC client the manager needs.
type Sender interface {
	StatusClient
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

type Manager struct {
	client    Sender
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client Sender, logger *zap.Logger, config Config) *Manager {
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   NewMetrics(),
	}
}

// SendAndConfirm validates, sends with retry and waits for on-chain
// confirmation of the transaction.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*Status, error) {
	defer tm.metrics.TrackTransaction(time.Now())

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	signature, err := tm.sendWithRetry(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, err
	}

	return status, nil
}

func (tm *Manager) sendWithRetry(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	operation := func() (solana.Signature, error) {
		sig, err := tm.client.SendTransaction(ctx, tx)
		if err != nil {
			tm.metrics.failureCounter.Inc()
			tm.logger.Warn("Retrying transaction send", zap.Error(err))
			return solana.Signature{}, err
		}
		tm.metrics.successCounter.Inc()
		return sig, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = tm.config.RetryDelay
	bo.Multiplier = 2

	signature, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(tm.config.MaxRetries)))
	if err != nil {
		return solana.Signature{}, err
	}
	return signature, nil
}
