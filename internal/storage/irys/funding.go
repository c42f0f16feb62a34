// internal/storage/irys/funding.go
package irys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/solana/transaction"
	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// txSender is the slice of the transaction manager the reconciler needs.
type txSender interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*transaction.Status, error)
}

// blockhashSource supplies a recent blockhash for the funding transfer.
type blockhashSource interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}

// FundingReconciler keeps a node's prepaid balance at or above the price of
// the pending upload. The funding account is assumed single-purpose per
// client instance: the balance is read-query-then-act without locking, and a
// concurrent unrelated spend can surface as a spurious confirmation timeout.
type FundingReconciler struct {
	httpClient  *http.Client
	exec        *Executor
	sender      txSender
	blockhash   blockhashSource
	wallet      *wallet.Wallet
	currency    string
	pollDelay   time.Duration
	pollRetries int
	buffer      float64
	logger      *zap.Logger
}

type FundingConfig struct {
	Currency    string
	PollDelay   time.Duration
	PollRetries int
	Buffer      float64
}

func NewFundingReconciler(httpClient *http.Client, exec *Executor, sender txSender,
	blockhash blockhashSource, w *wallet.Wallet, cfg FundingConfig, logger *zap.Logger) *FundingReconciler {
	return &FundingReconciler{
		httpClient:  httpClient,
		exec:        exec,
		sender:      sender,
		blockhash:   blockhash,
		wallet:      w,
		currency:    cfg.Currency,
		pollDelay:   cfg.PollDelay,
		pollRetries: cfg.PollRetries,
		buffer:      cfg.Buffer,
		logger:      logger.Named("funding"),
	}
}

// EnsureFunded brings the node's prepaid balance up to requiredAmount.
// Idempotent: when the balance already covers the requirement, no funding
// transaction is submitted. The top-up is buffered above the shortfall to
// absorb price drift between quoting and charging; under-funding by even a
// small margin hard-fails the upload with no partial credit.
func (r *FundingReconciler) EnsureFunded(ctx context.Context, nodeURL string, requiredAmount uint64) error {
	balance, err := r.nodeBalance(ctx, nodeURL)
	if err != nil {
		return newNodeError(fmt.Errorf("%w: balance check: %w", ErrFundingSubmitFailed, err), nodeURL, "fund")
	}

	state := FundingState{CurrentBalance: balance, RequiredAmount: requiredAmount}
	if state.CurrentBalance >= state.RequiredAmount {
		r.logger.Debug("prepaid balance sufficient",
			zap.String("node", nodeURL),
			zap.Uint64("balance", state.CurrentBalance),
			zap.Uint64("required", state.RequiredAmount))
		return nil
	}

	topUp := r.bufferedTopUp(state.CurrentBalance, state.RequiredAmount)
	if topUp == 0 {
		return nil
	}

	r.logger.Info("funding storage node",
		zap.String("node", nodeURL),
		zap.Uint64("balance", state.CurrentBalance),
		zap.Uint64("required", state.RequiredAmount),
		zap.Uint64("top_up", topUp))

	txID, err := r.submitFunding(ctx, nodeURL, topUp)
	if err != nil {
		return newNodeError(fmt.Errorf("%w: %w", ErrFundingSubmitFailed, err), nodeURL, "fund")
	}

	return r.awaitFunded(ctx, nodeURL, requiredAmount, txID)
}

// bufferedTopUp computes ceil(shortfall * buffer). Zero when there is no
// shortfall, which defends against submitting a non-positive top-up after
// rounding.
func (r *FundingReconciler) bufferedTopUp(balance, required uint64) uint64 {
	if balance >= required {
		return 0
	}
	shortfall := required - balance
	return uint64(math.Ceil(float64(shortfall) * r.buffer))
}

func (r *FundingReconciler) submitFunding(ctx context.Context, nodeURL string, lamports uint64) (string, error) {
	deposit, err := r.depositAddress(ctx, nodeURL)
	if err != nil {
		return "", fmt.Errorf("resolve deposit address: %w", err)
	}

	blockhash, err := r.blockhash.GetRecentBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get recent blockhash: %w", err)
	}

	instruction := system.NewTransferInstruction(lamports, r.wallet.PublicKey, deposit).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(r.wallet.PublicKey),
	)
	if err != nil {
		return "", fmt.Errorf("build funding transaction: %w", err)
	}

	if err := r.wallet.SignTransaction(tx); err != nil {
		return "", fmt.Errorf("sign funding transaction: %w", err)
	}

	status, err := r.sender.SendAndConfirm(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send funding transaction: %w", err)
	}

	if err := r.registerFunding(ctx, nodeURL, status.Signature); err != nil {
		return "", fmt.Errorf("register funding transaction: %w", err)
	}

	return status.Signature, nil
}

// awaitFunded polls the prepaid balance until it covers requiredAmount or
// the poll budget runs out.
func (r *FundingReconciler) awaitFunded(ctx context.Context, nodeURL string, requiredAmount uint64, txID string) error {
	for attempt := 1; attempt <= r.pollRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollDelay):
		}

		balance, err := r.nodeBalance(ctx, nodeURL)
		if err != nil {
			r.logger.Warn("balance poll failed",
				zap.String("node", nodeURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		if balance >= requiredAmount {
			r.logger.Info("funding confirmed",
				zap.String("node", nodeURL),
				zap.String("tx_id", txID),
				zap.Uint64("balance", balance),
				zap.Int("polls", attempt))
			return nil
		}

		r.logger.Debug("funding not yet reflected",
			zap.String("node", nodeURL),
			zap.Int("attempt", attempt),
			zap.Uint64("balance", balance),
			zap.Uint64("required", requiredAmount))
	}

	return newNodeError(
		fmt.Errorf("%w: balance below %d after %d polls (tx %s)", ErrFundingTimeout, requiredAmount, r.pollRetries, txID),
		nodeURL, "fund")
}

func (r *FundingReconciler) nodeBalance(ctx context.Context, nodeURL string) (uint64, error) {
	return execute(ctx, r.exec, "balance", func(ctx context.Context) (uint64, error) {
		return r.fetchBalance(ctx, nodeURL)
	})
}

func (r *FundingReconciler) fetchBalance(ctx context.Context, nodeURL string) (uint64, error) {
	reqURL := fmt.Sprintf("%s/account/balance/%s?address=%s",
		nodeURL, r.currency, url.QueryEscape(r.wallet.PublicKey.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed balanceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("malformed balance response: %w", err)
	}

	balance, err := strconv.ParseUint(parsed.Balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed balance value %q: %w", parsed.Balance, err)
	}
	return balance, nil
}

// depositAddress resolves the node's funding account for our currency from
// its /info endpoint.
func (r *FundingReconciler) depositAddress(ctx context.Context, nodeURL string) (solana.PublicKey, error) {
	return execute(ctx, r.exec, "node-info", func(ctx context.Context) (solana.PublicKey, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, nodeURL+"/info", nil)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("create request: %w", err)
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return solana.PublicKey{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var info infoResponse
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return solana.PublicKey{}, fmt.Errorf("malformed info response: %w", err)
		}

		address, ok := info.Addresses[r.currency]
		if !ok {
			return solana.PublicKey{}, fmt.Errorf("node does not accept %s funding", r.currency)
		}

		deposit, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid deposit address %q: %w", address, err)
		}
		return deposit, nil
	})
}

func (r *FundingReconciler) registerFunding(ctx context.Context, nodeURL, txID string) error {
	_, err := execute(ctx, r.exec, "register-funding", func(ctx context.Context) (struct{}, error) {
		payload, err := json.Marshal(fundRequest{TxID: txID})
		if err != nil {
			return struct{}{}, fmt.Errorf("marshal fund request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/account/balance/%s", nodeURL, r.currency), bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			return struct{}{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		}
		return struct{}{}, nil
	})
	return err
}
