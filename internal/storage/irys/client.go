// internal/storage/irys/client.go
package irys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/config"
	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// fundingCurrency is the currency key bundler nodes use for Solana-funded
// accounts.
const fundingCurrency = "solana"

type costEstimator interface {
	Price(ctx context.Context, nodeURL string, dataSize uint64) (*PriceQuote, error)
}

type fundingReconciler interface {
	EnsureFunded(ctx context.Context, nodeURL string, requiredAmount uint64) error
}

type uploadSubmitter interface {
	Submit(ctx context.Context, nodeURL string, payload []byte, tags []Tag) (*UploadReceipt, error)
}

type availabilityVerifier interface {
	Verify(ctx context.Context, uri string) bool
}

// Client orchestrates funded uploads against an ordered list of storage
// nodes: price, fund, upload and verify against the first node, and on any
// step failure repeat the whole sequence against the next node. Price and
// funding are node-scoped, so a partial retry across nodes is never valid.
type Client struct {
	nodes      []string
	estimator  costEstimator
	reconciler fundingReconciler
	uploader   uploadSubmitter
	verifier   availabilityVerifier
	metrics    *uploadMetrics
	logger     *zap.Logger
}

// Options is the configuration surface of the upload pipeline.
type Options struct {
	NodeURLs            []string
	GatewayURL          string
	Timeout             time.Duration
	Retries             int
	VerificationRetries int
	VerificationDelay   time.Duration
	FundingRetries      int
	FundingDelay        time.Duration
	FundingBuffer       float64
}

// OptionsFromConfig maps the application config onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		NodeURLs:            cfg.NodeURLs,
		GatewayURL:          cfg.GatewayURL,
		Timeout:             time.Duration(cfg.TimeoutMs) * time.Millisecond,
		Retries:             cfg.Retries,
		VerificationRetries: cfg.VerificationRetries,
		VerificationDelay:   time.Duration(cfg.VerificationDelayMs) * time.Millisecond,
		FundingRetries:      cfg.FundingRetries,
		FundingDelay:        time.Duration(cfg.FundingDelayMs) * time.Millisecond,
		FundingBuffer:       cfg.FundingBuffer,
	}
}

// NewClient wires the pipeline components around one funding wallet. The
// wallet is assumed single-purpose: nothing else should spend from it while
// uploads are in flight.
func NewClient(opts Options, sender txSender, blockhash blockhashSource, w *wallet.Wallet, logger *zap.Logger) (*Client, error) {
	if len(opts.NodeURLs) == 0 {
		return nil, errors.New("no storage node URLs configured")
	}
	if opts.GatewayURL == "" {
		return nil, errors.New("gateway URL is required")
	}

	log := logger.Named("irys")

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	exec := NewExecutor(log, opts.Timeout, opts.Retries)

	nodes := make([]string, 0, len(opts.NodeURLs))
	for _, node := range opts.NodeURLs {
		nodes = append(nodes, strings.TrimRight(node, "/"))
	}

	return &Client{
		nodes:     nodes,
		estimator: NewCostEstimator(httpClient, exec, fundingCurrency, log),
		reconciler: NewFundingReconciler(httpClient, exec, sender, blockhash, w, FundingConfig{
			Currency:    fundingCurrency,
			PollDelay:   opts.FundingDelay,
			PollRetries: opts.FundingRetries,
			Buffer:      opts.FundingBuffer,
		}, log),
		uploader: NewUploadExecutor(httpClient, exec, fundingCurrency, opts.GatewayURL, log),
		verifier: NewAvailabilityVerifier(httpClient, opts.VerificationRetries, opts.VerificationDelay, log),
		metrics:  newUploadMetrics(),
		logger:   log,
	}, nil
}

// PerformUpload runs price → fund → upload → verify against each configured
// node in order until one succeeds. It never returns an error: every failure
// is folded into the result, and the last node's error wins when all nodes
// fail.
func (c *Client) PerformUpload(ctx context.Context, payload []byte, tags []Tag) *UploadResult {
	defer c.metrics.trackUpload(time.Now())

	var result *UploadResult
	for i, node := range c.nodes {
		result = c.attemptNode(ctx, node, payload, tags)
		if result.Success {
			c.metrics.successCounter.Inc()
			return result
		}

		if i < len(c.nodes)-1 {
			c.metrics.fallbackCounter.Inc()
			c.logger.Warn("node attempt failed, trying next node",
				zap.String("node", node),
				zap.String("next", c.nodes[i+1]),
				zap.String("error", result.Error))
		}
	}

	c.metrics.failureCounter.Inc()
	c.logger.Error("upload failed on every node",
		zap.Int("nodes", len(c.nodes)),
		zap.String("error", result.Error))
	return result
}

func (c *Client) attemptNode(ctx context.Context, nodeURL string, payload []byte, tags []Tag) *UploadResult {
	quote, err := c.estimator.Price(ctx, nodeURL, uint64(len(payload)))
	if err != nil {
		return &UploadResult{Error: err.Error()}
	}

	if err := c.reconciler.EnsureFunded(ctx, nodeURL, quote.Cost); err != nil {
		return &UploadResult{Error: err.Error()}
	}

	receipt, err := c.uploader.Submit(ctx, nodeURL, payload, tags)
	if err != nil {
		return &UploadResult{Error: err.Error()}
	}

	if !c.verifier.Verify(ctx, receipt.URI) {
		// Protocol-level success that never became reachable: keep the
		// receipt so a human can re-check later instead of losing a
		// paid-for upload.
		return &UploadResult{
			URI:  receipt.URI,
			TxID: receipt.ID,
			Error: fmt.Sprintf("upload not reachable after verification attempts: uri=%s txId=%s",
				receipt.URI, receipt.ID),
		}
	}

	return &UploadResult{
		Success: true,
		URI:     receipt.URI,
		TxID:    receipt.ID,
	}
}

// UploadMetadata JSON-encodes v and uploads it tagged as application/json.
func (c *Client) UploadMetadata(ctx context.Context, v interface{}) *UploadResult {
	data, err := json.Marshal(v)
	if err != nil {
		return &UploadResult{Error: fmt.Sprintf("marshal metadata: %v", err)}
	}

	tags := []Tag{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "App-Name", Value: "solana-assets"},
	}
	return c.PerformUpload(ctx, data, tags)
}

// UploadImage uploads raw image bytes tagged with their content type.
func (c *Client) UploadImage(ctx context.Context, data []byte, contentType string) *UploadResult {
	tags := []Tag{
		{Name: "Content-Type", Value: contentType},
		{Name: "App-Name", Value: "solana-assets"},
	}
	return c.PerformUpload(ctx, data, tags)
}

// GetUploadCost prices dataSize bytes against the primary node. Unlike
// PerformUpload this re-raises the error: callers need to distinguish
// "cannot price" from "priced at zero" before any funding decision.
func (c *Client) GetUploadCost(ctx context.Context, dataSize uint64) (*PriceQuote, error) {
	return c.estimator.Price(ctx, c.nodes[0], dataSize)
}
