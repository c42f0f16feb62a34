// internal/storage/irys/pricing.go
package irys

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// CostEstimator asks a storage node for the price of a payload of a given
// size. Price is node-scoped: a quote from one node is never valid for
// another.
type CostEstimator struct {
	httpClient *http.Client
	exec       *Executor
	currency   string
	logger     *zap.Logger
}

func NewCostEstimator(httpClient *http.Client, exec *Executor, currency string, logger *zap.Logger) *CostEstimator {
	return &CostEstimator{
		httpClient: httpClient,
		exec:       exec,
		currency:   currency,
		logger:     logger.Named("cost-estimator"),
	}
}

// Price quotes the cost of uploading dataSize bytes to the given node.
// dataSize 0 is valid and returns the node's base price. Any failure is an
// estimation failure; the caller must abort the attempt rather than assume
// a price.
func (e *CostEstimator) Price(ctx context.Context, nodeURL string, dataSize uint64) (*PriceQuote, error) {
	cost, err := execute(ctx, e.exec, "price", func(ctx context.Context) (uint64, error) {
		return e.fetchPrice(ctx, nodeURL, dataSize)
	})
	if err != nil {
		return nil, newNodeError(fmt.Errorf("%w: %w", ErrEstimationFailed, err), nodeURL, "price")
	}

	e.logger.Debug("price quoted",
		zap.String("node", nodeURL),
		zap.Uint64("data_size", dataSize),
		zap.Uint64("cost", cost))

	return &PriceQuote{Cost: cost, DataSize: dataSize}, nil
}

func (e *CostEstimator) fetchPrice(ctx context.Context, nodeURL string, dataSize uint64) (uint64, error) {
	url := fmt.Sprintf("%s/price/%s/%d", nodeURL, e.currency, dataSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	e.logger.Debug("price request completed",
		zap.Duration("duration", time.Since(start)),
		zap.String("node", nodeURL),
		zap.Int("status", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return parsePrice(body)
}

// parsePrice accepts the price as a bare number or a quoted decimal string,
// both of which bundler nodes emit.
func parsePrice(body []byte) (uint64, error) {
	var raw json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		var quoted string
		if err := json.Unmarshal(body, &quoted); err != nil {
			return 0, fmt.Errorf("malformed price response %q", string(body))
		}
		raw = json.Number(quoted)
	}

	cost, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed price value %q: %w", raw.String(), err)
	}
	return cost, nil
}
