// internal/storage/irys/upload.go
package irys

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UploadExecutor submits payload bytes plus content tags to a storage node.
type UploadExecutor struct {
	httpClient *http.Client
	exec       *Executor
	currency   string
	gatewayURL string
	logger     *zap.Logger
}

func NewUploadExecutor(httpClient *http.Client, exec *Executor, currency, gatewayURL string, logger *zap.Logger) *UploadExecutor {
	return &UploadExecutor{
		httpClient: httpClient,
		exec:       exec,
		currency:   currency,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		logger:     logger.Named("upload-executor"),
	}
}

// Submit performs one atomic submit call to the node. A response that lacks
// a receipt id is reported as ErrNoReceiptID: the node answered but broke
// protocol, which is not the same failure as transient unavailability.
func (u *UploadExecutor) Submit(ctx context.Context, nodeURL string, payload []byte, tags []Tag) (*UploadReceipt, error) {
	receipt, err := execute(ctx, u.exec, "upload", func(ctx context.Context) (*UploadReceipt, error) {
		return u.submitOnce(ctx, nodeURL, payload, tags)
	})
	if err != nil {
		return nil, newNodeError(err, nodeURL, "upload")
	}
	return receipt, nil
}

func (u *UploadExecutor) submitOnce(ctx context.Context, nodeURL string, payload []byte, tags []Tag) (*UploadReceipt, error) {
	body, err := json.Marshal(uploadEnvelope{
		Data: base64.StdEncoding.EncodeToString(payload),
		Tags: tags,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal envelope: %w", ErrUploadSubmitFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/tx/%s", nodeURL, u.currency), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUploadSubmitFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %w", ErrUploadSubmitFailed, err)
	}
	defer resp.Body.Close()

	u.logger.Debug("upload request completed",
		zap.Duration("duration", time.Since(start)),
		zap.String("node", nodeURL),
		zap.Int("payload_bytes", len(payload)),
		zap.Int("status", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUploadSubmitFailed, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status code: %d, body: %s",
			ErrUploadSubmitFailed, resp.StatusCode, string(respBody))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed receipt: %w", ErrUploadSubmitFailed, err)
	}

	if parsed.ID == "" {
		return nil, ErrNoReceiptID
	}

	return &UploadReceipt{
		ID:  parsed.ID,
		URI: u.gatewayURL + "/" + parsed.ID,
	}, nil
}
