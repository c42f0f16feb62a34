// internal/storage/irys/verify.go
package irys

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AvailabilityVerifier polls a gateway URI until the uploaded object resolves
// publicly. Exhausting the attempts is a normal terminal outcome on an
// eventually-consistent network, so Verify reports a bool and never an error.
type AvailabilityVerifier struct {
	httpClient *http.Client
	retries    int
	delay      time.Duration
	logger     *zap.Logger
}

func NewAvailabilityVerifier(httpClient *http.Client, retries int, delay time.Duration, logger *zap.Logger) *AvailabilityVerifier {
	return &AvailabilityVerifier{
		httpClient: httpClient,
		retries:    retries,
		delay:      delay,
		logger:     logger.Named("availability-verifier"),
	}
}

// Verify returns true on the first successful GET of uri. Network errors and
// non-2xx responses during polling mean "not yet available", not aborts.
func (v *AvailabilityVerifier) Verify(ctx context.Context, uri string) bool {
	for attempt := 1; attempt <= v.retries; attempt++ {
		if v.probe(ctx, uri) {
			v.logger.Debug("upload reachable",
				zap.String("uri", uri),
				zap.Int("attempt", attempt))
			return true
		}

		v.logger.Debug("upload not yet reachable",
			zap.String("uri", uri),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", v.retries))

		if attempt == v.retries {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(v.delay):
		}
	}

	v.logger.Warn("verification attempts exhausted", zap.String("uri", uri))
	return false
}

func (v *AvailabilityVerifier) probe(ctx context.Context, uri string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return false
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused between polls.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
