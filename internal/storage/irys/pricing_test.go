package irys

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEstimator(t *testing.T) *CostEstimator {
	logger := zaptest.NewLogger(t)
	return NewCostEstimator(http.DefaultClient, newTestExecutor(t, time.Second, 1), "solana", logger)
}

func TestPriceParsesBareNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price/solana/1024", r.URL.Path)
		_, _ = w.Write([]byte("1000"))
	}))
	defer server.Close()

	quote, err := newTestEstimator(t).Price(context.Background(), server.URL, 1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), quote.Cost)
	assert.Equal(t, uint64(1024), quote.DataSize)
}

func TestPriceParsesQuotedNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"2500"`))
	}))
	defer server.Close()

	quote, err := newTestEstimator(t).Price(context.Background(), server.URL, 512)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), quote.Cost)
}

func TestPriceZeroSizeReturnsBasePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price/solana/0", r.URL.Path)
		_, _ = w.Write([]byte("100"))
	}))
	defer server.Close()

	quote, err := newTestEstimator(t).Price(context.Background(), server.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), quote.Cost)
}

func TestPriceMalformedResponseIsEstimationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nope":true}`))
	}))
	defer server.Close()

	_, err := newTestEstimator(t).Price(context.Background(), server.URL, 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEstimationFailed)
}

func TestPriceServerErrorIsEstimationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestEstimator(t).Price(context.Background(), server.URL, 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEstimationFailed)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, server.URL, nodeErr.NodeURL)
}
