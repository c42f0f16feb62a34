// internal/solana/types.go
package solana

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	maxRetries     = 3
	retryDelay     = 500 * time.Millisecond
	defaultTimeout = 10 * time.Second
)

// RPCClient is one node in the round-robin pool.
type RPCClient struct {
	Client  *rpc.Client
	URL     string
	active  bool
	metrics *RPCMetrics
	mutex   sync.RWMutex
}

// RPCMetrics tracks per-node success/error counts and a moving latency average.
type RPCMetrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

func (c *RPCClient) setActive(state bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.active = state
}

func (c *RPCClient) isActive() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.active
}

func (c *RPCClient) updateMetrics(success bool, latency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	if success {
		c.metrics.successCount++
	} else {
		c.metrics.errorCount++
	}
	c.metrics.latency = (c.metrics.latency + latency) / 2
}
