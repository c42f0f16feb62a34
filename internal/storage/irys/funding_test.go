package irys

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-assets/internal/solana/transaction"
	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

type fakeSender struct {
	mu     sync.Mutex
	calls  int
	lastTx *solana.Transaction
	err    error
}

func (f *fakeSender) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*transaction.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTx = tx
	if f.err != nil {
		return nil, f.err
	}
	return &transaction.Status{Signature: tx.Signatures[0].String(), Status: "confirmed"}, nil
}

type fakeBlockhash struct{}

func (fakeBlockhash) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{0x01}, nil
}

// balanceSequence serves successive balance reads, sticking at the last value.
type balanceSequence struct {
	mu       sync.Mutex
	balances []uint64
	idx      int
}

func (s *balanceSequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.balances) {
		return s.balances[len(s.balances)-1]
	}
	b := s.balances[s.idx]
	s.idx++
	return b
}

func newTestWallet(t *testing.T) *wallet.Wallet {
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return &wallet.Wallet{
		PrivateKey: pk,
		PublicKey:  pk.PublicKey(),
		ATACache:   make(map[string]solana.PublicKey),
	}
}

func newFundingServer(t *testing.T, seq *balanceSequence) *httptest.Server {
	deposit := solana.NewWallet().PublicKey().String()

	mux := http.NewServeMux()
	mux.HandleFunc("/account/balance/solana", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprintf(w, `{"balance":"%d"}`, seq.next())
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"version":"1.0","addresses":{"solana":"%s"}}`, deposit)
	})
	return httptest.NewServer(mux)
}

func newTestReconciler(t *testing.T, sender *fakeSender, pollRetries int) *FundingReconciler {
	logger := zaptest.NewLogger(t)
	return NewFundingReconciler(
		http.DefaultClient,
		newTestExecutor(t, time.Second, 1),
		sender,
		fakeBlockhash{},
		newTestWallet(t),
		FundingConfig{
			Currency:    "solana",
			PollDelay:   time.Millisecond,
			PollRetries: pollRetries,
			Buffer:      1.2,
		},
		logger,
	)
}

// transferLamports decodes the lamport amount of a system transfer
// instruction: 4 bytes of instruction index followed by a little-endian u64.
func transferLamports(t *testing.T, tx *solana.Transaction) uint64 {
	require.NotNil(t, tx)
	require.Len(t, tx.Message.Instructions, 1)
	data := tx.Message.Instructions[0].Data
	require.GreaterOrEqual(t, len(data), 12)
	return binary.LittleEndian.Uint64(data[4:12])
}

func TestEnsureFundedSkipsWhenBalanceSufficient(t *testing.T) {
	seq := &balanceSequence{balances: []uint64{1500}}
	server := newFundingServer(t, seq)
	defer server.Close()

	sender := &fakeSender{}
	r := newTestReconciler(t, sender, 20)

	err := r.EnsureFunded(context.Background(), server.URL, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, sender.calls, "no funding transaction may be submitted when balance covers the price")
}

func TestBufferedTopUp(t *testing.T) {
	r := newTestReconciler(t, &fakeSender{}, 20)

	tests := []struct {
		balance  uint64
		required uint64
		want     uint64
	}{
		{0, 1000, 1200},
		{400, 1000, 720},
		{999, 1000, 2},
		{1000, 1000, 0},
		{1500, 1000, 0},
	}
	for _, tt := range tests {
		got := r.bufferedTopUp(tt.balance, tt.required)
		assert.Equal(t, tt.want, got, "balance=%d required=%d", tt.balance, tt.required)
	}
}

func TestEnsureFundedSubmitsBufferedTopUp(t *testing.T) {
	// Balance 0 against a 1000 price: the reconciler submits 1200 and the
	// balance reflects it on the third poll.
	seq := &balanceSequence{balances: []uint64{0, 0, 0, 1200}}
	server := newFundingServer(t, seq)
	defer server.Close()

	sender := &fakeSender{}
	r := newTestReconciler(t, sender, 20)

	err := r.EnsureFunded(context.Background(), server.URL, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, uint64(1200), transferLamports(t, sender.lastTx))
}

func TestEnsureFundedConfirmationTimeout(t *testing.T) {
	seq := &balanceSequence{balances: []uint64{0}}
	server := newFundingServer(t, seq)
	defer server.Close()

	sender := &fakeSender{}
	r := newTestReconciler(t, sender, 3)

	err := r.EnsureFunded(context.Background(), server.URL, 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFundingTimeout)
	assert.Equal(t, 1, sender.calls, "the funding transaction is submitted exactly once")
}

func TestEnsureFundedSubmitFailure(t *testing.T) {
	seq := &balanceSequence{balances: []uint64{0}}
	server := newFundingServer(t, seq)
	defer server.Close()

	sender := &fakeSender{err: errors.New("rpc rejected")}
	r := newTestReconciler(t, sender, 3)

	err := r.EnsureFunded(context.Background(), server.URL, 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFundingSubmitFailed)
}
