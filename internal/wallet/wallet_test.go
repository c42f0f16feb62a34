// internal/wallet/wallet_test.go
package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKeyBase58(t *testing.T) string {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return base58.Encode(pk)
}

func TestNewWallet(t *testing.T) {
	key := randomKeyBase58(t)

	w, err := NewWallet(key)
	require.NoError(t, err)
	assert.Equal(t, w.PrivateKey.PublicKey(), w.PublicKey)
	assert.NotNil(t, w.ATACache)
}

func TestNewWallet_RejectsBadKeys(t *testing.T) {
	_, err := NewWallet("not-base58!!!")
	assert.Error(t, err)

	// Valid base58 but the wrong length.
	_, err = NewWallet(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestLoadWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.yaml")
	content := fmt.Sprintf(`wallets:
  - name: default
    private_key: %s
  - name: secondary
    private_key: %s
  - name: broken
    private_key: tooshort
  - name: ""
    private_key: %s
`, randomKeyBase58(t), randomKeyBase58(t), randomKeyBase58(t))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)

	// Invalid and unnamed entries are skipped, not fatal.
	assert.Len(t, wallets, 2)
	assert.Contains(t, wallets, "default")
	assert.Contains(t, wallets, "secondary")
}

func TestLoadWallets_NoValidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wallets:\n  - name: x\n    private_key: bad\n"), 0o600))

	_, err := LoadWallets(path)
	assert.ErrorContains(t, err, "no valid wallets")
}

func TestGetATA_Caches(t *testing.T) {
	w, err := NewWallet(randomKeyBase58(t))
	require.NoError(t, err)

	mint, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	ata, err := w.GetATA(mint.PublicKey())
	require.NoError(t, err)

	cached, err := w.GetATA(mint.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, ata, cached)
	assert.Len(t, w.ATACache, 1)
}

func TestSignTransaction(t *testing.T) {
	w, err := NewWallet(randomKeyBase58(t))
	require.NoError(t, err)

	recipient, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.SystemProgramID,
			solana.AccountMetaSlice{
				solana.NewAccountMeta(w.PublicKey, true, true),
				solana.NewAccountMeta(recipient.PublicKey(), true, false),
			},
			[]byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
		)},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	assert.Len(t, tx.Signatures, 1)
}
