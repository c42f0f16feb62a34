// internal/config/config_test.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `{
	"rpc_list": ["https://api.mainnet-beta.solana.com"],
	"node_urls": ["https://node1.irys.xyz", "https://node2.irys.xyz"],
	"wallets_file": "wallets.yaml"
}`

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, DefaultGatewayURL, cfg.GatewayURL)
	assert.Equal(t, DefaultTimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultVerificationRetries, cfg.VerificationRetries)
	assert.Equal(t, DefaultVerificationDelayMs, cfg.VerificationDelayMs)
	assert.Equal(t, DefaultFundingRetries, cfg.FundingRetries)
	assert.Equal(t, DefaultFundingDelayMs, cfg.FundingDelayMs)
	assert.Equal(t, DefaultFundingBuffer, cfg.FundingBuffer)
	assert.Equal(t, []string{"https://node1.irys.xyz", "https://node2.irys.xyz"}, cfg.NodeURLs)
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{
		"rpc_list": ["https://rpc.example.com"],
		"node_urls": ["https://node.example.com"],
		"gateway_url": "https://gw.example.com",
		"timeout_ms": 5000,
		"funding_buffer": 1.5
	}`))
	require.NoError(t, err)

	assert.Equal(t, "https://gw.example.com", cfg.GatewayURL)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, 1.5, cfg.FundingBuffer)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "empty rpc list",
			body:    `{"node_urls": ["https://n.irys.xyz"]}`,
			wantErr: "rpc_list is empty",
		},
		{
			name:    "empty node list",
			body:    `{"rpc_list": ["https://r.example.com"]}`,
			wantErr: "node_urls is empty",
		},
		{
			name: "plain http storage node",
			body: `{
				"rpc_list": ["https://r2.example.com"],
				"node_urls": ["http://insecure-node.example.com"]
			}`,
			wantErr: "HTTPS",
		},
		{
			name: "buffer at exactly 1.0",
			body: `{
				"rpc_list": ["https://r3.example.com"],
				"node_urls": ["https://n3.irys.xyz"],
				"funding_buffer": 1.0
			}`,
			wantErr: "funding_buffer",
		},
		{
			name: "zero timeout",
			body: `{
				"rpc_list": ["https://r4.example.com"],
				"node_urls": ["https://n4.irys.xyz"],
				"timeout_ms": 0
			}`,
			wantErr: "timeout_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_EnvOverridesNodeList(t *testing.T) {
	t.Setenv("SOLANA_ASSETS_NODE_URLS", "https://env-node1.irys.xyz, https://env-node2.irys.xyz")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://env-node1.irys.xyz", "https://env-node2.irys.xyz"}, cfg.NodeURLs)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCommaList(" a , b ,, "))
	assert.Nil(t, splitCommaList("  ,  "))
}

func TestLoadConfig_EnvOverridesRPCList(t *testing.T) {
	t.Setenv("SOLANA_ASSETS_RPC_LIST", "https://env-rpc.example.com")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Len(t, cfg.RPCList, 1)
	assert.Equal(t, "https://env-rpc.example.com", cfg.RPCList[0])
}

func BenchmarkLoadConfig(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(minimalConfig), 0o600); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(path); err != nil {
			b.Fatal(err)
		}
	}
}

func TestValidateURLWithCache(t *testing.T) {
	u := fmt.Sprintf("https://cached-%d.example.com", os.Getpid())
	require.NoError(t, validateURLWithCache(u, "https"))

	// Second call hits the cache.
	require.NoError(t, validateURLWithCache(u, "https"))

	assert.Error(t, validateURLWithCache("http://nope.example.com", "https"))
	assert.Error(t, validateURLWithCache("://broken", "https"))
}
