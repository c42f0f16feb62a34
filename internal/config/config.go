// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	Network             string   `mapstructure:"network"`
	RPCList             []string `mapstructure:"rpc_list"`
	NodeURLs            []string `mapstructure:"node_urls"`
	GatewayURL          string   `mapstructure:"gateway_url"`
	WalletsFile         string   `mapstructure:"wallets_file"`
	TimeoutMs           int      `mapstructure:"timeout_ms"`
	Retries             int      `mapstructure:"retries"`
	VerificationRetries int      `mapstructure:"verification_retries"`
	VerificationDelayMs int      `mapstructure:"verification_delay_ms"`
	FundingRetries      int      `mapstructure:"funding_retries"`
	FundingDelayMs      int      `mapstructure:"funding_delay_ms"`
	FundingBuffer       float64  `mapstructure:"funding_buffer"`
	DebugLogging        bool     `mapstructure:"debug_logging"`
}

const (
	DefaultTimeoutMs           = 60000
	DefaultRetries             = 3
	DefaultVerificationRetries = 5
	DefaultVerificationDelayMs = 3000
	DefaultFundingRetries      = 20
	DefaultFundingDelayMs      = 2000
	DefaultFundingBuffer       = 1.2
	DefaultGatewayURL          = "https://gateway.irys.xyz"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"network":               "mainnet",
		"gateway_url":           DefaultGatewayURL,
		"timeout_ms":            DefaultTimeoutMs,
		"retries":               DefaultRetries,
		"verification_retries":  DefaultVerificationRetries,
		"verification_delay_ms": DefaultVerificationDelayMs,
		"funding_retries":       DefaultFundingRetries,
		"funding_delay_ms":      DefaultFundingDelayMs,
		"funding_buffer":        DefaultFundingBuffer,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	if len(cfg.NodeURLs) == 0 {
		return errors.New("node_urls is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	for _, nodeURL := range cfg.NodeURLs {
		if err := validateURLWithCache(nodeURL, "https"); err != nil {
			return errors.New("storage node URL must use HTTPS")
		}
	}
	if err := validateURLWithCache(cfg.GatewayURL, "https"); err != nil {
		return errors.New("gateway URL must use HTTPS")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.TimeoutMs <= 0 {
		return errors.New("invalid timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.VerificationRetries <= 0 {
		return errors.New("invalid verification_retries")
	}
	if cfg.VerificationDelayMs <= 0 {
		return errors.New("invalid verification_delay_ms")
	}
	if cfg.FundingRetries <= 0 {
		return errors.New("invalid funding_retries")
	}
	if cfg.FundingDelayMs <= 0 {
		return errors.New("invalid funding_delay_ms")
	}
	if cfg.FundingBuffer <= 1.0 {
		return errors.New("funding_buffer must be greater than 1.0")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("SOLANA_ASSETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		if rpcs := splitCommaList(envRPCList); len(rpcs) > 0 {
			cfg.RPCList = rpcs
		}
	}

	envNodes := v.GetString("NODE_URLS")
	if envNodes != "" {
		if nodes := splitCommaList(envNodes); len(nodes) > 0 {
			cfg.NodeURLs = nodes
		}
	}
	return nil
}

func splitCommaList(raw string) []string {
	var clean []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	return clean
}
