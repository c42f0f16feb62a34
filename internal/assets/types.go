// internal/assets/types.go
package assets

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrNoRecipients       = errors.New("no recipients provided")
	ErrRouteTooShort      = errors.New("transfer route needs at least two wallets")
	ErrMetadataUpload     = errors.New("metadata upload failed")
	ErrImageUpload        = errors.New("image upload failed")
	ErrNothingToLiquidate = errors.New("no token accounts to liquidate")
)

// LaunchParams describes a new token launch. The image and metadata are
// pushed through the upload pipeline before any on-chain state is created,
// so a storage failure costs nothing on-chain.
type LaunchParams struct {
	Name             string
	Symbol           string
	Description      string
	ImageBytes       []byte
	ImageContentType string
	Decimals         uint8
	InitialSupply    uint64
}

// LaunchReceipt reports the created mint and where its metadata lives.
type LaunchReceipt struct {
	Mint        solana.PublicKey
	MetadataURI string
	ImageURI    string
	Signature   string
}

// TokenMetadata is the JSON document uploaded for a launched token.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// DistributionResult reports the per-recipient transaction signatures of one
// distribution run.
type DistributionResult struct {
	Signatures map[string]string // recipient -> signature
}
