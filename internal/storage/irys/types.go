// internal/storage/irys/types.go
package irys

// Tag is one (name, value) content tag attached to an upload. Tag order is
// preserved on the wire.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PriceQuote is the node's current price for a payload of DataSize bytes, in
// the smallest funding unit. Quotes are derived fresh per node attempt and
// never reused across nodes.
type PriceQuote struct {
	Cost     uint64 `json:"cost"`
	DataSize uint64 `json:"dataSize"`
}

// FundingState is the reconciler's view of one balance poll. Transient,
// recomputed at each read.
type FundingState struct {
	CurrentBalance uint64
	RequiredAmount uint64
}

// UploadReceipt is the node's durable identifier for a successful submit plus
// the gateway URI derived from it.
type UploadReceipt struct {
	ID  string
	URI string
}

// UploadResult is the single value surfaced to callers. Success is only true
// after the URI was independently verified reachable; a protocol-level
// success that never became reachable keeps URI and TxID populated for
// diagnostics.
type UploadResult struct {
	Success bool   `json:"success"`
	URI     string `json:"uri,omitempty"`
	TxID    string `json:"txId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// uploadResponse is the bundler receipt returned by POST /tx/<currency>.
type uploadResponse struct {
	ID                  string   `json:"id"`
	Timestamp           uint64   `json:"timestamp"`
	Winc                string   `json:"winc"`
	Version             string   `json:"version"`
	DeadlineHeight      uint64   `json:"deadlineHeight"`
	DataCaches          []string `json:"dataCaches"`
	FastFinalityIndexes []string `json:"fastFinalityIndexes"`
	Owner               string   `json:"owner"`
	Signature           string   `json:"signature"`
}

// uploadEnvelope is the request body for POST /tx/<currency>.
type uploadEnvelope struct {
	Data string `json:"data"` // base64 payload
	Tags []Tag  `json:"tags,omitempty"`
}

// balanceResponse is the body of GET /account/balance/<currency>.
type balanceResponse struct {
	Balance string `json:"balance"`
}

// infoResponse is the body of GET /info.
type infoResponse struct {
	Version   string            `json:"version"`
	Gateway   string            `json:"gateway"`
	Addresses map[string]string `json:"addresses"`
}

// fundRequest registers a funding transaction with the node.
type fundRequest struct {
	TxID string `json:"tx_id"`
}
