// internal/storage/irys/errors.go
package irys

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut signals that a single attempt exceeded its per-attempt timeout.
	ErrTimedOut = errors.New("request timed out")

	// ErrEstimationFailed signals that the node could not be priced. A failed
	// estimate always aborts the attempt; it is never defaulted to zero.
	ErrEstimationFailed = errors.New("upload cost estimation failed")

	// ErrFundingSubmitFailed signals that the funding transaction could not be
	// submitted or registered with the node.
	ErrFundingSubmitFailed = errors.New("funding transaction submit failed")

	// ErrFundingTimeout signals that the prepaid balance did not reach the
	// required amount within the polling budget. The transaction may still
	// land later.
	ErrFundingTimeout = errors.New("funding confirmation timed out")

	// ErrUploadSubmitFailed signals a failed payload submit call.
	ErrUploadSubmitFailed = errors.New("upload submit failed")

	// ErrNoReceiptID signals a submit response without a receipt id. This is
	// node misbehavior, not transient unavailability.
	ErrNoReceiptID = errors.New("upload response missing receipt id")
)

// NodeError carries the node URL and operation alongside the cause.
type NodeError struct {
	Err     error
	NodeURL string
	Op      string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("storage node error [%s] at %s: %v", e.Op, e.NodeURL, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func newNodeError(err error, nodeURL, op string) error {
	return &NodeError{
		Err:     err,
		NodeURL: nodeURL,
		Op:      op,
	}
}
