package notify

import (
	"context"
)

// Channel is one notification delivery backend.
//
// Send either succeeds or returns an error; errors wrapped with Terminal
// indicate a configuration problem (bad credentials, malformed endpoint)
// that retrying cannot fix.
type Channel interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// DeliveryResult reports one channel's outcome for one record.
type DeliveryResult struct {
	Channel  string
	Attempts int
	Err      error

	// Terminal marks a configuration error, as opposed to a transient
	// delivery failure that exhausted its retries.
	Terminal bool
}

// Delivered reports whether at least one channel succeeded. Only records
// with at least one successful delivery are marked as seen.
func Delivered(results []DeliveryResult) bool {
	for _, r := range results {
		if r.Err == nil {
			return true
		}
	}
	return false
}
