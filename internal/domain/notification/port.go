package notification

import "context"

// Sender delivers a short text message to a recipient. Failures are reported, never retried here.
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}
