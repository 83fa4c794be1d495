package ports

import "context"

// Notifier delivers a plain-text alert to an external channel.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
