package notify

import (
	"context"
	"route-watch-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// TestMessage is sent by the test-notification command.
const TestMessage = "route_watch notification test"

// Dispatch sends msg through n and reports whether it was delivered.
// Failures are logged, never returned.
func Dispatch(ctx context.Context, n ports.Notifier, msg string, logger logrus.FieldLogger) bool {
	if n == nil {
		logger.WithField("message", msg).Info("no notifier configured, alert not sent")
		return false
	}

	if err := n.Send(ctx, msg); err != nil {
		logger.WithError(err).Error("notification failed")
		return false
	}
	return true
}

// Multi fans a message out to several notifiers. Every notifier is tried;
// the first failure is returned.
type Multi []ports.Notifier

func (m Multi) Send(ctx context.Context, message string) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
