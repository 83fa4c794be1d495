package notify

import (
	"context"
	"fmt"
	"io"
	"route-watch-service/internal/domain"
	"sync"
)

// ConsoleNotifier writes alerts to w, one per line.
type ConsoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (c *ConsoleNotifier) Send(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.w, "NOTIFICATION: %s\n", message); err != nil {
		return &domain.NotificationError{Notifier: "console", Err: err}
	}
	return nil
}
